package binxml

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/evtxkit/internal/buf"
	"github.com/joshuapare/evtxkit/internal/format"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// fixedWidth is the element size of fixed-width value types. SizeT and
// EvtHandle take their width from the value size instead.
var fixedWidth = map[types.ValueType]int{
	types.ValInt8:     1,
	types.ValUInt8:    1,
	types.ValInt16:    2,
	types.ValUInt16:   2,
	types.ValInt32:    4,
	types.ValUInt32:   4,
	types.ValInt64:    8,
	types.ValUInt64:   8,
	types.ValReal32:   4,
	types.ValReal64:   8,
	types.ValBool:     4,
	types.ValGUID:     buf.GUIDSize,
	types.ValFileTime: 8,
	types.ValSysTime:  format.SystemtimeSize,
	types.ValHexInt32: 4,
	types.ValHexInt64: 8,
}

// decodeValue converts raw substitution bytes of type typ. BinXml values are
// handled by the builder and never reach here.
func decodeValue(typ types.ValueType, b []byte) (types.Value, error) {
	if typ.IsArray() {
		return decodeArray(typ, b)
	}
	v := types.Value{Type: typ}
	if w, ok := fixedWidth[typ]; ok && len(b) < w {
		return v, fmt.Errorf("%s value of %d bytes: %w", typ, len(b), buf.ErrOutOfBounds)
	}

	switch typ {
	case types.ValNull:
	case types.ValString, types.ValEvtXML:
		v.Data = buf.TrimNUL(buf.DecodeUTF16LE(b))
	case types.ValAnsi:
		s, err := charmap.Windows1252.NewDecoder().Bytes(b)
		if err != nil {
			return v, fmt.Errorf("ansi value: %w", err)
		}
		v.Data = buf.TrimNUL(string(s))
	case types.ValInt8:
		v.Data = int64(int8(b[0]))
	case types.ValUInt8:
		v.Data = uint64(b[0])
	case types.ValInt16:
		v.Data = int64(int16(binary.LittleEndian.Uint16(b)))
	case types.ValUInt16:
		v.Data = uint64(binary.LittleEndian.Uint16(b))
	case types.ValInt32:
		v.Data = int64(int32(binary.LittleEndian.Uint32(b)))
	case types.ValUInt32, types.ValHexInt32:
		v.Data = uint64(binary.LittleEndian.Uint32(b))
	case types.ValInt64:
		v.Data = int64(binary.LittleEndian.Uint64(b))
	case types.ValUInt64, types.ValHexInt64:
		v.Data = binary.LittleEndian.Uint64(b)
	case types.ValReal32:
		v.Data = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case types.ValReal64:
		v.Data = math.Float64frombits(binary.LittleEndian.Uint64(b))
	case types.ValBool:
		v.Data = binary.LittleEndian.Uint32(b) != 0
	case types.ValBinary:
		v.Data = bytes.Clone(b)
	case types.ValGUID:
		v.Data = guidFromWindows(b)
	case types.ValSizeT, types.ValEvtHandle:
		switch len(b) {
		case 4:
			v.Data = uint64(binary.LittleEndian.Uint32(b))
		case 8:
			v.Data = binary.LittleEndian.Uint64(b)
		default:
			return v, fmt.Errorf("%s value of %d bytes: %w", typ, len(b), buf.ErrOutOfBounds)
		}
	case types.ValFileTime:
		v.Data = format.FiletimeToTime(binary.LittleEndian.Uint64(b))
	case types.ValSysTime:
		t, err := format.SystemtimeToTime(b)
		if err != nil {
			return v, err
		}
		v.Data = t
	case types.ValSID:
		s, err := decodeSID(b)
		if err != nil {
			return v, err
		}
		v.Data = s
	default:
		return v, types.Errorf(types.ErrKindUnknownValueType, nil, "value type 0x%02x", uint8(typ))
	}
	return v, nil
}

func decodeArray(typ types.ValueType, b []byte) (types.Value, error) {
	base := typ.Base()
	v := types.Value{Type: typ}
	var elems []types.Value

	switch base {
	case types.ValString:
		s := buf.DecodeUTF16LE(b)
		for _, part := range strings.Split(strings.TrimRight(s, "\x00"), "\x00") {
			elems = append(elems, types.StringValue(part))
		}
	case types.ValAnsi:
		for _, part := range bytes.Split(bytes.TrimRight(b, "\x00"), []byte{0}) {
			e, err := decodeValue(base, part)
			if err != nil {
				return v, err
			}
			elems = append(elems, e)
		}
	default:
		w, ok := fixedWidth[base]
		if !ok {
			return v, types.Errorf(types.ErrKindUnknownValueType, nil, "array of value type 0x%02x", uint8(base))
		}
		if len(b)%w != 0 {
			return v, fmt.Errorf("%s of %d bytes: %w", typ, len(b), buf.ErrOutOfBounds)
		}
		for i := 0; i < len(b); i += w {
			e, err := decodeValue(base, b[i:i+w])
			if err != nil {
				return v, err
			}
			elems = append(elems, e)
		}
	}
	v.Data = elems
	return v, nil
}

// guidFromWindows reorders an on-disk GUID (little-endian Data1..Data3) into
// RFC 4122 byte order.
func guidFromWindows(b []byte) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:], binary.LittleEndian.Uint32(b[0:]))
	binary.BigEndian.PutUint16(u[4:], binary.LittleEndian.Uint16(b[4:]))
	binary.BigEndian.PutUint16(u[6:], binary.LittleEndian.Uint16(b[6:]))
	copy(u[8:], b[8:16])
	return u
}

// decodeSID renders a binary security identifier as S-R-A-S1-S2-...
func decodeSID(b []byte) (string, error) {
	if len(b) < 8 {
		return "", fmt.Errorf("sid of %d bytes: %w", len(b), buf.ErrOutOfBounds)
	}
	count := int(b[1])
	if _, err := buf.CheckListBounds(len(b), 8, count, 4); err != nil {
		return "", fmt.Errorf("sid sub-authorities: %w", err)
	}
	var auth uint64
	for _, x := range b[2:8] {
		auth = auth<<8 | uint64(x)
	}
	var sb strings.Builder
	sb.WriteString("S-")
	sb.WriteString(strconv.Itoa(int(b[0])))
	sb.WriteByte('-')
	sb.WriteString(strconv.FormatUint(auth, 10))
	for i := 0; i < count; i++ {
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatUint(uint64(binary.LittleEndian.Uint32(b[8+4*i:])), 10))
	}
	return sb.String(), nil
}

// placeholderValue stands in for a substitution that could not be decoded.
func placeholderValue(typ types.ValueType) types.Value {
	return types.Value{Type: typ, Data: fmt.Sprintf("[undecodable %s]", typ), Placeholder: true}
}
