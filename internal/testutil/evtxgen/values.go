package evtxgen

import (
	"encoding/binary"
	"math"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/joshuapare/evtxkit/internal/format"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// Value is one raw substitution value. Embedded, when set, is encoded as an
// embedded binary XML fragment at the value's final position.
type Value struct {
	Type     types.ValueType
	Data     []byte
	Embedded Payload
}

// Null is an empty substitution.
func Null() Value { return Value{Type: types.ValNull} }

// Raw is a value with arbitrary type tag and bytes.
func Raw(t types.ValueType, b []byte) Value { return Value{Type: t, Data: b} }

// String encodes s as UTF-16LE without terminator.
func String(s string) Value { return Value{Type: types.ValString, Data: utf16Bytes(s)} }

// Ansi encodes s as single-byte text.
func Ansi(s string) Value { return Value{Type: types.ValAnsi, Data: []byte(s)} }

// StringArray encodes NUL-separated UTF-16LE strings.
func StringArray(parts ...string) Value {
	var b []byte
	for _, p := range parts {
		b = append(b, utf16Bytes(p)...)
		b = append(b, 0, 0)
	}
	return Value{Type: types.ValString | types.ValArray, Data: b}
}

func UInt8(v uint8) Value { return Value{Type: types.ValUInt8, Data: []byte{v}} }

func Int8(v int8) Value { return Value{Type: types.ValInt8, Data: []byte{byte(v)}} }

func UInt16(v uint16) Value {
	return Value{Type: types.ValUInt16, Data: binary.LittleEndian.AppendUint16(nil, v)}
}

func Int32(v int32) Value {
	return Value{Type: types.ValInt32, Data: binary.LittleEndian.AppendUint32(nil, uint32(v))}
}

func UInt32(v uint32) Value {
	return Value{Type: types.ValUInt32, Data: binary.LittleEndian.AppendUint32(nil, v)}
}

func UInt64(v uint64) Value {
	return Value{Type: types.ValUInt64, Data: binary.LittleEndian.AppendUint64(nil, v)}
}

func HexInt32(v uint32) Value {
	return Value{Type: types.ValHexInt32, Data: binary.LittleEndian.AppendUint32(nil, v)}
}

func HexInt64(v uint64) Value {
	return Value{Type: types.ValHexInt64, Data: binary.LittleEndian.AppendUint64(nil, v)}
}

func Real64(v float64) Value {
	return Value{Type: types.ValReal64, Data: binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))}
}

func Bool(v bool) Value {
	var n uint32
	if v {
		n = 1
	}
	return Value{Type: types.ValBool, Data: binary.LittleEndian.AppendUint32(nil, n)}
}

func Binary(b []byte) Value { return Value{Type: types.ValBinary, Data: b} }

func FileTime(t time.Time) Value {
	return Value{Type: types.ValFileTime, Data: binary.LittleEndian.AppendUint64(nil, format.TimeToFiletime(t))}
}

func SysTime(t time.Time) Value {
	t = t.UTC()
	var b []byte
	for _, f := range []int{t.Year(), int(t.Month()), int(t.Weekday()), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond() / int(time.Millisecond)} {
		b = binary.LittleEndian.AppendUint16(b, uint16(f))
	}
	return Value{Type: types.ValSysTime, Data: b}
}

func GUID(u uuid.UUID) Value { return Value{Type: types.ValGUID, Data: guidBytes(u)} }

// SID encodes a security identifier with the given authority and
// sub-authorities, revision 1.
func SID(authority uint64, subs ...uint32) Value {
	b := []byte{1, byte(len(subs))}
	for shift := 40; shift >= 0; shift -= 8 {
		b = append(b, byte(authority>>shift))
	}
	for _, s := range subs {
		b = binary.LittleEndian.AppendUint32(b, s)
	}
	return Value{Type: types.ValSID, Data: b}
}

// BinXML embeds p as a nested binary XML value.
func BinXML(p Payload) Value { return Value{Type: types.ValBinXML, Embedded: p} }

func utf16Bytes(s string) []byte {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return b
}

// guidBytes writes u in on-disk order (little-endian Data1..Data3).
func guidBytes(u uuid.UUID) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], binary.BigEndian.Uint32(u[0:]))
	binary.LittleEndian.PutUint16(b[4:], binary.BigEndian.Uint16(u[4:]))
	binary.LittleEndian.PutUint16(b[6:], binary.BigEndian.Uint16(u[6:]))
	copy(b[8:], u[8:])
	return b
}
