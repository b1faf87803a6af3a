package types

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValueType is the binary XML value type tag carried by value tokens and
// substitution descriptors.
type ValueType uint8

const (
	ValNull      ValueType = 0x00
	ValString    ValueType = 0x01 // UTF-16LE
	ValAnsi      ValueType = 0x02 // Windows-1252
	ValInt8      ValueType = 0x03
	ValUInt8     ValueType = 0x04
	ValInt16     ValueType = 0x05
	ValUInt16    ValueType = 0x06
	ValInt32     ValueType = 0x07
	ValUInt32    ValueType = 0x08
	ValInt64     ValueType = 0x09
	ValUInt64    ValueType = 0x0A
	ValReal32    ValueType = 0x0B
	ValReal64    ValueType = 0x0C
	ValBool      ValueType = 0x0D // 32-bit
	ValBinary    ValueType = 0x0E
	ValGUID      ValueType = 0x0F
	ValSizeT     ValueType = 0x10
	ValFileTime  ValueType = 0x11
	ValSysTime   ValueType = 0x12
	ValSID       ValueType = 0x13
	ValHexInt32  ValueType = 0x14
	ValHexInt64  ValueType = 0x15
	ValEvtHandle ValueType = 0x20
	ValBinXML    ValueType = 0x21
	ValEvtXML    ValueType = 0x23

	// ValArray is OR-ed into a base type to mark an array of that type.
	ValArray ValueType = 0x80
)

var valueTypeNames = map[ValueType]string{
	ValNull:      "Null",
	ValString:    "String",
	ValAnsi:      "AnsiString",
	ValInt8:      "Int8",
	ValUInt8:     "UInt8",
	ValInt16:     "Int16",
	ValUInt16:    "UInt16",
	ValInt32:     "Int32",
	ValUInt32:    "UInt32",
	ValInt64:     "Int64",
	ValUInt64:    "UInt64",
	ValReal32:    "Real32",
	ValReal64:    "Real64",
	ValBool:      "Bool",
	ValBinary:    "Binary",
	ValGUID:      "Guid",
	ValSizeT:     "SizeT",
	ValFileTime:  "FileTime",
	ValSysTime:   "SysTime",
	ValSID:       "Sid",
	ValHexInt32:  "HexInt32",
	ValHexInt64:  "HexInt64",
	ValEvtHandle: "EvtHandle",
	ValBinXML:    "BinXml",
	ValEvtXML:    "EvtXml",
}

// IsArray reports whether t carries the array flag.
func (t ValueType) IsArray() bool { return t&ValArray != 0 }

// Base strips the array flag.
func (t ValueType) Base() ValueType { return t &^ ValArray }

// Known reports whether t (or its base type, for arrays) is a recognised tag.
func (t ValueType) Known() bool {
	_, ok := valueTypeNames[t.Base()]
	return ok
}

func (t ValueType) String() string {
	name, ok := valueTypeNames[t.Base()]
	if !ok {
		return fmt.Sprintf("ValueType(0x%02x)", uint8(t))
	}
	if t.IsArray() {
		return name + "Array"
	}
	return name
}

// MarshalText renders the type by name in JSON output.
func (t ValueType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// TimeLayout is the rendering of FILETIME values, matching the precision
// Windows uses in event XML.
const TimeLayout = "2006-01-02T15:04:05.0000000Z"

// Value is a decoded binary XML value. Data holds the Go representation:
//
//	Null                         nil
//	String, Ansi, EvtXml, Sid    string
//	Int8..Int64                  int64
//	UInt8..UInt64, HexInt*,
//	SizeT, EvtHandle             uint64
//	Real32, Real64               float64
//	Bool                         bool
//	Binary                       []byte
//	Guid                         uuid.UUID
//	FileTime, SysTime            time.Time (UTC)
//	arrays                       []Value
//
// A Placeholder value stands in for bytes that could not be decoded; Data
// then holds a short description.
type Value struct {
	Type        ValueType `json:"type"`
	Data        any       `json:"data,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// StringValue returns a String value holding s.
func StringValue(s string) Value { return Value{Type: ValString, Data: s} }

// IsNull reports whether v carries no data.
func (v Value) IsNull() bool { return v.Data == nil }

// String renders v the way it appears in event XML.
func (v Value) String() string {
	switch d := v.Data.(type) {
	case nil:
		return ""
	case string:
		return d
	case int64:
		return strconv.FormatInt(d, 10)
	case uint64:
		switch v.Type.Base() {
		case ValHexInt32, ValHexInt64, ValSizeT:
			return "0x" + strconv.FormatUint(d, 16)
		}
		return strconv.FormatUint(d, 10)
	case float64:
		bits := 64
		if v.Type.Base() == ValReal32 {
			bits = 32
		}
		return strconv.FormatFloat(d, 'g', -1, bits)
	case bool:
		return strconv.FormatBool(d)
	case []byte:
		return strings.ToUpper(hex.EncodeToString(d))
	case uuid.UUID:
		return "{" + strings.ToUpper(d.String()) + "}"
	case time.Time:
		return d.UTC().Format(TimeLayout)
	case []Value:
		parts := make([]string, len(d))
		for i, e := range d {
			parts[i] = e.String()
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(d)
	}
}

// Uint returns v as an unsigned integer. Numeric strings are parsed, since
// literal element text is always stored as a string.
func (v Value) Uint() (uint64, bool) {
	switch d := v.Data.(type) {
	case uint64:
		return d, true
	case int64:
		if d < 0 {
			return 0, false
		}
		return uint64(d), true
	case bool:
		if d {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(d)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, err := strconv.ParseUint(s[2:], 16, 64)
			return n, err == nil
		}
		n, err := strconv.ParseUint(s, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Int returns v as a signed integer.
func (v Value) Int() (int64, bool) {
	switch d := v.Data.(type) {
	case int64:
		return d, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(d), 10, 64)
		return n, err == nil
	default:
		u, ok := v.Uint()
		if !ok || u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	}
}
