package binxml

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/evtxkit/internal/buf"
	"github.com/joshuapare/evtxkit/internal/testutil/evtxgen"
	"github.com/joshuapare/evtxkit/pkg/types"
)

func TestDecodeValue(t *testing.T) {
	ts := time.Date(2023, 11, 5, 8, 9, 10, 0, time.UTC)
	guid := uuid.MustParse("0063715b-eeda-4007-9429-ad526f62696e")

	tests := []struct {
		name string
		in   evtxgen.Value
		want string
	}{
		{"string", evtxgen.String("héllo"), "héllo"},
		{"ansi", evtxgen.Ansi("caf\xe9"), "café"},
		{"int8", evtxgen.Int8(-3), "-3"},
		{"uint8", evtxgen.UInt8(200), "200"},
		{"uint16", evtxgen.UInt16(4624), "4624"},
		{"int32", evtxgen.Int32(-70000), "-70000"},
		{"uint32", evtxgen.UInt32(70000), "70000"},
		{"uint64", evtxgen.UInt64(1 << 40), "1099511627776"},
		{"real64", evtxgen.Real64(2.25), "2.25"},
		{"bool", evtxgen.Bool(true), "true"},
		{"binary", evtxgen.Binary([]byte{0x01, 0xab}), "01AB"},
		{"guid", evtxgen.GUID(guid), "{0063715B-EEDA-4007-9429-AD526F62696E}"},
		{"filetime", evtxgen.FileTime(ts), "2023-11-05T08:09:10.0000000Z"},
		{"systime", evtxgen.SysTime(ts), "2023-11-05T08:09:10.0000000Z"},
		{"sid", evtxgen.SID(5, 21, 1004336348, 1177238915, 682003330, 512), "S-1-5-21-1004336348-1177238915-682003330-512"},
		{"hex32", evtxgen.HexInt32(0x3e7), "0x3e7"},
		{"hex64", evtxgen.HexInt64(0x8020000000000000), "0x8020000000000000"},
		{"sizet", evtxgen.Raw(types.ValSizeT, []byte{0x10, 0, 0, 0, 0, 0, 0, 0}), "0x10"},
		{"string array", evtxgen.StringArray("a", "b", "c"), "a, b, c"},
		{"uint16 array", evtxgen.Raw(types.ValUInt16|types.ValArray, []byte{1, 0, 2, 0}), "1, 2"},
		{"null", evtxgen.Null(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decodeValue(tt.in.Type, tt.in.Data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
			assert.Equal(t, tt.in.Type, v.Type)
		})
	}
}

func TestDecodeValueErrors(t *testing.T) {
	_, err := decodeValue(types.ValUInt32, []byte{1, 2})
	assert.ErrorIs(t, err, buf.ErrOutOfBounds)

	_, err = decodeValue(types.ValueType(0x42), []byte{1})
	assert.ErrorIs(t, err, types.ErrUnknownValueType)
	assert.Equal(t, types.ErrKindUnknownValueType, errKindOf(err))

	_, err = decodeValue(types.ValSID, []byte{1, 5, 0, 0, 0, 0, 0, 5, 1, 0, 0, 0})
	assert.ErrorIs(t, err, buf.ErrOutOfBounds)

	_, err = decodeValue(types.ValUInt16|types.ValArray, []byte{1, 2, 3})
	assert.ErrorIs(t, err, buf.ErrOutOfBounds)

	_, err = decodeValue(types.ValSID|types.ValArray, []byte{1})
	assert.ErrorIs(t, err, types.ErrUnknownValueType)
}

func TestPlaceholderValue(t *testing.T) {
	v := placeholderValue(types.ValueType(0x42))
	assert.True(t, v.Placeholder)
	assert.Equal(t, "[undecodable ValueType(0x42)]", v.String())
}
