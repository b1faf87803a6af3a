package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderSequentialReads(t *testing.T) {
	data := []byte{
		0xAB,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01,
	}
	r := NewReader(data)

	u8, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	u64, err := r.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789ABCDEF), u64)

	assert.Equal(t, len(data), r.Pos())
	assert.Zero(t, r.Remaining())
}

func TestReaderOutOfBoundsKeepsCursor(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	require.NoError(t, r.Seek(2))

	_, err := r.U16()
	require.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 2, r.Pos(), "failed read must not move the cursor")

	_, err = r.U32()
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.U64()
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.GUID()
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.UTF16(4)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReaderSeekBounds(t *testing.T) {
	r := NewReader(make([]byte, 8))

	require.NoError(t, r.Seek(0))
	require.NoError(t, r.Seek(8), "seeking to len is allowed")
	require.ErrorIs(t, r.Seek(9), ErrOutOfBounds)
	require.ErrorIs(t, r.Seek(-1), ErrOutOfBounds)
	assert.Equal(t, 8, r.Pos())

	require.NoError(t, r.Seek(4))
	require.NoError(t, r.Skip(4))
	require.ErrorIs(t, r.Skip(1), ErrOutOfBounds)
}

func TestReaderPeekDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{0x0F, 0x01, 0x01, 0x00})

	tok, err := r.PeekU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x0F), tok)
	assert.Zero(t, r.Pos())

	b, err := r.Peek(4)
	require.NoError(t, err)
	assert.Len(t, b, 4)
	assert.Zero(t, r.Pos())

	_, err = r.Peek(5)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReaderGUIDAndUTF16(t *testing.T) {
	data := make([]byte, 0, 32)
	for i := 0; i < GUIDSize; i++ {
		data = append(data, byte(i))
	}
	data = append(data, 'E', 0, 'v', 0, 0xE9, 0, 'n', 0, 't', 0)

	r := NewReader(data)
	g, err := r.GUID()
	require.NoError(t, err)
	assert.Equal(t, byte(15), g[15])

	s, err := r.UTF16(5)
	require.NoError(t, err)
	assert.Equal(t, "Evént", s)
}

func TestDecodeUTF16LE(t *testing.T) {
	assert.Equal(t, "", DecodeUTF16LE(nil))
	assert.Equal(t, "System", DecodeUTF16LE([]byte{'S', 0, 'y', 0, 's', 0, 't', 0, 'e', 0, 'm', 0}))
	// U+1F600 as a surrogate pair.
	assert.Equal(t, "\U0001F600", DecodeUTF16LE([]byte{0x3D, 0xD8, 0x00, 0xDE}))
	assert.Equal(t, "ab", TrimNUL("ab\x00\x00"))
}
