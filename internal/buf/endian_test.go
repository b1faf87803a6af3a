package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLE(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	assert.Equal(t, uint16(0x2301), U16LE(data))
	assert.Equal(t, uint32(0x67452301), U32LE(data))
	assert.Equal(t, uint64(0xefcdab8967452301), U64LE(data))
	assert.Equal(t, uint32(0xefcdab89), LE[uint32](data[4:]))

	for _, short := range [][]byte{nil, {0xAA}, data[:3], data[:7]} {
		if len(short) < 2 {
			assert.Zero(t, U16LE(short))
		}
		if len(short) < 4 {
			assert.Zero(t, U32LE(short))
		}
		assert.Zero(t, U64LE(short))
	}
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 2, width[uint16]())
	assert.Equal(t, 4, width[uint32]())
	assert.Equal(t, 8, width[uint64]())
}
