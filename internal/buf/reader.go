package buf

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds reports a read or seek outside the wrapped buffer.
var ErrOutOfBounds = errors.New("buf: out of bounds")

// GUIDSize is the on-disk size of a Windows GUID.
const GUIDSize = 16

// Reader is a cursor over an in-memory (or memory-mapped) byte buffer. All
// multi-byte reads are little-endian. A failed read leaves the cursor where it
// was.
//
// Reader is not safe for concurrent use; each chunk decoder owns its own.
type Reader struct {
	b   []byte
	pos int
}

// NewReader wraps b with the cursor at offset 0.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Len returns the size of the wrapped buffer.
func (r *Reader) Len() int { return len(r.b) }

// Pos returns the cursor position.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of bytes between the cursor and the end of the buffer.
func (r *Reader) Remaining() int { return len(r.b) - r.pos }

// Buffer returns the wrapped buffer. Callers must not modify it.
func (r *Reader) Buffer() []byte { return r.b }

// Seek moves the cursor to off. off == Len() is allowed (end of buffer).
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.b) {
		return fmt.Errorf("seek to %d (len %d): %w", off, len(r.b), ErrOutOfBounds)
	}
	r.pos = off
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	end, ok := AddOverflowSafe(r.pos, n)
	if !ok {
		return fmt.Errorf("skip %d at %d: %w", n, r.pos, ErrOutOfBounds)
	}
	return r.Seek(end)
}

// Peek returns the next n bytes without advancing the cursor. The returned
// slice aliases the buffer.
func (r *Reader) Peek(n int) ([]byte, error) {
	b, ok := Slice(r.b, r.pos, n)
	if !ok {
		return nil, r.outOfBounds(n)
	}
	return b, nil
}

// PeekU8 returns the next byte without advancing the cursor.
func (r *Reader) PeekU8() (uint8, error) {
	b, err := r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bytes returns the next n bytes and advances past them. The returned slice
// aliases the buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	return read[uint16](r)
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	return read[uint32](r)
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	return read[uint64](r)
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// I64 reads a little-endian int64.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// GUID reads the raw 16 bytes of a GUID in on-disk (mixed-endian) order.
func (r *Reader) GUID() ([GUIDSize]byte, error) {
	var g [GUIDSize]byte
	b, err := r.Bytes(GUIDSize)
	if err != nil {
		return g, err
	}
	copy(g[:], b)
	return g, nil
}

// UTF16 reads chars UTF-16LE code units and returns them as a UTF-8 string.
func (r *Reader) UTF16(chars int) (string, error) {
	n, ok := MulOverflowSafe(chars, 2)
	if !ok {
		return "", r.outOfBounds(chars)
	}
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	return DecodeUTF16LE(b), nil
}

func (r *Reader) outOfBounds(n int) error {
	return fmt.Errorf("read %d bytes at %d (len %d): %w", n, r.pos, len(r.b), ErrOutOfBounds)
}
