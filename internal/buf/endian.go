// Package buf contains the bounds-checked little-endian decoding primitives used by
// every EVTX structure parser: free helpers for fixed-offset header fields and a
// cursor-based Reader for the variable-length record and binary XML streams.
package buf

import "encoding/binary"

// Field is an unsigned fixed-width on-disk integer.
type Field interface {
	uint16 | uint32 | uint64
}

// LE decodes the little-endian T at the start of b, or 0 when b is shorter
// than T.
func LE[T Field](b []byte) T {
	switch any(T(0)).(type) {
	case uint16:
		if len(b) >= 2 {
			return T(binary.LittleEndian.Uint16(b))
		}
	case uint32:
		if len(b) >= 4 {
			return T(binary.LittleEndian.Uint32(b))
		}
	default:
		if len(b) >= 8 {
			return T(binary.LittleEndian.Uint64(b))
		}
	}
	return 0
}

func U16LE(b []byte) uint16 { return LE[uint16](b) }

func U32LE(b []byte) uint32 { return LE[uint32](b) }

func U64LE(b []byte) uint64 { return LE[uint64](b) }

// width is the encoded size of T in bytes.
func width[T Field]() int {
	switch any(T(0)).(type) {
	case uint16:
		return 2
	case uint32:
		return 4
	}
	return 8
}

// read consumes one T from r.
func read[T Field](r *Reader) (T, error) {
	b, err := r.Bytes(width[T]())
	if err != nil {
		return 0, err
	}
	return LE[T](b), nil
}
