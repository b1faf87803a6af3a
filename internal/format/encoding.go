package format

import (
	"encoding/binary"

	"github.com/joshuapare/evtxkit/internal/buf"
)

// Put stores v little-endian at b[off:]. The parser itself never writes;
// fixture builders and the synthetic file generator do. It panics when the
// field does not fit.
func Put[T buf.Field](b []byte, off int, v T) {
	switch x := any(v).(type) {
	case uint16:
		binary.LittleEndian.PutUint16(b[off:], x)
	case uint32:
		binary.LittleEndian.PutUint32(b[off:], x)
	case uint64:
		binary.LittleEndian.PutUint64(b[off:], x)
	}
}

func PutU16(b []byte, off int, v uint16) { Put(b, off, v) }
func PutU32(b []byte, off int, v uint32) { Put(b, off, v) }
func PutU64(b []byte, off int, v uint64) { Put(b, off, v) }
