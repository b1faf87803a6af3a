package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/evtxkit/internal/buf"
)

// RecordHeader is the framing of one event record inside a chunk.
type RecordHeader struct {
	Offset    int // chunk-relative offset of the record
	Size      uint32
	ID        uint64
	Timestamp uint64 // raw FILETIME
}

// PayloadOffset returns the chunk-relative offset of the binary XML payload.
func (h RecordHeader) PayloadOffset() int { return h.Offset + RecordHeaderSize }

// PayloadSize returns the payload length in bytes.
func (h RecordHeader) PayloadSize() int { return int(h.Size) - RecordMinSize }

// End returns the chunk-relative offset just past the record.
func (h RecordHeader) End() int { return h.Offset + int(h.Size) }

// ParseRecordHeader decodes the record at chunk-relative offset off and checks
// its framing. Errors:
//   - ErrPadding: zero magic and size, i.e. the unused tail of the chunk
//   - ErrSignatureMismatch: anything else that is not a record
//   - ErrInvalidSize: size too small or past the chunk end
//   - ErrSizeMismatch: the trailing size copy disagrees (the header is still returned)
func ParseRecordHeader(b []byte, off int) (RecordHeader, error) {
	hdr, ok := buf.Slice(b, off, RecordHeaderSize)
	if !ok {
		return RecordHeader{}, fmt.Errorf("record at 0x%x: %w", off, ErrTruncated)
	}
	size := buf.U32LE(hdr[RecordSizeOffset:])
	if !bytes.Equal(hdr[:RecordSignatureSize], RecordSignature) {
		if size == 0 && buf.U32LE(hdr) == 0 {
			return RecordHeader{}, ErrPadding
		}
		return RecordHeader{}, fmt.Errorf("record at 0x%x: %w", off, ErrSignatureMismatch)
	}
	h := RecordHeader{
		Offset:    off,
		Size:      size,
		ID:        buf.U64LE(hdr[RecordIDOffset:]),
		Timestamp: buf.U64LE(hdr[RecordTimeOffset:]),
	}
	if size < RecordMinSize || !buf.Has(b, off, int(size)) {
		return h, fmt.Errorf("record at 0x%x: size %d: %w", off, size, ErrInvalidSize)
	}
	trailing := buf.U32LE(b[off+int(size)-RecordTrailerSize:])
	if trailing != size {
		return h, fmt.Errorf("record at 0x%x: leading %d, trailing %d: %w", off, size, trailing, ErrSizeMismatch)
	}
	return h, nil
}
