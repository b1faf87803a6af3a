package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/evtxkit/internal/buf"
)

// ChunkHeader is the decoded 512-byte chunk header including the string and
// template bucket tables. See the layout table in consts.go.
type ChunkHeader struct {
	FirstRecordNumber uint64
	LastRecordNumber  uint64
	FirstRecordID     uint64
	LastRecordID      uint64
	HeaderSize        uint32
	LastRecordOffset  uint32
	FreeSpaceOffset   uint32
	RecordsChecksum   uint32
	Flags             uint32
	HeaderChecksum    uint32

	StringOffsets   [ChunkStringBuckets]uint32
	TemplateOffsets [ChunkTemplateBuckets]uint32
}

// IsEmptyChunk reports whether b starts with an all-zero signature, which is
// how pre-allocated but never written chunks appear on disk.
func IsEmptyChunk(b []byte) bool {
	if len(b) < ChunkSignatureSize {
		return false
	}
	for _, c := range b[:ChunkSignatureSize] {
		if c != 0 {
			return false
		}
	}
	return true
}

// ParseChunkHeader validates the chunk magic and decodes the header and tables.
func ParseChunkHeader(b []byte) (ChunkHeader, error) {
	if len(b) < ChunkRecordsStart {
		return ChunkHeader{}, fmt.Errorf("chunk header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[ChunkSignatureOffset:ChunkSignatureOffset+ChunkSignatureSize], ChunkSignature) {
		return ChunkHeader{}, fmt.Errorf("chunk header: %w", ErrSignatureMismatch)
	}
	h := ChunkHeader{
		FirstRecordNumber: buf.U64LE(b[ChunkFirstRecordNumberOffset:]),
		LastRecordNumber:  buf.U64LE(b[ChunkLastRecordNumberOffset:]),
		FirstRecordID:     buf.U64LE(b[ChunkFirstRecordIDOffset:]),
		LastRecordID:      buf.U64LE(b[ChunkLastRecordIDOffset:]),
		HeaderSize:        buf.U32LE(b[ChunkHeaderSizeOffset:]),
		LastRecordOffset:  buf.U32LE(b[ChunkLastRecordOffsetOffset:]),
		FreeSpaceOffset:   buf.U32LE(b[ChunkFreeSpaceOffsetOffset:]),
		RecordsChecksum:   buf.U32LE(b[ChunkRecordsChecksumOffset:]),
		Flags:             buf.U32LE(b[ChunkFlagsOffset:]),
		HeaderChecksum:    buf.U32LE(b[ChunkHeaderChecksumOffset:]),
	}
	for i := range h.StringOffsets {
		h.StringOffsets[i] = buf.U32LE(b[ChunkStringTableOffset+i*4:])
	}
	for i := range h.TemplateOffsets {
		h.TemplateOffsets[i] = buf.U32LE(b[ChunkTemplateTableOffset+i*4:])
	}
	return h, nil
}

// HeaderChecksumValid recomputes the header CRC32 of chunk b.
func (h ChunkHeader) HeaderChecksumValid(b []byte) bool {
	return len(b) >= ChunkRecordsStart && ChunkHeaderChecksum(b) == h.HeaderChecksum
}

// RecordsChecksumValid recomputes the CRC32 of the record area of chunk b. A
// free space offset outside the chunk never validates.
func (h ChunkHeader) RecordsChecksumValid(b []byte) bool {
	sum, ok := ChunkRecordsChecksum(b, int(h.FreeSpaceOffset))
	return ok && sum == h.RecordsChecksum
}
