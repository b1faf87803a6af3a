package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/evtxkit/internal/buf"
)

// FileHeader is the decoded EVTX file header. See the layout table in consts.go.
type FileHeader struct {
	FirstChunk      uint64
	LastChunk       uint64
	NextRecordID    uint64
	HeaderSize      uint32
	MinorVersion    uint16
	MajorVersion    uint16
	HeaderBlockSize uint16
	ChunkCount      uint16
	Flags           uint32
	Checksum        uint32
}

// ParseFileHeader validates the magic and extracts the file header fields. It
// does not verify the checksum; see ChecksumValid.
func ParseFileHeader(b []byte) (FileHeader, error) {
	if len(b) < FileHeaderBlockSize {
		return FileHeader{}, fmt.Errorf("file header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[FileSignatureOffset:FileSignatureOffset+FileSignatureSize], FileSignature) {
		return FileHeader{}, fmt.Errorf("file header: %w", ErrSignatureMismatch)
	}
	return FileHeader{
		FirstChunk:      buf.U64LE(b[FileFirstChunkOffset:]),
		LastChunk:       buf.U64LE(b[FileLastChunkOffset:]),
		NextRecordID:    buf.U64LE(b[FileNextRecordIDOffset:]),
		HeaderSize:      buf.U32LE(b[FileHeaderSizeOffset:]),
		MinorVersion:    buf.U16LE(b[FileMinorVersionOffset:]),
		MajorVersion:    buf.U16LE(b[FileMajorVersionOffset:]),
		HeaderBlockSize: buf.U16LE(b[FileHeaderBlockSizeOffset:]),
		ChunkCount:      buf.U16LE(b[FileChunkCountOffset:]),
		Flags:           buf.U32LE(b[FileFlagsOffset:]),
		Checksum:        buf.U32LE(b[FileChecksumOffset:]),
	}, nil
}

// IsDirty reports whether the log was not cleanly closed. The stated chunk
// count of a dirty file may not cover every written chunk.
func (h FileHeader) IsDirty() bool { return h.Flags&FileFlagDirty != 0 }

// IsFull reports whether the log reached its maximum size.
func (h FileHeader) IsFull() bool { return h.Flags&FileFlagFull != 0 }

// ChecksumValid recomputes the header CRC32 over b and compares it to the
// stored value.
func (h FileHeader) ChecksumValid(b []byte) bool {
	return len(b) >= FileChecksumRegion && FileHeaderChecksum(b) == h.Checksum
}

// ChunkDataOffset returns the offset of the first chunk. Chunks always start
// right after the 4 KiB header block, whatever HeaderBlockSize claims.
func (h FileHeader) ChunkDataOffset() int { return FileHeaderBlockSize }

// BlockSizeValid reports whether the stored header block size matches the
// fixed 4 KiB layout.
func (h FileHeader) BlockSizeValid() bool { return h.HeaderBlockSize == FileHeaderBlockSize }

// DerivedChunkCount returns how many whole chunks fit in a file of fileSize
// bytes, independent of what the header claims.
func (h FileHeader) DerivedChunkCount(fileSize int) int {
	data := fileSize - h.ChunkDataOffset()
	if data <= 0 {
		return 0
	}
	return data / ChunkSize
}

// String returns a summary used by the CLI's info command.
func (h FileHeader) String() string {
	return fmt.Sprintf(
		"Version: %d.%d\nChunks: %d (first %d, last %d)\nNextRecordID: %d\nFlags: 0x%08x\nChecksum: 0x%08x\n",
		h.MajorVersion, h.MinorVersion,
		h.ChunkCount, h.FirstChunk, h.LastChunk,
		h.NextRecordID, h.Flags, h.Checksum)
}
