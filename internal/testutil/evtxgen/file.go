package evtxgen

import (
	"github.com/joshuapare/evtxkit/internal/format"
)

// File assembles a file header and chunks.
type File struct {
	chunks [][]byte
	nextID uint64

	// Flags is written to the header flags field.
	Flags uint32
	// ClaimedChunks, when non-zero, overrides the header chunk count.
	ClaimedChunks int
}

// NewFile returns an empty file.
func NewFile() *File { return &File{} }

// AddChunk appends the finalized bytes of c.
func (f *File) AddChunk(c *Chunk) {
	f.chunks = append(f.chunks, c.Bytes())
	if c.LastID() >= f.nextID {
		f.nextID = c.LastID() + 1
	}
}

// AddRawChunk appends b, which must be ChunkSize bytes.
func (f *File) AddRawChunk(b []byte) { f.chunks = append(f.chunks, b) }

// Chunk returns the bytes of chunk i for in-place corruption before Bytes.
func (f *File) Chunk(i int) []byte { return f.chunks[i] }

// Bytes returns the complete file image with a valid header checksum.
func (f *File) Bytes() []byte {
	b := make([]byte, format.FileHeaderBlockSize, format.FileHeaderBlockSize+len(f.chunks)*format.ChunkSize)
	copy(b, format.FileSignature)
	last := uint64(0)
	if len(f.chunks) > 0 {
		last = uint64(len(f.chunks) - 1)
	}
	count := len(f.chunks)
	if f.ClaimedChunks != 0 {
		count = f.ClaimedChunks
	}
	format.PutU64(b, format.FileFirstChunkOffset, 0)
	format.PutU64(b, format.FileLastChunkOffset, last)
	format.PutU64(b, format.FileNextRecordIDOffset, f.nextID)
	format.PutU32(b, format.FileHeaderSizeOffset, format.FileHeaderSize)
	format.PutU16(b, format.FileMinorVersionOffset, 1)
	format.PutU16(b, format.FileMajorVersionOffset, format.FileMajorVersion)
	format.PutU16(b, format.FileHeaderBlockSizeOffset, format.FileHeaderBlockSize)
	format.PutU16(b, format.FileChunkCountOffset, uint16(count))
	format.PutU32(b, format.FileFlagsOffset, f.Flags)
	format.PutU32(b, format.FileChecksumOffset, format.FileHeaderChecksum(b))
	for _, c := range f.chunks {
		b = append(b, c...)
	}
	return b
}
