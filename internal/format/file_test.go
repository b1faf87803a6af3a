package format

import (
	"errors"
	"testing"
)

func newFileHeader(chunks uint16, flags uint32) []byte {
	b := make([]byte, FileHeaderBlockSize)
	copy(b, FileSignature)
	PutU64(b, FileLastChunkOffset, uint64(chunks)-1)
	PutU64(b, FileNextRecordIDOffset, 42)
	PutU32(b, FileHeaderSizeOffset, FileHeaderSize)
	PutU16(b, FileMinorVersionOffset, 1)
	PutU16(b, FileMajorVersionOffset, FileMajorVersion)
	PutU16(b, FileHeaderBlockSizeOffset, FileHeaderBlockSize)
	PutU16(b, FileChunkCountOffset, chunks)
	PutU32(b, FileFlagsOffset, flags)
	PutU32(b, FileChecksumOffset, FileHeaderChecksum(b))
	return b
}

func TestParseFileHeaderSuccess(t *testing.T) {
	b := newFileHeader(3, 0)
	h, err := ParseFileHeader(b)
	if err != nil {
		t.Fatalf("ParseFileHeader: %v", err)
	}
	if h.MajorVersion != 3 || h.MinorVersion != 1 {
		t.Fatalf("version mismatch: %+v", h)
	}
	if h.ChunkCount != 3 || h.LastChunk != 2 {
		t.Fatalf("chunk count mismatch: %+v", h)
	}
	if h.NextRecordID != 42 {
		t.Fatalf("next record id mismatch: %+v", h)
	}
	if !h.ChecksumValid(b) {
		t.Fatalf("checksum should validate")
	}
	if h.IsDirty() || h.IsFull() {
		t.Fatalf("unexpected flags: %+v", h)
	}
}

func TestParseFileHeaderErrors(t *testing.T) {
	b := newFileHeader(1, 0)
	if _, err := ParseFileHeader(b[:100]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation error, got %v", err)
	}
	copy(b, "ElfFilX\x00")
	if _, err := ParseFileHeader(b); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestFileHeaderChecksumMismatch(t *testing.T) {
	b := newFileHeader(1, 0)
	b[FileNextRecordIDOffset]++ // inside the checksummed region
	h, err := ParseFileHeader(b)
	if err != nil {
		t.Fatalf("ParseFileHeader: %v", err)
	}
	if h.ChecksumValid(b) {
		t.Fatalf("checksum should not validate after corruption")
	}
}

func TestFileHeaderFlagsAndDerivedCount(t *testing.T) {
	b := newFileHeader(1, FileFlagDirty|FileFlagFull)
	h, err := ParseFileHeader(b)
	if err != nil {
		t.Fatalf("ParseFileHeader: %v", err)
	}
	if !h.IsDirty() || !h.IsFull() {
		t.Fatalf("flags not decoded: %+v", h)
	}
	cases := []struct {
		size int
		want int
	}{
		{FileHeaderBlockSize, 0},
		{FileHeaderBlockSize + ChunkSize - 1, 0},
		{FileHeaderBlockSize + ChunkSize, 1},
		{FileHeaderBlockSize + 3*ChunkSize + 17, 3},
		{10, 0},
	}
	for _, tc := range cases {
		if got := h.DerivedChunkCount(tc.size); got != tc.want {
			t.Fatalf("DerivedChunkCount(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}

	if !h.BlockSizeValid() {
		t.Fatalf("standard header block size reported invalid")
	}
	for _, bs := range []uint16{0, 0x200, 0x1100} {
		h.HeaderBlockSize = bs
		if h.ChunkDataOffset() != FileHeaderBlockSize {
			t.Fatalf("block size 0x%x moved the chunk base to %d", bs, h.ChunkDataOffset())
		}
		if h.BlockSizeValid() {
			t.Fatalf("block size 0x%x reported valid", bs)
		}
		if got := h.DerivedChunkCount(FileHeaderBlockSize + 2*ChunkSize); got != 2 {
			t.Fatalf("block size 0x%x: DerivedChunkCount = %d, want 2", bs, got)
		}
	}
}
