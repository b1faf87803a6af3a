package format

import (
	"errors"
	"testing"
)

func putRecord(b []byte, off int, size uint32, id uint64) {
	copy(b[off:], RecordSignature)
	PutU32(b, off+RecordSizeOffset, size)
	PutU64(b, off+RecordIDOffset, id)
	PutU64(b, off+RecordTimeOffset, 0x01D0000000000000)
	PutU32(b, off+int(size)-RecordTrailerSize, size)
}

func TestParseRecordHeader(t *testing.T) {
	b := make([]byte, 256)
	putRecord(b, 0x10, 40, 7)

	h, err := ParseRecordHeader(b, 0x10)
	if err != nil {
		t.Fatalf("ParseRecordHeader: %v", err)
	}
	if h.ID != 7 || h.Size != 40 {
		t.Fatalf("unexpected header %+v", h)
	}
	if h.PayloadOffset() != 0x10+RecordHeaderSize || h.PayloadSize() != 40-RecordMinSize {
		t.Fatalf("payload bounds wrong: %d %d", h.PayloadOffset(), h.PayloadSize())
	}
	if h.End() != 0x10+40 {
		t.Fatalf("End = %d", h.End())
	}
}

func TestParseRecordHeaderErrors(t *testing.T) {
	b := make([]byte, 256)
	if _, err := ParseRecordHeader(b, 0); !errors.Is(err, ErrPadding) {
		t.Fatalf("zeroed area should be padding, got %v", err)
	}
	if _, err := ParseRecordHeader(b, 250); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}

	b[0] = 0x99
	if _, err := ParseRecordHeader(b, 0); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}

	b = make([]byte, 256)
	putRecord(b, 0, 40, 1)
	PutU32(b, 40-RecordTrailerSize, 41)
	h, err := ParseRecordHeader(b, 0)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected size mismatch, got %v", err)
	}
	if h.ID != 1 {
		t.Fatalf("header should still be returned on size mismatch")
	}

	b = make([]byte, 64)
	copy(b, RecordSignature)
	PutU32(b, RecordSizeOffset, 1000)
	if _, err := ParseRecordHeader(b, 0); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected invalid size, got %v", err)
	}
	PutU32(b, RecordSizeOffset, 8)
	if _, err := ParseRecordHeader(b, 0); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected invalid size for tiny record, got %v", err)
	}
}
