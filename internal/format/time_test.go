package format

import (
	"bytes"
	"testing"
	"time"
)

func TestFiletimeRoundTrip(t *testing.T) {
	want := time.Date(2021, 3, 14, 15, 9, 26, 535897900, time.UTC)
	ft := TimeToFiletime(want)
	got := FiletimeToTime(ft)
	if !got.Equal(want) {
		t.Fatalf("round trip: got %v want %v", got, want)
	}
}

func TestFiletimeEpochs(t *testing.T) {
	if got := FiletimeToTime(0); !got.Equal(time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("FILETIME 0 = %v", got)
	}
	if got := FiletimeToTime(116444736000000000); !got.Equal(time.Unix(0, 0)) {
		t.Fatalf("unix epoch = %v", got)
	}
	if TimeToFiletime(time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)) != 0 {
		t.Fatalf("pre-1601 should clamp to 0")
	}
}

func TestSystemtimeToTime(t *testing.T) {
	b := make([]byte, SystemtimeSize)
	for i, v := range []uint16{2020, 2, 6, 29, 23, 59, 58, 123} {
		PutU16(b, i*2, v)
	}
	got, err := SystemtimeToTime(b)
	if err != nil {
		t.Fatalf("SystemtimeToTime: %v", err)
	}
	want := time.Date(2020, 2, 29, 23, 59, 58, 123000000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if _, err := SystemtimeToTime(b[:4]); err == nil {
		t.Fatalf("expected truncation error")
	}
}

func TestPutWidths(t *testing.T) {
	b := make([]byte, 16)
	Put(b, 0, uint16(0x0102))
	Put(b, 2, uint32(0x03040506))
	Put(b, 8, uint64(0x0708090a0b0c0d0e))
	want := []byte{0x02, 0x01, 0x06, 0x05, 0x04, 0x03, 0, 0, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09, 0x08, 0x07}
	if !bytes.Equal(b, want) {
		t.Fatalf("Put wrote % x, want % x", b, want)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("PutU32 past the end did not panic")
		}
	}()
	PutU32(b, 14, 1)
}
