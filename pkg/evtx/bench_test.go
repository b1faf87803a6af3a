package evtx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/joshuapare/evtxkit/internal/testutil/evtxgen"
)

// fullFile returns a file of n chunks, each filled with records.
func fullFile(b *testing.B, n int) []byte {
	b.Helper()
	f := evtxgen.NewFile()
	id := uint64(1)
	for range n {
		c := evtxgen.NewChunk()
		for {
			_, err := c.AddEvent(evtxgen.SimpleEvent(id, 4624))
			if errors.Is(err, evtxgen.ErrChunkFull) {
				break
			}
			if err != nil {
				b.Fatal(err)
			}
			id++
		}
		f.AddChunk(c)
	}
	return f.Bytes()
}

func BenchmarkLoad(b *testing.B) {
	data := fullFile(b, 32)
	for _, workers := range []int{1, 4, 0} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for range b.N {
				if _, err := Load(context.Background(), data, Options{Workers: workers}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkByID(b *testing.B) {
	idx, err := OpenBytes(fullFile(b, 8), Options{})
	if err != nil {
		b.Fatal(err)
	}
	n := uint64(idx.Len())
	b.ResetTimer()
	for i := range b.N {
		if _, ok := idx.ByID(uint64(i)%n + 1); !ok {
			b.Fatal("missing record")
		}
	}
}

func BenchmarkFindText(b *testing.B) {
	idx, err := OpenBytes(fullFile(b, 8), Options{})
	if err != nil {
		b.Fatal(err)
	}
	pred := TextContains("alice", true)
	b.ResetTimer()
	for range b.N {
		count := 0
		for range idx.Find(pred) {
			count++
		}
		if count != idx.Len() {
			b.Fatalf("matched %d of %d", count, idx.Len())
		}
	}
}
