// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/evtxkit/internal/testutil/evtxgen"
)

// WriteTempFile writes data to a file named name in a per-test temporary
// directory and returns its path.
func WriteTempFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// BuildFile returns a file image with one chunk per id list. Every record is
// evtxgen.SimpleEvent(id, eventID(id)); a nil eventID uses 4600+id.
func BuildFile(t testing.TB, eventID func(id uint64) uint16, chunks ...[]uint64) *evtxgen.File {
	t.Helper()
	if eventID == nil {
		eventID = func(id uint64) uint16 { return uint16(4600 + id) }
	}
	f := evtxgen.NewFile()
	for i, ids := range chunks {
		c := evtxgen.NewChunk()
		for _, id := range ids {
			if _, err := c.AddEvent(evtxgen.SimpleEvent(id, eventID(id))); err != nil {
				t.Fatalf("chunk %d: record %d: %v", i, id, err)
			}
		}
		f.AddChunk(c)
	}
	return f
}

// CopySample copies a sample log into a temporary directory and returns the
// copy's path. It skips the test when the sample is not present.
func CopySample(t testing.TB, name string) string {
	t.Helper()
	src := resolveSamplePath(t, name)

	in, err := os.Open(src)
	if err != nil {
		t.Skipf("Sample not readable: %v", err)
	}
	defer in.Close()

	dst := filepath.Join(t.TempDir(), filepath.Base(name))
	out, err := os.Create(dst)
	if err != nil {
		t.Fatalf("Failed to create temp copy: %v", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		t.Fatalf("Failed to copy sample: %v", err)
	}
	return dst
}
