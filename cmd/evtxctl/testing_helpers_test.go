package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/evtxkit/internal/testutil"
)

// testLog writes a two-chunk log (ids 1..5 and 6..8, record 4 is event 4624)
// and returns its path.
func testLog(t *testing.T) string {
	t.Helper()
	eventID := func(id uint64) uint16 {
		if id == 4 {
			return 4624
		}
		return 4688
	}
	f := testutil.BuildFile(t, eventID, []uint64{1, 2, 3, 4, 5}, []uint64{6, 7, 8})
	return testutil.WriteTempFile(t, "Security.evtx", f.Bytes())
}

// resetFlags restores global flag values between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	configPath, workers, logLevel, logFormat = "", 0, "", ""
	skipChecksums, quiet, jsonOut = false, true, false
	dumpFormat, dumpLimit = "xml", 0
	searchProvider, searchEventIDs, searchLevel, searchText = "", nil, -1, ""
	searchInData, searchMaxResults, searchFormat = false, 0, "summary"
	diagFormat, diagOutputFile, diagShowSummary = "text", "", false
	statsTop = 10
}

// captureOutput captures stdout while running fn.
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()
	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}
