package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/evtxkit/internal/format"
	"github.com/joshuapare/evtxkit/internal/testutil"
)

func TestInfoCommand(t *testing.T) {
	resetFlags(t)
	path := testLog(t)

	out, err := captureOutput(t, func() error { return runInfo([]string{path}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Records:         8 (ids 1..8)")
	assert.Contains(t, out, "Version:         3.1")

	jsonOut = true
	out, err = captureOutput(t, func() error { return runInfo([]string{path}) })
	require.NoError(t, err)
	var info infoOutput
	decodeJSON(t, out, &info)
	assert.Equal(t, 8, info.Records)
	assert.Equal(t, 2, info.ChunksRead)
	assert.Equal(t, uint64(8), info.LastID)
}

func TestDumpCommand(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		limit       int
		wantContain []string
		wantRecords int
	}{
		{"xml", "xml", 0, []string{"<EventRecordID>8</EventRecordID>", "<EventID>4624</EventID>"}, -1},
		{"summary", "summary", 2, []string{"Informational", "Microsoft-Windows-Security-Auditing"}, -1},
		{"json", "json", 3, nil, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			path := testLog(t)
			dumpFormat, dumpLimit = tt.format, tt.limit

			out, err := captureOutput(t, func() error { return runDump([]string{path}) })
			require.NoError(t, err)
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
			if tt.wantRecords >= 0 {
				var recs []recordJSON
				decodeJSON(t, out, &recs)
				require.Len(t, recs, tt.wantRecords)
				assert.Equal(t, uint64(1), recs[0].ID)
				assert.Equal(t, "Event", recs[0].Event.Name)
			}
		})
	}

	resetFlags(t)
	dumpFormat = "yaml"
	assert.Error(t, runDump([]string{"x.evtx"}))
}

func TestGetCommand(t *testing.T) {
	resetFlags(t)
	path := testLog(t)

	out, err := captureOutput(t, func() error { return runGet([]string{path, "4"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "<EventID>4624</EventID>")

	jsonOut = true
	out, err = captureOutput(t, func() error { return runGet([]string{path, "4"}) })
	require.NoError(t, err)
	var rec recordJSON
	decodeJSON(t, out, &rec)
	assert.Equal(t, "4624", rec.EventID)
	assert.Equal(t, "Informational", rec.Level)

	_, err = captureOutput(t, func() error { return runGet([]string{path, "99"}) })
	assert.ErrorContains(t, err, "record 99 not found")

	_, err = captureOutput(t, func() error { return runGet([]string{path, "abc"}) })
	assert.ErrorContains(t, err, "invalid record id")
}

func TestSearchCommand(t *testing.T) {
	resetFlags(t)
	path := testLog(t)
	searchEventIDs = []uint{4624}
	searchFormat = "json"

	out, err := captureOutput(t, func() error { return runSearch([]string{path}) })
	require.NoError(t, err)
	var recs []recordJSON
	decodeJSON(t, out, &recs)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(4), recs[0].ID)

	resetFlags(t)
	searchText, searchInData, searchMaxResults, searchFormat = "alice", true, 3, "json"
	out, err = captureOutput(t, func() error { return runSearch([]string{path}) })
	require.NoError(t, err)
	recs = nil
	decodeJSON(t, out, &recs)
	assert.Len(t, recs, 3)

	resetFlags(t)
	searchText, searchFormat = "alice", "json"
	out, err = captureOutput(t, func() error { return runSearch([]string{path}) })
	require.NoError(t, err)
	recs = nil
	decodeJSON(t, out, &recs)
	assert.Empty(t, recs)
}

func TestDiagnose(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		resetFlags(t)
		path := testLog(t)
		out, err := captureOutput(t, func() error {
			report, err := diagnose(path)
			if err == nil {
				assert.Equal(t, 0, exitCode(report))
			}
			return err
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Event Log Diagnostic Report")
	})

	t.Run("bad header checksum", func(t *testing.T) {
		resetFlags(t)
		data := testutil.BuildFile(t, nil, []uint64{1, 2}).Bytes()
		data[format.FileChecksumOffset] ^= 0xFF
		path := testutil.WriteTempFile(t, "bad.evtx", data)
		diagFormat = "compact"

		out, err := captureOutput(t, func() error {
			report, err := diagnose(path)
			if err == nil {
				assert.Equal(t, 0, exitCode(report), "checksum mismatch is a warning")
			}
			return err
		})
		require.NoError(t, err)
		assert.Contains(t, out, "HeaderChecksumMismatch")
	})

	t.Run("output file", func(t *testing.T) {
		resetFlags(t)
		path := testLog(t)
		diagFormat = "json"
		diagOutputFile = filepath.Join(t.TempDir(), "report.json")

		_, err := captureOutput(t, func() error { _, err := diagnose(path); return err })
		require.NoError(t, err)
		data, err := os.ReadFile(diagOutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"diagnostics"`)
	})

	t.Run("missing file", func(t *testing.T) {
		resetFlags(t)
		_, err := diagnose(filepath.Join(t.TempDir(), "nope.evtx"))
		assert.ErrorContains(t, err, "file not found")
	})

	t.Run("not an event log", func(t *testing.T) {
		resetFlags(t)
		path := testutil.WriteTempFile(t, "junk.evtx", []byte("junk"))
		_, err := diagnose(path)
		assert.ErrorContains(t, err, "failed to open")
	})
}

func TestStatsCommand(t *testing.T) {
	resetFlags(t)
	path := testLog(t)
	jsonOut = true

	out, err := captureOutput(t, func() error { return runStats([]string{path}) })
	require.NoError(t, err)
	var st Stats
	decodeJSON(t, out, &st)
	assert.Equal(t, 8, st.Records)
	assert.Equal(t, float64(8), st.Metrics["evtx_load_records_total{outcome=decoded}"])
	assert.Equal(t, float64(2), st.Metrics["evtx_load_chunks_total{status=ok}"])
	assert.Equal(t, float64(1), st.Metrics["evtx_load_duration_seconds_count"])
	require.NotEmpty(t, st.EventIDs)
	assert.Equal(t, Count{Key: "4688", Count: 7}, st.EventIDs[0])
	assert.Equal(t, []Count{{Key: "Informational", Count: 8}}, st.Levels)
}

func TestConfigFlagsOverrideFile(t *testing.T) {
	resetFlags(t)
	cfgPath := testutil.WriteTempFile(t, "evtxctl.yaml", []byte("workers: 2\nlogging:\n  level: info\n"))
	configPath = cfgPath
	workers = 5
	require.NoError(t, rootCmd.PersistentFlags().Set("workers", "5"))
	t.Cleanup(func() { rootCmd.PersistentFlags().Lookup("workers").Changed = false })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "disabled", cfg.Logging.Level, "--quiet silences logs")

	quiet = false
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Verify())
}

func TestVersionCommand(t *testing.T) {
	resetFlags(t)

	out, err := captureOutput(t, runVersion)
	require.NoError(t, err)
	assert.Contains(t, out, "evtxctl dev")
	assert.Contains(t, out, "format:  EVTX 3.x")

	jsonOut = true
	out, err = captureOutput(t, runVersion)
	require.NoError(t, err)
	var v versionOutput
	decodeJSON(t, out, &v)
	assert.Equal(t, format.FileMajorVersion, v.FormatMajor)
	assert.Positive(t, v.MaxDepth)
	assert.Positive(t, v.Workers)
	assert.NotEmpty(t, v.GoVersion)
}
