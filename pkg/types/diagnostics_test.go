package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *DiagnosticReport {
	report := NewDiagnosticReport()
	report.FilePath = "Security.evtx"
	report.FileSize = 69632

	report.Add(Diagnostic{
		Severity:  SevWarning,
		Category:  DiagIntegrity,
		Kind:      ErrKindChunkChecksumMismatch,
		Offset:    0x1000 + 0x7C,
		Structure: "CHUNK",
		Chunk:     0,
		Issue:     "chunk header checksum mismatch",
		Expected:  uint32(0xDEADBEEF),
		Actual:    uint32(0x12345678),
	})
	report.Add(Diagnostic{
		Severity:  SevError,
		Category:  DiagStructure,
		Kind:      ErrKindRecordSizeMismatch,
		Offset:    0x1200,
		Structure: "RECORD",
		Chunk:     0,
		RecordID:  7,
		Issue:     "leading and trailing record size differ",
	})
	report.Add(Diagnostic{
		Severity:  SevInfo,
		Category:  DiagStructure,
		Kind:      ErrKindInvalidFormat,
		Offset:    0x24,
		Structure: "FILE",
		Chunk:     NoChunk,
		Issue:     "unexpected minor version",
	})
	report.Finalize()
	return report
}

func TestDiagnosticReportSummary(t *testing.T) {
	report := sampleReport()

	assert.Equal(t, 1, report.Summary.Warnings)
	assert.Equal(t, 1, report.Summary.Errors)
	assert.Equal(t, 1, report.Summary.Info)
	assert.Equal(t, 0, report.Summary.Critical)
	assert.True(t, report.HasErrors())
	assert.False(t, report.HasCriticalIssues())
	assert.True(t, report.HasAnyIssues())

	assert.Equal(t, 1, report.Count(ErrKindRecordSizeMismatch))
	assert.True(t, report.Has(ErrKindChunkChecksumMismatch))
	assert.False(t, report.Has(ErrKindDuplicateRecordID))

	require.Len(t, report.ByOffset, 3)
	assert.Equal(t, uint64(0x24), report.ByOffset[0].Offset)
	assert.Equal(t, uint64(0x1200), report.ByOffset[2].Offset)
}

func TestDiagnosticReportNilCount(t *testing.T) {
	var report *DiagnosticReport
	assert.Equal(t, 0, report.Count(ErrKindCancelled))
}

func TestDiagnosticFormatters(t *testing.T) {
	report := sampleReport()

	t.Run("JSON", func(t *testing.T) {
		out, err := report.FormatJSON()
		require.NoError(t, err)

		var parsed map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Contains(t, out, `"kind": "RecordSizeMismatch"`)
		assert.Contains(t, out, `"severity": "WARNING"`)

		summary, ok := parsed["summary"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 1, summary["errors"], 0)
	})

	t.Run("Text", func(t *testing.T) {
		out := report.FormatText()
		assert.Contains(t, out, "Event Log Diagnostic Report")
		assert.Contains(t, out, "File:      Security.evtx")
		assert.Contains(t, out, "ERROR (1)")
		assert.Contains(t, out, "Record:   7")
		assert.Contains(t, out, "Expected: 3735928559")
	})

	t.Run("Compact", func(t *testing.T) {
		out := report.FormatTextCompact()
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "0x00000024 [INFO/FILE/InvalidFormat]"))
	})

	t.Run("Empty", func(t *testing.T) {
		empty := NewDiagnosticReport()
		empty.Finalize()
		assert.Contains(t, empty.FormatText(), "No issues found.")
		assert.Equal(t, "No issues found.\n", empty.FormatTextCompact())
	})
}

func TestErrorIsMatchesKind(t *testing.T) {
	cause := errors.New("context canceled")
	err := Errorf(ErrKindCancelled, cause, "load %s", "a.evtx")

	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidFormat)
	assert.Equal(t, "load a.evtx: context canceled", err.Error())

	var typed *Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, ErrKindCancelled, typed.Kind)
	assert.Equal(t, "DuplicateRecordId", ErrKindDuplicateRecordID.String())
}
