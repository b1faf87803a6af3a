package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Diagnostic System
// -----------------------------------------------------------------------------
//
// Every load collects the non-fatal issues it worked around: checksum
// mismatches, truncated chunk scans, values that could not be decoded. The
// load never stops for these; the presentation layer decides how loudly to
// surface them.

// Severity classifies how serious a diagnostic issue is.
type Severity int

const (
	SevInfo     Severity = iota // Informational (unusual but valid)
	SevWarning                  // Data readable but suspicious (checksum, ordering)
	SevError                    // Data lost: record or value unreadable
	SevCritical                 // Whole chunk unreadable
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the severity by name in JSON reports.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DiagCategory classifies the type of issue found.
type DiagCategory int

const (
	DiagStructure DiagCategory = iota // file/chunk/record framing problems
	DiagData                          // payload or value decoding problems
	DiagIntegrity                     // checksums, ordering, duplicate ids
)

func (c DiagCategory) String() string {
	switch c {
	case DiagStructure:
		return "STRUCTURE"
	case DiagData:
		return "DATA"
	case DiagIntegrity:
		return "INTEGRITY"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the category by name in JSON reports.
func (c DiagCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// NoChunk is the Chunk value of file-level diagnostics.
const NoChunk = -1

// Diagnostic represents a single issue found while loading a file.
type Diagnostic struct {
	// Classification
	Severity Severity     `json:"severity"`
	Category DiagCategory `json:"category"`
	Kind     ErrKind      `json:"kind"`

	// Location
	Offset    uint64 `json:"offset"`              // Absolute byte offset in file
	Structure string `json:"structure"`           // "FILE", "CHUNK", "RECORD", "BINXML", "INDEX"
	Chunk     int    `json:"chunk"`               // chunk index, NoChunk for file-level issues
	RecordID  uint64 `json:"record_id,omitempty"` // record id when the issue is record-scoped

	// Description
	Issue    string `json:"issue"`              // Human-readable description
	Expected any    `json:"expected,omitempty"` // Expected value (for validation errors)
	Actual   any    `json:"actual,omitempty"`   // Actual value found
}

// DiagnosticReport collects all diagnostics found during a load.
type DiagnosticReport struct {
	// Metadata
	FilePath string        `json:"file_path,omitempty"`
	FileSize int64         `json:"file_size"`
	ScanTime time.Duration `json:"scan_time"`

	// Issues
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Summary statistics
	Summary DiagSummary `json:"summary"`

	// Pre-computed groupings for efficient querying
	BySeverity map[Severity][]Diagnostic `json:"by_severity,omitempty"`
	ByKind     map[ErrKind][]Diagnostic  `json:"by_kind,omitempty"`
	ByOffset   []Diagnostic              `json:"by_offset,omitempty"` // sorted by offset
}

// DiagSummary provides quick statistics.
type DiagSummary struct {
	Critical int `json:"critical"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// NewDiagnosticReport creates an empty report.
func NewDiagnosticReport() *DiagnosticReport {
	return &DiagnosticReport{
		BySeverity: make(map[Severity][]Diagnostic),
		ByKind:     make(map[ErrKind][]Diagnostic),
	}
}

// Add adds a diagnostic to the report and updates indices.
func (r *DiagnosticReport) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)

	switch d.Severity {
	case SevCritical:
		r.Summary.Critical++
	case SevError:
		r.Summary.Errors++
	case SevWarning:
		r.Summary.Warnings++
	case SevInfo:
		r.Summary.Info++
	}

	r.BySeverity[d.Severity] = append(r.BySeverity[d.Severity], d)
	r.ByKind[d.Kind] = append(r.ByKind[d.Kind], d)
}

// AddAll adds every diagnostic in ds, in order.
func (r *DiagnosticReport) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		r.Add(d)
	}
}

// Finalize sorts diagnostics by offset and prepares for output.
func (r *DiagnosticReport) Finalize() {
	r.ByOffset = make([]Diagnostic, len(r.Diagnostics))
	copy(r.ByOffset, r.Diagnostics)
	sort.SliceStable(r.ByOffset, func(i, j int) bool {
		return r.ByOffset[i].Offset < r.ByOffset[j].Offset
	})
}

// Count returns how many diagnostics of the given kind were recorded.
func (r *DiagnosticReport) Count(kind ErrKind) int {
	if r == nil {
		return 0
	}
	return len(r.ByKind[kind])
}

// Has reports whether at least one diagnostic of the given kind was recorded.
func (r *DiagnosticReport) Has(kind ErrKind) bool { return r.Count(kind) > 0 }

// HasCriticalIssues returns true if any critical issues were found.
func (r *DiagnosticReport) HasCriticalIssues() bool {
	return r.Summary.Critical > 0
}

// HasErrors returns true if any errors or critical issues were found.
func (r *DiagnosticReport) HasErrors() bool {
	return r.Summary.Critical > 0 || r.Summary.Errors > 0
}

// HasAnyIssues returns true if any issues were found (including warnings and info).
func (r *DiagnosticReport) HasAnyIssues() bool {
	return len(r.Diagnostics) > 0
}

// -----------------------------------------------------------------------------
// Output Formatters
// -----------------------------------------------------------------------------

// FormatJSON returns the report as formatted JSON (2-space indentation).
func (r *DiagnosticReport) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatText returns a human-readable text report.
func (r *DiagnosticReport) FormatText() string {
	var b strings.Builder

	b.WriteString("=" + strings.Repeat("=", 78) + "\n")
	b.WriteString("Event Log Diagnostic Report\n")
	b.WriteString("=" + strings.Repeat("=", 78) + "\n\n")

	if r.FilePath != "" {
		b.WriteString(fmt.Sprintf("File:      %s\n", r.FilePath))
	}
	b.WriteString(fmt.Sprintf("Size:      %d bytes\n", r.FileSize))
	b.WriteString(fmt.Sprintf("Scan time: %v\n\n", r.ScanTime))

	b.WriteString("SUMMARY\n")
	b.WriteString(strings.Repeat("-", 79) + "\n")
	b.WriteString(fmt.Sprintf("  Critical: %d\n", r.Summary.Critical))
	b.WriteString(fmt.Sprintf("  Errors:   %d\n", r.Summary.Errors))
	b.WriteString(fmt.Sprintf("  Warnings: %d\n", r.Summary.Warnings))
	b.WriteString(fmt.Sprintf("  Info:     %d\n\n", r.Summary.Info))

	if len(r.Diagnostics) == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}

	b.WriteString("DIAGNOSTICS\n")
	b.WriteString(strings.Repeat("-", 79) + "\n\n")

	for _, severity := range []Severity{SevCritical, SevError, SevWarning, SevInfo} {
		diags := r.BySeverity[severity]
		if len(diags) == 0 {
			continue
		}

		b.WriteString(fmt.Sprintf("%s (%d)\n", severity, len(diags)))
		b.WriteString(strings.Repeat("~", 79) + "\n")

		for i, d := range diags {
			b.WriteString(fmt.Sprintf("\n%d. [%s/%s] %s at offset 0x%X\n", i+1, d.Structure, d.Category, d.Kind, d.Offset))
			b.WriteString(fmt.Sprintf("   %s\n", d.Issue))
			if d.Chunk != NoChunk {
				b.WriteString(fmt.Sprintf("   Chunk:    %d\n", d.Chunk))
			}
			if d.RecordID != 0 {
				b.WriteString(fmt.Sprintf("   Record:   %d\n", d.RecordID))
			}
			if d.Expected != nil {
				b.WriteString(fmt.Sprintf("   Expected: %v\n", d.Expected))
			}
			if d.Actual != nil {
				b.WriteString(fmt.Sprintf("   Actual:   %v\n", d.Actual))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatTextCompact returns a compact one-line-per-issue text format.
func (r *DiagnosticReport) FormatTextCompact() string {
	var b strings.Builder

	for _, d := range r.ByOffset {
		b.WriteString(fmt.Sprintf("0x%08X [%s/%s/%s] %s\n",
			d.Offset, d.Severity, d.Structure, d.Kind, d.Issue))
	}

	if len(r.Diagnostics) == 0 {
		b.WriteString("No issues found.\n")
	}

	return b.String()
}
