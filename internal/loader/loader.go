// Package loader turns a whole EVTX image into sorted records: it validates
// the file header, plans which chunks to scan, parses them on a bounded
// worker pool and merges the results.
package loader

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshuapare/evtxkit/internal/chunk"
	"github.com/joshuapare/evtxkit/internal/format"
	"github.com/joshuapare/evtxkit/internal/metrics"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// Options configures a load.
type Options struct {
	Workers         int // <= 0 means runtime.NumCPU()
	MaxDepth        int
	VerifyChecksums bool
	Logger          *zerolog.Logger
	Metrics         *metrics.Collector
	FilePath        string // reported in diagnostics only
}

// Result is a completed load.
type Result struct {
	Header  format.FileHeader
	Chunks  []*chunk.Result // by chunk index, including empty and corrupt ones
	Records []chunk.Record  // ascending id, unique
	Report  *types.DiagnosticReport
}

// Load parses data. Only an unreadable file header (ErrInvalidFormat) and
// cancellation (ErrCancelled) fail the load; other problems become
// diagnostics in Result.Report.
func Load(ctx context.Context, data []byte, opts Options) (*Result, error) {
	start := time.Now()
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "loader").Logger()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	hdr, err := format.ParseFileHeader(data)
	if err != nil {
		return nil, types.Errorf(types.ErrKindInvalidFormat, err, "not an evtx file")
	}

	report := types.NewDiagnosticReport()
	report.FilePath = opts.FilePath
	report.FileSize = int64(len(data))
	checkHeader(hdr, data, opts, report)

	n := planChunks(hdr, len(data), report)
	log.Debug().
		Int("chunks", n).
		Uint16("header_chunks", hdr.ChunkCount).
		Bool("dirty", hdr.IsDirty()).
		Int("workers", opts.Workers).
		Msg("scanning chunks")

	if err := ctx.Err(); err != nil {
		return nil, types.Errorf(types.ErrKindCancelled, err, "load cancelled")
	}

	base := hdr.ChunkDataOffset()
	copts := chunk.Options{VerifyChecksums: opts.VerifyChecksums, MaxDepth: opts.MaxDepth}
	results := make([]*chunk.Result, n)
	runPool(ctx, opts.Workers, n, func(i int) {
		off := base + i*format.ChunkSize
		results[i] = chunk.Parse(data[off:off+format.ChunkSize], i, int64(off), copts)
	})
	if err := ctx.Err(); err != nil {
		return nil, types.Errorf(types.ErrKindCancelled, err, "load cancelled")
	}

	res := &Result{Header: hdr, Chunks: results, Report: report}
	var records []chunk.Record
	for _, cr := range results {
		records = append(records, cr.Records...)
		report.AddAll(cr.Diagnostics)
		observeChunk(log, opts.Metrics, cr)
	}
	res.Records = merge(records, report)

	report.ScanTime = time.Since(start)
	report.Finalize()
	for _, d := range report.Diagnostics {
		opts.Metrics.Diagnostic(d.Kind.String(), d.Severity.String())
	}
	opts.Metrics.LoadFinished(report.ScanTime, opts.Workers)

	if report.HasAnyIssues() {
		log.Warn().
			Int("critical", report.Summary.Critical).
			Int("errors", report.Summary.Errors).
			Int("warnings", report.Summary.Warnings).
			Msg("load completed with diagnostics")
	}
	log.Info().
		Int("records", len(res.Records)).
		Int("chunks", n).
		Dur("elapsed", report.ScanTime).
		Msg("load complete")
	return res, nil
}

func checkHeader(hdr format.FileHeader, data []byte, opts Options, report *types.DiagnosticReport) {
	if opts.VerifyChecksums && !hdr.ChecksumValid(data) {
		report.Add(types.Diagnostic{
			Severity:  types.SevWarning,
			Category:  types.DiagIntegrity,
			Kind:      types.ErrKindHeaderChecksumMismatch,
			Offset:    format.FileChecksumOffset,
			Structure: "FILE",
			Chunk:     types.NoChunk,
			Issue:     "file header checksum mismatch",
			Expected:  hdr.Checksum,
			Actual:    format.FileHeaderChecksum(data),
		})
	}
	if !hdr.BlockSizeValid() {
		report.Add(types.Diagnostic{
			Severity:  types.SevWarning,
			Category:  types.DiagStructure,
			Kind:      types.ErrKindInvalidFormat,
			Offset:    format.FileHeaderBlockSizeOffset,
			Structure: "FILE",
			Chunk:     types.NoChunk,
			Issue:     "header block size ignored, chunks read from the fixed 4 KiB offset",
			Expected:  format.FileHeaderBlockSize,
			Actual:    hdr.HeaderBlockSize,
		})
	}
	if hdr.MajorVersion != format.FileMajorVersion {
		report.Add(types.Diagnostic{
			Severity:  types.SevWarning,
			Category:  types.DiagStructure,
			Kind:      types.ErrKindInvalidFormat,
			Offset:    format.FileMajorVersionOffset,
			Structure: "FILE",
			Chunk:     types.NoChunk,
			Issue:     "unsupported major version",
			Expected:  format.FileMajorVersion,
			Actual:    hdr.MajorVersion,
		})
	}
}

// planChunks decides how many chunks to scan. A dirty file may have written
// chunks past the stated count, so every chunk the file size allows is
// scanned. Otherwise the stated count is trusted, capped at what exists.
func planChunks(hdr format.FileHeader, size int, report *types.DiagnosticReport) int {
	derived := hdr.DerivedChunkCount(size)
	if hdr.IsDirty() {
		return derived
	}
	stated := int(hdr.ChunkCount)
	if stated > derived {
		report.Add(types.Diagnostic{
			Severity:  types.SevWarning,
			Category:  types.DiagStructure,
			Kind:      types.ErrKindChunkCorrupt,
			Offset:    format.FileChunkCountOffset,
			Structure: "FILE",
			Chunk:     types.NoChunk,
			Issue:     fmt.Sprintf("header claims %d chunks, file holds %d", stated, derived),
			Expected:  stated,
			Actual:    derived,
		})
		return derived
	}
	return stated
}

func observeChunk(log zerolog.Logger, m *metrics.Collector, cr *chunk.Result) {
	status := metrics.ChunkOK
	switch {
	case cr.Empty:
		status = metrics.ChunkEmpty
	case cr.Corrupt:
		status = metrics.ChunkCorrupt
	case cr.Degraded:
		status = metrics.ChunkDegraded
	}
	failed := 0
	for _, r := range cr.Records {
		if r.Err != nil {
			failed++
		}
	}
	m.Chunk(status, len(cr.Records)-failed, failed, cr.Templates)
	log.Debug().
		Int("chunk", cr.Index).
		Str("status", status).
		Int("records", len(cr.Records)).
		Int("failed", failed).
		Int("templates", cr.Templates).
		Msg("chunk parsed")
}

// merge sorts records by id. When an id occurs more than once the later
// occurrence in file order wins.
func merge(records []chunk.Record, report *types.DiagnosticReport) []chunk.Record {
	slices.SortStableFunc(records, func(a, b chunk.Record) int { return cmp.Compare(a.ID, b.ID) })

	out := records[:0]
	for _, r := range records {
		if len(out) > 0 && out[len(out)-1].ID == r.ID {
			prev := out[len(out)-1]
			report.Add(types.Diagnostic{
				Severity:  types.SevWarning,
				Category:  types.DiagIntegrity,
				Kind:      types.ErrKindDuplicateRecordID,
				Offset:    uint64(prev.Offset),
				Structure: "RECORD",
				Chunk:     prev.Chunk,
				RecordID:  r.ID,
				Issue:     fmt.Sprintf("record id also at 0x%x in chunk %d; keeping the later one", r.Offset, r.Chunk),
			})
			out[len(out)-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}
