// Package chunk parses one 64 KiB EVTX chunk: header validation, the string
// and template tables, and the record scan. Each chunk is self-contained, so
// chunks can be parsed in parallel by independent goroutines.
package chunk

import (
	"errors"
	"fmt"
	"time"

	"github.com/joshuapare/evtxkit/internal/binxml"
	"github.com/joshuapare/evtxkit/internal/buf"
	"github.com/joshuapare/evtxkit/internal/format"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// Options controls chunk parsing.
type Options struct {
	// VerifyChecksums compares the header and record CRC32s. A mismatch only
	// marks the chunk Degraded.
	VerifyChecksums bool
	// MaxDepth is passed to the binary XML decoder.
	MaxDepth int
}

// Record is one decoded event record.
type Record struct {
	ID        uint64
	Timestamp time.Time
	Offset    int64 // absolute file offset
	Chunk     int
	Size      uint32
	Root      *types.Element
	// Err is set when the payload could not be decoded; Root is then an
	// empty Event element.
	Err error
}

// Result is the outcome of parsing one chunk. It is never nil.
type Result struct {
	Index  int
	Offset int64
	Header format.ChunkHeader

	Empty    bool // pre-allocated, never written
	Corrupt  bool // header unreadable; no records
	Degraded bool // checksum mismatch; records still decoded

	Records     []Record
	Diagnostics []types.Diagnostic

	Names     int
	Templates int
}

// Parse decodes chunk data (ChunkSize bytes) found at fileOffset. Problems are
// reported as diagnostics on the result; Parse itself cannot fail.
func Parse(data []byte, index int, fileOffset int64, opts Options) *Result {
	res := &Result{Index: index, Offset: fileOffset}
	diag := &collector{chunk: index, base: fileOffset}
	defer func() { res.Diagnostics = diag.diags }()

	if format.IsEmptyChunk(data) {
		res.Empty = true
		return res
	}

	hdr, err := format.ParseChunkHeader(data)
	if err != nil {
		res.Corrupt = true
		diag.structure(types.SevCritical, types.ErrKindChunkCorrupt, 0, structChunk, 0,
			fmt.Sprintf("chunk %d unreadable: %v", index, err), string(format.ChunkSignature), signature(data))
		return res
	}
	res.Header = hdr

	if opts.VerifyChecksums {
		if !hdr.HeaderChecksumValid(data) {
			res.Degraded = true
			diag.integrity(types.ErrKindChunkChecksumMismatch, format.ChunkHeaderChecksumOffset, structChunk, 0,
				"chunk header checksum mismatch", hdr.HeaderChecksum, format.ChunkHeaderChecksum(data))
		}
		if !hdr.RecordsChecksumValid(data) {
			res.Degraded = true
			actual, _ := format.ChunkRecordsChecksum(data, int(hdr.FreeSpaceOffset))
			diag.integrity(types.ErrKindChunkChecksumMismatch, format.ChunkRecordsChecksumOffset, structChunk, 0,
				"chunk record data checksum mismatch", hdr.RecordsChecksum, actual)
		}
	}
	if hdr.FirstRecordNumber > hdr.LastRecordNumber {
		diag.structure(types.SevWarning, types.ErrKindChunkCorrupt, format.ChunkFirstRecordNumberOffset, structChunk, 0,
			"first record number after last record number", hdr.FirstRecordNumber, hdr.LastRecordNumber)
	}

	ctx := binxml.NewContext(data, binxml.Options{MaxDepth: opts.MaxDepth, Chunk: index})
	diag.warnings(ctx.PreloadStrings(hdr.StringOffsets[:]), 0)
	diag.warnings(ctx.PreloadTemplates(hdr.TemplateOffsets[:]), 0)

	res.Records = scanRecords(data, index, fileOffset, hdr, ctx, diag)
	res.Names = ctx.NameCount()
	res.Templates = ctx.TemplateCount()
	return res
}

// scanRecords walks the records from 0x200 until the last record, the free
// space offset, padding or the first framing error.
func scanRecords(
	data []byte,
	index int,
	fileOffset int64,
	hdr format.ChunkHeader,
	ctx *binxml.Context,
	diag *collector,
) []Record {
	limit := len(data)
	if free := int(hdr.FreeSpaceOffset); free >= format.ChunkRecordsStart && free <= len(data) {
		limit = free
	}
	area := data[:limit]

	var records []Record
	var prevID uint64
	for off := format.ChunkRecordsStart; off+format.RecordMinSize <= limit; {
		rh, err := format.ParseRecordHeader(area, off)
		if err != nil {
			recordError(diag, off, rh, err)
			break
		}

		if len(records) > 0 && rh.ID < prevID {
			diag.integrity(types.ErrKindRecordOrderingAnomaly, off, structRecord, rh.ID,
				"record id lower than its predecessor", fmt.Sprintf("> %d", prevID), rh.ID)
		}
		prevID = rh.ID

		rec := Record{
			ID:        rh.ID,
			Timestamp: format.FiletimeToTime(rh.Timestamp),
			Offset:    fileOffset + int64(off),
			Chunk:     index,
			Size:      rh.Size,
		}
		root, warns, err := ctx.Decode(rh.PayloadOffset(), rh.PayloadSize())
		if err != nil {
			kind := types.ErrKindRecordCorrupt
			if errors.Is(err, buf.ErrOutOfBounds) {
				kind = types.ErrKindOutOfBounds
			}
			rec.Root = &types.Element{Name: binxml.RootName}
			rec.Err = types.Errorf(kind, err, "record %d", rh.ID)
			diag.data(types.SevError, kind, rh.PayloadOffset(), rh.ID, fmt.Sprintf("payload not decoded: %v", err))
		} else {
			rec.Root = root
		}
		diag.warnings(warns, rh.ID)
		records = append(records, rec)

		if (hdr.LastRecordID != 0 && rh.ID == hdr.LastRecordID) || off == int(hdr.LastRecordOffset) {
			break
		}
		off = rh.End()
	}
	return records
}

func recordError(diag *collector, off int, rh format.RecordHeader, err error) {
	switch {
	case errors.Is(err, format.ErrPadding), errors.Is(err, format.ErrTruncated):
		// End of the written area.
	case errors.Is(err, format.ErrSizeMismatch), errors.Is(err, format.ErrInvalidSize):
		diag.structure(types.SevError, types.ErrKindRecordSizeMismatch, off, structRecord, rh.ID,
			err.Error(), nil, nil)
	default:
		diag.structure(types.SevError, types.ErrKindRecordCorrupt, off, structRecord, 0,
			err.Error(), fmt.Sprintf("% x", format.RecordSignature), nil)
	}
}

func signature(data []byte) string {
	n := min(len(data), format.ChunkSignatureSize)
	return fmt.Sprintf("%q", data[:n])
}
