package chunk

import (
	"github.com/joshuapare/evtxkit/internal/binxml"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// Structure labels used in diagnostics.
const (
	structChunk  = "CHUNK"
	structRecord = "RECORD"
	structBinXML = "BINXML"
)

// collector stamps chunk-wide location data onto diagnostics. Each chunk is
// parsed by exactly one goroutine, so no locking is needed.
type collector struct {
	chunk int
	base  int64 // absolute file offset of the chunk
	diags []types.Diagnostic
}

func (c *collector) add(d types.Diagnostic, rel int) {
	d.Chunk = c.chunk
	d.Offset = uint64(c.base + int64(rel))
	c.diags = append(c.diags, d)
}

// structure records a framing problem.
func (c *collector) structure(
	severity types.Severity,
	kind types.ErrKind,
	rel int,
	structure string,
	recordID uint64,
	issue string,
	expected, actual any,
) {
	c.add(types.Diagnostic{
		Severity:  severity,
		Category:  types.DiagStructure,
		Kind:      kind,
		Structure: structure,
		RecordID:  recordID,
		Issue:     issue,
		Expected:  expected,
		Actual:    actual,
	}, rel)
}

// integrity records a checksum or ordering problem.
func (c *collector) integrity(
	kind types.ErrKind,
	rel int,
	structure string,
	recordID uint64,
	issue string,
	expected, actual any,
) {
	c.add(types.Diagnostic{
		Severity:  types.SevWarning,
		Category:  types.DiagIntegrity,
		Kind:      kind,
		Structure: structure,
		RecordID:  recordID,
		Issue:     issue,
		Expected:  expected,
		Actual:    actual,
	}, rel)
}

// data records a payload decoding problem.
func (c *collector) data(severity types.Severity, kind types.ErrKind, rel int, recordID uint64, issue string) {
	c.add(types.Diagnostic{
		Severity:  severity,
		Category:  types.DiagData,
		Kind:      kind,
		Structure: structBinXML,
		RecordID:  recordID,
		Issue:     issue,
	}, rel)
}

// warnings converts decoder warnings for one record (recordID 0 for the
// chunk tables).
func (c *collector) warnings(ws []binxml.Warning, recordID uint64) {
	for _, w := range ws {
		c.data(types.SevWarning, w.Kind, w.Offset, recordID, w.Msg)
	}
}
