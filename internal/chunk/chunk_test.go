package chunk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/evtxkit/internal/format"
	"github.com/joshuapare/evtxkit/internal/testutil/evtxgen"
	"github.com/joshuapare/evtxkit/pkg/types"
)

const testBase = int64(format.FileHeaderBlockSize)

var defaultOpts = Options{VerifyChecksums: true}

// buildChunk writes one SimpleEvent per id and returns the chunk bytes and
// record offsets.
func buildChunk(t *testing.T, ids ...uint64) ([]byte, []int) {
	t.Helper()
	c := evtxgen.NewChunk()
	offs := make([]int, len(ids))
	for i, id := range ids {
		off, err := c.AddEvent(evtxgen.SimpleEvent(id, uint16(4600+id)))
		require.NoError(t, err)
		offs[i] = off
	}
	return c.Bytes(), offs
}

func kinds(diags []types.Diagnostic) []types.ErrKind {
	out := make([]types.ErrKind, len(diags))
	for i, d := range diags {
		out[i] = d.Kind
	}
	return out
}

func TestParseValidChunk(t *testing.T) {
	data, offs := buildChunk(t, 1, 2, 3, 4)

	res := Parse(data, 0, testBase, defaultOpts)
	assert.False(t, res.Empty)
	assert.False(t, res.Corrupt)
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 1, res.Templates)
	assert.Positive(t, res.Names)

	require.Len(t, res.Records, 4)
	for i, rec := range res.Records {
		assert.Equal(t, uint64(i+1), rec.ID)
		assert.Equal(t, testBase+int64(offs[i]), rec.Offset)
		assert.Equal(t, 0, rec.Chunk)
		assert.NoError(t, rec.Err)
		assert.Equal(t, "Event", rec.Root.Name)
		assert.Equal(t, evtxgen.SimpleEvent(rec.ID, 0).Time, rec.Timestamp)
	}
	assert.Equal(t, "4603", res.Records[2].Root.Path("System", "EventID").Text())
}

func TestParseIsIdempotent(t *testing.T) {
	data, _ := buildChunk(t, 10, 11, 12)
	a := Parse(data, 2, testBase, defaultOpts)
	b := Parse(data, 2, testBase, defaultOpts)
	assert.Equal(t, a, b)
}

func TestParseEmptyChunk(t *testing.T) {
	res := Parse(make([]byte, format.ChunkSize), 1, testBase, defaultOpts)
	assert.True(t, res.Empty)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Diagnostics)
}

func TestParseBadMagic(t *testing.T) {
	data, _ := buildChunk(t, 1)
	copy(data, "NotChnk\x00")

	res := Parse(data, 3, testBase, defaultOpts)
	assert.True(t, res.Corrupt)
	assert.Empty(t, res.Records)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, types.ErrKindChunkCorrupt, d.Kind)
	assert.Equal(t, types.SevCritical, d.Severity)
	assert.Equal(t, 3, d.Chunk)
	assert.Equal(t, uint64(testBase), d.Offset)
}

func TestParseChecksumMismatchDegrades(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		data, _ := buildChunk(t, 1, 2)
		data[0x40] ^= 0xFF // unused header byte, covered by the header CRC

		res := Parse(data, 0, testBase, defaultOpts)
		assert.True(t, res.Degraded)
		assert.Len(t, res.Records, 2)
		assert.Equal(t, []types.ErrKind{types.ErrKindChunkChecksumMismatch}, kinds(res.Diagnostics))
		assert.Equal(t, uint64(testBase+format.ChunkHeaderChecksumOffset), res.Diagnostics[0].Offset)
	})

	t.Run("records", func(t *testing.T) {
		data, _ := buildChunk(t, 1, 2)
		format.PutU32(data, format.ChunkRecordsChecksumOffset, 0xDEADBEEF)
		format.PutU32(data, format.ChunkHeaderChecksumOffset, format.ChunkHeaderChecksum(data))

		res := Parse(data, 0, testBase, defaultOpts)
		assert.True(t, res.Degraded)
		assert.Len(t, res.Records, 2)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, uint32(0xDEADBEEF), res.Diagnostics[0].Expected)
	})

	t.Run("not verified", func(t *testing.T) {
		data, _ := buildChunk(t, 1, 2)
		data[0x40] ^= 0xFF

		res := Parse(data, 0, testBase, Options{})
		assert.False(t, res.Degraded)
		assert.Empty(t, res.Diagnostics)
	})
}

func TestParseSizeMismatchStopsScan(t *testing.T) {
	data, offs := buildChunk(t, 1, 2, 3, 4, 5)
	size := int(binary.LittleEndian.Uint32(data[offs[2]+format.RecordSizeOffset:]))
	format.PutU32(data, offs[2]+size-format.RecordTrailerSize, uint32(size+8))
	evtxgen.Rechecksum(data)

	res := Parse(data, 0, testBase, defaultOpts)
	require.Len(t, res.Records, 2)
	assert.Equal(t, uint64(2), res.Records[1].ID)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, types.ErrKindRecordSizeMismatch, d.Kind)
	assert.Equal(t, uint64(3), d.RecordID)
	assert.Equal(t, uint64(testBase)+uint64(offs[2]), d.Offset)
}

func TestParseBadRecordMagicStopsScan(t *testing.T) {
	data, offs := buildChunk(t, 1, 2, 3)
	copy(data[offs[1]:], "XXXX")
	evtxgen.Rechecksum(data)

	res := Parse(data, 0, testBase, defaultOpts)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []types.ErrKind{types.ErrKindRecordCorrupt}, kinds(res.Diagnostics))
	assert.Equal(t, types.SevError, res.Diagnostics[0].Severity)
}

func TestParseOrderingAnomalyContinues(t *testing.T) {
	data, _ := buildChunk(t, 1, 2, 5, 3, 4)

	res := Parse(data, 0, testBase, defaultOpts)
	require.Len(t, res.Records, 5)
	assert.Equal(t, []types.ErrKind{types.ErrKindRecordOrderingAnomaly}, kinds(res.Diagnostics))
	assert.Equal(t, uint64(3), res.Diagnostics[0].RecordID)
	assert.Equal(t, types.SevWarning, res.Diagnostics[0].Severity)
}

func TestParseUndecodableRecordIsKept(t *testing.T) {
	data, offs := buildChunk(t, 1, 2, 3)
	// First token after the fragment header of record 2.
	data[offs[1]+format.RecordHeaderSize+4] = 0x3A
	evtxgen.Rechecksum(data)

	res := Parse(data, 0, testBase, defaultOpts)
	require.Len(t, res.Records, 3)

	bad := res.Records[1]
	assert.Equal(t, uint64(2), bad.ID)
	require.Error(t, bad.Err)
	assert.ErrorIs(t, bad.Err, &types.Error{Kind: types.ErrKindRecordCorrupt})
	assert.Equal(t, "Event", bad.Root.Name)
	assert.Empty(t, bad.Root.Children)

	assert.NoError(t, res.Records[2].Err)
	assert.Equal(t, "4603", res.Records[2].Root.Path("System", "EventID").Text())
	assert.Equal(t, []types.ErrKind{types.ErrKindRecordCorrupt}, kinds(res.Diagnostics))
	assert.Equal(t, uint64(2), res.Diagnostics[0].RecordID)
}

func TestParseStopsAtFreeSpace(t *testing.T) {
	data, offs := buildChunk(t, 1, 2, 3)
	// Pretend only the first two records were committed.
	format.PutU32(data, format.ChunkFreeSpaceOffsetOffset, uint32(offs[2]))
	format.PutU64(data, format.ChunkLastRecordIDOffset, 0)
	format.PutU32(data, format.ChunkLastRecordOffsetOffset, 0)
	evtxgen.Rechecksum(data)

	res := Parse(data, 0, testBase, defaultOpts)
	assert.Len(t, res.Records, 2)
	assert.Empty(t, res.Diagnostics)
}
