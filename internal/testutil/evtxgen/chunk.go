package evtxgen

import (
	"encoding/binary"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/joshuapare/evtxkit/internal/format"
)

// ErrChunkFull reports a record that does not fit in the remaining chunk space.
var ErrChunkFull = errors.New("evtxgen: chunk full")

// Chunk accumulates records for one 64 KiB chunk.
type Chunk struct {
	buf []byte
	pos int

	names     map[string]uint32
	templates map[uuid.UUID]uint32

	stringBuckets   [format.ChunkStringBuckets]uint32
	templateBuckets [format.ChunkTemplateBuckets]uint32
	nameTails       map[int]uint32
	templateTails   map[int]uint32

	count      uint64
	firstID    uint64
	lastID     uint64
	lastRecord int
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		buf:           make([]byte, format.ChunkSize),
		pos:           format.ChunkRecordsStart,
		names:         make(map[string]uint32),
		templates:     make(map[uuid.UUID]uint32),
		nameTails:     make(map[int]uint32),
		templateTails: make(map[int]uint32),
	}
}

// Len returns the number of records written.
func (c *Chunk) Len() int { return int(c.count) }

// LastID returns the id of the last record written.
func (c *Chunk) LastID() uint64 { return c.lastID }

// AddRecord appends a record and returns its chunk-relative offset.
func (c *Chunk) AddRecord(id uint64, ts time.Time, p Payload) (int, error) {
	// a record that does not fit must leave the tables untouched
	e := newEncoder(c.pos+format.RecordHeaderSize, maps.Clone(c.names), maps.Clone(c.templates))
	p.encode(e)

	size := format.RecordMinSize + len(e.out)
	if c.pos+size > format.ChunkSize {
		return 0, ErrChunkFull
	}
	c.names, c.templates = e.names, e.templates
	off := c.pos
	copy(c.buf[off:], format.RecordSignature)
	format.PutU32(c.buf, off+format.RecordSizeOffset, uint32(size))
	format.PutU64(c.buf, off+format.RecordIDOffset, id)
	format.PutU64(c.buf, off+format.RecordTimeOffset, format.TimeToFiletime(ts))
	copy(c.buf[off+format.RecordHeaderSize:], e.out)
	format.PutU32(c.buf, off+size-format.RecordTrailerSize, uint32(size))

	for _, n := range e.newNames {
		c.linkName(n)
	}
	for _, t := range e.newTmpls {
		c.linkTemplate(t)
	}

	if c.count == 0 {
		c.firstID = id
	}
	c.count++
	c.lastID = id
	c.lastRecord = off
	c.pos += size
	return off, nil
}

// MustAddRecord is AddRecord for fixtures known to fit.
func (c *Chunk) MustAddRecord(id uint64, ts time.Time, p Payload) int {
	off, err := c.AddRecord(id, ts, p)
	if err != nil {
		panic(err)
	}
	return off
}

func (c *Chunk) linkName(n pendingName) {
	bucket := int(n.hash) % format.ChunkStringBuckets
	if tail, ok := c.nameTails[bucket]; ok {
		format.PutU32(c.buf, int(tail), n.off)
	} else {
		c.stringBuckets[bucket] = n.off
	}
	c.nameTails[bucket] = n.off
}

func (c *Chunk) linkTemplate(t pendingTemplate) {
	bucket := int(t.id) % format.ChunkTemplateBuckets
	if tail, ok := c.templateTails[bucket]; ok {
		format.PutU32(c.buf, int(tail), t.off)
	} else {
		c.templateBuckets[bucket] = t.off
	}
	c.templateTails[bucket] = t.off
}

// Bytes finalizes the chunk header (including both checksums) and returns a
// copy of the chunk.
func (c *Chunk) Bytes() []byte {
	b := make([]byte, format.ChunkSize)
	copy(b, c.buf)
	copy(b, format.ChunkSignature)
	format.PutU64(b, format.ChunkFirstRecordNumberOffset, c.firstID)
	format.PutU64(b, format.ChunkLastRecordNumberOffset, c.lastID)
	format.PutU64(b, format.ChunkFirstRecordIDOffset, c.firstID)
	format.PutU64(b, format.ChunkLastRecordIDOffset, c.lastID)
	format.PutU32(b, format.ChunkHeaderSizeOffset, format.ChunkHeaderSize)
	format.PutU32(b, format.ChunkLastRecordOffsetOffset, uint32(c.lastRecord))
	format.PutU32(b, format.ChunkFreeSpaceOffsetOffset, uint32(c.pos))
	for i, off := range c.stringBuckets {
		binary.LittleEndian.PutUint32(b[format.ChunkStringTableOffset+4*i:], off)
	}
	for i, off := range c.templateBuckets {
		binary.LittleEndian.PutUint32(b[format.ChunkTemplateTableOffset+4*i:], off)
	}
	Rechecksum(b)
	return b
}

// Rechecksum recomputes both checksums of chunk b in place, e.g. after a test
// edited a record.
func Rechecksum(b []byte) {
	free := int(binary.LittleEndian.Uint32(b[format.ChunkFreeSpaceOffsetOffset:]))
	if crc, ok := format.ChunkRecordsChecksum(b, free); ok {
		format.PutU32(b, format.ChunkRecordsChecksumOffset, crc)
	}
	format.PutU32(b, format.ChunkHeaderChecksumOffset, format.ChunkHeaderChecksum(b))
}
