package binxml

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/joshuapare/evtxkit/internal/buf"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// Template definition layout: next-offset u32, GUID, data size u32, then the
// token stream (fragment header, element tree, EOF).
const templateHeaderSize = 4 + buf.GUIDSize + 4

// TemplateDefinition is a compiled template, shared by every record of the
// chunk that instantiates it.
type TemplateDefinition struct {
	ID     uint32
	GUID   uuid.UUID
	Offset uint32 // chunk-relative offset of the definition header
	Chunk  int
	Size   uint32 // token stream length
	Slots  int    // highest substitution index referenced, plus one

	ops []op
}

// Template resolves the definition at chunk offset off, compiling it on first
// use.
func (c *Context) Template(off uint32) (*TemplateDefinition, error) {
	if d, ok := c.templates[off]; ok {
		return d, nil
	}
	d, _, err := c.parseTemplate(off)
	if err != nil {
		return nil, err
	}
	c.templates[off] = d
	return d, nil
}

func (c *Context) parseTemplate(off uint32) (*TemplateDefinition, uint32, error) {
	r := buf.NewReader(c.data)
	if err := r.Seek(int(off)); err != nil {
		return nil, 0, fmt.Errorf("template at 0x%x: %w", off, err)
	}
	next, err := r.U32()
	if err != nil {
		return nil, 0, fmt.Errorf("template at 0x%x: %w", off, err)
	}
	raw, err := r.Bytes(buf.GUIDSize)
	if err != nil {
		return nil, 0, fmt.Errorf("template at 0x%x: %w", off, err)
	}
	size, err := r.U32()
	if err != nil {
		return nil, 0, fmt.Errorf("template at 0x%x: %w", off, err)
	}
	start := r.Pos()
	end, ok := buf.AddOverflowSafe(start, int(size))
	if !ok || end > len(c.data) {
		return nil, 0, fmt.Errorf("template at 0x%x: data size %d: %w", off, size, buf.ErrOutOfBounds)
	}
	ops, err := c.compile(start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("template at 0x%x: %w", off, err)
	}
	d := &TemplateDefinition{
		ID:     binary.LittleEndian.Uint32(raw),
		GUID:   guidFromWindows(raw),
		Offset: off,
		Chunk:  c.opts.Chunk,
		Size:   size,
		ops:    ops,
	}
	for _, o := range ops {
		if o.kind == opSubst && o.index >= d.Slots {
			d.Slots = o.index + 1
		}
	}
	return d, next, nil
}

// PreloadTemplates compiles every definition reachable from the chunk's
// template pointer table.
func (c *Context) PreloadTemplates(buckets []uint32) []Warning {
	var warns []Warning
	for _, head := range buckets {
		seen := 0
		for off := head; off != 0; seen++ {
			if seen >= maxChainLength {
				warns = append(warns, Warning{Kind: types.ErrKindOutOfBounds, Offset: int(head), Msg: "template table chain too long"})
				break
			}
			if _, ok := c.templates[off]; ok {
				break
			}
			d, next, err := c.parseTemplate(off)
			if err != nil {
				warns = append(warns, Warning{Kind: errKindOf(err), Offset: int(off), Msg: err.Error()})
				break
			}
			c.templates[off] = d
			off = next
		}
	}
	return warns
}

// errKindOf classifies a decoding error for diagnostics.
func errKindOf(err error) types.ErrKind {
	var typed *types.Error
	switch {
	case errors.As(err, &typed):
		return typed.Kind
	case errors.Is(err, buf.ErrOutOfBounds):
		return types.ErrKindOutOfBounds
	default:
		return types.ErrKindRecordCorrupt
	}
}
