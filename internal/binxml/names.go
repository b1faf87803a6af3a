package binxml

import (
	"fmt"

	"github.com/joshuapare/evtxkit/internal/buf"
)

// Name layout: next-offset u32, hash u16, character count u16, UTF-16LE
// characters, NUL terminator.
const (
	nameHeaderSize  = 8
	nameTrailerSize = 2
)

// maxChainLength bounds hash-bucket chains, which a damaged chunk can turn
// into cycles.
const maxChainLength = 4096

// Name resolves the name at chunk offset off through the string cache.
func (c *Context) Name(off uint32) (string, error) {
	if s, ok := c.names[off]; ok {
		return s, nil
	}
	s, _, _, err := c.parseName(int(off))
	if err != nil {
		return "", err
	}
	c.names[off] = s
	return s, nil
}

func (c *Context) parseName(off int) (name string, next uint32, size int, err error) {
	r := buf.NewReader(c.data)
	if err = r.Seek(off); err != nil {
		return "", 0, 0, fmt.Errorf("name at 0x%x: %w", off, err)
	}
	if next, err = r.U32(); err != nil {
		return "", 0, 0, fmt.Errorf("name at 0x%x: %w", off, err)
	}
	if err = r.Skip(2); err != nil { // hash
		return "", 0, 0, fmt.Errorf("name at 0x%x: %w", off, err)
	}
	n, err := r.U16()
	if err != nil {
		return "", 0, 0, fmt.Errorf("name at 0x%x: %w", off, err)
	}
	if name, err = r.UTF16(int(n)); err != nil {
		return "", 0, 0, fmt.Errorf("name at 0x%x: %w", off, err)
	}
	return buf.TrimNUL(name), next, nameHeaderSize + 2*int(n) + nameTrailerSize, nil
}

// readNameRef reads a name-offset field at the cursor. When the offset points
// at the cursor itself the name is stored inline and the cursor moves past it.
func (c *Context) readNameRef(r *buf.Reader) (string, error) {
	off, err := r.U32()
	if err != nil {
		return "", err
	}
	if int(off) != r.Pos() {
		return c.Name(off)
	}
	name, _, size, err := c.parseName(int(off))
	if err != nil {
		return "", err
	}
	if err := r.Skip(size); err != nil {
		return "", fmt.Errorf("inline name at 0x%x: %w", off, err)
	}
	c.names[off] = name
	return name, nil
}

// PreloadStrings fills the string cache from the chunk's string hash table,
// following every bucket's chain.
func (c *Context) PreloadStrings(buckets []uint32) []Warning {
	var warns []Warning
	for _, head := range buckets {
		seen := 0
		for off := head; off != 0; seen++ {
			if seen >= maxChainLength {
				warns = append(warns, Warning{Kind: errKindOf(buf.ErrOutOfBounds), Offset: int(head), Msg: "string table chain too long"})
				break
			}
			if _, ok := c.names[off]; ok {
				break
			}
			name, next, _, err := c.parseName(int(off))
			if err != nil {
				warns = append(warns, Warning{Kind: errKindOf(err), Offset: int(off), Msg: err.Error()})
				break
			}
			c.names[off] = name
			off = next
		}
	}
	return warns
}
