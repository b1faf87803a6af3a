// Package evtxgen builds synthetic EVTX files for tests: binary XML payloads,
// template definitions, chunks with valid checksums and file headers.
// Structures are written the way Windows writes them, so any byte can be
// corrupted afterwards to exercise recovery paths.
package evtxgen

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/joshuapare/evtxkit/pkg/types"
)

// Node is an element to encode.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string // literal text content
	Sub      *Sub   // substitution as text content
	Children []Node
}

// Attr is an attribute with either a literal value or a substitution.
type Attr struct {
	Name  string
	Value string
	Sub   *Sub
}

// Sub references substitution Index of the enclosing template instance.
type Sub struct {
	Index    uint16
	Type     types.ValueType
	Optional bool
}

// Template is a template definition.
type Template struct {
	GUID uuid.UUID
	Root Node
}

// ID is the template identifier: the first four bytes of the on-disk GUID.
func (t *Template) ID() uint32 { return binary.LittleEndian.Uint32(guidBytes(t.GUID)) }

// Payload is the content of a record or of an embedded BinXml value.
type Payload interface {
	encode(e *encoder)
}

// Fragment is a plain element tree without templates.
type Fragment struct {
	Root Node
}

// Instance instantiates Template with Values.
type Instance struct {
	Template *Template
	Values   []Value
}

// RawPayload is written verbatim (no fragment header or EOF).
type RawPayload []byte

type pendingName struct {
	off  uint32
	hash uint16
}

type pendingTemplate struct {
	off uint32
	id  uint32
}

// encoder appends binary XML to out, which starts at chunk offset base.
// Names and templates seen before are referenced instead of re-emitted.
type encoder struct {
	out  []byte
	base int

	names     map[string]uint32
	templates map[uuid.UUID]uint32
	newNames  []pendingName
	newTmpls  []pendingTemplate
}

func newEncoder(base int, names map[string]uint32, templates map[uuid.UUID]uint32) *encoder {
	if names == nil {
		names = make(map[string]uint32)
	}
	if templates == nil {
		templates = make(map[uuid.UUID]uint32)
	}
	return &encoder{base: base, names: names, templates: templates}
}

func (e *encoder) pos() int { return e.base + len(e.out) }

func (e *encoder) u8(v uint8)   { e.out = append(e.out, v) }
func (e *encoder) u16(v uint16) { e.out = binary.LittleEndian.AppendUint16(e.out, v) }
func (e *encoder) u32(v uint32) { e.out = binary.LittleEndian.AppendUint32(e.out, v) }

// reserve32 appends a zero u32 and returns its index in out for patching.
func (e *encoder) reserve32() int {
	at := len(e.out)
	e.u32(0)
	return at
}

func (e *encoder) patch32(at int, v uint32) { binary.LittleEndian.PutUint32(e.out[at:], v) }

func (e *encoder) fragmentHeader() { e.out = append(e.out, 0x0F, 0x01, 0x01, 0x00) }

func (e *encoder) nameRef(name string) {
	if off, ok := e.names[name]; ok {
		e.u32(off)
		return
	}
	off := uint32(e.pos() + 4)
	e.u32(off)
	e.u32(0) // next in bucket
	h := nameHash(name)
	e.u16(h)
	chars := utf16Bytes(name)
	e.u16(uint16(len(chars) / 2))
	e.out = append(e.out, chars...)
	e.u16(0)
	e.names[name] = off
	e.newNames = append(e.newNames, pendingName{off: off, hash: h})
}

func nameHash(s string) uint16 {
	var h uint32
	for _, c := range utf16Bytes(s) {
		h = h*65599 + uint32(c)
	}
	return uint16(h)
}

func (e *encoder) text(s string) {
	e.u8(0x05)
	e.u8(uint8(types.ValString))
	chars := utf16Bytes(s)
	e.u16(uint16(len(chars) / 2))
	e.out = append(e.out, chars...)
}

func (e *encoder) sub(s *Sub) {
	if s.Optional {
		e.u8(0x0E)
	} else {
		e.u8(0x0D)
	}
	e.u16(s.Index)
	e.u8(uint8(s.Type))
}

func (e *encoder) node(n Node) {
	tok := uint8(0x01)
	if len(n.Attrs) > 0 {
		tok |= 0x40
	}
	e.u8(tok)
	e.u16(0xFFFF) // dependency id
	sizeAt := e.reserve32()
	e.nameRef(n.Name)

	if len(n.Attrs) > 0 {
		listAt := e.reserve32()
		for i, a := range n.Attrs {
			at := uint8(0x06)
			if i < len(n.Attrs)-1 {
				at |= 0x40
			}
			e.u8(at)
			e.nameRef(a.Name)
			if a.Sub != nil {
				e.sub(a.Sub)
			} else {
				e.text(a.Value)
			}
		}
		e.patch32(listAt, uint32(len(e.out)-listAt-4))
	}

	if len(n.Children) == 0 && n.Text == "" && n.Sub == nil {
		e.u8(0x03)
	} else {
		e.u8(0x02)
		if n.Text != "" {
			e.text(n.Text)
		}
		if n.Sub != nil {
			e.sub(n.Sub)
		}
		for _, ch := range n.Children {
			e.node(ch)
		}
		e.u8(0x04)
	}
	e.patch32(sizeAt, uint32(len(e.out)-sizeAt-4))
}

func (f Fragment) encode(e *encoder) {
	e.fragmentHeader()
	e.node(f.Root)
	e.u8(0x00)
}

func (p RawPayload) encode(e *encoder) { e.out = append(e.out, p...) }

func (in Instance) encode(e *encoder) {
	e.fragmentHeader()
	in.instance(e)
	e.u8(0x00)
}

func (in Instance) instance(e *encoder) {
	t := in.Template
	e.u8(0x0C)
	e.u8(0x01)
	e.u32(t.ID())
	if off, ok := e.templates[t.GUID]; ok {
		e.u32(off)
	} else {
		off := uint32(e.pos() + 4)
		e.u32(off)
		e.u32(0) // next in bucket
		e.out = append(e.out, guidBytes(t.GUID)...)
		sizeAt := e.reserve32()
		e.fragmentHeader()
		e.node(t.Root)
		e.u8(0x00)
		e.patch32(sizeAt, uint32(len(e.out)-sizeAt-4))
		e.templates[t.GUID] = off
		e.newTmpls = append(e.newTmpls, pendingTemplate{off: off, id: t.ID()})
	}

	// Embedded payloads are sized with a throwaway encode; their names and
	// templates are always inline, so the size does not depend on position.
	data := make([][]byte, len(in.Values))
	for i, v := range in.Values {
		if v.Embedded != nil {
			probe := newEncoder(0, nil, nil)
			v.Embedded.encode(probe)
			data[i] = probe.out
		} else {
			data[i] = v.Data
		}
	}

	e.u32(uint32(len(in.Values)))
	for i, v := range in.Values {
		e.u16(uint16(len(data[i])))
		e.u8(uint8(v.Type))
		e.u8(0)
	}
	for i, v := range in.Values {
		if v.Embedded != nil {
			nested := newEncoder(e.pos(), nil, nil)
			v.Embedded.encode(nested)
			e.out = append(e.out, nested.out...)
			continue
		}
		e.out = append(e.out, data[i]...)
	}
}
