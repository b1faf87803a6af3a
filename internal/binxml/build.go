package binxml

import (
	"fmt"

	"github.com/joshuapare/evtxkit/internal/buf"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// RootName is the name of every decoded record root.
const RootName = "Event"

// frame is one op stream being executed: the record itself, a template
// instance or an embedded BinXml value.
type frame struct {
	ops  []op
	pc   int
	base int // element stack height when the frame was pushed
	subs []substitution

	decoded []types.Value
	done    []bool
}

type builder struct {
	c      *Context
	frames []*frame
	elems  []*types.Element // elems[0] is the document node
	warns  []Warning

	attrOpen    bool
	attrFed     bool
	attrOmitted bool
}

// Decode decodes the binary XML payload at chunk offset off. The returned root
// is always named Event. Warnings describe placeholders that replaced
// undecodable or over-nested nodes; an error means the payload as a whole
// could not be decoded.
func (c *Context) Decode(off, size int) (*types.Element, []Warning, error) {
	end, ok := buf.AddOverflowSafe(off, size)
	if !ok || off < 0 || size < 0 || end > len(c.data) {
		return nil, nil, fmt.Errorf("payload at 0x%x size %d: %w", off, size, buf.ErrOutOfBounds)
	}
	ops, err := c.compile(off, end)
	if err != nil {
		return nil, nil, err
	}

	doc := &types.Element{}
	b := &builder{c: c, elems: []*types.Element{doc}}
	b.push(ops, nil)
	if err := b.run(); err != nil {
		return nil, b.warns, err
	}
	return rootOf(doc), b.warns, nil
}

func rootOf(doc *types.Element) *types.Element {
	for _, ch := range doc.Children {
		if ch.Name == RootName {
			return ch
		}
	}
	return &types.Element{Name: RootName, Children: doc.Children}
}

// depth counts active frames plus open elements (the document node excluded).
func (b *builder) depth() int { return len(b.frames) + len(b.elems) - 1 }

func (b *builder) current() *types.Element { return b.elems[len(b.elems)-1] }

func (b *builder) push(ops []op, subs []substitution) {
	b.frames = append(b.frames, &frame{ops: ops, base: len(b.elems), subs: subs})
}

func (b *builder) warn(kind types.ErrKind, off int, format string, args ...any) {
	b.warns = append(b.warns, Warning{Kind: kind, Offset: off, Msg: fmt.Sprintf(format, args...)})
}

func (b *builder) run() error {
	for len(b.frames) > 0 {
		f := b.frames[len(b.frames)-1]
		if f.pc >= len(f.ops) {
			b.closeAttr()
			// Elements a frame leaves open end with it.
			b.elems = b.elems[:f.base]
			b.frames = b.frames[:len(b.frames)-1]
			continue
		}
		o := &f.ops[f.pc]
		f.pc++

		switch o.kind {
		case opOpen:
			b.closeAttr()
			if b.depth()+1 > b.c.opts.MaxDepth {
				b.overflow(o.name, o.offset)
				skipElement(f)
				continue
			}
			el := &types.Element{Name: o.name}
			parent := b.current()
			parent.Children = append(parent.Children, el)
			b.elems = append(b.elems, el)
		case opAttr:
			b.closeAttr()
			cur := b.current()
			cur.Attributes = append(cur.Attributes, types.Attribute{Name: o.name})
			b.attrOpen, b.attrFed, b.attrOmitted = true, false, false
		case opCloseStart:
			b.closeAttr()
		case opCloseEmpty, opEnd:
			b.closeAttr()
			if len(b.elems) > f.base {
				b.elems = b.elems[:len(b.elems)-1]
			}
		case opText:
			b.emit(types.StringValue(o.text))
		case opSubst:
			b.substitute(f, o)
		case opTemplate:
			if err := b.instantiate(o); err != nil {
				return err
			}
		}
	}
	return nil
}

// overflow records a nesting-limit hit and leaves a placeholder in the tree.
func (b *builder) overflow(name string, off int) {
	b.closeAttr()
	parent := b.current()
	parent.Children = append(parent.Children, placeholder(name, ReasonDepth))
	b.warn(types.ErrKindTemplateDepthExceeded, off, "%s nested beyond %d levels", name, b.c.opts.MaxDepth)
}

// Placeholder reasons.
const (
	ReasonDepth   = "nesting limit"
	ReasonInvalid = "invalid embedded binxml"
)

func placeholder(name, reason string) *types.Element {
	return &types.Element{Name: name, Placeholder: true, Reason: reason}
}

// skipElement advances f past the element whose open op was just consumed.
func skipElement(f *frame) {
	for level := 1; f.pc < len(f.ops) && level > 0; f.pc++ {
		switch f.ops[f.pc].kind {
		case opOpen:
			level++
		case opCloseEmpty, opEnd:
			level--
		}
	}
}

func (b *builder) closeAttr() {
	if !b.attrOpen {
		return
	}
	b.attrOpen = false
	if !b.attrFed && b.attrOmitted {
		cur := b.current()
		cur.Attributes = cur.Attributes[:len(cur.Attributes)-1]
	}
}

// emit routes a value to the open attribute or to the current element's text.
func (b *builder) emit(v types.Value) {
	cur := b.current()
	if b.attrOpen {
		a := &cur.Attributes[len(cur.Attributes)-1]
		if !b.attrFed || a.Value.IsNull() {
			a.Value = v
		} else if !v.IsNull() {
			a.Value = types.StringValue(a.Value.String() + v.String())
		}
		b.attrFed = true
		return
	}
	if len(b.elems) == 1 {
		return // text outside the root element
	}
	cur.AppendText(v)
}

func (b *builder) substitute(f *frame, o *op) {
	var s substitution
	if o.index < len(f.subs) {
		s = f.subs[o.index]
	}
	if s.typ == types.ValNull || s.size == 0 {
		if o.optional {
			if b.attrOpen {
				b.attrOmitted = true
			}
			return
		}
		b.emit(types.Value{Type: types.ValNull})
		return
	}

	if s.typ == types.ValBinXML {
		if b.attrOpen {
			b.emit(types.Value{Type: types.ValBinXML})
			return
		}
		if b.depth()+1 > b.c.opts.MaxDepth {
			b.overflow("BinXml", o.offset)
			return
		}
		ops, err := b.c.compile(s.offset, s.offset+s.size)
		if err != nil {
			b.warn(errKindOf(err), s.offset, "embedded binxml: %v", err)
			b.current().Children = append(b.current().Children, placeholder("BinXml", ReasonInvalid))
			return
		}
		b.push(ops, nil)
		return
	}

	b.emit(b.value(f, o.index, s))
}

// value decodes substitution i of f once; later references reuse the result.
func (b *builder) value(f *frame, i int, s substitution) types.Value {
	if f.done == nil {
		f.decoded = make([]types.Value, len(f.subs))
		f.done = make([]bool, len(f.subs))
	}
	if f.done[i] {
		return f.decoded[i]
	}
	v, err := decodeValue(s.typ, b.c.data[s.offset:s.offset+s.size])
	if err != nil {
		b.warn(errKindOf(err), s.offset, "substitution %d: %v", i, err)
		v = placeholderValue(s.typ)
	}
	f.decoded[i], f.done[i] = v, true
	return v
}

func (b *builder) instantiate(o *op) error {
	b.closeAttr()
	if b.depth()+1 > b.c.opts.MaxDepth {
		b.overflow("Template", o.offset)
		return nil
	}
	def, err := b.c.Template(o.tmpl.defOffset)
	if err != nil {
		return fmt.Errorf("template instance at 0x%x: %w", o.offset, err)
	}
	b.push(def.ops, o.tmpl.subs)
	return nil
}
