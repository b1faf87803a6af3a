package binxml

import (
	"fmt"

	"github.com/joshuapare/evtxkit/internal/buf"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// compile translates the token stream in [start, end) into ops. It stops at
// the first EOF token or at end. Template definitions and embedded BinXml
// values are not followed here; build resolves them when it reaches them.
func (c *Context) compile(start, end int) ([]op, error) {
	if end > len(c.data) {
		return nil, fmt.Errorf("stream end 0x%x past chunk: %w", end, buf.ErrOutOfBounds)
	}
	r := buf.NewReader(c.data[:end])
	if err := r.Seek(start); err != nil {
		return nil, err
	}

	var ops []op
	for r.Remaining() > 0 {
		off := r.Pos()
		tok, _ := r.U8()
		more := tok&tokMoreFlag != 0

		var err error
		switch tok &^ tokMoreFlag {
		case tokEOF:
			return ops, nil
		case tokFragmentHeader:
			err = r.Skip(fragmentHeaderSize)
		case tokOpenStart:
			var name string
			name, err = c.compileOpen(r, more)
			ops = append(ops, op{kind: opOpen, offset: off, name: name})
		case tokCloseStart:
			ops = append(ops, op{kind: opCloseStart, offset: off})
		case tokCloseEmpty:
			ops = append(ops, op{kind: opCloseEmpty, offset: off})
		case tokEndElement:
			ops = append(ops, op{kind: opEnd, offset: off})
		case tokValue:
			var s string
			if err = r.Skip(1); err == nil { // value type, always a string here
				s, err = readCountedString(r)
			}
			ops = append(ops, op{kind: opText, offset: off, text: s})
		case tokAttribute:
			var name string
			name, err = c.readNameRef(r)
			ops = append(ops, op{kind: opAttr, offset: off, name: types.LocalName(name)})
		case tokCDATA:
			var s string
			s, err = readCountedString(r)
			ops = append(ops, op{kind: opText, offset: off, text: s})
		case tokCharRef:
			var v uint16
			v, err = r.U16()
			ops = append(ops, op{kind: opText, offset: off, text: string(rune(v))})
		case tokEntityRef:
			var name string
			name, err = c.readNameRef(r)
			text, ok := entities[name]
			if !ok {
				text = "&" + name + ";"
			}
			ops = append(ops, op{kind: opText, offset: off, text: text})
		case tokPITarget:
			_, err = c.readNameRef(r)
		case tokPIData:
			_, err = readCountedString(r)
		case tokTemplateInstance:
			var ref *templateRef
			ref, err = compileTemplateInstance(r)
			ops = append(ops, op{kind: opTemplate, offset: off, tmpl: ref})
		case tokNormalSubst, tokOptionalSubst:
			var idx uint16
			if idx, err = r.U16(); err == nil {
				err = r.Skip(1) // declared type; the descriptor's type wins
			}
			ops = append(ops, op{kind: opSubst, offset: off, index: int(idx), optional: tok == tokOptionalSubst})
		default:
			return ops, fmt.Errorf("token 0x%02x at 0x%x: %w", tok, off, ErrBadToken)
		}
		if err != nil {
			return ops, fmt.Errorf("token 0x%02x at 0x%x: %w", tok, off, err)
		}
	}
	return ops, nil
}

// compileOpen reads an open-start element token body: dependency id, data
// size, name reference and, with attributes, the attribute list size.
func (c *Context) compileOpen(r *buf.Reader, hasAttrs bool) (string, error) {
	if err := r.Skip(2 + 4); err != nil {
		return "", err
	}
	name, err := c.readNameRef(r)
	if err != nil {
		return "", err
	}
	if hasAttrs {
		if err := r.Skip(4); err != nil {
			return "", err
		}
	}
	return types.LocalName(name), nil
}

// compileTemplateInstance reads a template instance token body. An inline
// definition (its offset equals the cursor) is skipped; Context.Template
// compiles it from the same bytes on demand.
func compileTemplateInstance(r *buf.Reader) (*templateRef, error) {
	if err := r.Skip(1); err != nil {
		return nil, err
	}
	id, err := r.U32()
	if err != nil {
		return nil, err
	}
	defOff, err := r.U32()
	if err != nil {
		return nil, err
	}
	if int(defOff) == r.Pos() {
		if err := r.Skip(4 + buf.GUIDSize); err != nil {
			return nil, err
		}
		size, err := r.U32()
		if err != nil {
			return nil, err
		}
		if err := r.Skip(int(size)); err != nil {
			return nil, fmt.Errorf("inline template definition: %w", err)
		}
	}

	count, err := r.U32()
	if err != nil {
		return nil, err
	}
	if _, err := buf.CheckListBounds(r.Len(), r.Pos(), int(count), 4); err != nil {
		return nil, fmt.Errorf("substitution descriptors: %w", err)
	}
	ref := &templateRef{id: id, defOffset: defOff, subs: make([]substitution, count)}
	for i := range ref.subs {
		size, _ := r.U16()
		typ, _ := r.U8()
		_, _ = r.U8()
		ref.subs[i] = substitution{typ: types.ValueType(typ), size: int(size)}
	}
	for i := range ref.subs {
		ref.subs[i].offset = r.Pos()
		if err := r.Skip(ref.subs[i].size); err != nil {
			return nil, fmt.Errorf("substitution %d value: %w", i, err)
		}
	}
	return ref, nil
}

// readCountedString reads a u16 character count followed by UTF-16LE text.
func readCountedString(r *buf.Reader) (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	s, err := r.UTF16(int(n))
	if err != nil {
		return "", err
	}
	return buf.TrimNUL(s), nil
}
