package binxml

import "github.com/joshuapare/evtxkit/pkg/types"

// Binary XML tokens. tokMoreFlag marks "has attributes" on an open-start and
// "more data follows" on value, attribute and reference tokens.
const (
	tokEOF              = 0x00
	tokOpenStart        = 0x01
	tokCloseStart       = 0x02
	tokCloseEmpty       = 0x03
	tokEndElement       = 0x04
	tokValue            = 0x05
	tokAttribute        = 0x06
	tokCDATA            = 0x07
	tokCharRef          = 0x08
	tokEntityRef        = 0x09
	tokPITarget         = 0x0A
	tokPIData           = 0x0B
	tokTemplateInstance = 0x0C
	tokNormalSubst      = 0x0D
	tokOptionalSubst    = 0x0E
	tokFragmentHeader   = 0x0F

	tokMoreFlag = 0x40
)

// fragmentHeaderSize is the major, minor and flags bytes after the token.
const fragmentHeaderSize = 3

type opKind uint8

const (
	opOpen opKind = iota
	opCloseStart
	opCloseEmpty
	opEnd
	opText
	opAttr
	opSubst
	opTemplate
)

// op is one compiled instruction. Only the fields relevant to kind are set.
type op struct {
	kind     opKind
	offset   int    // chunk-relative offset of the source token
	name     string // opOpen, opAttr
	text     string // opText
	index    int    // opSubst
	optional bool   // opSubst
	tmpl     *templateRef
}

// templateRef is a template instance: the definition it points at plus the
// raw substitution values that fill it.
type templateRef struct {
	id        uint32
	defOffset uint32
	subs      []substitution
}

// substitution locates one raw substitution value inside the chunk.
type substitution struct {
	typ    types.ValueType
	offset int
	size   int
}

var entities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}
