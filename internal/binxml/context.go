// Package binxml decodes the binary XML payload of event records into
// types.Element trees.
//
// Decoding runs in two phases. compile turns a token stream into a flat op
// list in one linear pass; template definitions are compiled once per chunk and
// memoized by their chunk-local offset. build then walks the ops with an
// explicit frame stack (one frame per template instance or embedded BinXml
// value) and an explicit element stack, so hostile nesting is bounded by
// Options.MaxDepth rather than by the goroutine stack.
//
// All offsets are relative to the start of the owning chunk: names, template
// definitions and substitution values are addressed that way on disk.
package binxml

import (
	"errors"

	"github.com/joshuapare/evtxkit/pkg/types"
)

// DefaultMaxDepth bounds frames plus open elements during build.
const DefaultMaxDepth = 256

// ErrBadToken reports a byte that is not a binary XML token.
var ErrBadToken = errors.New("binxml: invalid token")

// Options configures a Context.
type Options struct {
	// MaxDepth bounds template frames plus element nesting. <= 0 selects
	// DefaultMaxDepth.
	MaxDepth int
	// Chunk is the index of the owning chunk, recorded on template definitions.
	Chunk int
}

// Warning is a non-fatal decoding issue: the affected node was replaced by a
// placeholder and decoding continued.
type Warning struct {
	Kind   types.ErrKind
	Offset int // chunk-relative
	Msg    string
}

// Context holds the per-chunk caches. It is owned by the goroutine decoding
// the chunk and is not safe for concurrent use.
type Context struct {
	data      []byte
	opts      Options
	names     map[uint32]string
	templates map[uint32]*TemplateDefinition
}

// NewContext prepares decoding of records inside chunk (the full chunk bytes).
func NewContext(chunk []byte, opts Options) *Context {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Context{
		data:      chunk,
		opts:      opts,
		names:     make(map[uint32]string),
		templates: make(map[uint32]*TemplateDefinition),
	}
}

// MaxDepth returns the effective nesting limit.
func (c *Context) MaxDepth() int { return c.opts.MaxDepth }

// NameCount returns the number of cached names.
func (c *Context) NameCount() int { return len(c.names) }

// TemplateCount returns the number of compiled template definitions.
func (c *Context) TemplateCount() int { return len(c.templates) }
