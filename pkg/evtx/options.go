package evtx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Options controls how a file is loaded. The zero value is usable.
type Options struct {
	// Workers bounds the number of chunks decoded in parallel.
	// Zero or negative means runtime.NumCPU().
	Workers int

	// MaxDepth limits element and template nesting in the binary XML
	// decoder. Zero means the decoder default (256). Deeper subtrees are
	// replaced by placeholder elements.
	MaxDepth int

	// SkipChecksums disables the file header and chunk CRC32 checks.
	SkipChecksums bool

	// Logger receives load progress. Nil disables logging.
	Logger *zerolog.Logger

	// Registerer, when set, receives the load metrics collectors.
	// Registering on the same registerer twice reuses the collectors.
	Registerer prometheus.Registerer
}
