package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors and diagnostics so callers can branch on intent
// rather than text.
type ErrKind int

const (
	ErrKindInvalidFormat          ErrKind = iota // bad file magic, truncated header (fatal)
	ErrKindHeaderChecksumMismatch                // file header CRC32 mismatch
	ErrKindChunkChecksumMismatch                 // chunk header or record data CRC32 mismatch
	ErrKindChunkCorrupt                          // chunk unreadable (bad magic, bad header)
	ErrKindRecordSizeMismatch                    // leading/trailing record size disagree
	ErrKindRecordOrderingAnomaly                 // record id decreased within a chunk
	ErrKindDuplicateRecordID                     // same record id seen twice
	ErrKindTemplateDepthExceeded                 // nesting beyond the configured maximum
	ErrKindUnknownValueType                      // substitution with an unknown value type
	ErrKindOutOfBounds                           // read outside a parsing unit
	ErrKindRecordCorrupt                         // record payload is not valid binary XML
	ErrKindCancelled                             // load abandoned by the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidFormat:
		return "InvalidFormat"
	case ErrKindHeaderChecksumMismatch:
		return "HeaderChecksumMismatch"
	case ErrKindChunkChecksumMismatch:
		return "ChunkChecksumMismatch"
	case ErrKindChunkCorrupt:
		return "ChunkCorrupt"
	case ErrKindRecordSizeMismatch:
		return "RecordSizeMismatch"
	case ErrKindRecordOrderingAnomaly:
		return "RecordOrderingAnomaly"
	case ErrKindDuplicateRecordID:
		return "DuplicateRecordId"
	case ErrKindTemplateDepthExceeded:
		return "TemplateDepthExceeded"
	case ErrKindUnknownValueType:
		return "UnknownValueType"
	case ErrKindOutOfBounds:
		return "OutOfBounds"
	case ErrKindRecordCorrupt:
		return "RecordCorrupt"
	case ErrKindCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON reports.
func (k ErrKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrCancelled) holds
// for every cancellation regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && t.Kind == e.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrInvalidFormat indicates the input is not an EVTX file (bad magic or truncated header).
	ErrInvalidFormat = &Error{Kind: ErrKindInvalidFormat, Msg: "not an evtx file"}
	// ErrCancelled indicates the load was cancelled; no partial index is returned.
	ErrCancelled = &Error{Kind: ErrKindCancelled, Msg: "load cancelled"}
	// ErrOutOfBounds indicates a structure referenced bytes outside its parsing unit.
	ErrOutOfBounds = &Error{Kind: ErrKindOutOfBounds, Msg: "out of bounds"}
	// ErrTemplateDepthExceeded indicates nested templates or elements beyond the limit.
	ErrTemplateDepthExceeded = &Error{Kind: ErrKindTemplateDepthExceeded, Msg: "template depth exceeded"}
	// ErrUnknownValueType indicates a substitution value of an unknown type.
	ErrUnknownValueType = &Error{Kind: ErrKindUnknownValueType, Msg: "unknown value type"}
)

// Errorf builds an *Error of the given kind wrapping cause.
func Errorf(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}
