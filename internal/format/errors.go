package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrSizeMismatch indicates a record's leading and trailing size fields differ.
	ErrSizeMismatch = errors.New("format: record size mismatch")
	// ErrPadding indicates the zero-filled slack after the last record of a chunk.
	ErrPadding = errors.New("format: chunk padding")
	// ErrInvalidSize indicates a record size that cannot be valid (too small or
	// running past the chunk).
	ErrInvalidSize = errors.New("format: invalid record size")
)
