// Package types defines the data model shared by the EVTX decoder and its
// callers: the decoded element tree, typed values, typed errors and the
// diagnostics report that accompanies every load.
//
// Design goals:
//   - Paranoid bounds checking; never panic on malformed input.
//   - Partial results over hard failures: damage is reported, not fatal.
//   - Typed errors with stable categories (format/checksum/ordering/...).
package types
