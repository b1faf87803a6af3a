// Package evtx opens Windows Event Log (.evtx) files and exposes their
// records through a read-only, id-ordered index.
//
// Loading decodes every chunk up front on a bounded worker pool. Damage in
// one chunk or record never fails the load; it is reported in the
// DiagnosticReport returned by RecordIndex.Diagnostics. Only a file that is
// not EVTX at all (types.ErrInvalidFormat) or a cancelled context
// (types.ErrCancelled) produce an error.
//
// Example:
//
//	idx, err := evtx.Open("Security.evtx", evtx.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
//
//	for rec := range idx.Find(evtx.EventIDIs(4624)) {
//	    fmt.Println(rec.ID(), rec.TimestampString(), rec.ProviderName())
//	}
//
// A loaded index is immutable. All of its methods, and those of the records
// it returns, are safe for concurrent use.
package evtx
