package evtx

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/joshuapare/evtxkit/internal/chunk"
	"github.com/joshuapare/evtxkit/internal/loader"
	"github.com/joshuapare/evtxkit/internal/metrics"
	"github.com/joshuapare/evtxkit/internal/mmfile"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// FileHeader describes the EVTX file header.
type FileHeader struct {
	FirstChunk   uint64
	LastChunk    uint64
	NextRecordID uint64
	MajorVersion uint16
	MinorVersion uint16
	ChunkCount   uint16 // as stated by the header
	Flags        uint32
	Dirty        bool
	Full         bool
}

// ChunkInfo summarizes one scanned chunk.
type ChunkInfo struct {
	Index         int
	Offset        int64
	FirstRecordID uint64
	LastRecordID  uint64
	Records       int
	Failed        int // records kept with a decode error
	Names         int
	Templates     int
	Empty         bool
	Corrupt       bool
	Degraded      bool
}

// RecordIndex holds every record of one file, sorted by ascending record id.
type RecordIndex struct {
	path    string
	header  FileHeader
	chunks  []ChunkInfo
	records []*EventRecord
	report  *types.DiagnosticReport

	closeOnce sync.Once
	release   func() error
	closeErr  error
}

// Open memory-maps the file at path and loads it.
// The caller must call Close when done.
func Open(path string, opts Options) (*RecordIndex, error) {
	return OpenContext(context.Background(), path, opts)
}

// OpenContext is Open with cancellation.
func OpenContext(ctx context.Context, path string, opts Options) (*RecordIndex, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("evtx: open %s: %w", path, err)
	}
	idx, err := load(ctx, data, path, opts)
	if err != nil {
		_ = release()
		return nil, err
	}
	// Records hold copies, so the mapping is only needed until Close.
	idx.release = release
	return idx, nil
}

// OpenBytes loads an in-memory file image.
func OpenBytes(data []byte, opts Options) (*RecordIndex, error) {
	return load(context.Background(), data, "", opts)
}

// Load loads an in-memory file image with cancellation. When ctx is
// cancelled no index is produced and the error matches types.ErrCancelled.
func Load(ctx context.Context, data []byte, opts Options) (*RecordIndex, error) {
	return load(ctx, data, "", opts)
}

func load(ctx context.Context, data []byte, path string, opts Options) (*RecordIndex, error) {
	m, err := metrics.New(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("evtx: register metrics: %w", err)
	}
	res, err := loader.Load(ctx, data, loader.Options{
		Workers:         opts.Workers,
		MaxDepth:        opts.MaxDepth,
		VerifyChecksums: !opts.SkipChecksums,
		Logger:          opts.Logger,
		Metrics:         m,
		FilePath:        path,
	})
	if err != nil {
		return nil, err
	}
	return newIndex(path, res), nil
}

func newIndex(path string, res *loader.Result) *RecordIndex {
	h := res.Header
	idx := &RecordIndex{
		path: path,
		header: FileHeader{
			FirstChunk:   h.FirstChunk,
			LastChunk:    h.LastChunk,
			NextRecordID: h.NextRecordID,
			MajorVersion: h.MajorVersion,
			MinorVersion: h.MinorVersion,
			ChunkCount:   h.ChunkCount,
			Flags:        h.Flags,
			Dirty:        h.IsDirty(),
			Full:         h.IsFull(),
		},
		chunks:  make([]ChunkInfo, len(res.Chunks)),
		records: make([]*EventRecord, len(res.Records)),
		report:  res.Report,
	}
	for i, cr := range res.Chunks {
		idx.chunks[i] = chunkInfo(cr)
	}
	for i, r := range res.Records {
		idx.records[i] = newRecord(r)
	}
	return idx
}

func chunkInfo(cr *chunk.Result) ChunkInfo {
	ci := ChunkInfo{
		Index:         cr.Index,
		Offset:        cr.Offset,
		FirstRecordID: cr.Header.FirstRecordID,
		LastRecordID:  cr.Header.LastRecordID,
		Records:       len(cr.Records),
		Names:         cr.Names,
		Templates:     cr.Templates,
		Empty:         cr.Empty,
		Corrupt:       cr.Corrupt,
		Degraded:      cr.Degraded,
	}
	for _, r := range cr.Records {
		if r.Err != nil {
			ci.Failed++
		}
	}
	return ci
}

// Close releases the file mapping. Records obtained from the index stay
// valid. Close is idempotent.
func (x *RecordIndex) Close() error {
	x.closeOnce.Do(func() {
		if x.release != nil {
			x.closeErr = x.release()
		}
	})
	return x.closeErr
}

// Path returns the path given to Open, or "" for in-memory loads.
func (x *RecordIndex) Path() string { return x.path }

// Header returns the decoded file header.
func (x *RecordIndex) Header() FileHeader { return x.header }

// Chunks returns per-chunk summaries in file order.
func (x *RecordIndex) Chunks() []ChunkInfo { return slices.Clone(x.chunks) }

// Diagnostics returns the problems found while loading. It is never nil.
func (x *RecordIndex) Diagnostics() *types.DiagnosticReport { return x.report }

// Len returns the number of records.
func (x *RecordIndex) Len() int { return len(x.records) }

// At returns the i-th record in id order. It panics if i is out of range.
func (x *RecordIndex) At(i int) *EventRecord { return x.records[i] }

// Position returns the row of the record with the given id.
func (x *RecordIndex) Position(id uint64) (int, bool) {
	return slices.BinarySearchFunc(x.records, id, func(r *EventRecord, id uint64) int {
		return cmp.Compare(r.id, id)
	})
}

// ByID returns the record with the given id. A missing id is not an error.
func (x *RecordIndex) ByID(id uint64) (*EventRecord, bool) {
	i, ok := x.Position(id)
	if !ok {
		return nil, false
	}
	return x.records[i], true
}

// All yields every record in ascending id order. The sequence can be
// iterated any number of times.
func (x *RecordIndex) All() iter.Seq[*EventRecord] {
	return func(yield func(*EventRecord) bool) {
		for _, r := range x.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Find yields the records matching pred in ascending id order. pred is
// evaluated lazily, so stopping the iteration early skips the remaining
// records. A nil pred matches everything.
func (x *RecordIndex) Find(pred Predicate) iter.Seq[*EventRecord] {
	if pred == nil {
		return x.All()
	}
	return func(yield func(*EventRecord) bool) {
		for _, r := range x.records {
			if pred(r) && !yield(r) {
				return
			}
		}
	}
}
