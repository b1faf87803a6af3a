package evtx

import (
	"strconv"
	"sync"
	"time"

	"github.com/joshuapare/evtxkit/internal/binxml"
	"github.com/joshuapare/evtxkit/internal/chunk"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// Level names for the values of System/Level.
var levelNames = [...]string{
	0: "LogAlways",
	1: "Critical",
	2: "Error",
	3: "Warning",
	4: "Informational",
	5: "Verbose",
}

// EventRecord is one event. The element tree is kept as decoded; the
// convenience fields and the XML text are derived from it on first use and
// cached.
type EventRecord struct {
	id     uint64
	ts     time.Time
	chunk  int
	offset int64
	root   *types.Element
	err    error

	fieldsOnce sync.Once
	provider   string
	eventID    string
	level      string

	xmlOnce sync.Once
	xml     string
}

func newRecord(r chunk.Record) *EventRecord {
	return &EventRecord{
		id:     r.ID,
		ts:     r.Timestamp,
		chunk:  r.Chunk,
		offset: r.Offset,
		root:   r.Root,
		err:    r.Err,
	}
}

// ID returns the record id.
func (r *EventRecord) ID() uint64 { return r.id }

// Timestamp returns the record header's write time in UTC.
func (r *EventRecord) Timestamp() time.Time { return r.ts }

// TimestampString renders Timestamp as ISO-8601 with 100ns precision.
func (r *EventRecord) TimestampString() string { return r.ts.Format(types.TimeLayout) }

// Chunk returns the index of the chunk the record was read from.
func (r *EventRecord) Chunk() int { return r.chunk }

// Offset returns the absolute file offset of the record header.
func (r *EventRecord) Offset() int64 { return r.offset }

// RootElement returns the decoded Event element. For a record that failed
// to decode it is an empty Event element; see Err.
func (r *EventRecord) RootElement() *types.Element { return r.root }

// Err reports why the record payload could not be decoded, or nil.
func (r *EventRecord) Err() error { return r.err }

func (r *EventRecord) fields() {
	r.fieldsOnce.Do(func() {
		sys := r.root.Child("System")
		r.provider, _ = sys.Child("Provider").Attr("Name")
		r.eventID = sys.Child("EventID").Text()
		r.level = sys.Child("Level").Text()
	})
}

// ProviderName returns System/Provider@Name, or "".
func (r *EventRecord) ProviderName() string {
	r.fields()
	return r.provider
}

// EventIDText returns the System/EventID text as stored, or "".
func (r *EventRecord) EventIDText() string {
	r.fields()
	return r.eventID
}

// EventID returns System/EventID as a number, or 0 when it is missing or
// not numeric.
func (r *EventRecord) EventID() uint32 {
	n, _ := r.EventIDNumber()
	return n
}

// EventIDNumber is EventID with an explicit ok.
func (r *EventRecord) EventIDNumber() (uint32, bool) {
	r.fields()
	n, err := strconv.ParseUint(r.eventID, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// LevelNumber returns System/Level as a number.
func (r *EventRecord) LevelNumber() (int, bool) {
	r.fields()
	n, err := strconv.Atoi(r.level)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Level returns the level name ("Informational" for 4). Levels outside
// 0..5 are returned as their decimal text, a missing level as "".
func (r *EventRecord) Level() string {
	n, ok := r.LevelNumber()
	if !ok {
		return r.level
	}
	return LevelName(n)
}

// LevelName maps a numeric event level to its name.
func LevelName(n int) string {
	if n >= 0 && n < len(levelNames) {
		return levelNames[n]
	}
	return strconv.Itoa(n)
}

// RawXML renders the element tree as XML.
func (r *EventRecord) RawXML() string {
	r.xmlOnce.Do(func() {
		r.xml = binxml.RenderXML(r.root)
	})
	return r.xml
}
