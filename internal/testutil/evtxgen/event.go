package evtxgen

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joshuapare/evtxkit/pkg/types"
)

// EventNamespace is the xmlns of Windows event XML.
const EventNamespace = "http://schemas.microsoft.com/win/2004/08/events/event"

// Substitution slots of StandardTemplate.
const (
	SlotProvider = iota
	SlotProviderGUID
	SlotEventID
	SlotLevel
	SlotTimeCreated
	SlotRecordID
	SlotChannel
	SlotComputer
	SlotFirstData
)

// Field is one EventData/Data entry.
type Field struct {
	Name  string
	Value Value
}

// Event describes a typical Windows event record.
type Event struct {
	Provider     string
	ProviderGUID *uuid.UUID
	EventID      uint16
	Level        uint8
	Time         time.Time
	RecordID     uint64
	Channel      string
	Computer     string
	Data         []Field
}

// StandardTemplate returns the System/EventData template for the given data
// field names. Equal names yield the same GUID, so a chunk shares one
// definition between records of the same shape.
func StandardTemplate(fields ...string) *Template {
	data := make([]Node, len(fields))
	for i, f := range fields {
		data[i] = Node{
			Name:  "Data",
			Attrs: []Attr{{Name: "Name", Value: f}},
			Sub:   &Sub{Index: uint16(SlotFirstData + i), Type: types.ValString, Optional: true},
		}
	}
	return &Template{
		GUID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("evtxgen/"+strings.Join(fields, ","))),
		Root: Node{
			Name:  "Event",
			Attrs: []Attr{{Name: "xmlns", Value: EventNamespace}},
			Children: []Node{
				{
					Name: "System",
					Children: []Node{
						{Name: "Provider", Attrs: []Attr{
							{Name: "Name", Sub: &Sub{Index: SlotProvider, Type: types.ValString, Optional: true}},
							{Name: "Guid", Sub: &Sub{Index: SlotProviderGUID, Type: types.ValGUID, Optional: true}},
						}},
						{Name: "EventID", Sub: &Sub{Index: SlotEventID, Type: types.ValUInt16}},
						{Name: "Level", Sub: &Sub{Index: SlotLevel, Type: types.ValUInt8}},
						{Name: "TimeCreated", Attrs: []Attr{
							{Name: "SystemTime", Sub: &Sub{Index: SlotTimeCreated, Type: types.ValFileTime}},
						}},
						{Name: "EventRecordID", Sub: &Sub{Index: SlotRecordID, Type: types.ValUInt64}},
						{Name: "Channel", Sub: &Sub{Index: SlotChannel, Type: types.ValString, Optional: true}},
						{Name: "Computer", Sub: &Sub{Index: SlotComputer, Type: types.ValString, Optional: true}},
					},
				},
				{Name: "EventData", Children: data},
			},
		},
	}
}

// Payload renders ev as an instance of StandardTemplate.
func (ev Event) Payload() Instance {
	names := make([]string, len(ev.Data))
	for i, f := range ev.Data {
		names[i] = f.Name
	}
	guid := Null()
	if ev.ProviderGUID != nil {
		guid = GUID(*ev.ProviderGUID)
	}
	vals := []Value{
		String(ev.Provider),
		guid,
		UInt16(ev.EventID),
		UInt8(ev.Level),
		FileTime(ev.Time),
		UInt64(ev.RecordID),
		String(ev.Channel),
		String(ev.Computer),
	}
	for _, f := range ev.Data {
		vals = append(vals, f.Value)
	}
	return Instance{Template: StandardTemplate(names...), Values: vals}
}

// AddEvent appends ev with its RecordID as record id and Time as timestamp.
func (c *Chunk) AddEvent(ev Event) (int, error) {
	return c.AddRecord(ev.RecordID, ev.Time, ev.Payload())
}

// SimpleEvent is a Security-channel event with one data field, used where
// the exact content does not matter.
func SimpleEvent(id uint64, eventID uint16) Event {
	return Event{
		Provider: "Microsoft-Windows-Security-Auditing",
		EventID:  eventID,
		Level:    4,
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Add(time.Duration(id) * time.Second),
		RecordID: id,
		Channel:  "Security",
		Computer: "WKS01",
		Data:     []Field{{Name: "SubjectUserName", Value: String("alice")}},
	}
}
