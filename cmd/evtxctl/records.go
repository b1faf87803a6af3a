package main

import (
	"fmt"
	"io"

	"github.com/joshuapare/evtxkit/pkg/evtx"
	"github.com/joshuapare/evtxkit/pkg/types"
)

// recordJSON is the JSON shape of one record.
type recordJSON struct {
	ID        uint64       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Provider  string       `json:"provider,omitempty"`
	EventID   string       `json:"event_id,omitempty"`
	Level     string       `json:"level,omitempty"`
	Error     string       `json:"error,omitempty"`
	Event     *elementJSON `json:"event,omitempty"`
}

type elementJSON struct {
	Name        string         `json:"name"`
	Attributes  []attrJSON     `json:"attributes,omitempty"`
	Text        string         `json:"text,omitempty"`
	Children    []*elementJSON `json:"children,omitempty"`
	Placeholder bool           `json:"placeholder,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

type attrJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toRecordJSON(r *evtx.EventRecord, withEvent bool) recordJSON {
	out := recordJSON{
		ID:        r.ID(),
		Timestamp: r.TimestampString(),
		Provider:  r.ProviderName(),
		EventID:   r.EventIDText(),
		Level:     r.Level(),
	}
	if err := r.Err(); err != nil {
		out.Error = err.Error()
	}
	if withEvent {
		out.Event = toElementJSON(r.RootElement())
	}
	return out
}

func toElementJSON(el *types.Element) *elementJSON {
	if el == nil {
		return nil
	}
	out := &elementJSON{Name: el.Name, Text: el.Text(), Placeholder: el.Placeholder, Reason: el.Reason}
	for _, a := range el.Attributes {
		out.Attributes = append(out.Attributes, attrJSON{Name: a.Name, Value: a.Value.String()})
	}
	for _, c := range el.Children {
		out.Children = append(out.Children, toElementJSON(c))
	}
	return out
}

// writeSummary prints one line per record.
func writeSummary(w io.Writer, r *evtx.EventRecord) {
	line := fmt.Sprintf("%-10d %s  %-14s %6s  %s", r.ID(), r.TimestampString(), r.Level(), r.EventIDText(), r.ProviderName())
	if r.Err() != nil {
		line += "  [undecodable]"
	}
	fmt.Fprintln(w, line)
}
