package evtx

import "strings"

// Predicate selects records for RecordIndex.Find.
type Predicate func(*EventRecord) bool

// ProviderIs matches records whose provider name equals name.
func ProviderIs(name string) Predicate {
	return func(r *EventRecord) bool { return r.ProviderName() == name }
}

// EventIDIs matches any of the given event ids.
func EventIDIs(ids ...uint32) Predicate {
	return func(r *EventRecord) bool {
		n, ok := r.EventIDNumber()
		if !ok {
			return false
		}
		for _, id := range ids {
			if n == id {
				return true
			}
		}
		return false
	}
}

// LevelIs matches records with the given numeric level.
func LevelIs(level int) Predicate {
	return func(r *EventRecord) bool {
		n, ok := r.LevelNumber()
		return ok && n == level
	}
}

// TextContains matches records whose provider name or event id contains
// term. With includeData the rendered XML is searched as well. Matching is
// case-sensitive.
func TextContains(term string, includeData bool) Predicate {
	return func(r *EventRecord) bool {
		if strings.Contains(r.ProviderName(), term) || strings.Contains(r.EventIDText(), term) {
			return true
		}
		return includeData && strings.Contains(r.RawXML(), term)
	}
}

// And matches when every predicate matches.
func And(preds ...Predicate) Predicate {
	return func(r *EventRecord) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches.
func Or(preds ...Predicate) Predicate {
	return func(r *EventRecord) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(r *EventRecord) bool { return !p(r) }
}
