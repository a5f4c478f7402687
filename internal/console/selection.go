package console

import (
	"sort"
)

// Selection is the set of selected complaint ids. It is always kept a subset
// of the ids matched by the active filter. Not safe for concurrent use; the
// Console guards it.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids, sorted.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equals reports whether the selection is exactly the given set.
func (s *Selection) Equals(ids []string) bool {
	set := toSet(ids)
	if len(set) != len(s.ids) {
		return false
	}
	for id := range set {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// ToggleAll clears the selection when it already equals the filtered set
// and otherwise selects the whole filtered set. This is select-all checkbox
// semantics, not per-item negation.
func (s *Selection) ToggleAll(filteredIDs []string) {
	if s.Equals(filteredIDs) {
		s.Clear()
		return
	}
	s.ids = toSet(filteredIDs)
}

// Toggle flips one id. Ids not in the filtered set are ignored; it reports
// whether the selection changed.
func (s *Selection) Toggle(id string, filteredIDs []string) bool {
	if _, visible := toSet(filteredIDs)[id]; !visible {
		return false
	}
	if s.Has(id) {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	return true
}

// Prune drops every selected id that is not in the filtered set.
func (s *Selection) Prune(filteredIDs []string) {
	set := toSet(filteredIDs)
	for id := range s.ids {
		if _, ok := set[id]; !ok {
			delete(s.ids, id)
		}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
