// Package selection tracks the set of issues a user has picked for a batch
// drag.
package selection

import "sync"

// Set is an insertion-ordered set of issue ids. The zero value is ready to
// use and safe for concurrent use.
type Set struct {
	mu  sync.Mutex
	ids []string
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (s *Set) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleLocked(id)
}

// DragStartWithModifier handles a drag started on id. With a modifier (shift
// or meta) held the id is toggled, building up a multi-selection; without one
// it behaves like DragStartPlain.
func (s *Set) DragStartWithModifier(id string, modifier bool) {
	if !modifier {
		s.DragStartPlain(id)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggleLocked(id)
}

// DragStartPlain handles an unmodified drag start on id. Dragging an item
// that is already selected carries the whole selection; dragging anything
// else replaces the selection with just that item.
func (s *Set) DragStartPlain(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) >= 0 {
		return
	}
	s.ids = []string{id}
}

// Contains reports whether id is selected.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// IDs returns the selected ids in the order they were added.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of selected ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
}

func (s *Set) toggleLocked(id string) bool {
	if i := s.indexLocked(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

func (s *Set) indexLocked(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
