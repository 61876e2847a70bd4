// Package optimistic holds locally-applied, not-yet-confirmed copies of
// server-derived collections.
//
// A Shadow wraps one authoritative value (the last thing the server said)
// and an optional override shown to the user while a write is pending. While
// an operation is open the Shadow also keeps the snapshot taken at its first
// Apply so that a failed write restores exactly what was on screen before,
// not a recomputed value.
//
// Every Apply is tagged with a monotonically increasing Seq. Commit and
// Rollback ignore any Seq that is not the most recent write, so a late
// response to an older write can never undo a newer optimistic state.
package optimistic

import "sync"

// Seq identifies one optimistic write. Zero is never issued.
type Seq uint64

// Shadow is safe for concurrent use.
type Shadow[T any] struct {
	mu    sync.Mutex
	clone func(T) T

	source T

	shadow    T
	hasShadow bool

	// open operation state
	open        bool
	snapshot    T
	snapShadow  bool // snapshot was itself a shadow, not the source
	latest      Seq
	subscribers []func()
}

// New returns a Shadow over source. clone must return a deep copy; it is used
// for every value crossing the Shadow boundary so that callers can never alias
// the stored state.
func New[T any](source T, clone func(T) T) *Shadow[T] {
	return &Shadow[T]{source: clone(source), clone: clone}
}

// Apply installs v as the visible value and returns the write's Seq. The first
// Apply of an operation snapshots the current view; later Applies in the same
// operation keep that snapshot.
func (s *Shadow[T]) Apply(v T) Seq {
	s.mu.Lock()
	if !s.open {
		s.open = true
		if s.hasShadow {
			s.snapshot = s.clone(s.shadow)
			s.snapShadow = true
		} else {
			s.snapshot = s.clone(s.source)
			s.snapShadow = false
		}
	}
	s.shadow = s.clone(v)
	s.hasShadow = true
	s.latest++
	seq := s.latest
	s.mu.Unlock()

	s.notify()
	return seq
}

// Commit closes the open operation after its write succeeded. The shadow
// stays visible until Replace delivers the server's view. It returns false
// when seq is stale or no operation is open.
func (s *Shadow[T]) Commit(seq Seq) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || seq != s.latest {
		return false
	}
	s.closeLocked()
	return true
}

// Rollback restores the snapshot taken at the start of the open operation.
// It returns false, changing nothing, when seq is stale or no operation is
// open (for example because fresh server data already replaced the shadow).
func (s *Shadow[T]) Rollback(seq Seq) bool {
	s.mu.Lock()
	if !s.open || seq != s.latest {
		s.mu.Unlock()
		return false
	}
	if s.snapShadow {
		s.shadow = s.snapshot
		s.hasShadow = true
	} else {
		var zero T
		s.shadow = zero
		s.hasShadow = false
	}
	s.closeLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// Clear drops the shadow and any open operation.
func (s *Shadow[T]) Clear() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	s.notify()
}

// Replace records fresh authoritative data. The shadow never outlives the
// round-trip it stood in for, so Replace always clears it.
func (s *Shadow[T]) Replace(v T) {
	s.mu.Lock()
	s.source = s.clone(v)
	s.clearLocked()
	s.mu.Unlock()
	s.notify()
}

// View returns the shadow when one is active, else the authoritative value.
// The result is always a fresh copy.
func (s *Shadow[T]) View() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasShadow {
		return s.clone(s.shadow)
	}
	return s.clone(s.source)
}

// Source returns a copy of the authoritative value, ignoring any shadow.
func (s *Shadow[T]) Source() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.source)
}

// Active reports whether a shadow is currently visible.
func (s *Shadow[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasShadow
}

// Pending reports whether an operation is open, i.e. a write has been applied
// but neither committed nor rolled back.
func (s *Shadow[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Latest returns the Seq of the most recent Apply.
func (s *Shadow[T]) Latest() Seq {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// OnChange registers fn to run after every change of the visible value.
// fn runs without the Shadow's lock held.
func (s *Shadow[T]) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Shadow[T]) clearLocked() {
	var zero T
	s.shadow = zero
	s.hasShadow = false
	s.closeLocked()
}

func (s *Shadow[T]) closeLocked() {
	var zero T
	s.open = false
	s.snapshot = zero
	s.snapShadow = false
}

func (s *Shadow[T]) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
