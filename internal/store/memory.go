package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Entries live as long as the process; it
// backs the journal when no database is configured.
type Memory struct {
	mu      sync.Mutex
	entries []*Transition
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordTransition(ctx context.Context, t *Transition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *t
	cp.IssueIDs = append([]string(nil), t.IssueIDs...)
	m.mu.Lock()
	m.entries = append(m.entries, &cp)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListTransitions(ctx context.Context, filter Filter) ([]*Transition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Transition
	for _, t := range m.entries {
		if !filter.matches(t) {
			continue
		}
		cp := *t
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) PruneTransitions(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	var n int64
	for _, t := range m.entries {
		if t.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.entries = kept
	return n, nil
}

// RunInTransaction runs fn against m and restores the previous entries when
// fn fails. It is not isolated: entries recorded concurrently by others are
// lost on rollback.
func (m *Memory) RunInTransaction(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	snapshot := append([]*Transition(nil), m.entries...)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.entries = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) Close() error { return nil }

func (f Filter) matches(t *Transition) bool {
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.SessionID != "" && t.SessionID != f.SessionID {
		return false
	}
	if !f.Since.IsZero() && t.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}
