// Package store persists the transition journal: one entry per drag outcome
// a board session produced.
package store

import (
	"context"
	"time"
)

// Kind is the mutation a transition attempted.
type Kind string

const (
	KindStatus  Kind = "status"  // issue status change
	KindReorder Kind = "reorder" // status column reorder
	KindSprint  Kind = "sprint"  // sprint reassignment
)

// Result is how a transition ended.
type Result string

const (
	ResultPersisted Result = "persisted"
	ResultFailed    Result = "failed"
	ResultNoOp      Result = "noop"
)

// Transition is one journal entry.
type Transition struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ProjectID string    `json:"project_id"`
	Kind      Kind      `json:"kind"`
	Result    Result    `json:"result"`
	IssueIDs  []string  `json:"issue_ids,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows ListTransitions. Zero fields match everything.
type Filter struct {
	ProjectID string
	SessionID string
	Since     time.Time
	Limit     int
}

// Store defines the persistence interface for the journal.
type Store interface {
	RecordTransition(ctx context.Context, t *Transition) error
	// ListTransitions returns matching entries, oldest first.
	ListTransitions(ctx context.Context, filter Filter) ([]*Transition, error)
	// PruneTransitions deletes entries created before cutoff and returns how
	// many were removed.
	PruneTransitions(ctx context.Context, cutoff time.Time) (int64, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
