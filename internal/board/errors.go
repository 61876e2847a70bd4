package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/sprintboard/internal/auth"
)

var (
	// ErrTokenUnavailable aborts a write when no access token could be
	// obtained. It wraps auth.ErrNoToken.
	ErrTokenUnavailable = fmt.Errorf("token unavailable: %w", auth.ErrNoToken)

	// ErrInvalidTarget is returned by DragEnd when the drag or drop id does
	// not resolve to anything on the board.
	ErrInvalidTarget = errors.New("invalid drag target")

	// ErrNoDrag is returned by DragEnd when no drag is in progress.
	ErrNoDrag = errors.New("no drag in progress")

	// ErrDisposed resolves writes still pending when the board is disposed.
	ErrDisposed = errors.New("board disposed")
)

// TransitionError reports a rejected backend write, naming the attempted
// transition.
type TransitionError struct {
	Kind     string
	Subject  string // issue title, column name or issue count
	From, To string
	Err      error
}

func (e *TransitionError) Error() string {
	if e.Err == nil {
		return e.describe()
	}
	return e.describe() + ": " + e.Err.Error()
}

// describe names the transition without the cause, e.g.
// `move "Fix login" from Todo to Done`.
func (e *TransitionError) describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "move %s", e.Subject)
	if e.From != "" {
		fmt.Fprintf(&b, " from %s", e.From)
	}
	if e.To != "" {
		fmt.Fprintf(&b, " to %s", e.To)
	}
	return b.String()
}

func (e *TransitionError) Unwrap() error { return e.Err }

// Outcome is how a drag ended.
type Outcome int

const (
	// Cancelled: nothing was applied.
	Cancelled Outcome = iota
	// NoOp: the drop resolved but changes nothing.
	NoOp
	// Dropped: an optimistic change was applied and a write scheduled.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "noop"
	case Dropped:
		return "dropped"
	default:
		return "cancelled"
	}
}
