package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/gesture"
	"github.com/alfredjeanlab/sprintboard/internal/idgen"
	"github.com/alfredjeanlab/sprintboard/internal/selection"
)

// State is the coordinator's drag state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// DragKind is what is being dragged.
type DragKind string

const (
	DragIssue  DragKind = "issue"
	DragColumn DragKind = "column"
)

// DragSession is the transient state of one drag.
type DragSession struct {
	ID        string
	Active    Target
	Over      *Target
	Kind      DragKind
	Selected  []string // issue drags only: the batch being moved
	StartedAt time.Time
}

// Result describes how DragEnd resolved.
type Result struct {
	Outcome Outcome
	Session DragSession
	// Write is the pending backend write of a Dropped result, nil otherwise.
	Write *Write
}

// Coordinator owns the drag lifecycle of one board:
// Idle → Dragging → (Dropped | NoOp | Cancelled) → Idle.
type Coordinator struct {
	board     *Board
	selection *selection.Set
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	session *DragSession
}

// NewCoordinator returns a Coordinator for b. sel may be shared with the
// view so that clicks build up the selection; nil gets a private set.
func NewCoordinator(b *Board, sel *selection.Set) *Coordinator {
	if sel == nil {
		sel = &selection.Set{}
	}
	return &Coordinator{board: b, selection: sel, logger: b.logger}
}

// Selection returns the coordinator's selection set.
func (c *Coordinator) Selection() *selection.Set { return c.selection }

// State returns the current drag state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the drag in progress.
func (c *Coordinator) Session() (DragSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return DragSession{}, false
	}
	return copySession(c.session), true
}

// DragStart begins a drag of activeID. For issue drags the selection is
// updated first: with modifier held the issue is toggled into the
// selection, without it a drag of an unselected issue replaces the
// selection. A drag already in progress is abandoned.
func (c *Coordinator) DragStart(activeID string, modifier bool) {
	active, ok := ParseTarget(activeID)
	if !ok || active.Kind == TargetContainer {
		c.logger.Debug("ignoring drag start on non-draggable id", "id", activeID)
		return
	}

	s := &DragSession{Active: active, StartedAt: c.board.clock.Now()}
	if id, err := idgen.WithPrefix("drag-"); err == nil {
		s.ID = id
	}
	if active.Kind == TargetColumn {
		s.Kind = DragColumn
	} else {
		s.Kind = DragIssue
		c.selection.DragStartWithModifier(active.IssueID, modifier)
		s.Selected = c.selection.IDs()
		if !c.selection.Contains(active.IssueID) {
			// Modifier drag of a selected issue toggled it off; the dragged
			// issue still moves.
			s.Selected = append(s.Selected, active.IssueID)
		}
	}

	c.mu.Lock()
	if c.session != nil {
		c.logger.Debug("drag start replaced unfinished drag", "previous", c.session.ID)
	}
	c.session = s
	c.state = Dragging
	c.mu.Unlock()
}

// DragOver records the current hover target. It has no other effect.
func (c *Coordinator) DragOver(overID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return
	}
	if t, ok := ParseTarget(overID); ok {
		c.session.Over = &t
	} else {
		c.session.Over = nil
	}
}

// DragCancel abandons the drag in progress and clears the selection.
func (c *Coordinator) DragCancel() {
	c.mu.Lock()
	c.session = nil
	c.state = Idle
	c.mu.Unlock()
	c.selection.Clear()
}

// DragEnd resolves the drop on overID and dispatches the mutation. The
// coordinator is Idle and the selection empty when DragEnd returns,
// whatever the outcome. Write failures are not returned here; they reach
// the notifier and resolve Result.Write.
func (c *Coordinator) DragEnd(ctx context.Context, overID string) (Result, error) {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.state = Idle
	c.mu.Unlock()
	defer c.selection.Clear()

	if s == nil {
		return Result{Outcome: Cancelled}, ErrNoDrag
	}
	res := Result{Outcome: Cancelled}
	over, ok := ParseTarget(overID)
	if ok {
		s.Over = &over
	} else {
		s.Over = nil
	}
	res.Session = copySession(s)
	if !ok {
		c.logger.Debug("drag cancelled, no drop target", "drag", s.ID)
		return res, nil
	}

	var err error
	switch s.Kind {
	case DragColumn:
		res.Outcome, res.Write, err = c.dropColumn(ctx, s.Active, over)
	default:
		res.Outcome, res.Write, err = c.dropIssue(ctx, s, over)
	}
	if err != nil {
		res.Outcome = Cancelled
		res.Write = nil
	}
	c.logger.Debug("drag ended", "drag", s.ID, "kind", string(s.Kind), "over", over.String(), "outcome", res.Outcome.String())
	return res, err
}

func (c *Coordinator) dropColumn(ctx context.Context, active, over Target) (Outcome, *Write, error) {
	if over.Kind != TargetColumn {
		return Cancelled, nil, fmt.Errorf("%w: column dropped on %s", ErrInvalidTarget, over)
	}
	return c.board.ReorderColumn(ctx, active.ColumnID, over.ColumnID)
}

func (c *Coordinator) dropIssue(ctx context.Context, s *DragSession, over Target) (Outcome, *Write, error) {
	activeID := s.Active.IssueID
	active, ok := c.board.Issue(activeID)
	if !ok {
		return Cancelled, nil, fmt.Errorf("%w: issue %s not on board", ErrInvalidTarget, activeID)
	}
	home := active.Container()

	switch over.Kind {
	case TargetColumn:
		return c.board.ChangeStatus(ctx, s.Selected, activeID, over.ColumnID)

	case TargetContainer:
		if over.Container == home {
			return NoOp, nil, nil
		}
		return c.board.MoveToContainer(ctx, s.Selected, over.Container, "")

	default:
		target, ok := c.board.Issue(over.IssueID)
		if !ok {
			return Cancelled, nil, fmt.Errorf("%w: issue %s not on board", ErrInvalidTarget, over.IssueID)
		}
		if target.Container() == home {
			return c.board.ChangeStatus(ctx, s.Selected, activeID, target.Status)
		}
		return c.board.MoveToContainer(ctx, s.Selected, target.Container(), target.ID)
	}
}

func copySession(s *DragSession) DragSession {
	cp := *s
	cp.Selected = append([]string(nil), s.Selected...)
	if s.Over != nil {
		o := *s.Over
		cp.Over = &o
	}
	return cp
}

// Handler adapts the coordinator to a gesture.DragHandler. onResult, when
// non-nil, receives every DragEnd result.
func (c *Coordinator) Handler(ctx context.Context, onResult func(Result, error)) gesture.DragHandler {
	return &dragHandler{c: c, ctx: ctx, onResult: onResult}
}

type dragHandler struct {
	c        *Coordinator
	ctx      context.Context
	onResult func(Result, error)
}

func (h *dragHandler) DragStart(activeID string, modifier bool) { h.c.DragStart(activeID, modifier) }

func (h *dragHandler) DragOver(overID string) { h.c.DragOver(overID) }

func (h *dragHandler) DragEnd(overID string) {
	res, err := h.c.DragEnd(h.ctx, overID)
	if h.onResult != nil {
		h.onResult(res, err)
	}
}
