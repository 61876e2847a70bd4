package board

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/alfredjeanlab/sprintboard/internal/events"
	"github.com/alfredjeanlab/sprintboard/internal/model"
	"github.com/alfredjeanlab/sprintboard/internal/notify"
	"github.com/alfredjeanlab/sprintboard/internal/optimistic"
	"github.com/alfredjeanlab/sprintboard/internal/store"
)

// columnWrite is the descriptor of a debounced column reorder. Only the
// latest one survives the quiet period; it carries the waiters of every
// reorder it superseded.
type columnWrite struct {
	seq     optimistic.Seq
	columns []model.StatusColumn // full desired order, OrderIndex renumbered
	subject string               // name of the last moved column
	from    int                  // 1-based positions of the last move
	to      int
	waiters []*Write
}

// issueWrite is the descriptor of an immediate issue write.
type issueWrite struct {
	seq      optimistic.Seq
	kind     store.Kind
	issues   []model.Issue // status changes: full objects to send
	issueIDs []string
	dest     string // sprint moves: destination container key
	subject  string
	from     string
	to       string
	waiter   *Write
}

func (b *Board) isDisposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// ReorderColumn moves column activeID to the position of column overID. The
// new order is shown at once; the write waits for the debounce window and
// then sends only the columns whose OrderIndex differs from the server's.
func (b *Board) ReorderColumn(ctx context.Context, activeID, overID int) (Outcome, *Write, error) {
	if b.isDisposed() {
		return Cancelled, nil, ErrDisposed
	}
	cols := b.statuses.View()
	from := model.ColumnIndex(cols, activeID)
	to := model.ColumnIndex(cols, overID)
	if from < 0 || to < 0 {
		return Cancelled, nil, fmt.Errorf("%w: column %d or %d not on board", ErrInvalidTarget, activeID, overID)
	}
	if from == to {
		return NoOp, nil, nil
	}

	moved := cols[from]
	cols = slices.Delete(cols, from, from+1)
	cols = slices.Insert(cols, to, moved)
	for i := range cols {
		cols[i].OrderIndex = i + 1
	}
	seq := b.statuses.Apply(cols)

	w := newWrite()
	waiters := []*Write{w}
	if prev, ok := b.columnWrites.Pending(keyStatuses); ok {
		waiters = append(slices.Clone(prev.waiters), w)
	}
	scheduled := b.columnWrites.Schedule(keyStatuses, columnWrite{
		seq:     seq,
		columns: cols,
		subject: moved.Name,
		from:    from + 1,
		to:      to + 1,
		waiters: waiters,
	}, b.debounce, b.writeColumns)
	if !scheduled {
		b.statuses.Rollback(seq)
		resolveAll(waiters, ErrDisposed)
		return Cancelled, nil, ErrDisposed
	}

	b.logger.Debug("column reorder scheduled", "column", moved.ID, "from", from+1, "to", to+1, "seq", uint64(seq))
	return Dropped, w, nil
}

func (b *Board) writeColumns(ctx context.Context, w columnWrite) {
	token, err := b.token(ctx)
	if err != nil {
		b.failColumns(ctx, w, err)
		return
	}

	source := b.statuses.Source()
	var changed []model.StatusColumn
	for _, c := range w.columns {
		if src, ok := model.FindColumn(source, c.ID); !ok || src.OrderIndex != c.OrderIndex {
			changed = append(changed, c)
		}
	}
	ids := make([]int, len(changed))
	for i, c := range changed {
		ids[i] = c.ID
	}
	for i, c := range changed {
		if err := b.backend.EditIssueStatus(ctx, token, b.projectID, c); err != nil {
			if i > 0 {
				// The rollback snapshot no longer matches the server.
				b.markStale(events.ChangeStatuses)
				b.publish(ctx, events.ChangeStatuses, nil, ids[:i])
				b.logger.Warn("column reorder partly written", "written", i, "changed", len(changed))
			}
			b.failColumns(ctx, w, err)
			return
		}
	}

	committed := b.statuses.Commit(w.seq)
	result := store.ResultPersisted
	if len(changed) == 0 {
		result = store.ResultNoOp
		b.notice(ctx, notify.LevelNoOp, "Column order unchanged", nil, nil)
	} else {
		b.notice(ctx, notify.LevelSuccess, fmt.Sprintf("Moved column %q to position %d", w.subject, w.to), nil, nil)
		b.publish(ctx, events.ChangeStatuses, nil, ids)
	}
	b.record(ctx, store.Transition{
		Kind:   store.KindReorder,
		Result: result,
		From:   fmt.Sprintf("%s@%d", w.subject, w.from),
		To:     fmt.Sprintf("%s@%d", w.subject, w.to),
	})
	b.logger.Info("columns written", "changed", len(changed))
	b.settle(ctx, events.ChangeStatuses, committed, b.statuses.Latest() != w.seq)
	resolveAll(w.waiters, nil)
}

func (b *Board) failColumns(ctx context.Context, w columnWrite, err error) {
	if b.ctx.Err() != nil {
		b.statuses.Rollback(w.seq)
		b.logger.Debug("column write abandoned, board disposed", "err", err)
		resolveAll(w.waiters, ErrDisposed)
		return
	}
	if b.statuses.Rollback(w.seq) {
		b.afterRollback(ctx, events.ChangeStatuses)
	} else {
		b.logger.Debug("column rollback skipped, newer state on screen", "seq", uint64(w.seq))
	}
	te := &TransitionError{
		Kind:    string(store.KindReorder),
		Subject: fmt.Sprintf("column %q", w.subject),
		From:    fmt.Sprintf("position %d", w.from),
		To:      fmt.Sprintf("position %d", w.to),
		Err:     err,
	}
	b.notice(ctx, failureLevel(err), "Could not "+te.describe(), nil, te)
	b.record(ctx, store.Transition{
		Kind:   store.KindReorder,
		Result: store.ResultFailed,
		From:   fmt.Sprintf("%s@%d", w.subject, w.from),
		To:     fmt.Sprintf("%s@%d", w.subject, w.to),
		Error:  err.Error(),
	})
	b.logger.Error("column write failed", "err", err)
	resolveAll(w.waiters, te)
}

// ChangeStatus moves the issues in batch to status column status. The
// batch is compared against the active issue: when it already sits in that
// column the drop is a NoOp that touches neither the shadow nor the backend.
func (b *Board) ChangeStatus(ctx context.Context, batch []string, activeID string, status int) (Outcome, *Write, error) {
	if b.isDisposed() {
		return Cancelled, nil, ErrDisposed
	}
	cols := b.statuses.View()
	if _, ok := model.FindColumn(cols, status); !ok {
		return Cancelled, nil, fmt.Errorf("%w: status %d not on board", ErrInvalidTarget, status)
	}
	next := b.issues.View()
	active, _, ok := next.Find(activeID)
	if !ok {
		return Cancelled, nil, fmt.Errorf("%w: issue %s not on board", ErrInvalidTarget, activeID)
	}

	toName := model.ColumnName(cols, status)
	if active.Status == status {
		b.notice(ctx, notify.LevelNoOp, fmt.Sprintf("%q is already in %s", active.Title, toName), []string{active.ID}, nil)
		b.record(ctx, store.Transition{
			Kind:     store.KindStatus,
			Result:   store.ResultNoOp,
			IssueIDs: []string{active.ID},
			From:     toName,
			To:       toName,
		})
		return NoOp, nil, nil
	}

	var changed []model.Issue
	for _, id := range batch {
		key, i := locate(next, id)
		if i < 0 || next[key][i].Status == status {
			continue
		}
		next[key][i].Status = status
		changed = append(changed, next[key][i])
	}
	seq := b.issues.Apply(next)

	return b.scheduleIssues(issueWrite{
		seq:      seq,
		kind:     store.KindStatus,
		issues:   changed,
		issueIDs: issueIDs(changed),
		subject:  subject(changed),
		from:     model.ColumnName(cols, active.Status),
		to:       toName,
		waiter:   newWrite(),
	})
}

// MoveToContainer moves the issues in batch into container dest (a sprint id
// or the backlog), inserting them before beforeID when it is in dest and at
// the end otherwise. Issues already in dest are left alone; when that leaves
// nothing to move the drop is Cancelled.
func (b *Board) MoveToContainer(ctx context.Context, batch []string, dest, beforeID string) (Outcome, *Write, error) {
	if b.isDisposed() {
		return Cancelled, nil, ErrDisposed
	}
	dest = model.ContainerKey(dest)
	if !b.knownContainer(dest) {
		return Cancelled, nil, fmt.Errorf("%w: sprint %s not on board", ErrInvalidTarget, dest)
	}

	next := b.issues.View()
	var (
		moved   []model.Issue
		sources = map[string]bool{}
	)
	for _, id := range batch {
		key, i := locate(next, id)
		if i < 0 || key == dest {
			continue
		}
		is := next[key][i]
		next[key] = slices.Delete(next[key], i, i+1)
		sources[key] = true
		if model.IsBacklog(dest) {
			is.SprintID = ""
		} else {
			is.SprintID = dest
		}
		moved = append(moved, is)
	}
	if len(moved) == 0 {
		b.logger.Debug("sprint move vetoed, every issue already in destination", "dest", dest)
		return Cancelled, nil, nil
	}

	list := next[dest]
	pos := len(list)
	for i, is := range list {
		if is.ID == beforeID {
			pos = i
			break
		}
	}
	next[dest] = slices.Insert(list, pos, moved...)
	seq := b.issues.Apply(next)

	from := "several sprints"
	if len(sources) == 1 {
		for key := range sources {
			from = b.ContainerName(key)
		}
	}
	return b.scheduleIssues(issueWrite{
		seq:      seq,
		kind:     store.KindSprint,
		issueIDs: issueIDs(moved),
		dest:     dest,
		subject:  subject(moved),
		from:     from,
		to:       b.ContainerName(dest),
		waiter:   newWrite(),
	})
}

// scheduleIssues starts the write for an applied issue change. A board
// disposed since the change was applied takes the change back.
func (b *Board) scheduleIssues(w issueWrite) (Outcome, *Write, error) {
	if !b.issueWrites.Schedule(keyIssues, w, 0, b.writeIssues) {
		b.issues.Rollback(w.seq)
		w.waiter.resolve(ErrDisposed)
		return Cancelled, nil, ErrDisposed
	}
	return Dropped, w.waiter, nil
}

func (b *Board) writeIssues(ctx context.Context, w issueWrite) {
	token, err := b.token(ctx)
	if err != nil {
		b.failIssues(ctx, w, err)
		return
	}

	switch w.kind {
	case store.KindSprint:
		if model.IsBacklog(w.dest) {
			err = b.backend.RemoveIssuesFromSprint(ctx, token, w.issueIDs, b.projectID)
		} else {
			err = b.backend.AssignIssuesToSprint(ctx, token, w.issueIDs, w.dest, b.projectID)
		}
	default:
		for i, is := range w.issues {
			if _, err = b.backend.UpdateIssue(ctx, token, is); err != nil {
				w = b.partialIssues(ctx, w, i)
				break
			}
		}
	}
	if err != nil {
		b.failIssues(ctx, w, err)
		return
	}

	committed := b.issues.Commit(w.seq)
	b.notice(ctx, notify.LevelSuccess, fmt.Sprintf("Moved %s from %s to %s", w.subject, w.from, w.to), w.issueIDs, nil)
	b.record(ctx, store.Transition{
		Kind:     w.kind,
		Result:   store.ResultPersisted,
		IssueIDs: w.issueIDs,
		From:     w.from,
		To:       w.to,
	})
	b.publish(ctx, events.ChangeIssues, w.issueIDs, nil)
	b.logger.Info("issues written", "kind", string(w.kind), "count", len(w.issueIDs))
	b.settle(ctx, events.ChangeIssues, committed, b.issues.Latest() != w.seq)
	w.waiter.resolve(nil)
}

// partialIssues handles a status batch whose first sent updates persisted
// before a later one failed. It records the persisted part, marks the issues
// stale so the rollback refetches, and returns the write narrowed to the
// issues that were not moved.
func (b *Board) partialIssues(ctx context.Context, w issueWrite, sent int) issueWrite {
	if sent == 0 {
		return w
	}
	persisted, failed := w.issues[:sent], w.issues[sent:]
	ids := issueIDs(persisted)
	b.markStale(events.ChangeIssues)
	b.record(ctx, store.Transition{
		Kind:     w.kind,
		Result:   store.ResultPersisted,
		IssueIDs: ids,
		From:     w.from,
		To:       w.to,
	})
	b.publish(ctx, events.ChangeIssues, ids, nil)
	b.logger.Warn("status batch partly written", "written", sent, "count", len(w.issues))

	w.issues = failed
	w.issueIDs = issueIDs(failed)
	w.subject = subject(failed)
	return w
}

func (b *Board) failIssues(ctx context.Context, w issueWrite, err error) {
	if b.ctx.Err() != nil {
		b.issues.Rollback(w.seq)
		b.logger.Debug("issue write abandoned, board disposed", "kind", string(w.kind), "err", err)
		w.waiter.resolve(ErrDisposed)
		return
	}
	if b.issues.Rollback(w.seq) {
		b.afterRollback(ctx, events.ChangeIssues)
	} else {
		b.logger.Debug("issue rollback skipped, newer state on screen", "seq", uint64(w.seq))
	}
	te := &TransitionError{
		Kind:    string(w.kind),
		Subject: w.subject,
		From:    w.from,
		To:      w.to,
		Err:     err,
	}
	b.notice(ctx, failureLevel(err), "Could not "+te.describe(), w.issueIDs, te)
	b.record(ctx, store.Transition{
		Kind:     w.kind,
		Result:   store.ResultFailed,
		IssueIDs: w.issueIDs,
		From:     w.from,
		To:       w.to,
		Error:    err.Error(),
	})
	b.logger.Error("issue write failed", "kind", string(w.kind), "err", err)
	w.waiter.resolve(te)
}

// settle runs after a successful write. A committed write refetches so that
// server data replaces the shadow. A write that a newer optimistic change
// superseded leaves the refetch to the write that settles last, and marks the
// collection so that even a failing successor refetches: its rollback
// snapshot predates this persisted write.
func (b *Board) settle(ctx context.Context, kind string, committed, superseded bool) {
	switch {
	case committed:
		b.takeStale(kind)
		b.refetch(ctx, kind)
	case superseded:
		b.markStale(kind)
	}
}

func (b *Board) markStale(kind string) {
	b.mu.Lock()
	b.stale[kind] = true
	b.mu.Unlock()
}

func (b *Board) afterRollback(ctx context.Context, kind string) {
	if b.takeStale(kind) {
		b.refetch(ctx, kind)
	}
}

func (b *Board) takeStale(kind string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	stale := b.stale[kind]
	delete(b.stale, kind)
	return stale
}

// failureLevel maps an expired session to a transient notice; everything
// else is a failure.
func failureLevel(err error) notify.Level {
	if errors.Is(err, ErrTokenUnavailable) {
		return notify.LevelTransient
	}
	return notify.LevelFailure
}

// locate returns the container key and index of issue id, or index -1.
func locate(c model.Containers, id string) (string, int) {
	for key, list := range c {
		for i, is := range list {
			if is.ID == id {
				return key, i
			}
		}
	}
	return "", -1
}

func issueIDs(issues []model.Issue) []string {
	ids := make([]string, len(issues))
	for i, is := range issues {
		ids[i] = is.ID
	}
	return ids
}

func subject(issues []model.Issue) string {
	if len(issues) == 1 {
		return fmt.Sprintf("%q", issues[0].Title)
	}
	return fmt.Sprintf("%d issues", len(issues))
}
