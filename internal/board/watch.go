package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/sprintboard/internal/events"
)

// Watch subscribes to change events of the board's project and refetches
// the changed collection when another session reports a write. Events from
// this session are ignored. The watcher stops on Dispose.
func (b *Board) Watch(sub events.Subscriber) error {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return ErrDisposed
	}
	if b.watchCancel != nil {
		b.mu.Unlock()
		return errors.New("board: already watching")
	}
	ch, cancel, err := sub.Subscribe(events.ProjectWildcard(b.projectID))
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("watch project %s: %w", b.projectID, err)
	}
	b.watchCancel = cancel
	b.watchWG.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.watchWG.Done()
		for {
			select {
			case <-b.ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				b.handleChange(b.ctx, data)
			}
		}
	}()
	return nil
}

func (b *Board) handleChange(ctx context.Context, data []byte) {
	var ev events.ProjectChanged
	if err := json.Unmarshal(data, &ev); err != nil {
		b.logger.Warn("ignoring malformed change event", "err", err)
		return
	}
	if ev.SessionID == b.sessionID || ev.ProjectID != b.projectID {
		return
	}
	b.logger.Debug("remote change", "kind", ev.Kind, "from_session", ev.SessionID)

	token, err := b.token(ctx)
	if err != nil {
		b.logger.Warn("refetch after remote change skipped", "err", err)
		return
	}
	switch ev.Kind {
	case events.ChangeStatuses:
		err = b.refreshStatuses(ctx, token)
	case events.ChangeIssues:
		err = b.refreshIssues(ctx, token)
	default:
		err = b.Refresh(ctx)
	}
	if err != nil && ctx.Err() == nil {
		b.logger.Warn("refetch after remote change failed", "kind", ev.Kind, "err", err)
	}
}
