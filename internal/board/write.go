package board

import (
	"context"
	"sync"
)

// Write is the pending backend write behind a Dropped drag. It resolves once
// the write succeeded, failed, or was dropped by Dispose.
type Write struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newWrite() *Write {
	return &Write{done: make(chan struct{})}
}

func (w *Write) resolve(err error) {
	w.once.Do(func() {
		w.err = err
		close(w.done)
	})
}

// Done is closed when the write resolves.
func (w *Write) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the write resolves or ctx ends. A nil Write resolves
// immediately.
func (w *Write) Wait(ctx context.Context) error {
	if w == nil {
		return nil
	}
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func resolveAll(ws []*Write, err error) {
	for _, w := range ws {
		w.resolve(err)
	}
}
