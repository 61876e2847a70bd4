// Package reconcile coalesces bursts of mutation intents into one backend
// write per collection.
//
// Each collection key has at most one pending timer. Scheduling a new
// descriptor for a key cancels the outstanding timer and starts a fresh one;
// only the timer that survives the quiet period runs, and it runs with the
// latest descriptor.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/clock"
)

// RunFunc persists a descriptor. It is called without any Reconciler lock
// held, on the timer's goroutine (or a fresh goroutine for immediate runs).
type RunFunc[D any] func(ctx context.Context, d D)

// Reconciler is safe for concurrent use.
type Reconciler[D any] struct {
	ctx    context.Context
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pending[D]
	tail    map[string]chan struct{} // last immediate run per key
	gen     uint64
	stopped bool

	wg sync.WaitGroup
}

type pending[D any] struct {
	gen   uint64
	desc  D
	run   RunFunc[D]
	timer *clock.Timer
}

// New returns a Reconciler whose runs receive ctx. Cancelling ctx does not
// stop timers; call Stop for that.
func New[D any](ctx context.Context, clk clock.Clock, logger *slog.Logger) *Reconciler[D] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler[D]{
		ctx:     ctx,
		clock:   clk,
		logger:  logger,
		pending: make(map[string]*pending[D]),
		tail:    make(map[string]chan struct{}),
	}
}

// Schedule replaces whatever is pending for key with d and (re)starts the
// quiet-period timer. A non-positive delay cancels any pending timer for key
// and runs d right away on a new goroutine; immediate runs for one key start
// in the order they were scheduled, each after the previous one returned.
// Schedule reports false, and d never runs, once Stop was called.
func (r *Reconciler[D]) Schedule(key string, d D, delay time.Duration, run RunFunc[D]) bool {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false
	}
	if prev, ok := r.pending[key]; ok {
		prev.timer.Stop()
		delete(r.pending, key)
		r.logger.Debug("reconcile: superseded pending write", "key", key)
	}

	if delay <= 0 {
		r.startLocked(key, d, run)
		r.mu.Unlock()
		return true
	}

	r.gen++
	p := &pending[D]{gen: r.gen, desc: d, run: run}
	r.pending[key] = p
	// Register the timer under the lock so a concurrent Schedule for the
	// same key cannot miss it.
	p.timer = r.clock.AfterFunc(delay, func() { r.fire(key, p.gen) })
	r.mu.Unlock()
	return true
}

// Flush runs the descriptor pending for key now instead of at the end of its
// quiet period. It reports whether anything was pending.
func (r *Reconciler[D]) Flush(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[key]
	if !ok || r.stopped {
		return false
	}
	p.timer.Stop()
	delete(r.pending, key)
	r.startLocked(key, p.desc, p.run)
	return true
}

// startLocked runs d on a new goroutine, after the previous immediate run for
// key has returned. r.mu must be held.
func (r *Reconciler[D]) startLocked(key string, d D, run RunFunc[D]) {
	prev := r.tail[key]
	done := make(chan struct{})
	r.tail[key] = done
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(key, done)
		if prev != nil {
			<-prev
		}
		run(r.ctx, d)
	}()
}

// fire runs the pending entry for key if it is still the one identified by
// gen. A timer that was superseded after it had already started firing finds
// a different generation and does nothing.
func (r *Reconciler[D]) fire(key string, gen uint64) {
	r.mu.Lock()
	p, ok := r.pending[key]
	if !ok || p.gen != gen || r.stopped {
		r.mu.Unlock()
		return
	}
	delete(r.pending, key)
	r.wg.Add(1)
	r.mu.Unlock()

	defer r.wg.Done()
	p.run(r.ctx, p.desc)
}

func (r *Reconciler[D]) release(key string, done chan struct{}) {
	close(done)
	r.mu.Lock()
	if r.tail[key] == done {
		delete(r.tail, key)
	}
	r.mu.Unlock()
}

// Cancel drops the pending descriptor for key. It reports whether anything
// was pending.
func (r *Reconciler[D]) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(r.pending, key)
	return true
}

// Pending returns the descriptor waiting for key, if any.
func (r *Reconciler[D]) Pending(key string) (D, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[key]
	if !ok {
		var zero D
		return zero, false
	}
	return p.desc, true
}

// Wait blocks until every run that has started has returned.
func (r *Reconciler[D]) Wait() {
	r.wg.Wait()
}

// Stop cancels all pending timers and refuses further schedules. It returns
// the descriptors that were still waiting for their quiet period. Runs
// already in progress are not interrupted; Stop waits for them.
func (r *Reconciler[D]) Stop() []D {
	r.mu.Lock()
	r.stopped = true
	var dropped []D
	for key, p := range r.pending {
		p.timer.Stop()
		dropped = append(dropped, p.desc)
		delete(r.pending, key)
	}
	r.mu.Unlock()
	r.wg.Wait()
	return dropped
}
