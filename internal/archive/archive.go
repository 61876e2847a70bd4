// Package archive exports the transition journal as JSONL to S3 or a local
// file, once or on an interval.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/store"
)

// Destination is the interface for an export target (S3, file).
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Export writes the entries matching filter to every destination. All
// destinations are attempted; their errors are joined.
func Export(ctx context.Context, s store.Store, filter store.Filter, destinations []Destination) (int, error) {
	var buf bytes.Buffer
	n, err := ExportJSONL(ctx, s, filter, &buf)
	if err != nil {
		return 0, err
	}
	data := buf.Bytes()

	var errs []error
	for i, dest := range destinations {
		if err := dest.Write(ctx, data); err != nil {
			errs = append(errs, fmt.Errorf("destination %d: %w", i, err))
		}
	}
	return n, errors.Join(errs...)
}

// Scheduler runs periodic exports to one or more destinations.
type Scheduler struct {
	store        store.Store
	filter       store.Filter
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports the entries matching filter
// from the store to the given destinations at the specified interval.
func NewScheduler(s store.Store, filter store.Filter, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		filter:       filter,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic export. The first export runs after one interval so
// that a fresh session does not upload an empty journal.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler, waits for the current export (if any), then
// runs one final export so entries recorded since the last tick are kept.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.exportOnce(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	n, err := Export(ctx, s.store, s.filter, s.destinations)
	if err != nil {
		s.logger.Error("journal export failed", "err", err)
		return
	}
	s.logger.Info("journal export completed", "destinations", len(s.destinations), "entries", n)
}
