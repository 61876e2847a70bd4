package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/sprintboard/internal/auth"
	"github.com/alfredjeanlab/sprintboard/internal/board"
	"github.com/alfredjeanlab/sprintboard/internal/client"
	"github.com/alfredjeanlab/sprintboard/internal/clock"
	"github.com/alfredjeanlab/sprintboard/internal/events"
	"github.com/alfredjeanlab/sprintboard/internal/idgen"
	"github.com/alfredjeanlab/sprintboard/internal/notify"
	"github.com/alfredjeanlab/sprintboard/internal/store"
	"github.com/alfredjeanlab/sprintboard/internal/store/postgres"
)

// app is one opened board with everything it was built from.
type app struct {
	client    *client.HTTPClient
	journal   store.Store
	publisher events.Publisher
	board     *board.Board
	notices   *notify.Recorder
}

// openJournal returns the PostgreSQL journal when a database is configured,
// else an in-memory one that lives as long as the process.
func openJournal() (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), nil
	}
	s, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return s, nil
}

func openPublisher() (events.Publisher, error) {
	if cfg.NATSURL == "" {
		return &events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("connect NATS: %w", err)
	}
	logger.Debug("publishing events", "nats_url", cfg.NATSURL)
	return pub, nil
}

func tokenSource(c *client.HTTPClient) auth.TokenSource {
	if cfg.RefreshToken != "" {
		return auth.NewRefreshing(cfg.Token, cfg.RefreshToken, c.RefreshToken, clock.Real())
	}
	return auth.NewStatic(cfg.Token, clock.Real())
}

// openApp builds and loads the board of the configured project. extra
// receives every notice in addition to the log and the event bus.
func openApp(ctx context.Context, extra notify.Notifier) (*app, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("no project: pass --project or set SPRINTBOARD_PROJECT")
	}
	a := &app{
		client:  client.NewHTTPClient(cfg.APIURL, cfg.RequestTimeout),
		notices: &notify.Recorder{},
	}

	var err error
	if a.journal, err = openJournal(); err != nil {
		return nil, err
	}
	if a.publisher, err = openPublisher(); err != nil {
		a.journal.Close()
		return nil, err
	}

	sessionID := idgen.MustSession()
	notifier := notify.Multi{
		notify.NewLogNotifier(logger),
		notify.NewEventNotifier(a.publisher, sessionID, logger),
		a.notices,
		extra,
	}
	a.board, err = board.New(board.Options{
		ProjectID:      cfg.ProjectID,
		Backend:        a.client,
		Tokens:         tokenSource(a.client),
		Notifier:       notifier,
		Journal:        a.journal,
		Publisher:      a.publisher,
		Logger:         logger,
		ColumnDebounce: cfg.ColumnDebounce,
		SessionID:      sessionID,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	if err := a.board.Init(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// close flushes nothing: pending debounced writes are abandoned by Dispose,
// so callers wait on their writes first.
func (a *app) close() {
	if a.board != nil {
		a.board.Dispose()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.journal != nil {
		a.journal.Close()
	}
	a.client.Close()
}
