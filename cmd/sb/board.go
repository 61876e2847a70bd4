package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/archive"
	"github.com/alfredjeanlab/sprintboard/internal/events"
	"github.com/alfredjeanlab/sprintboard/internal/store"
	"github.com/alfredjeanlab/sprintboard/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:     "board",
	Short:   "Open the interactive board",
	GroupID: "board",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inbox := tui.NewInbox()
		a, err := openApp(ctx, inbox)
		if err != nil {
			return err
		}
		defer a.close()

		if cfg.NATSURL != "" {
			sub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				return fmt.Errorf("connect NATS: %w", err)
			}
			defer sub.Close()
			if err := a.board.Watch(sub); err != nil {
				return err
			}
		}

		if sched, err := exportScheduler(ctx, a.journal, store.Filter{ProjectID: cfg.ProjectID}); err != nil {
			return err
		} else if sched != nil {
			sched.Start()
			defer sched.Stop()
		}

		m := tui.New(ctx, tui.Options{Board: a.board, Inbox: inbox, Logger: logger})
		p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			return err
		}
		// Send a reorder still inside its debounce window and let in-flight
		// writes settle before Dispose abandons them.
		if a.board.Flush() {
			logger.Debug("flushed pending column reorder")
		}
		a.board.Wait()
		return nil
	},
}

// exportDestinations builds the configured journal export targets.
func exportDestinations(ctx context.Context) ([]archive.Destination, error) {
	var dests []archive.Destination
	if cfg.ExportS3Bucket != "" {
		s3d, err := archive.NewS3Destination(ctx, cfg.ExportS3Bucket, cfg.ExportS3Key, cfg.ExportS3Region, cfg.ExportS3Endpoint)
		if err != nil {
			return nil, fmt.Errorf("create S3 destination: %w", err)
		}
		dests = append(dests, s3d)
	}
	if cfg.ExportFile != "" {
		dests = append(dests, archive.NewFileDestination(cfg.ExportFile))
	}
	return dests, nil
}

// exportScheduler returns nil when periodic export is not configured.
func exportScheduler(ctx context.Context, s store.Store, filter store.Filter) (*archive.Scheduler, error) {
	if !cfg.ExportEnabled() || cfg.ExportInterval <= 0 {
		return nil, nil
	}
	dests, err := exportDestinations(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("journal export enabled", "interval", cfg.ExportInterval, "destinations", len(dests))
	return archive.NewScheduler(s, filter, dests, cfg.ExportInterval, logger), nil
}
