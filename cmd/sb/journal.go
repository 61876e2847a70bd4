package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/archive"
	"github.com/alfredjeanlab/sprintboard/internal/store"
)

// errDryRun rolls back a prune that was only counting.
var errDryRun = errors.New("dry run")

var journalCmd = &cobra.Command{
	Use:     "journal",
	Short:   "Inspect, export and prune the transition journal",
	GroupID: "system",
}

// journalFilter reads the shared --session, --since and --limit flags.
func journalFilter(cmd *cobra.Command) (store.Filter, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("no SPRINTBOARD_DATABASE_URL set; the journal only holds this process's entries")
	}
	f := store.Filter{ProjectID: cfg.ProjectID}
	f.SessionID, _ = cmd.Flags().GetString("session")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
		f.Since = time.Now().Add(-since)
	}
	if f.Limit < 0 {
		return f, fmt.Errorf("--limit must not be negative")
	}
	return f, nil
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := journalFilter(cmd)
		if err != nil {
			return err
		}
		s, err := openJournal()
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.ListTransitions(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("list transitions: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no journal entries")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tKIND\tRESULT\tISSUES\tFROM\tTO\tERROR")
		for _, t := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				t.CreatedAt.Local().Format("2006-01-02 15:04:05"), t.Kind, t.Result,
				strings.Join(t.IssueIDs, ","), t.From, t.To, truncate(t.Error, 40))
		}
		return w.Flush()
	},
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export journal entries as JSONL",
	Long: `Export journal entries as JSONL to stdout, or with --destinations to the
configured S3 bucket and file (SPRINTBOARD_EXPORT_S3_BUCKET, SPRINTBOARD_EXPORT_FILE).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := journalFilter(cmd)
		if err != nil {
			return err
		}
		s, err := openJournal()
		if err != nil {
			return err
		}
		defer s.Close()

		if toDests, _ := cmd.Flags().GetBool("destinations"); !toDests {
			_, err := archive.ExportJSONL(cmd.Context(), s, filter, cmd.OutOrStdout())
			return err
		}
		if !cfg.ExportEnabled() {
			return fmt.Errorf("no export destination configured")
		}
		dests, err := exportDestinations(cmd.Context())
		if err != nil {
			return err
		}
		n, err := archive.Export(cmd.Context(), s, filter, dests)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d entries to %d destination(s)\n", n, len(dests))
		return nil
	},
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune --older-than <duration>",
	Short: "Delete journal entries older than a duration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		s, err := openJournal()
		if err != nil {
			return err
		}
		defer s.Close()

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		var n int64
		err = s.RunInTransaction(cmd.Context(), func(tx store.Store) error {
			var err error
			if n, err = tx.PruneTransitions(cmd.Context(), time.Now().Add(-age)); err != nil {
				return fmt.Errorf("prune transitions: %w", err)
			}
			if dryRun {
				return errDryRun
			}
			return nil
		})
		switch {
		case errors.Is(err, errDryRun):
			fmt.Fprintf(cmd.OutOrStdout(), "would prune %d entries\n", n)
			return nil
		case err != nil:
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", n)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{journalListCmd, journalExportCmd} {
		c.Flags().String("session", "", "only entries of this board session")
		c.Flags().Duration("since", 0, "only entries newer than this (e.g. 24h)")
		c.Flags().Int("limit", 0, "maximum number of entries (0 = all)")
	}
	journalExportCmd.Flags().Bool("destinations", false, "write to the configured export destinations instead of stdout")
	journalPruneCmd.Flags().Duration("older-than", 0, "age cutoff (e.g. 720h)")
	journalPruneCmd.Flags().Bool("dry-run", false, "count the entries without deleting them")
	_ = journalPruneCmd.MarkFlagRequired("older-than")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalExportCmd)
	journalCmd.AddCommand(journalPruneCmd)
}
