package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/config"
	"github.com/alfredjeanlab/sprintboard/internal/ui"
)

var (
	apiURLFlag  string
	projectFlag string
	profileFlag string
	jsonOutput  bool
	verbose     bool
	noColor     bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sb <command>",
	Short:         "Drag-and-drop sprint board client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupOutput()
		p, err := selectedProfile()
		if err != nil {
			return err
		}
		c, err := config.Load(p.fallback())
		if err != nil {
			return err
		}
		if apiURLFlag != "" {
			c.APIURL = apiURLFlag
		}
		if projectFlag != "" {
			c.ProjectID = projectFlag
		}
		cfg = c
		return nil
	},
}

// setupOutput configures logging and color from the global flags.
func setupOutput() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if noColor {
		ui.ForceNoColor()
	}
}

// skipConfig replaces the root pre-run for commands that only touch local
// files.
func skipConfig(cmd *cobra.Command, args []string) error {
	setupOutput()
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "tracker API base URL (overrides SPRINTBOARD_API_URL and the profile)")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "project id")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "profile to use instead of the active one")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "board", Title: "Board:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderLevel("failure", "Error: "+err.Error()))
		os.Exit(1)
	}
}
