package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/client"
)

type healthReport struct {
	URL       string `json:"url"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check that the tracker API is reachable and healthy",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewHTTPClient(cfg.APIURL, cfg.RequestTimeout)
		defer c.Close()

		start := time.Now()
		status, err := c.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("checking health of %s: %w", cfg.APIURL, err)
		}
		rep := healthReport{URL: cfg.APIURL, Status: status, LatencyMS: time.Since(start).Milliseconds()}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Health: %s (%s, %dms)\n", rep.Status, rep.URL, rep.LatencyMS)
		}
		if status != "ok" {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}
