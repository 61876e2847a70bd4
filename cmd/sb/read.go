package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/model"
)

var columnsCmd = &cobra.Command{
	Use:     "columns",
	Short:   "List the project's status columns in board order",
	GroupID: "board",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.close()

		cols := a.board.Columns()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cols)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tID\tNAME\tORDER")
		for i, c := range cols {
			fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", i+1, c.ID, c.Name, c.OrderIndex)
		}
		return w.Flush()
	},
}

var issuesCmd = &cobra.Command{
	Use:     "issues",
	Short:   "List issues grouped by sprint",
	GroupID: "board",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.close()

		containers := a.board.Containers()
		sprint, _ := cmd.Flags().GetString("sprint")
		if sprint != "" {
			key, err := resolveContainer(a.board.Sprints(), sprint)
			if err != nil {
				return err
			}
			containers = model.Containers{key: containers[key]}
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), containers)
		}

		cols := a.board.Columns()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SPRINT\tID\tKEY\tSTATUS\tPRIORITY\tTITLE")
		for _, key := range containers.Keys() {
			name := a.board.ContainerName(key)
			for _, is := range containers[key] {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					name, is.ID, is.Key, model.ColumnName(cols, is.Status), is.Priority, truncate(is.Title, 50))
			}
		}
		return w.Flush()
	},
}

func init() {
	issuesCmd.Flags().String("sprint", "", "only this sprint (id, name or \"backlog\")")
}
