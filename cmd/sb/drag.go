package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/sprintboard/internal/board"
	"github.com/alfredjeanlab/sprintboard/internal/ui"
)

// dropResult is the JSON form of a scripted drag.
type dropResult struct {
	Outcome string `json:"outcome"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// dragIssues drags ids as one batch onto over, the way a pointer drag of the
// first id with the rest selected would, and waits for the write.
func dragIssues(ctx context.Context, a *app, ids []string, over string) (board.Result, error) {
	for _, id := range ids {
		if _, ok := a.board.Issue(id); !ok {
			return board.Result{}, fmt.Errorf("unknown issue %q", id)
		}
	}
	coord := board.NewCoordinator(a.board, nil)
	sel := coord.Selection()
	for _, id := range ids {
		if !sel.Contains(id) {
			sel.Toggle(id)
		}
	}
	coord.DragStart(ids[0], false)
	return finishDrag(ctx, coord, over)
}

func finishDrag(ctx context.Context, coord *board.Coordinator, over string) (board.Result, error) {
	res, err := coord.DragEnd(ctx, over)
	if err != nil {
		return res, err
	}
	return res, res.Write.Wait(ctx)
}

// report prints the outcome of a drag and its last notice.
func report(w io.Writer, a *app, res board.Result, err error) error {
	out := dropResult{Outcome: res.Outcome.String()}
	if n, ok := a.notices.Last(); ok {
		out.Level, out.Message = string(n.Level), n.Message
	}
	if err != nil {
		out.Error = err.Error()
	}
	if jsonOutput {
		if perr := printJSON(w, out); perr != nil {
			return perr
		}
		return err
	}
	switch {
	case out.Message != "":
		fmt.Fprintln(w, ui.RenderLevel(out.Level, out.Message))
	case err == nil:
		fmt.Fprintln(w, ui.RenderMuted("nothing to do ("+out.Outcome+")"))
	}
	return err
}

var moveCmd = &cobra.Command{
	Use:     "move <issue>... --to <column>",
	Short:   "Move issues to a status column",
	GroupID: "board",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.close()

		col, err := resolveColumn(a.board.Columns(), to)
		if err != nil {
			return err
		}
		res, err := dragIssues(cmd.Context(), a, args, board.ColumnDragID(col.ID))
		return report(cmd.OutOrStdout(), a, res, err)
	},
}

var assignCmd = &cobra.Command{
	Use:     "assign <issue>... --sprint <sprint>",
	Short:   "Move issues to a sprint or the backlog",
	GroupID: "board",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sprint, _ := cmd.Flags().GetString("sprint")
		before, _ := cmd.Flags().GetString("before")
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.close()

		key, err := resolveContainer(a.board.Sprints(), sprint)
		if err != nil {
			return err
		}
		over := board.ContainerDragID(key)
		if before != "" {
			is, ok := a.board.Issue(before)
			if !ok {
				return fmt.Errorf("unknown issue %q", before)
			}
			if is.Container() != key {
				return fmt.Errorf("issue %q is not in %s", before, a.board.ContainerName(key))
			}
			over = before
		}
		res, err := dragIssues(cmd.Context(), a, args, over)
		return report(cmd.OutOrStdout(), a, res, err)
	},
}

var reorderCmd = &cobra.Command{
	Use:     "reorder <column> --to <column>",
	Short:   "Move a status column to another column's position",
	GroupID: "board",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.close()

		cols := a.board.Columns()
		active, err := resolveColumn(cols, args[0])
		if err != nil {
			return err
		}
		over, err := resolveColumn(cols, to)
		if err != nil {
			return err
		}
		coord := board.NewCoordinator(a.board, nil)
		coord.DragStart(board.ColumnDragID(active.ID), false)
		res, err := finishDrag(cmd.Context(), coord, board.ColumnDragID(over.ID))
		return report(cmd.OutOrStdout(), a, res, err)
	},
}

func init() {
	moveCmd.Flags().String("to", "", "destination status column (id or name)")
	_ = moveCmd.MarkFlagRequired("to")

	assignCmd.Flags().String("sprint", "", "destination sprint (id, name or \"backlog\")")
	assignCmd.Flags().String("before", "", "insert before this issue of the destination")
	_ = assignCmd.MarkFlagRequired("sprint")

	reorderCmd.Flags().String("to", "", "column whose position to take (id or name)")
	_ = reorderCmd.MarkFlagRequired("to")
}
