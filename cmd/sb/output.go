package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/sprintboard/internal/model"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// resolveColumn finds a status column by numeric id or, case-insensitively,
// by name.
func resolveColumn(cols []model.StatusColumn, arg string) (model.StatusColumn, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		if c, ok := model.FindColumn(cols, id); ok {
			return c, nil
		}
	}
	var found []model.StatusColumn
	for _, c := range cols {
		if strings.EqualFold(c.Name, arg) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return model.StatusColumn{}, fmt.Errorf("no status column %q", arg)
	case 1:
		return found[0], nil
	default:
		return model.StatusColumn{}, fmt.Errorf("status column name %q is ambiguous; use its id", arg)
	}
}

// resolveContainer maps a sprint id, a sprint name or "backlog" to a
// container key.
func resolveContainer(sprints []model.Sprint, arg string) (string, error) {
	if strings.EqualFold(arg, "backlog") || arg == model.BacklogID {
		return model.BacklogID, nil
	}
	for _, s := range sprints {
		if s.ID == arg {
			return s.ID, nil
		}
	}
	var found []string
	for _, s := range sprints {
		if strings.EqualFold(s.Name, arg) {
			found = append(found, s.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no sprint %q", arg)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("sprint name %q is ambiguous; use its id", arg)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
