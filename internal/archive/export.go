package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ProjectID string    `json:"project_id,omitempty"`
	Count     int       `json:"transition_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes the journal entries matching filter as JSONL to w,
// oldest first, and returns how many entries were written.
func ExportJSONL(ctx context.Context, s store.Store, filter store.Filter, w io.Writer) (int, error) {
	entries, err := s.ListTransitions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("list transitions: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		ProjectID: filter.ProjectID,
		Count:     len(entries),
	}); err != nil {
		return 0, fmt.Errorf("encode header: %w", err)
	}

	for _, t := range entries {
		if err := enc.Encode(record{Type: "transition", Data: t}); err != nil {
			return 0, fmt.Errorf("encode transition %s: %w", t.ID, err)
		}
	}
	return len(entries), nil
}
