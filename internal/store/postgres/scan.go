package postgres

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/sprintboard/internal/store"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanTransition scans a single row into a store.Transition.
// The row must contain columns in the order defined by transitionColumns.
func scanTransition(row scannable) (*store.Transition, error) {
	var (
		t        store.Transition
		kind     string
		result   string
		issueIDs pq.StringArray
		from     sql.NullString
		to       sql.NullString
		errText  sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&t.SessionID,
		&t.ProjectID,
		&kind,
		&result,
		&issueIDs,
		&from,
		&to,
		&errText,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Kind = store.Kind(kind)
	t.Result = store.Result(result)
	if len(issueIDs) > 0 {
		t.IssueIDs = []string(issueIDs)
	}
	t.From = from.String
	t.To = to.String
	t.Error = errText.String
	return &t, nil
}
