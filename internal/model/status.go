package model

import "sort"

// StatusColumn is one column of a project's board. OrderIndex defines the
// left-to-right display order. The server guarantees neither uniqueness nor
// contiguity of OrderIndex.
type StatusColumn struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	OrderIndex int    `json:"orderIndex"`
}

// ProjectConfig is the authoritative per-project board configuration.
type ProjectConfig struct {
	ProjectID string         `json:"projectId"`
	Name      string         `json:"name,omitempty"`
	Statuses  []StatusColumn `json:"statuses"`
}

// SortColumns returns a copy of cols in display order: ascending OrderIndex,
// ties broken by ascending ID.
func SortColumns(cols []StatusColumn) []StatusColumn {
	out := CloneColumns(cols)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CloneColumns returns a copy of cols with its own backing array. A nil input
// yields a nil output.
func CloneColumns(cols []StatusColumn) []StatusColumn {
	if cols == nil {
		return nil
	}
	out := make([]StatusColumn, len(cols))
	copy(out, cols)
	return out
}

// FindColumn returns the column with the given id.
func FindColumn(cols []StatusColumn, id int) (StatusColumn, bool) {
	for _, c := range cols {
		if c.ID == id {
			return c, true
		}
	}
	return StatusColumn{}, false
}

// ColumnIndex returns the position of the column with the given id in cols,
// or -1.
func ColumnIndex(cols []StatusColumn, id int) int {
	for i, c := range cols {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ColumnName returns the display name of a status, falling back to its
// numeric id when the column is unknown.
func ColumnName(cols []StatusColumn, id int) string {
	if c, ok := FindColumn(cols, id); ok && c.Name != "" {
		return c.Name
	}
	return itoa(id)
}
