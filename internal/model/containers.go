package model

import (
	"sort"
	"strconv"
)

// Containers groups issues by container key (sprint id or BacklogID). The
// order of each slice is the display order within that container.
type Containers map[string][]Issue

// Clone returns a deep copy: a new map and new backing arrays for every list.
func (c Containers) Clone() Containers {
	if c == nil {
		return nil
	}
	out := make(Containers, len(c))
	for k, issues := range c {
		cp := make([]Issue, len(issues))
		copy(cp, issues)
		out[k] = cp
	}
	return out
}

// Find locates an issue by id and returns it together with its container key.
func (c Containers) Find(id string) (Issue, string, bool) {
	for k, issues := range c {
		for _, is := range issues {
			if is.ID == id {
				return is, k, true
			}
		}
	}
	return Issue{}, "", false
}

// Keys returns the container keys in a stable order: the backlog last, the
// rest sorted.
func (c Containers) Keys() []string {
	keys := make([]string, 0, len(c))
	hasBacklog := false
	for k := range c {
		if k == BacklogID {
			hasBacklog = true
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if hasBacklog {
		keys = append(keys, BacklogID)
	}
	return keys
}

// ByStatus returns the issues of one container that sit in the given status
// column, preserving container order.
func (c Containers) ByStatus(container string, status int) []Issue {
	var out []Issue
	for _, is := range c[container] {
		if is.Status == status {
			out = append(out, is)
		}
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
