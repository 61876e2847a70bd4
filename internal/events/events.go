// Package events carries board notices and cross-session invalidation over a
// message bus.
//
// A board publishes ProjectChanged after each confirmed write so that other
// board sessions on the same project refetch; it publishes Notice events so
// that toast-style notifications can be shown by any attached frontend.
package events

import (
	"context"
	"strings"
)

// Subject prefix shared by every sprintboard topic.
const Prefix = "sprintboard"

// Topic helpers. Subjects are dot-separated so NATS wildcards apply:
// "sprintboard.project.<id>.>" matches every change of one project.
const (
	topicProject = Prefix + ".project."
	topicNotice  = Prefix + ".notice."
)

// Change kinds published under a project subject.
const (
	ChangeIssues   = "issues"
	ChangeStatuses = "statuses"
	ChangeSprints  = "sprints"
)

// ProjectTopic returns the subject for a change of the given kind in a
// project, e.g. "sprintboard.project.p1.issues".
func ProjectTopic(projectID, kind string) string {
	return topicProject + sanitize(projectID) + "." + kind
}

// ProjectWildcard returns the subject pattern matching every change of a
// project.
func ProjectWildcard(projectID string) string {
	return topicProject + sanitize(projectID) + ".>"
}

// NoticeTopic returns the subject for notices of the given level.
func NoticeTopic(level string) string {
	return topicNotice + level
}

// sanitize replaces characters that are not valid inside one NATS subject
// token.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n':
			return '_'
		}
		return r
	}, s)
}

// ProjectChanged is published after a board write has been confirmed by the
// backend.
type ProjectChanged struct {
	ProjectID string   `json:"project_id"`
	Kind      string   `json:"kind"`
	IssueIDs  []string `json:"issue_ids,omitempty"`
	StatusIDs []int    `json:"status_ids,omitempty"`
	// SessionID identifies the board session that made the change.
	SessionID string `json:"session_id"`
}

// NoticeEvent is the bus form of a user-facing notification.
type NoticeEvent struct {
	Level     string   `json:"level"`
	Message   string   `json:"message"`
	ProjectID string   `json:"project_id,omitempty"`
	IssueIDs  []string `json:"issue_ids,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
