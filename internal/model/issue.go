package model

import "time"

// BacklogID is the container key for issues that belong to no sprint.
// The backend reports these with a null sprint id.
const BacklogID = "null"

// IssueType categorizes an issue. The set is open; these are the well-known values.
type IssueType string

const (
	TypeTask  IssueType = "task"
	TypeBug   IssueType = "bug"
	TypeStory IssueType = "story"
	TypeEpic  IssueType = "epic"
)

// Issue is a work item on the board. The board only ever mutates Status and
// SprintID; every other field is carried through untouched so that full-object
// updates round-trip what the server sent.
type Issue struct {
	ID          string    `json:"id"`
	Key         string    `json:"key,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        IssueType `json:"type,omitempty"`
	Priority    int       `json:"priority"`
	Status      int       `json:"status"`
	SprintID    string    `json:"sprintId,omitempty"`
	AssignedID  string    `json:"assignedId,omitempty"`
	ProjectID   string    `json:"projectId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Container returns the container key the issue lives in: its sprint id, or
// BacklogID when it is unassigned.
func (i *Issue) Container() string {
	return ContainerKey(i.SprintID)
}

// ContainerKey normalizes a sprint id into a container key.
func ContainerKey(sprintID string) string {
	if sprintID == "" || sprintID == BacklogID {
		return BacklogID
	}
	return sprintID
}

// IsBacklog reports whether key names the backlog container.
func IsBacklog(key string) bool {
	return ContainerKey(key) == BacklogID
}
