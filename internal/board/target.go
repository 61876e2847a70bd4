package board

import (
	"strconv"
	"strings"

	"github.com/alfredjeanlab/sprintboard/internal/model"
)

// Drag id prefixes. Column handles and sprint containers carry synthetic ids;
// every other draggable or droppable id is an issue id.
const (
	columnPrefix    = "status-column-"
	containerPrefix = "sprint-container-"
)

// TargetKind discriminates Target.
type TargetKind int

const (
	TargetIssue TargetKind = iota
	TargetColumn
	TargetContainer
)

func (k TargetKind) String() string {
	switch k {
	case TargetColumn:
		return "column"
	case TargetContainer:
		return "container"
	default:
		return "issue"
	}
}

// Target is a parsed drag or drop id.
type Target struct {
	Kind TargetKind
	// IssueID is set for TargetIssue.
	IssueID string
	// ColumnID is set for TargetColumn.
	ColumnID int
	// Container is the container key (sprint id or model.BacklogID) for
	// TargetContainer.
	Container string
}

// IssueRow returns the target for an issue row.
func IssueRow(id string) Target { return Target{Kind: TargetIssue, IssueID: id} }

// Column returns the target for a status column.
func Column(id int) Target { return Target{Kind: TargetColumn, ColumnID: id} }

// SprintContainer returns the target for a sprint container. An empty id or
// model.BacklogID names the backlog.
func SprintContainer(sprintID string) Target {
	return Target{Kind: TargetContainer, Container: model.ContainerKey(sprintID)}
}

// ParseTarget classifies a raw drag id. A "status-column-" id with a
// non-numeric suffix and an empty id are rejected.
func ParseTarget(id string) (Target, bool) {
	switch {
	case id == "":
		return Target{}, false
	case strings.HasPrefix(id, columnPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(id, columnPrefix))
		if err != nil {
			return Target{}, false
		}
		return Column(n), true
	case strings.HasPrefix(id, containerPrefix):
		return SprintContainer(strings.TrimPrefix(id, containerPrefix)), true
	default:
		return IssueRow(id), true
	}
}

// ID returns the raw drag id for t; ParseTarget(t.ID()) yields t.
func (t Target) ID() string {
	switch t.Kind {
	case TargetColumn:
		return ColumnDragID(t.ColumnID)
	case TargetContainer:
		return ContainerDragID(t.Container)
	default:
		return t.IssueID
	}
}

func (t Target) String() string {
	return t.Kind.String() + ":" + t.ID()
}

// ColumnDragID returns the drag id of a status column handle.
func ColumnDragID(id int) string {
	return columnPrefix + strconv.Itoa(id)
}

// ContainerDragID returns the drop id of a sprint container.
func ContainerDragID(sprintID string) string {
	return containerPrefix + model.ContainerKey(sprintID)
}
