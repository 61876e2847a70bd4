// Package client defines the backend operations the board depends on and an
// HTTP/JSON implementation of them.
package client

import (
	"context"

	"github.com/alfredjeanlab/sprintboard/internal/model"
)

// Backend is the remote issue tracker. Every method is a black-box call that
// either succeeds or returns an error; mutating calls carry the access token
// obtained from auth.TokenSource immediately before the call.
type Backend interface {
	GetProjectConfig(ctx context.Context, token, projectID string) (*model.ProjectConfig, error)
	ListSprints(ctx context.Context, token, projectID string) ([]model.Sprint, error)
	// GetIssuesBySprint returns the project's issues grouped by sprint id;
	// unassigned issues are under model.BacklogID.
	GetIssuesBySprint(ctx context.Context, token, projectID string) (model.Containers, error)

	// UpdateIssue writes the full issue object.
	UpdateIssue(ctx context.Context, token string, issue model.Issue) (*model.Issue, error)
	AssignIssuesToSprint(ctx context.Context, token string, issueIDs []string, sprintID, projectID string) error
	RemoveIssuesFromSprint(ctx context.Context, token string, issueIDs []string, projectID string) error
	// EditIssueStatus writes one status column (name, color, order index).
	EditIssueStatus(ctx context.Context, token, projectID string, status model.StatusColumn) error
}

// sprintIssuesRequest is the body of assign and remove calls.
type sprintIssuesRequest struct {
	IssueIDs  []string `json:"issueIds"`
	ProjectID string   `json:"projectId"`
	SprintID  string   `json:"sprintId,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}
