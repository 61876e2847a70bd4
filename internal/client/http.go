package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/model"
)

// HTTPClient implements Backend against the tracker's REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Backend = (*HTTPClient)(nil)

// NewHTTPClient creates a client targeting baseURL (e.g.
// "https://tracker.example.com"). A zero timeout means no client timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func projectPath(projectID string) string {
	return "/api/projects/" + url.PathEscape(projectID)
}

// --- Reads ---

func (c *HTTPClient) GetProjectConfig(ctx context.Context, token, projectID string) (*model.ProjectConfig, error) {
	var cfg model.ProjectConfig
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID)+"/config", token, nil, &cfg); err != nil {
		return nil, err
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = projectID
	}
	return &cfg, nil
}

func (c *HTTPClient) ListSprints(ctx context.Context, token, projectID string) ([]model.Sprint, error) {
	var resp struct {
		Sprints []model.Sprint `json:"sprints"`
	}
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID)+"/sprints", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sprints, nil
}

func (c *HTTPClient) GetIssuesBySprint(ctx context.Context, token, projectID string) (model.Containers, error) {
	var resp struct {
		Sprints map[string][]model.Issue `json:"sprints"`
	}
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID)+"/issues/by-sprint", token, nil, &resp); err != nil {
		return nil, err
	}
	out := make(model.Containers, len(resp.Sprints))
	for key, issues := range resp.Sprints {
		// Some servers key the backlog by "" rather than "null".
		if key == "" {
			key = model.BacklogID
		}
		out[key] = append(out[key], issues...)
	}
	return out, nil
}

// --- Writes ---

func (c *HTTPClient) UpdateIssue(ctx context.Context, token string, issue model.Issue) (*model.Issue, error) {
	if err := model.ValidateIssue(&issue); err != nil {
		return nil, err
	}
	var updated model.Issue
	if err := c.doJSON(ctx, http.MethodPut, "/api/issues/"+url.PathEscape(issue.ID), token, issue, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) AssignIssuesToSprint(ctx context.Context, token string, issueIDs []string, sprintID, projectID string) error {
	body := sprintIssuesRequest{IssueIDs: issueIDs, ProjectID: projectID, SprintID: sprintID}
	path := projectPath(projectID) + "/sprints/" + url.PathEscape(sprintID) + "/issues"
	return c.doJSON(ctx, http.MethodPost, path, token, body, nil)
}

func (c *HTTPClient) RemoveIssuesFromSprint(ctx context.Context, token string, issueIDs []string, projectID string) error {
	body := sprintIssuesRequest{IssueIDs: issueIDs, ProjectID: projectID}
	return c.doJSON(ctx, http.MethodPost, projectPath(projectID)+"/backlog/issues", token, body, nil)
}

func (c *HTTPClient) EditIssueStatus(ctx context.Context, token, projectID string, status model.StatusColumn) error {
	path := projectPath(projectID) + "/statuses/" + fmt.Sprint(status.ID)
	return c.doJSON(ctx, http.MethodPut, path, token, status, nil)
}

// --- Session ---

// RefreshToken exchanges a refresh token for a new access token. Its
// signature matches auth.RefreshFunc.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	var resp refreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Health returns the server's reported status string.
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", "", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			if errResp.Error != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
			}
			if errResp.Message != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
