package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alfredjeanlab/sprintboard/internal/model"
)

// fakeTracker serves the tracker REST API from memory.
type fakeTracker struct {
	mu       sync.Mutex
	statuses []model.StatusColumn
	sprints  []model.Sprint
	issues   model.Containers
	writes   []string // "METHOD path" of every mutating request
}

func newFakeTracker(t *testing.T) (*fakeTracker, *httptest.Server) {
	t.Helper()
	ft := &fakeTracker{
		statuses: []model.StatusColumn{
			{ID: 1, Name: "Todo", OrderIndex: 1},
			{ID: 2, Name: "Doing", OrderIndex: 2},
			{ID: 3, Name: "Done", OrderIndex: 3},
		},
		sprints: []model.Sprint{{ID: "s1", Name: "Sprint 1", Active: true}},
		issues: model.Containers{
			"s1": {
				{ID: "A", Key: "SB-1", Title: "Alpha", Status: 1, SprintID: "s1"},
				{ID: "B", Key: "SB-2", Title: "Bravo", Status: 1, SprintID: "s1"},
			},
			model.BacklogID: {{ID: "C", Key: "SB-3", Title: "Charlie", Status: 2}},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/projects/{project}/config", ft.locked(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.ProjectConfig{ProjectID: r.PathValue("project"), Statuses: ft.statuses})
	}))
	mux.HandleFunc("GET /api/projects/{project}/sprints", ft.locked(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"sprints": ft.sprints})
	}))
	mux.HandleFunc("GET /api/projects/{project}/issues/by-sprint", ft.locked(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"sprints": ft.issues})
	}))
	mux.HandleFunc("PUT /api/issues/{id}", ft.locked(func(w http.ResponseWriter, r *http.Request) {
		var is model.Issue
		if err := json.NewDecoder(r.Body).Decode(&is); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ft.writes = append(ft.writes, r.Method+" "+r.URL.Path)
		for k, list := range ft.issues {
			for i := range list {
				if list[i].ID == is.ID {
					list[i] = is
					ft.issues[k] = list
				}
			}
		}
		writeJSON(w, is)
	}))
	mux.HandleFunc("POST /api/projects/{project}/sprints/{sprint}/issues", ft.locked(func(w http.ResponseWriter, r *http.Request) {
		ft.writes = append(ft.writes, r.Method+" "+r.URL.Path)
		ft.move(w, r, r.PathValue("sprint"))
	}))
	mux.HandleFunc("POST /api/projects/{project}/backlog/issues", ft.locked(func(w http.ResponseWriter, r *http.Request) {
		ft.writes = append(ft.writes, r.Method+" "+r.URL.Path)
		ft.move(w, r, "")
	}))
	mux.HandleFunc("PUT /api/projects/{project}/statuses/{id}", ft.locked(func(w http.ResponseWriter, r *http.Request) {
		var col model.StatusColumn
		if err := json.NewDecoder(r.Body).Decode(&col); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ft.writes = append(ft.writes, r.Method+" "+r.URL.Path)
		for i := range ft.statuses {
			if strconv.Itoa(ft.statuses[i].ID) == r.PathValue("id") {
				ft.statuses[i] = col
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return ft, srv
}

// locked serializes handlers and rejects requests without the test token.
func (ft *fakeTracker) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		ft.mu.Lock()
		defer ft.mu.Unlock()
		h(w, r)
	}
}

func (ft *fakeTracker) move(w http.ResponseWriter, r *http.Request, sprintID string) {
	var req struct {
		IssueIDs []string `json:"issueIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dest := model.ContainerKey(sprintID)
	for _, id := range req.IssueIDs {
	search:
		for k, list := range ft.issues {
			for i, is := range list {
				if is.ID != id {
					continue
				}
				ft.issues[k] = append(list[:i:i], list[i+1:]...)
				is.SprintID = sprintID
				ft.issues[dest] = append(ft.issues[dest], is)
				break search
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ft *fakeTracker) status(id string) int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	is, _, _ := ft.issues.Find(id)
	return is.Status
}

func (ft *fakeTracker) container(id string) string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	_, k, _ := ft.issues.Find(id)
	return k
}

func (ft *fakeTracker) writeLog() []string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]string(nil), ft.writes...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// runSB executes the root command against srv with fresh flag state and
// returns what it printed.
func runSB(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPRINTBOARD_TOKEN", "tok")
	t.Setenv("SPRINTBOARD_COLUMN_DEBOUNCE", "1ms")
	for _, k := range []string{"SPRINTBOARD_API_URL", "SPRINTBOARD_PROJECT", "SPRINTBOARD_NATS_URL", "SPRINTBOARD_DATABASE_URL", "SPRINTBOARD_REFRESH_TOKEN", "SPRINTBOARD_EXPORT_S3_BUCKET", "SPRINTBOARD_EXPORT_FILE", "SPRINTBOARD_EXPORT_INTERVAL"} {
		t.Setenv(k, "")
	}
	resetFlags(rootCmd)
	apiURLFlag, projectFlag, profileFlag = "", "", ""
	jsonOutput, verbose, noColor = false, false, true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	rootCmd.SetArgs(append([]string{"--api-url", srv.URL, "-p", "p1", "--no-color"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
