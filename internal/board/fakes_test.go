package board

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/auth"
	"github.com/alfredjeanlab/sprintboard/internal/clock"
	"github.com/alfredjeanlab/sprintboard/internal/events"
	"github.com/alfredjeanlab/sprintboard/internal/model"
	"github.com/alfredjeanlab/sprintboard/internal/notify"
	"github.com/alfredjeanlab/sprintboard/internal/selection"
	"github.com/alfredjeanlab/sprintboard/internal/store"
)

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type assignCall struct {
	ids      []string
	sprintID string
}

// fakeBackend is an in-memory tracker. Successful writes change its state so
// that refetches observe them, like the real server.
type fakeBackend struct {
	mu      sync.Mutex
	config  model.ProjectConfig
	sprints []model.Sprint
	issues  model.Containers

	updates []model.Issue
	assigns []assignCall
	removes [][]string
	edits   []model.StatusColumn
	fetches int

	failIssue  map[string]error // UpdateIssue fails for these ids
	failSync   error            // Assign and Remove fail
	failEdit   error            // EditIssueStatus fails
	failColumn map[int]error    // EditIssueStatus fails for these column ids

	// gate, when non-nil, blocks every write until it is closed or the
	// write's context ends.
	gate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		config: model.ProjectConfig{
			ProjectID: "p1",
			Statuses: []model.StatusColumn{
				{ID: 2, Name: "Doing", OrderIndex: 2},
				{ID: 1, Name: "Todo", OrderIndex: 1},
				{ID: 5, Name: "Review", OrderIndex: 4},
				{ID: 3, Name: "Done", OrderIndex: 3},
			},
		},
		sprints: []model.Sprint{
			{ID: "s1", Name: "Sprint 1", Active: true},
			{ID: "s2", Name: "Sprint 2"},
		},
		issues: model.Containers{
			"s1": {
				{ID: "A", Title: "Alpha", Status: 1, SprintID: "s1", Priority: 2},
				{ID: "B", Title: "Bravo", Status: 1, SprintID: "s1"},
				{ID: "C", Title: "Charlie", Status: 2, SprintID: "s1"},
			},
			"s2": {
				{ID: "D", Title: "Delta", Status: 1, SprintID: "s2"},
			},
			model.BacklogID: {
				{ID: "E", Title: "Echo", Status: 3},
			},
		},
		failIssue:  map[string]error{},
		failColumn: map[int]error{},
	}
}

func (f *fakeBackend) wait(ctx context.Context) error {
	f.mu.Lock()
	g := f.gate
	f.mu.Unlock()
	if g == nil {
		return nil
	}
	select {
	case <-g:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) GetProjectConfig(ctx context.Context, token, projectID string) (*model.ProjectConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg := f.config
	cfg.Statuses = model.CloneColumns(f.config.Statuses)
	return &cfg, nil
}

func (f *fakeBackend) ListSprints(ctx context.Context, token, projectID string) ([]model.Sprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sprints), nil
}

func (f *fakeBackend) GetIssuesBySprint(ctx context.Context, token, projectID string) (model.Containers, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.issues.Clone(), nil
}

func (f *fakeBackend) UpdateIssue(ctx context.Context, token string, issue model.Issue) (*model.Issue, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIssue[issue.ID]; err != nil {
		return nil, err
	}
	f.updates = append(f.updates, issue)
	key, i := locate(f.issues, issue.ID)
	if i >= 0 {
		f.issues[key][i] = issue
	}
	return &issue, nil
}

func (f *fakeBackend) moveLocked(ids []string, sprintID string) {
	dest := model.ContainerKey(sprintID)
	for _, id := range ids {
		key, i := locate(f.issues, id)
		if i < 0 {
			continue
		}
		is := f.issues[key][i]
		f.issues[key] = slices.Delete(f.issues[key], i, i+1)
		is.SprintID = sprintID
		f.issues[dest] = append(f.issues[dest], is)
	}
}

func (f *fakeBackend) AssignIssuesToSprint(ctx context.Context, token string, ids []string, sprintID, projectID string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSync != nil {
		return f.failSync
	}
	f.assigns = append(f.assigns, assignCall{ids: slices.Clone(ids), sprintID: sprintID})
	f.moveLocked(ids, sprintID)
	return nil
}

func (f *fakeBackend) RemoveIssuesFromSprint(ctx context.Context, token string, ids []string, projectID string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSync != nil {
		return f.failSync
	}
	f.removes = append(f.removes, slices.Clone(ids))
	f.moveLocked(ids, "")
	return nil
}

func (f *fakeBackend) EditIssueStatus(ctx context.Context, token, projectID string, status model.StatusColumn) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEdit != nil {
		return f.failEdit
	}
	if err := f.failColumn[status.ID]; err != nil {
		return err
	}
	f.edits = append(f.edits, status)
	for i, c := range f.config.Statuses {
		if c.ID == status.ID {
			f.config.Statuses[i] = status
		}
	}
	return nil
}

func (f *fakeBackend) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates) + len(f.assigns) + len(f.removes) + len(f.edits)
}

// tokenSource is a switchable auth.TokenSource.
type tokenSource struct {
	mu  sync.Mutex
	err error
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return "tok", nil
}

func (s *tokenSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

var _ auth.TokenSource = (*tokenSource)(nil)

type harness struct {
	t       *testing.T
	clk     *clock.FakeClock
	be      *fakeBackend
	tokens  *tokenSource
	notes   *notify.Recorder
	journal *store.Memory
	bus     *events.MemoryBus
	board   *Board
	coord   *Coordinator
	sel     *selection.Set
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		clk:     clock.Fake(epoch),
		be:      newFakeBackend(),
		tokens:  &tokenSource{},
		notes:   &notify.Recorder{},
		journal: store.NewMemory(),
		bus:     events.NewMemoryBus(),
		sel:     &selection.Set{},
	}
	b, err := New(Options{
		ProjectID: "p1",
		Backend:   h.be,
		Tokens:    h.tokens,
		Notifier:  h.notes,
		Journal:   h.journal,
		Publisher: h.bus,
		Clock:     h.clk,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		SessionID: "sess-test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		b.Dispose()
		h.bus.Close()
	})
	h.board = b
	h.coord = NewCoordinator(b, h.sel)
	return h
}

// drag runs a full drag of activeID onto overID.
func (h *harness) drag(activeID, overID string, modifier bool) (Result, error) {
	h.t.Helper()
	h.coord.DragStart(activeID, modifier)
	h.coord.DragOver(overID)
	return h.coord.DragEnd(context.Background(), overID)
}

// wait blocks until the result's write resolves.
func (h *harness) wait(res Result) error {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := res.Write.Wait(ctx)
	h.board.Wait()
	if err == context.DeadlineExceeded {
		h.t.Fatal("write did not resolve")
	}
	return err
}

func (h *harness) status(id string) int {
	h.t.Helper()
	is, ok := h.board.Issue(id)
	if !ok {
		h.t.Fatalf("issue %s not on board", id)
	}
	return is.Status
}

func (h *harness) lastNotice() notify.Notice {
	h.t.Helper()
	n, ok := h.notes.Last()
	if !ok {
		h.t.Fatal("no notice recorded")
	}
	return n
}

func columnIDs(cols []model.StatusColumn) []int {
	ids := make([]int, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

func containerIDs(c model.Containers, key string) []string {
	var ids []string
	for _, is := range c[key] {
		ids = append(ids, is.ID)
	}
	return ids
}
