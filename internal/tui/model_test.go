package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alfredjeanlab/sprintboard/internal/board"
	"github.com/alfredjeanlab/sprintboard/internal/clock"
	"github.com/alfredjeanlab/sprintboard/internal/gesture"
	"github.com/alfredjeanlab/sprintboard/internal/model"
	"github.com/alfredjeanlab/sprintboard/internal/notify"
)

// testBackend serves a two-sprint board and applies every write.
type testBackend struct {
	mu     sync.Mutex
	issues model.Containers
	cols   []model.StatusColumn
}

func newTestBackend() *testBackend {
	return &testBackend{
		cols: []model.StatusColumn{
			{ID: 1, Name: "Todo", OrderIndex: 1},
			{ID: 2, Name: "Doing", OrderIndex: 2},
			{ID: 3, Name: "Done", OrderIndex: 3},
		},
		issues: model.Containers{
			"s1": {
				{ID: "A", Key: "SB-1", Title: "Alpha", Status: 1, SprintID: "s1", Description: "first"},
				{ID: "B", Key: "SB-2", Title: "Bravo", Status: 1, SprintID: "s1"},
			},
			model.BacklogID: {
				{ID: "C", Key: "SB-3", Title: "Charlie", Status: 2},
			},
		},
	}
}

func (b *testBackend) GetProjectConfig(context.Context, string, string) (*model.ProjectConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &model.ProjectConfig{ProjectID: "p1", Statuses: model.CloneColumns(b.cols)}, nil
}

func (b *testBackend) ListSprints(context.Context, string, string) ([]model.Sprint, error) {
	return []model.Sprint{{ID: "s1", Name: "Sprint 1"}}, nil
}

func (b *testBackend) GetIssuesBySprint(context.Context, string, string) (model.Containers, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issues.Clone(), nil
}

func (b *testBackend) UpdateIssue(_ context.Context, _ string, issue model.Issue) (*model.Issue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, list := range b.issues {
		for i := range list {
			if list[i].ID == issue.ID {
				b.issues[k][i] = issue
			}
		}
	}
	return &issue, nil
}

func (b *testBackend) AssignIssuesToSprint(context.Context, string, []string, string, string) error {
	return nil
}

func (b *testBackend) RemoveIssuesFromSprint(context.Context, string, []string, string) error {
	return nil
}

func (b *testBackend) EditIssueStatus(_ context.Context, _, _ string, status model.StatusColumn) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.cols {
		if b.cols[i].ID == status.ID {
			b.cols[i] = status
		}
	}
	return nil
}

type staticTokens struct{}

func (staticTokens) Token(context.Context) (string, error) { return "tok", nil }

func newTestModel(t *testing.T) (Model, *board.Board, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	inbox := NewInbox()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := board.New(board.Options{
		ProjectID: "p1",
		Backend:   newTestBackend(),
		Tokens:    staticTokens{},
		Notifier:  inbox,
		Clock:     clk,
		Logger:    logger,
		SessionID: "sess-tui",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Dispose)

	m := New(context.Background(), Options{Board: b, Inbox: inbox, Clock: clk, Logger: logger})
	m = update(t, m, tea.WindowSizeMsg{Width: 90, Height: 30})
	m.View()
	return m, b, clk
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

// nextMsg reads the inbox until a message of type T arrives.
func nextMsg[T tea.Msg](t *testing.T, m Model) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-m.inbox.ch:
			if v, ok := msg.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("no %T in inbox", zero)
			return zero
		}
	}
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func columnHeader(t *testing.T, m Model, id int) region {
	t.Helper()
	for _, r := range m.screen.all() {
		if r.kind == regionColumn && r.column == id {
			return r
		}
	}
	t.Fatalf("column %d not rendered", id)
	return region{}
}

func TestView_RendersBoard(t *testing.T) {
	m, _, _ := newTestModel(t)
	out := m.View()

	for _, want := range []string{"Todo", "Doing", "Done", "Sprint 1", "Backlog", "SB-1 Alpha", "SB-3 Charlie"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	a, ok := m.screen.card("A")
	if !ok {
		t.Fatal("card A has no region")
	}
	if a.column != 1 || a.container != "s1" {
		t.Errorf("card A region = %+v", a)
	}
	if got := m.screen.hit(float64(a.x0), float64(a.y0)); got != "A" {
		t.Errorf("hit = %q, want A", got)
	}
}

func TestMouseDrag_ChangesStatus(t *testing.T) {
	m, b, _ := newTestModel(t)
	a, _ := m.screen.card("A")
	done := columnHeader(t, m, 3)

	m = update(t, m, mouse(a.x0+1, a.y0, tea.MouseActionPress))
	m = update(t, m, mouse(a.x0+6, a.y0, tea.MouseActionMotion))
	m = update(t, m, mouse(done.x0+1, done.y0, tea.MouseActionMotion))
	m = update(t, m, mouse(done.x0+1, done.y0, tea.MouseActionRelease))

	drop := nextMsg[dropMsg](t, m)
	if drop.err != nil || drop.result.Outcome != board.Dropped {
		t.Fatalf("drop = %+v", drop)
	}
	m = update(t, m, drop)
	if err := drop.result.Write.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	b.Wait()

	is, _ := b.Issue("A")
	if is.Status != 3 {
		t.Errorf("A status = %d, want 3", is.Status)
	}
	if m.status != "" {
		t.Errorf("status = %q", m.status)
	}
}

func TestMouseDrag_ReordersColumn(t *testing.T) {
	m, b, clk := newTestModel(t)
	done := columnHeader(t, m, 3)
	todo := columnHeader(t, m, 1)

	m = update(t, m, mouse(done.x0+1, done.y0, tea.MouseActionPress))
	m = update(t, m, mouse(todo.x0+1, todo.y0, tea.MouseActionMotion))
	m = update(t, m, mouse(todo.x0+1, todo.y0, tea.MouseActionRelease))

	drop := nextMsg[dropMsg](t, m)
	if drop.result.Outcome != board.Dropped || drop.result.Session.Kind != board.DragColumn {
		t.Fatalf("drop = %+v", drop)
	}
	if got := b.Columns()[0].ID; got != 3 {
		t.Errorf("first column = %d, want 3", got)
	}
	if !strings.Contains(m.View(), "saving column order") {
		t.Error("header should show the pending column write")
	}
	clk.Advance(board.DefaultColumnDebounce)
	if err := drop.result.Write.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestClick_OpensDetails(t *testing.T) {
	m, _, clk := newTestModel(t)
	a, _ := m.screen.card("A")

	m = update(t, m, mouse(a.x0+1, a.y0, tea.MouseActionPress))
	m = update(t, m, mouse(a.x0+1, a.y0, tea.MouseActionRelease))
	clk.Advance(gesture.DefaultConfig().ClickDelay)

	v := nextMsg[viewMsg](t, m)
	m = update(t, m, v)
	if m.detail != "A" || m.focus != "A" {
		t.Fatalf("detail = %q focus = %q", m.detail, m.focus)
	}
	if out := m.View(); !strings.Contains(out, "first") || !strings.Contains(out, "Sprint 1") {
		t.Errorf("details pane missing fields:\n%s", out)
	}
	m = update(t, m, keyMsg("esc"))
	if m.detail != "" {
		t.Error("esc should close details")
	}
}

func TestClick_ColumnHeaderDoesNotOpenDetails(t *testing.T) {
	m, _, clk := newTestModel(t)
	h := columnHeader(t, m, 2)

	m = update(t, m, mouse(h.x0+1, h.y0, tea.MouseActionPress))
	m = update(t, m, mouse(h.x0+1, h.y0, tea.MouseActionRelease))
	clk.Advance(time.Second)

	select {
	case msg := <-m.inbox.ch:
		if _, ok := msg.(viewMsg); ok {
			t.Fatalf("unexpected %+v", msg)
		}
	default:
	}
}

func TestKeyboardMove(t *testing.T) {
	m, b, _ := newTestModel(t)

	m = update(t, m, keyMsg("j")) // focus first card
	if m.focus != "A" {
		t.Fatalf("focus = %q, want A", m.focus)
	}
	m = update(t, m, keyMsg(" "))
	m = update(t, m, keyMsg("j"))
	m.View()
	if m.focus != "B" {
		t.Fatalf("focus = %q, want B", m.focus)
	}
	m = update(t, m, keyMsg(" "))

	m = update(t, m, keyMsg("m"))
	if m.grab == nil || *m.grab != board.Column(1) {
		t.Fatalf("grab = %v", m.grab)
	}
	m = update(t, m, keyMsg("l"))
	m = update(t, m, keyMsg("l"))
	if *m.grab != board.Column(3) {
		t.Fatalf("grab = %v, want column 3", *m.grab)
	}
	m = update(t, m, keyMsg("enter"))
	if m.grab != nil || m.last.Outcome != board.Dropped {
		t.Fatalf("grab = %v last = %+v", m.grab, m.last)
	}
	if err := m.last.Write.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	b.Wait()
	for _, id := range []string{"A", "B"} {
		if is, _ := b.Issue(id); is.Status != 3 {
			t.Errorf("%s status = %d, want 3", id, is.Status)
		}
	}
}

func TestKeyboardMove_ToContainerAndCancel(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = update(t, m, keyMsg("j"))
	m = update(t, m, keyMsg("m"))
	m = update(t, m, keyMsg("j"))
	if *m.grab != board.SprintContainer(model.BacklogID) {
		t.Fatalf("grab = %v, want backlog", *m.grab)
	}
	m = update(t, m, keyMsg("esc"))
	if m.grab != nil || m.coord.State() != board.Idle {
		t.Error("esc should cancel the move")
	}
}

func TestNotice_ShowsAndFades(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = update(t, m, noticeMsg{notice: notify.Notice{Level: notify.LevelFailure, Message: "Could not move"}})
	if !strings.Contains(m.View(), "Could not move") {
		t.Fatal("notice not shown")
	}
	m = update(t, m, noticeFadeMsg{seq: m.noticeSeq - 1})
	if m.notice == nil {
		t.Fatal("stale fade cleared a newer notice")
	}
	m = update(t, m, noticeFadeMsg{seq: m.noticeSeq})
	if m.notice != nil {
		t.Error("notice should fade")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 5, "trun…"},
		{"x", 0, ""},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := fit(tt.in, tt.width); got != tt.want {
			t.Errorf("fit(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
