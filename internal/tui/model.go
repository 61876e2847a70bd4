// Package tui is the interactive terminal board. Built on bubbletea, it
// renders a board's columns and sprint containers with lipgloss and turns
// terminal mouse events into drags through the gesture classifier and
// engine, which report to the board's Coordinator.
//
// Data flow:
//
//	[terminal mouse/keys]
//	        | tea.Msg
//	    [Model] -> gesture.Classifier -> gesture.Engine -> board.Coordinator
//	        ^                                                   |
//	        +----------- Inbox (changes, notices, drops) -------+
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alfredjeanlab/sprintboard/internal/board"
	"github.com/alfredjeanlab/sprintboard/internal/clock"
	"github.com/alfredjeanlab/sprintboard/internal/gesture"
	"github.com/alfredjeanlab/sprintboard/internal/model"
	"github.com/alfredjeanlab/sprintboard/internal/notify"
)

// noticeTTL is how long a notice stays in the status line.
const noticeTTL = 4 * time.Second

// --- messages ---

type boardChangedMsg struct{}

type viewMsg struct{ id string }

type dropMsg struct {
	result board.Result
	err    error
}

type noticeMsg struct{ notice notify.Notice }

type noticeFadeMsg struct{ seq int }

type refreshedMsg struct{ err error }

// Inbox carries events from board goroutines into the bubbletea loop. It
// implements notify.Notifier so that it can be handed to board.New before
// the Model exists.
type Inbox struct {
	ch chan tea.Msg
}

// NewInbox returns an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{ch: make(chan tea.Msg, 256)}
}

// Notify queues n for the status line.
func (in *Inbox) Notify(_ context.Context, n notify.Notice) {
	in.post(noticeMsg{notice: n})
}

// post never blocks: a full inbox drops the message. Every frame re-reads
// the board, so a lost change only delays a redraw.
func (in *Inbox) post(msg tea.Msg) {
	select {
	case in.ch <- msg:
	default:
	}
}

// listen waits for the next inbox message.
func (in *Inbox) listen() tea.Cmd {
	return func() tea.Msg {
		return <-in.ch
	}
}

var _ notify.Notifier = (*Inbox)(nil)

// Options configures a Model. Board is required.
type Options struct {
	Board       *board.Board
	Coordinator *board.Coordinator // default: a new coordinator for Board
	Inbox       *Inbox             // default: a fresh inbox
	Clock       clock.Clock        // default: real time
	Gesture     gesture.Config     // default: gesture.DefaultConfig()
	Keys        *KeyMap            // default: DefaultKeyMap
	Logger      *slog.Logger
}

// Model is the bubbletea model of one open board.
type Model struct {
	ctx        context.Context
	board      *board.Board
	coord      *board.Coordinator
	inbox      *Inbox
	classifier *gesture.Classifier
	engine     *gesture.Engine
	screen     *screen
	keys       KeyMap
	logger     *slog.Logger

	width, height int
	scroll        int

	pressed string        // item under the current mouse press
	focus   string        // focused issue id
	grab    *board.Target // drop target of a keyboard move in progress
	detail  string        // issue shown in the details pane

	notice    *notify.Notice
	noticeSeq int
	status    string // last drop error
	last      board.Result
}

// New wires a Model to opts.Board. ctx bounds every write the model starts.
func New(ctx context.Context, opts Options) Model {
	if opts.Coordinator == nil {
		opts.Coordinator = board.NewCoordinator(opts.Board, nil)
	}
	if opts.Inbox == nil {
		opts.Inbox = NewInbox()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Gesture == (gesture.Config{}) {
		opts.Gesture = gesture.DefaultConfig()
	}
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	in := opts.Inbox
	s := &screen{}
	handler := opts.Coordinator.Handler(ctx, func(res board.Result, err error) {
		in.post(dropMsg{result: res, err: err})
	})
	engine := gesture.NewEngine(opts.Gesture.MoveThreshold, s.hit, handler)
	classifier := gesture.NewClassifier(opts.Gesture, opts.Clock, engine, func(item string) {
		if t, ok := board.ParseTarget(item); ok && t.Kind == board.TargetIssue {
			in.post(viewMsg{id: item})
		}
	})
	opts.Board.OnChange(func() { in.post(boardChangedMsg{}) })

	return Model{
		ctx:        ctx,
		board:      opts.Board,
		coord:      opts.Coordinator,
		inbox:      in,
		classifier: classifier,
		engine:     engine,
		screen:     s,
		keys:       keys,
		logger:     opts.Logger,
	}
}

// Init starts listening to the inbox.
func (m Model) Init() tea.Cmd {
	return m.inbox.listen()
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if m.grab != nil {
			return m.handleGrabKey(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case boardChangedMsg:
		if _, ok := m.board.Issue(m.focus); !ok {
			m.focus = ""
		}
		return m, m.inbox.listen()

	case viewMsg:
		m.focus = msg.id
		m.detail = msg.id
		return m, m.inbox.listen()

	case dropMsg:
		m.applyDrop(msg.result, msg.err)
		return m, m.inbox.listen()

	case noticeMsg:
		n := msg.notice
		m.notice = &n
		m.noticeSeq++
		seq := m.noticeSeq
		return m, tea.Batch(m.inbox.listen(), tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return noticeFadeMsg{seq: seq}
		}))

	case noticeFadeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}

	case refreshedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		}
	}
	return m, nil
}

func (m *Model) applyDrop(res board.Result, err error) {
	m.last = res
	if err != nil {
		m.status = err.Error()
		m.logger.Debug("drop rejected", "err", err)
		return
	}
	m.status = ""
}

func (m Model) refresh() tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: b.Refresh(ctx)}
	}
}

// --- mouse ---

// handleMouse feeds left-button gestures on cards and column headers to the
// classifier. The wheel scrolls the board.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.scroll > 0 {
			m.scroll--
		}
		return
	case tea.MouseButtonWheelDown:
		m.scroll++
		return
	}

	p := gesture.Pointer{
		X:        float64(msg.X),
		Y:        float64(msg.Y),
		Modifier: msg.Shift || msg.Alt || msg.Ctrl,
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		r, ok := m.screen.at(msg.X, msg.Y)
		if !ok || !r.draggable() {
			m.pressed = ""
			return
		}
		m.pressed = r.id
		if r.kind == regionCard {
			m.focus = r.id
		}
		m.classifier.PointerDown(r.id, p)

	case tea.MouseActionMotion:
		if m.pressed != "" {
			m.classifier.PointerMove(m.pressed, p)
		}

	case tea.MouseActionRelease:
		if m.pressed != "" {
			item := m.pressed
			m.pressed = ""
			m.classifier.PointerUp(item, p)
		}
	}
}

// --- keyboard ---

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.detail = ""
		m.status = ""
	case key.Matches(msg, m.keys.Up):
		m.moveFocusVertical(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocusVertical(1)
	case key.Matches(msg, m.keys.Left):
		m.moveFocusColumn(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveFocusColumn(1)
	case key.Matches(msg, m.keys.Select):
		if m.focus != "" {
			m.coord.Selection().Toggle(m.focus)
		}
	case key.Matches(msg, m.keys.Open):
		if m.focus != "" {
			m.detail = m.focus
		}
	case key.Matches(msg, m.keys.Grab):
		m.startGrab()
	case key.Matches(msg, m.keys.ColumnLeft):
		m.shiftColumn(-1)
	case key.Matches(msg, m.keys.ColumnRight):
		m.shiftColumn(1)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) handleGrabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.coord.DragCancel()
		m.grab = nil
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.coord.DragCancel()
		m.grab = nil
	case key.Matches(msg, m.keys.Drop):
		target := *m.grab
		m.grab = nil
		res, err := m.coord.DragEnd(m.ctx, target.ID())
		m.applyDrop(res, err)
	case key.Matches(msg, m.keys.Left):
		m.cycleColumnTarget(-1)
	case key.Matches(msg, m.keys.Right):
		m.cycleColumnTarget(1)
	case key.Matches(msg, m.keys.Up):
		m.cycleContainerTarget(-1)
	case key.Matches(msg, m.keys.Down):
		m.cycleContainerTarget(1)
	}
	return m, nil
}

// startGrab begins a keyboard move of the focused issue, aimed at its own
// column.
func (m *Model) startGrab() {
	is, ok := m.board.Issue(m.focus)
	if !ok {
		return
	}
	m.coord.DragStart(is.ID, false)
	m.setGrab(board.Column(is.Status))
}

func (m *Model) setGrab(t board.Target) {
	m.grab = &t
	m.coord.DragOver(t.ID())
}

func (m *Model) cycleColumnTarget(d int) {
	cols := m.board.Columns()
	if len(cols) == 0 {
		return
	}
	i := 0
	if m.grab.Kind == board.TargetColumn {
		i = wrap(model.ColumnIndex(cols, m.grab.ColumnID)+d, len(cols))
	}
	m.setGrab(board.Column(cols[i].ID))
}

func (m *Model) cycleContainerTarget(d int) {
	keys := m.containerOrder(m.board.Containers())
	current := m.grab.Container
	if m.grab.Kind != board.TargetContainer {
		if is, ok := m.board.Issue(m.focus); ok {
			current = is.Container()
		}
	}
	i := 0
	for j, k := range keys {
		if k == current {
			i = wrap(j+d, len(keys))
			break
		}
	}
	m.setGrab(board.SprintContainer(keys[i]))
}

// shiftColumn swaps the focused issue's column with its neighbour.
func (m *Model) shiftColumn(d int) {
	is, ok := m.board.Issue(m.focus)
	if !ok {
		return
	}
	cols := m.board.Columns()
	i := model.ColumnIndex(cols, is.Status)
	j := i + d
	if i < 0 || j < 0 || j >= len(cols) {
		return
	}
	if _, _, err := m.board.ReorderColumn(m.ctx, cols[i].ID, cols[j].ID); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) moveFocusVertical(d int) {
	cards := m.screen.cards()
	if len(cards) == 0 {
		return
	}
	cur, ok := m.screen.card(m.focus)
	if !ok {
		m.focus = cards[0].id
		return
	}
	var (
		best  region
		found bool
	)
	for _, r := range cards {
		if r.column != cur.column || r.id == cur.id {
			continue
		}
		if d < 0 && r.y0 < cur.y0 && (!found || r.y0 > best.y0) {
			best, found = r, true
		}
		if d > 0 && r.y0 > cur.y0 && (!found || r.y0 < best.y0) {
			best, found = r, true
		}
	}
	if found {
		m.focus = best.id
	}
}

func (m *Model) moveFocusColumn(d int) {
	cards := m.screen.cards()
	if len(cards) == 0 {
		return
	}
	cur, ok := m.screen.card(m.focus)
	if !ok {
		m.focus = cards[0].id
		return
	}
	cols := m.board.Columns()
	for i := model.ColumnIndex(cols, cur.column) + d; i >= 0 && i < len(cols); i += d {
		if r, ok := nearestInColumn(cards, cols[i].ID, cur.y0); ok {
			m.focus = r.id
			return
		}
	}
}

// containerOrder lists the containers to draw: sprints as the backend
// ordered them, then any other container holding issues, then the backlog.
func (m Model) containerOrder(c model.Containers) []string {
	seen := map[string]bool{model.BacklogID: true}
	var keys []string
	for _, s := range m.board.Sprints() {
		if !seen[s.ID] {
			seen[s.ID] = true
			keys = append(keys, s.ID)
		}
	}
	for _, k := range c.Keys() {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return append(keys, model.BacklogID)
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
