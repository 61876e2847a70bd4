// Package board is the client side of a Kanban board: an explicit per-board
// store holding optimistic copies of the project's status columns and its
// issues grouped by sprint, and a Coordinator that turns drags into
// mutations of that store.
//
// Every mutation follows the same path. The change is applied to a shadow
// immediately so the user sees it, a write is scheduled (debounced for column
// reorders, immediate for issue moves), and its outcome either commits the
// shadow, after which a refetch replaces it with server data, or rolls it back
// to the exact snapshot taken before the change.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/auth"
	"github.com/alfredjeanlab/sprintboard/internal/client"
	"github.com/alfredjeanlab/sprintboard/internal/clock"
	"github.com/alfredjeanlab/sprintboard/internal/events"
	"github.com/alfredjeanlab/sprintboard/internal/idgen"
	"github.com/alfredjeanlab/sprintboard/internal/model"
	"github.com/alfredjeanlab/sprintboard/internal/notify"
	"github.com/alfredjeanlab/sprintboard/internal/optimistic"
	"github.com/alfredjeanlab/sprintboard/internal/reconcile"
	"github.com/alfredjeanlab/sprintboard/internal/store"
)

// Reconciler keys.
const (
	keyStatuses = "statuses"
	keyIssues   = "issues"
)

// DefaultColumnDebounce is the quiet period before a column reorder is
// written.
const DefaultColumnDebounce = 800 * time.Millisecond

// Options configures a Board. Backend, Tokens and ProjectID are required.
type Options struct {
	ProjectID string
	Backend   client.Backend
	Tokens    auth.TokenSource

	Notifier  notify.Notifier  // default: discard
	Journal   store.Store      // default: in-memory
	Publisher events.Publisher // default: no-op
	Clock     clock.Clock      // default: real time
	Logger    *slog.Logger     // default: slog.Default()

	ColumnDebounce time.Duration // default: DefaultColumnDebounce
	SessionID      string        // default: generated
}

// Board is the store of one open project board. It is safe for concurrent
// use. Create it with New, load it with Init and release it with Dispose.
type Board struct {
	projectID string
	sessionID string
	backend   client.Backend
	tokens    auth.TokenSource
	notifier  notify.Notifier
	journal   store.Store
	publisher events.Publisher
	clock     clock.Clock
	logger    *slog.Logger
	debounce  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	statuses *optimistic.Shadow[[]model.StatusColumn]
	issues   *optimistic.Shadow[model.Containers]

	columnWrites *reconcile.Reconciler[columnWrite]
	issueWrites  *reconcile.Reconciler[issueWrite]

	mu            sync.Mutex
	sprints       []model.Sprint
	statusFetches uint64
	issueFetches  uint64
	stale         map[string]bool // collections with a persisted write not yet refetched
	watchCancel   func()
	disposed      bool

	watchWG sync.WaitGroup
}

// New builds a Board without contacting the backend.
func New(opts Options) (*Board, error) {
	if opts.Backend == nil {
		return nil, errors.New("board: backend is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("board: token source is required")
	}
	if opts.ProjectID == "" {
		return nil, errors.New("board: project id is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Multi(nil)
	}
	if opts.Journal == nil {
		opts.Journal = store.NewMemory()
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ColumnDebounce <= 0 {
		opts.ColumnDebounce = DefaultColumnDebounce
	}
	if opts.SessionID == "" {
		id, err := idgen.Session()
		if err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
		opts.SessionID = id
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := opts.Logger.With("project_id", opts.ProjectID, "session_id", opts.SessionID)
	b := &Board{
		projectID: opts.ProjectID,
		sessionID: opts.SessionID,
		backend:   opts.Backend,
		tokens:    opts.Tokens,
		notifier:  opts.Notifier,
		journal:   opts.Journal,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		logger:    logger,
		debounce:  opts.ColumnDebounce,
		ctx:       ctx,
		cancel:    cancel,
		statuses:  optimistic.New[[]model.StatusColumn](nil, model.CloneColumns),
		issues:    optimistic.New[model.Containers](model.Containers{}, model.Containers.Clone),
		stale:     make(map[string]bool),
	}
	b.columnWrites = reconcile.New[columnWrite](ctx, opts.Clock, logger)
	b.issueWrites = reconcile.New[issueWrite](ctx, opts.Clock, logger)
	return b, nil
}

// Init loads the project's columns, sprints and issues.
func (b *Board) Init(ctx context.Context) error {
	if err := b.Refresh(ctx); err != nil {
		return fmt.Errorf("init board %s: %w", b.projectID, err)
	}
	b.logger.Debug("board initialized", "columns", len(b.statuses.Source()))
	return nil
}

// Dispose stops pending timers, the watcher and in-flight refetches. Writes
// still waiting for their debounce window are dropped, and writes in flight
// are cancelled; both resolve with ErrDisposed. Dispose is idempotent.
func (b *Board) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	stopWatch := b.watchCancel
	b.watchCancel = nil
	b.mu.Unlock()

	// Cancel before stopping so in-flight backend calls return at once.
	b.cancel()
	for _, w := range b.columnWrites.Stop() {
		b.statuses.Rollback(w.seq)
		resolveAll(w.waiters, ErrDisposed)
	}
	for _, w := range b.issueWrites.Stop() {
		b.issues.Rollback(w.seq)
		w.waiter.resolve(ErrDisposed)
	}
	if stopWatch != nil {
		stopWatch()
	}
	b.watchWG.Wait()
}

// Flush starts a column reorder that is still waiting for its debounce
// window. It reports whether one was pending.
func (b *Board) Flush() bool {
	return b.columnWrites.Flush(keyStatuses)
}

// Wait blocks until every write that has started has finished. Debounced
// writes whose timer has not fired are not waited for.
func (b *Board) Wait() {
	b.issueWrites.Wait()
	b.columnWrites.Wait()
}

// ProjectID returns the board's project.
func (b *Board) ProjectID() string { return b.projectID }

// SessionID identifies this board session on the event bus and in the journal.
func (b *Board) SessionID() string { return b.sessionID }

// Columns returns the visible status columns in display order.
func (b *Board) Columns() []model.StatusColumn {
	return b.statuses.View()
}

// Containers returns the visible issues grouped by container.
func (b *Board) Containers() model.Containers {
	return b.issues.View()
}

// Sprints returns the project's sprints as last fetched.
func (b *Board) Sprints() []model.Sprint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Sprint(nil), b.sprints...)
}

// Issue returns the visible copy of one issue.
func (b *Board) Issue(id string) (model.Issue, bool) {
	is, _, ok := b.issues.View().Find(id)
	return is, ok
}

// ColumnsShadowed reports whether the column order on screen is an
// unconfirmed local change.
func (b *Board) ColumnsShadowed() bool { return b.statuses.Active() }

// IssuesShadowed reports whether the issues on screen include an unconfirmed
// local change.
func (b *Board) IssuesShadowed() bool { return b.issues.Active() }

// ColumnWritePending reports whether a column reorder is waiting for its
// debounce window.
func (b *Board) ColumnWritePending() bool {
	_, ok := b.columnWrites.Pending(keyStatuses)
	return ok
}

// OnChange registers fn to run whenever the visible columns or issues change.
func (b *Board) OnChange(fn func()) {
	b.statuses.OnChange(fn)
	b.issues.OnChange(fn)
}

// ContainerName returns the display name of a container key.
func (b *Board) ContainerName(key string) string {
	if model.IsBacklog(key) {
		return "Backlog"
	}
	for _, s := range b.Sprints() {
		if s.ID == key {
			return s.Name
		}
	}
	return key
}

// knownContainer reports whether key is the backlog, a fetched sprint, or a
// container currently holding issues.
func (b *Board) knownContainer(key string) bool {
	if model.IsBacklog(key) {
		return true
	}
	for _, s := range b.Sprints() {
		if s.ID == key {
			return true
		}
	}
	_, ok := b.issues.View()[key]
	return ok
}

// --- fetching ---

// Refresh re-reads columns, sprints and issues. Fresh data replaces both
// shadows.
func (b *Board) Refresh(ctx context.Context) error {
	token, err := b.token(ctx)
	if err != nil {
		return err
	}
	if err := b.refreshStatuses(ctx, token); err != nil {
		return err
	}
	sprints, err := b.backend.ListSprints(ctx, token, b.projectID)
	if err != nil {
		return fmt.Errorf("list sprints: %w", err)
	}
	b.mu.Lock()
	b.sprints = sprints
	b.mu.Unlock()
	return b.refreshIssues(ctx, token)
}

// refreshStatuses refetches the project config. A response that arrives
// after a newer fetch was started is discarded.
func (b *Board) refreshStatuses(ctx context.Context, token string) error {
	b.mu.Lock()
	b.statusFetches++
	gen := b.statusFetches
	b.mu.Unlock()

	cfg, err := b.backend.GetProjectConfig(ctx, token, b.projectID)
	if err != nil {
		return fmt.Errorf("get project config: %w", err)
	}
	if err := model.ValidateProjectConfig(cfg); err != nil {
		return fmt.Errorf("project config: %w", err)
	}

	b.mu.Lock()
	stale := gen != b.statusFetches
	b.mu.Unlock()
	if stale {
		b.logger.Debug("discarding stale project config", "gen", gen)
		return nil
	}
	b.statuses.Replace(model.SortColumns(cfg.Statuses))
	return nil
}

func (b *Board) refreshIssues(ctx context.Context, token string) error {
	b.mu.Lock()
	b.issueFetches++
	gen := b.issueFetches
	b.mu.Unlock()

	grouped, err := b.backend.GetIssuesBySprint(ctx, token, b.projectID)
	if err != nil {
		return fmt.Errorf("get issues: %w", err)
	}
	if grouped == nil {
		grouped = model.Containers{}
	}

	b.mu.Lock()
	stale := gen != b.issueFetches
	b.mu.Unlock()
	if stale {
		b.logger.Debug("discarding stale issues", "gen", gen)
		return nil
	}
	b.issues.Replace(grouped)
	return nil
}

// refetch is the post-write refresh of one collection. Failures are logged;
// the committed shadow stays visible until the next successful fetch.
func (b *Board) refetch(ctx context.Context, kind string) {
	token, err := b.token(ctx)
	if err == nil {
		switch kind {
		case events.ChangeStatuses:
			err = b.refreshStatuses(ctx, token)
		default:
			err = b.refreshIssues(ctx, token)
		}
	}
	if err != nil && ctx.Err() == nil {
		b.logger.Warn("refetch after write failed", "kind", kind, "err", err)
	}
}

// --- collaborators ---

func (b *Board) token(ctx context.Context) (string, error) {
	tok, err := b.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			return "", fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
		}
		return "", err
	}
	return tok, nil
}

func (b *Board) notice(ctx context.Context, level notify.Level, msg string, issueIDs []string, err error) {
	b.notifier.Notify(ctx, notify.Notice{
		Level:     level,
		Message:   msg,
		ProjectID: b.projectID,
		IssueIDs:  issueIDs,
		Err:       err,
		At:        b.clock.Now(),
	})
}

func (b *Board) record(ctx context.Context, t store.Transition) {
	id, err := idgen.Transition()
	if err != nil {
		b.logger.Warn("journal id", "err", err)
		return
	}
	t.ID = id
	t.SessionID = b.sessionID
	t.ProjectID = b.projectID
	t.CreatedAt = b.clock.Now().UTC()
	if err := b.journal.RecordTransition(ctx, &t); err != nil {
		b.logger.Warn("journal write failed", "kind", string(t.Kind), "err", err)
	}
}

func (b *Board) publish(ctx context.Context, kind string, issueIDs []string, statusIDs []int) {
	ev := events.ProjectChanged{
		ProjectID: b.projectID,
		Kind:      kind,
		IssueIDs:  issueIDs,
		StatusIDs: statusIDs,
		SessionID: b.sessionID,
	}
	if err := b.publisher.Publish(ctx, events.ProjectTopic(b.projectID, kind), ev); err != nil {
		b.logger.Warn("publish change failed", "kind", kind, "err", err)
	}
}
