// Package notify surfaces the outcome of board mutations to the user:
// success, no-op, transient (retryable) and failure notices.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/events"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess   Level = "success"
	LevelNoOp      Level = "noop"
	LevelTransient Level = "transient"
	LevelFailure   Level = "failure"
)

// Notice is one user-visible notification.
type Notice struct {
	Level     Level
	Message   string
	ProjectID string
	IssueIDs  []string
	Err       error
	At        time.Time
}

// Notifier delivers notices. Implementations must not block for long; the
// board calls Notify from timer and write goroutines.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notice)

func (f Func) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notice) {
	attrs := []any{"level", string(n.Level), "project_id", n.ProjectID}
	if len(n.IssueIDs) > 0 {
		attrs = append(attrs, "issue_ids", n.IssueIDs)
	}
	switch n.Level {
	case LevelFailure:
		l.logger.ErrorContext(ctx, n.Message, append(attrs, "err", n.Err)...)
	case LevelTransient:
		l.logger.WarnContext(ctx, n.Message, append(attrs, "err", n.Err)...)
	default:
		l.logger.InfoContext(ctx, n.Message, attrs...)
	}
}

// EventNotifier publishes notices on the event bus under
// events.NoticeTopic(level).
type EventNotifier struct {
	pub       events.Publisher
	sessionID string
	logger    *slog.Logger
}

func NewEventNotifier(pub events.Publisher, sessionID string, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{pub: pub, sessionID: sessionID, logger: logger}
}

func (e *EventNotifier) Notify(ctx context.Context, n Notice) {
	ev := events.NoticeEvent{
		Level:     string(n.Level),
		Message:   n.Message,
		ProjectID: n.ProjectID,
		IssueIDs:  n.IssueIDs,
		SessionID: e.sessionID,
	}
	if err := e.pub.Publish(ctx, events.NoticeTopic(string(n.Level)), ev); err != nil {
		e.logger.Warn("publish notice failed", "level", string(n.Level), "err", err)
	}
}

// Recorder keeps every notice it receives. The TUI reads the latest one for
// its status line.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of all recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Reset discards recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.notices = nil
	r.mu.Unlock()
}
