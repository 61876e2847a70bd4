package gesture

import (
	"sync"
	"time"

	"github.com/alfredjeanlab/sprintboard/internal/clock"
)

// Classifier disambiguates click, double click and drag per item. It is safe
// for concurrent use; callbacks run without its lock held.
type Classifier struct {
	cfg    Config
	clock  clock.Clock
	engine Listeners
	view   func(item string)

	mu    sync.Mutex
	items map[string]*tracker
}

type tracker struct {
	downX, downY float64
	lastClick    time.Time
	pressed      bool
	hasMoved     bool
	swallowUp    bool // the press was the second half of a double click

	// pending single-click actions by generation; lastGen is the most
	// recent release, the only one a double click can supersede.
	pending map[uint64]*clock.Timer
	gen     uint64
	lastGen uint64
}

// NewClassifier wraps engine. view is invoked once per logical click or
// double click. engine may be nil when only click detection is wanted.
func NewClassifier(cfg Config, clk clock.Clock, engine Listeners, view func(item string)) *Classifier {
	return &Classifier{
		cfg:    cfg.withDefaults(),
		clock:  clk,
		engine: engine,
		view:   view,
		items:  make(map[string]*tracker),
	}
}

func (c *Classifier) trackerLocked(item string) *tracker {
	tr, ok := c.items[item]
	if !ok {
		tr = &tracker{pending: make(map[uint64]*clock.Timer)}
		c.items[item] = tr
	}
	return tr
}

// pruneLocked drops trackers of items other than keep that hold no gesture:
// not pressed, no pending click and outside the double-click window.
func (c *Classifier) pruneLocked(keep string, now time.Time) {
	for item, tr := range c.items {
		if item == keep || tr.pressed || tr.swallowUp || len(tr.pending) > 0 {
			continue
		}
		if !tr.lastClick.IsZero() && now.Sub(tr.lastClick) < c.cfg.DoubleClickWindow {
			continue
		}
		delete(c.items, item)
	}
}

func (c *Classifier) at(p Pointer) time.Time {
	if p.At.IsZero() {
		return c.clock.Now()
	}
	return p.At
}

// PointerDown starts a gesture. A press inside the double-click window of the
// previous one fires view-details immediately, cancels the pending
// single-click action and is not forwarded to the engine.
func (c *Classifier) PointerDown(item string, p Pointer) {
	now := c.at(p)

	c.mu.Lock()
	c.pruneLocked(item, now)
	tr := c.trackerLocked(item)
	if !tr.lastClick.IsZero() && now.Sub(tr.lastClick) < c.cfg.DoubleClickWindow {
		if t, ok := tr.pending[tr.lastGen]; ok {
			t.Stop()
			delete(tr.pending, tr.lastGen)
		}
		tr.lastClick = time.Time{}
		tr.pressed = false
		tr.swallowUp = true
		c.mu.Unlock()

		if c.view != nil {
			c.view(item)
		}
		return
	}
	tr.lastClick = now
	tr.downX, tr.downY = p.X, p.Y
	tr.pressed = true
	tr.hasMoved = false
	tr.swallowUp = false
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.PointerDown(item, p)
	}
}

// PointerMove forwards the move and marks the gesture as moved once it
// crosses the threshold on either axis.
func (c *Classifier) PointerMove(item string, p Pointer) {
	c.mu.Lock()
	tr, ok := c.items[item]
	if !ok || !tr.pressed {
		c.mu.Unlock()
		return
	}
	if !tr.hasMoved && moved(tr.downX, tr.downY, p.X, p.Y, c.cfg.MoveThreshold) {
		tr.hasMoved = true
	}
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.PointerMove(item, p)
	}
}

// PointerUp ends a gesture. A gesture that never moved schedules a
// single-click view-details after ClickDelay.
func (c *Classifier) PointerUp(item string, p Pointer) {
	c.mu.Lock()
	tr, ok := c.items[item]
	if !ok {
		c.mu.Unlock()
		return
	}
	if tr.swallowUp {
		tr.swallowUp = false
		c.mu.Unlock()
		return
	}
	if !tr.pressed {
		c.mu.Unlock()
		return
	}
	tr.pressed = false
	if !tr.hasMoved {
		tr.gen++
		gen := tr.gen
		tr.lastGen = gen
		tr.pending[gen] = c.clock.AfterFunc(c.cfg.ClickDelay, func() { c.fireClick(item, gen) })
	}
	c.mu.Unlock()

	if c.engine != nil {
		c.engine.PointerUp(item, p)
	}
}

// Moved reports whether the current or last gesture on item crossed the
// movement threshold.
func (c *Classifier) Moved(item string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	tr, ok := c.items[item]
	return ok && tr.hasMoved
}

// Forget drops all state for item, cancelling any pending click.
func (c *Classifier) Forget(item string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tr, ok := c.items[item]; ok {
		for _, t := range tr.pending {
			t.Stop()
		}
		delete(c.items, item)
	}
}

func (c *Classifier) fireClick(item string, gen uint64) {
	c.mu.Lock()
	tr, ok := c.items[item]
	if !ok {
		c.mu.Unlock()
		return
	}
	if _, live := tr.pending[gen]; !live {
		c.mu.Unlock()
		return
	}
	delete(tr.pending, gen)
	c.mu.Unlock()

	if c.view != nil {
		c.view(item)
	}
}
