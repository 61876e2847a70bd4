package gesture

import "sync"

// Engine is a minimal drag primitive. A press becomes a drag once the
// pointer travels Activation units on either axis; from then on every move
// is hit-tested and hover changes are reported, and the release reports the
// drop target.
type Engine struct {
	activation float64
	hit        HitTest
	handler    DragHandler

	mu       sync.Mutex
	pressed  bool
	item     string
	startX   float64
	startY   float64
	modifier bool
	active   bool
	over     string
}

var _ Listeners = (*Engine)(nil)

// NewEngine returns an Engine reporting to handler. activation <= 0 uses the
// default move threshold.
func NewEngine(activation float64, hit HitTest, handler DragHandler) *Engine {
	if activation <= 0 {
		activation = DefaultConfig().MoveThreshold
	}
	return &Engine{activation: activation, hit: hit, handler: handler}
}

func (e *Engine) PointerDown(item string, p Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pressed = true
	e.active = false
	e.item = item
	e.startX, e.startY = p.X, p.Y
	e.modifier = p.Modifier
	e.over = ""
}

func (e *Engine) PointerMove(item string, p Pointer) {
	e.mu.Lock()
	if !e.pressed || item != e.item {
		e.mu.Unlock()
		return
	}
	start := false
	if !e.active && moved(e.startX, e.startY, p.X, p.Y, e.activation) {
		e.active = true
		start = true
	}
	if !e.active {
		e.mu.Unlock()
		return
	}
	over := e.hitTest(p)
	changed := over != e.over
	e.over = over
	active, modifier := e.item, e.modifier
	e.mu.Unlock()

	if start {
		e.handler.DragStart(active, modifier)
	}
	if changed {
		e.handler.DragOver(over)
	}
}

func (e *Engine) PointerUp(item string, p Pointer) {
	e.mu.Lock()
	if !e.pressed || item != e.item {
		e.mu.Unlock()
		return
	}
	wasActive := e.active
	over := ""
	if wasActive {
		over = e.hitTest(p)
	}
	e.resetLocked()
	e.mu.Unlock()

	if wasActive {
		e.handler.DragEnd(over)
	}
}

// Cancel aborts an active drag as a drop onto nothing.
func (e *Engine) Cancel() {
	e.mu.Lock()
	wasActive := e.active
	e.resetLocked()
	e.mu.Unlock()

	if wasActive {
		e.handler.DragEnd("")
	}
}

// Dragging reports whether a drag is in progress.
func (e *Engine) Dragging() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) hitTest(p Pointer) string {
	if e.hit == nil {
		return ""
	}
	return e.hit(p.X, p.Y)
}

func (e *Engine) resetLocked() {
	e.pressed = false
	e.active = false
	e.item = ""
	e.over = ""
	e.modifier = false
}
