// Package gesture turns raw pointer events on draggable items into either
// "view details" actions (single or double click) or drags.
//
// The Classifier sits in front of a drag engine: it forwards pointer events
// to the engine unless they are the second half of a double click, and it
// fires the view-details callback for pointer sequences that never moved.
// Engine is a minimal drag engine that reports drag start, hover and drop to
// a DragHandler.
package gesture

import "time"

// Pointer is one raw pointer sample in client coordinates.
type Pointer struct {
	X, Y float64
	// At is the event timestamp. A zero value means "now" on the
	// classifier's clock.
	At time.Time
	// Modifier is true when shift or meta was held.
	Modifier bool
}

// Listeners is the set of pointer callbacks a drag primitive attaches to a
// draggable item.
type Listeners interface {
	PointerDown(item string, p Pointer)
	PointerMove(item string, p Pointer)
	PointerUp(item string, p Pointer)
}

// DragHandler receives the lifecycle of a drag. An empty overID means the
// pointer is not over any drop target.
type DragHandler interface {
	DragStart(activeID string, modifier bool)
	DragOver(overID string)
	DragEnd(overID string)
}

// HitTest maps a pointer position to the id of the drop target under it, or
// "" when there is none.
type HitTest func(x, y float64) string

// Config holds the gesture thresholds.
type Config struct {
	// MoveThreshold is the per-axis distance that turns a press into a drag.
	MoveThreshold float64
	// DoubleClickWindow is the maximum gap between two presses of a double
	// click.
	DoubleClickWindow time.Duration
	// ClickDelay is how long a single click waits before firing, leaving
	// room for a second click.
	ClickDelay time.Duration
}

// DefaultConfig returns the thresholds used by the web board.
func DefaultConfig() Config {
	return Config{
		MoveThreshold:     3,
		DoubleClickWindow: 300 * time.Millisecond,
		ClickDelay:        350 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MoveThreshold <= 0 {
		c.MoveThreshold = d.MoveThreshold
	}
	if c.DoubleClickWindow <= 0 {
		c.DoubleClickWindow = d.DoubleClickWindow
	}
	if c.ClickDelay <= 0 {
		c.ClickDelay = d.ClickDelay
	}
	return c
}

func moved(x0, y0, x1, y1, threshold float64) bool {
	return abs(x1-x0) >= threshold || abs(y1-y0) >= threshold
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
