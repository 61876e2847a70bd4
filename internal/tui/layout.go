package tui

import (
	"math"
	"sync"
)

type regionKind int

const (
	regionColumn    regionKind = iota // column header, the drag handle of a column
	regionLane                        // empty cell under a column inside a container
	regionContainer                   // container header line
	regionCard                        // one issue
)

// region is a rectangle of the rendered board in screen cells, half-open on
// both axes.
type region struct {
	x0, y0, x1, y1 int
	kind           regionKind
	id             string // drag or drop id
	column         int    // column id for column, lane and card regions
	container      string // container key for lane, container and card regions
}

func (r region) contains(x, y int) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

// draggable reports whether a press on r starts a gesture.
func (r region) draggable() bool {
	return r.kind == regionCard || r.kind == regionColumn
}

// screen is the geometry of the last rendered frame. View writes it; mouse
// handling and the drag engine's hit test read it.
type screen struct {
	mu      sync.Mutex
	regions []region
}

func (s *screen) set(regions []region) {
	s.mu.Lock()
	s.regions = regions
	s.mu.Unlock()
}

func (s *screen) all() []region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]region(nil), s.regions...)
}

func (s *screen) at(x, y int) (region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regions {
		if r.contains(x, y) {
			return r, true
		}
	}
	return region{}, false
}

// hit is the drag engine's hit test.
func (s *screen) hit(x, y float64) string {
	r, ok := s.at(int(math.Floor(x)), int(math.Floor(y)))
	if !ok {
		return ""
	}
	return r.id
}

// card returns the region of the card with the given issue id.
func (s *screen) card(id string) (region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regions {
		if r.kind == regionCard && r.id == id {
			return r, true
		}
	}
	return region{}, false
}

// cards returns the card regions in reading order.
func (s *screen) cards() []region {
	var out []region
	for _, r := range s.all() {
		if r.kind == regionCard {
			out = append(out, r)
		}
	}
	return out
}

// nearestInColumn picks the card among cards whose column is wanted and whose
// row is closest to y.
func nearestInColumn(cards []region, column int, y int) (region, bool) {
	var (
		best  region
		found bool
		dist  int
	)
	for _, r := range cards {
		if r.column != column {
			continue
		}
		d := r.y0 - y
		if d < 0 {
			d = -d
		}
		if !found || d < dist {
			best, dist, found = r, d, true
		}
	}
	return best, found
}
