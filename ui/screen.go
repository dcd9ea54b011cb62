package ui

import (
	"sync"

	"golang.org/x/net/html"
)

// screen is what the page sees of the reader. The narration core calls it
// from its own goroutine while holding the page lock, so it only records the
// request; the reader applies scrolls on its next render.
type screen struct {
	mu      sync.Mutex
	layout  *layout
	yOffset int
	height  int

	target   *html.Node
	fraction float64
}

// Visible reports whether any line of n is on screen.
func (s *screen) Visible(n *html.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.layout.spanOf(n)
	if !ok {
		return false
	}
	return sp.start < s.yOffset+s.height && sp.end > s.yOffset
}

// ScrollTo asks for n to start at fraction of the screen height.
func (s *screen) ScrollTo(n *html.Node, fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target, s.fraction = n, fraction
}

// take returns and forgets the pending scroll request.
func (s *screen) take() (*html.Node, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, f := s.target, s.fraction
	s.target = nil
	return n, f, n != nil
}

func (s *screen) update(l *layout, yOffset, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout, s.yOffset, s.height = l, yOffset, height
}

// offsetFor returns the y offset that puts sp at fraction of height.
func offsetFor(sp span, fraction float64, height int) int {
	return max(0, sp.start-int(fraction*float64(height)))
}
