package glyphscape

import (
	"math"
	"time"
)

// hitThrottle is the minimum interval between throttled hit tests.
const hitThrottle = 50 * time.Millisecond

// HitTest returns the node among nodes whose world position projects
// nearest to the screen point (px, py), provided its pixel distance is
// below tolerance. Distance is measured in normalized device space scaled
// to the viewport, so it is independent of the viewport origin.
func HitTest(nodes []*Node, cam *Camera, px, py, tolerance float64) *Node {
	if len(nodes) == 0 || cam.Viewport.Width <= 0 || cam.Viewport.Height <= 0 {
		return nil
	}
	hw := cam.Viewport.Width / 2
	hh := cam.Viewport.Height / 2
	mx := (px-cam.Viewport.X)/hw - 1
	my := 1 - (py-cam.Viewport.Y)/hh

	var hit *Node
	closest := math.Inf(1)
	for _, n := range nodes {
		if n == nil || n.disposed || !n.Visible {
			continue
		}
		p := n.WorldPosition()
		nx, ny := cam.ProjectNDC(p.X, p.Y)
		dx := (nx - mx) * hw
		dy := (ny - my) * hh
		d := math.Sqrt(dx*dx + dy*dy)
		if d < tolerance && d < closest {
			closest = d
			hit = n
		}
	}
	return hit
}

// HitTester throttles HitTest to one call per interval.
type HitTester struct {
	Interval time.Duration
	// Now returns the current time. Tests replace it.
	Now func() time.Time

	last time.Time
}

// NewHitTester returns a tester with the default 50ms interval.
func NewHitTester(now func() time.Time) *HitTester {
	if now == nil {
		now = time.Now
	}
	return &HitTester{Interval: hitThrottle, Now: now}
}

// Test runs HitTest unless the previous test was less than Interval ago.
// ok is false for a throttled call.
func (h *HitTester) Test(nodes []*Node, cam *Camera, px, py, tolerance float64) (hit *Node, ok bool) {
	now := h.Now()
	if !h.last.IsZero() && now.Sub(h.last) < h.Interval {
		return nil, false
	}
	h.last = now
	return HitTest(nodes, cam, px, py, tolerance), true
}

// Reset lets the next Test run immediately.
func (h *HitTester) Reset() {
	h.last = time.Time{}
}
