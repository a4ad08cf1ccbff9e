package glyphscape

import (
	"testing"
	"time"
)

func hitNodes() []*Node {
	a := NewContainer("a")
	a.X = 10
	b := NewContainer("b")
	b.X = 14
	c := NewContainer("c")
	c.X = -40
	c.Y = 20
	return []*Node{a, b, c}
}

func TestHitTest(t *testing.T) {
	cam := NewCamera(Rect{Width: 200, Height: 100})
	nodes := hitNodes()

	tests := []struct {
		name   string
		px, py float64
		tol    float64
		want   string
	}{
		{"nearest of two", 111, 50, 5, "a"},
		{"second", 113.5, 50, 5, "b"},
		{"other corner", 60, 70, 5, "c"},
		{"outside tolerance", 130, 50, 5, ""},
		{"wide tolerance", 130, 50, 20, "b"},
	}
	for _, tt := range tests {
		hit := HitTest(nodes, cam, tt.px, tt.py, tt.tol)
		got := ""
		if hit != nil {
			got = hit.Name
		}
		if got != tt.want {
			t.Errorf("%s: hit = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestHitTestViewportOffset(t *testing.T) {
	cam := NewCamera(Rect{X: 300, Y: 40, Width: 200, Height: 100})
	hit := HitTest(hitNodes(), cam, 411, 90, 5)
	if hit == nil || hit.Name != "a" {
		t.Errorf("hit = %v, want a", hit)
	}
}

func TestHitTestZoomed(t *testing.T) {
	cam := NewCamera(Rect{Width: 200, Height: 100})
	cam.SetZoom(4)
	// a projects to 100+40 = 140, b to 156.
	hit := HitTest(hitNodes(), cam, 150, 50, 5)
	if hit != nil {
		t.Errorf("hit = %s, want none between spread nodes", hit.Name)
	}
	hit = HitTest(hitNodes(), cam, 155, 50, 5)
	if hit == nil || hit.Name != "b" {
		t.Errorf("hit = %v, want b", hit)
	}
}

func TestHitTestSkipsHiddenAndDisposed(t *testing.T) {
	cam := NewCamera(Rect{Width: 200, Height: 100})
	nodes := hitNodes()
	nodes[0].Visible = false
	nodes[1].Dispose()
	nodes = append(nodes, nil)
	if hit := HitTest(nodes, cam, 110, 50, 10); hit != nil {
		t.Errorf("hit = %s, want none", hit.Name)
	}
}

func TestHitTestEmptyViewport(t *testing.T) {
	cam := NewCamera(Rect{})
	if HitTest(hitNodes(), cam, 0, 0, 100) != nil {
		t.Error("zero viewport should never hit")
	}
}

func TestHitTesterThrottles(t *testing.T) {
	now := t0
	h := NewHitTester(func() time.Time { return now })
	cam := NewCamera(Rect{Width: 200, Height: 100})
	nodes := hitNodes()

	if hit, ok := h.Test(nodes, cam, 110, 50, 5); !ok || hit == nil {
		t.Fatalf("first Test = %v %v", hit, ok)
	}
	now = now.Add(20 * time.Millisecond)
	if _, ok := h.Test(nodes, cam, 110, 50, 5); ok {
		t.Error("Test within the interval was not throttled")
	}
	now = now.Add(30 * time.Millisecond)
	if _, ok := h.Test(nodes, cam, 110, 50, 5); !ok {
		t.Error("Test after the interval was throttled")
	}
	h.Reset()
	if _, ok := h.Test(nodes, cam, 110, 50, 5); !ok {
		t.Error("Test after Reset was throttled")
	}
}

func TestHitTesterToleranceFollowsLevel(t *testing.T) {
	now := t0
	h := NewHitTester(func() time.Time { return now })
	cam := NewCamera(Rect{Width: 200, Height: 100})
	nodes := hitNodes()[:1] // a projects to (110, 50)
	size := NewSizeInfo()
	size.Update(800, 600)

	tests := []struct {
		level ZoomLevel
		hit   bool
	}{
		{ZoomLow, false},
		{ZoomMedium, true},
		{ZoomHigh, true},
	}
	for _, tt := range tests {
		size.SetLevel(tt.level)
		now = now.Add(hitThrottle)
		hit, ok := h.Test(nodes, cam, 130, 50, size.HitTolerance())
		if !ok {
			t.Fatalf("%v: Test throttled", tt.level)
		}
		if (hit != nil) != tt.hit {
			t.Errorf("%v: hit = %v at 20 px with tolerance %v, want hit %v", tt.level, hit, size.HitTolerance(), tt.hit)
		}
	}
}
