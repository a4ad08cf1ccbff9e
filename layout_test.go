package glyphscape

import (
	"math"
	"testing"
)

func glyphAt(id string, x, y float64) *Glyph {
	g := NewGlyph(id)
	g.SetPosition("t0", "umap", Vec2{x, y})
	return g
}

func TestDataBounds(t *testing.T) {
	glyphs := []*Glyph{glyphAt("a", -1, 2), glyphAt("b", 3, -4), NewGlyph("none")}
	r, ok := dataBounds(glyphs, "t0", "umap")
	if !ok {
		t.Fatal("no bounds")
	}
	want := Rect{X: -1, Y: -4, Width: 4, Height: 6}
	if r != want {
		t.Errorf("dataBounds = %v, want %v", r, want)
	}
	if _, ok := dataBounds(glyphs, "t0", "tsne"); ok {
		t.Error("unknown layout should have no bounds")
	}
}

func TestLayoutScale(t *testing.T) {
	tests := []struct {
		name string
		data Rect
		want float64
	}{
		{"wide", Rect{Width: 10, Height: 2}, 80},
		{"tall", Rect{Width: 2, Height: 100}, 6},
		{"flat", Rect{Width: 4}, 200},
		{"point", Rect{}, 1},
	}
	for _, tt := range tests {
		if got := layoutScale(tt.data, 800, 600); got != tt.want {
			t.Errorf("%s: layoutScale = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScalePosition(t *testing.T) {
	data := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		p    Vec2
		want Vec2
	}{
		{Vec2{5, 5}, Vec2{0, 0}},
		{Vec2{0, 0}, Vec2{-300, 300}},
		{Vec2{10, 10}, Vec2{300, -300}},
	}
	for _, tt := range tests {
		got := scalePosition(tt.p, data, 800, 600)
		if !approxEqual(got.X, tt.want.X, epsilon) || !approxEqual(got.Y, tt.want.Y, epsilon) {
			t.Errorf("scalePosition(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestJitterFromVector(t *testing.T) {
	a := jitterFromVector(12.5, -3, 0)
	if a != jitterFromVector(12.5, -3, 0) {
		t.Error("jitter is not deterministic")
	}
	for i := 0; i < 200; i++ {
		j := jitterFromVector(float64(i)*7.3, float64(i)*-1.9, float64(i%2))
		if j < -1 || j >= 1 {
			t.Fatalf("jitter %v outside [-1,1)", j)
		}
	}
}

func TestToInt32(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{42.9, 42},
		{-42.9, -42},
		{math.MaxInt32 + 1, math.MinInt32},
		{1 << 32, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := toInt32(tt.in); got != tt.want {
			t.Errorf("toInt32(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestZoomLevelAndClamp(t *testing.T) {
	if ZoomLevelFor(1) != ZoomLow || ZoomLevelFor(5) != ZoomMedium || ZoomLevelFor(20) != ZoomHigh {
		t.Error("ZoomLevelFor thresholds")
	}
	if ClampZoom(math.NaN()) != MinZoom {
		t.Error("ClampZoom(NaN) should be MinZoom")
	}
	if ZoomLevel(7).String() != "ZoomLevel(7)" {
		t.Errorf("String = %q", ZoomLevel(7).String())
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !r.Contains(10, 10) || r.Contains(10.1, 5) {
		t.Error("Contains edge handling")
	}
	if !r.Intersects(Rect{X: 10, Y: 10, Width: 5, Height: 5}) {
		t.Error("adjacent rects should intersect")
	}
	if r.Intersects(Rect{X: 11, Y: 0, Width: 1, Height: 1}) {
		t.Error("disjoint rects intersect")
	}
	u := r.Union(Rect{X: -5, Y: 2, Width: 1, Height: 20})
	if u != (Rect{X: -5, Y: 0, Width: 15, Height: 22}) {
		t.Errorf("Union = %v", u)
	}
	if e := r.Expand(1); e != (Rect{X: -1, Y: -1, Width: 12, Height: 12}) {
		t.Errorf("Expand = %v", e)
	}
	if c := r.Center(); c != (Vec2{5, 5}) {
		t.Errorf("Center = %v", c)
	}
}

func TestColorHex(t *testing.T) {
	c := RGB(0x198fbd)
	if c.Hex() != 0x198fbd {
		t.Errorf("Hex = %06x, want 198fbd", c.Hex())
	}
	if c.A != 1 {
		t.Errorf("RGB alpha = %v, want 1", c.A)
	}
	if w := c.WithAlpha(0.5); w.A != 0.5 || c.A != 1 {
		t.Error("WithAlpha should return a copy")
	}
}

func TestNearlyEqual(t *testing.T) {
	if !nearlyEqual(1, 1.005, 0.01) || nearlyEqual(1, 1.02, 0.01) {
		t.Error("nearlyEqual")
	}
}
