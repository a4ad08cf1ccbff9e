package glyphscape

import "math"

// dataBounds returns the bounding box of the glyphs' base positions for a
// layout. ok is false when no glyph has a position for it.
func dataBounds(glyphs []*Glyph, timestamp, algorithm string) (Rect, bool) {
	var b boundsBuilder
	for _, g := range glyphs {
		if p, ok := g.Position(timestamp, algorithm); ok {
			b.addPoint(p.X, p.Y)
		}
	}
	return b.rect()
}

// layoutScale is the uniform scale that fits data into a w×h canvas.
func layoutScale(data Rect, w, h float64) float64 {
	switch {
	case data.Width > 0 && data.Height > 0:
		return min(w/data.Width, h/data.Height)
	case data.Width > 0:
		return w / data.Width
	case data.Height > 0:
		return h / data.Height
	}
	return 1
}

// scalePosition maps a data position into world space for a w×h canvas.
// The data box is centered on the origin and scaled by the same factor on
// both axes. Data y grows upward, world y grows downward.
func scalePosition(p Vec2, data Rect, w, h float64) Vec2 {
	s := layoutScale(data, w, h)
	c := data.Center()
	return Vec2{X: (p.X - c.X) * s, Y: -(p.Y - c.Y) * s}
}

// jitterFromVector hashes a point to a stable pseudo-random value in
// [-1, 1).
func jitterFromVector(x, y, z float64) float64 {
	seed := toInt32(x*73856093) ^ toInt32(y*19349663) ^ toInt32(z*83492791)
	r := math.Sin(float64(seed)) * 10000
	return (r-math.Floor(r))*2 - 1
}

// toInt32 truncates f and wraps it into the int32 range.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return int32(uint32(m))
}

// nearlyEqual reports whether a and b differ by at most eps.
func nearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
