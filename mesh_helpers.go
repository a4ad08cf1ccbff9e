package glyphscape

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// meshBuilder accumulates untextured, vertex-colored triangles for a single
// mesh node. All geometry samples the center of WhitePixel.
type meshBuilder struct {
	verts []ebiten.Vertex
	inds  []uint16
}

// vertex appends one vertex with a premultiplied color and returns its index.
func (b *meshBuilder) vertex(x, y float64, c Color) uint16 {
	b.verts = append(b.verts, ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(c.R * c.A),
		ColorG: float32(c.G * c.A),
		ColorB: float32(c.B * c.A),
		ColorA: float32(c.A),
	})
	return uint16(len(b.verts) - 1)
}

// fan triangulates a star-shaped polygon around hub. Polygons with fewer
// than three points are skipped.
func (b *meshBuilder) fan(hub Vec2, points []Vec2, c Color) {
	if len(points) < 3 {
		return
	}
	h := b.vertex(hub.X, hub.Y, c)
	first := b.vertex(points[0].X, points[0].Y, c)
	prev := first
	for _, p := range points[1:] {
		cur := b.vertex(p.X, p.Y, c)
		b.inds = append(b.inds, h, prev, cur)
		prev = cur
	}
	b.inds = append(b.inds, h, prev, first)
}

// circle appends a filled disc.
func (b *meshBuilder) circle(cx, cy, r float64, segments int, c Color) {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Vec2, segments)
	for i := range pts {
		sin, cos := math.Sincos(float64(i) / float64(segments) * 2 * math.Pi)
		pts[i] = Vec2{cx + cos*r, cy + sin*r}
	}
	b.fan(Vec2{cx, cy}, pts, c)
}

// ring appends an annulus between inner and outer radius.
func (b *meshBuilder) ring(cx, cy, inner, outer float64, segments int, c Color) {
	if segments < 3 {
		segments = 3
	}
	if inner < 0 {
		inner = 0
	}
	base := uint16(len(b.verts))
	for i := 0; i < segments; i++ {
		sin, cos := math.Sincos(float64(i) / float64(segments) * 2 * math.Pi)
		b.vertex(cx+cos*inner, cy+sin*inner, c)
		b.vertex(cx+cos*outer, cy+sin*outer, c)
	}
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		i0, o0 := base+uint16(i*2), base+uint16(i*2+1)
		i1, o1 := base+uint16(j*2), base+uint16(j*2+1)
		b.inds = append(b.inds, i0, o0, o1, i0, o1, i1)
	}
}

// quad appends a convex quadrilateral given in winding order.
func (b *meshBuilder) quad(p0, p1, p2, p3 Vec2, c Color) {
	v0 := b.vertex(p0.X, p0.Y, c)
	v1 := b.vertex(p1.X, p1.Y, c)
	v2 := b.vertex(p2.X, p2.Y, c)
	v3 := b.vertex(p3.X, p3.Y, c)
	b.inds = append(b.inds, v0, v1, v2, v0, v2, v3)
}

// rotatedRect appends a w×h rectangle whose local center is (cx, cy), rotated
// about the origin by angle.
func (b *meshBuilder) rotatedRect(cx, cy, w, h, angle float64, c Color) {
	sin, cos := math.Sincos(angle)
	rot := func(x, y float64) Vec2 {
		return Vec2{x*cos - y*sin, x*sin + y*cos}
	}
	hw, hh := w/2, h/2
	b.quad(
		rot(cx-hw, cy-hh), rot(cx+hw, cy-hh),
		rot(cx+hw, cy+hh), rot(cx-hw, cy+hh),
		c,
	)
}

// polyline strokes the given points with a constant width. closed joins the
// last point back to the first.
func (b *meshBuilder) polyline(points []Vec2, width float64, closed bool, c Color) {
	n := len(points)
	if n < 2 || width <= 0 {
		return
	}
	half := width / 2
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a := points[i]
		z := points[(i+1)%n]
		nx, ny := perpendicular(a, z)
		b.quad(
			Vec2{a.X + nx*half, a.Y + ny*half},
			Vec2{z.X + nx*half, z.Y + ny*half},
			Vec2{z.X - nx*half, z.Y - ny*half},
			Vec2{a.X - nx*half, a.Y - ny*half},
			c,
		)
	}
}

// flipY mirrors all vertices built so far across the x axis. Glyph geometry
// is laid out with y pointing up and flipped into the y-down world.
func (b *meshBuilder) flipY() {
	for i := range b.verts {
		b.verts[i].DstY = -b.verts[i].DstY
	}
}

// empty reports whether no triangles were produced.
func (b *meshBuilder) empty() bool {
	return len(b.inds) == 0
}

// node wraps the accumulated geometry in a mesh node.
func (b *meshBuilder) node(name string) *Node {
	return NewMesh(name, WhitePixel, b.verts, b.inds)
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// cubicBezier samples the curve p0..p3 at steps+1 evenly spaced parameters,
// appending to out. The first sample is p0 and the last is p3.
func cubicBezier(out []Vec2, p0, p1, p2, p3 Vec2, steps int) []Vec2 {
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		w0 := u * u * u
		w1 := 3 * u * u * t
		w2 := 3 * u * t * t
		w3 := t * t * t
		out = append(out, Vec2{
			X: w0*p0.X + w1*p1.X + w2*p2.X + w3*p3.X,
			Y: w0*p0.Y + w1*p1.Y + w2*p2.Y + w3*p3.Y,
		})
	}
	return out
}

// rotatePoints rotates every point about the origin by angle in place.
func rotatePoints(points []Vec2, angle float64) {
	sin, cos := math.Sincos(angle)
	for i, p := range points {
		points[i] = Vec2{p.X*cos - p.Y*sin, p.X*sin + p.Y*cos}
	}
}
