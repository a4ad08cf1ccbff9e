package glyphscape

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- transformVertices ---

func TestTransformVerticesIdentity(t *testing.T) {
	src := []ebiten.Vertex{
		{DstX: 10, DstY: 20, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: 30, DstY: 40, SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	dst := make([]ebiten.Vertex, 2)
	transformVertices(src, dst, identityTransform, 1)

	if dst[0].DstX != 10 || dst[0].DstY != 20 {
		t.Errorf("dst[0] = (%v,%v), want (10,20)", dst[0].DstX, dst[0].DstY)
	}
	if dst[1].SrcX != 1 || dst[1].SrcY != 1 {
		t.Errorf("dst[1] uv = (%v,%v), want (1,1)", dst[1].SrcX, dst[1].SrcY)
	}
}

func TestTransformVerticesRotation90(t *testing.T) {
	src := []ebiten.Vertex{{DstX: 1, ColorA: 1}}
	dst := make([]ebiten.Vertex, 1)
	transformVertices(src, dst, [6]float64{0, 1, -1, 0, 0, 0}, 1)
	if !approxEqual(float64(dst[0].DstX), 0, 1e-6) || !approxEqual(float64(dst[0].DstY), 1, 1e-6) {
		t.Errorf("rotation90 = (%v,%v), want (0,1)", dst[0].DstX, dst[0].DstY)
	}
}

func TestTransformVerticesAlphaScalesPremultiplied(t *testing.T) {
	src := []ebiten.Vertex{{ColorR: 0.5, ColorG: 0.25, ColorB: 1, ColorA: 1}}
	dst := make([]ebiten.Vertex, 1)
	transformVertices(src, dst, identityTransform, 0.5)
	v := dst[0]
	if v.ColorR != 0.25 || v.ColorG != 0.125 || v.ColorB != 0.5 || v.ColorA != 0.5 {
		t.Errorf("color = (%v,%v,%v,%v), want (0.25,0.125,0.5,0.5)", v.ColorR, v.ColorG, v.ColorB, v.ColorA)
	}
}

// --- computeMeshAABB ---

func TestComputeMeshAABBEmpty(t *testing.T) {
	if got := computeMeshAABB(nil); got != (Rect{}) {
		t.Errorf("empty AABB = %v, want zero", got)
	}
}

func TestComputeMeshAABBNegativeCoords(t *testing.T) {
	verts := []ebiten.Vertex{{DstX: -5, DstY: -10}, {DstX: 5, DstY: 0}, {DstX: 0, DstY: 10}}
	got := computeMeshAABB(verts)
	want := Rect{X: -5, Y: -10, Width: 10, Height: 20}
	if got != want {
		t.Errorf("AABB = %v, want %v", got, want)
	}
}

func TestMeshAABBInvalidate(t *testing.T) {
	n := NewMesh("m", nil, []ebiten.Vertex{{DstX: 0}, {DstX: 4, DstY: 4}}, []uint16{0, 1, 0})
	if r, _ := n.LocalBounds(); r.Width != 4 {
		t.Fatalf("Width = %v, want 4", r.Width)
	}
	n.Vertices[1].DstX = 8
	if r, _ := n.LocalBounds(); r.Width != 4 {
		t.Errorf("Width before invalidate = %v, want cached 4", r.Width)
	}
	n.InvalidateMeshAABB()
	if r, _ := n.LocalBounds(); r.Width != 8 {
		t.Errorf("Width after invalidate = %v, want 8", r.Width)
	}
}

func TestMeshDrawerBufferHighWater(t *testing.T) {
	var d meshDrawer
	b := d.buffer(100)
	if len(b) != 100 {
		t.Fatalf("len = %d, want 100", len(b))
	}
	c := cap(d.verts)
	d.buffer(10)
	if cap(d.verts) != c {
		t.Errorf("buffer shrank capacity from %d to %d", c, cap(d.verts))
	}
}

// --- meshBuilder ---

func TestMeshBuilderFan(t *testing.T) {
	var b meshBuilder
	b.fan(Vec2{}, []Vec2{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}, ColorWhite)
	if len(b.verts) != 5 {
		t.Errorf("verts = %d, want 5", len(b.verts))
	}
	if len(b.inds) != 12 {
		t.Errorf("indices = %d, want 12", len(b.inds))
	}
}

func TestMeshBuilderFanTooFewPoints(t *testing.T) {
	var b meshBuilder
	b.fan(Vec2{}, []Vec2{{1, 0}, {0, 1}}, ColorWhite)
	if !b.empty() {
		t.Error("two point fan should produce no triangles")
	}
}

func TestMeshBuilderCircleRadius(t *testing.T) {
	var b meshBuilder
	b.circle(0, 0, 5, 16, ColorWhite)
	r := computeMeshAABB(b.verts)
	if !approxEqual(r.Width, 10, 1e-4) || !approxEqual(r.Height, 10, 1e-4) {
		t.Errorf("circle bounds = %v, want 10x10", r)
	}
}

func TestMeshBuilderRing(t *testing.T) {
	var b meshBuilder
	b.ring(0, 0, 3, 4, 8, ColorWhite)
	if len(b.verts) != 16 || len(b.inds) != 48 {
		t.Errorf("ring = %d verts %d indices, want 16 and 48", len(b.verts), len(b.inds))
	}
}

func TestMeshBuilderPolyline(t *testing.T) {
	pts := []Vec2{{0, 0}, {10, 0}, {10, 10}}
	var open, closed meshBuilder
	open.polyline(pts, 1, false, ColorWhite)
	closed.polyline(pts, 1, true, ColorWhite)
	if len(open.inds) != 12 {
		t.Errorf("open indices = %d, want 12", len(open.inds))
	}
	if len(closed.inds) != 18 {
		t.Errorf("closed indices = %d, want 18", len(closed.inds))
	}
}

func TestMeshBuilderPremultipliesColor(t *testing.T) {
	var b meshBuilder
	b.vertex(0, 0, Color{R: 1, G: 0.5, B: 0, A: 0.5})
	v := b.verts[0]
	if v.ColorR != 0.5 || v.ColorG != 0.25 || v.ColorA != 0.5 {
		t.Errorf("color = (%v,%v,%v), want (0.5,0.25,0.5)", v.ColorR, v.ColorG, v.ColorA)
	}
	if v.SrcX != 0.5 || v.SrcY != 0.5 {
		t.Errorf("uv = (%v,%v), want the white pixel centre", v.SrcX, v.SrcY)
	}
}

func TestMeshBuilderFlipY(t *testing.T) {
	var b meshBuilder
	b.vertex(1, 2, ColorWhite)
	b.flipY()
	if b.verts[0].DstY != -2 {
		t.Errorf("DstY = %v, want -2", b.verts[0].DstY)
	}
}

func TestCubicBezierEndpoints(t *testing.T) {
	p0, p3 := Vec2{0, 0}, Vec2{10, 5}
	pts := cubicBezier(nil, p0, Vec2{2, 8}, Vec2{6, 8}, p3, 12)
	if len(pts) != 13 {
		t.Fatalf("samples = %d, want 13", len(pts))
	}
	if pts[0] != p0 || !approxEqual(pts[12].X, 10, epsilon) || !approxEqual(pts[12].Y, 5, epsilon) {
		t.Errorf("endpoints = %v, %v", pts[0], pts[12])
	}
}

func TestPerpendicular(t *testing.T) {
	nx, ny := perpendicular(Vec2{0, 0}, Vec2{2, 0})
	if nx != 0 || ny != 1 {
		t.Errorf("perpendicular = (%v,%v), want (0,1)", nx, ny)
	}
	nx, ny = perpendicular(Vec2{1, 1}, Vec2{1, 1})
	if nx != 0 || ny != -1 {
		t.Errorf("degenerate perpendicular = (%v,%v), want (0,-1)", nx, ny)
	}
}

func TestRotatePoints(t *testing.T) {
	pts := []Vec2{{1, 0}}
	rotatePoints(pts, math.Pi/2)
	if !approxEqual(pts[0].X, 0, 1e-12) || !approxEqual(pts[0].Y, 1, 1e-12) {
		t.Errorf("rotated = %v, want (0,1)", pts[0])
	}
}
