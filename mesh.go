package glyphscape

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// transformVertices applies an affine transform and an alpha to src vertices,
// writing the result into dst. dst must be at least len(src) in length.
//
// Matrix layout: [0]=a, [1]=b, [2]=c, [3]=d, [4]=tx, [5]=ty
// newX = a*x + c*y + tx, newY = b*x + d*y + ty
//
// Vertex colors are premultiplied, so every channel scales with alpha.
func transformVertices(src, dst []ebiten.Vertex, transform [6]float64, alpha float64) {
	a, b, c, d, tx, ty := transform[0], transform[1], transform[2], transform[3], transform[4], transform[5]
	ca := float32(alpha)

	for i := range src {
		s := &src[i]
		ox := float64(s.DstX)
		oy := float64(s.DstY)
		dst[i] = ebiten.Vertex{
			DstX:   float32(a*ox + c*oy + tx),
			DstY:   float32(b*ox + d*oy + ty),
			SrcX:   s.SrcX,
			SrcY:   s.SrcY,
			ColorR: s.ColorR * ca,
			ColorG: s.ColorG * ca,
			ColorB: s.ColorB * ca,
			ColorA: s.ColorA * ca,
		}
	}
}

// computeMeshAABB scans DstX/DstY of the given vertices and returns
// the axis-aligned bounding box in local space.
func computeMeshAABB(verts []ebiten.Vertex) Rect {
	if len(verts) == 0 {
		return Rect{}
	}
	minX := float64(verts[0].DstX)
	minY := float64(verts[0].DstY)
	maxX := minX
	maxY := minY
	for i := 1; i < len(verts); i++ {
		x := float64(verts[i].DstX)
		y := float64(verts[i].DstY)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// InvalidateMeshAABB marks the mesh's cached AABB as needing recomputation.
// Call this after modifying Vertices.
func (n *Node) InvalidateMeshAABB() {
	n.meshAABBDirty = true
}

// recomputeMeshAABB recomputes the cached local-space AABB if dirty.
func (n *Node) recomputeMeshAABB() {
	if !n.meshAABBDirty {
		return
	}
	n.meshAABB = computeMeshAABB(n.Vertices)
	n.meshAABBDirty = false
}

// meshDrawer walks a node tree and submits one DrawTriangles call per mesh.
// The vertex buffer grows to a high-water mark and is reused across frames.
type meshDrawer struct {
	verts     []ebiten.Vertex
	drawCalls int
}

func (d *meshDrawer) buffer(n int) []ebiten.Vertex {
	if cap(d.verts) < n {
		d.verts = make([]ebiten.Vertex, n)
	}
	d.verts = d.verts[:n]
	return d.verts
}

// draw renders n and its visible descendants into dst using the parent
// transform and alpha.
func (d *meshDrawer) draw(dst *ebiten.Image, n *Node, parent [6]float64, parentAlpha float64) {
	if n == nil || !n.Visible || n.disposed {
		return
	}
	m := multiplyAffine(parent, computeLocalTransform(n))
	alpha := parentAlpha * n.Alpha
	if alpha <= 0 {
		return
	}

	if len(n.Vertices) > 0 && len(n.Indices) > 0 && n.Image != nil {
		buf := d.buffer(len(n.Vertices))
		transformVertices(n.Vertices, buf, m, alpha)
		var triOp ebiten.DrawTrianglesOptions
		triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		triOp.AntiAlias = true
		dst.DrawTriangles(buf, n.Indices, n.Image, &triOp)
		d.drawCalls++
	}
	if n.Text != "" {
		drawLabel(dst, n.Text, n.TextSize, m, n.TextColor.WithAlpha(n.TextColor.A*alpha))
		d.drawCalls++
	}

	for _, child := range n.drawOrder() {
		d.draw(dst, child, m, alpha)
	}
}
