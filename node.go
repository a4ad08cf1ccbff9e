package glyphscape

import (
	"image"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// Node is the scene graph element used for glyph meshes. A single flat
// struct covers containers, triangle meshes and text labels.
type Node struct {
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64

	Alpha       float64
	Visible     bool
	RenderOrder int

	// Mesh fields. Vertex colors are premultiplied.
	Vertices  []ebiten.Vertex
	Indices   []uint16
	Image     *ebiten.Image
	ownsImage bool

	// Text label drawn at the node origin, centered horizontally.
	Text      string
	TextSize  float64
	TextColor Color

	// pending thumbnail delivery, polled by the canvas.
	thumb *thumbRequest

	meshAABB      Rect
	meshAABBDirty bool

	disposed       bool
	childrenSorted bool
	sortedChildren []*Node
}

func nodeDefaults(n *Node) {
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Visible = true
	n.childrenSorted = true
	n.meshAABBDirty = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name}
	nodeDefaults(n)
	return n
}

// NewMesh creates a mesh node drawn with DrawTriangles. A nil img uses
// WhitePixel.
func NewMesh(name string, img *ebiten.Image, vertices []ebiten.Vertex, indices []uint16) *Node {
	if img == nil {
		img = WhitePixel
	}
	n := &Node{Name: name, Image: img, Vertices: vertices, Indices: indices}
	nodeDefaults(n)
	return n
}

// NewLabel creates a text node.
func NewLabel(name, text string, size float64, c Color) *Node {
	n := &Node{Name: name, Text: text, TextSize: size, TextColor: c}
	nodeDefaults(n)
	return n
}

// SetTexture replaces the mesh image. When owned is true the node
// deallocates the image on Dispose or on the next SetTexture.
func (n *Node) SetTexture(img *ebiten.Image, owned bool) {
	if n.ownsImage && n.Image != nil && n.Image != img {
		n.Image.Deallocate()
	}
	n.Image = img
	n.ownsImage = owned
}

// setQuad replaces the mesh with an axis-aligned w×h quad centered on the
// origin that samples the whole of the node's image.
func (n *Node) setQuad(w, h float64) {
	var sw, sh float32 = 1, 1
	if n.Image != nil {
		b := n.Image.Bounds()
		sw, sh = float32(b.Dx()), float32(b.Dy())
	}
	x0, y0 := float32(-w/2), float32(-h/2)
	x1, y1 := float32(w/2), float32(h/2)
	n.Vertices = append(n.Vertices[:0],
		ebiten.Vertex{DstX: x0, DstY: y0, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		ebiten.Vertex{DstX: x1, DstY: y0, SrcX: sw, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		ebiten.Vertex{DstX: x1, DstY: y1, SrcX: sw, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		ebiten.Vertex{DstX: x0, DstY: y1, SrcX: 0, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	)
	n.Indices = append(n.Indices[:0], 0, 1, 2, 0, 2, 3)
	n.meshAABBDirty = true
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("glyphscape: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("glyphscape: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("glyphscape: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
	}
	n.children = n.children[:0]
	n.sortedChildren = n.sortedChildren[:0]
	n.childrenSorted = true
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// SetRenderOrder sets the draw order among siblings; lower values draw first.
func (n *Node) SetRenderOrder(order int) {
	if n.RenderOrder == order {
		return
	}
	n.RenderOrder = order
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// drawOrder returns the children sorted by RenderOrder, stable on insertion order.
func (n *Node) drawOrder() []*Node {
	if !n.childrenSorted || len(n.sortedChildren) != len(n.children) {
		n.sortedChildren = append(n.sortedChildren[:0], n.children...)
		sort.SliceStable(n.sortedChildren, func(i, j int) bool {
			return n.sortedChildren[i].RenderOrder < n.sortedChildren[j].RenderOrder
		})
		n.childrenSorted = true
	}
	return n.sortedChildren
}

// --- Cloning ---

// Clone returns a deep copy of the node and its subtree. Vertex and index
// data are copied; images are shared and never owned by the clone.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:        n.Name,
		X:           n.X,
		Y:           n.Y,
		ScaleX:      n.ScaleX,
		ScaleY:      n.ScaleY,
		Rotation:    n.Rotation,
		Alpha:       n.Alpha,
		Visible:     n.Visible,
		RenderOrder: n.RenderOrder,
		Image:       n.Image,
		Text:        n.Text,
		TextSize:    n.TextSize,
		TextColor:   n.TextColor,

		meshAABBDirty:  true,
		childrenSorted: true,
	}
	if len(n.Vertices) > 0 {
		c.Vertices = append([]ebiten.Vertex(nil), n.Vertices...)
		c.Indices = append([]uint16(nil), n.Indices...)
	}
	for _, child := range n.children {
		c.AddChild(child.Clone())
	}
	return c
}

// --- Bounds ---

// LocalBounds returns the bounds of the node's subtree in its parent's
// coordinate space. The second result is false when the subtree has no
// geometry.
func (n *Node) LocalBounds() (Rect, bool) {
	return n.boundsIn(computeLocalTransform(n))
}

func (n *Node) boundsIn(m [6]float64) (Rect, bool) {
	var b boundsBuilder
	if len(n.Vertices) > 0 {
		n.recomputeMeshAABB()
		b.addRect(transformRect(m, n.meshAABB))
	}
	for _, child := range n.children {
		if r, ok := child.boundsIn(multiplyAffine(m, computeLocalTransform(child))); ok {
			b.addRect(r)
		}
	}
	return b.rect()
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, releases
// owned images and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	if n.ownsImage && n.Image != nil {
		n.Image.Deallocate()
	}
	n.Image = nil
	n.ownsImage = false
	n.Vertices = nil
	n.Indices = nil
	n.thumb = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// imageSize returns the pixel dimensions of img.
func imageSize(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}
