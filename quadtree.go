package glyphscape

import "math"

// QuadNode is a node of a Quadtree. Internal nodes have up to four
// children indexed by bottom<<1 | right; leaves hold the indices of one or
// more coincident points.
type QuadNode struct {
	children [4]*QuadNode
	items    []int
	leaf     bool

	// r is scratch space for per-subtree aggregates (collision radius).
	r float64
}

// Leaf reports whether n holds points rather than children.
func (n *QuadNode) Leaf() bool { return n.leaf }

// Items returns the point indices stored in a leaf.
func (n *QuadNode) Items() []int { return n.items }

// Child returns the child in quadrant i (0..3), or nil.
func (n *QuadNode) Child(i int) *QuadNode { return n.children[i] }

// Quadtree is a point-region quadtree over indexed points. Its extent
// grows by doubling to cover every added point.
type Quadtree struct {
	x0, y0, x1, y1 float64
	hasExtent      bool
	root           *QuadNode
	xs, ys         []float64
}

// NewQuadtree returns an empty tree.
func NewQuadtree() *Quadtree {
	return &Quadtree{}
}

// BuildQuadtree returns a tree holding points, indexed by position in the slice.
func BuildQuadtree(points []Vec2) *Quadtree {
	q := &Quadtree{
		xs: make([]float64, 0, len(points)),
		ys: make([]float64, 0, len(points)),
	}
	var b boundsBuilder
	for _, p := range points {
		if !math.IsNaN(p.X) && !math.IsNaN(p.Y) {
			b.addPoint(p.X, p.Y)
		}
	}
	if r, ok := b.rect(); ok {
		q.Cover(r.X, r.Y)
		q.Cover(r.X+r.Width, r.Y+r.Height)
	}
	for _, p := range points {
		q.Add(p.X, p.Y)
	}
	return q
}

// Len returns the number of points added.
func (q *Quadtree) Len() int { return len(q.xs) }

// Point returns the coordinates of point i.
func (q *Quadtree) Point(i int) (float64, float64) { return q.xs[i], q.ys[i] }

// Root returns the root node, or nil for an empty tree.
func (q *Quadtree) Root() *QuadNode { return q.root }

// Extent returns the tree's current bounds.
func (q *Quadtree) Extent() Rect {
	return Rect{X: q.x0, Y: q.y0, Width: q.x1 - q.x0, Height: q.y1 - q.y0}
}

// Cover expands the extent so it contains (x, y), doubling the square
// extent and pushing the existing root down one level per doubling.
func (q *Quadtree) Cover(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	if !q.hasExtent {
		q.x0, q.y0 = math.Floor(x), math.Floor(y)
		q.x1, q.y1 = q.x0+1, q.y0+1
		q.hasExtent = true
		return
	}
	z := q.x1 - q.x0
	if z == 0 {
		z = 1
	}
	for x < q.x0 || x >= q.x1 || y < q.y0 || y >= q.y1 {
		i := 0
		if y < q.y0 {
			i |= 2
		}
		if x < q.x0 {
			i |= 1
		}
		if q.root != nil {
			parent := &QuadNode{}
			parent.children[i] = q.root
			q.root = parent
		}
		z *= 2
		switch i {
		case 0:
			q.x1, q.y1 = q.x0+z, q.y0+z
		case 1:
			q.x0, q.y1 = q.x1-z, q.y0+z
		case 2:
			q.x1, q.y0 = q.x0+z, q.y1-z
		case 3:
			q.x0, q.y0 = q.x1-z, q.y1-z
		}
	}
}

// Add inserts a point and returns its index. Points with NaN coordinates
// are indexed but not inserted.
func (q *Quadtree) Add(x, y float64) int {
	i := len(q.xs)
	q.xs = append(q.xs, x)
	q.ys = append(q.ys, y)
	if math.IsNaN(x) || math.IsNaN(y) {
		return i
	}
	q.Cover(x, y)
	q.insert(i, x, y)
	return i
}

func (q *Quadtree) insert(i int, x, y float64) {
	leaf := &QuadNode{leaf: true, items: []int{i}}
	if q.root == nil {
		q.root = leaf
		return
	}

	x0, y0, x1, y1 := q.x0, q.y0, q.x1, q.y1
	var parent *QuadNode
	slot := 0
	node := q.root

	for !node.leaf {
		xm, ym := (x0+x1)/2, (y0+y1)/2
		j := 0
		if x >= xm {
			j |= 1
			x0 = xm
		} else {
			x1 = xm
		}
		if y >= ym {
			j |= 2
			y0 = ym
		} else {
			y1 = ym
		}
		parent, slot = node, j
		node = node.children[j]
		if node == nil {
			parent.children[j] = leaf
			return
		}
	}

	ox, oy := q.xs[node.items[0]], q.ys[node.items[0]]
	if ox == x && oy == y {
		node.items = append(node.items, i)
		return
	}

	// Split until the new point and the existing leaf land in different
	// quadrants.
	for {
		internal := &QuadNode{}
		if parent == nil {
			q.root = internal
		} else {
			parent.children[slot] = internal
		}
		xm, ym := (x0+x1)/2, (y0+y1)/2
		j, k := 0, 0
		if x >= xm {
			j |= 1
		}
		if y >= ym {
			j |= 2
		}
		if ox >= xm {
			k |= 1
		}
		if oy >= ym {
			k |= 2
		}
		if j != k {
			internal.children[j] = leaf
			internal.children[k] = node
			return
		}
		if j&1 != 0 {
			x0 = xm
		} else {
			x1 = xm
		}
		if j&2 != 0 {
			y0 = ym
		} else {
			y1 = ym
		}
		parent, slot = internal, j
	}
}

// Visit calls fn for each node in pre-order with the node's bounds. When
// fn returns true the node's children are skipped.
func (q *Quadtree) Visit(fn func(n *QuadNode, x0, y0, x1, y1 float64) bool) {
	if q.root != nil {
		visitQuad(q.root, q.x0, q.y0, q.x1, q.y1, fn)
	}
}

func visitQuad(n *QuadNode, x0, y0, x1, y1 float64, fn func(*QuadNode, float64, float64, float64, float64) bool) {
	if fn(n, x0, y0, x1, y1) || n.leaf {
		return
	}
	xm, ym := (x0+x1)/2, (y0+y1)/2
	if c := n.children[0]; c != nil {
		visitQuad(c, x0, y0, xm, ym, fn)
	}
	if c := n.children[1]; c != nil {
		visitQuad(c, xm, y0, x1, ym, fn)
	}
	if c := n.children[2]; c != nil {
		visitQuad(c, x0, ym, xm, y1, fn)
	}
	if c := n.children[3]; c != nil {
		visitQuad(c, xm, ym, x1, y1, fn)
	}
}

// VisitAfter calls fn for each node in post-order.
func (q *Quadtree) VisitAfter(fn func(n *QuadNode)) {
	if q.root != nil {
		visitQuadAfter(q.root, fn)
	}
}

func visitQuadAfter(n *QuadNode, fn func(*QuadNode)) {
	if !n.leaf {
		for _, c := range n.children {
			if c != nil {
				visitQuadAfter(c, fn)
			}
		}
	}
	fn(n)
}
