package glyphscape

import "math"

// aggregationRadius is the clustering radius the canvas uses, in world units.
const aggregationRadius = 10.0

// Cluster groups caches whose logical positions lie within radius of each
// other. Every group of more than one member is marked clustered and the
// member nearest the group centroid becomes its single representative.
// Flags are reset first, so repeated runs on unchanged positions give the
// same result.
func Cluster(caches []*RenderCache, radius float64) {
	for _, c := range caches {
		c.Clustered = false
		c.Representative = false
	}
	if len(caches) == 0 {
		return
	}

	points := make([]Vec2, len(caches))
	for i, c := range caches {
		points[i] = c.Position
	}
	qt := BuildQuadtree(points)

	visited := make([]bool, len(caches))
	r2 := radius * radius
	var group []int

	for i, c := range caches {
		if visited[i] {
			continue
		}
		px, py := c.Position.X, c.Position.Y
		group = group[:0]

		qt.Visit(func(n *QuadNode, x0, y0, x1, y1 float64) bool {
			if n.leaf {
				for _, j := range n.items {
					if visited[j] {
						continue
					}
					dx := points[j].X - px
					dy := points[j].Y - py
					if dx*dx+dy*dy <= r2 {
						group = append(group, j)
					}
				}
				return true
			}
			dx := math.Max(0, math.Max(x0-px, px-x1))
			dy := math.Max(0, math.Max(y0-py, py-y1))
			return dx*dx+dy*dy > r2
		})

		visited[i] = true
		if len(group) <= 1 {
			continue
		}

		var cx, cy float64
		for _, j := range group {
			visited[j] = true
			caches[j].Clustered = true
			cx += points[j].X
			cy += points[j].Y
		}
		cx /= float64(len(group))
		cy /= float64(len(group))

		rep := -1
		best := math.Inf(1)
		for _, j := range group {
			d := math.Hypot(points[j].X-cx, points[j].Y-cy)
			if d < best {
				best = d
				rep = j
			}
		}
		if rep >= 0 {
			caches[rep].Representative = true
		}
	}
}
