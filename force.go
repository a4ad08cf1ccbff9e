package glyphscape

import "math"

// Simulation defaults.
const (
	defaultAlphaMin      = 0.001
	defaultVelocityDecay = 0.4
	// canvasVelocityDecay damps collision avoidance on the canvas.
	canvasVelocityDecay = 0.5
	// forceTickBudget is how many ticks the canvas runs before retiring the
	// simulation task.
	forceTickBudget = 50
	// lensTicks relaxes the lens layout in one pass.
	lensTicks = 80
	// relaxLerp and relaxEpsilon drive the animation back to rest positions.
	relaxLerp    = 0.1
	relaxEpsilon = 0.01
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Force acts on the simulation's nodes once per tick.
type Force interface {
	// Initialize is called whenever the node set changes.
	Initialize(nodes []*RenderCache)
	// Apply adjusts node velocities for the given alpha.
	Apply(alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Simulation is a velocity Verlet integrator over render caches. X and Y
// of each cache are the simulation position; FX and FY pin a node.
type Simulation struct {
	nodes         []*RenderCache
	forces        []namedForce
	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	ticks         int
}

// NewSimulation returns a simulation over nodes with alpha 1.
func NewSimulation(nodes []*RenderCache) *Simulation {
	s := &Simulation{
		alpha:         1,
		alphaMin:      defaultAlphaMin,
		alphaDecay:    1 - math.Pow(defaultAlphaMin, 1.0/300),
		velocityDecay: 1 - defaultVelocityDecay,
	}
	s.SetNodes(nodes)
	return s
}

// Nodes returns the simulated caches.
func (s *Simulation) Nodes() []*RenderCache { return s.nodes }

// SetNodes replaces the node set and reinitializes every force. Nodes
// without a finite position are placed on a phyllotaxis spiral.
func (s *Simulation) SetNodes(nodes []*RenderCache) {
	s.nodes = nodes
	for i, n := range nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			radius := 10 * math.Sqrt(0.5+float64(i))
			angle := float64(i) * initialAngle
			n.X = radius * math.Cos(angle)
			n.Y = radius * math.Sin(angle)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
	for _, f := range s.forces {
		f.force.Initialize(nodes)
	}
}

// SetForce installs f under name, replacing any force with that name. A
// nil force removes it.
func (s *Simulation) SetForce(name string, f Force) {
	for i, nf := range s.forces {
		if nf.name == name {
			if f == nil {
				s.forces = append(s.forces[:i], s.forces[i+1:]...)
			} else {
				s.forces[i].force = f
				f.Initialize(s.nodes)
			}
			return
		}
	}
	if f != nil {
		s.forces = append(s.forces, namedForce{name: name, force: f})
		f.Initialize(s.nodes)
	}
}

// Force returns the force installed under name.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the cooling parameter, typically to 1 to reheat.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// SetAlphaTarget sets the value alpha decays toward.
func (s *Simulation) SetAlphaTarget(a float64) { s.alphaTarget = a }

// SetVelocityDecay sets the fraction of velocity lost per tick.
func (s *Simulation) SetVelocityDecay(d float64) { s.velocityDecay = 1 - d }

// Ticks returns the number of ticks run since the last Reset.
func (s *Simulation) Ticks() int { return s.ticks }

// Reset reheats the simulation and zeroes the tick counter.
func (s *Simulation) Reset() {
	s.alpha = 1
	s.ticks = 0
}

// Done reports whether alpha has cooled below the minimum.
func (s *Simulation) Done() bool { return s.alpha < s.alphaMin }

// Tick advances the simulation n times.
func (s *Simulation) Tick(n int) {
	for k := 0; k < n; k++ {
		s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
		for _, f := range s.forces {
			f.force.Apply(s.alpha)
		}
		for _, node := range s.nodes {
			if node.FX == nil {
				node.VX *= s.velocityDecay
				node.X += node.VX
			} else {
				node.X = *node.FX
				node.VX = 0
			}
			if node.FY == nil {
				node.VY *= s.velocityDecay
				node.Y += node.VY
			} else {
				node.Y = *node.FY
				node.VY = 0
			}
		}
		s.ticks++
	}
}

// CollideForce pushes apart nodes whose circles of the given radius overlap.
type CollideForce struct {
	Radius     float64
	Strength   float64
	Iterations int

	nodes []*RenderCache
	rng   lcg
}

// NewCollideForce returns a collision force with strength 1 and one iteration.
func NewCollideForce(radius float64) *CollideForce {
	return &CollideForce{Radius: radius, Strength: 1, Iterations: 1, rng: newLCG()}
}

// Initialize implements Force.
func (f *CollideForce) Initialize(nodes []*RenderCache) {
	f.nodes = nodes
}

// Apply implements Force.
func (f *CollideForce) Apply(float64) {
	n := len(f.nodes)
	if n == 0 {
		return
	}
	points := make([]Vec2, n)
	for k := 0; k < f.Iterations; k++ {
		for i, node := range f.nodes {
			points[i] = Vec2{node.X, node.Y}
		}
		tree := BuildQuadtree(points)
		tree.VisitAfter(func(q *QuadNode) { q.r = f.Radius })

		for i, node := range f.nodes {
			ri := f.Radius
			ri2 := ri * ri
			xi := node.X + node.VX
			yi := node.Y + node.VY

			tree.Visit(func(q *QuadNode, x0, y0, x1, y1 float64) bool {
				rj := q.r
				r := ri + rj
				if q.leaf {
					for _, j := range q.items {
						if j <= i {
							continue
						}
						other := f.nodes[j]
						x := xi - other.X - other.VX
						y := yi - other.Y - other.VY
						l := x*x + y*y
						if l >= r*r {
							continue
						}
						if x == 0 {
							x = f.rng.jiggle()
							l += x * x
						}
						if y == 0 {
							y = f.rng.jiggle()
							l += y * y
						}
						l = math.Sqrt(l)
						l = (r - l) / l * f.Strength
						x *= l
						y *= l
						rj2 := rj * rj
						share := rj2 / (ri2 + rj2)
						node.VX += x * share
						node.VY += y * share
						other.VX -= x * (1 - share)
						other.VY -= y * (1 - share)
					}
					return true
				}
				return x0 > xi+r || x1 < xi-r || y0 > yi+r || y1 < yi-r
			})
		}
	}
}

// lcg is a deterministic generator so repeated runs relax identically.
type lcg struct{ s uint32 }

func newLCG() lcg { return lcg{s: 1} }

func (g *lcg) next() float64 {
	g.s = 1664525*g.s + 1013904223
	return float64(g.s) / 4294967296
}

func (g *lcg) jiggle() float64 {
	return (g.next() - 0.5) * 1e-6
}
