package glyphscape

// RenderCache is the per-canvas render state of one glyph: its logical
// position, simulation state, visibility, cluster flags and the mesh that
// currently represents it.
type RenderCache struct {
	ID string
	// Position is the authoritative logical position after layout scaling.
	Position Vec2

	// Simulation state. X and Y are also the rendered position.
	X, Y   float64
	VX, VY float64
	// FX and FY pin the node in the simulation when non-nil.
	FX, FY *float64

	Visible        bool
	Clustered      bool
	Representative bool
	// Valid is false when the glyph has no position for the selected
	// layout. Such caches never render.
	Valid bool

	Mesh *Node
}

func newRenderCache(id string, p Vec2, valid bool) *RenderCache {
	return &RenderCache{
		ID:       id,
		Position: p,
		X:        p.X,
		Y:        p.Y,
		Visible:  true,
		Valid:    valid,
	}
}

// ResetPosition moves the simulation state back to the logical position.
func (c *RenderCache) ResetPosition() {
	c.X, c.Y = c.Position.X, c.Position.Y
	c.VX, c.VY = 0, 0
}

// CacheStore owns the render caches of one canvas, keyed by glyph id. It
// also keeps the lookup from mesh node back to glyph id.
type CacheStore struct {
	caches map[string]*RenderCache
	order  []*RenderCache
	nodes  map[*Node]string
	warned map[string]bool
}

// NewCacheStore returns an empty store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		caches: map[string]*RenderCache{},
		nodes:  map[*Node]string{},
		warned: map[string]bool{},
	}
}

// Get returns the cache for g, creating it from the glyph's base position
// for (timestamp, algorithm) on first use. A glyph without that position
// gets an invalid cache and a single warning.
func (s *CacheStore) Get(g *Glyph, timestamp, algorithm string) *RenderCache {
	if c, ok := s.caches[g.ID]; ok {
		return c
	}
	p, ok := g.Position(timestamp, algorithm)
	if !ok && !s.warned[g.ID] {
		s.warned[g.ID] = true
		logWarn("glyph %s has no position for %s/%s", g.ID, timestamp, algorithm)
	}
	c := newRenderCache(g.ID, p, ok)
	s.caches[g.ID] = c
	s.order = append(s.order, c)
	return c
}

// Lookup returns the cache for a glyph id without creating it.
func (s *CacheStore) Lookup(id string) (*RenderCache, bool) {
	c, ok := s.caches[id]
	return c, ok
}

// SetMesh replaces the mesh of the cache for id, disposing the previous
// mesh. A nil node only disposes.
func (s *CacheStore) SetMesh(id string, node *Node) {
	c, ok := s.caches[id]
	if !ok {
		if node != nil {
			node.Dispose()
		}
		return
	}
	if old := c.Mesh; old != nil && old != node {
		delete(s.nodes, old)
		old.Dispose()
	}
	c.Mesh = node
	if node != nil {
		s.nodes[node] = id
	}
}

// GlyphID returns the glyph id a mesh node was rendered for.
func (s *CacheStore) GlyphID(n *Node) (string, bool) {
	id, ok := s.nodes[n]
	return id, ok
}

// Len returns the number of caches.
func (s *CacheStore) Len() int {
	return len(s.order)
}

// All returns the caches in creation order. The returned slice MUST NOT be mutated.
func (s *CacheStore) All() []*RenderCache {
	return s.order
}

// Each calls fn for every cache in creation order.
func (s *CacheStore) Each(fn func(*RenderCache)) {
	for _, c := range s.order {
		fn(c)
	}
}

// Clear disposes every mesh and forgets all caches.
func (s *CacheStore) Clear() {
	for _, c := range s.order {
		if c.Mesh != nil {
			c.Mesh.Dispose()
			c.Mesh = nil
		}
	}
	s.caches = map[string]*RenderCache{}
	s.order = nil
	s.nodes = map[*Node]string{}
	s.warned = map[string]bool{}
}

// Dispose releases every mesh. The store is empty afterwards.
func (s *CacheStore) Dispose() {
	s.Clear()
}
