package glyphscape

import (
	"image"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// Magic lens geometry.
const (
	lensSize          = 250
	lensMagnification = 8.0
	lensCollectRadius = 20.0
	lensPadding       = 10.0
	lensBorder        = 1.0
)

var (
	lensBackground  = RGB(0xffffff)
	lensBorderColor = RGB(0x888888)
	lensFixedBorder = RGB(0x1e88e5)
)

// LensSource gives the lens access to the host canvas state it renders from.
type LensSource struct {
	Config     *GlyphConfig
	Caches     *CacheStore
	Thumbnails ThumbnailLoader
}

// MagicLens is a magnified view of the glyphs near the cursor with its own
// camera, size info and relaxed local layout.
type MagicLens struct {
	active bool
	fixed  bool

	size   *SizeInfo
	cam    *Camera
	bus    *CommandBus
	cursor Vec2

	glyphs   []*Glyph
	meshes   map[string]*Node
	states   map[string]lensState
	group    *Node
	wrappers map[*Node]*Glyph
	clones   map[string]*Node
	builds   int

	view sceneView
}

// lensState is the glyph state a cached lens mesh was rendered with.
type lensState struct {
	highlighted bool
	passive     bool
	context     string
}

func lensStateOf(g *Glyph) lensState {
	return lensState{highlighted: g.Highlighted, passive: g.Passive, context: g.CurrentContext}
}

// NewMagicLens returns an inactive lens whose sizes derive from base.
func NewMagicLens(base *SizeInfo, bus *CommandBus) *MagicLens {
	l := &MagicLens{
		cam:      NewCamera(Rect{Width: lensSize, Height: lensSize}),
		bus:      bus,
		meshes:   map[string]*Node{},
		states:   map[string]lensState{},
		group:    NewContainer("lens"),
		wrappers: map[*Node]*Glyph{},
		clones:   map[string]*Node{},
	}
	l.cam.Zoom = 1
	l.SetSizeInfo(base)
	return l
}

// SetSizeInfo derives the lens sizes from the canvas size info: high
// level, magnified radius and a hit tolerance equal to the radius. Cached
// lens meshes are dropped.
func (l *MagicLens) SetSizeInfo(base *SizeInfo) {
	s := base.Clone()
	s.SetLevel(ZoomHigh)
	s.SetRadius(s.Radius() * lensMagnification)
	s.SetHitTolerance(s.Radius())
	l.size = s
	l.dropMeshes()
}

// SizeInfo returns the lens size info.
func (l *MagicLens) SizeInfo() *SizeInfo { return l.size }

// Camera returns the lens camera.
func (l *MagicLens) Camera() *Camera { return l.cam }

// Active reports whether the lens is shown.
func (l *MagicLens) Active() bool { return l.active }

// Fixed reports whether the lens is pinned in place.
func (l *MagicLens) Fixed() bool { return l.fixed }

// Glyphs returns the glyphs currently in the lens, in collection order.
func (l *MagicLens) Glyphs() []*Glyph { return l.glyphs }

// Builds returns how many times the lens content has been rebuilt.
func (l *MagicLens) Builds() int { return l.builds }

// Contains reports whether g is shown in this lens.
func (l *MagicLens) Contains(g *Glyph) bool {
	for _, lg := range l.glyphs {
		if lg == g {
			return true
		}
	}
	return false
}

// Toggle flips the lens on or off; with toggle false it turns it off.
// Turning it off releases the lens content.
func (l *MagicLens) Toggle(cursor Vec2, toggle bool) {
	l.active = !l.active && toggle
	l.cursor = cursor
	if !l.active {
		l.Clear()
	}
}

// ToggleFix flips the pinned state; with toggle false it unpins.
func (l *MagicLens) ToggleFix(toggle bool) {
	l.fixed = !l.fixed && toggle
}

// Update collects the glyphs whose nodes are within the collection radius
// of cursor on screen. It returns true when the set differs, by identity
// or order, from the previous one; the lens content then needs a Rebuild.
// Cached meshes of glyphs that left the set are released.
func (l *MagicLens) Update(cursor Vec2, nodes []*Node, cam *Camera, glyphOf func(*Node) *Glyph) bool {
	if !l.active {
		return false
	}
	l.cursor = cursor

	var found []*Glyph
	for _, n := range nodes {
		if n == nil || n.disposed {
			continue
		}
		p := n.WorldPosition()
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		if cursor.Dist(Vec2{sx, sy}) >= lensCollectRadius {
			continue
		}
		if g := glyphOf(n); g != nil {
			found = append(found, g)
		}
	}

	if sameGlyphs(found, l.glyphs) {
		return false
	}
	l.releaseGlyphs()
	l.clearGroup()
	l.glyphs = found
	for id := range l.meshes {
		if !slices.ContainsFunc(found, func(g *Glyph) bool { return g.ID == id }) {
			l.dropMesh(id)
		}
	}
	return true
}

func sameGlyphs(a, b []*Glyph) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Rebuild renders the lens glyphs, relaxes their layout and centres the
// lens camera on the result. Lens meshes are reused unless force is set or
// the glyph's highlight, passive state or context changed since they were
// rendered.
func (l *MagicLens) Rebuild(src LensSource, force bool) {
	l.clearGroup()
	if force {
		l.dropMeshes()
	}

	var nodes []*RenderCache
	var wrappers []*Node
	for _, g := range l.glyphs {
		c, ok := src.Caches.Lookup(g.ID)
		if !ok || !c.Valid {
			continue
		}
		state := lensStateOf(g)
		mesh := l.meshes[g.ID]
		if mesh != nil && l.states[g.ID] != state {
			l.dropMesh(g.ID)
			mesh = nil
		}
		if mesh == nil {
			local := *c
			local.Mesh = nil
			mesh = g.Render(RenderParams{
				Size:       l.size,
				Config:     src.Config,
				Cache:      &local,
				Thumbnails: src.Thumbnails,
			})
			if mesh == nil {
				continue
			}
			l.meshes[g.ID] = mesh
			l.states[g.ID] = state
		}
		clone := mesh.Clone()
		clone.X, clone.Y = 0, 0
		l.clones[g.ID] = clone

		w := NewContainer("wrapper")
		w.X, w.Y = c.X, c.Y
		w.AddChild(clone)
		l.group.AddChild(w)
		l.wrappers[w] = g
		wrappers = append(wrappers, w)
		nodes = append(nodes, &RenderCache{ID: g.ID, X: c.X, Y: c.Y, Valid: true})
	}

	if len(nodes) > 0 {
		sim := NewSimulation(nodes)
		sim.SetForce("collide", NewCollideForce(l.size.Radius()))
		sim.Tick(lensTicks)

		var b boundsBuilder
		for i, n := range nodes {
			wrappers[i].X, wrappers[i].Y = n.X, n.Y
			if r, ok := wrappers[i].LocalBounds(); ok {
				b.addRect(r)
			} else {
				b.addPoint(n.X, n.Y)
			}
		}
		if r, ok := b.rect(); ok {
			c := r.Center()
			l.cam.SetPosition(c.X, c.Y)
		}
	}

	for _, g := range l.glyphs {
		g.InLens = true
		l.emitRedraw(g)
	}
	l.builds++
}

// Placement returns the top-left corner of the lens in host coordinates:
// below and right of the cursor, flipped to stay inside host and clamped
// to its origin.
func (l *MagicLens) Placement(cursor Vec2, host Rect) Vec2 {
	rel := Vec2{cursor.X - host.X, cursor.Y - host.Y}
	left := rel.X + lensPadding
	top := rel.Y + lensPadding
	if top+lensSize > host.Height {
		top = rel.Y - lensSize - lensPadding
	}
	if left+lensSize > host.Width {
		left = rel.X - lensSize - lensPadding
	}
	return Vec2{host.X + max(0, left), host.Y + max(0, top)}
}

// Viewport returns the screen rectangle the lens occupies inside host.
func (l *MagicLens) Viewport(host Rect) Rect {
	p := l.Placement(l.cursor, host)
	return Rect{X: p.X, Y: p.Y, Width: lensSize, Height: lensSize}
}

// HitTest returns the lens glyph under the screen point, or nil when the
// point is outside the lens or hits nothing.
func (l *MagicLens) HitTest(sx, sy float64, host Rect) *Glyph {
	if !l.active {
		return nil
	}
	vp := l.Viewport(host)
	if !vp.Contains(sx, sy) {
		return nil
	}
	hit := HitTest(l.group.Children(), l.cam, sx-vp.X, sy-vp.Y, l.size.HitTolerance())
	if hit == nil {
		return nil
	}
	return l.wrappers[hit]
}

// pollThumbnails resolves pending thumbnails of lens meshes and copies
// arrived textures into the shown clones.
func (l *MagicLens) pollThumbnails() {
	for id, m := range l.meshes {
		if m.thumb == nil || !m.pollThumbnail() {
			continue
		}
		if c := l.clones[id]; c != nil && !c.disposed {
			c.SetTexture(m.Image, false)
			c.Vertices = append(c.Vertices[:0], m.Vertices...)
			c.InvalidateMeshAABB()
		}
	}
}

// Draw renders the lens into a pooled image and composites it onto dst at
// its placement inside host.
func (l *MagicLens) Draw(dst *ebiten.Image, host Rect, pool *renderTexturePool) {
	if !l.active {
		return
	}
	l.pollThumbnails()
	rt := pool.Acquire(lensSize, lensSize)
	defer pool.Release(rt)
	target := rt.SubImage(image.Rect(0, 0, lensSize, lensSize)).(*ebiten.Image)
	target.Fill(lensBackground.toRGBA())
	l.view.render(target, l.group, l.cam)

	vp := l.Viewport(host)
	border := lensBorderColor
	if l.fixed {
		border = lensFixedBorder
	}
	fillRect(dst, vp.Expand(lensBorder), border)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(vp.X, vp.Y)
	dst.DrawImage(target, op)
}

// Clear removes every glyph from the lens and asks owners to redraw them.
func (l *MagicLens) Clear() {
	l.releaseGlyphs()
	l.clearGroup()
}

// Dispose releases all lens meshes. The lens is inactive afterwards.
func (l *MagicLens) Dispose() {
	l.Clear()
	l.dropMeshes()
	l.active = false
	l.fixed = false
}

func (l *MagicLens) releaseGlyphs() {
	for _, g := range l.glyphs {
		g.InLens = false
		l.emitRedraw(g)
	}
	l.glyphs = nil
}

func (l *MagicLens) clearGroup() {
	for _, w := range l.group.Children() {
		delete(l.wrappers, w)
	}
	clear(l.clones)
	children := append([]*Node(nil), l.group.Children()...)
	for _, w := range children {
		w.Dispose()
	}
}

func (l *MagicLens) dropMeshes() {
	for id := range l.meshes {
		l.dropMesh(id)
	}
}

func (l *MagicLens) dropMesh(id string) {
	if m := l.meshes[id]; m != nil {
		m.Dispose()
	}
	delete(l.meshes, id)
	delete(l.states, id)
}

func (l *MagicLens) emitRedraw(g *Glyph) {
	if l.bus != nil {
		l.bus.Emit(EventRedrawGlyph, g)
	}
}
