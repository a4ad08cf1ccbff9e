package glyphscape

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	canvasBackground      = RGB(0xfafafa)
	canvasFixedBackground = RGB(0xf0f0f0)
)

const (
	// fitAnimationLimit is the glyph count above which fit-to-view snaps
	// instead of animating.
	fitAnimationLimit = 5000
	// lensJitterSpread offsets magnified glyphs shown outside their lens.
	lensJitterSpread = 120.0

	defaultExportScale = 2.0
)

// CanvasOptions configures a Canvas. Nil and zero fields get defaults;
// canvases that show the same data share Config, Registry and Bus.
type CanvasOptions struct {
	Config     *GlyphConfig
	Registry   *FilterRegistry
	Bus        *CommandBus
	Thumbnails ThumbnailLoader
	// Now is the clock used for gestures, hover delays and the pulse.
	Now func() time.Time
	// Viewport is the canvas rectangle in screen pixels.
	Viewport Rect
	// ExportDir is where ExportImage writes when called without a directory.
	ExportDir string
	// ExportScale is the resolution multiplier of exported images (default 2).
	ExportScale float64
}

// Canvas is one interactive view of a glyph set. It owns its render caches,
// camera, scheduler, magic lens and tooltip; glyph data, filters and the
// command bus are shared with the other canvases.
type Canvas struct {
	id uuid.UUID

	cfg      *GlyphConfig
	registry *FilterRegistry
	bus      *CommandBus
	sub      *Subscription
	thumbs   ThumbnailLoader
	now      func() time.Time

	viewport Rect
	size     *SizeInfo
	cam      *Camera
	sched    Scheduler
	caches   *CacheStore
	root     *Node

	glyphs     []*Glyph
	index      map[string]*Glyph
	order      []*RenderCache // parallel to glyphs
	timestamps []string
	algorithms []string
	timestamp  string
	algorithm  string
	context    string
	bounds     Rect
	hasBounds  bool

	sim        *Simulation
	forceTicks int
	collision  bool
	aggregated bool

	selection     *IDFilter
	selectionMode bool
	selecting     bool
	selStart      Vec2
	selEnd        Vec2
	panning       bool
	pinchZoom     float64

	cursor     Vec2
	hovered    *Glyph
	animated   *Glyph
	pulseStart time.Time

	hits    *HitTester
	hover   DelayedTrigger[hoverTarget]
	tooltip Tooltip
	lens    *MagicLens

	pool renderTexturePool
	view sceneView

	gestures   *gestureState
	injectMods KeyModifiers
	script     *ScriptRunner

	exportDir    string
	exportScale  float64
	exports      []string
	showSettings bool
	debug        bool
	stats        debugStats
	disposed     bool
}

// NewCanvas creates an empty canvas and subscribes it to the command bus.
func NewCanvas(opts CanvasOptions) *Canvas {
	if opts.Config == nil {
		opts.Config = DefaultGlyphConfig()
	}
	if opts.Registry == nil {
		opts.Registry = NewFilterRegistry()
	}
	if opts.Bus == nil {
		opts.Bus = NewCommandBus()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.ExportScale <= 0 {
		opts.ExportScale = defaultExportScale
	}

	c := &Canvas{
		id:          uuid.New(),
		cfg:         opts.Config,
		registry:    opts.Registry,
		bus:         opts.Bus,
		thumbs:      opts.Thumbnails,
		now:         opts.Now,
		viewport:    opts.Viewport,
		size:        NewSizeInfo(),
		cam:         NewCamera(opts.Viewport),
		caches:      NewCacheStore(),
		root:        NewContainer("glyphs"),
		index:       map[string]*Glyph{},
		context:     DefaultContext,
		selection:   NewIDFilter(),
		hits:        NewHitTester(opts.Now),
		gestures:    newGestureState(),
		exportDir:   opts.ExportDir,
		exportScale: opts.ExportScale,
	}
	c.selection.SetMode(FilterOr)
	c.size.Update(opts.Viewport.Width, opts.Viewport.Height)
	c.lens = NewMagicLens(c.size, c.bus)
	c.sub = c.bus.Subscribe()
	return c
}

// ID returns the canvas identity.
func (c *Canvas) ID() uuid.UUID { return c.id }

// Camera returns the canvas camera.
func (c *Canvas) Camera() *Camera { return c.cam }

// SizeInfo returns the canvas size info.
func (c *Canvas) SizeInfo() *SizeInfo { return c.size }

// Scheduler returns the canvas render scheduler.
func (c *Canvas) Scheduler() *Scheduler { return &c.sched }

// Lens returns the canvas magic lens.
func (c *Canvas) Lens() *MagicLens { return c.lens }

// Tooltip returns the canvas tooltip.
func (c *Canvas) Tooltip() *Tooltip { return &c.tooltip }

// Selection returns the id filter this canvas selects into.
func (c *Canvas) Selection() *IDFilter { return c.selection }

// Caches returns the canvas render caches.
func (c *Canvas) Caches() *CacheStore { return c.caches }

// Root returns the container holding the glyph meshes.
func (c *Canvas) Root() *Node { return c.root }

// Glyphs returns the displayed glyphs.
func (c *Canvas) Glyphs() []*Glyph { return c.glyphs }

// Viewport returns the canvas rectangle in screen pixels.
func (c *Canvas) Viewport() Rect { return c.viewport }

// Layout returns the selected timestamp and algorithm.
func (c *Canvas) Layout() (timestamp, algorithm string) { return c.timestamp, c.algorithm }

// Hovered returns the glyph under the pointer, if any.
func (c *Canvas) Hovered() *Glyph { return c.hovered }

// CollisionAvoidance reports whether the collision layout is on.
func (c *Canvas) CollisionAvoidance() bool { return c.collision }

// Aggregated reports whether clustering is on.
func (c *Canvas) Aggregated() bool { return c.aggregated }

// SelectionMode reports whether pointer input selects instead of navigating.
func (c *Canvas) SelectionMode() bool { return c.selectionMode }

// SettingsVisible reports whether the settings overlay is shown.
func (c *Canvas) SettingsVisible() bool { return c.showSettings }

// SetDebugMode enables per-frame stats logging.
func (c *Canvas) SetDebugMode(enabled bool) { c.debug = enabled }

// --- Data ---

// SetData replaces the displayed glyphs. The first timestamp and algorithm
// are selected, caches and bounds are reset, the view is fitted and the
// collision simulation is rebuilt.
func (c *Canvas) SetData(glyphs []*Glyph, timestamps, algorithms []string) {
	if c.disposed {
		return
	}
	c.resetInteraction()
	c.glyphs = glyphs
	c.index = make(map[string]*Glyph, len(glyphs))
	for _, g := range glyphs {
		c.index[g.ID] = g
	}
	c.timestamps = slices.Clone(timestamps)
	c.algorithms = slices.Clone(algorithms)
	c.timestamp, c.algorithm = "", ""
	if len(timestamps) > 0 {
		c.timestamp = timestamps[0]
	}
	if len(algorithms) > 0 {
		c.algorithm = algorithms[0]
	}
	c.resetLayout()
	c.FitToView()
	c.initSimulation()
}

// SelectLayout switches to another (timestamp, algorithm) pair of the
// loaded data.
func (c *Canvas) SelectLayout(timestamp, algorithm string) error {
	if c.disposed {
		return nil
	}
	if !slices.Contains(c.timestamps, timestamp) {
		return fmt.Errorf("unknown timestamp %q", timestamp)
	}
	if !slices.Contains(c.algorithms, algorithm) {
		return fmt.Errorf("unknown algorithm %q", algorithm)
	}
	c.resetInteraction()
	c.timestamp, c.algorithm = timestamp, algorithm
	c.resetLayout()
	c.RenderGlyphs(false)
	c.FitToView()
	c.initSimulation()
	if c.lens.Active() {
		c.lens.Clear()
		c.updateLens()
	}
	return nil
}

// SetContext switches the feature context of every glyph and redraws.
func (c *Canvas) SetContext(context string) {
	if c.disposed {
		return
	}
	c.context = context
	for _, g := range c.glyphs {
		g.CurrentContext = context
	}
	c.RenderGlyphs(false)
}

// resetLayout drops the caches and recomputes the data bounds for the
// selected layout.
func (c *Canvas) resetLayout() {
	c.caches.Clear()
	c.order = make([]*RenderCache, len(c.glyphs))
	for i, g := range c.glyphs {
		c.order[i] = c.caches.Get(g, c.timestamp, c.algorithm)
	}
	c.bounds, c.hasBounds = dataBounds(c.glyphs, c.timestamp, c.algorithm)
}

// resetInteraction stops the layout tasks and drops hover and lens state
// tied to the previous data.
func (c *Canvas) resetInteraction() {
	c.sched.Cancel(TaskForceSimulation)
	c.sched.Cancel(TaskOriginalSimulation)
	c.collision = false
	c.forceTicks = 0
	c.resetAnimatedGlyph()
	c.clearHoveredGlyph()
	c.hovered = nil
	c.hover.Cancel()
	c.tooltip.ToggleFixation(false)
	c.tooltip.Hide()
	c.lens.Clear()
}

func (c *Canvas) initSimulation() {
	c.sim = NewSimulation(c.order)
	c.sim.SetForce("collide", NewCollideForce(c.size.RadiusAt(ZoomHigh)))
	c.sim.SetVelocityDecay(canvasVelocityDecay)
}

func (c *Canvas) owns(g *Glyph) bool {
	return g != nil && c.index[g.ID] == g
}

// glyphOf maps a mesh node back to its glyph.
func (c *Canvas) glyphOf(n *Node) *Glyph {
	id, ok := c.caches.GlyphID(n)
	if !ok {
		return nil
	}
	return c.index[id]
}

// --- View ---

// Resize sets the canvas rectangle in screen pixels. Sizes, the collision
// radius and the lens are derived from the new dimensions.
func (c *Canvas) Resize(viewport Rect) {
	if c.disposed {
		return
	}
	c.viewport = viewport
	c.size.Update(viewport.Width, viewport.Height)
	c.cam.Viewport = viewport
	if c.sim != nil {
		c.sim.SetForce("collide", NewCollideForce(c.size.RadiusAt(ZoomHigh)))
	}
	c.lens.SetSizeInfo(c.size)
	c.resetAnimatedGlyph()
	c.RenderGlyphs(false)
}

// FitToView rescales the layout into the canvas, reclusters the scaled
// positions when aggregation is on, renders every glyph at the low level
// and moves the camera to frame them. The move is animated
// unless the canvas shows more than 5000 glyphs.
func (c *Canvas) FitToView() {
	if c.disposed {
		return
	}
	if c.collision {
		c.ToggleCollisionAvoidance(true)
	}
	c.scaleToFit()
	if c.aggregated {
		Cluster(c.order, aggregationRadius)
	}
	c.size.SetLevel(ZoomLow)
	c.RenderGlyphs(true)

	b, ok := c.root.LocalBounds()
	if !ok {
		return
	}
	c.cam.StartFit(c.cam.FitBounds(b), len(c.glyphs) <= fitAnimationLimit)
	c.sched.Request(TaskFitAnimation)
}

// scaleToFit maps every base position into the canvas and makes it the
// logical and simulated position of its cache.
func (c *Canvas) scaleToFit() {
	if !c.hasBounds {
		return
	}
	for i, rc := range c.order {
		p, ok := c.glyphs[i].Position(c.timestamp, c.algorithm)
		if !ok {
			continue
		}
		s := scalePosition(p, c.bounds, c.viewport.Width, c.viewport.Height)
		rc.Position = s
		rc.ResetPosition()
		if rc.Mesh != nil {
			rc.Mesh.X, rc.Mesh.Y = s.X, s.Y
		}
	}
}

// syncLevel switches the size info to the camera's zoom level and redraws
// when the level changed.
func (c *Canvas) syncLevel() {
	level := c.cam.Level()
	if level == c.size.Level() {
		return
	}
	c.size.SetLevel(level)
	c.RenderGlyphs(false)
}

// --- Rendering ---

func (c *Canvas) renderParams(rc *RenderCache, size *SizeInfo) RenderParams {
	return RenderParams{
		Size:       size,
		Config:     c.cfg,
		Cache:      rc,
		Clustered:  c.aggregated,
		Thumbnails: c.thumbs,
	}
}

// RenderGlyphs rebuilds the mesh of every visible glyph, or of every glyph
// when force is set. Hidden glyphs lose their mesh until they come into
// view.
func (c *Canvas) RenderGlyphs(force bool) {
	if c.disposed {
		return
	}
	for i, rc := range c.order {
		if rc.Visible || force {
			c.RenderGlyph(c.glyphs[i])
		} else {
			c.caches.SetMesh(rc.ID, nil)
		}
	}
	c.sched.Request(TaskSceneRender)
}

// RenderGlyph rebuilds the mesh of one glyph. A glyph shown in another
// canvas's lens is drawn magnified and scattered around its position while
// this canvas is at the low level.
func (c *Canvas) RenderGlyph(g *Glyph) {
	if c.disposed || !c.owns(g) {
		return
	}
	rc := c.caches.Get(g, c.timestamp, c.algorithm)
	n := g.Render(c.renderParams(rc, c.size))
	if n != nil && g.InLens && !c.lens.Contains(g) && c.size.Level() == ZoomLow {
		ls := c.size.Clone()
		ls.SetLevel(ZoomHigh)
		ls.SetRadius(ls.Radius() * lensMagnification)
		if m := g.Render(c.renderParams(rc, ls)); m != nil {
			jx := jitterFromVector(m.X, m.Y, 0) * lensJitterSpread
			jy := jitterFromVector(m.X+1, m.Y+1, 1) * lensJitterSpread
			m.X += jx
			m.Y += jy
			n.Dispose()
			n = m
		}
	}
	c.caches.SetMesh(g.ID, n)
	if n != nil {
		n.Visible = rc.Visible
		c.root.AddChild(n)
	}
	c.sched.Request(TaskSceneRender)
}

// --- Modes ---

// ToggleCollisionAvoidance flips the collision layout; with toggle false it
// turns it off. Turning it off animates glyphs back to their logical
// positions. The call is ignored while either layout animation runs.
func (c *Canvas) ToggleCollisionAvoidance(toggle bool) {
	if c.sched.Has(TaskForceSimulation) || c.sched.Has(TaskOriginalSimulation) {
		return
	}
	c.collision = !c.collision && toggle
	if !c.collision {
		for _, rc := range c.order {
			rc.VX, rc.VY = 0, 0
		}
		c.sched.Request(TaskOriginalSimulation)
		return
	}
	if c.sim == nil {
		c.initSimulation()
	}
	c.sim.SetAlpha(1)
	c.forceTicks = 0
	c.sched.Request(TaskForceSimulation)
}

// ToggleAggregation flips clustering of nearby glyphs at the low level.
func (c *Canvas) ToggleAggregation() {
	c.aggregated = !c.aggregated
	if c.aggregated {
		Cluster(c.order, aggregationRadius)
	}
	c.RenderGlyphs(false)
}

// ToggleSelectionMode flips selection mode; with toggle false it turns it
// off. Entering selection mode closes the hover state and the lens.
func (c *Canvas) ToggleSelectionMode(toggle bool) {
	c.selectionMode = !c.selectionMode && toggle
	if c.selectionMode {
		c.clearHoveredGlyph()
		c.hover.Cancel()
		c.ToggleMagicLens(false)
	}
	c.selecting = false
}

// ToggleMagicLens flips the lens; with toggle false it turns it off.
func (c *Canvas) ToggleMagicLens(toggle bool) {
	c.lens.Toggle(c.cursor, toggle)
	c.tooltip.ToggleFixation(false)
	c.tooltip.Hide()
	if c.lens.Active() {
		c.hover.Cancel()
		c.clearHoveredGlyph()
		c.ToggleSelectionMode(false)
		c.updateLens()
	} else {
		c.ToggleFixMagicLens(false)
	}
	c.sched.Request(TaskSceneRender)
}

// ToggleFixMagicLens pins or unpins the lens; with toggle false it unpins.
func (c *Canvas) ToggleFixMagicLens(toggle bool) {
	c.lens.ToggleFix(toggle)
	c.sched.Request(TaskSceneRender)
}

// ToggleSettings shows or hides the settings overlay.
func (c *Canvas) ToggleSettings() {
	c.showSettings = !c.showSettings
	c.sched.Request(TaskSceneRender)
}

// --- Filters and selection ---

// ApplyFilters makes sure the selection filter is registered, refreshes
// the passive state of all glyphs and asks every canvas to redraw.
func (c *Canvas) ApplyFilters() {
	if !c.registry.Contains(c.selection) {
		c.selection.SetMode(FilterOr)
		c.registry.Add(c.selection)
	}
	c.registry.Refresh(c.glyphs)
	c.bus.Broadcast(CmdRedraw)
}

// highlightSelected adds the glyphs of nodes to the selection. An empty
// node list clears every id filter; replace clears before adding.
func (c *Canvas) highlightSelected(nodes []*Node, replace bool) {
	if len(nodes) == 0 {
		c.registry.ClearIDFilters()
	} else {
		if replace {
			c.registry.ClearIDFilters()
		}
		for _, n := range nodes {
			if g := c.glyphOf(n); g != nil {
				c.selection.Add(g.ID)
			}
		}
	}
	c.ApplyFilters()
}

// --- Hover and pulse ---

func (c *Canvas) clearHoveredGlyph() {
	if c.hovered != nil {
		c.hovered.SetHighlighted(false)
		c.bus.Emit(EventRedrawGlyph, c.hovered)
	}
}

func (c *Canvas) resetAnimatedGlyph() {
	if g := c.animated; g != nil {
		if rc, ok := c.caches.Lookup(g.ID); ok && rc.Mesh != nil {
			rc.Mesh.SetScale(1, 1)
		}
		c.animated = nil
		c.RenderGlyph(g)
	}
	c.sched.Cancel(TaskGlyphAnimation)
}

func (c *Canvas) startAnimatedGlyph(g *Glyph) {
	if !c.owns(g) {
		return
	}
	c.animated = g
	c.pulseStart = c.now()
	c.sched.Request(TaskGlyphAnimation)
}

// --- Lens ---

func (c *Canvas) lensSource() LensSource {
	return LensSource{Config: c.cfg, Caches: c.caches, Thumbnails: c.thumbs}
}

// updateLens recollects the lens glyphs around the cursor and schedules a
// rebuild when they changed.
func (c *Canvas) updateLens() {
	if c.lens.Update(c.cursor, c.root.Children(), c.cam, c.glyphOf) {
		c.sched.Request(TaskLensRender)
	}
	c.sched.Request(TaskSceneRender)
}

// refreshLens schedules a lens rebuild so glyph state changes made
// elsewhere reach the lens meshes.
func (c *Canvas) refreshLens() {
	if c.lens.Active() && len(c.lens.Glyphs()) > 0 {
		c.sched.Request(TaskLensRender)
	}
}

// --- Lifecycle ---

// Dispose releases caches, the lens, offscreen images and the bus
// subscription. The canvas ignores every call afterwards.
func (c *Canvas) Dispose() {
	if c.disposed {
		return
	}
	c.lens.Dispose()
	c.caches.Dispose()
	c.root.Dispose()
	c.pool.Dispose()
	c.sub.Close()
	c.registry.Remove(c.selection)
	c.sched.Reset()
	c.hover.Cancel()
	c.exports = nil
	c.disposed = true
}

// Disposed reports whether Dispose was called.
func (c *Canvas) Disposed() bool { return c.disposed }
