package glyphscape

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// selectionClickDistance is the largest rectangle diagonal still treated
// as a single-glyph selection click.
const selectionClickDistance = 0.1

func (c *Canvas) pointerDown(p *pointerState, mods KeyModifiers) {
	if c.lens.Active() {
		return
	}
	c.cursor = Vec2{X: p.startX, Y: p.startY}
	if p.id != 0 {
		return
	}
	c.panning = true
	if c.selectionMode {
		c.selecting = true
		c.selStart = c.cursor
		c.selEnd = c.cursor
	}
}

func (c *Canvas) pointerDrag(p *pointerState, x, y, dx, dy float64, mods KeyModifiers) {
	if p.id != 0 {
		// Touch: one finger pans regardless of mode.
		c.hover.Cancel()
		c.cam.Pan(dx, dy)
		c.sched.Request(TaskSceneRender)
		return
	}
	c.pointerMoved(x, y, dx, dy)
}

func (c *Canvas) pointerHover(x, y float64, mods KeyModifiers) {
	c.pointerMoved(x, y, 0, 0)
}

// pointerMoved handles mouse movement with or without a button held.
func (c *Canvas) pointerMoved(x, y, dx, dy float64) {
	if c.tooltip.Fixed() {
		c.selecting = false
		c.hover.Cancel()
		return
	}
	c.cursor = Vec2{X: x, Y: y}

	switch {
	case c.lens.Active() && c.lens.Fixed():
		c.hoverLens(x, y)
	case c.lens.Active():
		c.updateLens()
	case c.selecting:
		c.selEnd = c.cursor
		c.sched.Request(TaskSceneRender)
	case c.panning && !c.selectionMode:
		c.hover.Cancel()
		c.cam.Pan(dx, dy)
		c.sched.Request(TaskSceneRender)
	case !c.sched.Has(TaskForceSimulation) && !c.selectionMode:
		c.hoverAt(x, y)
	}
}

// hoverAt runs the throttled hit test and moves the highlight, pulse and
// tooltip schedule to the glyph under the pointer.
func (c *Canvas) hoverAt(x, y float64) {
	hit, ok := c.hits.Test(c.root.Children(), c.cam, x, y, c.size.HitTolerance())
	if !ok {
		return
	}
	if hit == nil {
		c.clearHoveredGlyph()
		c.hover.Cancel()
		c.bus.Emit(EventAnimateGlyph, nil)
		if c.hovered != nil {
			c.sched.Request(TaskSceneRender)
		}
		c.hovered = nil
		return
	}
	g := c.glyphOf(hit)
	if g == c.hovered {
		return
	}
	c.clearHoveredGlyph()
	if g != nil && !g.Highlighted {
		g.SetHighlighted(true)
		c.pulseStart = c.now()
		c.RenderGlyph(g)
		c.bus.Emit(EventAnimateGlyph, g)
		c.hovered = g
	}
	c.sched.Request(TaskSceneRender)
	c.hover.Cancel()
	c.hover.Schedule(c.now(), hoverDelay, hoverTarget{glyph: g, x: x, y: y})
}

// hoverLens schedules tooltips for glyphs under the pointer inside a
// fixed lens.
func (c *Canvas) hoverLens(x, y float64) {
	g := c.lens.HitTest(x, y, c.viewport)
	if g == nil {
		c.hover.Cancel()
		c.hovered = nil
		return
	}
	if g != c.hovered {
		c.hovered = g
		c.hover.Cancel()
		c.hover.Schedule(c.now(), hoverDelay, hoverTarget{glyph: g, x: x, y: y})
	}
}

func (c *Canvas) pointerUp(p *pointerState, x, y float64, click bool, mods KeyModifiers) {
	c.panning = false
	if p.id != 0 {
		return
	}

	if click && c.lens.Active() {
		c.ToggleFixMagicLens(true)
		return
	}
	if c.lens.Fixed() && c.lens.Active() {
		c.hover.Cancel()
		c.ToggleFixMagicLens(true)
	}

	if click && !c.selectionMode {
		if c.hovered != nil {
			c.tooltip.ToggleFixation(true)
			c.sched.Request(TaskSceneRender)
		}
		return
	}

	if c.selecting && c.selectionMode {
		c.selecting = false
		c.selEnd = Vec2{X: x, Y: y}
		if c.selStart.Dist(c.selEnd) < selectionClickDistance {
			c.toggleSelectionAt(x, y)
		} else {
			c.selectRectangle(selectionRect(c.selStart, c.selEnd), mods&ModShift == 0)
		}
		c.sched.Request(TaskSceneRender)
	}
}

// toggleSelectionAt toggles the glyph under the point in the selection.
// Clicking empty space clears every id filter.
func (c *Canvas) toggleSelectionAt(x, y float64) {
	hit := HitTest(c.root.Children(), c.cam, x, y, c.size.HitTolerance())
	if hit == nil {
		c.registry.ClearIDFilters()
		c.ApplyFilters()
		return
	}
	if g := c.glyphOf(hit); g != nil {
		c.selection.Toggle(g.ID)
		c.ApplyFilters()
	}
}

// selectRectangle selects the glyphs whose nodes project into r. replace
// drops the previous selection first.
func (c *Canvas) selectRectangle(r Rect, replace bool) {
	var inside []*Node
	for _, n := range c.root.Children() {
		if n.disposed {
			continue
		}
		p := n.WorldPosition()
		sx, sy := c.cam.WorldToScreen(p.X, p.Y)
		if r.Contains(sx, sy) {
			inside = append(inside, n)
		}
	}
	c.highlightSelected(inside, replace)
}

func (c *Canvas) pointerLeave() {
	c.panning = false
	c.selecting = false
	if c.lens.Active() && !c.lens.Fixed() {
		c.ToggleMagicLens(true)
	}
	c.bus.Emit(EventAnimateGlyph, nil)
	c.clearHoveredGlyph()
	c.hovered = nil
	c.hover.Cancel()
	c.gestures.reset()
}

func (c *Canvas) wheel(x, y, notches float64) {
	if c.lens.Active() || c.tooltip.Fixed() || notches == 0 {
		return
	}
	c.hover.Cancel()
	dir := 1.0
	if notches < 0 {
		dir = -1
	}
	c.cam.CancelFit()
	c.sched.Cancel(TaskFitAnimation)
	c.cam.WheelZoom(x, y, dir)
	c.syncLevel()
	c.sched.Request(TaskSceneRender)
}

func (c *Canvas) pinch(cx, cy, scale float64, started bool) {
	if started {
		c.pinchZoom = c.cam.Zoom
		return
	}
	c.hover.Cancel()
	c.cam.CancelFit()
	c.cam.ZoomAtScreenPoint(cx, cy, ClampZoom(c.pinchZoom*scale))
	c.syncLevel()
	c.sched.Request(TaskSceneRender)
}

func (c *Canvas) key(k ebiten.Key, mods KeyModifiers) {
	switch k {
	case ebiten.KeyC:
		c.ToggleCollisionAvoidance(true)
	case ebiten.KeyF:
		c.FitToView()
	case ebiten.KeyA:
		c.ToggleAggregation()
	case ebiten.KeyD:
		c.ToggleSettings()
	case ebiten.KeyS:
		c.ToggleSelectionMode(true)
	case ebiten.KeyX:
		c.RenderGlyphs(false)
	case ebiten.KeyL:
		c.ToggleMagicLens(true)
	}
}
