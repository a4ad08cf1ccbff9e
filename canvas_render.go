package glyphscape

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	selectionFill   = RGB(0x1e88e5).WithAlpha(0.15)
	selectionBorder = RGB(0x1e88e5)
	settingsBack    = RGB(0xffffff).WithAlpha(0.85)
	settingsText    = RGB(0x333333)
)

const settingsFontSize = 12.0

// Update advances the canvas by one frame: bus messages, input, the hover
// delay, thumbnail deliveries and the pending render tasks.
func (c *Canvas) Update() {
	if c.disposed {
		return
	}
	start := time.Now()
	for _, m := range c.sub.Drain() {
		c.handleMessage(m)
		if c.disposed {
			return
		}
	}
	if c.script != nil {
		c.script.step(c)
	}
	c.gestures.process(c, c.viewport, c.now())

	if t, ok := c.hover.Poll(c.now()); ok && t.glyph != nil {
		c.tooltip.Show(t.glyph, c.cfg, t.x, t.y, c.viewport)
		c.sched.Request(TaskSceneRender)
	}
	c.pollThumbnails()

	c.stats.tasks = c.sched.Pending()
	c.sched.Tick(c.tick)
	c.stats.updateTime = time.Since(start)
}

// tick runs the pending tasks in frame order. Drawing itself happens in
// Draw, which ebiten calls after Update.
func (c *Canvas) tick(tasks TaskSet) {
	if tasks.Has(TaskForceSimulation) {
		c.sched.Run(TaskForceSimulation, c.stepForce)
	} else if tasks.Has(TaskOriginalSimulation) {
		c.sched.Run(TaskOriginalSimulation, c.stepRelax)
	}
	if c.size.Level() == ZoomLow {
		c.sched.Run(TaskGlyphAnimation, c.stepPulse)
	}
	c.sched.Run(TaskFitAnimation, c.stepFit)
	c.updateClipping()
	c.sched.Run(TaskLensRender, c.stepLens)
	c.sched.Cancel(TaskSceneRender)
}

func (c *Canvas) stepForce() {
	c.forceTicks++
	c.sim.Tick(1)
	c.syncMeshes()
	if c.forceTicks > forceTickBudget {
		c.forceTicks = 0
		c.sched.Cancel(TaskForceSimulation)
	}
}

func (c *Canvas) stepRelax() {
	if relaxStep(c.order, relaxLerp, relaxEpsilon) {
		c.sched.Cancel(TaskOriginalSimulation)
	}
	c.syncMeshes()
}

// syncMeshes moves every mesh to its simulated position.
func (c *Canvas) syncMeshes() {
	for _, rc := range c.order {
		if rc.Mesh != nil {
			rc.Mesh.X, rc.Mesh.Y = rc.X, rc.Y
		}
	}
}

func (c *Canvas) stepPulse() {
	if c.animated == nil {
		return
	}
	rc, ok := c.caches.Lookup(c.animated.ID)
	if !ok || rc.Mesh == nil {
		return
	}
	s := pulseScale(c.now().Sub(c.pulseStart))
	rc.Mesh.SetScale(s, s)
}

func (c *Canvas) stepFit() {
	done := !c.cam.Fitting() || c.cam.UpdateFit(frameStep())
	if done {
		c.sched.Cancel(TaskFitAnimation)
		c.syncLevel()
	}
}

func (c *Canvas) stepLens() {
	if c.lens.Active() {
		c.lens.Rebuild(c.lensSource(), false)
	}
	c.sched.Cancel(TaskLensRender)
}

// frameStep is the duration of one Update in seconds.
func frameStep() float32 {
	return float32(1.0 / float64(ebiten.TPS()))
}

// updateClipping marks the glyphs whose logical position, padded by the
// radius, lies in the visible rect. Glyphs that come into view are
// rendered.
func (c *Canvas) updateClipping() {
	view := c.cam.VisibleBounds()
	r := c.size.Radius()
	for i, rc := range c.order {
		box := Rect{X: rc.Position.X - r, Y: rc.Position.Y - r, Width: 2 * r, Height: 2 * r}
		visible := rc.Valid && box.Intersects(view)
		if visible && !rc.Visible {
			rc.Visible = true
			c.RenderGlyph(c.glyphs[i])
			continue
		}
		rc.Visible = visible
		if rc.Mesh != nil {
			rc.Mesh.Visible = visible
		}
	}
}

func (c *Canvas) pollThumbnails() {
	for _, rc := range c.order {
		if m := rc.Mesh; m != nil && m.thumb != nil && m.pollThumbnail() {
			c.sched.Request(TaskSceneRender)
		}
	}
}

// --- Drawing ---

func (c *Canvas) background() Color {
	if c.lens.Fixed() {
		return canvasFixedBackground
	}
	return canvasBackground
}

// Draw renders the canvas into its viewport on screen, followed by the
// selection rectangle, the lens, the tooltip and the settings overlay.
// Queued image exports are written afterwards.
func (c *Canvas) Draw(screen *ebiten.Image) {
	if c.disposed || c.viewport.Width <= 0 || c.viewport.Height <= 0 {
		return
	}
	start := time.Now()
	vp := image.Rect(
		int(c.viewport.X), int(c.viewport.Y),
		int(c.viewport.X+c.viewport.Width), int(c.viewport.Y+c.viewport.Height),
	)
	dst := screen.SubImage(vp).(*ebiten.Image)
	dst.Fill(c.background().toRGBA())
	c.stats.drawCalls = c.view.render(dst, c.root, c.cam)

	if c.selecting {
		r := selectionRect(c.selStart, c.selEnd)
		fillRect(dst, r.Expand(1), selectionBorder)
		fillRect(dst, r, selectionFill)
	}
	c.lens.Draw(dst, c.viewport, &c.pool)
	c.tooltip.Draw(dst)
	if c.showSettings {
		c.drawSettings(dst)
	}

	c.flushExports()
	c.stats.drawTime = time.Since(start)
	c.stats.nodes = c.root.NumChildren()
	c.debugLog(c.stats)
}

// selectionRect returns the rectangle spanned by two corners.
func selectionRect(a, b Vec2) Rect {
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  max(a.X, b.X) - min(a.X, b.X),
		Height: max(a.Y, b.Y) - min(a.Y, b.Y),
	}
}

// settingsLines returns the text of the settings overlay.
func (c *Canvas) settingsLines() []string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return []string{
		fmt.Sprintf("canvas %s", c.id.String()[:8]),
		fmt.Sprintf("timestamp: %s", c.timestamp),
		fmt.Sprintf("algorithm: %s", c.algorithm),
		fmt.Sprintf("context: %s", c.context),
		fmt.Sprintf("glyphs: %d (%d active)", len(c.glyphs), c.registry.Active()),
		fmt.Sprintf("zoom: %.2f (%s)", c.cam.Zoom, c.size.Level()),
		fmt.Sprintf("collision: %s  aggregation: %s", onOff(c.collision), onOff(c.aggregated)),
		fmt.Sprintf("selection: %s  lens: %s", onOff(c.selectionMode), onOff(c.lens.Active())),
		fmt.Sprintf("tasks: %s", c.sched.Pending()),
	}
}

func (c *Canvas) drawSettings(dst *ebiten.Image) {
	body := strings.Join(c.settingsLines(), "\n")
	w, h := measureText(body, settingsFontSize)
	x := c.viewport.X + 8
	y := c.viewport.Y + 8
	fillRect(dst, Rect{X: x, Y: y, Width: w + 12, Height: h + 12}, settingsBack)
	drawText(dst, body, settingsFontSize, x+6, y+6, settingsText)
}

// --- Messages ---

func (c *Canvas) handleMessage(m Message) {
	switch m.Command {
	case CmdFitToView:
		c.FitToView()
	case CmdRedraw:
		c.RenderGlyphs(false)
		c.refreshLens()
	case CmdRerender:
		c.sched.Request(TaskSceneRender)
	case CmdClearSelection:
		c.registry.ClearIDFilters()
		c.registry.Refresh(c.glyphs)
		c.RenderGlyphs(false)
		c.refreshLens()
	case CmdExportImage:
		c.ExportImage(m.Dir)
	}

	switch m.Event {
	case EventRedrawGlyph:
		if c.owns(m.Glyph) {
			c.RenderGlyph(m.Glyph)
		}
	case EventAnimateGlyph:
		if c.gestures.inside || c.animated == m.Glyph {
			return
		}
		c.resetAnimatedGlyph()
		c.startAnimatedGlyph(m.Glyph)
	case EventConfigChanged:
		if c.lens.Active() {
			c.lens.Rebuild(c.lensSource(), true)
		}
		c.RenderGlyphs(false)
	case EventDatasetLoaded:
		if m.Data != nil {
			c.SetData(m.Data.Glyphs, m.Data.Timestamps, m.Data.Algorithms)
		}
	}
}
