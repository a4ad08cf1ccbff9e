package glyphscape

import (
	"math"
)

// Camera parameters.
const (
	// fitPadding is the extra space around fitted content (10% per axis).
	fitPadding = 1.1
	// fitDuration is the fit-to-view transition length in seconds.
	fitDuration = 0.5
	// panFactor scales the screen-space pan delta before the 1/zoom correction.
	panFactor = 0.8
	// wheelZoomFactor is the zoom ratio per wheel notch.
	wheelZoomFactor = 1.1
)

// FitTarget is the camera state that frames a set of bounds.
type FitTarget struct {
	X, Y float64
	Zoom float64
}

// Camera is an orthographic 2D view: it centers world point (X, Y) in its
// viewport at the given zoom. In 2D the camera position and its look-at
// target coincide.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor, kept within [MinZoom, MaxZoom] by the
	// mutating methods.
	Zoom float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	lastX, lastY  float64
	lastZoom      float64
	lastViewport  Rect
	valid         bool

	fit *fitTween
}

// NewCamera creates a Camera at zoom 1 centered on the origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{Zoom: 1.0, Viewport: viewport}
}

// computeViewMatrix recomputes the cached view matrix when any camera field
// changed since the last call.
//
// viewMatrix = Translate(cx, cy) * Scale(zoom) * Translate(-X, -Y)
// where cx, cy = viewport center.
func (c *Camera) computeViewMatrix() [6]float64 {
	if c.valid && c.lastX == c.X && c.lastY == c.Y && c.lastZoom == c.Zoom && c.lastViewport == c.Viewport {
		return c.viewMatrix
	}
	c.valid = true
	c.lastX, c.lastY, c.lastZoom, c.lastViewport = c.X, c.Y, c.Zoom, c.Viewport

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	z := c.Zoom

	c.viewMatrix = [6]float64{z, 0, 0, z, cx - z*c.X, cy - z*c.Y}
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	return transformPoint(c.viewMatrix, wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	return transformPoint(c.invViewMatrix, sx, sy)
}

// ProjectNDC maps a world point to normalized device coordinates: [-1, 1]
// on both axes across the viewport, with y pointing up.
func (c *Camera) ProjectNDC(wx, wy float64) (nx, ny float64) {
	sx, sy := c.WorldToScreen(wx, wy)
	if c.Viewport.Width == 0 || c.Viewport.Height == 0 {
		return 0, 0
	}
	nx = (sx-c.Viewport.X)/c.Viewport.Width*2 - 1
	ny = -((sy-c.Viewport.Y)/c.Viewport.Height*2 - 1)
	return nx, ny
}

// VisibleBounds returns the world-space rectangle visible through the viewport.
func (c *Camera) VisibleBounds() Rect {
	c.computeViewMatrix()
	return transformRect(c.invViewMatrix, c.Viewport)
}

// Level returns the level of detail for the current zoom.
func (c *Camera) Level() ZoomLevel {
	return ZoomLevelFor(c.Zoom)
}

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(z float64) {
	c.Zoom = ClampZoom(z)
}

// SetPosition moves the camera target.
func (c *Camera) SetPosition(x, y float64) {
	c.X, c.Y = x, y
}

// ZoomAtScreenPoint changes the zoom while keeping the world point under
// (sx, sy) fixed on screen. It returns the zoom levels before and after.
func (c *Camera) ZoomAtScreenPoint(sx, sy, newZoom float64) (oldLevel, newLevel ZoomLevel) {
	oldLevel = c.Level()
	bx, by := c.ScreenToWorld(sx, sy)
	c.SetZoom(newZoom)
	ax, ay := c.ScreenToWorld(sx, sy)
	c.X += bx - ax
	c.Y += by - ay
	return oldLevel, c.Level()
}

// ZoomBy multiplies the zoom by factor around the screen point.
func (c *Camera) ZoomBy(sx, sy, factor float64) (oldLevel, newLevel ZoomLevel) {
	return c.ZoomAtScreenPoint(sx, sy, c.Zoom*factor)
}

// WheelZoom applies a mouse wheel delta: each notch scales by 1.1 toward
// the cursor.
func (c *Camera) WheelZoom(sx, sy, notches float64) (oldLevel, newLevel ZoomLevel) {
	return c.ZoomBy(sx, sy, math.Pow(wheelZoomFactor, notches))
}

// Pan moves the camera opposite to a screen-space drag of (dx, dy). The
// delta is divided by the zoom so panning speed is independent of scale.
func (c *Camera) Pan(dx, dy float64) {
	f := panFactor / c.Zoom
	c.X -= dx * f
	c.Y -= dy * f
}

// FitBounds returns the camera state that frames b with 10% padding while
// keeping an isotropic scale.
func (c *Camera) FitBounds(b Rect) FitTarget {
	center := b.Center()
	zoom := c.Zoom
	w := b.Width * fitPadding
	h := b.Height * fitPadding
	switch {
	case w > 0 && h > 0:
		zoom = min(c.Viewport.Width/w, c.Viewport.Height/h)
	case w > 0:
		zoom = c.Viewport.Width / w
	case h > 0:
		zoom = c.Viewport.Height / h
	}
	return FitTarget{X: center.X, Y: center.Y, Zoom: ClampZoom(zoom)}
}

// StartFit moves toward t. When animate is false the camera snaps
// immediately; otherwise an eased 500 ms transition starts and is advanced
// by UpdateFit.
func (c *Camera) StartFit(t FitTarget, animate bool) {
	if !animate {
		c.fit = nil
		c.X, c.Y = t.X, t.Y
		c.SetZoom(t.Zoom)
		return
	}
	c.fit = newFitTween(c, t, fitDuration)
}

// Fitting reports whether a fit transition is in progress.
func (c *Camera) Fitting() bool {
	return c.fit != nil
}

// UpdateFit advances the fit transition by dt seconds. It returns true on
// the update that completes the transition.
func (c *Camera) UpdateFit(dt float32) bool {
	if c.fit == nil {
		return false
	}
	if c.fit.update(dt) {
		c.fit = nil
		return true
	}
	return false
}

// CancelFit stops a running transition where it is.
func (c *Camera) CancelFit() {
	c.fit = nil
}

// Copy returns a camera with the same state and no running transition.
func (c *Camera) Copy() *Camera {
	return &Camera{X: c.X, Y: c.Y, Zoom: c.Zoom, Viewport: c.Viewport}
}
