package glyphscape

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when vertices are built.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RGB converts a 0xRRGGBB value into an opaque Color.
func RGB(hex uint32) Color {
	return Color{
		R: float64(hex>>16&0xff) / 255,
		G: float64(hex>>8&0xff) / 255,
		B: float64(hex&0xff) / 255,
		A: 1,
	}
}

// WithAlpha returns a copy of c with the given alpha.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Hex returns the color as 0xRRGGBB, ignoring alpha.
func (c Color) Hex() uint32 {
	r := uint32(math.Round(clamp01(c.R) * 255))
	g := uint32(math.Round(clamp01(c.G) * 255))
	b := uint32(math.Round(clamp01(c.B) * 255))
	return r<<16 | g<<8 | b
}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Dist returns the euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// WhitePixel is a 1x1 white image used by untextured meshes.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.X+r.Width, other.X+other.Width)
	y1 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Expand grows the rectangle by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// boundsBuilder accumulates points and rectangles into an enclosing Rect.
type boundsBuilder struct {
	minX, minY, maxX, maxY float64
	n                      int
}

func (b *boundsBuilder) addPoint(x, y float64) {
	if b.n == 0 {
		b.minX, b.minY, b.maxX, b.maxY = x, y, x, y
	} else {
		b.minX = math.Min(b.minX, x)
		b.minY = math.Min(b.minY, y)
		b.maxX = math.Max(b.maxX, x)
		b.maxY = math.Max(b.maxY, y)
	}
	b.n++
}

func (b *boundsBuilder) addRect(r Rect) {
	b.addPoint(r.X, r.Y)
	b.addPoint(r.X+r.Width, r.Y+r.Height)
}

func (b *boundsBuilder) rect() (Rect, bool) {
	if b.n == 0 {
		return Rect{}, false
	}
	return Rect{X: b.minX, Y: b.minY, Width: b.maxX - b.minX, Height: b.maxY - b.minY}, true
}

// ZoomLevel is the discrete level of detail derived from the camera zoom.
type ZoomLevel uint8

const (
	ZoomLow    ZoomLevel = iota // dots and cluster rings
	ZoomMedium                  // detailed glyphs
	ZoomHigh                    // detailed glyphs with background, axes and labels
)

func (z ZoomLevel) String() string {
	switch z {
	case ZoomLow:
		return "low"
	case ZoomMedium:
		return "medium"
	case ZoomHigh:
		return "high"
	default:
		return fmt.Sprintf("ZoomLevel(%d)", uint8(z))
	}
}

// Zoom limits and level thresholds.
const (
	MinZoom = 0.5
	MaxZoom = 50.0

	mediumZoomThreshold = 2.0
	highZoomThreshold   = 10.0
)

// ZoomLevelFor maps a continuous zoom value to its level of detail.
func ZoomLevelFor(zoom float64) ZoomLevel {
	switch {
	case zoom < mediumZoomThreshold:
		return ZoomLow
	case zoom < highZoomThreshold:
		return ZoomMedium
	default:
		return ZoomHigh
	}
}

// ClampZoom restricts zoom to [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return MinZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
