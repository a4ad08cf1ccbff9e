package glyphscape

import (
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	tooltipOffset   = 10.0
	tooltipFontSize = 13.0
	tooltipPadding  = 6.0
	tooltipMaxWidth = 300.0
	tooltipColGap   = 10.0
)

var (
	tooltipBackground = RGB(0xffffff).WithAlpha(0.95)
	tooltipBorder     = RGB(0x999999)
	tooltipFixedColor = RGB(0x1e88e5)
	tooltipText       = RGB(0x222222)
)

// TooltipRow is one label/value line of a tooltip.
type TooltipRow struct {
	Label string
	Value string
}

// Tooltip shows a glyph's display values near the pointer. A fixed tooltip
// stays open while the pointer moves on.
type Tooltip struct {
	Title   string
	Rows    []TooltipRow
	X, Y    float64
	visible bool
	fixed   bool
	glyphID string
}

// Visible reports whether the tooltip is shown.
func (t *Tooltip) Visible() bool { return t.visible }

// Fixed reports whether the tooltip is pinned.
func (t *Tooltip) Fixed() bool { return t.fixed }

// GlyphID returns the id of the glyph the tooltip describes.
func (t *Tooltip) GlyphID() string { return t.glyphID }

// ToggleFixation flips the pinned state; with toggle false it unpins.
func (t *Tooltip) ToggleFixation(toggle bool) {
	t.fixed = !t.fixed && toggle
}

// Hide closes the tooltip. A fixed tooltip stays fixed.
func (t *Tooltip) Hide() {
	t.visible = false
}

// Show fills the tooltip from g and places it next to the cursor inside
// host.
func (t *Tooltip) Show(g *Glyph, cfg *GlyphConfig, cursorX, cursorY float64, host Rect) {
	t.Title = fmt.Sprintf("Item: %s", g.ID)
	t.Rows = tooltipRows(g, cfg)
	t.glyphID = g.ID
	t.visible = true
	w, h := t.Size()
	t.X, t.Y = placeTooltip(cursorX, cursorY, w, h, host)
}

func tooltipRows(g *Glyph, cfg *GlyphConfig) []TooltipRow {
	keys := make([]string, 0, len(g.Values))
	for k := range g.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]TooltipRow, len(keys))
	for i, k := range keys {
		label := k
		if cfg != nil {
			label = cfg.FeatureLabel(k)
		}
		rows[i] = TooltipRow{Label: label, Value: g.Values[k]}
	}
	return rows
}

func (t *Tooltip) lineHeight() float64 { return tooltipFontSize * 1.2 }

func (t *Tooltip) labelWidth() float64 {
	var lw float64
	for _, r := range t.Rows {
		w, _ := measureText(r.Label, tooltipFontSize)
		lw = max(lw, w)
	}
	return min(lw, tooltipMaxWidth*0.4)
}

// Size returns the rendered width and height of the tooltip.
func (t *Tooltip) Size() (w, h float64) {
	tw, _ := measureText(t.Title, tooltipFontSize)
	lw := t.labelWidth()
	var vw float64
	for _, r := range t.Rows {
		w, _ := measureText(r.Value, tooltipFontSize)
		vw = max(vw, w)
	}
	w = max(tw, lw+tooltipColGap+vw)
	w = min(w, tooltipMaxWidth) + tooltipPadding*2
	h = float64(len(t.Rows)+1)*t.lineHeight() + tooltipPadding*2
	return w, h
}

// placeTooltip offsets the tooltip from the cursor, clamps it horizontally
// to host, flips it above the cursor when there is no room below and
// clamps it vertically.
func placeTooltip(cursorX, cursorY, w, h float64, host Rect) (x, y float64) {
	x = cursorX + tooltipOffset
	y = cursorY + tooltipOffset

	if right := host.X + host.Width - w; x > right {
		x = right
	}
	if x < host.X {
		x = host.X
	}

	bottom := host.Y + host.Height
	if cursorY-host.Y > h+tooltipOffset && bottom-cursorY < h+tooltipOffset {
		y = cursorY - h - tooltipOffset
	}

	if maxY := bottom - h; y > maxY {
		y = maxY
	}
	if y < host.Y {
		y = host.Y
	}
	return x, y
}

// Draw renders the tooltip onto dst in screen space.
func (t *Tooltip) Draw(dst *ebiten.Image) {
	if !t.visible {
		return
	}
	w, h := t.Size()
	border := tooltipBorder
	if t.fixed {
		border = tooltipFixedColor
	}
	fillRect(dst, Rect{X: t.X - 1, Y: t.Y - 1, Width: w + 2, Height: h + 2}, border)
	fillRect(dst, Rect{X: t.X, Y: t.Y, Width: w, Height: h}, tooltipBackground)

	x := t.X + tooltipPadding
	y := t.Y + tooltipPadding
	lh := t.lineHeight()
	drawText(dst, t.Title, tooltipFontSize, x, y, tooltipText)
	lw := t.labelWidth()
	for i, r := range t.Rows {
		ry := y + float64(i+1)*lh
		drawText(dst, r.Label, tooltipFontSize, x, ry, tooltipText.WithAlpha(0.7))
		drawText(dst, r.Value, tooltipFontSize, x+lw+tooltipColGap, ry, tooltipText)
	}
}

// fillRect fills r on dst with c.
func fillRect(dst *ebiten.Image, r Rect, c Color) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.Width, r.Height)
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	dst.DrawImage(WhitePixel, op)
}
