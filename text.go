package glyphscape

import (
	"bytes"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// labelFaceSource is the shared font used for glyph labels, tooltips and the
// settings overlay. Loaded on first use.
var labelFaceSource *text.GoTextFaceSource

func ensureFaceSource() *text.GoTextFaceSource {
	if labelFaceSource == nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			panic("glyphscape: load label font: " + err.Error())
		}
		labelFaceSource = src
	}
	return labelFaceSource
}

func labelFace(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: ensureFaceSource(), Size: size}
}

// measureText returns the pixel width and height of s at the given size.
func measureText(s string, size float64) (w, h float64) {
	return text.Measure(s, labelFace(size), size*1.2)
}

// drawLabel draws s centered on the transformed origin of m. The face is
// rasterized at the transformed scale so labels stay sharp when zoomed.
func drawLabel(dst *ebiten.Image, s string, size float64, m [6]float64, c Color) {
	scale := math.Hypot(m[0], m[1])
	px := size * scale
	if px < 1 {
		return
	}
	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.GeoM.Translate(m[4], m[5])
	op.ColorScale.ScaleWithColor(c.toRGBA())
	text.Draw(dst, s, labelFace(px), op)
}

// drawText draws s with its top-left corner at (x, y) in screen space.
func drawText(dst *ebiten.Image, s string, size, x, y float64, c Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.LineSpacing = size * 1.2
	op.ColorScale.ScaleWithColor(c.toRGBA())
	text.Draw(dst, s, labelFace(size), op)
}
