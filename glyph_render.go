package glyphscape

import (
	"math"
)

// Geometry constants for detailed glyphs.
const (
	lowCircleSegments  = 32
	backgroundSegments = 64
	petalSteps         = 12
	fillAlpha          = 0.6
	contourAlpha       = 0.9
	whiskerAlpha       = 0.8
	whiskerWidth       = 0.8
	petalWidthRatio    = 0.4
	labelSizeRatio     = 0.3
)

// RenderParams carries everything a glyph needs to build its mesh.
type RenderParams struct {
	Size   *SizeInfo
	Config *GlyphConfig
	Cache  *RenderCache
	// Clustered is true while aggregation is active on the canvas.
	Clustered bool
	// Thumbnails loads images for GlyphThumb. Nil leaves the placeholder.
	Thumbnails ThumbnailLoader
}

// Render builds the glyph's mesh node at the cache position for the size
// info's current level. It returns nil when the glyph is suppressed by
// clustering or the cache has no valid position.
func (g *Glyph) Render(p RenderParams) *Node {
	c := p.Cache
	if c == nil || !c.Valid {
		return nil
	}

	var n *Node
	if p.Size.Level() == ZoomLow {
		if p.Clustered && c.Clustered && !c.Representative {
			return nil
		}
		n = g.renderDot(p)
	} else {
		switch p.Config.GlyphType {
		case GlyphThumb:
			n = g.renderThumb(p)
		default:
			n = g.renderDetailed(p)
		}
	}

	n.Name = g.ID
	n.X, n.Y = c.X, c.Y
	n.RenderOrder = g.RenderOrder()
	return n
}

func (g *Glyph) renderDot(p RenderParams) *Node {
	var b meshBuilder
	r := p.Size.Radius()
	col := g.CurrentColor(p.Config, false)
	if p.Clustered && p.Cache.Representative {
		b.ring(0, 0, r-1, r, lowCircleSegments, col)
	} else {
		b.circle(0, 0, r, lowCircleSegments, col)
	}
	return b.node(g.ID)
}

// renderDetailed draws the star, flower and whisker representations with
// their shared background, axes and placeholder.
func (g *Glyph) renderDetailed(p RenderParams) *Node {
	var b meshBuilder
	cfg := p.Config
	size := p.Size
	r := size.Radius()
	high := size.Level() == ZoomHigh

	if high && cfg.UseBackground {
		bg := backgroundColor
		if g.Highlighted {
			bg = highlightColor
		}
		b.circle(0, 0, r, backgroundSegments, bg)
	}

	fc, ok := g.featureContext(cfg)
	if ok {
		segments := len(fc.keys)
		if high && cfg.UseCoordinateSystem {
			lw := size.Contour() / 3
			for i := 0; i < segments; i++ {
				angle := float64(i) / float64(segments) * 2 * math.Pi
				b.rotatedRect(0, r/2, lw, r, angle-math.Pi/2, axesColor)
			}
		}

		if fc.allNearZero() {
			b.circle(0, 0, size.RadiusAt(ZoomLow)/4, lowCircleSegments, g.CurrentColor(cfg, true).WithAlpha(fillAlpha))
		} else {
			col := g.CurrentColor(cfg, high)
			switch cfg.GlyphType {
			case GlyphFlower:
				g.buildFlower(&b, fc, r, size.Contour(), cfg, col)
			case GlyphWhisker:
				g.buildWhisker(&b, fc, r, cfg, col)
			default:
				g.buildStar(&b, fc, r, size.Contour(), cfg, col)
			}
		}
	}

	if high && cfg.UseBackground && cfg.UseContour {
		b.ring(0, 0, r-r*0.01, r, backgroundSegments, contourColor)
	}

	b.flipY()
	n := b.node(g.ID)
	if high && cfg.UseLabels {
		ts := r * labelSizeRatio
		label := NewLabel(g.ID+"/label", g.ID, ts, labelColor)
		label.Y = r + ts*0.2
		n.AddChild(label)
	}
	return n
}

func (g *Glyph) buildStar(b *meshBuilder, fc featureContext, r, contour float64, cfg *GlyphConfig, col Color) {
	segments := len(fc.keys)
	points := make([]Vec2, segments)
	for i, v := range fc.values {
		angle := float64(i) / float64(segments) * 2 * math.Pi
		norm := fc.normalize(v, cfg.ScaleLinear)
		points[i] = Vec2{math.Cos(angle) * r * norm, math.Sin(angle) * r * norm}
	}
	b.fan(Vec2{}, points, col.WithAlpha(fillAlpha))
	if cfg.UseContour {
		b.polyline(points, contour, true, col.WithAlpha(contourAlpha))
	}
}

func (g *Glyph) buildFlower(b *meshBuilder, fc featureContext, r, contour float64, cfg *GlyphConfig, col Color) {
	segments := len(fc.keys)
	for i, v := range fc.values {
		if v <= 0 {
			continue
		}
		length := r * fc.normalize(v, cfg.ScaleLinear)
		w := length * petalWidthRatio

		outline := cubicBezier(nil,
			Vec2{0, 0}, Vec2{w * 0.25, -length * 0.3}, Vec2{w * 0.6, -length * 0.75}, Vec2{0, -length},
			petalSteps)
		outline = cubicBezier(outline,
			Vec2{0, -length}, Vec2{-w * 0.6, -length * 0.75}, Vec2{-w * 0.25, -length * 0.3}, Vec2{0, 0},
			petalSteps)
		// Drop the duplicated tip and the closing point.
		outline = append(outline[:petalSteps], outline[petalSteps+1:len(outline)-1]...)
		hub := []Vec2{{0, -length / 2}}

		angle := float64(i)/float64(segments)*2*math.Pi - 3*math.Pi/2
		rotatePoints(outline, angle)
		rotatePoints(hub, angle)

		b.fan(hub[0], outline, col.WithAlpha(fillAlpha))
		if cfg.UseContour {
			b.polyline(outline, contour, true, col.WithAlpha(contourAlpha))
		}
	}
}

func (g *Glyph) buildWhisker(b *meshBuilder, fc featureContext, r float64, cfg *GlyphConfig, col Color) {
	segments := len(fc.keys)
	for i, v := range fc.values {
		if v <= 0 {
			continue
		}
		length := r * fc.normalize(v, cfg.ScaleLinear)
		angle := float64(i)/float64(segments)*2*math.Pi - 3*math.Pi/2
		b.rotatedRect(0, -length/2, whiskerWidth, length, angle, col.WithAlpha(whiskerAlpha))
	}
}

// renderThumb draws a placeholder quad and, when a loader is available,
// requests the glyph's thumbnail. The canvas swaps the texture in once the
// image arrives.
func (g *Glyph) renderThumb(p RenderParams) *Node {
	r := p.Size.Radius()
	n := NewMesh(g.ID, placeholderTexture(), nil, nil)
	n.setQuad(r*2, r*2)
	if p.Thumbnails != nil {
		file := thumbnailFile(p.Config.DataDir, g.ID)
		n.thumb = &thumbRequest{
			file:   file,
			ch:     p.Thumbnails.Thumbnail(file),
			maxDim: r * 3,
		}
	}
	return n
}
