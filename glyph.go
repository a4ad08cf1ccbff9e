package glyphscape

import "sort"

// DefaultContext is the feature context used when a glyph names none.
const DefaultContext = "1"

// Glyph colors.
var (
	highlightColor  = RGB(0xe3ccd3)
	passiveColor    = RGB(0xe0e0e0)
	fallbackColor   = RGB(0x00cc88)
	axesColor       = RGB(0xa0a0a0)
	backgroundColor = RGB(0xf0f0f0)
	contourColor    = RGB(0xcccccc)
	labelColor      = RGB(0x333333)
)

// Glyph is one data item: its feature vectors, display values and layout
// positions. A Glyph holds no render state; each canvas keeps its own
// RenderCache per glyph.
type Glyph struct {
	ID string
	// Features maps context id → feature key → normalized value.
	Features map[string]map[string]float64
	// Values holds the raw display values by column name.
	Values map[string]string

	DefaultContext string
	CurrentContext string

	Highlighted bool
	Passive     bool
	InLens      bool

	positions map[string]map[string]Vec2
}

// NewGlyph creates an empty glyph in the default context.
func NewGlyph(id string) *Glyph {
	return &Glyph{
		ID:             id,
		Features:       map[string]map[string]float64{},
		Values:         map[string]string{},
		DefaultContext: DefaultContext,
		CurrentContext: DefaultContext,
		positions:      map[string]map[string]Vec2{},
	}
}

// SetPosition records the base position for a (timestamp, algorithm) pair.
// A position is immutable once loaded: later calls for the same pair are
// ignored and report false.
func (g *Glyph) SetPosition(timestamp, algorithm string, p Vec2) bool {
	byAlgo := g.positions[timestamp]
	if byAlgo == nil {
		byAlgo = map[string]Vec2{}
		g.positions[timestamp] = byAlgo
	}
	if _, ok := byAlgo[algorithm]; ok {
		return false
	}
	byAlgo[algorithm] = p
	return true
}

// Position returns the base position for a (timestamp, algorithm) pair.
func (g *Glyph) Position(timestamp, algorithm string) (Vec2, bool) {
	p, ok := g.positions[timestamp][algorithm]
	return p, ok
}

// Timestamps returns the timestamps the glyph has positions for, sorted.
func (g *Glyph) Timestamps() []string {
	out := make([]string, 0, len(g.positions))
	for ts := range g.positions {
		out = append(out, ts)
	}
	sort.Strings(out)
	return out
}

// Feature returns the value of key in the glyph's current context.
func (g *Glyph) Feature(key string) (float64, bool) {
	v, ok := g.Features[g.CurrentContext][key]
	return v, ok
}

// SetHighlighted sets the highlight flag and reports whether it changed.
func (g *Glyph) SetHighlighted(h bool) bool {
	if g.Highlighted == h {
		return false
	}
	g.Highlighted = h
	return true
}

// DataColor returns the color the configured scale assigns to the glyph's
// color feature, or the fallback color when the glyph has no features.
func (g *Glyph) DataColor(cfg *GlyphConfig) Color {
	if len(g.Features) == 0 {
		return fallbackColor
	}
	v := g.Features[g.CurrentContext][cfg.ColorFeature]
	return cfg.Color(v)
}

// CurrentColor applies the color precedence: highlighted, then passive,
// then the data color. trueColor skips the state colors.
func (g *Glyph) CurrentColor(cfg *GlyphConfig, trueColor bool) Color {
	if !trueColor {
		if g.Highlighted {
			return highlightColor
		}
		if g.Passive {
			return passiveColor
		}
	}
	return g.DataColor(cfg)
}

// RenderOrder returns the draw order for the glyph's node: passive glyphs
// draw beneath active ones.
func (g *Glyph) RenderOrder() int {
	if g.Passive {
		return 1
	}
	return 99
}

// featureContext is the subset of the current context's features that are
// active, in active-feature order.
type featureContext struct {
	keys   []string
	values []float64
	max    float64
}

func (g *Glyph) featureContext(cfg *GlyphConfig) (featureContext, bool) {
	if len(g.Features) == 0 {
		return featureContext{}, false
	}
	fm := g.Features[g.CurrentContext]
	var fc featureContext
	for _, k := range cfg.ActiveFeatures {
		v, ok := fm[k]
		if !ok {
			continue
		}
		fc.keys = append(fc.keys, k)
		fc.values = append(fc.values, v)
		if len(fc.values) == 1 || v > fc.max {
			fc.max = v
		}
	}
	if fc.max <= 0 {
		fc.max = 1
	}
	return fc, true
}

// normalize applies the configured scale mode to v.
func (fc featureContext) normalize(v float64, linear bool) float64 {
	if linear {
		return v
	}
	return v / fc.max
}

// allNearZero reports whether every value is at most 0.001.
func (fc featureContext) allNearZero() bool {
	for _, v := range fc.values {
		if v > 0.001 {
			return false
		}
	}
	return true
}
