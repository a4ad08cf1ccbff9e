package glyphscape

import (
	"fmt"
	"math"
	"strings"
)

// GlyphType selects the detailed glyph representation drawn at medium and
// high zoom.
type GlyphType uint8

const (
	GlyphStar    GlyphType = iota // radar polygon
	GlyphFlower                   // bezier petals
	GlyphWhisker                  // radial bars
	GlyphThumb                    // thumbnail image
)

func (t GlyphType) String() string {
	switch t {
	case GlyphStar:
		return "star"
	case GlyphFlower:
		return "flower"
	case GlyphWhisker:
		return "whisker"
	case GlyphThumb:
		return "thumb"
	default:
		return fmt.Sprintf("GlyphType(%d)", uint8(t))
	}
}

// ParseGlyphType parses the lower-case name of a glyph type.
func ParseGlyphType(s string) (GlyphType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "star", "":
		return GlyphStar, nil
	case "flower":
		return GlyphFlower, nil
	case "whisker":
		return GlyphWhisker, nil
	case "thumb", "thumbnail":
		return GlyphThumb, nil
	}
	return GlyphStar, fmt.Errorf("unknown glyph type %q", s)
}

// GlyphConfig is the rendering configuration shared by all canvases that
// display the same data.
type GlyphConfig struct {
	UseCoordinateSystem bool
	UseBackground       bool
	UseContour          bool
	UseLabels           bool
	GlyphType           GlyphType
	// ScaleLinear uses raw feature values instead of dividing by the
	// glyph's local maximum.
	ScaleLinear bool
	// ColorRange selects the continuous color scale; false selects the
	// categorical one.
	ColorRange   bool
	ColorFeature string
	// ActiveFeatures lists the feature keys drawn, in axis order.
	ActiveFeatures []string
	FeatureLabels  map[string]string
	// DataDir is the folder key used to locate thumbnails ("<DataDir>/<id>.jpg").
	DataDir string
}

// DefaultGlyphConfig returns a configuration with every decoration enabled,
// star glyphs and the continuous color scale.
func DefaultGlyphConfig() *GlyphConfig {
	return &GlyphConfig{
		UseCoordinateSystem: true,
		UseBackground:       true,
		UseContour:          true,
		UseLabels:           true,
		GlyphType:           GlyphStar,
		ColorRange:          true,
		FeatureLabels:       map[string]string{},
	}
}

// Color maps a normalized feature value to the configured color scale.
func (c *GlyphConfig) Color(v float64) Color {
	if c.ColorRange {
		return RangeColor(v)
	}
	return CategoryColor(v)
}

// FeatureLabel returns the display label for a feature key, or the key itself.
func (c *GlyphConfig) FeatureLabel(key string) string {
	if l, ok := c.FeatureLabels[key]; ok && l != "" {
		return l
	}
	return key
}

// IsActive reports whether key is one of the active features.
func (c *GlyphConfig) IsActive(key string) bool {
	for _, k := range c.ActiveFeatures {
		if k == key {
			return true
		}
	}
	return false
}

// --- Color scales ---

var rangeStops = [3]Color{RGB(0x198FBD), RGB(0xF7D529), RGB(0xF7295B)}

var categoryColors = [10]Color{
	RGB(0x4f366d), RGB(0x933765), RGB(0xd08f51), RGB(0x286367), RGB(0x8BC34A),
	RGB(0xFFC107), RGB(0x2196F3), RGB(0xFF5722), RGB(0x607D8B), RGB(0xBF3330),
}

// RangeColor interpolates linearly in RGB through #198FBD, #F7D529 and
// #F7295B over the domain [0, 0.5, 1]. Values outside [0, 1] are clamped.
func RangeColor(v float64) Color {
	if math.IsNaN(v) {
		v = 0
	}
	v = clamp01(v)
	lo, hi, t := rangeStops[0], rangeStops[1], v*2
	if v > 0.5 {
		lo, hi, t = rangeStops[1], rangeStops[2], (v-0.5)*2
	}
	return Color{
		R: lo.R + (hi.R-lo.R)*t,
		G: lo.G + (hi.G-lo.G)*t,
		B: lo.B + (hi.B-lo.B)*t,
		A: 1,
	}
}

// CategoryColor quantizes [0, 1] into ten discrete colors.
func CategoryColor(v float64) Color {
	if math.IsNaN(v) {
		v = 0
	}
	i := int(math.Floor(clamp01(v) * float64(len(categoryColors))))
	if i >= len(categoryColors) {
		i = len(categoryColors) - 1
	}
	return categoryColors[i]
}
