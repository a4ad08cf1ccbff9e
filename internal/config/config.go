package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/phanxgames/glyphscape"
)

// Config holds glyphview configuration.
type Config struct {
	Window WindowConfig `toml:"window"`
	Data   DataConfig   `toml:"data"`
	Glyph  GlyphConfig  `toml:"glyph"`
	Export ExportConfig `toml:"export"`
	Debug  DebugConfig  `toml:"debug"`
}

// WindowConfig controls the window.
type WindowConfig struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Title    string `toml:"title"`
	Canvases int    `toml:"canvases"`
}

// DataConfig selects the dataset shown at startup.
type DataConfig struct {
	Dir       string `toml:"dir"`
	Dataset   string `toml:"dataset"`
	Timestamp string `toml:"timestamp"`
	Source    string `toml:"source"` // "local", "worker"
	// ThumbnailURL serves thumbnails over HTTP instead of from Dir.
	ThumbnailURL string `toml:"thumbnail_url"`
}

// GlyphConfig controls how glyphs are drawn.
type GlyphConfig struct {
	Type        string `toml:"type"` // "star", "flower", "whisker", "thumbnail"
	Background  bool   `toml:"background"`
	Contour     bool   `toml:"contour"`
	Axes        bool   `toml:"axes"`
	Labels      bool   `toml:"labels"`
	ScaleLinear bool   `toml:"scale_linear"`
	ColorRange  bool   `toml:"color_range"`
}

// ExportConfig controls image export.
type ExportConfig struct {
	Dir   string  `toml:"dir"`
	Scale float64 `toml:"scale"`
}

// DebugConfig toggles per-frame stats logging.
type DebugConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{Width: 1280, Height: 800, Title: "glyphview", Canvases: 1},
		Data:   DataConfig{Dir: "data", Source: "local"},
		Glyph: GlyphConfig{
			Type:       "star",
			Background: true,
			Contour:    true,
			Axes:       true,
			Labels:     true,
			ColorRange: true,
		},
		Export: ExportConfig{Dir: "export", Scale: 2},
	}
}

// ConfigDir returns the glyphview config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "glyphview")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file. A missing or unreadable file yields the
// defaults.
func Load() *Config {
	cfg, err := LoadFile(Path())
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to path.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}

// GlyphConfig returns the canvas configuration the [glyph] section
// describes. An unknown glyph type falls back to star.
func (c *Config) GlyphConfig() *glyphscape.GlyphConfig {
	gc := glyphscape.DefaultGlyphConfig()
	if t, err := glyphscape.ParseGlyphType(c.Glyph.Type); err == nil {
		gc.GlyphType = t
	}
	gc.UseBackground = c.Glyph.Background
	gc.UseContour = c.Glyph.Contour
	gc.UseCoordinateSystem = c.Glyph.Axes
	gc.UseLabels = c.Glyph.Labels
	gc.ScaleLinear = c.Glyph.ScaleLinear
	gc.ColorRange = c.Glyph.ColorRange
	return gc
}

// RunConfig returns the window settings for glyphscape.Run.
func (c *Config) RunConfig() glyphscape.RunConfig {
	return glyphscape.RunConfig{
		Title:     c.Window.Title,
		Width:     c.Window.Width,
		Height:    c.Window.Height,
		Resizable: true,
		ShowFPS:   c.Debug.Enabled,
	}
}
