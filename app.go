package glyphscape

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig holds optional configuration for Run.
type RunConfig struct {
	// Title sets the window title.
	Title string
	// Width and Height set the window size in device-independent pixels.
	Width, Height int
	// TPS sets the ticks per second. Zero keeps ebiten's default of 60.
	TPS int
	// ShowFPS draws the FPS and TPS in the top-left corner.
	ShowFPS bool
	// Resizable lets the user resize the window; canvases follow.
	Resizable bool
}

// AppOptions configures NewApp.
type AppOptions struct {
	// Canvases is the number of side-by-side canvases (minimum 1).
	Canvases    int
	Config      *GlyphConfig
	Registry    *FilterRegistry
	Bus         *CommandBus
	Thumbnails  ThumbnailLoader
	ExportDir   string
	ExportScale float64
	Debug       bool
}

// App is the ebiten game that hosts the canvases. All canvases share the
// glyph config, the filter registry and the command bus.
type App struct {
	canvases []*Canvas
	cfg      *GlyphConfig
	registry *FilterRegistry
	bus      *CommandBus

	width, height int
	showFPS       bool
	fpsTimer      int
	fpsText       string

	quitWhenDone bool
	quit         bool
}

// NewApp creates the canvases. They get their viewports from Layout.
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		opts.Config = DefaultGlyphConfig()
	}
	if opts.Registry == nil {
		opts.Registry = NewFilterRegistry()
	}
	if opts.Bus == nil {
		opts.Bus = NewCommandBus()
	}
	n := max(opts.Canvases, 1)
	a := &App{cfg: opts.Config, registry: opts.Registry, bus: opts.Bus}
	for range n {
		c := NewCanvas(CanvasOptions{
			Config:      opts.Config,
			Registry:    opts.Registry,
			Bus:         opts.Bus,
			Thumbnails:  opts.Thumbnails,
			ExportDir:   opts.ExportDir,
			ExportScale: opts.ExportScale,
		})
		c.SetDebugMode(opts.Debug)
		a.canvases = append(a.canvases, c)
	}
	return a
}

// Canvases returns the hosted canvases, left to right.
func (a *App) Canvases() []*Canvas { return a.canvases }

// Bus returns the shared command bus.
func (a *App) Bus() *CommandBus { return a.bus }

// Registry returns the shared filter registry.
func (a *App) Registry() *FilterRegistry { return a.registry }

// Config returns the shared glyph config.
func (a *App) Config() *GlyphConfig { return a.cfg }

// SetData announces a loaded dataset to every canvas. Canvases pick it up
// on their next Update.
func (a *App) SetData(glyphs []*Glyph, timestamps, algorithms []string) {
	a.bus.Publish(Message{
		Event: EventDatasetLoaded,
		Data:  &LoadedData{Glyphs: glyphs, Timestamps: timestamps, Algorithms: algorithms},
	})
}

// ConfigChanged tells every canvas that the shared glyph config changed.
func (a *App) ConfigChanged() {
	a.bus.Emit(EventConfigChanged, nil)
}

// RunScript attaches r to the first canvas. With quit set the app exits
// once every attached script is done.
func (a *App) RunScript(r *ScriptRunner, quit bool) {
	a.canvases[0].SetScript(r)
	a.quitWhenDone = quit
}

// Quit ends the game loop after the current Update.
func (a *App) Quit() { a.quit = true }

// Update implements ebiten.Game.
func (a *App) Update() error {
	for _, c := range a.canvases {
		c.Update()
	}
	if a.quitWhenDone && a.scriptsDone() {
		a.quit = true
	}
	if a.quit {
		return ebiten.Termination
	}
	return nil
}

func (a *App) scriptsDone() bool {
	for _, c := range a.canvases {
		if c.script != nil && !c.script.Done() {
			return false
		}
	}
	return true
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(clearColor)
	for _, c := range a.canvases {
		c.Draw(screen)
	}
	if a.showFPS {
		a.drawFPS(screen)
	}
}

// Layout implements ebiten.Game. Canvases are resized when the outside
// size changes.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.width || outsideHeight != a.height {
		a.layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (a *App) layout(w, h int) {
	a.width, a.height = w, h
	for i, r := range splitViewports(float64(w), float64(h), len(a.canvases)) {
		a.canvases[i].Resize(r)
	}
}

// splitViewports divides a w×h screen into n equal columns.
func splitViewports(w, h float64, n int) []Rect {
	if n <= 0 {
		return nil
	}
	out := make([]Rect, n)
	cw := w / float64(n)
	for i := range out {
		out[i] = Rect{X: float64(i) * cw, Y: 0, Width: cw, Height: h}
	}
	return out
}

// drawFPS prints the current FPS and TPS, refreshed about twice a second.
func (a *App) drawFPS(screen *ebiten.Image) {
	a.fpsTimer--
	if a.fpsTimer <= 0 {
		a.fpsTimer = max(ebiten.TPS()/2, 1)
		a.fpsText = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	fillRect(screen, Rect{Width: 100, Height: 32}, Color{A: 0.5})
	ebitenutil.DebugPrint(screen, a.fpsText)
}

// Dispose releases every canvas.
func (a *App) Dispose() {
	for _, c := range a.canvases {
		c.Dispose()
	}
}

// Run opens a window and runs the app until the window closes or the app
// quits.
func Run(app *App, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetScreenClearedEveryFrame(true)
	app.showFPS = cfg.ShowFPS
	app.layout(cfg.Width, cfg.Height)
	defer app.Dispose()
	return ebiten.RunGame(app)
}

var _ ebiten.Game = (*App)(nil)

// clearColor is the window color behind the canvases.
var clearColor = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
