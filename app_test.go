package glyphscape

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestSplitViewports(t *testing.T) {
	got := splitViewports(900, 600, 3)
	want := []Rect{
		{X: 0, Width: 300, Height: 600},
		{X: 300, Width: 300, Height: 600},
		{X: 600, Width: 300, Height: 600},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("viewport %d = %v, want %v", i, got[i], want[i])
		}
	}
	if splitViewports(100, 100, 0) != nil {
		t.Error("zero canvases should give no viewports")
	}
}

func TestNewAppSharesState(t *testing.T) {
	app := NewApp(AppOptions{Canvases: 2})
	cs := app.Canvases()
	if len(cs) != 2 {
		t.Fatalf("canvases = %d, want 2", len(cs))
	}
	for _, c := range cs {
		if c.cfg != app.Config() || c.registry != app.Registry() || c.bus != app.Bus() {
			t.Error("canvas does not share the app state")
		}
	}
	if cs[0].ID() == cs[1].ID() {
		t.Error("canvases share an id")
	}
	if n := len(NewApp(AppOptions{}).Canvases()); n != 1 {
		t.Errorf("default canvases = %d, want 1", n)
	}
}

func TestAppLayoutResizesCanvases(t *testing.T) {
	app := NewApp(AppOptions{Canvases: 2})
	w, h := app.Layout(1000, 500)
	if w != 1000 || h != 500 {
		t.Errorf("Layout = %d×%d", w, h)
	}
	if vp := app.Canvases()[1].Viewport(); vp != (Rect{X: 500, Width: 500, Height: 500}) {
		t.Errorf("second viewport = %v", vp)
	}
	if r := app.Canvases()[0].SizeInfo().RadiusAt(ZoomLow); !approxEqual(r, 500.0/sizeReferenceDim*2, 1e-9) {
		t.Errorf("low radius = %v", r)
	}
}

func TestAppSetDataReachesEveryCanvas(t *testing.T) {
	app := NewApp(AppOptions{Canvases: 2})
	app.Layout(1600, 600)
	app.SetData(cornerGlyphs(), []string{"t0"}, []string{"umap"})
	for _, c := range app.Canvases() {
		c.InjectHover(0, 0)
	}
	if err := app.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	for i, c := range app.Canvases() {
		if len(c.Glyphs()) != 4 || c.Root().NumChildren() != 4 {
			t.Errorf("canvas %d: %d glyphs, %d meshes", i, len(c.Glyphs()), c.Root().NumChildren())
		}
	}
}

func TestAppQuit(t *testing.T) {
	app := NewApp(AppOptions{})
	app.Layout(400, 300)
	app.Canvases()[0].InjectHover(0, 0)
	app.Quit()
	if err := app.Update(); err != ebiten.Termination {
		t.Errorf("Update = %v, want Termination", err)
	}
}

func TestAppQuitsWhenScriptDone(t *testing.T) {
	app := NewApp(AppOptions{})
	app.Layout(400, 300)
	r, err := LoadScript([]byte(`{"steps":[{"action":"key","key":"a"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	app.RunScript(r, true)

	var last error
	for i := 0; i < 10 && last == nil; i++ {
		last = app.Update()
	}
	if last != ebiten.Termination {
		t.Errorf("Update = %v, want Termination after the script", last)
	}
	if !app.Canvases()[0].Aggregated() {
		t.Error("script key was not delivered")
	}
}
