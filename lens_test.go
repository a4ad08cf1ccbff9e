package glyphscape

import "testing"

func TestLensPlacement(t *testing.T) {
	l := NewMagicLens(NewSizeInfo(), nil)
	tests := []struct {
		name   string
		cursor Vec2
		host   Rect
		want   Vec2
	}{
		{"below right", Vec2{100, 100}, Rect{Width: 800, Height: 600}, Vec2{110, 110}},
		{"flip both", Vec2{700, 500}, Rect{Width: 800, Height: 600}, Vec2{440, 240}},
		{"clamped to origin", Vec2{100, 200}, Rect{Width: 300, Height: 300}, Vec2{0, 0}},
		{"host offset", Vec2{150, 150}, Rect{X: 50, Y: 50, Width: 800, Height: 600}, Vec2{160, 160}},
	}
	for _, tt := range tests {
		if got := l.Placement(tt.cursor, tt.host); got != tt.want {
			t.Errorf("%s: Placement = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLensSizeInfo(t *testing.T) {
	base := NewSizeInfo()
	base.Update(900, 900)
	l := NewMagicLens(base, nil)
	s := l.SizeInfo()
	if s.Level() != ZoomHigh {
		t.Errorf("lens level = %v, want high", s.Level())
	}
	want := base.RadiusAt(ZoomHigh) * lensMagnification
	if !approxEqual(s.Radius(), want, epsilon) {
		t.Errorf("lens radius = %v, want %v", s.Radius(), want)
	}
	if s.HitTolerance() != s.Radius() {
		t.Errorf("hit tolerance = %v, want radius %v", s.HitTolerance(), s.Radius())
	}
	if base.Level() != ZoomLow {
		t.Error("SetSizeInfo changed the canvas size info")
	}
}

func TestLensToggle(t *testing.T) {
	l := NewMagicLens(NewSizeInfo(), nil)
	l.Toggle(Vec2{}, true)
	if !l.Active() {
		t.Fatal("not active after toggle")
	}
	l.ToggleFix(true)
	if !l.Fixed() {
		t.Error("not fixed")
	}
	l.Toggle(Vec2{}, false)
	if l.Active() {
		t.Error("toggle false left the lens on")
	}
	l.ToggleFix(false)
	if l.Fixed() {
		t.Error("ToggleFix(false) left the lens fixed")
	}
}

type lensFixture struct {
	cam    *Camera
	caches *CacheStore
	nodes  []*Node
	glyphs map[*Node]*Glyph
	cfg    *GlyphConfig
}

func newLensFixture() *lensFixture {
	f := &lensFixture{
		cam:    NewCamera(Rect{Width: 200, Height: 200}),
		caches: NewCacheStore(),
		glyphs: map[*Node]*Glyph{},
		cfg:    DefaultGlyphConfig(),
	}
	f.cfg.ActiveFeatures = []string{"a", "b", "c"}
	for i, p := range []Vec2{{0, 0}, {5, 0}, {60, 60}} {
		g := featureGlyph(string(rune('a'+i)), map[string]float64{"a": 0.5, "b": 0.7, "c": 0.2}, nil)
		g.SetPosition("t0", "umap", p)
		c := f.caches.Get(g, "t0", "umap")
		n := NewContainer(g.ID)
		n.X, n.Y = c.X, c.Y
		f.nodes = append(f.nodes, n)
		f.glyphs[n] = g
	}
	return f
}

func (f *lensFixture) glyphOf(n *Node) *Glyph { return f.glyphs[n] }

func TestLensUpdateCollectsNearCursor(t *testing.T) {
	f := newLensFixture()
	l := NewMagicLens(NewSizeInfo(), nil)

	if l.Update(Vec2{100, 100}, f.nodes, f.cam, f.glyphOf) {
		t.Error("inactive lens reported a change")
	}

	l.Toggle(Vec2{}, true)
	if !l.Update(Vec2{100, 100}, f.nodes, f.cam, f.glyphOf) {
		t.Fatal("first Update reported no change")
	}
	got := l.Glyphs()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Glyphs = %d, want [a b]", len(got))
	}
	if l.Update(Vec2{101, 100}, f.nodes, f.cam, f.glyphOf) {
		t.Error("same set reported a change")
	}
	if !l.Update(Vec2{160, 160}, f.nodes, f.cam, f.glyphOf) {
		t.Error("new set reported no change")
	}
	if got := l.Glyphs(); len(got) != 1 || got[0].ID != "c" {
		t.Errorf("Glyphs after move = %d", len(got))
	}
}

func TestLensRebuild(t *testing.T) {
	f := newLensFixture()
	bus := NewCommandBus()
	sub := bus.Subscribe()
	base := NewSizeInfo()
	base.Update(900, 900)
	l := NewMagicLens(base, bus)
	l.Toggle(Vec2{}, true)
	l.Update(Vec2{100, 100}, f.nodes, f.cam, f.glyphOf)

	l.Rebuild(LensSource{Config: f.cfg, Caches: f.caches}, false)
	if l.Builds() != 1 {
		t.Errorf("Builds = %d, want 1", l.Builds())
	}
	if l.group.NumChildren() != 2 {
		t.Fatalf("lens shows %d glyphs, want 2", l.group.NumChildren())
	}
	for _, g := range l.Glyphs() {
		if !g.InLens || !l.Contains(g) {
			t.Errorf("%s not marked in lens", g.ID)
		}
	}
	if n := len(sub.Drain()); n != 2 {
		t.Errorf("redraw events = %d, want 2", n)
	}

	// The collide force spreads the two glyphs to about two lens radii.
	w := l.group.Children()
	d := w[0].WorldPosition().Dist(w[1].WorldPosition())
	if d < l.SizeInfo().Radius() {
		t.Errorf("lens glyphs %v apart, want spread by the collide force", d)
	}

	mesh := l.meshes["a"]
	l.Rebuild(LensSource{Config: f.cfg, Caches: f.caches}, false)
	if l.meshes["a"] != mesh {
		t.Error("Rebuild without force re-rendered the mesh")
	}
	l.Rebuild(LensSource{Config: f.cfg, Caches: f.caches}, true)
	if l.meshes["a"] == mesh {
		t.Error("forced Rebuild kept the old mesh")
	}
	if l.group.NumChildren() != 2 {
		t.Errorf("lens shows %d glyphs after rebuild, want 2", l.group.NumChildren())
	}

	glyphs := l.Glyphs()
	l.Toggle(Vec2{}, true)
	if l.Active() || len(l.Glyphs()) != 0 || l.group.NumChildren() != 0 {
		t.Error("turning the lens off did not clear it")
	}
	for _, g := range glyphs {
		if g.InLens {
			t.Errorf("%s still marked in lens", g.ID)
		}
	}
}

func TestLensHitTestOutside(t *testing.T) {
	l := NewMagicLens(NewSizeInfo(), nil)
	host := Rect{Width: 800, Height: 600}
	if l.HitTest(120, 120, host) != nil {
		t.Error("inactive lens hit")
	}
	l.Toggle(Vec2{100, 100}, true)
	if l.HitTest(50, 50, host) != nil {
		t.Error("point outside the lens hit")
	}
}

func TestLensDispose(t *testing.T) {
	f := newLensFixture()
	l := NewMagicLens(NewSizeInfo(), nil)
	l.Toggle(Vec2{}, true)
	l.ToggleFix(true)
	l.Update(Vec2{100, 100}, f.nodes, f.cam, f.glyphOf)
	l.Rebuild(LensSource{Config: f.cfg, Caches: f.caches}, false)
	l.Dispose()
	if l.Active() || l.Fixed() || len(l.meshes) != 0 {
		t.Error("Dispose left lens state")
	}
}

func TestLensUpdateReleasesMeshesOfLeavingGlyphs(t *testing.T) {
	f := newLensFixture()
	l := NewMagicLens(NewSizeInfo(), nil)
	src := LensSource{Config: f.cfg, Caches: f.caches}
	l.Toggle(Vec2{}, true)

	l.Update(Vec2{100, 100}, f.nodes, f.cam, f.glyphOf)
	l.Rebuild(src, false)
	if len(l.meshes) != 2 {
		t.Fatalf("cached meshes = %d, want 2", len(l.meshes))
	}
	old := l.meshes["a"]

	l.Update(Vec2{160, 160}, f.nodes, f.cam, f.glyphOf)
	if _, ok := l.meshes["a"]; ok || len(l.meshes) != 0 {
		t.Errorf("cached meshes after the set changed = %d, want 0", len(l.meshes))
	}
	if !old.IsDisposed() {
		t.Error("mesh of a glyph that left the lens was not disposed")
	}
	l.Rebuild(src, false)
	if _, ok := l.meshes["c"]; !ok || len(l.meshes) != 1 {
		t.Errorf("cached meshes = %d, want only c", len(l.meshes))
	}

	// Sweeping back and forth keeps the cache bounded by the lens set.
	for i := 0; i < 5; i++ {
		l.Update(Vec2{100, 100}, f.nodes, f.cam, f.glyphOf)
		l.Rebuild(src, false)
		l.Update(Vec2{160, 160}, f.nodes, f.cam, f.glyphOf)
		l.Rebuild(src, false)
	}
	if len(l.meshes) != 1 {
		t.Errorf("cached meshes after sweeping = %d, want 1", len(l.meshes))
	}
}

func TestLensRebuildRerendersChangedGlyphs(t *testing.T) {
	f := newLensFixture()
	l := NewMagicLens(NewSizeInfo(), nil)
	src := LensSource{Config: f.cfg, Caches: f.caches}
	l.Toggle(Vec2{}, true)
	l.Update(Vec2{100, 100}, f.nodes, f.cam, f.glyphOf)
	l.Rebuild(src, false)

	a, b := l.meshes["a"], l.meshes["b"]
	l.Glyphs()[0].Passive = true
	l.Rebuild(src, false)
	if l.meshes["a"] == a || !a.IsDisposed() {
		t.Error("passive change did not re-render the lens mesh")
	}
	if l.meshes["b"] != b {
		t.Error("unchanged glyph was re-rendered")
	}

	a = l.meshes["a"]
	l.Glyphs()[0].SetHighlighted(true)
	l.Rebuild(src, false)
	if l.meshes["a"] == a {
		t.Error("highlight change did not re-render the lens mesh")
	}
}
