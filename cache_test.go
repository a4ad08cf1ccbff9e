package glyphscape

import "testing"

func TestCacheStoreGet(t *testing.T) {
	s := NewCacheStore()
	g := glyphAt("a", 3, 4)
	c := s.Get(g, "t0", "umap")
	if !c.Valid || c.Position != (Vec2{3, 4}) || c.X != 3 || c.Y != 4 {
		t.Errorf("cache = %+v", c)
	}
	if !c.Visible {
		t.Error("new cache not visible")
	}
	if s.Get(g, "t0", "umap") != c {
		t.Error("Get created a second cache")
	}
	if got, ok := s.Lookup("a"); !ok || got != c {
		t.Error("Lookup missed the cache")
	}
	if _, ok := s.Lookup("zz"); ok {
		t.Error("Lookup found an unknown id")
	}
}

func TestCacheStoreInvalidPosition(t *testing.T) {
	s := NewCacheStore()
	c := s.Get(NewGlyph("b"), "t0", "umap")
	if c.Valid {
		t.Error("glyph without position produced a valid cache")
	}
	if !s.warned["b"] {
		t.Error("missing position not warned")
	}
}

func TestCacheStoreOrder(t *testing.T) {
	s := NewCacheStore()
	for _, id := range []string{"c", "a", "b"} {
		s.Get(glyphAt(id, 0, 0), "t0", "umap")
	}
	var ids string
	s.Each(func(c *RenderCache) { ids += c.ID })
	if ids != "cab" {
		t.Errorf("Each order = %q, want cab", ids)
	}
	if s.Len() != 3 || len(s.All()) != 3 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestCacheStoreSetMesh(t *testing.T) {
	s := NewCacheStore()
	s.Get(glyphAt("a", 0, 0), "t0", "umap")

	first := NewContainer("m1")
	s.SetMesh("a", first)
	if id, ok := s.GlyphID(first); !ok || id != "a" {
		t.Errorf("GlyphID = %q %v", id, ok)
	}

	second := NewContainer("m2")
	s.SetMesh("a", second)
	if !first.IsDisposed() {
		t.Error("replaced mesh not disposed")
	}
	if _, ok := s.GlyphID(first); ok {
		t.Error("replaced mesh still mapped")
	}

	orphan := NewContainer("m3")
	s.SetMesh("unknown", orphan)
	if !orphan.IsDisposed() {
		t.Error("mesh for unknown id not disposed")
	}

	s.Clear()
	if !second.IsDisposed() || s.Len() != 0 {
		t.Error("Clear left meshes or caches")
	}
}

func TestRenderCacheResetPosition(t *testing.T) {
	c := newRenderCache("a", Vec2{1, 2}, true)
	c.X, c.Y, c.VX, c.VY = 9, 9, 3, 3
	c.ResetPosition()
	if c.X != 1 || c.Y != 2 || c.VX != 0 || c.VY != 0 {
		t.Errorf("after ResetPosition %+v", c)
	}
}
