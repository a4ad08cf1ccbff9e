package glyphscape

import (
	"testing"
)

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	if cam.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", cam.Zoom)
	}
	if cam.Viewport.Width != 800 || cam.Viewport.Height != 600 {
		t.Errorf("Viewport = %v, want 800x600", cam.Viewport)
	}
	if cam.Fitting() {
		t.Error("new camera should not be fitting")
	}
}

func TestCameraIdentityViewMatrix(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	sx, sy := transformPoint(cam.computeViewMatrix(), 0, 0)
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(0,0) = (%f,%f), want (400,300)", sx, sy)
	}
}

func TestCameraViewportOffset(t *testing.T) {
	cam := NewCamera(Rect{X: 800, Y: 0, Width: 800, Height: 600})
	sx, sy := cam.WorldToScreen(0, 0)
	if !approxEqual(sx, 1200, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(0,0) = (%f,%f), want (1200,300)", sx, sy)
	}
}

func TestCameraTranslation(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetPosition(100, 50)
	sx, sy := cam.WorldToScreen(100, 50)
	if !approxEqual(sx, 400, epsilon) || !approxEqual(sy, 300, epsilon) {
		t.Errorf("WorldToScreen(100,50) = (%f,%f), want (400,300)", sx, sy)
	}
}

func TestCameraZoom(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.Zoom = 2
	sx1, _ := cam.WorldToScreen(1, 0)
	sx0, _ := cam.WorldToScreen(0, 0)
	if !approxEqual(sx1-sx0, 2, epsilon) {
		t.Errorf("screen distance = %f, want 2", sx1-sx0)
	}
}

func TestCameraRoundTrip(t *testing.T) {
	cam := NewCamera(Rect{X: 20, Y: 40, Width: 800, Height: 600})
	cam.SetPosition(-13, 27)
	cam.SetZoom(3.7)
	for _, p := range []Vec2{{0, 0}, {12.5, -8}, {-300, 450}} {
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		wx, wy := cam.ScreenToWorld(sx, sy)
		if !approxEqual(wx, p.X, 1e-6) || !approxEqual(wy, p.Y, 1e-6) {
			t.Errorf("round trip %v = (%f,%f)", p, wx, wy)
		}
	}
}

func TestCameraProjectNDC(t *testing.T) {
	cam := NewCamera(Rect{X: 100, Width: 200, Height: 100})
	tests := []struct {
		wx, wy float64
		nx, ny float64
	}{
		{0, 0, 0, 0},
		{-100, -50, -1, 1},
		{100, 50, 1, -1},
	}
	for _, tt := range tests {
		nx, ny := cam.ProjectNDC(tt.wx, tt.wy)
		if !approxEqual(nx, tt.nx, epsilon) || !approxEqual(ny, tt.ny, epsilon) {
			t.Errorf("ProjectNDC(%v,%v) = (%v,%v), want (%v,%v)", tt.wx, tt.wy, nx, ny, tt.nx, tt.ny)
		}
	}
}

func TestCameraVisibleBounds(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetPosition(100, 100)
	cam.Zoom = 2
	vb := cam.VisibleBounds()
	want := Rect{X: -100, Y: -50, Width: 400, Height: 300}
	if !approxEqual(vb.X, want.X, 1e-9) || !approxEqual(vb.Y, want.Y, 1e-9) ||
		!approxEqual(vb.Width, want.Width, 1e-9) || !approxEqual(vb.Height, want.Height, 1e-9) {
		t.Errorf("VisibleBounds = %v, want %v", vb, want)
	}
}

func TestCameraSetZoomClamps(t *testing.T) {
	cam := NewCamera(Rect{Width: 100, Height: 100})
	tests := []struct{ in, want float64 }{
		{0.1, MinZoom},
		{3, 3},
		{500, MaxZoom},
	}
	for _, tt := range tests {
		cam.SetZoom(tt.in)
		if cam.Zoom != tt.want {
			t.Errorf("SetZoom(%v) = %v, want %v", tt.in, cam.Zoom, tt.want)
		}
	}
}

func TestCameraZoomAtScreenPointKeepsPointFixed(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetPosition(10, 10)
	sx, sy := 600.0, 100.0
	wx, wy := cam.ScreenToWorld(sx, sy)

	oldLevel, newLevel := cam.ZoomAtScreenPoint(sx, sy, 4)
	if oldLevel != ZoomLow || newLevel != ZoomMedium {
		t.Errorf("levels = %v -> %v, want low -> medium", oldLevel, newLevel)
	}
	ax, ay := cam.ScreenToWorld(sx, sy)
	if !approxEqual(ax, wx, 1e-9) || !approxEqual(ay, wy, 1e-9) {
		t.Errorf("world under cursor moved from (%f,%f) to (%f,%f)", wx, wy, ax, ay)
	}
}

func TestCameraWheelZoom(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.WheelZoom(400, 300, 1)
	if !approxEqual(cam.Zoom, 1.1, epsilon) {
		t.Errorf("Zoom after one notch = %v, want 1.1", cam.Zoom)
	}
	cam.WheelZoom(400, 300, -1)
	if !approxEqual(cam.Zoom, 1, epsilon) {
		t.Errorf("Zoom after notch back = %v, want 1", cam.Zoom)
	}
}

func TestCameraPan(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.Zoom = 2
	cam.Pan(10, -20)
	if !approxEqual(cam.X, -4, epsilon) || !approxEqual(cam.Y, 8, epsilon) {
		t.Errorf("Pan = (%v,%v), want (-4,8)", cam.X, cam.Y)
	}
}

func TestCameraFitBounds(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 400})
	tests := []struct {
		name string
		b    Rect
		want FitTarget
	}{
		{"wide", Rect{X: 0, Y: 0, Width: 100, Height: 10}, FitTarget{X: 50, Y: 5, Zoom: 800 / 110.0}},
		{"tall", Rect{X: -10, Y: -50, Width: 20, Height: 100}, FitTarget{X: 0, Y: 0, Zoom: 400 / 110.0}},
		{"point", Rect{X: 3, Y: 4}, FitTarget{X: 3, Y: 4, Zoom: 1}},
		{"huge", Rect{Width: 1e6, Height: 1e6}, FitTarget{X: 5e5, Y: 5e5, Zoom: MinZoom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cam.FitBounds(tt.b)
			if !approxEqual(got.X, tt.want.X, 1e-9) || !approxEqual(got.Y, tt.want.Y, 1e-9) ||
				!approxEqual(got.Zoom, tt.want.Zoom, 1e-9) {
				t.Errorf("FitBounds(%v) = %+v, want %+v", tt.b, got, tt.want)
			}
		})
	}
}

func TestCameraStartFitSnap(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.StartFit(FitTarget{X: 5, Y: 6, Zoom: 3}, false)
	if cam.Fitting() {
		t.Error("snap should not leave a transition running")
	}
	if cam.X != 5 || cam.Y != 6 || cam.Zoom != 3 {
		t.Errorf("camera = (%v,%v,%v), want (5,6,3)", cam.X, cam.Y, cam.Zoom)
	}
}

func TestCameraStartFitAnimated(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.StartFit(FitTarget{X: 100, Y: -100, Zoom: 4}, true)
	if !cam.Fitting() {
		t.Fatal("animated fit should be running")
	}

	if cam.UpdateFit(0.25) {
		t.Fatal("fit finished halfway")
	}
	if cam.X <= 0 || cam.X >= 100 {
		t.Errorf("X halfway = %v, want strictly between 0 and 100", cam.X)
	}

	if !cam.UpdateFit(0.3) {
		t.Fatal("fit should finish after its duration")
	}
	if cam.Fitting() {
		t.Error("finished fit still running")
	}
	if !approxEqual(cam.X, 100, 1e-3) || !approxEqual(cam.Y, -100, 1e-3) || !approxEqual(cam.Zoom, 4, 1e-3) {
		t.Errorf("final camera = (%v,%v,%v), want (100,-100,4)", cam.X, cam.Y, cam.Zoom)
	}
	if cam.UpdateFit(0.1) {
		t.Error("UpdateFit without a transition should report false")
	}
}

func TestCameraCancelFit(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.StartFit(FitTarget{X: 100, Zoom: 2}, true)
	cam.UpdateFit(0.1)
	x := cam.X
	cam.CancelFit()
	if cam.Fitting() {
		t.Error("CancelFit left the transition running")
	}
	cam.UpdateFit(0.1)
	if cam.X != x {
		t.Errorf("X moved after cancel: %v -> %v", x, cam.X)
	}
}

func TestCameraCopy(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.SetPosition(1, 2)
	cam.StartFit(FitTarget{X: 50, Zoom: 2}, true)
	c := cam.Copy()
	if c.X != 1 || c.Y != 2 || c.Viewport != cam.Viewport {
		t.Errorf("copy = %+v", c)
	}
	if c.Fitting() {
		t.Error("copy should not carry the transition")
	}
	c.X = 99
	if cam.X == 99 {
		t.Error("copy aliases the original")
	}
}

func TestCameraLevel(t *testing.T) {
	cam := NewCamera(Rect{Width: 10, Height: 10})
	for _, tt := range []struct {
		zoom float64
		want ZoomLevel
	}{{0.5, ZoomLow}, {1.99, ZoomLow}, {2, ZoomMedium}, {9.9, ZoomMedium}, {10, ZoomHigh}, {50, ZoomHigh}} {
		cam.Zoom = tt.zoom
		if got := cam.Level(); got != tt.want {
			t.Errorf("Level at zoom %v = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}
