package glyphscape

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fitTween animates camera X, Y and Zoom toward a FitTarget. The camera
// fields are written on every update.
type fitTween struct {
	tweens [3]*gween.Tween
	fields [3]*float64
	cam    *Camera
}

func newFitTween(cam *Camera, t FitTarget, duration float32) *fitTween {
	f := &fitTween{cam: cam}
	f.tweens[0] = gween.New(float32(cam.X), float32(t.X), duration, ease.InOutQuad)
	f.tweens[1] = gween.New(float32(cam.Y), float32(t.Y), duration, ease.InOutQuad)
	f.tweens[2] = gween.New(float32(cam.Zoom), float32(ClampZoom(t.Zoom)), duration, ease.InOutQuad)
	f.fields[0] = &cam.X
	f.fields[1] = &cam.Y
	f.fields[2] = &cam.Zoom
	return f
}

// update advances all tweens by dt seconds and reports completion.
func (f *fitTween) update(dt float32) bool {
	allDone := true
	for i, tw := range f.tweens {
		val, finished := tw.Update(dt)
		*f.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	f.cam.Zoom = ClampZoom(f.cam.Zoom)
	return allDone
}

// Pulse animation for the hovered glyph at low zoom.
const (
	pulsePeriod    = 3 * time.Second
	pulseCycles    = 2
	pulseBaseScale = 2.0
	pulseAmplitude = 0.8
)

// pulseScale returns the node scale for a pulse that has been running for
// elapsed.
func pulseScale(elapsed time.Duration) float64 {
	t := elapsed.Seconds() / pulsePeriod.Seconds()
	return pulseBaseScale + pulseAmplitude*math.Sin(t*2*math.Pi*pulseCycles)
}

// relaxStep moves every simulated position toward its logical position by
// a fixed fraction and reports whether all of them are within epsilon.
func relaxStep(caches []*RenderCache, lerp, epsilon float64) bool {
	settled := true
	for _, c := range caches {
		c.X += (c.Position.X - c.X) * lerp
		c.Y += (c.Position.Y - c.Y) * lerp
		if math.Abs(c.X-c.Position.X) > epsilon || math.Abs(c.Y-c.Position.Y) > epsilon {
			settled = false
		} else {
			c.X, c.Y = c.Position.X, c.Position.Y
		}
	}
	return settled
}
