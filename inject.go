package glyphscape

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

type syntheticKind uint8

const (
	synthPointer syntheticKind = iota
	synthWheel
	synthKey
	synthLeave
	synthTouch
)

// syntheticEvent is a single injected input event in screen coordinates.
type syntheticEvent struct {
	kind             syntheticKind
	slot             int
	screenX, screenY float64
	pressed          bool
	button           MouseButton
	notches          float64
	key              ebiten.Key
	mods             KeyModifiers
}

// InjectPress queues a left-button press at the given screen coordinates.
// Each queued event is consumed by one Update.
func (c *Canvas) InjectPress(x, y float64) {
	c.gestures.push(syntheticEvent{screenX: x, screenY: y, pressed: true, mods: c.injectMods})
}

// InjectMove queues a pointer move with the button held down. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (c *Canvas) InjectMove(x, y float64) {
	c.gestures.push(syntheticEvent{screenX: x, screenY: y, pressed: true, mods: c.injectMods})
}

// InjectHover queues a pointer move with no button held.
func (c *Canvas) InjectHover(x, y float64) {
	c.gestures.push(syntheticEvent{screenX: x, screenY: y, mods: c.injectMods})
}

// InjectRelease queues a left-button release at the given screen coordinates.
func (c *Canvas) InjectRelease(x, y float64) {
	c.gestures.push(syntheticEvent{screenX: x, screenY: y, mods: c.injectMods})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (c *Canvas) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). Minimum frames is 2.
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel scroll of notches at the given point.
// Positive notches zoom in.
func (c *Canvas) InjectWheel(x, y, notches float64) {
	c.gestures.push(syntheticEvent{kind: synthWheel, screenX: x, screenY: y, notches: notches})
}

// InjectKey queues a key press with the current injected modifiers.
func (c *Canvas) InjectKey(k ebiten.Key) {
	c.gestures.push(syntheticEvent{kind: synthKey, key: k, mods: c.injectMods})
}

// InjectLeave queues the pointer leaving the canvas.
func (c *Canvas) InjectLeave() {
	c.gestures.push(syntheticEvent{kind: synthLeave})
}

// InjectTouchDown queues a finger touching down in touch slot (1-9) at
// the given screen coordinates.
func (c *Canvas) InjectTouchDown(slot int, x, y float64) {
	c.gestures.push(syntheticEvent{kind: synthTouch, slot: touchSlotOrPanic(slot), screenX: x, screenY: y, pressed: true})
}

// InjectTouchMove queues a move of the finger in touch slot.
func (c *Canvas) InjectTouchMove(slot int, x, y float64) {
	c.gestures.push(syntheticEvent{kind: synthTouch, slot: touchSlotOrPanic(slot), screenX: x, screenY: y, pressed: true})
}

// InjectTouchUp queues the finger in touch slot lifting at the given
// screen coordinates.
func (c *Canvas) InjectTouchUp(slot int, x, y float64) {
	c.gestures.push(syntheticEvent{kind: synthTouch, slot: touchSlotOrPanic(slot), screenX: x, screenY: y})
}

// InjectPinch queues a horizontal two-finger pinch centred on (cx, cy).
// The fingers touch down fromDist apart, move to toDist apart over frames
// steps and lift. Each finger event consumes one frame.
func (c *Canvas) InjectPinch(cx, cy, fromDist, toDist float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	c.InjectTouchDown(1, cx-fromDist/2, cy)
	c.InjectTouchDown(2, cx+fromDist/2, cy)
	for i := 1; i <= frames; i++ {
		d := fromDist + (toDist-fromDist)*float64(i)/float64(frames)
		c.InjectTouchMove(1, cx-d/2, cy)
		c.InjectTouchMove(2, cx+d/2, cy)
	}
	c.InjectTouchUp(1, cx-toDist/2, cy)
	c.InjectTouchUp(2, cx+toDist/2, cy)
}

func touchSlotOrPanic(slot int) int {
	if slot < 1 || slot >= maxPointers {
		panic("glyphscape: touch slot out of range")
	}
	return slot
}

// SetInjectModifiers sets the modifier keys attached to subsequently
// injected pointer and key events.
func (c *Canvas) SetInjectModifiers(mods KeyModifiers) {
	c.injectMods = mods
}

func (g *gestureState) push(e syntheticEvent) {
	g.injectQueue = append(g.injectQueue, e)
}

// processInjected pops one event from the inject queue and feeds it
// through the same paths as live input. It returns true if an event was
// consumed, in which case live input is skipped for the frame.
func (g *gestureState) processInjected(h gestureHandler, viewport Rect, now time.Time) bool {
	if len(g.injectQueue) == 0 {
		return false
	}
	evt := g.injectQueue[0]
	copy(g.injectQueue, g.injectQueue[1:])
	g.injectQueue = g.injectQueue[:len(g.injectQueue)-1]

	switch evt.kind {
	case synthWheel:
		h.wheel(evt.screenX, evt.screenY, evt.notches)
	case synthKey:
		h.key(evt.key, evt.mods)
	case synthLeave:
		g.inside = false
		h.pointerLeave()
	case synthTouch:
		g.processPointer(h, evt.slot, evt.screenX, evt.screenY, evt.pressed, MouseButtonLeft, now)
		g.detectPinch(h)
	default:
		g.mods = evt.mods
		g.inside = viewport.Contains(evt.screenX, evt.screenY)
		g.processPointer(h, 0, evt.screenX, evt.screenY, evt.pressed, evt.button, now)
	}
	return true
}
