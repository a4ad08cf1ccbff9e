package glyphscape

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

	// A release within clickDistance pixels and clickDuration of the press
	// is a click rather than a drag.
	clickDistance = 4.0
	clickDuration = 300 * time.Millisecond
)

// canvasKeys are the keys a canvas reacts to while the pointer is inside.
var canvasKeys = []ebiten.Key{
	ebiten.KeyC, ebiten.KeyF, ebiten.KeyA, ebiten.KeyD,
	ebiten.KeyS, ebiten.KeyX, ebiten.KeyL,
}

// --- Per-pointer state ---

type pointerState struct {
	id        int
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	startTime time.Time
	dragging  bool
	button    MouseButton
}

// isClick applies the click rule to a release at (x, y).
func (p *pointerState) isClick(x, y float64, now time.Time) bool {
	d := math.Hypot(x-p.startX, y-p.startY)
	return d < clickDistance && now.Sub(p.startTime) < clickDuration
}

// --- Pinch state ---

type pinchState struct {
	active      bool
	pointer0    int
	pointer1    int
	initialDist float64
}

// gestureHandler receives the gestures recognised from raw pointer input.
// Coordinates are screen pixels.
type gestureHandler interface {
	pointerDown(p *pointerState, mods KeyModifiers)
	pointerDrag(p *pointerState, x, y, dx, dy float64, mods KeyModifiers)
	pointerUp(p *pointerState, x, y float64, click bool, mods KeyModifiers)
	pointerHover(x, y float64, mods KeyModifiers)
	pointerLeave()
	wheel(x, y, notches float64)
	key(k ebiten.Key, mods KeyModifiers)
	pinch(cx, cy, scale float64, started bool)
}

// gestureState turns per-frame pointer samples into gestures for one
// canvas. Samples come from ebiten or from the inject queue.
type gestureState struct {
	pointers [maxPointers]pointerState
	pinch    pinchState

	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID

	inside      bool
	mods        KeyModifiers
	injectQueue []syntheticEvent
}

func newGestureState() *gestureState {
	g := &gestureState{}
	for i := range g.pointers {
		g.pointers[i].id = i
	}
	return g
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// process consumes one injected event if any are queued, otherwise reads
// the live ebiten input. viewport bounds the canvas on screen.
func (g *gestureState) process(h gestureHandler, viewport Rect, now time.Time) {
	if g.processInjected(h, viewport, now) {
		return
	}
	g.mods = readModifiers()
	g.processMouse(h, viewport, now)
	g.processTouches(h, viewport, now)
	g.detectPinch(h)
}

func (g *gestureState) processMouse(h gestureHandler, viewport Rect, now time.Time) {
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}

	inside := viewport.Contains(sx, sy)
	ps := &g.pointers[0]
	if !inside && !ps.down {
		if g.inside {
			g.inside = false
			h.pointerLeave()
		}
		return
	}
	if inside && pressed && !ps.down && !mouseJustPressed() {
		// Button went down outside the canvas and was dragged in.
		pressed = false
	}
	g.inside = inside

	g.processPointer(h, 0, sx, sy, pressed, button, now)

	if inside {
		if _, wy := ebiten.Wheel(); wy != 0 {
			h.wheel(sx, sy, wy)
		}
		for _, k := range canvasKeys {
			if inpututil.IsKeyJustPressed(k) {
				h.key(k, g.mods)
			}
		}
	}
}

func mouseJustPressed() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle)
}

func (g *gestureState) processTouches(h gestureHandler, viewport Rect, now time.Time) {
	touchIDs := ebiten.AppendTouchIDs(g.prevTouchIDs[:0])
	g.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		tx, ty := ebiten.TouchPosition(tid)
		slot := g.touchSlot(tid, viewport.Contains(float64(tx), float64(ty)))
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		g.processPointer(h, slot, float64(tx), float64(ty), true, MouseButtonLeft, now)
	}

	for i := 1; i < maxPointers; i++ {
		if g.touchUsed[i] && !activeSlots[i] {
			ps := &g.pointers[i]
			if ps.down {
				g.processPointer(h, i, ps.lastX, ps.lastY, false, MouseButtonLeft, now)
			}
			g.touchUsed[i] = false
			g.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). New touches
// only get a slot when they start inside the canvas. Returns -1 otherwise.
func (g *gestureState) touchSlot(tid ebiten.TouchID, inside bool) int {
	for i := 1; i < maxPointers; i++ {
		if g.touchUsed[i] && g.touchMap[i] == tid {
			return i
		}
	}
	if !inside {
		return -1
	}
	for i := 1; i < maxPointers; i++ {
		if !g.touchUsed[i] {
			g.touchUsed[i] = true
			g.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (g *gestureState) processPointer(h gestureHandler, id int, x, y float64, pressed bool, button MouseButton, now time.Time) {
	ps := &g.pointers[id]

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.startTime = now
		ps.dragging = false
		h.pointerDown(ps, g.mods)

	case !pressed && ps.down:
		click := !ps.dragging && ps.isClick(x, y, now)
		if (x != ps.lastX || y != ps.lastY) && !g.pinch.active {
			h.pointerDrag(ps, x, y, x-ps.lastX, y-ps.lastY, g.mods)
		}
		h.pointerUp(ps, x, y, click, g.mods)
		ps.down = false
		ps.dragging = false
		ps.lastX, ps.lastY = x, y

	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging && math.Hypot(x-ps.startX, y-ps.startY) >= clickDistance {
				ps.dragging = true
			}
			if !g.pinch.active {
				h.pointerDrag(ps, x, y, x-ps.lastX, y-ps.lastY, g.mods)
			}
		}
		ps.lastX, ps.lastY = x, y

	default:
		if x != ps.lastX || y != ps.lastY {
			h.pointerHover(x, y, g.mods)
			ps.lastX, ps.lastY = x, y
		}
	}
}

// --- Pinch detection ---

func (g *gestureState) detectPinch(h gestureHandler) {
	var ids [2]int
	count := 0
	for i := 1; i < maxPointers && count < 3; i++ {
		if g.pointers[i].down {
			if count < 2 {
				ids[count] = i
			}
			count++
		}
	}

	if count != 2 {
		g.pinch.active = false
		return
	}

	p0 := &g.pointers[ids[0]]
	p1 := &g.pointers[ids[1]]
	cx := (p0.lastX + p1.lastX) / 2
	cy := (p0.lastY + p1.lastY) / 2
	dist := math.Hypot(p1.lastX-p0.lastX, p1.lastY-p0.lastY)

	if !g.pinch.active {
		g.pinch = pinchState{active: true, pointer0: ids[0], pointer1: ids[1], initialDist: dist}
		h.pinch(cx, cy, 1, true)
	} else {
		scale := 1.0
		if g.pinch.initialDist > 0 {
			scale = dist / g.pinch.initialDist
		}
		h.pinch(cx, cy, scale, false)
	}
	// Pinch pointers never count as drags or clicks.
	p0.dragging = true
	p1.dragging = true
}

// reset drops all pointer state, as on pointer leave.
func (g *gestureState) reset() {
	for i := range g.pointers {
		g.pointers[i] = pointerState{id: i}
	}
	g.pinch = pinchState{}
	g.mods = 0
}
