package glyphscape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// scriptStep is a single action in an interaction script.
type scriptStep struct {
	Action  string  `json:"action"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	FromX   float64 `json:"fromX,omitempty"`
	FromY   float64 `json:"fromY,omitempty"`
	ToX     float64 `json:"toX,omitempty"`
	ToY     float64 `json:"toY,omitempty"`
	Frames  int     `json:"frames,omitempty"`
	Notches float64 `json:"notches,omitempty"`
	Key     string  `json:"key,omitempty"`
	Shift   bool    `json:"shift,omitempty"`
	Command string  `json:"command,omitempty"`
	Dir     string  `json:"dir,omitempty"`
}

// script is the top-level JSON structure of an interaction script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

var scriptKeys = map[string]ebiten.Key{
	"c": ebiten.KeyC, "f": ebiten.KeyF, "a": ebiten.KeyA, "d": ebiten.KeyD,
	"s": ebiten.KeyS, "x": ebiten.KeyX, "l": ebiten.KeyL,
}

var scriptCommands = map[string]Command{
	"fit":             CmdFitToView,
	"fit-to-view":     CmdFitToView,
	"redraw":          CmdRedraw,
	"rerender":        CmdRerender,
	"clear-selection": CmdClearSelection,
	"export":          CmdExportImage,
}

// ScriptRunner sequences injected input, bus commands and image exports
// across frames. Attach it to a Canvas with SetScript.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON interaction script. Unknown actions, keys and
// commands are rejected here rather than at run time.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "click", "hover", "drag", "wheel", "wait", "export", "leave":
		case "key":
			if _, ok := scriptKeys[strings.ToLower(st.Key)]; !ok {
				return nil, fmt.Errorf("parse script: step %d: unknown key %q", i, st.Key)
			}
		case "command":
			if _, ok := scriptCommands[st.Command]; !ok {
				return nil, fmt.Errorf("parse script: step %d: unknown command %q", i, st.Command)
			}
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// SetScript attaches a script runner to the canvas. Its step method is
// called from Canvas.Update before input is processed.
func (c *Canvas) SetScript(r *ScriptRunner) {
	c.script = r
}

// Done reports whether every step has been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(c *Canvas) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(c.gestures.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	mods := KeyModifiers(0)
	if st.Shift {
		mods = ModShift
	}
	c.SetInjectModifiers(mods)

	switch st.Action {
	case "click":
		c.InjectClick(st.X, st.Y)
	case "hover":
		c.InjectHover(st.X, st.Y)
	case "drag":
		c.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wheel":
		c.InjectWheel(st.X, st.Y, st.Notches)
	case "key":
		c.InjectKey(scriptKeys[strings.ToLower(st.Key)])
	case "leave":
		c.InjectLeave()
	case "command":
		c.bus.Publish(Message{Command: scriptCommands[st.Command], Dir: st.Dir})
	case "export":
		c.ExportImage(st.Dir)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(c.gestures.injectQueue) == 0 {
		r.done = true
	}
}
