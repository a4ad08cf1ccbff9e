package glyphscape

import (
	"fmt"
	"strings"
)

// RenderTask names a unit of per-frame work.
type RenderTask uint8

const (
	TaskSceneRender RenderTask = iota
	TaskForceSimulation
	TaskOriginalSimulation
	TaskGlyphAnimation
	TaskFitAnimation
	TaskLensRender

	numRenderTasks
)

var taskNames = [numRenderTasks]string{
	"scene", "force", "original", "pulse", "fit", "lens",
}

func (t RenderTask) String() string {
	if t < numRenderTasks {
		return taskNames[t]
	}
	return fmt.Sprintf("RenderTask(%d)", uint8(t))
}

// TaskSet is a set of render tasks.
type TaskSet uint8

// Has reports whether t is in the set.
func (s TaskSet) Has(t RenderTask) bool { return s&(1<<t) != 0 }

func (s TaskSet) with(t RenderTask) TaskSet    { return s | 1<<t }
func (s TaskSet) without(t RenderTask) TaskSet { return s &^ (1 << t) }

func (s TaskSet) String() string {
	if s == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for t := RenderTask(0); t < numRenderTasks; t++ {
		if !s.Has(t) {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		b.WriteString(t.String())
		first = false
	}
	b.WriteByte('}')
	return b.String()
}

// SchedulerState is the frame loop state of a Scheduler.
type SchedulerState uint8

const (
	StateIdle SchedulerState = iota
	StateScheduled
	StateRunning
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("SchedulerState(%d)", uint8(s))
	}
}

// Scheduler tracks the pending render tasks of one canvas. The host calls
// Tick once per frame; work only happens while a task is pending.
//
// Cancellations made while a tick is running are resolved when the tick
// ends, so the in-flight frame still sees the task it started with.
type Scheduler struct {
	state    SchedulerState
	pending  TaskSet
	removals TaskSet
}

// State returns the current loop state.
func (s *Scheduler) State() SchedulerState { return s.state }

// Pending returns the pending task set.
func (s *Scheduler) Pending() TaskSet { return s.pending }

// Has reports whether t is pending.
func (s *Scheduler) Has(t RenderTask) bool { return s.pending.Has(t) }

// Request adds t to the pending set and schedules a frame if idle.
func (s *Scheduler) Request(t RenderTask) {
	if t >= numRenderTasks {
		panic(fmt.Sprintf("glyphscape: unknown render task %d", uint8(t)))
	}
	s.pending = s.pending.with(t)
	s.removals = s.removals.without(t)
	if s.state == StateIdle {
		s.state = StateScheduled
	}
}

// Cancel removes t from the pending set. During a tick the removal is
// deferred to the end of that tick.
func (s *Scheduler) Cancel(t RenderTask) {
	if t >= numRenderTasks {
		panic(fmt.Sprintf("glyphscape: unknown render task %d", uint8(t)))
	}
	s.removals = s.removals.with(t)
	if s.state != StateRunning {
		s.resolve()
	}
}

// Tick runs fn with the pending set when anything is pending, then
// applies cancellations. It reports whether fn ran.
func (s *Scheduler) Tick(fn func(TaskSet)) bool {
	if s.pending == 0 {
		s.state = StateIdle
		return false
	}
	s.state = StateRunning
	func() {
		defer func() {
			if r := recover(); r != nil {
				logError("render tick panicked: %v", r)
			}
		}()
		fn(s.pending)
	}()
	s.resolve()
	return true
}

// Run calls fn if t is pending. A panic inside fn is logged and t is
// removed from the pending set; it reports whether fn completed.
func (s *Scheduler) Run(t RenderTask, fn func()) (ok bool) {
	if !s.pending.Has(t) {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			logError("render task %s panicked: %v", t, r)
			s.Cancel(t)
			ok = false
		}
	}()
	fn()
	return true
}

// Reset drops every pending task and returns to idle.
func (s *Scheduler) Reset() {
	s.pending = 0
	s.removals = 0
	s.state = StateIdle
}

func (s *Scheduler) resolve() {
	s.pending &^= s.removals
	s.removals = 0
	if s.pending == 0 {
		s.state = StateIdle
	} else {
		s.state = StateScheduled
	}
}
