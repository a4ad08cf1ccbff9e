package glyphscape

import (
	"fmt"
	"sync"
)

// Command is a canvas-wide request broadcast to every canvas.
type Command uint8

const (
	CmdNone Command = iota
	CmdFitToView
	CmdRedraw
	CmdRerender
	CmdClearSelection
	CmdExportImage
)

func (c Command) String() string {
	switch c {
	case CmdNone:
		return "none"
	case CmdFitToView:
		return "fit-to-view"
	case CmdRedraw:
		return "redraw"
	case CmdRerender:
		return "rerender"
	case CmdClearSelection:
		return "clear-selection"
	case CmdExportImage:
		return "export-image"
	default:
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
}

// EventKind identifies a narrower glyph or data event.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventRedrawGlyph
	EventAnimateGlyph
	EventConfigChanged
	EventDatasetLoaded
)

func (e EventKind) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventRedrawGlyph:
		return "redraw-glyph"
	case EventAnimateGlyph:
		return "animate-glyph"
	case EventConfigChanged:
		return "config-changed"
	case EventDatasetLoaded:
		return "dataset-loaded"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(e))
	}
}

// LoadedData is the payload of EventDatasetLoaded.
type LoadedData struct {
	Glyphs     []*Glyph
	Timestamps []string
	Algorithms []string
}

// Message is one item on the bus. Exactly one of Command and Event is set.
type Message struct {
	Command Command
	Event   EventKind
	// Glyph is the subject of glyph events. EventAnimateGlyph allows nil to
	// stop the current animation.
	Glyph *Glyph
	// Data is set for EventDatasetLoaded.
	Data *LoadedData
	// Dir is the output directory for CmdExportImage.
	Dir string
}

// CommandBus fans messages out to every subscriber. Publishing is safe from
// any goroutine; subscribers drain their queue from the frame loop.
type CommandBus struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewCommandBus returns a bus with no subscribers.
func NewCommandBus() *CommandBus {
	return &CommandBus{}
}

// Subscribe returns a new subscription that receives every message
// published after this call.
func (b *CommandBus) Subscribe() *Subscription {
	s := &Subscription{bus: b}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s
}

// Publish queues m on every subscription.
func (b *CommandBus) Publish(m Message) {
	b.mu.Lock()
	subs := append([]*Subscription(nil), b.subs...)
	b.mu.Unlock()
	for _, s := range subs {
		s.push(m)
	}
}

// Broadcast publishes a command.
func (b *CommandBus) Broadcast(c Command) {
	b.Publish(Message{Command: c})
}

// Emit publishes a glyph event.
func (b *CommandBus) Emit(e EventKind, g *Glyph) {
	b.Publish(Message{Event: e, Glyph: g})
}

func (b *CommandBus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Subscription is one subscriber's message queue.
type Subscription struct {
	bus    *CommandBus
	mu     sync.Mutex
	queue  []Message
	closed bool
}

func (s *Subscription) push(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.queue = append(s.queue, m)
	}
}

// Drain returns and clears the queued messages in publish order.
func (s *Subscription) Drain() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

// Close detaches the subscription from its bus and drops queued messages.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()
	s.bus.remove(s)
}
