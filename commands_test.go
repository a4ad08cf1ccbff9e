package glyphscape

import (
	"sync"
	"testing"
)

func TestCommandBusFanOut(t *testing.T) {
	bus := NewCommandBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	g := NewGlyph("x")
	bus.Broadcast(CmdFitToView)
	bus.Emit(EventRedrawGlyph, g)

	for name, s := range map[string]*Subscription{"a": a, "b": b} {
		msgs := s.Drain()
		if len(msgs) != 2 {
			t.Fatalf("%s: %d messages, want 2", name, len(msgs))
		}
		if msgs[0].Command != CmdFitToView {
			t.Errorf("%s: first = %v, want fit-to-view", name, msgs[0].Command)
		}
		if msgs[1].Event != EventRedrawGlyph || msgs[1].Glyph != g {
			t.Errorf("%s: second = %+v", name, msgs[1])
		}
		if len(s.Drain()) != 0 {
			t.Errorf("%s: Drain did not clear the queue", name)
		}
	}
}

func TestSubscriptionOnlySeesLaterMessages(t *testing.T) {
	bus := NewCommandBus()
	bus.Broadcast(CmdRedraw)
	s := bus.Subscribe()
	if len(s.Drain()) != 0 {
		t.Error("subscription received an earlier message")
	}
}

func TestSubscriptionClose(t *testing.T) {
	bus := NewCommandBus()
	s := bus.Subscribe()
	bus.Broadcast(CmdRedraw)
	s.Close()
	s.Close()
	if len(s.Drain()) != 0 {
		t.Error("Close kept queued messages")
	}
	bus.Broadcast(CmdRedraw)
	if len(s.Drain()) != 0 {
		t.Error("closed subscription received a message")
	}
	if len(bus.subs) != 0 {
		t.Errorf("bus still holds %d subscriptions", len(bus.subs))
	}
}

func TestCommandBusConcurrentPublish(t *testing.T) {
	bus := NewCommandBus()
	s := bus.Subscribe()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Broadcast(CmdRedraw)
			}
		}()
	}
	wg.Wait()
	if n := len(s.Drain()); n != 400 {
		t.Errorf("received %d messages, want 400", n)
	}
}

func TestCommandNames(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{CmdFitToView.String(), "fit-to-view"},
		{CmdClearSelection.String(), "clear-selection"},
		{CmdExportImage.String(), "export-image"},
		{Command(99).String(), "Command(99)"},
		{EventDatasetLoaded.String(), "dataset-loaded"},
		{EventKind(42).String(), "EventKind(42)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String = %q, want %q", tt.got, tt.want)
		}
	}
}
