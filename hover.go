package glyphscape

import "time"

// hoverDelay is how long the pointer must rest on a glyph before its
// tooltip opens.
const hoverDelay = 750 * time.Millisecond

// DelayedTrigger fires a payload once after a delay. It is polled from the
// frame loop; scheduling again or cancelling invalidates any earlier
// schedule, so a stale payload never fires.
type DelayedTrigger[T any] struct {
	gen     uint64
	fired   uint64
	due     time.Time
	payload T
	armed   bool
}

// Schedule arms the trigger to fire payload at now+delay and returns the
// schedule's generation.
func (d *DelayedTrigger[T]) Schedule(now time.Time, delay time.Duration, payload T) uint64 {
	d.gen++
	d.due = now.Add(delay)
	d.payload = payload
	d.armed = true
	return d.gen
}

// Cancel disarms the trigger.
func (d *DelayedTrigger[T]) Cancel() {
	d.gen++
	d.armed = false
	var zero T
	d.payload = zero
}

// Pending reports whether a schedule is waiting to fire.
func (d *DelayedTrigger[T]) Pending() bool { return d.armed }

// Generation returns the current schedule generation.
func (d *DelayedTrigger[T]) Generation() uint64 { return d.gen }

// Poll returns the payload once the current schedule is due. Each schedule
// fires at most once.
func (d *DelayedTrigger[T]) Poll(now time.Time) (T, bool) {
	var zero T
	if !d.armed || d.fired == d.gen || now.Before(d.due) {
		return zero, false
	}
	d.fired = d.gen
	d.armed = false
	p := d.payload
	d.payload = zero
	return p, true
}

// hoverTarget is what a hover schedule carries: the glyph under the
// pointer and where the pointer was.
type hoverTarget struct {
	glyph *Glyph
	x, y  float64
}
