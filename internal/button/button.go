// Package button turns raw falling edges into debounced, confirmed presses.
//
// The flow per button:
//
//	edge handler   - arms a one-shot settle timer unless one is already armed
//	settle timer   - re-samples the pin; still pressed sets the confirmed flag
//	control loop   - takes (reads and clears) the confirmed flag once per cycle
//
// Edge handlers and timer callbacks run outside the control loop. Every field
// they share with the loop is a single atomic word with one writer per side,
// so nothing here takes a lock.
package button

import (
	"sync/atomic"
	"time"
)

// Input samples the level of a pin. Pressed reports true while the button is held.
type Input interface {
	Pressed(pin int) (bool, error)
}

// Scheduler runs f once after d elapses, on some other goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Flag is a single-producer, single-consumer pending bit.
type Flag struct {
	v atomic.Bool
}

// Set marks the flag pending. Called by the producer only.
func (f *Flag) Set() { f.v.Store(true) }

// Take clears the flag and reports whether it was pending. Called by the consumer only.
func (f *Flag) Take() bool { return f.v.Swap(false) }

// Pending reports the flag without clearing it.
func (f *Flag) Pending() bool { return f.v.Load() }

// Stats counts what the debounce layer has seen since startup.
type Stats struct {
	Edges     uint64 // falling edges delivered to HandleEdge
	Ignored   uint64 // edges dropped because a settle timer was already armed
	Confirmed uint64 // settle re-samples that still read pressed
	Bounces   uint64 // settle re-samples that read released (or failed)
}

// Button is one physical momentary input.
type Button struct {
	name   string
	pin    int
	window time.Duration
	input  Input
	sched  Scheduler

	armed   atomic.Bool
	pending Flag

	edges     atomic.Uint64
	ignored   atomic.Uint64
	confirmed atomic.Uint64
	bounces   atomic.Uint64
}

// New creates a button on pin whose edges settle for window before re-sampling.
func New(name string, pin int, window time.Duration, input Input, sched Scheduler) *Button {
	return &Button{
		name:   name,
		pin:    pin,
		window: window,
		input:  input,
		sched:  sched,
	}
}

// Name returns the button's logical name.
func (b *Button) Name() string { return b.name }

// Pin returns the button's pin number.
func (b *Button) Pin() int { return b.pin }

// HandleEdge is the falling-edge handler. It never blocks.
func (b *Button) HandleEdge() {
	b.edges.Add(1)
	if !b.armed.CompareAndSwap(false, true) {
		// Already debouncing this press.
		b.ignored.Add(1)
		return
	}
	b.sched.AfterFunc(b.window, b.settle)
}

// settle is the one-shot timer callback.
func (b *Button) settle() {
	pressed, err := b.input.Pressed(b.pin)
	if err == nil && pressed {
		b.confirmed.Add(1)
		b.pending.Set()
	} else {
		b.bounces.Add(1)
	}
	b.armed.Store(false)
}

// Armed reports whether a settle timer is outstanding.
func (b *Button) Armed() bool { return b.armed.Load() }

// TakeConfirmed clears the confirmed-press flag and reports whether it was set.
// Only the control loop calls this.
func (b *Button) TakeConfirmed() bool { return b.pending.Take() }

// Pressed samples the current level of the pin.
func (b *Button) Pressed() (bool, error) {
	return b.input.Pressed(b.pin)
}

// Stats returns the debounce counters.
func (b *Button) Stats() Stats {
	return Stats{
		Edges:     b.edges.Load(),
		Ignored:   b.ignored.Load(),
		Confirmed: b.confirmed.Load(),
		Bounces:   b.bounces.Load(),
	}
}
