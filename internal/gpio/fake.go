package gpio

import (
	"errors"
	"sync"
)

// FakeInput is a test double with scripted button levels.
// Press and Glitch deliver falling edges synchronously on the caller's goroutine.
type FakeInput struct {
	mu       sync.Mutex
	pressed  map[int]bool
	handlers map[int]func()

	// ReadError, if set, will be returned by Pressed.
	ReadError error

	// WatchError, if set, will be returned by Watch.
	WatchError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeInput creates a FakeInput with every pin released.
func NewFakeInput() *FakeInput {
	return &FakeInput{
		pressed:  make(map[int]bool),
		handlers: make(map[int]func()),
	}
}

// Pressed returns the scripted level of pin.
func (f *FakeInput) Pressed(pin int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.pressed[pin], nil
}

// Watch registers the falling-edge handler for pin.
func (f *FakeInput) Watch(pin int, onFalling func()) error {
	if f.WatchError != nil {
		return f.WatchError
	}
	if onFalling == nil {
		return errors.New("nil edge handler")
	}
	f.mu.Lock()
	f.handlers[pin] = onFalling
	f.mu.Unlock()
	return nil
}

// Press holds the button down and delivers a falling edge.
func (f *FakeInput) Press(pin int) {
	f.mu.Lock()
	f.pressed[pin] = true
	h := f.handlers[pin]
	f.mu.Unlock()
	if h != nil {
		h()
	}
}

// Release lets the button up. Rising edges are not delivered.
func (f *FakeInput) Release(pin int) {
	f.mu.Lock()
	f.pressed[pin] = false
	f.mu.Unlock()
}

// Glitch delivers a falling edge without leaving the pin pressed,
// as a noise spike or contact bounce on release would.
func (f *FakeInput) Glitch(pin int) {
	f.mu.Lock()
	h := f.handlers[pin]
	f.mu.Unlock()
	if h != nil {
		h()
	}
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
