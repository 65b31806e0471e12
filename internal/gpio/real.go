//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// RealInput reads buttons from actual hardware using the Linux GPIO character device.
type RealInput struct {
	chip     *gpiocdev.Chip
	lines    map[int]*gpiocdev.Line
	handlers map[int]*atomic.Pointer[func()]
}

// NewRealInput requests each pin as a pulled-up input with falling-edge events.
func NewRealInput(chipName string, pins ...int) (*RealInput, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	in := &RealInput{
		chip:     chip,
		lines:    make(map[int]*gpiocdev.Line, len(pins)),
		handlers: make(map[int]*atomic.Pointer[func()], len(pins)),
	}
	// The handler map is complete before any line can deliver an event.
	for _, pin := range pins {
		in.handlers[pin] = new(atomic.Pointer[func()])
	}

	for _, pin := range pins {
		line, err := chip.RequestLine(pin,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(in.dispatch),
		)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("request pin %d: %w", pin, err)
		}
		in.lines[pin] = line
	}

	return in, nil
}

// dispatch runs on the gpiocdev event goroutine.
func (r *RealInput) dispatch(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	h, ok := r.handlers[evt.Offset]
	if !ok {
		return
	}
	if f := h.Load(); f != nil {
		(*f)()
	}
}

// Pressed returns true while the pin reads raw low.
func (r *RealInput) Pressed(pin int) (bool, error) {
	line, ok := r.lines[pin]
	if !ok {
		return false, fmt.Errorf("pin %d not requested", pin)
	}
	raw, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return raw == 0, nil
}

// Watch registers the falling-edge handler for a requested pin.
func (r *RealInput) Watch(pin int, onFalling func()) error {
	h, ok := r.handlers[pin]
	if !ok {
		return fmt.Errorf("pin %d not requested", pin)
	}
	h.Store(&onFalling)
	return nil
}

// Close releases the lines and the chip.
func (r *RealInput) Close() error {
	var errs []error

	for pin, line := range r.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
