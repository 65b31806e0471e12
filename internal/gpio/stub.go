//go:build !linux

package gpio

import "errors"

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// NewRealInput returns an error on non-Linux platforms.
func NewRealInput(chipName string, pins ...int) (*RealInput, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Pressed is not implemented on non-Linux platforms.
func (r *RealInput) Pressed(pin int) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Watch is not implemented on non-Linux platforms.
func (r *RealInput) Watch(pin int, onFalling func()) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealInput) Close() error {
	return nil
}
