// Package gpio provides button input with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Input reads button levels and delivers falling edges.
type Input interface {
	// Pressed returns the logical state of a button pin.
	// Buttons are wired to ground with a pull-up: raw low = pressed.
	Pressed(pin int) (bool, error)

	// Watch registers onFalling to run on every falling edge of pin.
	// onFalling runs outside the caller's goroutine and must not block.
	Watch(pin int, onFalling func()) error

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinAdvance = 25 // cycles the LED mode
	DefaultPinReset   = 26 // returns to the first mode
	DefaultPinAction  = 27 // short press: LED toggle, long press: melody
)
