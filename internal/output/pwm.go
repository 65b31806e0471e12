package output

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"github.com/sweeney/button-panel/internal/logic"
)

// LEDFrequency is the PWM carrier used for LED dimming.
const LEDFrequency = 5 * physic.KiloHertz

// Pin definitions (BCM numbering)
var DefaultLEDPins = []int{17, 18, 19}

const DefaultBuzzerPin = 14

// openPin resolves a BCM pin number through the periph registry.
// host.Init must have been called.
func openPin(n int) (gpio.PinIO, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if p == nil {
		return nil, fmt.Errorf("gpio pin %d not found", n)
	}
	return p, nil
}

// PWMLEDs dims LEDs with PWM on periph.io pins.
type PWMLEDs struct {
	pins []gpio.PinIO
}

// NewPWMLEDs opens one pin per LED channel and drives them low.
func NewPWMLEDs(pins []int) (*PWMLEDs, error) {
	if len(pins) != logic.LEDCount {
		return nil, fmt.Errorf("need %d led pins, got %d", logic.LEDCount, len(pins))
	}
	l := &PWMLEDs{}
	for _, n := range pins {
		p, err := openPin(n)
		if err != nil {
			return nil, err
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("led pin %d: %w", n, err)
		}
		l.pins = append(l.pins, p)
	}
	return l, nil
}

// SetLevels writes each channel. 0 and 255 are plain digital levels.
func (l *PWMLEDs) SetLevels(levels logic.Levels) error {
	for i, p := range l.pins {
		var err error
		switch v := levels[i]; v {
		case 0:
			err = p.Out(gpio.Low)
		case 255:
			err = p.Out(gpio.High)
		default:
			err = p.PWM(levelDuty(v), LEDFrequency)
		}
		if err != nil {
			return fmt.Errorf("led %d: %w", i, err)
		}
	}
	return nil
}

// Close drives every LED low and halts the pins.
func (l *PWMLEDs) Close() error {
	var errs []error
	for i, p := range l.pins {
		if err := p.Out(gpio.Low); err != nil {
			errs = append(errs, fmt.Errorf("led %d: %w", i, err))
		}
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt led %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// levelDuty maps a 0..255 brightness onto the periph duty range.
func levelDuty(v uint8) gpio.Duty {
	return gpio.Duty(int64(v) * int64(gpio.DutyMax) / 255)
}

// PWMTone drives a passive buzzer with a 50% duty square wave.
type PWMTone struct {
	pin gpio.PinIO
}

// NewPWMTone opens the buzzer pin, silent.
func NewPWMTone(pin int) (*PWMTone, error) {
	p, err := openPin(pin)
	if err != nil {
		return nil, err
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("buzzer pin %d: %w", pin, err)
	}
	return &PWMTone{pin: p}, nil
}

// Play sounds hz until Stop or the next Play.
func (t *PWMTone) Play(hz int) error {
	if hz <= 0 {
		return t.Stop()
	}
	if err := t.pin.PWM(gpio.DutyHalf, physic.Frequency(hz)*physic.Hertz); err != nil {
		return fmt.Errorf("play %dHz: %w", hz, err)
	}
	return nil
}

// Stop silences the buzzer.
func (t *PWMTone) Stop() error {
	if err := t.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("stop tone: %w", err)
	}
	return nil
}

// Close silences and halts the buzzer pin.
func (t *PWMTone) Close() error {
	if err := t.Stop(); err != nil {
		return err
	}
	return t.pin.Halt()
}
