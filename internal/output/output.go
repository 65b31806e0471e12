// Package output drives the panel's actuators: LEDs, buzzer, and display.
// The real implementations use periph.io. Fakes record calls for tests.
package output

import (
	"log"

	"github.com/sweeney/button-panel/internal/logic"
)

// LEDs sets the brightness of every LED channel at once.
type LEDs interface {
	SetLevels(levels logic.Levels) error
}

// Tone sounds a single frequency until told otherwise.
type Tone interface {
	Play(hz int) error
	Stop() error
}

// Display shows a short multi-line text.
type Display interface {
	Render(text string) error
}

// Renderer applies Frames to the actuators, writing only on change.
// A nil actuator is treated as absent. A failed write is logged on the first
// failure and retried on the next Render.
type Renderer struct {
	leds    LEDs
	tone    Tone
	display Display

	ledsSet bool
	levels  logic.Levels

	toneSet  bool
	toneHz   int
	toneStep uint64

	textSet bool
	text    string

	failing map[string]bool
}

// NewRenderer creates a renderer. Any of the actuators may be nil.
func NewRenderer(leds LEDs, tone Tone, display Display) *Renderer {
	return &Renderer{
		leds:    leds,
		tone:    tone,
		display: display,
		failing: make(map[string]bool),
	}
}

// Render writes whatever parts of f differ from what was last written.
func (r *Renderer) Render(f logic.Frame) {
	if r.leds != nil && (!r.ledsSet || f.LEDs != r.levels) {
		if r.report("leds", r.leds.SetLevels(f.LEDs)) {
			r.levels = f.LEDs
			r.ledsSet = true
		}
	}

	if r.tone != nil && (!r.toneSet || f.ToneHz != r.toneHz || f.ToneStep != r.toneStep) {
		var err error
		if f.ToneHz > 0 {
			err = r.tone.Play(f.ToneHz)
		} else if !r.toneSet || r.toneHz != 0 {
			err = r.tone.Stop()
		}
		if r.report("tone", err) {
			r.toneHz = f.ToneHz
			r.toneStep = f.ToneStep
			r.toneSet = true
		}
	}

	if r.display != nil && (!r.textSet || f.Text != r.text) {
		if r.report("display", r.display.Render(f.Text)) {
			r.text = f.Text
			r.textSet = true
		}
	}
}

// report logs failure transitions and returns true if err is nil.
func (r *Renderer) report(name string, err error) bool {
	if err != nil {
		if !r.failing[name] {
			log.Printf("%s unavailable: %v", name, err)
			r.failing[name] = true
		}
		return false
	}
	if r.failing[name] {
		log.Printf("%s recovered", name)
		r.failing[name] = false
	}
	return true
}

// Failing reports whether the named actuator's last write failed.
func (r *Renderer) Failing(name string) bool {
	return r.failing[name]
}
