// Package logic contains the pure mode and overlay state machine of the button panel.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// LEDCount is the number of LED channels driven by the panel.
const LEDCount = 3

// Levels holds one 0..255 brightness per LED channel.
type Levels [LEDCount]uint8

// AllLevels returns Levels with every channel set to v.
func AllLevels(v uint8) Levels {
	var l Levels
	for i := range l {
		l[i] = v
	}
	return l
}

// Mode is one entry in the cyclic list of normal operating behaviors.
type Mode int

const (
	ModeOff Mode = iota
	ModeAlternate
	ModeOn
	ModeFade
)

// Modes is the fixed cycle order. Advance moves to the next entry, Reset to the first.
var Modes = []Mode{ModeOff, ModeAlternate, ModeOn, ModeFade}

var modeLabels = map[Mode]string{
	ModeOff:       "Off",
	ModeAlternate: "Alternate",
	ModeOn:        "On",
	ModeFade:      "Fade",
}

func (m Mode) String() string {
	if s, ok := modeLabels[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// OverlayKind tags the active overlay behavior.
type OverlayKind string

const (
	OverlayNone   OverlayKind = "NONE"
	OverlayTone   OverlayKind = "TONE"
	OverlayToggle OverlayKind = "TOGGLE"
)

// EventType represents a domain event applied to the mode/overlay state.
type EventType string

const (
	EventAdvance    EventType = "ADVANCE"
	EventReset      EventType = "RESET"
	EventShortPress EventType = "SHORT_PRESS"
	EventLongPress  EventType = "LONG_PRESS"
)

// Event records a domain event after it has been applied.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Mode      Mode
	Overlay   OverlayKind
}

// AdvancePolicy decides what an Advance event does to an active tone sequence.
type AdvancePolicy string

const (
	// PolicyCancel cancels any overlay on Advance.
	PolicyCancel AdvancePolicy = "cancel"
	// PolicyKeepTone cancels the toggle overlay but leaves a tone sequence playing.
	PolicyKeepTone AdvancePolicy = "keep-tone"
)

// Input is one control-loop cycle worth of observations.
type Input struct {
	Advance    bool // confirmed press of the advance button
	Reset      bool // confirmed press of the reset button
	Action     bool // confirmed press of the dual-behavior button
	ActionDown bool // sampled level of the dual-behavior button (true = held)
	Time       time.Time
}

// Frame is the actuation state implied by one cycle. Rendering it twice has
// no effect beyond the hardware write.
type Frame struct {
	Time     time.Time
	LEDs     Levels
	ToneHz   int    // 0 = silent
	ToneStep uint64 // increments once per sounded note
	Text     string
	Events   []Event
}

// EventCounts tracks the number of each domain event since startup.
type EventCounts struct {
	Advance int
	Reset   int
	Short   int
	Long    int
}

// Config holds the timing and content parameters of the state machine.
type Config struct {
	LongPress      time.Duration
	AlternateStep  time.Duration
	FadeStep       time.Duration
	FadeIncrement  int
	NoteDuration   time.Duration
	ToggleInterval time.Duration
	Melody         []int
	Policy         AdvancePolicy
}

// DefaultMelody is a rising C-major scale that loops.
var DefaultMelody = []int{262, 294, 330, 349, 392, 440, 494, 523}

// DefaultConfig returns the stock panel timings.
func DefaultConfig() Config {
	return Config{
		LongPress:      1500 * time.Millisecond,
		AlternateStep:  200 * time.Millisecond,
		FadeStep:       15 * time.Millisecond,
		FadeIncrement:  4,
		NoteDuration:   300 * time.Millisecond,
		ToggleInterval: 500 * time.Millisecond,
		Melody:         append([]int(nil), DefaultMelody...),
		Policy:         PolicyCancel,
	}
}
