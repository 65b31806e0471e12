package logic

import "time"

// ToneState is the live state of a tone-sequence overlay.
type ToneState struct {
	Index    int       // next melody note to sound
	LastStep time.Time // when the current note started
	Sounding bool      // false until the first note of the sequence
	Hz       int       // frequency of the current note
	Notes    uint64    // notes sounded since the sequence started
}

// ToggleState is the live state of a toggle overlay.
type ToggleState struct {
	On         bool
	LastToggle time.Time
}

// OverlayState is a tagged variant. Only the field matching Kind is meaningful.
type OverlayState struct {
	Kind   OverlayKind
	Tone   ToneState
	Toggle ToggleState
}

// Active reports whether any overlay supersedes normal mode rendering.
func (s OverlayState) Active() bool {
	return s.Kind == OverlayTone || s.Kind == OverlayToggle
}

// OverlayEngine owns the two mutually exclusive overlay behaviors.
// Holding a single tagged state makes it impossible for both to be active.
type OverlayEngine struct {
	melody   []int
	note     time.Duration
	interval time.Duration
	state    OverlayState
}

// NewOverlayEngine creates an engine with no overlay active.
func NewOverlayEngine(cfg Config) *OverlayEngine {
	melody := cfg.Melody
	if len(melody) == 0 {
		melody = DefaultMelody
	}
	return &OverlayEngine{
		melody:   melody,
		note:     cfg.NoteDuration,
		interval: cfg.ToggleInterval,
		state:    OverlayState{Kind: OverlayNone},
	}
}

// State returns a copy of the overlay state.
func (e *OverlayEngine) State() OverlayState {
	return e.state
}

// Kind returns the active overlay tag.
func (e *OverlayEngine) Kind() OverlayKind {
	return e.state.Kind
}

// StartTone starts a tone sequence from its first note. If one is already
// playing it is left untouched and StartTone returns false.
func (e *OverlayEngine) StartTone() bool {
	if e.state.Kind == OverlayTone {
		return false
	}
	e.state = OverlayState{Kind: OverlayTone}
	return true
}

// StartToggle replaces any overlay with a toggle that begins off, with its
// interval measured from now.
func (e *OverlayEngine) StartToggle(now time.Time) {
	e.state = OverlayState{
		Kind:   OverlayToggle,
		Toggle: ToggleState{On: false, LastToggle: now},
	}
}

// StopTone ends a tone sequence. Returns false if none was playing.
func (e *OverlayEngine) StopTone() bool {
	if e.state.Kind != OverlayTone {
		return false
	}
	e.state = OverlayState{Kind: OverlayNone}
	return true
}

// StopToggle ends a toggle overlay. Returns false if none was active.
func (e *OverlayEngine) StopToggle() bool {
	if e.state.Kind != OverlayToggle {
		return false
	}
	e.state = OverlayState{Kind: OverlayNone}
	return true
}

// Clear ends whichever overlay is active.
func (e *OverlayEngine) Clear() {
	e.state = OverlayState{Kind: OverlayNone}
}

// StepTone advances the tone sequence by one note when the note duration
// has elapsed. Returns the frequency to sound and the note counter.
func (e *OverlayEngine) StepTone(now time.Time) (int, uint64) {
	t := &e.state.Tone
	if e.state.Kind != OverlayTone {
		return 0, t.Notes
	}
	if !t.Sounding || now.Sub(t.LastStep) >= e.note {
		t.Hz = e.melody[t.Index]
		t.Index = (t.Index + 1) % len(e.melody)
		t.LastStep = now
		t.Sounding = true
		t.Notes++
	}
	return t.Hz, t.Notes
}

// StepToggle flips the toggle when the interval has elapsed and returns the
// LED levels it implies.
func (e *OverlayEngine) StepToggle(now time.Time) Levels {
	t := &e.state.Toggle
	if e.state.Kind != OverlayToggle {
		return Levels{}
	}
	if now.Sub(t.LastToggle) >= e.interval {
		t.On = !t.On
		t.LastToggle = now
	}
	if t.On {
		return AllLevels(255)
	}
	return Levels{}
}
