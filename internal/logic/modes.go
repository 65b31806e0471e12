package logic

import "time"

// ModeController tracks the current mode and the per-mode animation state.
// Each animated mode keeps its own last-step timestamp so their timers
// never interact.
type ModeController struct {
	index int

	alternateStep time.Duration
	fadeStep      time.Duration
	fadeIncrement int

	altPhase   int
	altLast    time.Time
	altStepped bool

	brightness int
	fadeDir    int
	fadeLast   time.Time
	fadeActive bool
}

// NewModeController creates a controller at the first mode.
func NewModeController(cfg Config) *ModeController {
	inc := cfg.FadeIncrement
	if inc <= 0 {
		inc = 1
	}
	return &ModeController{
		alternateStep: cfg.AlternateStep,
		fadeStep:      cfg.FadeStep,
		fadeIncrement: inc,
		fadeDir:       inc,
	}
}

// Advance moves to the next mode, wrapping at the end of the list.
func (m *ModeController) Advance() {
	m.index = (m.Index() + 1) % len(Modes)
}

// Reset returns to the first mode.
func (m *ModeController) Reset() {
	m.index = 0
}

// Index returns the current position in Modes. An out-of-range index is
// clamped to 0.
func (m *ModeController) Index() int {
	if m.index < 0 || m.index >= len(Modes) {
		m.index = 0
	}
	return m.index
}

// Mode returns the current mode.
func (m *ModeController) Mode() Mode {
	return Modes[m.Index()]
}

// Label returns the display label of the current mode.
func (m *ModeController) Label() string {
	return m.Mode().String()
}

// Step runs one time-sliced animation step of the current mode and returns
// the LED levels it implies.
func (m *ModeController) Step(now time.Time) Levels {
	switch m.Mode() {
	case ModeAlternate:
		if !m.altStepped || now.Sub(m.altLast) >= m.alternateStep {
			m.altPhase = (m.altPhase + 1) % LEDCount
			m.altLast = now
			m.altStepped = true
		}
		var l Levels
		l[m.altPhase] = 255
		return l

	case ModeOn:
		return AllLevels(255)

	case ModeFade:
		if !m.fadeActive || now.Sub(m.fadeLast) >= m.fadeStep {
			m.stepFade()
			m.fadeLast = now
			m.fadeActive = true
		}
		return AllLevels(uint8(m.brightness))

	default:
		return Levels{}
	}
}

// stepFade moves brightness one increment and bounces at the range ends.
func (m *ModeController) stepFade() {
	m.brightness += m.fadeDir
	if m.brightness <= 0 {
		m.brightness = 0
		m.fadeDir = m.fadeIncrement
	}
	if m.brightness >= 255 {
		m.brightness = 255
		m.fadeDir = -m.fadeIncrement
	}
}
