package logic

import "time"

// Display messages.
const (
	MsgReady         = "Ready"
	MsgReset         = "Reset: Off"
	MsgMelodyStarted = "Melody started"
	MsgToggle        = "LED Toggle"
)

// Controller arbitrates domain events between the mode list and the
// overlays, and produces one Frame per control-loop cycle.
type Controller struct {
	policy     AdvancePolicy
	classifier *Classifier
	modes      *ModeController
	overlay    *OverlayEngine

	leds    Levels
	message string
	counts  EventCounts
}

// State is a point-in-time view of the controller.
type State struct {
	Mode            Mode
	ModeIndex       int
	Label           string
	Overlay         OverlayState
	AwaitingRelease bool
	LEDs            Levels
	Message         string
	Text            string
	Counts          EventCounts
}

// NewController creates a controller at mode 0 with no overlay active.
func NewController(cfg Config) *Controller {
	policy := cfg.Policy
	if policy != PolicyKeepTone {
		policy = PolicyCancel
	}
	return &Controller{
		policy:     policy,
		classifier: NewClassifier(cfg.LongPress),
		modes:      NewModeController(cfg),
		overlay:    NewOverlayEngine(cfg),
		message:    MsgReady,
	}
}

// Process applies one cycle of input and returns the resulting Frame.
//
// Events confirmed in the same cycle are applied with fixed precedence:
// Reset, then Advance, then the dual-button classification. A Reset
// suppresses an Advance from the same cycle.
func (c *Controller) Process(in Input) Frame {
	now := in.Time
	var events []Event

	kind, classified := c.classifier.Observe(in.Action, in.ActionDown, now)

	switch {
	case in.Reset:
		c.applyReset()
		events = append(events, c.event(now, EventReset))
	case in.Advance:
		c.applyAdvance()
		events = append(events, c.event(now, EventAdvance))
	}

	if classified {
		if kind == PressLong {
			c.applyLongPress()
			events = append(events, c.event(now, EventLongPress))
		} else {
			c.applyShortPress(now)
			events = append(events, c.event(now, EventShortPress))
		}
	}

	frame := Frame{Time: now, Events: events}

	switch c.overlay.Kind() {
	case OverlayTone:
		// LEDs hold their last rendered levels while the melody plays.
		frame.ToneHz, frame.ToneStep = c.overlay.StepTone(now)
	case OverlayToggle:
		c.leds = c.overlay.StepToggle(now)
	default:
		c.leds = c.modes.Step(now)
	}

	frame.LEDs = c.leds
	frame.Text = c.Text()
	return frame
}

func (c *Controller) applyReset() {
	c.overlay.Clear()
	c.modes.Reset()
	c.message = MsgReset
	c.counts.Reset++
}

func (c *Controller) applyAdvance() {
	if c.policy == PolicyKeepTone {
		c.overlay.StopToggle()
	} else {
		c.overlay.Clear()
	}
	c.modes.Advance()
	c.message = "Mode: " + c.modes.Label()
	c.counts.Advance++
}

func (c *Controller) applyLongPress() {
	c.counts.Long++
	if c.overlay.StartTone() {
		c.message = MsgMelodyStarted
	}
}

func (c *Controller) applyShortPress(now time.Time) {
	c.counts.Short++
	c.overlay.StopTone()
	c.overlay.StartToggle(now)
	c.message = MsgToggle
}

func (c *Controller) event(now time.Time, t EventType) Event {
	return Event{
		Timestamp: now,
		Type:      t,
		Mode:      c.modes.Mode(),
		Overlay:   c.overlay.Kind(),
	}
}

// Text returns the two-line display text for the current state.
func (c *Controller) Text() string {
	melody := "Melody: OFF"
	if c.overlay.Kind() == OverlayTone {
		melody = "Melody: ON"
	}
	return c.message + "\n" + melody
}

// AwaitingRelease reports whether the dual button is being held in a live session.
func (c *Controller) AwaitingRelease() bool {
	return c.classifier.AwaitingRelease()
}

// State returns a point-in-time copy of the controller.
func (c *Controller) State() State {
	return State{
		Mode:            c.modes.Mode(),
		ModeIndex:       c.modes.Index(),
		Label:           c.modes.Label(),
		Overlay:         c.overlay.State(),
		AwaitingRelease: c.classifier.AwaitingRelease(),
		LEDs:            c.leds,
		Message:         c.message,
		Text:            c.Text(),
		Counts:          c.counts,
	}
}

// EventCountsSnapshot returns the event counters since startup.
func (c *Controller) EventCountsSnapshot() EventCounts {
	return c.counts
}
