package logic

import "time"

// PressKind is the classification of a completed press.
type PressKind int

const (
	PressShort PressKind = iota
	PressLong
)

func (k PressKind) String() string {
	if k == PressLong {
		return "LONG"
	}
	return "SHORT"
}

// Classifier measures how long the dual-behavior button is held.
// It is level-driven after the confirmed press, so it only needs to be
// polled once per control-loop cycle.
type Classifier struct {
	threshold time.Duration
	awaiting  bool
	start     time.Time
}

// NewClassifier creates a classifier. Presses held for at least threshold are long.
func NewClassifier(threshold time.Duration) *Classifier {
	return &Classifier{threshold: threshold}
}

// Observe feeds one cycle of input. confirmed is the debounced press flag,
// down the sampled level. Returns the classification when a release completes
// a session. A confirmed press while a session is live is ignored.
func (c *Classifier) Observe(confirmed, down bool, now time.Time) (PressKind, bool) {
	if !c.awaiting {
		if !confirmed {
			return PressShort, false
		}
		c.awaiting = true
		c.start = now
	}

	if down {
		return PressShort, false
	}

	c.awaiting = false
	if now.Sub(c.start) >= c.threshold {
		return PressLong, true
	}
	return PressShort, true
}

// AwaitingRelease reports whether a press session is live.
func (c *Classifier) AwaitingRelease() bool {
	return c.awaiting
}

// PressStart returns the start time of the live session, zero if none.
func (c *Classifier) PressStart() time.Time {
	if !c.awaiting {
		return time.Time{}
	}
	return c.start
}
