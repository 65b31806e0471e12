// Package panel runs the cooperative control loop: each cycle takes the
// confirmed-press flags, feeds them to the controller, and renders the result.
package panel

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/button-panel/internal/button"
	"github.com/sweeney/button-panel/internal/logic"
	"github.com/sweeney/button-panel/internal/output"
)

// DefaultCycle is the control loop period.
const DefaultCycle = 5 * time.Millisecond

// Buttons are the three physical inputs of the panel.
type Buttons struct {
	Advance *button.Button
	Reset   *button.Button
	Action  *button.Button
}

// Panel owns the controller and renderer. It is not safe for concurrent use:
// Cycle, State and Counts belong to the control loop goroutine.
type Panel struct {
	buttons    Buttons
	controller *logic.Controller
	renderer   *output.Renderer

	actionDown bool
	readFailed bool
}

// New creates a panel. renderer may be nil to run headless.
func New(buttons Buttons, controller *logic.Controller, renderer *output.Renderer) *Panel {
	return &Panel{
		buttons:    buttons,
		controller: controller,
		renderer:   renderer,
	}
}

// Cycle runs one control loop iteration at now and returns the rendered frame.
func (p *Panel) Cycle(now time.Time) logic.Frame {
	in := logic.Input{
		Advance: p.buttons.Advance.TakeConfirmed(),
		Reset:   p.buttons.Reset.TakeConfirmed(),
		Action:  p.buttons.Action.TakeConfirmed(),
		Time:    now,
	}

	// The level only matters while a press session is open or starting.
	// A confirmed press was just re-sampled as held, so that is the last
	// good level if the first read fails.
	if in.Action {
		p.actionDown = true
	}
	if in.Action || p.controller.AwaitingRelease() {
		in.ActionDown = p.sampleAction()
	} else {
		p.actionDown = false
	}

	frame := p.controller.Process(in)
	if p.renderer != nil {
		p.renderer.Render(frame)
	}
	return frame
}

// sampleAction reads the action button level. On a read error the last
// known level is kept so a flaky read cannot end a hold early.
func (p *Panel) sampleAction() bool {
	down, err := p.buttons.Action.Pressed()
	if err != nil {
		if !p.readFailed {
			log.Printf("gpio read error: %s: %v", p.buttons.Action.Name(), err)
			p.readFailed = true
		}
		return p.actionDown
	}
	if p.readFailed {
		log.Printf("gpio read recovered: %s", p.buttons.Action.Name())
		p.readFailed = false
	}
	p.actionDown = down
	return down
}

// State returns the controller state.
func (p *Panel) State() logic.State {
	return p.controller.State()
}

// ButtonStats returns the debounce counters keyed by button name.
func (p *Panel) ButtonStats() map[string]button.Stats {
	stats := make(map[string]button.Stats, 3)
	for _, b := range []*button.Button{p.buttons.Advance, p.buttons.Reset, p.buttons.Action} {
		stats[b.Name()] = b.Stats()
	}
	return stats
}

// Run cycles on every tick until ctx is done, then returns nil. onFrame, if non-nil, is called
// after each cycle on the loop goroutine and must not block.
func (p *Panel) Run(ctx context.Context, now func() time.Time, tick <-chan time.Time, onFrame func(logic.Frame)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			f := p.Cycle(now())
			if onFrame != nil {
				onFrame(f)
			}
		}
	}
}
