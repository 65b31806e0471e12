package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/button-panel/internal/button"
	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
	"github.com/sweeney/button-panel/internal/mqtt"
	"github.com/sweeney/button-panel/internal/output"
	"github.com/sweeney/button-panel/internal/panel"
	"github.com/sweeney/button-panel/internal/status"
)

const debounce = 50 * time.Millisecond

// bench wires every package together the way the daemon does, with fakes
// at the hardware and broker edges.
type bench struct {
	t       *testing.T
	in      *gpio.FakeInput
	sched   *button.ManualScheduler
	leds    *output.FakeLEDs
	tone    *output.FakeTone
	disp    *output.FakeDisplay
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
	p       *panel.Panel
	now     time.Time
}

func newBench(t *testing.T, cfg logic.Config) *bench {
	t.Helper()
	start := time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)
	b := &bench{
		t:     t,
		in:    gpio.NewFakeInput(),
		sched: button.NewManualScheduler(),
		leds:  &output.FakeLEDs{},
		tone:  &output.FakeTone{},
		disp:  &output.FakeDisplay{},
		pub:   mqtt.NewFakePublisher(),
		now:   start,
	}
	b.tracker = status.NewTracker(start, status.Config{
		DebounceMs:    debounce.Milliseconds(),
		LongPressMs:   cfg.LongPress.Milliseconds(),
		CycleMs:       panel.DefaultCycle.Milliseconds(),
		AdvancePolicy: string(cfg.Policy),
		Broker:        "tcp://test:1883",
	})

	buttons := panel.Buttons{
		Advance: button.New("advance", gpio.DefaultPinAdvance, debounce, b.in, b.sched),
		Reset:   button.New("reset", gpio.DefaultPinReset, debounce, b.in, b.sched),
		Action:  button.New("action", gpio.DefaultPinAction, debounce, b.in, b.sched),
	}
	for _, btn := range []*button.Button{buttons.Advance, buttons.Reset, buttons.Action} {
		if err := b.in.Watch(btn.Pin(), btn.HandleEdge); err != nil {
			t.Fatalf("Watch: %v", err)
		}
	}
	b.p = panel.New(buttons, logic.NewController(cfg), output.NewRenderer(b.leds, b.tone, b.disp))
	return b
}

// run steps the loop for d, publishing events and updating status as the
// daemon does each cycle.
func (b *bench) run(d time.Duration) {
	b.t.Helper()
	for end := b.now.Add(d); b.now.Before(end); {
		b.now = b.now.Add(panel.DefaultCycle)
		b.sched.Advance(panel.DefaultCycle)
		f := b.p.Cycle(b.now)
		for _, e := range f.Events {
			if err := b.pub.Publish(e); err != nil {
				b.t.Logf("publish failed: %v", err)
			}
		}
		b.tracker.Update(b.p.State(), b.p.ButtonStats())
	}
}

func (b *bench) hold(pin int, d time.Duration) {
	b.in.Press(pin)
	b.run(d)
	b.in.Release(pin)
	b.run(20 * time.Millisecond)
}

func (b *bench) tap(pin int) {
	b.hold(pin, 100*time.Millisecond)
}

func assertTypes(t *testing.T, got []logic.EventType, want ...logic.EventType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func statusJSON(t *testing.T, b *bench) status.StatusInner {
	t.Helper()
	var out status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(b.tracker.Snapshot()), &out); err != nil {
		t.Fatalf("status JSON: %v", err)
	}
	return out.Status
}

func TestIntegrationFullFlow(t *testing.T) {
	b := newBench(t, logic.DefaultConfig())

	b.tap(gpio.DefaultPinAdvance)                        // Alternate
	b.tap(gpio.DefaultPinAdvance)                        // On
	b.hold(gpio.DefaultPinAction, 1600*time.Millisecond) // tone
	b.tap(gpio.DefaultPinAction)                         // toggle
	b.tap(gpio.DefaultPinReset)

	assertTypes(t, b.pub.EventTypes(),
		logic.EventAdvance, logic.EventAdvance, logic.EventLongPress, logic.EventShortPress, logic.EventReset)

	modes := []logic.Mode{logic.ModeAlternate, logic.ModeOn, logic.ModeOn, logic.ModeOn, logic.ModeOff}
	overlays := []logic.OverlayKind{logic.OverlayNone, logic.OverlayNone, logic.OverlayTone, logic.OverlayToggle, logic.OverlayNone}
	for i, e := range b.pub.Events {
		if e.Mode != modes[i] || e.Overlay != overlays[i] {
			t.Errorf("event %d (%s): got %s/%s, want %s/%s", i, e.Type, e.Mode, e.Overlay, modes[i], overlays[i])
		}
	}

	if len(b.tone.Played) == 0 {
		t.Error("long press never reached the buzzer")
	}
	if b.tone.Sounding() != 0 {
		t.Errorf("buzzer still sounding %d Hz after reset", b.tone.Sounding())
	}
	if got := b.leds.Last(); got != (logic.Levels{}) {
		t.Errorf("LEDs after reset: got %v, want all off", got)
	}
	if got := b.disp.Last(); got != b.p.State().Text {
		t.Errorf("display: got %q, want %q", got, b.p.State().Text)
	}

	s := statusJSON(t, b)
	if s.Mode != "Off" || s.Overlay != "NONE" || !s.Ready {
		t.Errorf("status: mode=%s overlay=%s ready=%v", s.Mode, s.Overlay, s.Ready)
	}
	if s.Counts.Advance != 2 || s.Counts.LongPress != 1 || s.Counts.ShortPress != 1 || s.Counts.Reset != 1 {
		t.Errorf("counts: %+v", s.Counts)
	}
}

func TestIntegrationNoEventsAtStartup(t *testing.T) {
	b := newBench(t, logic.DefaultConfig())
	b.run(2 * time.Second)

	if len(b.pub.Events) != 0 {
		t.Errorf("idle panel published %v", b.pub.EventTypes())
	}
	if b.p.State().Mode != logic.ModeOff {
		t.Errorf("startup mode: got %s, want Off", b.p.State().Mode)
	}
}

func TestIntegrationBounceRejection(t *testing.T) {
	b := newBench(t, logic.DefaultConfig())

	for i := 0; i < 5; i++ {
		b.in.Glitch(gpio.DefaultPinAdvance)
		b.run(10 * time.Millisecond)
	}
	b.run(100 * time.Millisecond)

	if len(b.pub.Events) != 0 {
		t.Errorf("glitches published %v", b.pub.EventTypes())
	}
	if s := statusJSON(t, b); s.Counts.Bounces == 0 {
		t.Error("bounces not counted in status")
	}
}

func TestIntegrationSimultaneousPresses(t *testing.T) {
	b := newBench(t, logic.DefaultConfig())

	b.in.Press(gpio.DefaultPinAdvance)
	b.in.Press(gpio.DefaultPinReset)
	b.run(100 * time.Millisecond)
	b.in.Release(gpio.DefaultPinAdvance)
	b.in.Release(gpio.DefaultPinReset)
	b.run(20 * time.Millisecond)

	// Reset wins the cycle; the advance is dropped.
	assertTypes(t, b.pub.EventTypes(), logic.EventReset)
	if b.p.State().Mode != logic.ModeOff {
		t.Errorf("mode: got %s, want Off", b.p.State().Mode)
	}
}

func TestIntegrationKeepTonePolicy(t *testing.T) {
	cfg := logic.DefaultConfig()
	cfg.Policy = logic.PolicyKeepTone
	b := newBench(t, cfg)

	b.hold(gpio.DefaultPinAction, 1600*time.Millisecond)
	b.tap(gpio.DefaultPinAdvance)

	assertTypes(t, b.pub.EventTypes(), logic.EventLongPress, logic.EventAdvance)
	if got := b.pub.Events[1].Overlay; got != logic.OverlayTone {
		t.Errorf("overlay after advance: got %s, want TONE", got)
	}
	if b.tone.Sounding() == 0 {
		t.Error("tone stopped by advance under keep-tone")
	}
}

func TestIntegrationPublishFailureDoesNotStopLoop(t *testing.T) {
	b := newBench(t, logic.DefaultConfig())
	b.pub.PublishError = errors.New("broker down")

	b.tap(gpio.DefaultPinAdvance)
	b.pub.PublishError = nil
	b.tap(gpio.DefaultPinAdvance)

	assertTypes(t, b.pub.EventTypes(), logic.EventAdvance)
	if b.p.State().Mode != logic.ModeOn {
		t.Errorf("mode: got %s, want On", b.p.State().Mode)
	}
}

func TestIntegrationPayloadFormat(t *testing.T) {
	b := newBench(t, logic.DefaultConfig())
	b.tap(gpio.DefaultPinAdvance)

	if len(b.pub.Payloads) != 1 {
		t.Fatalf("payloads: got %d, want 1", len(b.pub.Payloads))
	}
	var p mqtt.Payload
	if err := json.Unmarshal(b.pub.Payloads[0], &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.Panel.Event != "ADVANCE" || p.Panel.Mode != "Alternate" || p.Panel.ModeIndex != 1 || p.Panel.Overlay != "NONE" {
		t.Errorf("payload: %+v", p.Panel)
	}
	if _, err := time.Parse(time.RFC3339, p.Panel.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", p.Panel.Timestamp, err)
	}
}

func TestIntegrationShutdownAfterEvents(t *testing.T) {
	b := newBench(t, logic.DefaultConfig())
	b.tap(gpio.DefaultPinAdvance)
	b.hold(gpio.DefaultPinAction, 1600*time.Millisecond)

	payload := status.FormatStatusEvent(b.tracker.Snapshot(), "SHUTDOWN", "SIGTERM")
	if err := b.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  b.now,
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		RawPayload: payload,
		Retained:   true,
	}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}

	var out status.StatusJSON
	if err := json.Unmarshal(b.pub.SystemPayloads[0], &out); err != nil {
		t.Fatalf("shutdown payload: %v", err)
	}
	s := out.Status
	if s.Event != "SHUTDOWN" || s.Reason != "SIGTERM" {
		t.Errorf("event/reason: %s/%s", s.Event, s.Reason)
	}
	if s.Mode != "Alternate" || s.Overlay != "TONE" || s.ToneHz == 0 {
		t.Errorf("shutdown state: mode=%s overlay=%s tone=%d", s.Mode, s.Overlay, s.ToneHz)
	}
}
