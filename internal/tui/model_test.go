package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
)

var testPins = Pins{Advance: 25, Reset: 26, Action: 27}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel() (Model, *gpio.FakeInput, *Latest) {
	in := gpio.NewFakeInput()
	latest := &Latest{}
	return NewModel(in, testPins, latest), in, latest
}

func pressed(t *testing.T, in *gpio.FakeInput, pin int) bool {
	t.Helper()
	down, err := in.Pressed(pin)
	if err != nil {
		t.Fatalf("Pressed: %v", err)
	}
	return down
}

func TestTapPressesThenReleases(t *testing.T) {
	m, in, _ := newTestModel()

	next, cmd := m.Update(key("a"))
	if cmd == nil {
		t.Fatal("expected release command")
	}
	if !pressed(t, in, testPins.Advance) {
		t.Error("advance should be held during tap")
	}

	next.Update(releaseMsg(testPins.Advance))
	if pressed(t, in, testPins.Advance) {
		t.Error("advance should be released after tap")
	}
}

func TestSpaceLatchesHold(t *testing.T) {
	m, in, _ := newTestModel()

	next, _ := m.Update(key(" "))
	m = next.(Model)
	if !m.holding || !pressed(t, in, testPins.Action) {
		t.Fatal("space should hold the action button")
	}

	// A stray tap release must not cut the hold short.
	next, _ = m.Update(releaseMsg(testPins.Action))
	m = next.(Model)
	if !pressed(t, in, testPins.Action) {
		t.Error("release during hold ended it")
	}

	// s is ignored while holding
	if _, cmd := m.Update(key("s")); cmd != nil {
		t.Error("short press while holding should do nothing")
	}

	next, _ = m.Update(key(" "))
	m = next.(Model)
	if m.holding || pressed(t, in, testPins.Action) {
		t.Error("second space should release")
	}
}

func TestEdgesReachWatchers(t *testing.T) {
	m, in, _ := newTestModel()
	edges := 0
	in.Watch(testPins.Action, func() { edges++ })

	m.Update(key("g"))
	m.Update(key("s"))

	if edges != 2 {
		t.Errorf("edges: got %d, want 2", edges)
	}
	if !pressed(t, in, testPins.Action) {
		t.Error("s should hold until release")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel()
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Error("view should be empty after quit")
	}
}

func TestViewShowsFrame(t *testing.T) {
	m, _, latest := newTestModel()
	latest.Store(
		logic.Frame{LEDs: logic.Levels{255, 0, 0}, ToneHz: 330, Text: "Melody started\nMelody: ON"},
		logic.State{ModeIndex: 1, Label: "Alternate", Overlay: logic.OverlayState{Kind: logic.OverlayTone}},
	)

	v := m.View()
	for _, want := range []string{"330 Hz", "Melody started", "Alternate", "TONE"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewBeforeFirstFrame(t *testing.T) {
	m, _, _ := newTestModel()
	v := m.View()
	if !strings.Contains(v, "silent") || !strings.Contains(v, "Ready") {
		t.Errorf("unexpected initial view:\n%s", v)
	}
}
