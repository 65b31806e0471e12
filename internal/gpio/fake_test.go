package gpio

import (
	"errors"
	"testing"
)

func TestFakeInputLevels(t *testing.T) {
	f := NewFakeInput()

	pressed, err := f.Pressed(DefaultPinAdvance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pressed {
		t.Error("expected released initially")
	}

	f.Press(DefaultPinAdvance)
	pressed, _ = f.Pressed(DefaultPinAdvance)
	if !pressed {
		t.Error("expected pressed after Press")
	}

	// Other pins are unaffected
	pressed, _ = f.Pressed(DefaultPinReset)
	if pressed {
		t.Error("reset pin should still be released")
	}

	f.Release(DefaultPinAdvance)
	pressed, _ = f.Pressed(DefaultPinAdvance)
	if pressed {
		t.Error("expected released after Release")
	}
}

func TestFakeInputEdges(t *testing.T) {
	f := NewFakeInput()
	edges := 0
	if err := f.Watch(DefaultPinAction, func() { edges++ }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.Press(DefaultPinAction)
	f.Release(DefaultPinAction)
	f.Glitch(DefaultPinAction)

	if edges != 2 {
		t.Errorf("expected 2 falling edges, got %d", edges)
	}
	pressed, _ := f.Pressed(DefaultPinAction)
	if pressed {
		t.Error("glitch should leave the pin released")
	}
}

func TestFakeInputUnwatchedPin(t *testing.T) {
	f := NewFakeInput()

	// No handler registered: must not panic
	f.Press(DefaultPinReset)
	f.Glitch(DefaultPinReset)
}

func TestFakeInputErrors(t *testing.T) {
	f := NewFakeInput()
	f.ReadError = errors.New("simulated error")

	_, err := f.Pressed(DefaultPinAdvance)
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}

	f.WatchError = errors.New("busy")
	if err := f.Watch(DefaultPinAdvance, func() {}); err == nil {
		t.Error("expected watch error")
	}

	g := NewFakeInput()
	if err := g.Watch(DefaultPinAdvance, nil); err == nil {
		t.Error("expected error for nil handler")
	}
}

func TestFakeInputClose(t *testing.T) {
	f := NewFakeInput()

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}
