package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/button-panel/internal/logic"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Pins.Advance != 25 || cfg.Pins.Reset != 26 || cfg.Pins.Action != 27 {
		t.Errorf("button pins: got %+v", cfg.Pins)
	}
	if cfg.Debounce != 50*time.Millisecond {
		t.Errorf("Debounce: got %v, want 50ms", cfg.Debounce)
	}
	if cfg.LongPress != 1500*time.Millisecond {
		t.Errorf("LongPress: got %v, want 1.5s", cfg.LongPress)
	}
	if cfg.Cycle != 5*time.Millisecond {
		t.Errorf("Cycle: got %v, want 5ms", cfg.Cycle)
	}
	if cfg.AdvancePolicy != logic.PolicyCancel {
		t.Errorf("AdvancePolicy: got %q, want cancel", cfg.AdvancePolicy)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LongPress != Default().LongPress {
		t.Errorf("expected defaults, got LongPress=%v", cfg.LongPress)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Broker != Default().Broker {
		t.Errorf("Broker: got %q", cfg.Broker)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	data := `
pins:
  advance: 5
  leds: [12, 13, 16]
debounce: 30ms
long_press: 2s
melody: [440, 880]
advance_policy: keep-tone
display: false
http: ""
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pins.Advance != 5 {
		t.Errorf("Pins.Advance: got %d, want 5", cfg.Pins.Advance)
	}
	if cfg.Pins.Reset != 26 {
		t.Errorf("Pins.Reset: got %d, want default 26", cfg.Pins.Reset)
	}
	if len(cfg.Pins.LEDs) != 3 || cfg.Pins.LEDs[2] != 16 {
		t.Errorf("Pins.LEDs: got %v", cfg.Pins.LEDs)
	}
	if cfg.Debounce != 30*time.Millisecond {
		t.Errorf("Debounce: got %v, want 30ms", cfg.Debounce)
	}
	if cfg.LongPress != 2*time.Second {
		t.Errorf("LongPress: got %v, want 2s", cfg.LongPress)
	}
	if len(cfg.Melody) != 2 || cfg.Melody[1] != 880 {
		t.Errorf("Melody: got %v", cfg.Melody)
	}
	if cfg.AdvancePolicy != logic.PolicyKeepTone {
		t.Errorf("AdvancePolicy: got %q", cfg.AdvancePolicy)
	}
	if cfg.Display {
		t.Error("expected Display=false")
	}
	if cfg.HTTP != "" {
		t.Errorf("HTTP: got %q, want disabled", cfg.HTTP)
	}
	if cfg.Cycle != 5*time.Millisecond {
		t.Errorf("Cycle: got %v, want default 5ms", cfg.Cycle)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "pins: [", "parse config yaml"},
		{"bad duration", "debounce: fast", "debounce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero debounce", func(c *Config) { c.Debounce = 0 }, "debounce"},
		{"negative cycle", func(c *Config) { c.Cycle = -time.Millisecond }, "cycle"},
		{"zero long press", func(c *Config) { c.LongPress = 0 }, "long_press"},
		{"negative heartbeat", func(c *Config) { c.Heartbeat = -1 }, "heartbeat"},
		{"empty melody", func(c *Config) { c.Melody = nil }, "melody"},
		{"silent note", func(c *Config) { c.Melody = []int{440, 0} }, "melody note 1"},
		{"unknown policy", func(c *Config) { c.AdvancePolicy = "skip" }, "advance_policy"},
		{"fade increment", func(c *Config) { c.FadeIncrement = 0 }, "fade_increment"},
		{"two leds", func(c *Config) { c.Pins.LEDs = []int{17, 18} }, "pins.leds"},
		{"duplicate pin", func(c *Config) { c.Pins.Reset = c.Pins.Advance }, "used by both"},
		{"led on button pin", func(c *Config) { c.Pins.LEDs = []int{17, 18, 27} }, "used by both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestHeartbeatZeroIsValid(t *testing.T) {
	cfg := Default()
	cfg.Heartbeat = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("heartbeat 0 should disable, got %v", err)
	}
}

func TestLogic(t *testing.T) {
	cfg := Default()
	cfg.LongPress = 900 * time.Millisecond
	cfg.AdvancePolicy = logic.PolicyKeepTone

	lc := cfg.Logic()
	if lc.LongPress != 900*time.Millisecond {
		t.Errorf("LongPress: got %v", lc.LongPress)
	}
	if lc.Policy != logic.PolicyKeepTone {
		t.Errorf("Policy: got %q", lc.Policy)
	}

	lc.Melody[0] = 1
	if cfg.Melody[0] == 1 {
		t.Error("Logic should copy the melody")
	}
}
