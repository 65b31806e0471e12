// Package config loads the panel configuration from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
	"github.com/sweeney/button-panel/internal/output"
)

// Pins holds BCM pin numbers.
type Pins struct {
	Advance int
	Reset   int
	Action  int
	LEDs    []int
	Buzzer  int
}

// Config is the full daemon configuration.
type Config struct {
	Pins     Pins
	GPIOChip string
	I2CBus   string // empty = first available bus
	Display  bool   // drive the SSD1306; false runs without a display

	Debounce       time.Duration
	LongPress      time.Duration
	Cycle          time.Duration
	AlternateStep  time.Duration
	FadeStep       time.Duration
	FadeIncrement  int
	NoteDuration   time.Duration
	ToggleInterval time.Duration
	Melody         []int
	AdvancePolicy  logic.AdvancePolicy

	Broker    string
	HTTP      string
	Heartbeat time.Duration // 0 disables heartbeats
}

// Default returns the stock configuration.
func Default() Config {
	lc := logic.DefaultConfig()
	return Config{
		Pins: Pins{
			Advance: gpio.DefaultPinAdvance,
			Reset:   gpio.DefaultPinReset,
			Action:  gpio.DefaultPinAction,
			LEDs:    append([]int(nil), output.DefaultLEDPins...),
			Buzzer:  output.DefaultBuzzerPin,
		},
		GPIOChip:       "gpiochip0",
		Display:        true,
		Debounce:       50 * time.Millisecond,
		LongPress:      lc.LongPress,
		Cycle:          5 * time.Millisecond,
		AlternateStep:  lc.AlternateStep,
		FadeStep:       lc.FadeStep,
		FadeIncrement:  lc.FadeIncrement,
		NoteDuration:   lc.NoteDuration,
		ToggleInterval: lc.ToggleInterval,
		Melody:         lc.Melody,
		AdvancePolicy:  lc.Policy,
		Broker:         "tcp://192.168.1.200:1883",
		HTTP:           ":80",
		Heartbeat:      15 * time.Minute,
	}
}

type yamlPins struct {
	Advance *int  `yaml:"advance"`
	Reset   *int  `yaml:"reset"`
	Action  *int  `yaml:"action"`
	LEDs    []int `yaml:"leds"`
	Buzzer  *int  `yaml:"buzzer"`
}

type yamlConfig struct {
	Pins           yamlPins `yaml:"pins"`
	GPIOChip       string   `yaml:"gpio_chip"`
	I2CBus         string   `yaml:"i2c_bus"`
	Display        *bool    `yaml:"display"`
	Debounce       string   `yaml:"debounce"`
	LongPress      string   `yaml:"long_press"`
	Cycle          string   `yaml:"cycle"`
	AlternateStep  string   `yaml:"alternate_step"`
	FadeStep       string   `yaml:"fade_step"`
	FadeIncrement  int      `yaml:"fade_increment"`
	NoteDuration   string   `yaml:"note_duration"`
	ToggleInterval string   `yaml:"toggle_interval"`
	Melody         []int    `yaml:"melody"`
	AdvancePolicy  string   `yaml:"advance_policy"`
	Broker         string   `yaml:"broker"`
	HTTP           *string  `yaml:"http"`
	Heartbeat      string   `yaml:"heartbeat"`
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	return Parse(raw)
}

// Parse applies YAML data over the defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Default()

	var file yamlConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := apply(&cfg, file); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func apply(cfg *Config, f yamlConfig) error {
	setInt(&cfg.Pins.Advance, f.Pins.Advance)
	setInt(&cfg.Pins.Reset, f.Pins.Reset)
	setInt(&cfg.Pins.Action, f.Pins.Action)
	setInt(&cfg.Pins.Buzzer, f.Pins.Buzzer)
	if len(f.Pins.LEDs) > 0 {
		cfg.Pins.LEDs = f.Pins.LEDs
	}

	if f.GPIOChip != "" {
		cfg.GPIOChip = f.GPIOChip
	}
	if f.I2CBus != "" {
		cfg.I2CBus = f.I2CBus
	}
	if f.Display != nil {
		cfg.Display = *f.Display
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"debounce", f.Debounce, &cfg.Debounce},
		{"long_press", f.LongPress, &cfg.LongPress},
		{"cycle", f.Cycle, &cfg.Cycle},
		{"alternate_step", f.AlternateStep, &cfg.AlternateStep},
		{"fade_step", f.FadeStep, &cfg.FadeStep},
		{"note_duration", f.NoteDuration, &cfg.NoteDuration},
		{"toggle_interval", f.ToggleInterval, &cfg.ToggleInterval},
		{"heartbeat", f.Heartbeat, &cfg.Heartbeat},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}

	if f.FadeIncrement != 0 {
		cfg.FadeIncrement = f.FadeIncrement
	}
	if len(f.Melody) > 0 {
		cfg.Melody = f.Melody
	}
	if f.AdvancePolicy != "" {
		cfg.AdvancePolicy = logic.AdvancePolicy(f.AdvancePolicy)
	}
	if f.Broker != "" {
		cfg.Broker = f.Broker
	}
	if f.HTTP != nil {
		cfg.HTTP = *f.HTTP
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Validate reports the first problem that would stop the panel from running.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    time.Duration
	}{
		{"debounce", c.Debounce},
		{"long_press", c.LongPress},
		{"cycle", c.Cycle},
		{"alternate_step", c.AlternateStep},
		{"fade_step", c.FadeStep},
		{"note_duration", c.NoteDuration},
		{"toggle_interval", c.ToggleInterval},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.v)
		}
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat)
	}
	if c.FadeIncrement <= 0 || c.FadeIncrement > 255 {
		return fmt.Errorf("fade_increment must be 1..255, got %d", c.FadeIncrement)
	}
	if len(c.Melody) == 0 {
		return errors.New("melody must not be empty")
	}
	for i, hz := range c.Melody {
		if hz <= 0 {
			return fmt.Errorf("melody note %d: frequency must be positive, got %d", i, hz)
		}
	}
	switch c.AdvancePolicy {
	case logic.PolicyCancel, logic.PolicyKeepTone:
	default:
		return fmt.Errorf("unknown advance_policy %q", c.AdvancePolicy)
	}
	if len(c.Pins.LEDs) != logic.LEDCount {
		return fmt.Errorf("pins.leds: need %d pins, got %d", logic.LEDCount, len(c.Pins.LEDs))
	}

	seen := make(map[int]string)
	named := []struct {
		name string
		pin  int
	}{
		{"advance", c.Pins.Advance},
		{"reset", c.Pins.Reset},
		{"action", c.Pins.Action},
		{"buzzer", c.Pins.Buzzer},
	}
	for i, p := range c.Pins.LEDs {
		named = append(named, struct {
			name string
			pin  int
		}{fmt.Sprintf("led %d", i), p})
	}
	for _, p := range named {
		if p.pin < 0 {
			return fmt.Errorf("pins.%s: invalid pin %d", p.name, p.pin)
		}
		if other, ok := seen[p.pin]; ok {
			return fmt.Errorf("pin %d used by both %s and %s", p.pin, other, p.name)
		}
		seen[p.pin] = p.name
	}
	return nil
}

// Logic returns the state machine parameters.
func (c Config) Logic() logic.Config {
	return logic.Config{
		LongPress:      c.LongPress,
		AlternateStep:  c.AlternateStep,
		FadeStep:       c.FadeStep,
		FadeIncrement:  c.FadeIncrement,
		NoteDuration:   c.NoteDuration,
		ToggleInterval: c.ToggleInterval,
		Melody:         append([]int(nil), c.Melody...),
		Policy:         c.AdvancePolicy,
	}
}
