// Command panel-sim runs the button panel in a terminal. Keys stand in for
// the buttons; LEDs, buzzer, and display are drawn on screen.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/button-panel/internal/button"
	"github.com/sweeney/button-panel/internal/config"
	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
	"github.com/sweeney/button-panel/internal/panel"
	"github.com/sweeney/button-panel/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (missing file = defaults)")
	logPath := flag.String("log", "panel-sim.log", "Log file (the terminal belongs to the UI)")
	policy := flag.String("advance-policy", "", `"cancel" or "keep-tone" (overrides config)`)
	flag.Parse()

	if err := run(*configPath, *logPath, *policy); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath, policy string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if policy != "" {
		cfg.AdvancePolicy = logic.AdvancePolicy(policy)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	input := gpio.NewFakeInput()
	buttons := panel.Buttons{
		Advance: button.New("advance", cfg.Pins.Advance, cfg.Debounce, input, button.TimeScheduler{}),
		Reset:   button.New("reset", cfg.Pins.Reset, cfg.Debounce, input, button.TimeScheduler{}),
		Action:  button.New("action", cfg.Pins.Action, cfg.Debounce, input, button.TimeScheduler{}),
	}
	for _, b := range []*button.Button{buttons.Advance, buttons.Reset, buttons.Action} {
		if err := input.Watch(b.Pin(), b.HandleEdge); err != nil {
			return fmt.Errorf("watch %s: %w", b.Name(), err)
		}
	}

	// The screen is the only actuator, so the panel runs without a renderer.
	p := panel.New(buttons, logic.NewController(cfg.Logic()), nil)
	latest := &tui.Latest{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(cfg.Cycle)
	defer ticker.Stop()

	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, time.Now, ticker.C, func(f logic.Frame) {
			for _, e := range f.Events {
				log.Printf("event: %s (mode=%s overlay=%s)", e.Type, e.Mode, e.Overlay)
			}
			latest.Store(f, p.State())
		})
	}()
	log.Printf("started: cycle=%v debounce=%v long_press=%v policy=%s", cfg.Cycle, cfg.Debounce, cfg.LongPress, cfg.AdvancePolicy)

	m := tui.NewModel(input, tui.Pins{
		Advance: cfg.Pins.Advance,
		Reset:   cfg.Pins.Reset,
		Action:  cfg.Pins.Action,
	}, latest)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err = prog.Run()

	cancel()
	<-done
	return err
}
