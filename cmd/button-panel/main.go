// Command button-panel runs a three-button LED/buzzer/display panel on GPIO
// and publishes panel events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/host/v3"

	"github.com/sweeney/button-panel/internal/button"
	"github.com/sweeney/button-panel/internal/config"
	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
	"github.com/sweeney/button-panel/internal/mqtt"
	"github.com/sweeney/button-panel/internal/output"
	"github.com/sweeney/button-panel/internal/panel"
	"github.com/sweeney/button-panel/internal/status"
	"github.com/sweeney/button-panel/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/button-panel.yaml", "YAML config file (missing file = defaults)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config; \"off\" disables)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config; \"off\" disables)")
	debounce := flag.Duration("debounce", 0, "Debounce window (overrides config)")
	longPress := flag.Duration("long-press", 0, "Long press threshold (overrides config)")
	cycle := flag.Duration("cycle", 0, "Control loop period (overrides config)")
	heartbeat := flag.Duration("heartbeat", -1, "Heartbeat interval, 0 to disable (overrides config)")
	policy := flag.String("advance-policy", "", `What advance does to a playing melody: "cancel" or "keep-tone" (overrides config)`)
	printState := flag.Bool("print-state", false, "Print current button levels and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyFlags(&cfg, *broker, *httpAddr, *debounce, *longPress, *cycle, *heartbeat, *policy)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: config: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags overrides cfg with every flag that was given.
func applyFlags(cfg *config.Config, broker, httpAddr string, debounce, longPress, cycle, heartbeat time.Duration, policy string) {
	switch broker {
	case "":
	case "off":
		cfg.Broker = ""
	default:
		cfg.Broker = broker
	}
	switch httpAddr {
	case "":
	case "off":
		cfg.HTTP = ""
	default:
		cfg.HTTP = httpAddr
	}
	if debounce > 0 {
		cfg.Debounce = debounce
	}
	if longPress > 0 {
		cfg.LongPress = longPress
	}
	if cycle > 0 {
		cfg.Cycle = cycle
	}
	if heartbeat >= 0 {
		cfg.Heartbeat = heartbeat
	}
	if policy != "" {
		cfg.AdvancePolicy = logic.AdvancePolicy(policy)
	}
}

func run(cfg config.Config, printState bool) error {
	// Initialize GPIO
	input, err := gpio.NewRealInput(cfg.GPIOChip, cfg.Pins.Advance, cfg.Pins.Reset, cfg.Pins.Action)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer input.Close()

	// Print state mode
	if printState {
		out, err := formatLevels(input, cfg.Pins)
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Println(out)
		return nil
	}

	buttons, err := newButtons(input, cfg, button.TimeScheduler{})
	if err != nil {
		return err
	}

	// Actuators are optional: the panel keeps running without any of them.
	leds, tone, display, closers := openActuators(cfg)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Printf("close actuator: %v", err)
			}
		}
	}()

	p := panel.New(buttons, logic.NewController(cfg.Logic()), output.NewRenderer(leds, tone, display))

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		rp, err := mqtt.NewRealPublisher(cfg.Broker)
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			defer rp.Close()
			publisher, mqttStatus = rp, rp
		}
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		DebounceMs:    cfg.Debounce.Milliseconds(),
		LongPressMs:   cfg.LongPress.Milliseconds(),
		CycleMs:       cfg.Cycle.Milliseconds(),
		HeartbeatMs:   cfg.Heartbeat.Milliseconds(),
		AdvancePolicy: string(cfg.AdvancePolicy),
		Broker:        cfg.Broker,
		HTTPPort:      cfg.HTTP,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: cycle=%v debounce=%v long_press=%v policy=%s broker=%s heartbeat=%v",
		cfg.Cycle, cfg.Debounce, cfg.LongPress, cfg.AdvancePolicy, cfg.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Cycle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(p, publisher, mqttStatus, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// newButtons creates the three buttons and hooks their edge handlers.
func newButtons(input gpio.Input, cfg config.Config, sched button.Scheduler) (panel.Buttons, error) {
	b := panel.Buttons{
		Advance: button.New("advance", cfg.Pins.Advance, cfg.Debounce, input, sched),
		Reset:   button.New("reset", cfg.Pins.Reset, cfg.Debounce, input, sched),
		Action:  button.New("action", cfg.Pins.Action, cfg.Debounce, input, sched),
	}
	for _, btn := range []*button.Button{b.Advance, b.Reset, b.Action} {
		if err := input.Watch(btn.Pin(), btn.HandleEdge); err != nil {
			return b, fmt.Errorf("watch %s: %w", btn.Name(), err)
		}
	}
	return b, nil
}

// openActuators opens whatever hardware is present. Each failure is logged
// and leaves that actuator nil.
func openActuators(cfg config.Config) (output.LEDs, output.Tone, output.Display, []io.Closer) {
	var (
		leds    output.LEDs
		tone    output.Tone
		display output.Display
		closers []io.Closer
	)

	if _, err := host.Init(); err != nil {
		log.Printf("periph init: %v (running without leds, buzzer, display)", err)
		return nil, nil, nil, nil
	}

	if l, err := output.NewPWMLEDs(cfg.Pins.LEDs); err != nil {
		log.Printf("leds unavailable: %v", err)
	} else {
		leds = l
		closers = append(closers, l)
	}

	if t, err := output.NewPWMTone(cfg.Pins.Buzzer); err != nil {
		log.Printf("buzzer unavailable: %v", err)
	} else {
		tone = t
		closers = append(closers, t)
	}

	if cfg.Display {
		if o, err := output.NewOLED(cfg.I2CBus); err != nil {
			log.Printf("display unavailable: %v", err)
		} else {
			async := output.NewAsyncDisplay(o)
			display = async
			// The async writer must drain before the device is halted.
			closers = append(closers, async, o)
		}
	}

	return leds, tone, display, closers
}

func runLoop(p *panel.Panel, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher == nil {
				return nil
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			frame := p.Cycle(t)

			for _, event := range frame.Events {
				log.Printf("event: %s (mode=%s overlay=%s)", event.Type, event.Mode, event.Overlay)
				if publisher == nil {
					continue
				}
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't stop the loop on publish failure
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(p.State(), p.ButtonStats())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat <= 0 || t.Sub(lastHeartbeat) < heartbeat {
				continue
			}
			lastHeartbeat = t

			st := p.State()
			log.Printf("heartbeat: mode=%s overlay=%s advance=%d reset=%d short=%d long=%d",
				st.Label, st.Overlay.Kind, st.Counts.Advance, st.Counts.Reset, st.Counts.Short, st.Counts.Long)
			if publisher == nil {
				continue
			}
			hbEvent := mqtt.SystemEvent{
				Timestamp: t,
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// formatLevels reads every button once for -print-state.
func formatLevels(input button.Input, pins config.Pins) (string, error) {
	named := []struct {
		name string
		pin  int
	}{
		{"advance", pins.Advance},
		{"reset", pins.Reset},
		{"action", pins.Action},
	}
	out := ""
	for i, n := range named {
		down, err := input.Pressed(n.pin)
		if err != nil {
			return "", err
		}
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s(%d): %s", n.name, n.pin, levelString(down))
	}
	return out, nil
}

func levelString(down bool) string {
	if down {
		return "PRESSED"
	}
	return "RELEASED"
}
