package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-panel/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	ModeIndex     int          `json:"mode_index"`
	Overlay       string       `json:"overlay"`
	ToneHz        int          `json:"tone_hz"`
	LEDs          []int        `json:"leds"`
	Message       string       `json:"message"`
	Holding       bool         `json:"holding"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Buttons       []ButtonJSON `json:"buttons"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Advance    int    `json:"advance"`
	Reset      int    `json:"reset"`
	ShortPress int    `json:"short_press"`
	LongPress  int    `json:"long_press"`
	Bounces    uint64 `json:"bounces"`
}

// ButtonJSON is the JSON representation of one button's debounce counters.
type ButtonJSON struct {
	Name      string `json:"name"`
	Edges     uint64 `json:"edges"`
	Ignored   uint64 `json:"ignored"`
	Confirmed uint64 `json:"confirmed"`
	Bounces   uint64 `json:"bounces"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DebounceMs    int64  `json:"debounce_ms"`
	LongPressMs   int64  `json:"long_press_ms"`
	CycleMs       int64  `json:"cycle_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	AdvancePolicy string `json:"advance_policy"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	p := snap.Panel
	mode := p.Label
	if mode == "" {
		mode = "UNKNOWN"
	}
	overlay := string(p.Overlay.Kind)
	if overlay == "" {
		overlay = "NONE"
	}
	leds := make([]int, len(p.LEDs))
	for i, v := range p.LEDs {
		leds[i] = int(v)
	}
	buttons := make([]ButtonJSON, len(snap.Buttons))
	for i, b := range snap.Buttons {
		buttons[i] = ButtonJSON{
			Name:      b.Name,
			Edges:     b.Edges,
			Ignored:   b.Ignored,
			Confirmed: b.Confirmed,
			Bounces:   b.Bounces,
		}
	}

	inner := StatusInner{
		Mode:          mode,
		ModeIndex:     p.ModeIndex,
		Overlay:       overlay,
		LEDs:          leds,
		Message:       p.Message,
		Holding:       p.AwaitingRelease,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Advance:    p.Counts.Advance,
			Reset:      p.Counts.Reset,
			ShortPress: p.Counts.Short,
			LongPress:  p.Counts.Long,
			Bounces:    snap.Bounces(),
		},
		Buttons: buttons,
		Config: ConfigJSON{
			DebounceMs:    snap.Config.DebounceMs,
			LongPressMs:   snap.Config.LongPressMs,
			CycleMs:       snap.Config.CycleMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			AdvancePolicy: snap.Config.AdvancePolicy,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
		},
	}
	if p.Overlay.Kind == logic.OverlayTone && p.Overlay.Tone.Sounding {
		inner.ToneHz = p.Overlay.Tone.Hz
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
