// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-panel/internal/logic"
)

// Topic is the MQTT topic for panel events.
const Topic = "home/panel/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/panel/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a panel event to the broker.
	// Must not block the control loop; returns error only if the event
	// cannot be queued.
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close flushes queued messages and disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT", "MQTT_DISCONNECT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Panel PanelPayload `json:"panel"`
}

// PanelPayload contains the panel event details.
type PanelPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Mode      string `json:"mode"`
	ModeIndex int    `json:"mode_index"`
	Overlay   string `json:"overlay"`
}

// FormatPayload creates the JSON payload for a panel event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Panel: PanelPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Mode:      event.Mode.String(),
			ModeIndex: int(event.Mode),
			Overlay:   string(event.Overlay),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:  event.Event,
			Reason: event.Reason,
		},
	}
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}

// willPayload is the retained message the broker publishes if the panel
// drops off without a clean shutdown. It is registered at connect time, long
// before it is sent, so it carries no timestamp.
func willPayload() []byte {
	payload, _ := FormatSystemPayload(SystemEvent{
		Event:  "SHUTDOWN",
		Reason: "MQTT_DISCONNECT",
	})
	return payload
}
