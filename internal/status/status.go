// Package status provides a thread-safe status tracker for the button-panel daemon.
// The control loop writes it once per cycle; HTTP handlers and MQTT heartbeats read it.
package status

import (
	"sort"
	"sync"
	"time"

	"github.com/sweeney/button-panel/internal/button"
	"github.com/sweeney/button-panel/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	DebounceMs    int64
	LongPressMs   int64
	CycleMs       int64
	HeartbeatMs   int64
	AdvancePolicy string
	Broker        string
	HTTPPort      string
}

// ButtonStats is the debounce counters of one named button.
type ButtonStats struct {
	Name string
	button.Stats
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Panel         logic.State
	Ready         bool // the control loop has completed at least one cycle
	Buttons       []ButtonStats
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Bounces returns the total rejected presses across all buttons.
func (s Snapshot) Bounces() uint64 {
	var n uint64
	for _, b := range s.Buttons {
		n += b.Bounces
	}
	return n
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the panel state and the per-button counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(state logic.State, buttons map[string]button.Stats) {
	list := make([]ButtonStats, 0, len(buttons))
	for name, s := range buttons {
		list = append(list, ButtonStats{Name: name, Stats: s})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	t.mu.Lock()
	t.snap.Panel = state
	t.snap.Ready = true
	t.snap.Buttons = list
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	// Update replaces the slice rather than mutating it, so sharing is safe.
	s.Now = time.Now()
	return s
}
