// Package status provides a thread-safe status tracker for the beacon daemon.
// It is written by the scheduler loop and read by HTTP handlers and MQTT events.
package status

import (
	"slices"
	"sync"
	"time"

	"github.com/sweeney/sos-beacon/internal/logic"
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
	PeriodMs    int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	PinDot      int
	PinDash     int
	PinButtons  []int
}

// Playback is the scheduler's view of the beacon after a tick.
type Playback struct {
	Mode      logic.Mode // desired mode, applied at the next START
	Active    logic.Mode // mode of the message being played
	Phase     logic.Phase
	Cursor    int
	HoldTicks int
	Dot       bool
	Dash      bool
	Ticks     uint64
	Counts    logic.Counts
}

// Snapshot is a point-in-time view of daemon state. Tracker.Snapshot
// copies the slice and pointer fields, so a snapshot shares no memory
// with the tracker.
type Snapshot struct {
	Playback
	// Running is false until the first tick has been processed.
	Running       bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	// MQTTBuffered counts messages not yet handed to the broker.
	MQTTBuffered int
	Network       *NetworkInfo
	Config        Config
	// Version increases on every change; equal versions mean equal state.
	Version uint64
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	cfg.PinButtons = slices.Clone(cfg.PinButtons)
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Playback:  Playback{Phase: logic.PhaseStart},
		},
		now: time.Now,
	}
}

// Update records the playback state. Called from runLoop on every tick.
func (t *Tracker) Update(p Playback) {
	t.mu.Lock()
	t.snap.Playback = p
	t.snap.Running = true
	t.snap.Version++
	t.mu.Unlock()
}

// SetMode records a desired-mode change between ticks.
func (t *Tracker) SetMode(m logic.Mode, toggles int) {
	t.mu.Lock()
	t.snap.Mode = m
	t.snap.Counts.Toggles = toggles
	t.snap.Version++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	if t.snap.MQTTConnected != connected {
		t.snap.MQTTConnected = connected
		t.snap.Version++
	}
	t.mu.Unlock()
}

// SetMQTTBuffered records the publish backlog.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	if t.snap.MQTTBuffered != n {
		t.snap.MQTTBuffered = n
		t.snap.Version++
	}
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	if info != nil {
		n := *info
		info = &n
	}
	t.mu.Lock()
	t.snap.Network = info
	t.snap.Version++
	t.mu.Unlock()
}

// Version returns the current state version without copying the snapshot.
func (t *Tracker) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Version
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Network != nil {
		n := *s.Network
		s.Network = &n
	}
	s.Config.PinButtons = slices.Clone(s.Config.PinButtons)
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
