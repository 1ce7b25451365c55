// Package status provides a thread-safe status tracker for the bootled
// daemon. It is read by the HTTP status handlers and by MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/bootled/internal/blink"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs     int64
	IntervalMs int64 // CLI default half-period
	Sentinel   string
	Broker     string
	HTTPAddr   string
	Backend    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         blink.State
	IntervalMs    int64 // half-period currently in effect
	Line          blink.Line
	Counts        blink.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time, line and config.
func NewTracker(startTime time.Time, line blink.Line, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:      blink.StateIdle,
			IntervalMs: cfg.IntervalMs,
			Line:       line,
			StartTime:  startTime,
			Config:     cfg,
		},
	}
}

// Update sets the controller state, active interval and transition counts.
// Called from the watch loop on every tick.
func (t *Tracker) Update(state blink.State, interval time.Duration, counts blink.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.IntervalMs = interval.Milliseconds()
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
