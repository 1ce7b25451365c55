package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	IntervalMs    int64      `json:"interval_ms"`
	Led           LedJSON    `json:"led"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// LedJSON describes the resolved GPIO line.
type LedJSON struct {
	Pin       int  `json:"pin"`
	ActiveLow bool `json:"active_low"`
	IdleLevel int  `json:"idle_level"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	Starts  int `json:"blink_starts"`
	Stops   int `json:"blink_stops"`
	Toggles int `json:"toggles"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs            int64  `json:"poll_ms"`
	DefaultIntervalMs int64  `json:"default_interval_ms"`
	Sentinel          string `json:"sentinel"`
	Broker            string `json:"broker,omitempty"`
	HTTPAddr          string `json:"http_addr,omitempty"`
	Backend           string `json:"gpio_backend"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		State:      state,
		IntervalMs: snap.IntervalMs,
		Led: LedJSON{
			Pin:       snap.Line.Pin,
			ActiveLow: snap.Line.ActiveLow,
			IdleLevel: snap.Line.Idle,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Starts:  snap.Counts.Starts,
			Stops:   snap.Counts.Stops,
			Toggles: snap.Counts.Toggles,
		},
		Config: ConfigJSON{
			PollMs:            snap.Config.PollMs,
			DefaultIntervalMs: snap.Config.IntervalMs,
			Sentinel:          snap.Config.Sentinel,
			Broker:            snap.Config.Broker,
			HTTPAddr:          snap.Config.HTTPAddr,
			Backend:           snap.Config.Backend,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
