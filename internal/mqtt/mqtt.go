// Package mqtt provides optional MQTT publishing with abstraction for testing.
// Publishing is purely observational: no LED behavior depends on it.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/bootled/internal/blink"
)

// Topic is the MQTT topic for LED transition events.
const Topic = "device/bootled/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "device/bootled/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an LED transition event to the broker.
	// Returns error if publishing fails (must not crash the process).
	Publish(event blink.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Led LedPayload `json:"led"`
}

// LedPayload contains the LED event details.
type LedPayload struct {
	Timestamp string  `json:"timestamp"`
	Event     string  `json:"event"`
	State     string  `json:"state"`
	IntervalS float64 `json:"interval_s"`
}

// FormatPayload creates the JSON payload for an LED transition event.
func FormatPayload(event blink.Event) ([]byte, error) {
	state := blink.StateIdle
	if event.Type == blink.EventBlinkStart {
		state = blink.StateBlinking
	}
	payload := Payload{
		Led: LedPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(state),
			IntervalS: event.Interval.Seconds(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(blink.Event) error { return nil }

// PublishSystem discards the event.
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// IsConnected always reports false.
func (NopPublisher) IsConnected() bool { return false }
