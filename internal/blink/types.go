// Package blink contains the pure LED state machine for the bootled daemon.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package blink

import "time"

// State represents the LED controller state.
type State string

const (
	// StateIdle means the sentinel file is absent and the LED holds its idle level.
	StateIdle State = "IDLE"
	// StateBlinking means the sentinel file is present and the LED toggles
	// between active and idle at the configured half-period.
	StateBlinking State = "BLINKING"
)

// Line describes the resolved GPIO line. Active is always 1 - Idle.
type Line struct {
	// Pin is the GPIO number discovered from the bootloader environment.
	Pin int
	// Idle is the logic level the LED rests at ("off").
	Idle int
	// Active is the logic level that lights the LED.
	Active int
	// ActiveLow records how Idle/Active were derived, for display only.
	ActiveLow bool
}

// EventType represents a state transition event.
type EventType string

const (
	EventBlinkStart EventType = "BLINK_START"
	EventBlinkStop  EventType = "BLINK_STOP"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Interval is the half-period in effect for the episode that starts or
	// just ended.
	Interval time.Duration
}

// Input represents a single poll sample.
type Input struct {
	// SentinelPresent is whether the monitored file exists right now.
	SentinelPresent bool
	Time            time.Time
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Starts  int
	Stops   int
	Toggles int
}
