package blink

import "time"

// Controller tracks the Idle/Blinking state machine and decides which GPIO
// levels to write for each poll sample. It never performs I/O; the caller
// applies the returned writes and publishes the returned events.
type Controller struct {
	line     Line
	interval time.Duration
	state    State

	// active is true while the LED is in the lit half of a blink cycle.
	active     bool
	nextToggle time.Time

	counts EventCounts
}

// NewController creates a controller resting in the Idle state.
// interval is the initial half-period, typically the CLI default.
func NewController(line Line, interval time.Duration) *Controller {
	return &Controller{
		line:     line,
		interval: interval,
		state:    StateIdle,
	}
}

// Process takes a poll sample and returns the GPIO levels to write, in order,
// plus any transition events to emit.
//
// Idle + sentinel present: enter Blinking, write the active level, schedule
// the next toggle one half-period out. Blinking + sentinel absent: write the
// idle level and return to Idle. Blinking + present: toggle once the deadline
// has passed. Idle + absent: nothing.
func (c *Controller) Process(in Input) ([]int, []Event) {
	switch c.state {
	case StateIdle:
		if !in.SentinelPresent {
			return nil, nil
		}
		c.state = StateBlinking
		c.active = true
		c.nextToggle = in.Time.Add(c.interval)
		c.counts.Starts++
		event := Event{Timestamp: in.Time, Type: EventBlinkStart, Interval: c.interval}
		return []int{c.line.Active}, []Event{event}

	case StateBlinking:
		if !in.SentinelPresent {
			c.state = StateIdle
			c.active = false
			c.counts.Stops++
			event := Event{Timestamp: in.Time, Type: EventBlinkStop, Interval: c.interval}
			return []int{c.line.Idle}, []Event{event}
		}
		if in.Time.Before(c.nextToggle) {
			return nil, nil
		}
		c.active = !c.active
		// Advance from the previous deadline, not the sample time, so late
		// samples do not accumulate drift. After a long stall, resync instead
		// of bursting catch-up toggles.
		c.nextToggle = c.nextToggle.Add(c.interval)
		if !c.nextToggle.After(in.Time) {
			c.nextToggle = in.Time.Add(c.interval)
		}
		c.counts.Toggles++
		level := c.line.Idle
		if c.active {
			level = c.line.Active
		}
		return []int{level}, nil
	}

	return nil, nil
}

// SetInterval updates the half-period for the next blinking episode.
// The interval is fixed while Blinking, so updates are ignored (returning
// false) unless the controller is Idle. Non-positive values are rejected.
func (c *Controller) SetInterval(d time.Duration) bool {
	if c.state != StateIdle || d <= 0 {
		return false
	}
	c.interval = d
	return true
}

// NextToggle returns the deadline of the next scheduled toggle. The second
// return is false while Idle, when no toggle is scheduled.
func (c *Controller) NextToggle() (time.Time, bool) {
	return c.nextToggle, c.state == StateBlinking
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Interval returns the half-period currently in effect.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Line returns the resolved GPIO line.
func (c *Controller) Line() Line {
	return c.line
}

// Counts returns the transition counts since startup.
func (c *Controller) Counts() EventCounts {
	return c.counts
}
