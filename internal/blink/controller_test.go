package blink

import (
	"testing"
	"time"
)

var activeHigh = Line{Pin: 17, Idle: 0, Active: 1}
var activeLow = Line{Pin: 17, Idle: 1, Active: 0, ActiveLow: true}

func TestNewController(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	if c.State() != StateIdle {
		t.Errorf("expected initial state IDLE, got %s", c.State())
	}
	if c.Interval() != time.Second {
		t.Errorf("expected interval 1s, got %v", c.Interval())
	}
	if c.Line() != activeHigh {
		t.Errorf("expected line %+v, got %+v", activeHigh, c.Line())
	}
}

func TestIdleStaysIdleWhileSentinelAbsent(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		writes, events := c.Process(Input{SentinelPresent: false, Time: now.Add(time.Duration(i) * 100 * time.Millisecond)})
		if len(writes) != 0 {
			t.Fatalf("tick %d: expected no writes while idle, got %v", i, writes)
		}
		if len(events) != 0 {
			t.Fatalf("tick %d: expected no events while idle, got %v", i, events)
		}
	}
	if c.State() != StateIdle {
		t.Errorf("expected IDLE, got %s", c.State())
	}
}

func TestIdleToBlinkingWritesActive(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	writes, events := c.Process(Input{SentinelPresent: true, Time: now})
	if len(writes) != 1 || writes[0] != 1 {
		t.Fatalf("expected single write of active level 1, got %v", writes)
	}
	if len(events) != 1 || events[0].Type != EventBlinkStart {
		t.Fatalf("expected BLINK_START event, got %v", events)
	}
	if events[0].Interval != time.Second {
		t.Errorf("expected event interval 1s, got %v", events[0].Interval)
	}
	if c.State() != StateBlinking {
		t.Errorf("expected BLINKING, got %s", c.State())
	}
}

func TestActiveLowPolarityWritesInvertedLevels(t *testing.T) {
	c := NewController(activeLow, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	writes, _ := c.Process(Input{SentinelPresent: true, Time: now})
	if len(writes) != 1 || writes[0] != 0 {
		t.Fatalf("active-low: expected active write of 0, got %v", writes)
	}

	writes, _ = c.Process(Input{SentinelPresent: false, Time: now.Add(100 * time.Millisecond)})
	if len(writes) != 1 || writes[0] != 1 {
		t.Fatalf("active-low: expected idle write of 1, got %v", writes)
	}
}

func TestTogglesAtHalfPeriodBoundaries(t *testing.T) {
	c := NewController(activeHigh, 500*time.Millisecond)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c.Process(Input{SentinelPresent: true, Time: now}) // active

	// Before the deadline: no write.
	writes, _ := c.Process(Input{SentinelPresent: true, Time: now.Add(400 * time.Millisecond)})
	if len(writes) != 0 {
		t.Fatalf("expected no write before half-period elapsed, got %v", writes)
	}

	// At the deadline: toggle to idle level.
	writes, events := c.Process(Input{SentinelPresent: true, Time: now.Add(500 * time.Millisecond)})
	if len(writes) != 1 || writes[0] != 0 {
		t.Fatalf("expected toggle write of 0, got %v", writes)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events on toggle, got %v", events)
	}

	// Next half-period: back to active.
	writes, _ = c.Process(Input{SentinelPresent: true, Time: now.Add(time.Second)})
	if len(writes) != 1 || writes[0] != 1 {
		t.Fatalf("expected toggle write of 1, got %v", writes)
	}

	counts := c.Counts()
	if counts.Starts != 1 || counts.Toggles != 2 {
		t.Errorf("expected 1 start and 2 toggles, got %+v", counts)
	}
}

func TestSentinelDisappearanceForcesIdle(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c.Process(Input{SentinelPresent: true, Time: now})

	// File vanishes mid-cycle, well before the toggle deadline.
	writes, events := c.Process(Input{SentinelPresent: false, Time: now.Add(100 * time.Millisecond)})
	if len(writes) != 1 || writes[0] != 0 {
		t.Fatalf("expected forced idle write of 0, got %v", writes)
	}
	if len(events) != 1 || events[0].Type != EventBlinkStop {
		t.Fatalf("expected BLINK_STOP event, got %v", events)
	}
	if c.State() != StateIdle {
		t.Errorf("expected IDLE after sentinel disappeared, got %s", c.State())
	}

	counts := c.Counts()
	if counts.Starts != 1 || counts.Stops != 1 {
		t.Errorf("expected 1 start and 1 stop, got %+v", counts)
	}
}

func TestOscillation(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		base := now.Add(time.Duration(i) * 10 * time.Second)
		_, events := c.Process(Input{SentinelPresent: true, Time: base})
		if len(events) != 1 || events[0].Type != EventBlinkStart {
			t.Fatalf("round %d: expected BLINK_START, got %v", i, events)
		}
		_, events = c.Process(Input{SentinelPresent: false, Time: base.Add(time.Second)})
		if len(events) != 1 || events[0].Type != EventBlinkStop {
			t.Fatalf("round %d: expected BLINK_STOP, got %v", i, events)
		}
	}

	counts := c.Counts()
	if counts.Starts != 5 || counts.Stops != 5 {
		t.Errorf("expected 5 starts and 5 stops, got %+v", counts)
	}
}

func TestSetIntervalOnlyWhileIdle(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if !c.SetInterval(200 * time.Millisecond) {
		t.Fatal("expected SetInterval to succeed while idle")
	}

	writes, events := c.Process(Input{SentinelPresent: true, Time: now})
	if len(writes) != 1 {
		t.Fatalf("expected start write, got %v", writes)
	}
	if events[0].Interval != 200*time.Millisecond {
		t.Errorf("expected episode interval 200ms, got %v", events[0].Interval)
	}

	// Interval is fixed for the duration of one blinking episode.
	if c.SetInterval(5 * time.Second) {
		t.Error("expected SetInterval to be rejected while blinking")
	}
	writes, _ = c.Process(Input{SentinelPresent: true, Time: now.Add(200 * time.Millisecond)})
	if len(writes) != 1 || writes[0] != 0 {
		t.Fatalf("expected toggle at 200ms despite rejected update, got %v", writes)
	}
}

func TestToggleScheduleAnchorsToDeadlines(t *testing.T) {
	c := NewController(activeHigh, 250*time.Millisecond)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c.Process(Input{SentinelPresent: true, Time: now})

	// A slightly late sample toggles, but the next deadline stays anchored
	// at 500ms — no 10ms drift per half-cycle.
	writes, _ := c.Process(Input{SentinelPresent: true, Time: now.Add(260 * time.Millisecond)})
	if len(writes) != 1 {
		t.Fatalf("expected toggle at 260ms, got %v", writes)
	}
	deadline, ok := c.NextToggle()
	if !ok || !deadline.Equal(now.Add(500*time.Millisecond)) {
		t.Fatalf("next deadline = %v, want %v", deadline, now.Add(500*time.Millisecond))
	}

	writes, _ = c.Process(Input{SentinelPresent: true, Time: now.Add(500 * time.Millisecond)})
	if len(writes) != 1 {
		t.Fatalf("expected toggle exactly at 500ms, got %v", writes)
	}
	writes, _ = c.Process(Input{SentinelPresent: true, Time: now.Add(750 * time.Millisecond)})
	if len(writes) != 1 {
		t.Fatalf("expected toggle exactly at 750ms, got %v", writes)
	}

	if counts := c.Counts(); counts.Toggles != 3 {
		t.Errorf("expected 3 toggles, got %+v", counts)
	}
}

func TestStalledScheduleResyncsWithoutBurst(t *testing.T) {
	c := NewController(activeHigh, 250*time.Millisecond)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c.Process(Input{SentinelPresent: true, Time: now})

	// The loop stalls for 2s, far past the 250ms deadline: one toggle, then
	// the schedule resyncs a full half-period out from the late sample.
	writes, _ := c.Process(Input{SentinelPresent: true, Time: now.Add(2 * time.Second)})
	if len(writes) != 1 {
		t.Fatalf("expected single toggle after stall, got %v", writes)
	}
	deadline, ok := c.NextToggle()
	if !ok || !deadline.Equal(now.Add(2250*time.Millisecond)) {
		t.Fatalf("next deadline = %v, want %v", deadline, now.Add(2250*time.Millisecond))
	}

	// No catch-up toggles for the missed cycles.
	writes, _ = c.Process(Input{SentinelPresent: true, Time: now.Add(2100 * time.Millisecond)})
	if len(writes) != 0 {
		t.Fatalf("expected no catch-up toggle, got %v", writes)
	}
}

func TestNextToggleUnsetWhileIdle(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	if _, ok := c.NextToggle(); ok {
		t.Error("expected no scheduled toggle while idle")
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.Process(Input{SentinelPresent: true, Time: now})
	deadline, ok := c.NextToggle()
	if !ok || !deadline.Equal(now.Add(time.Second)) {
		t.Errorf("next deadline = %v, %v; want %v", deadline, ok, now.Add(time.Second))
	}

	c.Process(Input{SentinelPresent: false, Time: now.Add(100 * time.Millisecond)})
	if _, ok := c.NextToggle(); ok {
		t.Error("expected no scheduled toggle after returning to idle")
	}
}

func TestSetIntervalRejectsNonPositive(t *testing.T) {
	c := NewController(activeHigh, time.Second)
	if c.SetInterval(0) {
		t.Error("expected zero interval to be rejected")
	}
	if c.SetInterval(-time.Second) {
		t.Error("expected negative interval to be rejected")
	}
	if c.Interval() != time.Second {
		t.Errorf("interval should be unchanged, got %v", c.Interval())
	}
}
