package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/bootled/internal/blink"
)

func TestFormatPayloadBlinkStart(t *testing.T) {
	event := blink.Event{
		Timestamp: time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
		Type:      blink.EventBlinkStart,
		Interval:  200 * time.Millisecond,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Led.Event != "BLINK_START" {
		t.Errorf("event: got %q, want BLINK_START", p.Led.Event)
	}
	if p.Led.State != "BLINKING" {
		t.Errorf("state: got %q, want BLINKING", p.Led.State)
	}
	if p.Led.IntervalS != 0.2 {
		t.Errorf("interval_s: got %v, want 0.2", p.Led.IntervalS)
	}
	if p.Led.Timestamp != "2026-03-01T08:30:00Z" {
		t.Errorf("timestamp: got %q", p.Led.Timestamp)
	}
}

func TestFormatPayloadBlinkStop(t *testing.T) {
	event := blink.Event{
		Timestamp: time.Date(2026, 3, 1, 8, 31, 0, 0, time.UTC),
		Type:      blink.EventBlinkStop,
		Interval:  time.Second,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Led.Event != "BLINK_STOP" {
		t.Errorf("event: got %q, want BLINK_STOP", p.Led.Event)
	}
	if p.Led.State != "IDLE" {
		t.Errorf("state: got %q, want IDLE", p.Led.State)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}

	var p SystemPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", p.System.Event)
	}
	if p.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", p.System.Reason)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"state":"IDLE"}}`)
	data, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", data)
	}
}

func TestFakePublisherRecordsEvents(t *testing.T) {
	f := NewFakePublisher()

	event := blink.Event{
		Timestamp: time.Now(),
		Type:      blink.EventBlinkStart,
		Interval:  time.Second,
	}
	if err := f.Publish(event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(f.Events) != 1 || f.Events[0].Type != blink.EventBlinkStart {
		t.Errorf("expected 1 recorded BLINK_START, got %v", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("expected 1 payload, got %d", len(f.Payloads))
	}

	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("expected 1 recorded STARTUP, got %v", f.SystemEvents)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.Publish(blink.Event{}); err == nil {
		t.Fatal("expected Publish error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(blink.Event{}); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{}); err != nil {
		t.Errorf("PublishSystem: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if (NopPublisher{}).IsConnected() {
		t.Error("NopPublisher should never report connected")
	}
}
