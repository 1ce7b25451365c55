package mqtt

import "github.com/sweeney/bootled/internal/blink"

// FakePublisher records everything published through it, for assertions in
// loop and package tests. Unlike RealPublisher it never buffers: a publish
// either records or fails immediately.
type FakePublisher struct {
	// Events holds the LED transition events, in publish order.
	Events []blink.Event
	// Payloads holds the serialized form of each LED event.
	Payloads [][]byte
	// SystemEvents holds STARTUP/SHUTDOWN events, in publish order.
	SystemEvents []SystemEvent

	// PublishError fails Publish calls without recording them.
	PublishError error
	// Connected is what IsConnected reports.
	Connected bool
	// Closed is set once Close is called.
	Closed bool
}

// NewFakePublisher creates an empty FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the event and its serialized payload.
func (f *FakePublisher) Publish(event blink.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports the configured connection state.
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}
