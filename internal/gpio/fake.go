package gpio

// FakePort is a test double that records level writes.
type FakePort struct {
	// Writes contains every level passed to SetValue, in order.
	Writes []int

	// Level is the current level, updated by successful SetValue calls.
	Level int

	// SetErr, if set, will be returned by SetValue; the write is not recorded.
	SetErr error

	// ValueErr, if set, will be returned by Value.
	ValueErr error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePort creates a FakePort resting at the given level.
func NewFakePort(initial int) *FakePort {
	return &FakePort{Level: initial}
}

// SetValue records the write and updates the current level.
func (f *FakePort) SetValue(v int) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Writes = append(f.Writes, v)
	f.Level = v
	return nil
}

// Value returns the current level.
func (f *FakePort) Value() (int, error) {
	if f.ValueErr != nil {
		return 0, f.ValueErr
	}
	return f.Level, nil
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// LastWrite returns the most recent write, or false if none happened.
func (f *FakePort) LastWrite() (int, bool) {
	if len(f.Writes) == 0 {
		return 0, false
	}
	return f.Writes[len(f.Writes)-1], true
}

// Reset clears recorded writes.
func (f *FakePort) Reset() {
	f.Writes = nil
	f.Closed = false
	f.SetErr = nil
	f.ValueErr = nil
}
