//go:build linux

package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPort drives a pin through the periph.io host drivers.
// Pins are addressed by their BCM numbers.
type PeriphPort struct {
	pin pgpio.PinIO
	num int
}

// NewPeriphPort initialises the periph host and looks up the pin.
// host.Init is safe to call more than once.
func NewPeriphPort(pin int) (*PeriphPort, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("gpio %d: no such pin", pin)
	}
	return &PeriphPort{pin: p, num: pin}, nil
}

// NewPeriphPortKeepLevel looks up the pin, snapshots its current level, and
// drives it as an output at that same level.
func NewPeriphPortKeepLevel(pin int) (*PeriphPort, int, error) {
	p, err := NewPeriphPort(pin)
	if err != nil {
		return nil, 0, err
	}

	level := 0
	if p.pin.Read() == pgpio.High {
		level = 1
	}
	if err := p.SetValue(level); err != nil {
		return nil, 0, err
	}
	return p, level, nil
}

// SetValue drives the pin to the given level.
func (p *PeriphPort) SetValue(v int) error {
	if v != 0 && v != 1 {
		return fmt.Errorf("gpio %d: level %d out of range", p.num, v)
	}
	level := pgpio.Low
	if v == 1 {
		level = pgpio.High
	}
	if err := p.pin.Out(level); err != nil {
		return fmt.Errorf("set gpio %d value: %w", p.num, err)
	}
	return nil
}

// Value reads the current pin level.
func (p *PeriphPort) Value() (int, error) {
	if p.pin.Read() == pgpio.High {
		return 1, nil
	}
	return 0, nil
}

// Close parks the pin as a floating input.
func (p *PeriphPort) Close() error {
	if err := p.pin.In(pgpio.Float, pgpio.NoEdge); err != nil {
		return fmt.Errorf("release gpio %d: %w", p.num, err)
	}
	return nil
}
