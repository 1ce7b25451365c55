//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// CdevPort drives a line through the Linux GPIO character device.
type CdevPort struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	pin  int
}

// NewCdevPort requests the line as an output driven to the initial level.
func NewCdevPort(chipName string, pin, initial int) (*CdevPort, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(initial))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request gpio %d: %w", pin, err)
	}

	return &CdevPort{chip: chip, line: line, pin: pin}, nil
}

// NewCdevPortKeepLevel requests the line as an input first to snapshot the
// level it currently carries, then reconfigures it as an output driven to
// that same level. Requesting AsOutput directly would overwrite the level
// before it could be read.
func NewCdevPortKeepLevel(chipName string, pin int) (*CdevPort, int, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, 0, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput)
	if err != nil {
		chip.Close()
		return nil, 0, fmt.Errorf("request gpio %d: %w", pin, err)
	}

	level, err := line.Value()
	if err != nil {
		line.Close()
		chip.Close()
		return nil, 0, fmt.Errorf("snapshot gpio %d level: %w", pin, err)
	}

	if err := line.Reconfigure(gpiocdev.AsOutput(level)); err != nil {
		line.Close()
		chip.Close()
		return nil, 0, fmt.Errorf("reconfigure gpio %d as output: %w", pin, err)
	}

	return &CdevPort{chip: chip, line: line, pin: pin}, level, nil
}

// SetValue drives the line to the given level.
func (p *CdevPort) SetValue(v int) error {
	if v != 0 && v != 1 {
		return fmt.Errorf("gpio %d: level %d out of range", p.pin, v)
	}
	if err := p.line.SetValue(v); err != nil {
		return fmt.Errorf("set gpio %d value: %w", p.pin, err)
	}
	return nil
}

// Value reads the current line level.
func (p *CdevPort) Value() (int, error) {
	v, err := p.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read gpio %d value: %w", p.pin, err)
	}
	return v, nil
}

// Close reconfigures the line back to an input before releasing it, so the
// pin is left in its boot-default state for whatever claims it next.
func (p *CdevPort) Close() error {
	var errs []error

	if p.line != nil {
		if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure gpio %d: %w", p.pin, err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gpio %d: %w", p.pin, err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
