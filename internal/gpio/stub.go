//go:build !linux

package gpio

import "errors"

var errNotLinux = errors.New("gpio: backend requires Linux")

// CdevPort is not available on non-Linux platforms.
type CdevPort struct{}

// NewCdevPort returns an error on non-Linux platforms.
func NewCdevPort(chipName string, pin, initial int) (*CdevPort, error) {
	return nil, errNotLinux
}

// NewCdevPortKeepLevel returns an error on non-Linux platforms.
func NewCdevPortKeepLevel(chipName string, pin int) (*CdevPort, int, error) {
	return nil, 0, errNotLinux
}

// SetValue is not implemented on non-Linux platforms.
func (p *CdevPort) SetValue(v int) error { return errNotLinux }

// Value is not implemented on non-Linux platforms.
func (p *CdevPort) Value() (int, error) { return 0, errNotLinux }

// Close is not implemented on non-Linux platforms.
func (p *CdevPort) Close() error { return nil }

// PeriphPort is not available on non-Linux platforms.
type PeriphPort struct{}

// NewPeriphPort returns an error on non-Linux platforms.
func NewPeriphPort(pin int) (*PeriphPort, error) {
	return nil, errNotLinux
}

// NewPeriphPortKeepLevel returns an error on non-Linux platforms.
func NewPeriphPortKeepLevel(pin int) (*PeriphPort, int, error) {
	return nil, 0, errNotLinux
}

// SetValue is not implemented on non-Linux platforms.
func (p *PeriphPort) SetValue(v int) error { return errNotLinux }

// Value is not implemented on non-Linux platforms.
func (p *PeriphPort) Value() (int, error) { return 0, errNotLinux }

// Close is not implemented on non-Linux platforms.
func (p *PeriphPort) Close() error { return nil }
