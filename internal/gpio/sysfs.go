package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is the kernel's legacy GPIO control hierarchy.
const DefaultSysfsRoot = "/sys/class/gpio"

// SysfsPort drives a pin through the sysfs GPIO interface. Every access opens
// and closes the control file per call: the value file is volatile and can be
// re-created by unexport/export cycles, so no handle is held across polls.
type SysfsPort struct {
	root string
	pin  int
}

// NewSysfsPort exports the pin under /sys/class/gpio and configures it as an
// output. Export failure is fatal to startup.
func NewSysfsPort(pin int) (*SysfsPort, error) {
	return NewSysfsPortAt(DefaultSysfsRoot, pin)
}

// NewSysfsPortAt is NewSysfsPort with a configurable control root, so tests
// can point the port at a temp directory standing in for sysfs.
func NewSysfsPortAt(root string, pin int) (*SysfsPort, error) {
	p, err := exportPin(root, pin)
	if err != nil {
		return nil, err
	}
	if err := writeControl(filepath.Join(p.dir(), "direction"), "out"); err != nil {
		return nil, fmt.Errorf("set gpio %d direction: %w", pin, err)
	}
	return p, nil
}

// NewSysfsPortKeepLevel exports the pin, snapshots the level it currently
// carries, and claims it as an output already driven to that level. The
// snapshot is read before any direction write: plain "out" resets the line
// low, while the kernel's "high"/"low" direction values set direction and
// level in a single write.
func NewSysfsPortKeepLevel(pin int) (*SysfsPort, int, error) {
	return NewSysfsPortKeepLevelAt(DefaultSysfsRoot, pin)
}

// NewSysfsPortKeepLevelAt is NewSysfsPortKeepLevel with a configurable
// control root.
func NewSysfsPortKeepLevelAt(root string, pin int) (*SysfsPort, int, error) {
	p, err := exportPin(root, pin)
	if err != nil {
		return nil, 0, err
	}

	level, err := p.Value()
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot gpio %d level: %w", pin, err)
	}

	direction := "low"
	if level == 1 {
		direction = "high"
	}
	if err := writeControl(filepath.Join(p.dir(), "direction"), direction); err != nil {
		return nil, 0, fmt.Errorf("set gpio %d direction: %w", pin, err)
	}
	return p, level, nil
}

// exportPin writes to the export control and returns the claimed port.
func exportPin(root string, pin int) (*SysfsPort, error) {
	if pin < 0 {
		return nil, fmt.Errorf("invalid gpio pin %d", pin)
	}

	p := &SysfsPort{root: root, pin: pin}
	if err := writeControl(filepath.Join(root, "export"), strconv.Itoa(pin)); err != nil {
		// The kernel rejects exporting a pin that is already exported.
		// If the pin directory exists, a previous run left it behind; claim it.
		if _, statErr := os.Stat(p.dir()); statErr != nil {
			return nil, fmt.Errorf("export gpio %d: %w", pin, err)
		}
	}
	return p, nil
}

func (p *SysfsPort) dir() string {
	return filepath.Join(p.root, fmt.Sprintf("gpio%d", p.pin))
}

// SetValue writes the level digit to the pin's value file.
func (p *SysfsPort) SetValue(v int) error {
	if v != 0 && v != 1 {
		return fmt.Errorf("gpio %d: level %d out of range", p.pin, v)
	}
	if err := writeControl(filepath.Join(p.dir(), "value"), strconv.Itoa(v)); err != nil {
		return fmt.Errorf("write gpio %d value: %w", p.pin, err)
	}
	return nil
}

// Value reads the current level from the pin's value file.
func (p *SysfsPort) Value() (int, error) {
	data, err := os.ReadFile(filepath.Join(p.dir(), "value"))
	if err != nil {
		return 0, fmt.Errorf("read gpio %d value: %w", p.pin, err)
	}
	s := strings.TrimSpace(string(data))
	v, err := strconv.Atoi(s)
	if err != nil || (v != 0 && v != 1) {
		return 0, fmt.Errorf("gpio %d: unexpected value %q", p.pin, s)
	}
	return v, nil
}

// Close unexports the pin.
func (p *SysfsPort) Close() error {
	if err := writeControl(filepath.Join(p.root, "unexport"), strconv.Itoa(p.pin)); err != nil {
		return fmt.Errorf("unexport gpio %d: %w", p.pin, err)
	}
	return nil
}

// writeControl opens the control file, writes the string, and closes it.
func writeControl(path, s string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(s)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}
