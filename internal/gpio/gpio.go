// Package gpio drives a single GPIO output line with hardware abstraction.
// The sysfs backend talks to the kernel's legacy /sys/class/gpio hierarchy,
// the cdev backend uses the GPIO character device, and the periph backend
// uses periph.io. The fake implementation allows testing without hardware.
package gpio

// Port drives one GPIO output line.
type Port interface {
	// SetValue drives the line to the given logic level (0 or 1).
	// Failures are recoverable: the caller logs and retries on the next
	// scheduled write.
	SetValue(v int) error

	// Value reads the current logic level.
	Value() (int, error)

	// Close releases the line. Best effort; the process is usually exiting.
	Close() error
}

// Backend names accepted by the -gpio-backend flag.
const (
	BackendSysfs  = "sysfs"
	BackendCdev   = "cdev"
	BackendPeriph = "periph"
)
