// Package daemon provides process lifecycle plumbing: terminal detach and a
// single-instance lock. The lock expresses the daemon's exclusive ownership
// of the GPIO line — two instances driving one LED would fight over it.
package daemon

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another instance holds the lock.
var ErrAlreadyRunning = errors.New("daemon: another instance is already running")

// DefaultLockPath is where the daemon lock file lives.
const DefaultLockPath = "/var/run/bootled.lock"

// Lock is a flock-based single-instance lock held for the process lifetime.
type Lock struct {
	lock *flock.Flock
	path string
}

// NewLock creates a lock backed by the given file path.
func NewLock(path string) *Lock {
	return &Lock{lock: flock.New(path), path: path}
}

// Acquire takes the lock without blocking.
func (l *Lock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
