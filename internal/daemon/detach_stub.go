//go:build !unix

package daemon

import "errors"

// Detached reports false on platforms without session semantics.
func Detached() bool { return false }

// Detach is not supported on non-Unix platforms; run in the foreground or
// under a service manager instead.
func Detach() (parent bool, err error) {
	return false, errors.New("daemon: detach not supported on this platform")
}
