//go:build unix

package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// markerEnv flags the re-executed child so it does not detach again.
const markerEnv = "BOOTLED_DETACHED"

// Detached reports whether this process is the detached child.
func Detached() bool {
	return os.Getenv(markerEnv) == "1"
}

// Detach re-executes the process in a new session with standard streams on
// /dev/null — the substitute for double-fork daemonization, since fork(2) is
// not expressible under the Go runtime. It returns true in the parent, which
// should exit 0. The child returns false after finishing its detachment:
// permissions mask cleared and working directory reset to /.
func Detach() (parent bool, err error) {
	if Detached() {
		unix.Umask(0)
		if err := os.Chdir("/"); err != nil {
			return false, fmt.Errorf("chdir /: %w", err)
		}
		return false, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return true, fmt.Errorf("locate executable: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return true, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), markerEnv+"=1")
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return true, fmt.Errorf("spawn detached process: %w", err)
	}
	return true, nil
}
