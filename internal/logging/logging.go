// Package logging configures the daemon's logger: stderr text output in the
// foreground, the system log (LOG_DAEMON facility) once detached.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Tag is the syslog identifier for the daemon.
const Tag = "bootled"

// New builds the root logger. When toSyslog is set, entries go to the system
// log with matching severities and the stderr stream is dropped (the detached
// process has no terminal anyway). If syslog is unreachable, stderr output is
// kept and a warning is logged.
func New(toSyslog bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if toSyslog {
		if err := attachSyslog(log); err != nil {
			log.WithError(err).Warn("syslog unavailable, logging to stderr")
		} else {
			log.SetOutput(io.Discard)
		}
	}
	return log
}
