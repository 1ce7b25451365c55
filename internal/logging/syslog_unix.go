//go:build unix

package logging

import (
	"log/syslog"

	"github.com/sirupsen/logrus"
	lsyslog "github.com/sirupsen/logrus/hooks/syslog"
)

func attachSyslog(log *logrus.Logger) error {
	hook, err := lsyslog.NewSyslogHook("", "", syslog.LOG_INFO|syslog.LOG_DAEMON, Tag)
	if err != nil {
		return err
	}
	log.AddHook(hook)
	return nil
}
