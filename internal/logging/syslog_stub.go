//go:build !unix

package logging

import (
	"errors"

	"github.com/sirupsen/logrus"
)

func attachSyslog(log *logrus.Logger) error {
	return errors.New("syslog not supported on this platform")
}
