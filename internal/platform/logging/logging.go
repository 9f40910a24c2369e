// Package logging builds the process-wide logrus logger.
package logging

import (
	"github.com/sirupsen/logrus"
)

// New returns a logger at the given level; an unparseable level falls back
// to info rather than failing startup.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
