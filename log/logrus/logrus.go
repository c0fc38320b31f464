// Package logrus adapts a logrus entry to the oslocache Logger interface.
package logrus

import (
	"github.com/sirupsen/logrus"

	oslocache "github.com/SovereignCloudStack/oslo.cache"
)

type Logger struct{ E *logrus.Entry }

var _ oslocache.Logger = Logger{}

func (l Logger) Debug(msg string, f oslocache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}

func (l Logger) Info(msg string, f oslocache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Info(msg)
}

func (l Logger) Warn(msg string, f oslocache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Warn(msg)
}

func (l Logger) Error(msg string, f oslocache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
