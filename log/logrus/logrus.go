package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/llmcache"
)

var _ llmcache.Logger = Logger{}

// Logger adapts a *logrus.Entry.
type Logger struct{ E *logrus.Entry }

func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "llmcache")}
}

func (l Logger) Debug(msg string, f llmcache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f llmcache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f llmcache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f llmcache.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f llmcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
