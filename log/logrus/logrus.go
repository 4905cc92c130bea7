// Package logrus adapts github.com/sirupsen/logrus to memocache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/memocache"
)

var _ memocache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

func New(l *logrus.Logger) LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return LogrusLogger{E: l.WithField("component", "memocache")}
}

func (l LogrusLogger) Debug(msg string, f memocache.Fields) {
	if l.E.Logger.IsLevelEnabled(logrus.DebugLevel) {
		l.entry(f).Debug(msg)
	}
}
func (l LogrusLogger) Info(msg string, f memocache.Fields)  { l.entry(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f memocache.Fields)  { l.entry(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f memocache.Fields) { l.entry(f).Error(msg) }

// entry moves an "err" field to logrus' error key.
func (l LogrusLogger) entry(f memocache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			out[logrus.ErrorKey] = err
			continue
		}
		out[k] = v
	}
	return l.E.WithFields(out)
}
