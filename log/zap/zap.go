package zap

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/llmcache"
)

var _ llmcache.Logger = Logger{}

// Logger adapts a *zap.Logger. A nil L logs nothing.
type Logger struct{ L *zap.Logger }

func New(l *zap.Logger) Logger { return Logger{L: l.Named("llmcache")} }

func (z Logger) Debug(msg string, f llmcache.Fields) { z.log(zapcore.DebugLevel, msg, f) }
func (z Logger) Info(msg string, f llmcache.Fields)  { z.log(zapcore.InfoLevel, msg, f) }
func (z Logger) Warn(msg string, f llmcache.Fields)  { z.log(zapcore.WarnLevel, msg, f) }
func (z Logger) Error(msg string, f llmcache.Fields) { z.log(zapcore.ErrorLevel, msg, f) }

// fields are only built when the level is enabled
func (z Logger) log(lvl zapcore.Level, msg string, f llmcache.Fields) {
	if z.L == nil {
		return
	}
	if ce := z.L.Check(lvl, msg); ce != nil {
		ce.Write(zf(f)...)
	}
}

func zf(f llmcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
