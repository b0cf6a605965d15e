package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/llmcache"
)

func TestLoggerWritesSortedFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core))

	l.Debug("dropped", llmcache.Fields{"k": 1})
	l.Warn("migration failed", llmcache.Fields{"legacy": "a", "current": "b", "err": errors.New("boom")})

	entries := logs.AllUntimed()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry (debug filtered), got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "migration failed" || e.LoggerName != "llmcache" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	var names []string
	for _, f := range e.Context {
		names = append(names, f.Key)
	}
	if want := []string{"current", "err", "legacy"}; len(names) != 3 || names[0] != want[0] || names[1] != want[1] || names[2] != want[2] {
		t.Fatalf("field order = %v, want %v", names, want)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	Logger{}.Error("x", llmcache.Fields{"a": 1})
}
