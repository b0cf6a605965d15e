package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/llmcache"
)

func TestLoggerRespectsLevelAndOrdersFields(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := Logger{L: stdslog.New(h)}

	l.Debug("hidden", nil)
	l.Warn("dropped unreadable entry", llmcache.Fields{"reason": "corrupt", "key": "llm:ns:x"})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
	ki, ri := strings.Index(out, "key="), strings.Index(out, "reason=")
	if ki < 0 || ri < 0 || ki > ri {
		t.Fatalf("expected sorted key/reason attrs, got %s", out)
	}
}
