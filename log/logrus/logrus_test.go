package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unkn0wn-root/llmcache"
)

func TestLoggerForwardsFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("migrated legacy entry", llmcache.Fields{"legacy": "a", "current": "b"})

	e := hook.LastEntry()
	if e == nil {
		t.Fatalf("no entry logged")
	}
	if e.Level != logrus.DebugLevel || e.Message != "migrated legacy entry" {
		t.Fatalf("unexpected entry: %v %q", e.Level, e.Message)
	}
	if e.Data["component"] != "llmcache" || e.Data["legacy"] != "a" || e.Data["current"] != "b" {
		t.Fatalf("unexpected fields: %v", e.Data)
	}
}
