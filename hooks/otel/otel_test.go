package otelhook

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/unkn0wn-root/llmcache"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: unexpected data type %T", name, m.Data)
			}
			return sum.DataPoints
		}
	}
	return nil
}

func TestRecordsLookupsAndMigrations(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	h, err := New(mp.Meter("llmcache-test"))
	if err != nil {
		t.Fatal(err)
	}
	h.LookupResolved("chat", llmcache.SourceLegacy)
	h.LookupResolved("chat", llmcache.SourceMiss)
	h.LookupResolved("chat", llmcache.SourceMiss)
	h.Migrated("l", "c")

	points := collectSum(t, reader, "llmcache.lookups")
	var misses int64
	for _, p := range points {
		if v, ok := p.Attributes.Value(attribute.Key("cache.source")); ok && v.AsString() == "miss" {
			misses = p.Value
		}
	}
	if misses != 2 {
		t.Fatalf("miss lookups=%d want 2", misses)
	}

	mig := collectSum(t, reader, "llmcache.migrations")
	if len(mig) != 1 || mig[0].Value != 1 {
		t.Fatalf("migrations=%v want one point of 1", mig)
	}
}
