// Package otelhook records cache events as OpenTelemetry counters.
package otelhook

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unkn0wn-root/llmcache"
)

type Hooks struct {
	lookups     metric.Int64Counter
	migrations  metric.Int64Counter
	shadowed    metric.Int64Counter
	selfHeals   metric.Int64Counter
	setRejected metric.Int64Counter
	failures    metric.Int64Counter
}

var _ llmcache.Hooks = (*Hooks)(nil)

func New(meter metric.Meter) (*Hooks, error) {
	var (
		h   Hooks
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&h.lookups, "llmcache.lookups", "Cache lookups by slot that served them", "{lookup}"},
		{&h.migrations, "llmcache.migrations", "Legacy entries moved to their current key", "{entry}"},
		{&h.shadowed, "llmcache.legacy_shadowed", "Lookups that found both current and legacy entries", "{lookup}"},
		{&h.selfHeals, "llmcache.self_heals", "Unreadable entries deleted on read", "{entry}"},
		{&h.setRejected, "llmcache.provider_set_rejected", "Writes refused by the provider", "{write}"},
		{&h.failures, "llmcache.migration_failures", "Failed legacy migrations", "{error}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
	}
	return &h, nil
}

func (h *Hooks) LookupResolved(ns string, src llmcache.Source) {
	h.lookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("cache.namespace", ns),
		attribute.String("cache.source", src.String()),
	))
}

func (h *Hooks) Migrated(string, string) {
	h.migrations.Add(context.Background(), 1)
}

func (h *Hooks) LegacyShadowed(string, string) {
	h.shadowed.Add(context.Background(), 1)
}

func (h *Hooks) SelfHeal(_, reason string) {
	h.selfHeals.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cache.reason", reason)))
}

func (h *Hooks) ProviderSetRejected(string) {
	h.setRejected.Add(context.Background(), 1)
}

func (h *Hooks) MigrationFailed(string, error) {
	h.failures.Add(context.Background(), 1)
}
