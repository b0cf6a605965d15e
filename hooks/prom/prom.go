// Package promhook exports cache events as Prometheus counters.
package promhook

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/llmcache"
)

type Hooks struct {
	Lookups           *prometheus.CounterVec
	Migrations        prometheus.Counter
	Shadowed          prometheus.Counter
	SelfHeals         *prometheus.CounterVec
	SetRejected       prometheus.Counter
	MigrationFailures prometheus.Counter
}

var _ llmcache.Hooks = (*Hooks)(nil)

// New creates the counters and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcache_lookups_total",
			Help: "Cache lookups by namespace and the slot that served them (current, legacy, miss).",
		}, []string{"namespace", "source"}),
		Migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmcache_migrations_total",
			Help: "Legacy entries moved to their current key.",
		}),
		Shadowed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmcache_legacy_shadowed_total",
			Help: "Lookups that found both a current and a legacy entry.",
		}),
		SelfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llmcache_self_heal_total",
			Help: "Unreadable entries deleted on read.",
		}, []string{"reason"}),
		SetRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmcache_provider_set_rejected_total",
			Help: "Writes refused by the provider.",
		}),
		MigrationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llmcache_migration_failures_total",
			Help: "Migrations that could not write the current key or delete the legacy key.",
		}),
	}
	for _, c := range []prometheus.Collector{
		h.Lookups, h.Migrations, h.Shadowed, h.SelfHeals, h.SetRejected, h.MigrationFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) LookupResolved(ns string, src llmcache.Source) {
	h.Lookups.WithLabelValues(ns, src.String()).Inc()
}

func (h *Hooks) Migrated(string, string)          { h.Migrations.Inc() }
func (h *Hooks) LegacyShadowed(string, string)    { h.Shadowed.Inc() }
func (h *Hooks) SelfHeal(_ string, reason string) { h.SelfHeals.WithLabelValues(reason).Inc() }
func (h *Hooks) ProviderSetRejected(string)       { h.SetRejected.Inc() }
func (h *Hooks) MigrationFailed(string, error)    { h.MigrationFailures.Inc() }
