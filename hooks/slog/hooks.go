// Package sloghook logs cache events with log/slog, with optional sampling.
package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/llmcache"
	"github.com/unkn0wn-root/llmcache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	LookupEvery   uint64
	SelfHealEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix of the digest, with
	// the namespace of llmcache storage keys kept readable.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	lookupCtr   atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ llmcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	ns, digest, ok := util.SplitStorageKey(k)
	if !ok {
		return hashPrefix(k)
	}
	return util.StorageKey(ns, hashPrefix(digest))
}

func hashPrefix(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) LookupResolved(ns string, src llmcache.Source) {
	if h.l == nil || !sample(h.opts.LookupEvery, &h.lookupCtr) {
		return
	}
	h.l.Debug("llmcache.lookup",
		"ns", ns,
		"source", src.String())
}

func (h *Hooks) Migrated(legacyKey, currentKey string) {
	if h.l == nil {
		return
	}
	h.l.Info("llmcache.migrated",
		"legacy", h.redact(legacyKey),
		"current", h.redact(currentKey))
}

func (h *Hooks) LegacyShadowed(currentKey, legacyKey string) {
	if h.l == nil {
		return
	}
	h.l.Debug("llmcache.legacy_shadowed",
		"current", h.redact(currentKey),
		"legacy", h.redact(legacyKey))
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Warn("llmcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("llmcache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) MigrationFailed(legacyKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("llmcache.migration_failed",
		"legacy", h.redact(legacyKey),
		"err", err)
}
