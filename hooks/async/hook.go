// Package asynchook moves hook delivery off the lookup path.
//
// usage:
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{LookupEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := llmcache.New[[]llmcache.Generation](llmcache.Options[[]llmcache.Generation]{
//	    Namespace: "app:prod:chat",
//	    Provider:  provider,
//	    Codec:     llmcache.GenerationsCodec{Inner: codec.JSON[[]llmcache.StoredGeneration]{}},
//	    Hooks:     hooks,
//	})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/llmcache"
)

type Hooks struct {
	inner   llmcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	mu      sync.RWMutex // guards closed and the send on q
	closed  bool
	dropped atomic.Uint64
}

var _ llmcache.Hooks = (*Hooks)(nil)

func New(inner llmcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.q)
	h.mu.Unlock()
	h.wg.Wait()
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) LookupResolved(ns string, src llmcache.Source) {
	h.try(func() { h.inner.LookupResolved(ns, src) })
}
func (h *Hooks) Migrated(legacy, current string) { h.try(func() { h.inner.Migrated(legacy, current) }) }
func (h *Hooks) LegacyShadowed(current, legacy string) {
	h.try(func() { h.inner.LegacyShadowed(current, legacy) })
}
func (h *Hooks) SelfHeal(k, reason string)    { h.try(func() { h.inner.SelfHeal(k, reason) }) }
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) MigrationFailed(k string, err error) {
	h.try(func() { h.inner.MigrationFailed(k, err) })
}
