package llmcache

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the process-local map behind InMemory. Several InMemory
// handles may share one store; all access goes through its mutex so the
// read-legacy / write-current / delete-legacy steps of a migration run as one
// critical section.
type MemoryStore[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{items: make(map[string]V)}
}

// Len returns the number of stored entries across both key schemes.
func (s *MemoryStore[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Peek reads a raw storage key without migrating anything.
func (s *MemoryStore[V]) Peek(storageKey string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[storageKey]
	return v, ok
}

// Seed writes v under a raw storage key. It exists to import entries produced
// by older releases (legacy keys) and bypasses the update contract.
func (s *MemoryStore[V]) Seed(storageKey string, v V) {
	s.mu.Lock()
	s.items[storageKey] = v
	s.mu.Unlock()
}

// Keys returns the raw storage keys in ascending order.
func (s *MemoryStore[V]) Keys() []string {
	s.mu.Lock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// resolveLocked walks the slot state machine. Caller holds s.mu.
// shadowed reports a current hit with a legacy entry still present.
func (s *MemoryStore[V]) resolveLocked(currentKey, legacyKey string) (res Result[V], shadowed bool) {
	if v, ok := s.items[currentKey]; ok {
		_, shadowed = s.items[legacyKey]
		return Result[V]{Value: v, Source: SourceCurrent}, shadowed
	}
	v, ok := s.items[legacyKey]
	if !ok {
		return Result[V]{}, false
	}
	s.items[currentKey] = v
	delete(s.items, legacyKey)
	return Result[V]{Value: v, Source: SourceLegacy}, false
}

// MemoryOptions tune an InMemory handle. The zero value is ready to use.
type MemoryOptions struct {
	Namespace string // only used to label hook events
	Logger    Logger
	Hooks     Hooks
}

// InMemory is a migrating cache that keeps values in a MemoryStore as-is,
// without serialization. Lookup never fails.
type InMemory[V any] struct {
	store *MemoryStore[V]
	ns    string
	log   Logger
	hooks Hooks
}

// NewInMemory returns a handle over store; a nil store gets a fresh one.
func NewInMemory[V any](store *MemoryStore[V]) *InMemory[V] {
	return NewInMemoryWithOptions(store, MemoryOptions{})
}

func NewInMemoryWithOptions[V any](store *MemoryStore[V], opts MemoryOptions) *InMemory[V] {
	if store == nil {
		store = NewMemoryStore[V]()
	}
	return &InMemory[V]{
		store: store,
		ns:    coalesce(opts.Namespace, "memory"),
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
}

// Store returns the underlying store.
func (c *InMemory[V]) Store() *MemoryStore[V] { return c.store }

func (c *InMemory[V]) Lookup(ctx context.Context, prompt, llmKey string) (V, bool, error) {
	res, _ := c.Resolve(ctx, prompt, llmKey)
	return res.Value, res.Hit(), nil
}

// Resolve never returns an error.
func (c *InMemory[V]) Resolve(_ context.Context, prompt, llmKey string) (Result[V], error) {
	currentKey := Key(prompt, llmKey)
	legacyKey := LegacyKey(prompt, llmKey)

	c.store.mu.Lock()
	res, shadowed := c.store.resolveLocked(currentKey, legacyKey)
	c.store.mu.Unlock()

	switch res.Source {
	case SourceLegacy:
		c.log.Debug("migrated legacy entry", Fields{"legacy": legacyKey, "current": currentKey})
		c.hooks.Migrated(legacyKey, currentKey)
	case SourceCurrent:
		if shadowed {
			c.hooks.LegacyShadowed(currentKey, legacyKey)
		}
	}
	c.hooks.LookupResolved(c.ns, res.Source)
	return res, nil
}

func (c *InMemory[V]) Update(_ context.Context, prompt, llmKey string, value V) error {
	c.store.Seed(Key(prompt, llmKey), value)
	return nil
}

var globalStore = sync.OnceValue(NewMemoryStore[[]Generation])

// Global returns a handle over the process-wide store. The store is created on
// first use and shared by every handle Global returns.
func Global() *InMemory[[]Generation] {
	return NewInMemory(globalStore())
}
