package llmcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/llmcache/codec"
	"github.com/unkn0wn-root/llmcache/locker"
	"github.com/unkn0wn-root/llmcache/provider"
)

type SetCostFunc func(storageKey string, raw []byte) int64

// Cache is the lookup/update contract consumed by LLM call wrappers.
// Lookup returns (zero, false, nil) on a miss. Update always writes under the
// current key scheme and never touches legacy entries.
type Cache[V any] interface {
	Lookup(ctx context.Context, prompt, llmKey string) (v V, ok bool, err error)
	Update(ctx context.Context, prompt, llmKey string, value V) error
}

// Resolver exposes which slot served a lookup.
type Resolver[V any] interface {
	Resolve(ctx context.Context, prompt, llmKey string) (Result[V], error)
}

// Source tags where a lookup found its value.
type Source uint8

const (
	SourceMiss Source = iota
	SourceCurrent
	SourceLegacy // found under the legacy key and migrated
)

func (s Source) String() string {
	switch s {
	case SourceCurrent:
		return "current"
	case SourceLegacy:
		return "legacy"
	default:
		return "miss"
	}
}

// Result is the tagged outcome of Resolve.
type Result[V any] struct {
	Value  V
	Source Source
}

func (r Result[V]) Hit() bool { return r.Source != SourceMiss }

// Options tune the provider-backed cache.
// Namespace, Provider and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // isolates keys: llm:<ns>:<digest>
	Provider  provider.Provider
	Codec     codec.Codec[V]

	Logger         Logger        // nil => NopLogger
	Hooks          Hooks         // nil => NopHooks
	Locker         locker.Locker // nil => locker.NewLocal(0)
	TTL            time.Duration // 0 => no expiry
	Disabled       bool          // lookups miss and updates are dropped
	ComputeSetCost SetCostFunc   // default 1
}

// New builds a provider-backed migrating cache.
func New[V any](opts Options[V]) (*ProviderCache[V], error) {
	return newProviderCache[V](opts)
}

var (
	_ Cache[string]    = (*ProviderCache[string])(nil)
	_ Resolver[string] = (*ProviderCache[string])(nil)
	_ Cache[string]    = (*InMemory[string])(nil)
	_ Resolver[string] = (*InMemory[string])(nil)
)
