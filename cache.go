package llmcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/llmcache/codec"
	"github.com/unkn0wn-root/llmcache/internal/util"
	"github.com/unkn0wn-root/llmcache/internal/wire"
	"github.com/unkn0wn-root/llmcache/locker"
	"github.com/unkn0wn-root/llmcache/provider"
)

// ProviderCache is a migrating cache over a byte Provider. Values are encoded
// with a Codec and framed with the scheme they were written under.
type ProviderCache[V any] struct {
	ns             string
	provider       provider.Provider
	codec          codec.Codec[V]
	log            Logger
	hooks          Hooks
	locker         locker.Locker
	enabled        bool
	ttl            time.Duration
	computeSetCost SetCostFunc

	// collapses concurrent migrations of one key inside this process
	flight singleflight.Group
}

func newProviderCache[V any](opts Options[V]) (*ProviderCache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("llmcache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("llmcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("llmcache: namespace is required")
	}

	c := &ProviderCache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
		ttl:      opts.TTL,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Locker != nil {
		c.locker = opts.Locker
	} else {
		c.locker = locker.NewLocal(0)
	}
	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(string, []byte) int64 { return 1 }
	}
	return c, nil
}

func (c *ProviderCache[V]) Enabled() bool { return c.enabled }

func (c *ProviderCache[V]) Close(ctx context.Context) error {
	// Close locker first (best effort)
	if c.locker != nil {
		_ = c.locker.Close(ctx)
	}
	if c.provider != nil {
		return c.provider.Close(ctx)
	}
	return nil
}

func (c *ProviderCache[V]) Lookup(ctx context.Context, prompt, llmKey string) (V, bool, error) {
	res, err := c.Resolve(ctx, prompt, llmKey)
	return res.Value, res.Hit(), err
}

// Resolve reads the current key, then the legacy key. A legacy hit is
// migrated before returning. Errors come only from the provider or locker;
// a failed migration still serves the legacy value and is reported via Hooks.
func (c *ProviderCache[V]) Resolve(ctx context.Context, prompt, llmKey string) (Result[V], error) {
	if !c.enabled {
		return Result[V]{}, nil
	}
	currentKey := c.storageKey(Key(prompt, llmKey))
	legacyKey := c.storageKey(LegacyKey(prompt, llmKey))

	res, err := c.resolve(ctx, currentKey, legacyKey)
	if err != nil {
		return Result[V]{}, err
	}
	c.hooks.LookupResolved(c.ns, res.Source)
	return res, nil
}

func (c *ProviderCache[V]) resolve(ctx context.Context, currentKey, legacyKey string) (Result[V], error) {
	v, ok, err := c.read(ctx, currentKey, currentKey, SchemeCurrent, false)
	if err != nil {
		return Result[V]{}, err
	}
	if ok {
		return Result[V]{Value: v, Source: SourceCurrent}, nil
	}

	raw, ok, err := c.provider.Get(ctx, legacyKey)
	if err != nil {
		return Result[V]{}, fmt.Errorf("llmcache: get %q: %w", legacyKey, err)
	}
	if !ok {
		return Result[V]{}, nil
	}
	if _, ok := c.unframe(ctx, currentKey, legacyKey, raw, SchemeLegacy, false); !ok {
		return Result[V]{}, nil
	}

	// LegacyOnly as of the reads above; re-checked under the key lock.
	r, err, _ := c.flight.Do(currentKey, func() (any, error) {
		return c.migrate(ctx, currentKey, legacyKey)
	})
	if err != nil {
		return Result[V]{}, err
	}
	return r.(Result[V]), nil
}

// migrate moves a legacy entry to its current key. The key lock covers the
// re-read, the current write and the legacy delete, and Update takes the same
// lock, so a concurrent Update can never be overwritten by a stale legacy value.
func (c *ProviderCache[V]) migrate(ctx context.Context, currentKey, legacyKey string) (Result[V], error) {
	unlock, err := c.locker.Lock(ctx, currentKey)
	if err != nil {
		return Result[V]{}, fmt.Errorf("llmcache: lock %q: %w", currentKey, err)
	}
	defer unlock()

	// Update or another process may have landed first.
	v, ok, err := c.read(ctx, currentKey, currentKey, SchemeCurrent, true)
	if err != nil {
		return Result[V]{}, err
	}
	if ok {
		_, still, err := c.provider.Get(ctx, legacyKey)
		switch {
		case err != nil:
			c.log.Debug("legacy read failed", Fields{"key": legacyKey, "err": err})
		case still:
			c.hooks.LegacyShadowed(currentKey, legacyKey)
		}
		return Result[V]{Value: v, Source: SourceCurrent}, nil
	}

	raw, ok, err := c.provider.Get(ctx, legacyKey)
	if err != nil {
		return Result[V]{}, fmt.Errorf("llmcache: get %q: %w", legacyKey, err)
	}
	if !ok {
		// migrated and then expired/evicted elsewhere
		return Result[V]{}, nil
	}
	payload, ok := c.unframe(ctx, currentKey, legacyKey, raw, SchemeLegacy, true)
	if !ok {
		return Result[V]{}, nil
	}
	v, err = c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, currentKey, legacyKey, raw, "value_decode", true)
		return Result[V]{}, nil
	}

	res := Result[V]{Value: v, Source: SourceLegacy}
	frame := wire.Encode(byte(SchemeCurrent), payload)
	stored, err := c.provider.Set(ctx, currentKey, frame, c.computeSetCost(currentKey, frame), c.ttl)
	if err != nil {
		c.migrationFailed(&MigrationError{LegacyKey: legacyKey, CurrentKey: currentKey, WriteErr: err})
		return res, nil
	}
	if !stored {
		// keep the legacy entry: it is the only copy
		c.hooks.ProviderSetRejected(currentKey)
		c.log.Debug("migration write rejected by provider (pressure)", Fields{"key": currentKey})
		return res, nil
	}
	if err := c.provider.Del(ctx, legacyKey); err != nil {
		c.migrationFailed(&MigrationError{LegacyKey: legacyKey, CurrentKey: currentKey, DeleteErr: err})
		return res, nil
	}

	c.log.Debug("migrated legacy entry", Fields{"legacy": legacyKey, "current": currentKey})
	c.hooks.Migrated(legacyKey, currentKey)
	return res, nil
}

// Update stores value under the current key only.
func (c *ProviderCache[V]) Update(ctx context.Context, prompt, llmKey string, value V) error {
	if !c.enabled {
		return nil
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("llmcache: encode: %w", err)
	}
	currentKey := c.storageKey(Key(prompt, llmKey))
	frame := wire.Encode(byte(SchemeCurrent), payload)

	unlock, err := c.locker.Lock(ctx, currentKey)
	if err != nil {
		return fmt.Errorf("llmcache: lock %q: %w", currentKey, err)
	}
	defer unlock()

	ok, err := c.provider.Set(ctx, currentKey, frame, c.computeSetCost(currentKey, frame), c.ttl)
	if err != nil {
		return fmt.Errorf("llmcache: set %q: %w", currentKey, err)
	}
	if !ok {
		c.hooks.ProviderSetRejected(currentKey)
		c.log.Debug("Update rejected by provider (pressure)", Fields{"key": currentKey})
	}
	return nil
}

// read fetches and decodes one slot. Corrupt or misplaced entries are deleted
// and reported as a miss. lockKey is the logical key's lock and held reports
// whether the caller already holds it.
func (c *ProviderCache[V]) read(ctx context.Context, lockKey, storageKey string, s Scheme, held bool) (V, bool, error) {
	var zero V
	raw, ok, err := c.provider.Get(ctx, storageKey)
	if err != nil {
		return zero, false, fmt.Errorf("llmcache: get %q: %w", storageKey, err)
	}
	if !ok {
		return zero, false, nil
	}
	payload, ok := c.unframe(ctx, lockKey, storageKey, raw, s, held)
	if !ok {
		return zero, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, lockKey, storageKey, raw, "value_decode", held)
		return zero, false, nil
	}
	return v, true, nil
}

func (c *ProviderCache[V]) unframe(ctx context.Context, lockKey, storageKey string, raw []byte, s Scheme, held bool) ([]byte, bool) {
	scheme, payload, err := wire.Decode(raw)
	if err != nil {
		c.selfHeal(ctx, lockKey, storageKey, raw, "corrupt", held)
		return nil, false
	}
	if Scheme(scheme) != s {
		c.selfHeal(ctx, lockKey, storageKey, raw, "scheme_mismatch", held)
		return nil, false
	}
	return payload, true
}

// selfHeal deletes storageKey if it still holds raw. Without the key lock it
// takes it first, so a concurrent Update is never deleted.
func (c *ProviderCache[V]) selfHeal(ctx context.Context, lockKey, storageKey string, raw []byte, reason string, held bool) {
	if !held {
		unlock, err := c.locker.Lock(ctx, lockKey)
		if err != nil {
			c.log.Debug("self-heal skipped", Fields{"key": storageKey, "err": err})
			return
		}
		defer unlock()

		cur, ok, err := c.provider.Get(ctx, storageKey)
		if err != nil || !ok || !bytes.Equal(cur, raw) {
			return
		}
	}
	_ = c.provider.Del(ctx, storageKey)
	c.log.Warn("dropped unreadable entry", Fields{"key": storageKey, "reason": reason})
	c.hooks.SelfHeal(storageKey, reason)
}

func (c *ProviderCache[V]) migrationFailed(err *MigrationError) {
	f := Fields{"legacy": err.LegacyKey, "current": err.CurrentKey, "err": err}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.log.Debug("migration interrupted", f)
	} else {
		c.log.Warn("migration failed", f)
	}
	c.hooks.MigrationFailed(err.LegacyKey, err)
}

func (c *ProviderCache[V]) storageKey(digest string) string {
	return util.StorageKey(c.ns, digest)
}
