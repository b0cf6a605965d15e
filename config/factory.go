package config

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/llmcache"
	"github.com/unkn0wn-root/llmcache/codec"
	"github.com/unkn0wn-root/llmcache/locker"
	"github.com/unkn0wn-root/llmcache/provider"
	"github.com/unkn0wn-root/llmcache/provider/bigcache"
	"github.com/unkn0wn-root/llmcache/provider/memory"
	"github.com/unkn0wn-root/llmcache/provider/redis"
	"github.com/unkn0wn-root/llmcache/provider/ristretto"
	"github.com/unkn0wn-root/llmcache/provider/sqlite"
)

// OpenProvider builds the configured byte store. The locker is non-nil only
// when the backend is shared across processes and asks for a shared lock.
func OpenProvider(ctx context.Context, cfg Config) (provider.Provider, locker.Locker, error) {
	switch cfg.Backend {
	case BackendMemory:
		return memory.New(), nil, nil
	case BackendRistretto:
		p, err := ristretto.New(ristretto.Config{
			NumCounters: cfg.Ristretto.NumCounters,
			MaxCost:     cfg.Ristretto.MaxCost,
			BufferItems: cfg.Ristretto.BufferItems,
			Metrics:     cfg.Ristretto.Metrics,
		})
		return p, nil, err
	case BackendBigCache:
		p, err := bigcache.New(ctx, bigcache.Config{
			LifeWindow:         cfg.BigCache.LifeWindow,
			CleanWindow:        cfg.BigCache.CleanWindow,
			Shards:             cfg.BigCache.Shards,
			MaxEntrySize:       cfg.BigCache.MaxEntrySize,
			HardMaxCacheSizeMB: cfg.BigCache.HardMaxCacheSizeMB,
		})
		return p, nil, err
	case BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		p, err := redis.New(redis.Config{Client: rdb, CloseClient: true})
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		if !cfg.Redis.SharedLock {
			return p, nil, nil
		}
		l, err := locker.NewRedis(locker.RedisConfig{Client: rdb, Namespace: cfg.Namespace, Lease: cfg.Redis.LockLease})
		if err != nil {
			_ = p.Close(ctx)
			return nil, nil, err
		}
		return p, l, nil
	case BackendSQLite:
		p, err := sqlite.Open(cfg.SQLite.Path)
		return p, nil, err
	default:
		return nil, nil, fmt.Errorf("config: unknown backend %q", cfg.Backend)
	}
}

// CodecFor returns the named codec, size-limited when maxDecode > 0.
func CodecFor[V any](name string, maxDecode int) (codec.Codec[V], error) {
	var c codec.Codec[V]
	switch name {
	case "", "json":
		c = codec.JSON[V]{}
	case "sonic":
		c = codec.Sonic[V]{}
	case "cbor":
		cb, err := codec.NewCBOR[V](true)
		if err != nil {
			return nil, err
		}
		c = cb
	case "msgpack":
		c = codec.Msgpack[V]{}
	default:
		return nil, fmt.Errorf("config: unknown codec %q", name)
	}
	if maxDecode > 0 {
		c = codec.Limit[V]{Inner: c, MaxDecode: maxDecode}
	}
	return c, nil
}

// Open wires provider, locker and codec from cfg into a cache of V.
func Open[V any](ctx context.Context, cfg Config, logger llmcache.Logger, hooks llmcache.Hooks) (*llmcache.ProviderCache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := CodecFor[V](cfg.Codec, cfg.MaxDecodeBytes)
	if err != nil {
		return nil, err
	}
	p, l, err := OpenProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: open %s backend: %w", cfg.Backend, err)
	}
	return llmcache.New[V](llmcache.Options[V]{
		Namespace: cfg.Namespace,
		Provider:  p,
		Codec:     c,
		Logger:    logger,
		Hooks:     hooks,
		Locker:    l,
		TTL:       cfg.TTL,
		Disabled:  cfg.Disabled,
	})
}

// OpenGenerations is Open for the default []llmcache.Generation value type.
func OpenGenerations(ctx context.Context, cfg Config, logger llmcache.Logger, hooks llmcache.Hooks) (*llmcache.ProviderCache[[]llmcache.Generation], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	inner, err := CodecFor[[]llmcache.StoredGeneration](cfg.Codec, cfg.MaxDecodeBytes)
	if err != nil {
		return nil, err
	}
	p, l, err := OpenProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: open %s backend: %w", cfg.Backend, err)
	}
	return llmcache.New[[]llmcache.Generation](llmcache.Options[[]llmcache.Generation]{
		Namespace: cfg.Namespace,
		Provider:  p,
		Codec:     llmcache.GenerationsCodec{Inner: inner},
		Logger:    logger,
		Hooks:     hooks,
		Locker:    l,
		TTL:       cfg.TTL,
		Disabled:  cfg.Disabled,
	})
}
