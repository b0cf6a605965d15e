package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("redis locker: nil client")

const (
	defaultLease      = 5 * time.Second
	defaultRetryDelay = 5 * time.Millisecond
	maxRetryDelay     = 200 * time.Millisecond
)

// release deletes the lock only if it still carries our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared across processes. Each lock is a key set with
// NX and a lease; an expired lease frees the key if the holder dies.
type Redis struct {
	rdb        redis.UniversalClient
	ns         string
	lease      time.Duration
	retryDelay time.Duration
}

var _ Locker = (*Redis)(nil)

type RedisConfig struct {
	Client     redis.UniversalClient
	Namespace  string        // should match the cache namespace
	Lease      time.Duration // 0 => 5s
	RetryDelay time.Duration // initial poll delay; 0 => 5ms, doubles up to 200ms
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	r := &Redis{rdb: cfg.Client, ns: cfg.Namespace, lease: cfg.Lease, retryDelay: cfg.RetryDelay}
	if r.lease <= 0 {
		r.lease = defaultLease
	}
	if r.retryDelay <= 0 {
		r.retryDelay = defaultRetryDelay
	}
	return r, nil
}

func (r *Redis) key(k string) string { return "lock:" + r.ns + ":" + k }

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.key(key)
	token := uuid.NewString()
	delay := r.retryDelay
	for {
		ok, err := r.rdb.SetNX(ctx, k, token, r.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %q: %w", key, err)
		}
		if ok {
			return func() {
				// detached: the caller's ctx may already be done
				_ = release.Run(context.Background(), r.rdb, []string{k}, token).Err()
			}, nil
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		if delay *= 2; delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

// Close does not close the client; it is owned by the caller.
func (r *Redis) Close(context.Context) error { return nil }
