package locker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("LLMCACHE_REDIS_ADDR")
	if addr == "" {
		t.Skip("LLMCACHE_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return rdb
}

func TestNewRedisNilClient(t *testing.T) {
	if _, err := NewRedis(RedisConfig{}); err != ErrNilClient {
		t.Fatalf("want ErrNilClient, got %v", err)
	}
}

func TestRedisLockExcludesSecondHolder(t *testing.T) {
	rdb := newRedisClient(t)
	l, err := NewRedis(RedisConfig{Client: rdb, Namespace: "locker-test", Lease: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(short, "k"); err == nil {
		t.Fatalf("second Lock should time out while held")
	}

	unlock()
	unlock2, err := l.Lock(ctx, "k")
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	unlock2()
}
