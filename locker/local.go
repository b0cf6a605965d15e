package locker

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultStripes = 256

// Local is an in-process Locker over a fixed set of mutex stripes. Distinct
// keys may share a stripe, which only costs some contention.
type Local struct {
	stripes []sync.Mutex
}

var _ Locker = (*Local)(nil)

// NewLocal creates a Local with n stripes; n <= 0 uses 256.
func NewLocal(n int) *Local {
	if n <= 0 {
		n = defaultStripes
	}
	return &Local{stripes: make([]sync.Mutex, n)}
}

func (l *Local) stripe(key string) *sync.Mutex {
	return &l.stripes[xxhash.Sum64String(key)%uint64(len(l.stripes))]
}

// Lock does not observe ctx once it starts waiting; stripes are held only for
// the duration of a few store calls.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := l.stripe(key)
	m.Lock()
	return m.Unlock, nil
}

func (l *Local) Close(context.Context) error { return nil }
