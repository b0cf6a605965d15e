// Package locker serializes work per logical cache key.
//
// The migrating cache holds a key's lock across read-legacy, write-current and
// delete-legacy, and across Update, so a migration can never overwrite a value
// written concurrently by Update. Use Local when one process owns the store and
// Redis when the store is shared by several processes.
package locker

import "context"

// Locker hands out exclusive per-key locks.
type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned unlock func
	// must be called exactly once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
	// Close releases resources (no-op ok).
	Close(ctx context.Context) error
}
