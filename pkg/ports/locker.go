package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for concurrency control on stored documents.
// It lets several server replicas serialize load-normalize-save cycles on the same document.
type DistributedLocker interface {
	// Lock attempts to acquire a lock for the given key (e.g., document ID).
	// It blocks until the lock is acquired or the context is canceled. The lock
	// expires after ttl if never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
