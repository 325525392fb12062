package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes navigation of one session across replicas.
// The session manager takes it after its in-process lock.
type DistributedLocker interface {
	// Lock blocks until key is held, ctx ends, or the implementation gives up.
	// The lock expires after ttl if the holder disappears.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
