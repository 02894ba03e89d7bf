package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes updates of one session across server replicas.
// session.Manager takes it around every read-modify-write of a state.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The lock lapses after ttl
	// so a crashed replica cannot hold a session forever.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
