// Package lock defines the global register lock used by shift operations.
package lock

import (
	"context"
	"time"
)

// RegisterKey is the lock key guarding the single open cash register.
const RegisterKey = "restoledger:register"

// Locker obtains short-lived exclusive locks across processes.
type Locker interface {
	// Obtain acquires key for ttl. It returns apperror CodeLockNotObtained
	// when another holder owns the key after the retry budget is spent.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock.
type Lease interface {
	Release(ctx context.Context) error
}

// WithLock runs fn while holding key.
func WithLock(ctx context.Context, l Locker, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lease, err := l.Obtain(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer func() { _ = lease.Release(context.WithoutCancel(ctx)) }()
	return fn(ctx)
}
