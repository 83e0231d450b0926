package lock

import (
	"context"
	"sync"
	"time"

	"restoledger/internal/core/apperror"
	corelock "restoledger/internal/core/lock"
)

// LocalLocker is an in-process Locker for single-instance deployments and tests.
// The ttl is ignored; a lease is held until released.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
	wait time.Duration
}

var _ corelock.Locker = (*LocalLocker)(nil)

// NewLocalLocker creates a LocalLocker that waits at most wait for a busy key.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{keys: make(map[string]chan struct{}), wait: wait}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.keys[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.keys[key] = ch
	}
	return ch
}

// Obtain implements lock.Locker.
func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (corelock.Lease, error) {
	ch := l.slot(key)

	select {
	case ch <- struct{}{}:
		return &localLease{ch: ch}, nil
	default:
	}
	if l.wait <= 0 {
		return nil, apperror.NewLockNotObtained(key)
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return &localLease{ch: ch}, nil
	case <-timer.C:
		return nil, apperror.NewLockNotObtained(key)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type localLease struct {
	once sync.Once
	ch   chan struct{}
}

func (l *localLease) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}
