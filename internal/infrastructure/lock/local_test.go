package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/apperror"
	corelock "restoledger/internal/core/lock"
)

func TestLocalLocker_Exclusive(t *testing.T) {
	l := NewLocalLocker(0)
	ctx := context.Background()

	lease, err := l.Obtain(ctx, corelock.RegisterKey, time.Second)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, corelock.RegisterKey, time.Second)
	assert.True(t, apperror.Is(err, apperror.CodeLockNotObtained))

	other, err := l.Obtain(ctx, "other", time.Second)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx), "double release is harmless")

	again, err := l.Obtain(ctx, corelock.RegisterKey, time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLocalLocker_WaitsForRelease(t *testing.T) {
	l := NewLocalLocker(time.Second)
	ctx := context.Background()

	lease, err := l.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = lease.Release(ctx)
	}()

	second, err := l.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)
	require.NoError(t, second.Release(ctx))
}

func TestWithLock_ReleasesOnError(t *testing.T) {
	l := NewLocalLocker(0)
	ctx := context.Background()

	err := corelock.WithLock(ctx, l, "k", time.Second, func(context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	err = corelock.WithLock(ctx, l, "k", time.Second, func(context.Context) error { return nil })
	assert.NoError(t, err)
}
