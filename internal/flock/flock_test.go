//go:build unix

package flock_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/flock"
)

func TestExclusive(t *testing.T) {
	t.Parallel()

	lockFile := filepath.Join(t.TempDir(), "test.lock")

	f1, err := os.OpenFile(lockFile, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test code using safe temp dir
	require.NoError(t, err)
	defer func() { _ = f1.Close() }()

	f2, err := os.OpenFile(lockFile, os.O_RDWR, 0o600) // #nosec G304 -- test code using safe temp dir
	require.NoError(t, err)
	defer func() { _ = f2.Close() }()

	require.NoError(t, flock.Exclusive(f1.Fd()))
	require.Error(t, flock.Exclusive(f2.Fd()), "second descriptor must not get the lock")

	require.NoError(t, flock.Unlock(f1.Fd()))
	require.NoError(t, flock.Exclusive(f2.Fd()))
	require.NoError(t, flock.Unlock(f2.Fd()))
}

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("creates directory and lock file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "memory.json.lock")

		lock, err := flock.Acquire(context.Background(), path, time.Second, 10*time.Millisecond)
		require.NoError(t, err)
		assert.FileExists(t, path)
		require.NoError(t, lock.Release())
		require.NoError(t, lock.Release())
	})

	t.Run("times out while held", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "memory.json.lock")

		held, err := flock.Acquire(context.Background(), path, time.Second, 10*time.Millisecond)
		require.NoError(t, err)
		defer func() { _ = held.Release() }()

		_, err = flock.Acquire(context.Background(), path, 30*time.Millisecond, 10*time.Millisecond)
		require.ErrorIs(t, err, forgeerrors.ErrLockTimeout)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := flock.Acquire(ctx, filepath.Join(t.TempDir(), "x.lock"), time.Second, 10*time.Millisecond)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("nil lock release", func(t *testing.T) {
		t.Parallel()
		var lock *flock.Lock
		assert.NoError(t, lock.Release())
	})
}
