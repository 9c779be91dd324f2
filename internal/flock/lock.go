package flock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Lock is a held exclusive lock on a lock file.
type Lock struct {
	f *os.File
}

// Acquire opens (creating if needed) the lock file at path and polls for an
// exclusive lock until timeout elapses or ctx is done.
func Acquire(ctx context.Context, path string, timeout, interval time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) //#nosec G302,G304 -- lock file needs write access, path is constructed internally
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := Exclusive(f.Fd()); err == nil {
			return &Lock{f: f}, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, forgeerrors.ErrLockTimeout)
		}

		time.Sleep(interval)
	}
}

// Release unlocks and closes the lock file. Safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := Unlock(l.f.Fd())
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return fmt.Errorf("failed to unlock: %w", unlockErr)
	}
	return closeErr
}
