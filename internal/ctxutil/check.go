// Package ctxutil provides context utility functions.
package ctxutil

import (
	"context"
	"time"
)

// Canceled returns the context error if ctx is done, nil otherwise.
// Used at the entry of blocking operations.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Sleep waits for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately with the current context error.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
