package ctxutil_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/ctxutil"
)

func TestCanceled(t *testing.T) {
	t.Parallel()

	require.NoError(t, ctxutil.Canceled(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, ctxutil.Canceled(ctx), context.Canceled)
}

func TestSleep(t *testing.T) {
	t.Parallel()

	t.Run("zero duration returns immediately", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ctxutil.Sleep(context.Background(), 0))
	})

	t.Run("waits for the duration", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		require.NoError(t, ctxutil.Sleep(context.Background(), 10*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("canceled context interrupts", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		err := ctxutil.Sleep(ctx, time.Minute)
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
