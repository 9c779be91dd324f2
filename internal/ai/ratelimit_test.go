package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitedGenerator_DisabledReturnsNext(t *testing.T) {
	next := GeneratorFunc(func(context.Context, string) (string, error) { return "ok", nil })

	gen := NewRateLimitedGenerator(next, 0, 5)
	_, limited := gen.(*RateLimitedGenerator)
	assert.False(t, limited)
}

func TestRateLimitedGenerator_BurstPassesThrough(t *testing.T) {
	calls := 0
	next := GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		calls++
		return "echo " + prompt, nil
	})

	gen := NewRateLimitedGenerator(next, 1, 2)
	for range 2 {
		out, err := gen.Generate(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "echo p", out)
	}
	assert.Equal(t, 2, calls)
}

func TestRateLimitedGenerator_CanceledWhileWaiting(t *testing.T) {
	calls := 0
	next := GeneratorFunc(func(context.Context, string) (string, error) {
		calls++
		return "ok", nil
	})
	gen := NewRateLimitedGenerator(next, 1, 0)

	_, err := gen.Generate(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.Generate(ctx, "second")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
