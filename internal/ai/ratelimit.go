package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedGenerator spaces calls to the wrapped generator.
type RateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator allows requestsPerMinute calls per minute with the
// given burst. A non-positive rate returns next unchanged.
func NewRateLimitedGenerator(next Generator, requestsPerMinute, burst int) Generator {
	if requestsPerMinute <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst),
	}
}

// Generate implements Generator.
func (r *RateLimitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for generation rate limit: %w", err)
	}
	return r.next.Generate(ctx, prompt)
}
