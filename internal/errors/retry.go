package errors

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryConfig configures exponential backoff.
type RetryConfig struct {
	// MaxRetries counts attempts after the first one.
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Jitter shortens each wait by up to half, so workflows started by
	// the same keystroke do not retry in lockstep.
	Jitter bool

	// ShouldRetry reports whether err is worth another attempt.
	// Nil retries every error.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig is used for GitHub requests. Script Filters run while
// the user types, so the total wait stays within a few seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     4 * time.Second,
		Multiplier:   2,
	}
}

// Retry calls fn until it succeeds, returns an error ShouldRetry rejects,
// runs out of retries, or ctx ends.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := RetryWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// RetryWithResult is Retry for functions that return a value.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	wait := backoff{cfg: cfg, next: cfg.InitialDelay}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		switch {
		case err == nil:
			return result, nil
		case cfg.ShouldRetry != nil && !cfg.ShouldRetry(err):
			return zero, err
		case attempt >= cfg.MaxRetries:
			return zero, fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, err)
		}

		if err := sleep(ctx, wait.step()); err != nil {
			return zero, err
		}
	}
}

type backoff struct {
	cfg  RetryConfig
	next time.Duration
}

// step returns the current wait and grows the next one, capped at MaxDelay.
func (b *backoff) step() time.Duration {
	d := b.next
	b.next = min(time.Duration(float64(b.next)*b.cfg.Multiplier), b.cfg.MaxDelay)
	if b.cfg.Jitter {
		d = time.Duration(float64(d) * (0.5 + rand.Float64()/2))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
