package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Config configures retry behavior for transient failures.
type Config struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns three attempts with 1s→10s exponential backoff.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryAfter lets an error dictate the wait before the next attempt.
type RetryAfter interface {
	RetryAfterDuration() time.Duration
}

// Do calls fn until it succeeds, shouldRetry reports false, the attempts
// are exhausted, or ctx is done. A nil shouldRetry retries every error.
// Context errors are never retried.
func Do(ctx context.Context, cfg Config, shouldRetry func(error) bool, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := range attempts {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Backoff(cfg, attempt, err)):
		}
	}
	return lastErr
}

// Backoff computes the wait before retrying after the given zero-based attempt.
func Backoff(cfg Config, attempt int, err error) time.Duration {
	var ra RetryAfter
	if errors.As(err, &ra) && ra.RetryAfterDuration() > 0 {
		return ra.RetryAfterDuration()
	}

	wait := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt))
	if wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
