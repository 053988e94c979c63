package errors

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	MaxRetries   int           // attempts after the first; 0 means call once
	InitialDelay time.Duration // wait before the first retry
	MaxDelay     time.Duration // cap on any single wait
	Multiplier   float64       // growth of the wait per retry
	Jitter       bool          // scale each wait by a random factor in [0.5, 1)
}

// DefaultRetryConfig returns the retry configuration used for index writes.
// Lock contention on a local index clears quickly, so delays stay short.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// backoff returns the wait before retry n (0-based).
func (c RetryConfig) backoff(n int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 0; i < n; i++ {
		d *= c.Multiplier
		if c.MaxDelay > 0 && d >= float64(c.MaxDelay) {
			d = float64(c.MaxDelay)
			break
		}
	}
	if c.Jitter {
		d *= 0.5 + rand.Float64()*0.5
	}
	return time.Duration(d)
}

// Retry calls fn until it succeeds, returns an error that is not retryable
// (see IsRetryable), or MaxRetries retries are used up. A done context ends
// the loop with the context's error.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		wait := cfg.backoff(attempt)
		slog.Debug("retrying_after_error",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.String("error_code", GetCode(lastErr)))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
