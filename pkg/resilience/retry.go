package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryConfig controls exponential backoff. Zero fields take defaults.
type RetryConfig struct {
	MaxAttempts  int           // default 3
	InitialDelay time.Duration // default 100ms
	MaxDelay     time.Duration // default 10s
	Multiplier   float64       // default 2
	Jitter       float64       // fraction of the delay, default 0.1

	// ShouldRetry reports whether err is transient. Nil retries every error.
	ShouldRetry func(err error) bool
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 10 * time.Second
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2
	}
	if c.Jitter <= 0 {
		c.Jitter = 0.1
	}
	return c
}

// delay is the wait after the given failed attempt, starting at 1.
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < attempt && d < float64(c.MaxDelay); i++ {
		d *= c.Multiplier
	}
	d += d * c.Jitter * (2*rand.Float64() - 1)
	return min(time.Duration(d), c.MaxDelay)
}

// Retry calls fn until it returns a nil error, returns an error ShouldRetry
// rejects, runs out of attempts, or ctx ends during a backoff.
func Retry[T any](ctx context.Context, name string, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()
	logger := slog.Default().With("component", "retry", "operation", name)

	var zero T

	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("succeeded after retry", "attempt", attempt)
			}
			return v, nil
		}
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			return zero, fmt.Errorf("%s: giving up after %d attempts: %w", name, attempt, err)
		}
		wait := cfg.delay(attempt)
		logger.Warn("attempt failed", "attempt", attempt, "of", cfg.MaxAttempts, "retry_in", wait, "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("%s: retry cancelled: %w", name, ctx.Err())
		}
	}
}
