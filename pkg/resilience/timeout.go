package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

// WithTimeout runs fn under a context that expires after timeout and returns
// as soon as either fn finishes or the deadline passes. fn keeps running in
// the background in the second case and should watch its context. Expiry
// errors wrap both ErrTimeout and context.DeadlineExceeded. A non-positive
// timeout calls fn directly.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeoutCause(ctx, timeout, apperrors.ErrTimeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		if context.Cause(ctx) == apperrors.ErrTimeout {
			return zero, fmt.Errorf("%s: %w after %v: %w", name, apperrors.ErrTimeout, timeout, context.DeadlineExceeded)
		}
		return zero, fmt.Errorf("%s: %w", name, ctx.Err())
	}
}
