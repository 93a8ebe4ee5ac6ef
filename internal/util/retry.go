package util

import (
	"context"
	"errors"
	"time"
)

// RetryErrWithContext calls fn up to maxTries times until it returns nil,
// sleeping backoff between attempts (doubled each time). Context
// cancellation stops retrying immediately. If maxTries <= 0, it defaults
// to 1. Returns the last error if all attempts fail.
func RetryErrWithContext(ctx context.Context, maxTries int, backoff time.Duration, fn func(context.Context) error) error {
	if maxTries <= 0 {
		maxTries = 1
	}

	var lastErr error
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err

		if backoff > 0 && i < maxTries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return lastErr
}

// RetryWithContext calls fn up to maxTries times until it returns a result
// and nil error, or until ctx is done. If maxTries <= 0, it defaults to 1.
// Returns ctx.Err() if the context is canceled, otherwise the last error.
func RetryWithContext[T any](ctx context.Context, maxTries int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := RetryErrWithContext(ctx, maxTries, backoff, func(ctx context.Context) error {
		res, err := fn(ctx)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
