package daybrief

import (
	"context"
	"time"
)

// retryPolicy parameterizes executeWithPolicy. MaxAttempts counts the first
// try; Backoff holds the delay before each retry (the last entry repeats if
// there are more retries than entries). A nil RetryableFn retries every
// error.
type retryPolicy struct {
	MaxAttempts int
	Backoff     []time.Duration
	RetryableFn func(error) bool
}

func (p retryPolicy) delayBeforeRetry(retry int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if retry >= len(p.Backoff) {
		return p.Backoff[len(p.Backoff)-1]
	}
	return p.Backoff[retry]
}

// executeWithPolicy runs fn until it succeeds, the policy is exhausted, an
// error is classified non-retryable, or the context is done. It returns the
// last error on failure.
func executeWithPolicy[T any](ctx context.Context, policy retryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := policy.delayBeforeRetry(attempt - 1)
			if delay > 0 {
				select {
				case <-ctx.Done():
					return zero, ctx.Err()
				case <-time.After(delay):
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if policy.RetryableFn != nil && !policy.RetryableFn(err) {
			return zero, err
		}
	}
	return zero, lastErr
}
