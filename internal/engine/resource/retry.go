package resource

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/backoffice/internal/core/domain"
)

// RetryPolicy configures Retry.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first. Values below 1 mean 1.
	Attempts int
	// Delay is the wait before the second attempt. It doubles after every retry.
	Delay time.Duration
}

// Retry calls fn until it succeeds, fails with an error other than a network or
// timeout failure, or the attempts are used up. Nothing retries implicitly; callers
// opt in by wrapping a service call.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	attempts := max(policy.Attempts, 1)
	delay := policy.Delay

	var (
		out T
		err error
	)
	for attempt := 1; ; attempt++ {
		out, err = fn(ctx)
		if err == nil || attempt == attempts || !errors.Is(err, domain.ErrNetwork) {
			return out, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
}
