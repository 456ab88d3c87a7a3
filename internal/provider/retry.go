package provider

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryPolicy describes how an adapter retries one logical request.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first. Values
	// below 1 mean 1.
	MaxAttempts int

	// Backoff is the wait before each retry. Backoff[0] is waited before the
	// second attempt; the last entry is reused when attempts outnumber entries.
	Backoff []time.Duration

	// Retryable decides whether an attempt that ended with status and err is
	// worth repeating. A nil Retryable never retries.
	Retryable func(status int, err error) bool
}

// NoRetry makes exactly one attempt.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// RetryOnStatus returns a predicate that retries only the given HTTP statuses.
func RetryOnStatus(statuses ...int) func(int, error) bool {
	return func(status int, err error) bool {
		if err != nil {
			return false
		}
		for _, s := range statuses {
			if status == s {
				return true
			}
		}
		return false
	}
}

// RetryOnTransient retries network errors, 429 and 5xx responses, but not
// context cancellation.
func RetryOnTransient(status int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Do runs attempt until it returns a non-retryable outcome or attempts run out,
// and returns the last status and error. The hint returned by attempt, when
// positive, replaces the scheduled backoff (it carries Retry-After).
func (p RetryPolicy) Do(ctx context.Context, attempt func(ctx context.Context) (status int, hint time.Duration, err error)) (int, error) {
	maxAttempts := max(p.MaxAttempts, 1)

	var (
		status int
		err    error
	)
	for i := range maxAttempts {
		var hint time.Duration
		status, hint, err = attempt(ctx)
		if p.Retryable == nil || !p.Retryable(status, err) || i == maxAttempts-1 {
			return status, err
		}

		wait := p.delay(i)
		if hint > 0 {
			wait = hint
		}
		if err := sleep(ctx, wait); err != nil {
			return status, err
		}
	}
	return status, err
}

func (p RetryPolicy) delay(retry int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if retry < len(p.Backoff) {
		return p.Backoff[retry]
	}
	return p.Backoff[len(p.Backoff)-1]
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
