package ai

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds how often a model call is repeated.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff is multiplied by the attempt number before each retry.
	Backoff time.Duration
	// RetryIf decides whether an error is worth another attempt.
	RetryIf func(error) bool
	// OnRetry is called before waiting for the next attempt.
	OnRetry func(attempt, maxAttempts int, err error)
}

// IsOverloaded reports whether err signals a transient overload.
func IsOverloaded(err error) bool {
	return errors.Is(err, ErrOverloaded)
}

// Always retries every error.
func Always(error) bool { return true }

// DeliberationPolicy retries only overloads, three attempts, 1s linear backoff.
func DeliberationPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Second, RetryIf: IsOverloaded}
}

// ReportPolicy retries any failure, three attempts, 1s linear backoff.
func ReportPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Second, RetryIf: Always}
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The wait before attempt n+1 is Backoff*n.
func Retry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryIf := policy.RetryIf
	if retryIf == nil {
		retryIf = IsOverloaded
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= maxAttempts || !retryIf(err) {
			return err
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, maxAttempts, err)
		}

		timer := time.NewTimer(policy.Backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
