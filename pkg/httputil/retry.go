package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failed attempt worth repeating. The client wraps
// network failures and 5xx responses in it; 4xx responses are final.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, returns an error that is not a
// [RetryableError], or has run attempts times. The wait starts at delay and
// doubles after each retryable failure. Cancelling ctx during a wait returns
// ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !errors.As(err, new(*RetryableError)) || attempt >= attempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
