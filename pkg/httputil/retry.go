package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Default retry policy for the package index client.
const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err (or anything it wraps) was marked with
// [Retryable].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// Classify turns a response status into an error. 2xx is nil; 429 and 5xx
// are retryable; every other status is a plain [StatusError].
func Classify(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests, code >= 500:
		return Retryable(&StatusError{Code: code})
	default:
		return &StatusError{Code: code}
	}
}

// Retry executes fn up to attempts times. Only errors marked with
// [Retryable] are retried; the delay doubles after each failure. The last
// error is returned when attempts run out, ctx.Err() when cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
				delay *= 2
			}
		}
	}
	return lastErr
}
