// Package retry provides the bounded retry-with-backoff loop shared by
// the connection pool and the command executor.
package retry

import (
	"context"
	"errors"
	"time"
)

// Strategy describes a bounded retry: up to Attempts tries, sleeping
// Delay*n before try n+1 (linear backoff).
type Strategy struct {
	Attempts int
	Delay    time.Duration
}

// permanentError marks an error that retrying cannot fix.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Do surfaces it immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, returns a permanent error, the attempt
// budget is spent, or ctx is done. The last error is returned unwrapped
// from its permanent marker.
func (s Strategy) Do(ctx context.Context, fn func() error) error {
	attempts := s.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		select {
		case <-time.After(s.Delay * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
