// Package iohttp provides shared HTTP plumbing for backbone clients:
// transient-failure detection and capped exponential backoff with jitter.
package iohttp

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"
)

// StatusError reports a non-2xx response from a backbone API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry: rate limits, server errors, timeouts and
// connection failures. Client-side errors are permanent.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return statusErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// url.Error wrapping connection resets/refusals
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Backoff computes the delay before the given retry attempt (1-based):
// exponential growth from base, capped at max, with half-range jitter so
// concurrent workers do not hammer the API in lockstep.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if max <= 0 {
		max = 30 * time.Second
	}

	d := base
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}

	half := d / 2
	return half + rand.N(half+1)
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// RetryPolicy drives retries of transient failures with capped
// exponential backoff.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the initial backoff delay.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// Sleeper performs backoff waits. Defaults to SleepWithContext;
	// tests inject a recorder.
	Sleeper func(ctx context.Context, d time.Duration) error
}

// Do runs fn until it succeeds, fails permanently, or the attempt budget
// is exhausted. The returned error is the last failure.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = SleepWithContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetriable(err) || attempt == attempts {
			break
		}
		delay := Backoff(attempt, p.BaseDelay, p.MaxDelay)
		if err := sleeper(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}
