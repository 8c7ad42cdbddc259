package iohttp_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gnames/gnoccur/internal/iohttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "rate limit",
			err:  &iohttp.StatusError{StatusCode: http.StatusTooManyRequests},
			want: true,
		},
		{
			name: "server error",
			err:  &iohttp.StatusError{StatusCode: http.StatusBadGateway},
			want: true,
		},
		{
			name: "client error is permanent",
			err:  &iohttp.StatusError{StatusCode: http.StatusBadRequest},
			want: false,
		},
		{
			name: "not found is permanent",
			err:  &iohttp.StatusError{StatusCode: http.StatusNotFound},
			want: false,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: true,
		},
		{
			name: "generic error is permanent",
			err:  errors.New("malformed request"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, iohttp.IsRetriable(tt.err))
		})
	}
}

func TestBackoffCapped(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	for attempt := 1; attempt <= 10; attempt++ {
		d := iohttp.Backoff(attempt, base, max)
		assert.Greater(t, d, time.Duration(0), "attempt %d", attempt)
		assert.LessOrEqual(t, d, max, "attempt %d", attempt)
	}
}

func TestRetrySucceedsAfterThrottle(t *testing.T) {
	var calls, waits int
	policy := iohttp.RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
		Sleeper: func(ctx context.Context, d time.Duration) error {
			waits++
			return nil
		},
	}

	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &iohttp.StatusError{StatusCode: http.StatusTooManyRequests}
		}
		return nil
	})

	require.NoError(t, err)
	// success on attempt 3: exactly two backoff waits, no extra call
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, waits)
}

func TestRetryExhausted(t *testing.T) {
	var calls int
	policy := iohttp.RetryPolicy{
		MaxAttempts: 3,
		Sleeper: func(ctx context.Context, d time.Duration) error {
			return nil
		},
	}

	err := policy.Do(context.Background(), func() error {
		calls++
		return &iohttp.StatusError{StatusCode: http.StatusServiceUnavailable}
	})

	var statusErr *iohttp.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 3, calls)
}

func TestRetryPermanentErrorStops(t *testing.T) {
	var calls int
	policy := iohttp.RetryPolicy{MaxAttempts: 5}

	err := policy.Do(context.Background(), func() error {
		calls++
		return &iohttp.StatusError{StatusCode: http.StatusBadRequest}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := iohttp.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Minute,
		MaxDelay:    time.Minute,
	}

	err := policy.Do(ctx, func() error {
		return &iohttp.StatusError{StatusCode: http.StatusTooManyRequests}
	})

	assert.ErrorIs(t, err, context.Canceled)
}
