package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want failureClass
	}{
		{"nil", nil, classPermanent},
		{"quota", errors.New("googleapi: Error 429: Quota exceeded for requests"), classRateLimit},
		{"rate limit phrase", errors.New("Rate limit reached for model"), classRateLimit},
		{"resource exhausted", errors.New("rpc error: code = RESOURCE_EXHAUSTED"), classRateLimit},
		{"server error", errors.New("backend returned status 503"), classTransient},
		{"timeout", errors.New("context deadline exceeded (Client.Timeout exceeded)"), classTransient},
		{"connection reset", errors.New("read tcp: connection reset by peer"), classTransient},
		{"safety block", errors.New("content blocked by safety filters"), classPermanent},
		{"bad request", errors.New("invalid argument: unsupported mime type"), classPermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), testLogger(), fastPolicy(), "gemini", "generate",
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, calls, "expected two failures then success")
}

func TestRetryRateLimitExhaustionSurfacesErrRateLimited(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), testLogger(), fastPolicy(), "gemini", "generate",
		func(ctx context.Context) error {
			calls++
			return errors.New("quota exceeded for model")
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrTemporary)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "gemini")
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestRetryTransientExhaustionSurfacesErrTemporary(t *testing.T) {
	err := Retry(context.Background(), testLogger(), fastPolicy(), "mistral", "ocr",
		func(ctx context.Context) error {
			return errors.New("upstream returned 502")
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemporary)
}

func TestRetryPermanentErrorFailsImmediately(t *testing.T) {
	calls := 0
	permanent := errors.New("invalid argument")
	err := Retry(context.Background(), testLogger(), fastPolicy(), "gemini", "generate",
		func(ctx context.Context) error {
			calls++
			return permanent
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}

	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, testLogger(), policy, "gemini", "generate",
			func(ctx context.Context) error {
				return errors.New("connection reset")
			})
	}()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTemporary)
	case <-time.After(5 * time.Second):
		t.Fatal("Retry did not return after context cancellation")
	}
}

func TestRetryDefaultsInvalidPolicy(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), testLogger(), RetryPolicy{MaxAttempts: 0, BaseDelay: -1}, "gemini", "generate",
		func(ctx context.Context) error {
			calls++
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
