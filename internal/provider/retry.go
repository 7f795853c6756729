package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"
)

// failureClass buckets an upstream error for retry purposes.
type failureClass int

const (
	// classPermanent errors fail immediately with no retry.
	classPermanent failureClass = iota

	// classRateLimit errors retry with exponential backoff plus jitter and
	// surface ErrRateLimited on exhaustion.
	classRateLimit

	// classTransient errors retry with a shorter fixed-plus-jitter backoff
	// and surface ErrTemporary on exhaustion.
	classTransient
)

// Substring groups used to classify upstream failures. Vendor SDKs do not
// expose typed sentinel errors for quota or transport failures, so matching
// is done case-insensitively against err.Error(). The HTTP status codes show
// up in the message text for both Gemini and Mistral errors.
var (
	rateLimitPatterns = []string{"quota exceeded", "rate limit", "resource_exhausted", "429"}
	transientPatterns = []string{"timeout", "connection", "network", "unavailable", "500", "502", "503", "504"}
)

// classify buckets err by inspecting its message.
func classify(err error) failureClass {
	if err == nil {
		return classPermanent
	}
	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return classRateLimit
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return classTransient
		}
	}
	return classPermanent
}

// RetryPolicy controls how generation calls are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the starting backoff interval.
	BaseDelay time.Duration
}

// DefaultRetryPolicy mirrors the upstream API guidance: three attempts with
// a one second base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Retry runs fn up to p.MaxAttempts times, classifying each failure.
// Rate-limit failures back off exponentially with jitter; transient failures
// back off by a short fixed interval with jitter; anything else returns
// immediately. On exhaustion the last error is wrapped with the matching
// sentinel (ErrRateLimited or ErrTemporary) plus the provider name, operation
// and attempt count so callers can diagnose without vendor stack detail.
func Retry(
	ctx context.Context,
	logger *slog.Logger,
	p RetryPolicy,
	providerName, op string,
	fn func(context.Context) error,
) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.InfoContext(ctx, "call succeeded after retry",
					"provider", providerName,
					"op", op,
					"attempt", attempt)
			}
			return nil
		}
		lastErr = err

		class := classify(err)
		if class == classPermanent {
			return fmt.Errorf("%s %s: %w", providerName, op, err)
		}

		if attempt == p.MaxAttempts {
			sentinel := ErrTemporary
			if class == classRateLimit {
				sentinel = ErrRateLimited
			}
			return fmt.Errorf("%w: %s %s failed after %d attempts: %v",
				sentinel, providerName, op, attempt, err)
		}

		var delay time.Duration
		switch class {
		case classRateLimit:
			// Exponential backoff with up to two seconds of jitter.
			backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
			delay = time.Duration(backoff) + time.Duration(rand.Float64()*2*float64(time.Second))
		case classTransient:
			delay = p.BaseDelay + time.Duration(rand.Float64()*float64(time.Second))
		}

		logger.WarnContext(ctx, "retrying after provider error",
			"provider", providerName,
			"op", op,
			"attempt", attempt,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s %s canceled during retry: %v", ErrTemporary, providerName, op, ctx.Err())
		case <-time.After(delay):
		}
	}
	// Unreachable; the loop always returns on the final attempt.
	return fmt.Errorf("%s %s: %w", providerName, op, lastErr)
}
