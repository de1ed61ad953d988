// ABOUTME: Retry logic with exponential backoff and jitter for provider API calls.
// ABOUTME: Respects per-error retryability and Retry-After hints from rate limit responses.
package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures retry behavior for provider calls. This is the
// transport-level policy for transient API failures; the flow engine applies
// its own per-node attempt accounting on top of it.
type RetryPolicy struct {
	// MaxRetries is the number of retry attempts, not counting the initial call.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration

	// BackoffMultiplier controls exponential growth of the delay.
	BackoffMultiplier float64

	// Jitter randomizes each delay between 0 and the computed backoff.
	Jitter bool

	// OnRetry, if set, is called before each retry sleep with the error that
	// triggered it, the 0-indexed attempt, and the chosen delay.
	OnRetry func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns 2 retries, 1s base, 60s cap, 2x backoff, jitter on.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        2,
		BaseDelay:         time.Second,
		MaxDelay:          60 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// CalculateDelay computes the backoff delay for a 0-indexed attempt, capped
// at MaxDelay, with full jitter when enabled.
func (p RetryPolicy) CalculateDelay(attempt int) time.Duration {
	delayFloat := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt))
	if delayFloat > float64(p.MaxDelay) {
		delayFloat = float64(p.MaxDelay)
	}
	delay := time.Duration(delayFloat)
	if p.Jitter && delay > 0 {
		delay = time.Duration(rand.Int64N(int64(delay) + 1))
	}
	return delay
}

// ShouldRetry reports whether another attempt is warranted for err.
func (p RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= p.MaxRetries {
		return false
	}
	type retryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(retryable); ok {
		return r.IsRetryable()
	}
	return false
}

// Retry executes fn under the policy, honoring Retry-After hints as a delay
// floor and stopping early when the context is cancelled.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !policy.ShouldRetry(lastErr, attempt) {
			return lastErr
		}

		delay := policy.CalculateDelay(attempt)
		if pe, ok := asProviderError(lastErr); ok && pe.RetryAfter != nil {
			hinted := time.Duration(*pe.RetryAfter * float64(time.Second))
			if hinted > delay {
				delay = hinted
			}
		}

		if policy.OnRetry != nil {
			policy.OnRetry(lastErr, attempt, delay)
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}
