package reliability

import (
	"context"
	"math"
	"time"
)

// RetryPolicy decides whether and when a failed operation is retried.
type RetryPolicy interface {
	// ShouldRetry reports whether attempt (zero-based) should be retried and
	// after what delay.
	ShouldRetry(attempt int, err error) (bool, time.Duration)

	// MaxAttempts returns the attempt limit.
	MaxAttempts() int
}

// FixedDelay retries with a constant delay between attempts.
type FixedDelay struct {
	Delay    time.Duration
	Attempts int
}

// NewFixedDelay creates a fixed delay policy.
func NewFixedDelay(delay time.Duration, attempts int) *FixedDelay {
	return &FixedDelay{Delay: delay, Attempts: attempts}
}

// ShouldRetry implements RetryPolicy.
func (f *FixedDelay) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= f.Attempts || !isRetryable(err) {
		return false, 0
	}
	return true, f.Delay
}

// MaxAttempts implements RetryPolicy.
func (f *FixedDelay) MaxAttempts() int {
	return f.Attempts
}

// ExponentialBackoff retries with exponentially growing delays capped at
// MaxInterval.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Attempts        int
}

// NewExponentialBackoff creates an exponential backoff policy.
func NewExponentialBackoff(initial, max time.Duration, multiplier float64, attempts int) *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialInterval: initial,
		MaxInterval:     max,
		Multiplier:      multiplier,
		Attempts:        attempts,
	}
}

// ShouldRetry implements RetryPolicy.
func (e *ExponentialBackoff) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= e.Attempts || !isRetryable(err) {
		return false, 0
	}

	delay := float64(e.InitialInterval) * math.Pow(e.Multiplier, float64(attempt))
	if delay > float64(e.MaxInterval) {
		delay = float64(e.MaxInterval)
	}
	return true, time.Duration(delay)
}

// MaxAttempts implements RetryPolicy.
func (e *ExponentialBackoff) MaxAttempts() int {
	return e.Attempts
}

// Retry runs fn until it succeeds, the policy gives up, or ctx is cancelled.
// The error of the last attempt is returned when the policy gives up.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		retry, delay := policy.ShouldRetry(attempt, err)
		if !retry {
			return err
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// NonRetryable wraps err so Retry gives up immediately.
func NonRetryable(err error) error {
	return &nonRetryableError{err: err}
}

type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string {
	return e.err.Error()
}

func (e *nonRetryableError) Unwrap() error {
	return e.err
}

func (e *nonRetryableError) Retryable() bool {
	return false
}

// isRetryable treats errors as retryable unless they opt out via a
// Retryable() bool method.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	type retryable interface {
		Retryable() bool
	}
	if r, ok := err.(retryable); ok {
		return r.Retryable()
	}
	return true
}
