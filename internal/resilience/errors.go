package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// FailureClass is the engine's view of an upstream error.
type FailureClass int

const (
	// ClassPermanent failures are returned immediately, are never retried
	// and never count against the circuit breaker.
	ClassPermanent FailureClass = iota
	// ClassTransient failures consume an attempt and back off.
	ClassTransient
	// ClassRateLimit failures are transient but may carry a server-provided
	// retry-after that overrides the backoff schedule.
	ClassRateLimit
)

// TransientError marks an upstream failure worth retrying: network errors,
// timeouts, 5xx responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient upstream error: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an upstream failure retries cannot fix: validation,
// authentication, 4xx other than rate limiting.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent upstream error: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// RateLimitError marks a 429 with an optional server-provided retry delay.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return "rate limited: " + e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// RetryExhaustedError wraps the final transient error once every attempt is
// spent.
type RetryExhaustedError struct {
	Cause    error
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Cause }

// CircuitOpenError is returned without invoking upstream while a breaker is
// open.
type CircuitOpenError struct {
	Target     string
	OpenedAt   time.Time
	RecoveryAt time.Time
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s until %s", e.Target, e.RecoveryAt.Format(time.RFC3339))
}

// RetryAfter reports how long callers should wait before trying again.
func (e *CircuitOpenError) RetryAfter() time.Duration {
	remaining := time.Until(e.RecoveryAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Classify decides how the engine treats an error. Unwrapped context
// deadline errors count as transient: the per-attempt timeout produced
// them. Unknown errors default to transient so flaky upstreams get the
// benefit of the doubt.
func Classify(err error) FailureClass {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return ClassRateLimit
	}
	var pe *PermanentError
	if errors.As(err, &pe) {
		return ClassPermanent
	}
	var te *TransientError
	if errors.As(err, &te) {
		return ClassTransient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}
	return ClassTransient
}

// ClassifyHTTPStatus converts an upstream HTTP status into the engine's
// error taxonomy. retryAfter applies to 429 responses only.
func ClassifyHTTPStatus(status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Err: err, RetryAfter: retryAfter}
	case status >= 500:
		return &TransientError{Err: err}
	case status >= 400:
		return &PermanentError{Err: err}
	default:
		return &TransientError{Err: err}
	}
}
