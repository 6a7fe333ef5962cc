package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClass
	}{
		{"transient", &TransientError{Err: errors.New("boom")}, ClassTransient},
		{"permanent", &PermanentError{Err: errors.New("bad request")}, ClassPermanent},
		{"rate limit", &RateLimitError{Err: errors.New("slow down")}, ClassRateLimit},
		{"wrapped permanent", fmt.Errorf("calling model: %w", &PermanentError{Err: errors.New("401")}), ClassPermanent},
		{"deadline exceeded", context.DeadlineExceeded, ClassTransient},
		{"unknown", errors.New("mystery"), ClassTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	cause := errors.New("upstream said no")

	err := ClassifyHTTPStatus(http.StatusTooManyRequests, 5*time.Second, cause)
	var rl *RateLimitError
	assert.True(t, errors.As(err, &rl))
	assert.Equal(t, 5*time.Second, rl.RetryAfter)

	var te *TransientError
	assert.True(t, errors.As(ClassifyHTTPStatus(http.StatusBadGateway, 0, cause), &te))
	assert.True(t, errors.As(ClassifyHTTPStatus(http.StatusServiceUnavailable, 0, cause), &te))

	var pe *PermanentError
	assert.True(t, errors.As(ClassifyHTTPStatus(http.StatusBadRequest, 0, cause), &pe))
	assert.True(t, errors.As(ClassifyHTTPStatus(http.StatusUnauthorized, 0, cause), &pe))
}

func TestRetryExhaustedUnwrap(t *testing.T) {
	cause := &TransientError{Err: errors.New("timeout")}
	err := &RetryExhaustedError{Cause: cause, Attempts: 3}

	assert.Contains(t, err.Error(), "3 attempts")
	var te *TransientError
	assert.True(t, errors.As(err, &te))
}

func TestCircuitOpenRetryAfter(t *testing.T) {
	future := &CircuitOpenError{Target: "qa", RecoveryAt: time.Now().Add(30 * time.Second)}
	assert.InDelta(t, 30*time.Second, future.RetryAfter(), float64(time.Second))

	past := &CircuitOpenError{Target: "qa", RecoveryAt: time.Now().Add(-time.Minute)}
	assert.Equal(t, time.Duration(0), past.RetryAfter())
}
