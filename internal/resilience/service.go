package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/meshworks/textgate/internal/observability"
)

// DefaultAttemptTimeout bounds a single upstream attempt. It is separate
// from any deadline the caller carries; whichever expires first wins.
const DefaultAttemptTimeout = 30 * time.Second

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Preset         Preset
	AttemptTimeout time.Duration
	Logger         observability.Logger
	Recorder       *observability.Recorder
}

// Service is the resilience engine: it runs upstream calls through a
// per-operation circuit breaker and a strategy-driven retry loop, and
// records retry and breaker transitions as metrics.
type Service struct {
	preset         Preset
	attemptTimeout time.Duration
	breakers       *BreakerManager
	logger         observability.Logger
	recorder       *observability.Recorder

	// sleep is swapped in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService builds the engine around a preset.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = observability.NewNoopLogger()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = observability.NewRecorder(0)
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}

	s := &Service{
		preset:         cfg.Preset.Clone(),
		attemptTimeout: cfg.AttemptTimeout,
		logger:         cfg.Logger,
		recorder:       cfg.Recorder,
		sleep:          sleepContext,
	}

	s.breakers = NewBreakerManager(BreakerConfig{
		Threshold:       uint32(cfg.Preset.CircuitBreakerThreshold),
		RecoveryTimeout: time.Duration(cfg.Preset.RecoveryTimeoutSeconds) * time.Second,
		OnStateChange:   s.onBreakerChange,
	})
	return s
}

// Preset returns a copy of the active preset.
func (s *Service) Preset() Preset { return s.preset.Clone() }

// BreakerSnapshots reports the state of every breaker created so far.
func (s *Service) BreakerSnapshots() []BreakerSnapshot { return s.breakers.Snapshots() }

// Healthy reports whether no breaker is currently open.
func (s *Service) Healthy() bool { return s.breakers.Healthy() }

// Execute runs fn under the operation's resolved strategy. Each attempt
// gets its own timeout and passes through the operation's breaker.
// Transient and rate-limit failures are retried with backoff; permanent
// failures and open circuits return immediately. When the context is
// cancelled between attempts, its error is returned unwrapped.
func (s *Service) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	strategy := s.preset.StrategyFor(operation)
	params, err := strategy.Params()
	if err != nil {
		return err
	}

	breaker := s.breakers.ForTarget(operation)
	schedule := newBackoffSchedule(params)

	var lastErr error
	for attempt := 1; attempt <= params.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = breaker.Execute(func() error {
			return s.runAttempt(ctx, fn)
		})
		if lastErr == nil {
			return nil
		}

		var open *CircuitOpenError
		if errors.As(lastErr, &open) {
			return lastErr
		}
		if Classify(lastErr) == ClassPermanent {
			return lastErr
		}
		if attempt == params.MaxAttempts {
			break
		}

		delay := schedule.next()
		var rl *RateLimitError
		if errors.As(lastErr, &rl) && rl.RetryAfter > delay {
			delay = rl.RetryAfter
		}

		s.recorder.Append(observability.MetricRecord{
			Type:      observability.MetricRetry,
			Operation: operation,
			Preset:    s.preset.Name,
			Error:     lastErr.Error(),
		})
		s.logger.Warn("retrying upstream call", map[string]interface{}{
			"operation": operation,
			"strategy":  string(strategy),
			"attempt":   attempt,
			"delay_ms":  delay.Milliseconds(),
			"error":     lastErr.Error(),
		})

		if err := s.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return &RetryExhaustedError{Cause: lastErr, Attempts: params.MaxAttempts}
}

// runAttempt applies the per-attempt timeout. A deadline that fires here
// (and not on the parent) surfaces as a transient failure so the retry
// loop treats a slow upstream like an unavailable one.
func (s *Service) runAttempt(parent context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, s.attemptTimeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return &TransientError{Err: err}
	}
	return err
}

func (s *Service) onBreakerChange(target, from, to string) {
	metricType := observability.MetricCircuitClose
	if to == StateOpen {
		metricType = observability.MetricCircuitOpen
	}
	s.recorder.Append(observability.MetricRecord{
		Type:      metricType,
		Operation: target,
		Preset:    s.preset.Name,
	})
	s.logger.Warn("circuit breaker state change", map[string]interface{}{
		"target": target,
		"from":   from,
		"to":     to,
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
