package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker states as reported by snapshots.
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half_open"
)

// Breaker protects one logical target (an operation). It wraps
// sony/gobreaker configured so that a single probe is admitted in
// half-open, consecutive transient failures trip at the threshold, and
// permanent errors never count against it.
type Breaker struct {
	target   string
	recovery time.Duration
	inner    *gobreaker.CircuitBreaker

	mu       sync.RWMutex
	openedAt time.Time
}

// BreakerSnapshot is a consistent view of breaker state.
type BreakerSnapshot struct {
	Target       string    `json:"target"`
	State        string    `json:"state"`
	FailureCount uint32    `json:"failure_count"`
	OpenedAt     time.Time `json:"opened_at,omitempty"`
	RecoveryAt   time.Time `json:"recovery_at,omitempty"`
}

// BreakerConfig derives from the active preset.
type BreakerConfig struct {
	Threshold       uint32
	RecoveryTimeout time.Duration
	// OnStateChange is invoked outside the breaker's internal lock-free
	// path; it must not call back into the breaker.
	OnStateChange func(target, from, to string)
}

// NewBreaker creates a breaker for a target.
func NewBreaker(target string, cfg BreakerConfig) *Breaker {
	b := &Breaker{target: target, recovery: cfg.RecoveryTimeout}

	b.inner = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        target,
		MaxRequests: 1, // single half-open probe
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || Classify(err) == ClassPermanent
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.mu.Lock()
			if to == gobreaker.StateOpen {
				b.openedAt = time.Now()
			}
			b.mu.Unlock()
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, stateName(from), stateName(to))
			}
		},
	})

	return b
}

// Execute runs fn through the breaker. While open (or while a half-open
// probe is already in flight) it fails fast with CircuitOpenError without
// invoking fn.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.inner.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return b.openError()
	}
	return err
}

func (b *Breaker) openError() *CircuitOpenError {
	b.mu.RLock()
	openedAt := b.openedAt
	b.mu.RUnlock()
	return &CircuitOpenError{
		Target:     b.target,
		OpenedAt:   openedAt,
		RecoveryAt: openedAt.Add(b.recovery),
	}
}

// Snapshot reports the current state for health and metrics.
func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.RLock()
	openedAt := b.openedAt
	b.mu.RUnlock()

	snap := BreakerSnapshot{
		Target:       b.target,
		State:        stateName(b.inner.State()),
		FailureCount: b.inner.Counts().ConsecutiveFailures,
	}
	if snap.State != StateClosed {
		snap.OpenedAt = openedAt
		snap.RecoveryAt = openedAt.Add(b.recovery)
	}
	return snap
}

func stateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// BreakerManager owns one breaker per target, created lazily.
type BreakerManager struct {
	cfg      BreakerConfig
	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewBreakerManager creates an empty manager.
func NewBreakerManager(cfg BreakerConfig) *BreakerManager {
	return &BreakerManager{cfg: cfg, breakers: make(map[string]*Breaker)}
}

// ForTarget returns the breaker for a target, creating it on first use.
func (m *BreakerManager) ForTarget(target string) *Breaker {
	m.mu.RLock()
	b, ok := m.breakers[target]
	m.mu.RUnlock()
	if ok {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok = m.breakers[target]; ok {
		return b
	}
	b = NewBreaker(target, m.cfg)
	m.breakers[target] = b
	return b
}

// Snapshots returns the state of every breaker created so far.
func (m *BreakerManager) Snapshots() []BreakerSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]BreakerSnapshot, 0, len(m.breakers))
	for _, b := range m.breakers {
		out = append(out, b.Snapshot())
	}
	return out
}

// Healthy reports whether no breaker is currently open.
func (m *BreakerManager) Healthy() bool {
	for _, snap := range m.Snapshots() {
		if snap.State == StateOpen {
			return false
		}
	}
	return true
}
