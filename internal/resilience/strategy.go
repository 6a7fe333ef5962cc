// Package resilience wraps upstream calls with retry, circuit breaker and
// timeout policies selected per operation from environment-driven presets.
package resilience

import (
	"fmt"
	"time"
)

// Strategy names the retry/backoff shape applied to an operation.
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyBalanced     Strategy = "balanced"
	StrategyConservative Strategy = "conservative"
	StrategyCritical     Strategy = "critical"
)

// Strategies lists the closed set of strategies.
var Strategies = []Strategy{StrategyAggressive, StrategyBalanced, StrategyConservative, StrategyCritical}

// Valid reports whether the strategy is known.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyAggressive, StrategyBalanced, StrategyConservative, StrategyCritical:
		return true
	}
	return false
}

// StrategyParams are the retry parameters a strategy derives. They are never
// stored per call.
type StrategyParams struct {
	MaxAttempts int           `json:"max_attempts"`
	ExpMin      time.Duration `json:"exp_min"`
	ExpMax      time.Duration `json:"exp_max"`
	Multiplier  float64       `json:"exp_multiplier"`
	Jitter      time.Duration `json:"jitter"`
}

var strategyTable = map[Strategy]StrategyParams{
	StrategyAggressive: {
		MaxAttempts: 2,
		ExpMin:      500 * time.Millisecond,
		ExpMax:      4 * time.Second,
		Multiplier:  1.5,
		Jitter:      300 * time.Millisecond,
	},
	StrategyBalanced: {
		MaxAttempts: 3,
		ExpMin:      1 * time.Second,
		ExpMax:      10 * time.Second,
		Multiplier:  2.0,
		Jitter:      1 * time.Second,
	},
	StrategyConservative: {
		MaxAttempts: 5,
		ExpMin:      2 * time.Second,
		ExpMax:      30 * time.Second,
		Multiplier:  2.0,
		Jitter:      2 * time.Second,
	},
	StrategyCritical: {
		MaxAttempts: 7,
		ExpMin:      2 * time.Second,
		ExpMax:      60 * time.Second,
		Multiplier:  2.0,
		Jitter:      2 * time.Second,
	},
}

// Params returns the parameter set for the strategy.
func (s Strategy) Params() (StrategyParams, error) {
	params, ok := strategyTable[s]
	if !ok {
		return StrategyParams{}, fmt.Errorf("unknown strategy %q", s)
	}
	return params, nil
}
