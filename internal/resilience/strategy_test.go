package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyParams(t *testing.T) {
	tests := []struct {
		strategy Strategy
		attempts int
		expMin   time.Duration
		expMax   time.Duration
		mult     float64
		jitter   time.Duration
	}{
		{StrategyAggressive, 2, 500 * time.Millisecond, 4 * time.Second, 1.5, 300 * time.Millisecond},
		{StrategyBalanced, 3, time.Second, 10 * time.Second, 2.0, time.Second},
		{StrategyConservative, 5, 2 * time.Second, 30 * time.Second, 2.0, 2 * time.Second},
		{StrategyCritical, 7, 2 * time.Second, 60 * time.Second, 2.0, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			params, err := tt.strategy.Params()
			require.NoError(t, err)
			assert.Equal(t, tt.attempts, params.MaxAttempts)
			assert.Equal(t, tt.expMin, params.ExpMin)
			assert.Equal(t, tt.expMax, params.ExpMax)
			assert.Equal(t, tt.mult, params.Multiplier)
			assert.Equal(t, tt.jitter, params.Jitter)
		})
	}
}

func TestStrategyUnknown(t *testing.T) {
	_, err := Strategy("reckless").Params()
	assert.Error(t, err)
	assert.False(t, Strategy("reckless").Valid())
}

func TestStrategiesAllValid(t *testing.T) {
	for _, s := range Strategies {
		assert.True(t, s.Valid(), "strategy %s", s)
	}
}
