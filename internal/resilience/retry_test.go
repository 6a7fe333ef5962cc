package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffScheduleWithinBounds(t *testing.T) {
	params, err := StrategyBalanced.Params()
	require.NoError(t, err)

	schedule := newBackoffSchedule(params)
	// Expected exponential curve: 1s, 2s, 4s, 8s, 10s, 10s, ... with a
	// jitter band of ±1s around each point.
	expected := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 10 * time.Second, 10 * time.Second,
	}

	for i, base := range expected {
		delay := schedule.next()
		assert.GreaterOrEqual(t, delay, base-params.Jitter, "attempt %d", i+1)
		assert.LessOrEqual(t, delay, base+params.Jitter, "attempt %d", i+1)
	}
}

func TestBackoffScheduleNeverNegative(t *testing.T) {
	schedule := newBackoffSchedule(StrategyParams{
		MaxAttempts: 5,
		ExpMin:      time.Millisecond,
		ExpMax:      2 * time.Millisecond,
		Multiplier:  2.0,
		Jitter:      time.Second, // jitter dwarfs the curve
	})

	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, schedule.next(), time.Duration(0))
	}
}

func TestBackoffScheduleNoJitterIsDeterministic(t *testing.T) {
	params := StrategyParams{
		MaxAttempts: 3,
		ExpMin:      100 * time.Millisecond,
		ExpMax:      time.Second,
		Multiplier:  2.0,
	}

	a := newBackoffSchedule(params)
	b := newBackoffSchedule(params)
	for i := 0; i < 6; i++ {
		assert.Equal(t, a.next(), b.next())
	}
}
