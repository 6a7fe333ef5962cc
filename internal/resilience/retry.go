package resilience

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// backoffSchedule produces per-attempt delays for a strategy: the
// exponential curve min(exp_max, exp_min * multiplier^(attempt-1)) plus a
// uniform jitter within ±Jitter. The exponential part rides on
// backoff.ExponentialBackOff with randomization disabled so the jitter
// bound stays exact.
type backoffSchedule struct {
	params StrategyParams
	exp    *backoff.ExponentialBackOff

	mu  sync.Mutex
	rng *rand.Rand
}

func newBackoffSchedule(params StrategyParams) *backoffSchedule {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = params.ExpMin
	exp.MaxInterval = params.ExpMax
	exp.Multiplier = params.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()

	return &backoffSchedule{
		params: params,
		exp:    exp,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// next returns the delay before the following attempt. Never negative.
func (b *backoffSchedule) next() time.Duration {
	delay := b.exp.NextBackOff()
	if delay == backoff.Stop {
		delay = b.params.ExpMax
	}

	if b.params.Jitter > 0 {
		b.mu.Lock()
		jitter := time.Duration(b.rng.Int63n(int64(2*b.params.Jitter))) - b.params.Jitter
		b.mu.Unlock()
		delay += jitter
	}

	if delay < 0 {
		return 0
	}
	return delay
}
