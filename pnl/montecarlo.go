package pnl

import (
	"context"
	"math"
	"sync"

	"golang.org/x/exp/rand"
)

// cancelCheckInterval is how many paths run between context checks. The
// simulation aborts between paths, never mid-path, and aborted runs return
// nothing: there is no valid partial POP.
const cancelCheckInterval = 256

var rngPool = sync.Pool{
	New: func() interface{} {
		return rand.New(rand.NewSource(rand.Uint64()))
	},
}

// simulate draws `paths` terminal spot prices at front expiry from the
// zero-drift lognormal model
//
//	S_T = S0 * exp((-sigma^2/2)*T + sigma*sqrt(T)*Z)
//
// and evaluates pl at each. Returns the profitable-path fraction and the
// mean P/L. A non-nil seed pins the draw sequence for reproducible runs.
func simulate(ctx context.Context, spot, sigma, tte float64, paths int, seed *uint64, pl func(terminal float64) float64) (pop, ev float64, err error) {
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(*seed))
	} else {
		rng = rngPool.Get().(*rand.Rand)
		defer rngPool.Put(rng)
	}

	drift := -0.5 * sigma * sigma * tte
	diffusion := sigma * math.Sqrt(tte)

	profitable := 0
	total := 0.0
	for i := 0; i < paths; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return 0, 0, ctx.Err()
			default:
			}
		}
		terminal := spot * math.Exp(drift+diffusion*rng.NormFloat64())
		outcome := pl(terminal)
		if outcome > 0 {
			profitable++
		}
		total += outcome
	}
	return float64(profitable) / float64(paths), total / float64(paths), nil
}
