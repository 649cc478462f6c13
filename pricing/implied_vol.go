package pricing

import (
	"fmt"
	"math"
)

const (
	ivMaxIterations = 100
	ivEpsilon       = 1e-8
	ivInitialGuess  = 0.5
	ivFloor         = 1e-4
)

// ImpliedVolatility solves for the volatility that reproduces targetPrice
// under Black-Scholes, by Newton-Raphson on vega. Used when a quote arrives
// without a usable IV field.
func ImpliedVolatility(in Input, targetPrice float64) (float64, error) {
	if targetPrice <= 0 {
		return 0, fmt.Errorf("%w: target price %.4f", ErrInvalidInput, targetPrice)
	}
	in.Sigma = ivInitialGuess
	for i := 0; i < ivMaxIterations; i++ {
		price, err := Price(in)
		if err != nil {
			return 0, err
		}
		diff := price - targetPrice
		if math.Abs(diff) < ivEpsilon {
			return in.Sigma, nil
		}
		g, err := Greeks(in)
		if err != nil {
			return 0, err
		}
		vega := g.Vega * 100 // raw dPrice/dSigma
		if vega < ivEpsilon {
			break
		}
		in.Sigma -= diff / vega
		if in.Sigma <= 0 {
			in.Sigma = ivFloor
		}
	}
	return 0, fmt.Errorf("%w: implied volatility did not converge", ErrInvalidInput)
}
