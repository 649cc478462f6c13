// Package pricing implements closed-form Black-Scholes valuation and
// first-order sensitivities for a single option.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/danielbowman/calspread/models"
)

// ErrInvalidInput marks malformed numeric pricing inputs (T <= 0, sigma <= 0,
// non-positive spot or strike). Callers treat the option as expired and fall
// back to intrinsic value with zero Greeks rather than re-querying.
var ErrInvalidInput = errors.New("pricing: invalid input")

var stdNormal = distuv.UnitNormal

// Input carries the Black-Scholes parameters for one valuation.
type Input struct {
	Spot   float64 // S, current underlying price
	Strike float64 // K
	TTE    float64 // T, time to expiry in years
	Sigma  float64 // implied volatility, annualized
	Rate   float64 // r, continuously compounded risk-free rate
	Type   models.OptionType
}

func (in Input) validate() error {
	if in.TTE <= 0 {
		return fmt.Errorf("%w: time to expiry %.6f", ErrInvalidInput, in.TTE)
	}
	if in.Sigma <= 0 {
		return fmt.Errorf("%w: volatility %.6f", ErrInvalidInput, in.Sigma)
	}
	if in.Spot <= 0 || in.Strike <= 0 {
		return fmt.Errorf("%w: spot %.4f / strike %.4f", ErrInvalidInput, in.Spot, in.Strike)
	}
	return nil
}

func d1d2(in Input) (float64, float64) {
	sqrtT := math.Sqrt(in.TTE)
	d1 := (math.Log(in.Spot/in.Strike) + (in.Rate+0.5*in.Sigma*in.Sigma)*in.TTE) / (in.Sigma * sqrtT)
	return d1, d1 - in.Sigma*sqrtT
}

// Price returns the Black-Scholes value of the option.
func Price(in Input) (float64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	d1, d2 := d1d2(in)
	discK := in.Strike * math.Exp(-in.Rate*in.TTE)
	if in.Type == models.Call {
		return in.Spot*stdNormal.CDF(d1) - discK*stdNormal.CDF(d2), nil
	}
	return discK*stdNormal.CDF(-d2) - in.Spot*stdNormal.CDF(-d1), nil
}

// Greeks returns delta, gamma, theta (per calendar day), vega (per 1% vol)
// and rho (per 1% rate) from the standard closed forms.
func Greeks(in Input) (models.Greeks, error) {
	if err := in.validate(); err != nil {
		return models.Greeks{}, err
	}
	d1, d2 := d1d2(in)
	sqrtT := math.Sqrt(in.TTE)
	pdf1 := stdNormal.Prob(d1)
	discK := in.Strike * math.Exp(-in.Rate*in.TTE)

	g := models.Greeks{
		Gamma: pdf1 / (in.Spot * in.Sigma * sqrtT),
		Vega:  in.Spot * pdf1 * sqrtT / 100,
	}
	decay := in.Spot * pdf1 * in.Sigma / (2 * sqrtT)
	if in.Type == models.Call {
		g.Delta = stdNormal.CDF(d1)
		g.Theta = -(decay + in.Rate*discK*stdNormal.CDF(d2)) / 365
		g.Rho = discK * in.TTE * stdNormal.CDF(d2) / 100
	} else {
		g.Delta = stdNormal.CDF(d1) - 1
		g.Theta = -(decay - in.Rate*discK*stdNormal.CDF(-d2)) / 365
		g.Rho = -discK * in.TTE * stdNormal.CDF(-d2) / 100
	}
	return g, nil
}

// Intrinsic is the expiry fallback value: what the option is worth with no
// time remaining. Paired with zero Greeks when Price/Greeks reject T <= 0.
func Intrinsic(spot, strike float64, optType models.OptionType) float64 {
	if optType == models.Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}
