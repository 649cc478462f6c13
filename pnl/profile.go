// Package pnl computes the profit/loss profile of a calendar spread: exact
// max loss, analytic max profit, numeric breakeven points and Monte Carlo
// probability-of-profit / expected value.
package pnl

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/danielbowman/calspread/models"
	"github.com/danielbowman/calspread/pricing"
)

const daysPerYear = 365.0

// Params carries everything needed to profile one candidate.
type Params struct {
	Spread   models.CalendarSpread
	FrontDTE int
	BackDTE  int
	// BackIV values the back leg through front expiry.
	BackIV float64
	// HistoricalVol drives the terminal-price distribution.
	HistoricalVol float64
	Rate          float64
	Paths         int
	Seed          *uint64
}

// MaxLoss is the net debit paid at entry: back ask minus front bid at
// conservative execution prices. Decimal arithmetic keeps the figure exact
// to currency precision; it is the cap on loss and is never recomputed.
func MaxLoss(spread models.CalendarSpread) float64 {
	debit := decimal.NewFromFloat(spread.Back.Ask).Sub(decimal.NewFromFloat(spread.Front.Bid))
	return debit.InexactFloat64()
}

// Compute builds the full P/L profile. The only hard failure is a cancelled
// context during simulation; numeric degradations (unbracketed breakevens)
// are flagged on the profile instead.
func Compute(ctx context.Context, p Params) (models.PLProfile, error) {
	netDebit := MaxLoss(p.Spread)
	remaining := float64(p.BackDTE-p.FrontDTE) / daysPerYear

	valueAt := func(spot float64) float64 {
		return spreadValueAtFrontExpiry(spot, p.Spread, remaining, p.BackIV, p.Rate)
	}

	profile := models.PLProfile{
		MaxLoss:   netDebit,
		MaxProfit: valueAt(p.Spread.Strike) - netDebit,
	}

	lower, upper, lowConfidence := breakevens(valueAt, p.Spread.Strike, netDebit)
	profile.LowerBreakeven = lower
	profile.UpperBreakeven = upper
	profile.LowConfidence = lowConfidence

	tte := float64(p.FrontDTE) / daysPerYear
	pop, ev, err := simulate(ctx, p.Spread.Spot, p.HistoricalVol, tte, p.Paths, p.Seed, func(terminal float64) float64 {
		return valueAt(terminal) - netDebit
	})
	if err != nil {
		// No valid partial POP semantics: discard everything on abort.
		return models.PLProfile{}, err
	}
	profile.ProbabilityOfProfit = pop
	profile.ExpectedValue = ev
	return profile, nil
}

// spreadValueAtFrontExpiry values the position at front-month expiry for a
// given spot: the back leg still has `remaining` years of life and is priced
// with Black-Scholes, the front leg is worth intrinsic only.
func spreadValueAtFrontExpiry(spot float64, spread models.CalendarSpread, remaining, backIV, rate float64) float64 {
	backValue, err := pricing.Price(pricing.Input{
		Spot:   spot,
		Strike: spread.Strike,
		TTE:    remaining,
		Sigma:  backIV,
		Rate:   rate,
		Type:   spread.OptionType,
	})
	if err != nil && errors.Is(err, pricing.ErrInvalidInput) {
		backValue = pricing.Intrinsic(spot, spread.Strike, spread.OptionType)
	}
	return backValue - pricing.Intrinsic(spot, spread.Strike, spread.OptionType)
}
