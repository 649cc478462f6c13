package models

import (
	"fmt"
	"time"
)

// DailyBar is one day of underlying OHLCV history.
type DailyBar struct {
	Date   time.Time `json:"date" csv:"date"`
	Open   float64   `json:"open" csv:"open"`
	High   float64   `json:"high" csv:"high"`
	Low    float64   `json:"low" csv:"low"`
	Close  float64   `json:"close" csv:"close"`
	Volume int       `json:"volume" csv:"volume"`
}

// ChainSnapshot bundles everything the engine needs for one symbol on one
// analysis date. All fields are treated as immutable once handed in.
type ChainSnapshot struct {
	Symbol string        `json:"symbol"`
	AsOf   time.Time     `json:"as_of"`
	Spot   float64       `json:"spot"`
	Quotes []OptionQuote `json:"quotes"`
	// History is the daily close series for the underlying, oldest first.
	// At least a year of samples is expected; volatility analysis refuses
	// to run on fewer than 20.
	History []DailyBar `json:"history"`
	// IVHistory is the rolling daily at-the-money implied volatility series
	// used for percentile ranking, oldest first.
	IVHistory []float64 `json:"iv_history"`
}

// Validate checks the snapshot boundary invariants. Individual quote
// problems are left to per-candidate handling so one bad strike does not
// sink the symbol.
func (c ChainSnapshot) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("snapshot: symbol is empty")
	}
	if c.Spot <= 0 {
		return fmt.Errorf("snapshot %s: spot %.2f must be positive", c.Symbol, c.Spot)
	}
	if len(c.Quotes) == 0 {
		return fmt.Errorf("snapshot %s: no quotes", c.Symbol)
	}
	return nil
}

// Closes extracts the close series from the daily history.
func (c ChainSnapshot) Closes() []float64 {
	closes := make([]float64, len(c.History))
	for i, bar := range c.History {
		closes[i] = bar.Close
	}
	return closes
}
