package models

import (
	"fmt"
	"math"
)

// StrikeMode selects how the constructor picks the spread strike.
type StrikeMode string

// ATM is currently the only supported mode: the common strike nearest spot,
// ties broken toward the lower strike.
const StrikeATM StrikeMode = "ATM"

// Weights are the composite-score weights for the four sub-scores. They
// must sum to 1.0.
type Weights struct {
	Liquidity      float64 `json:"liquidity" mapstructure:"liquidity"`
	TimeDecay      float64 `json:"time_decay" mapstructure:"time_decay"`
	Volatility     float64 `json:"volatility" mapstructure:"volatility"`
	PriceStability float64 `json:"price_stability" mapstructure:"price_stability"`
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Liquidity + w.TimeDecay + w.Volatility + w.PriceStability
}

// Config is the single value object supplied at engine construction. The
// engine reads no environment variables or files itself.
type Config struct {
	MinFrontDTE int        `json:"min_front_dte" mapstructure:"min_front_dte"`
	MaxFrontDTE int        `json:"max_front_dte" mapstructure:"max_front_dte"`
	MinBackDTE  int        `json:"min_back_dte" mapstructure:"min_back_dte"`
	MaxBackDTE  int        `json:"max_back_dte" mapstructure:"max_back_dte"`
	MinDTEGap   int        `json:"min_dte_gap" mapstructure:"min_dte_gap"`
	StrikeMode  StrikeMode `json:"strike_mode" mapstructure:"strike_mode"`

	RiskFreeRate float64 `json:"risk_free_rate" mapstructure:"risk_free_rate"`

	Weights Weights `json:"weights" mapstructure:"weights"`

	// MonteCarloPaths is the per-candidate simulation budget.
	MonteCarloPaths int `json:"monte_carlo_paths" mapstructure:"monte_carlo_paths"`
	// Seed, when non-nil, makes every simulation reproducible.
	Seed *uint64 `json:"seed,omitempty" mapstructure:"seed"`

	// Workers bounds the candidate worker pool. Zero means one worker per
	// CPU, chosen by the caller.
	Workers int `json:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the documented defaults: 25-45 DTE front, 55-90 DTE
// back, 30-day minimum gap, ATM strikes, 10,000 Monte Carlo paths and the
// 30/30/20/20 composite weighting.
func DefaultConfig() Config {
	return Config{
		MinFrontDTE:  25,
		MaxFrontDTE:  45,
		MinBackDTE:   55,
		MaxBackDTE:   90,
		MinDTEGap:    30,
		StrikeMode:   StrikeATM,
		RiskFreeRate: 0.05,
		Weights: Weights{
			Liquidity:      0.30,
			TimeDecay:      0.30,
			Volatility:     0.20,
			PriceStability: 0.20,
		},
		MonteCarloPaths: 10000,
	}
}

// Validate reports configuration errors. These are the only fatal errors in
// the subsystem; everything downstream degrades per candidate.
func (c Config) Validate() error {
	if c.MinFrontDTE <= 0 || c.MaxFrontDTE < c.MinFrontDTE {
		return fmt.Errorf("config: front DTE window [%d,%d] is invalid", c.MinFrontDTE, c.MaxFrontDTE)
	}
	if c.MinBackDTE <= 0 || c.MaxBackDTE < c.MinBackDTE {
		return fmt.Errorf("config: back DTE window [%d,%d] is invalid", c.MinBackDTE, c.MaxBackDTE)
	}
	if c.MinDTEGap < 0 {
		return fmt.Errorf("config: negative DTE gap %d", c.MinDTEGap)
	}
	if c.StrikeMode != StrikeATM {
		return fmt.Errorf("config: unsupported strike mode %q", c.StrikeMode)
	}
	if c.MonteCarloPaths <= 0 {
		return fmt.Errorf("config: monte carlo paths must be positive, got %d", c.MonteCarloPaths)
	}
	if math.Abs(c.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("config: score weights sum to %.6f, want 1.0", c.Weights.Sum())
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: negative worker count %d", c.Workers)
	}
	return nil
}
