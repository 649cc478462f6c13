package models

import (
	"fmt"
	"time"
)

// OptionType distinguishes calls from puts. Values match the strings used
// by most chain providers so snapshots decode without translation.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionQuote is an immutable snapshot of a single listed option, created
// once per fetch cycle by the market-data collaborator.
type OptionQuote struct {
	Symbol            string     `json:"symbol"`
	Strike            float64    `json:"strike"`
	Expiration        time.Time  `json:"expiration"`
	OptionType        OptionType `json:"option_type"`
	Bid               float64    `json:"bid"`
	Ask               float64    `json:"ask"`
	Last              float64    `json:"last"`
	Volume            int        `json:"volume"`
	OpenInterest      int        `json:"open_interest"`
	ImpliedVolatility float64    `json:"implied_volatility"`
}

// Validate rejects quotes that would poison downstream math. It runs at the
// boundary where external chain data enters the engine.
func (q OptionQuote) Validate() error {
	if q.Strike <= 0 {
		return fmt.Errorf("quote %s: strike %.2f must be positive", q.Symbol, q.Strike)
	}
	if q.Bid > q.Ask {
		return fmt.Errorf("quote %s: bid %.2f above ask %.2f", q.Symbol, q.Bid, q.Ask)
	}
	if q.ImpliedVolatility <= 0 {
		return fmt.Errorf("quote %s: implied volatility %.4f must be positive", q.Symbol, q.ImpliedVolatility)
	}
	if q.OptionType != Call && q.OptionType != Put {
		return fmt.Errorf("quote %s: unknown option type %q", q.Symbol, q.OptionType)
	}
	return nil
}

// Mid returns the quote midpoint price.
func (q OptionQuote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// DTE returns whole days from asOf to expiration.
func (q OptionQuote) DTE(asOf time.Time) int {
	return int(q.Expiration.Sub(asOf).Hours() / 24)
}

// Greeks holds the first-order Black-Scholes sensitivities for one option.
// Theta is per calendar day; vega and rho are per 1% move. Recomputed every
// cycle, never cached across price changes.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// SpreadGreeks aggregates per-leg Greeks for a long back / short front
// calendar: back minus front on every dimension.
type SpreadGreeks struct {
	Front Greeks `json:"front"`
	Back  Greeks `json:"back"`
	Net   Greeks `json:"net"`
}

// NetGreeks computes the aggregate exposure of a long-back, short-front
// position.
func NetGreeks(front, back Greeks) SpreadGreeks {
	return SpreadGreeks{
		Front: front,
		Back:  back,
		Net: Greeks{
			Delta: back.Delta - front.Delta,
			Gamma: back.Gamma - front.Gamma,
			Theta: back.Theta - front.Theta,
			Vega:  back.Vega - front.Vega,
			Rho:   back.Rho - front.Rho,
		},
	}
}

// CalendarSpread pairs a short front-month option with a long back-month
// option at the same strike and type. Constructed per analysis cycle and
// discarded after scoring.
type CalendarSpread struct {
	Symbol     string      `json:"symbol"`
	Strike     float64     `json:"strike"`
	OptionType OptionType  `json:"option_type"`
	Front      OptionQuote `json:"front"`
	Back       OptionQuote `json:"back"`
	Spot       float64     `json:"spot"`
}

// Validate enforces the structural invariants of a calendar spread.
func (s CalendarSpread) Validate() error {
	if s.Front.Strike != s.Back.Strike {
		return fmt.Errorf("calendar %s: strikes differ (%.2f vs %.2f)", s.Symbol, s.Front.Strike, s.Back.Strike)
	}
	if !s.Front.Expiration.Before(s.Back.Expiration) {
		return fmt.Errorf("calendar %s: front expiry %s not before back expiry %s",
			s.Symbol, s.Front.Expiration.Format("2006-01-02"), s.Back.Expiration.Format("2006-01-02"))
	}
	if s.Front.OptionType != s.Back.OptionType {
		return fmt.Errorf("calendar %s: mixed option types", s.Symbol)
	}
	if err := s.Front.Validate(); err != nil {
		return err
	}
	return s.Back.Validate()
}

// NetDebit is the conservative entry cost: buy the back at the ask, sell the
// front at the bid.
func (s CalendarSpread) NetDebit() float64 {
	return s.Back.Ask - s.Front.Bid
}

// PLProfile captures the analytic and simulated profit/loss figures for one
// spread. Immutable once computed; owned by the spread it was computed for.
type PLProfile struct {
	MaxProfit      float64 `json:"max_profit"`
	MaxLoss        float64 `json:"max_loss"`
	LowerBreakeven float64 `json:"lower_breakeven"`
	UpperBreakeven float64 `json:"upper_breakeven"`
	// LowConfidence marks profiles where bisection could not bracket two
	// breakeven roots and a search-range bound was substituted.
	LowConfidence bool `json:"low_confidence"`
	// ProbabilityOfProfit is the fraction of Monte Carlo paths ending
	// profitable at front expiry.
	ProbabilityOfProfit float64 `json:"probability_of_profit"`
	// ExpectedValue is the mean simulated P/L. Under the zero-drift model it
	// stays close to the decay edge minus debit; treat it as low-signal.
	ExpectedValue float64 `json:"expected_value"`
}

// VolatilityMetrics is the per-candidate volatility picture computed by the
// volatility analyzer and carried on the opportunity for reporting.
type VolatilityMetrics struct {
	FrontIV      float64 `json:"front_iv"`
	BackIV       float64 `json:"back_iv"`
	Skew         float64 `json:"skew"`
	IVPercentile float64 `json:"iv_percentile"`
	// HistoricalVol is the annualized 20-day close-to-close estimate.
	HistoricalVol float64 `json:"historical_vol"`
	// ReturnStdev is the raw (non-annualized) 20-day daily return stdev
	// used by the quiet-market scoring adjustment.
	ReturnStdev float64 `json:"return_stdev"`
	// Parkinson and GarmanKlass are range-based cross-checks on the
	// close-to-close estimate; informational, not scored.
	Parkinson   float64 `json:"parkinson"`
	GarmanKlass float64 `json:"garman_klass"`
}

// ScoreBreakdown records every number that fed the final score so the
// presentation layer never re-derives anything.
type ScoreBreakdown struct {
	TimeDecay      float64 `json:"time_decay"`
	Volatility     float64 `json:"volatility"`
	PriceStability float64 `json:"price_stability"`
	Liquidity      float64 `json:"liquidity"`
	Composite      float64 `json:"composite"`
	// Adjustments lists the multiplicative business-rule factors that were
	// actually applied, in application order.
	Adjustments []AppliedAdjustment `json:"adjustments,omitempty"`
	Final       float64             `json:"final"`
}

// AppliedAdjustment names one triggered business rule and its multiplier.
type AppliedAdjustment struct {
	Rule       string  `json:"rule"`
	Multiplier float64 `json:"multiplier"`
}

// Recommendation is the terminal position call for a candidate.
type Recommendation string

const (
	Enter Recommendation = "ENTER"
	Maybe Recommendation = "MAYBE"
	Skip  Recommendation = "SKIP"
)

// RiskTier buckets a candidate's risk.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// Opportunity is the terminal entity returned to the caller: one scored,
// recommended calendar-spread candidate. Read-only after creation.
type Opportunity struct {
	ID             string            `json:"id"`
	Symbol         string            `json:"symbol"`
	Spread         CalendarSpread    `json:"spread"`
	Greeks         SpreadGreeks      `json:"greeks"`
	Volatility     VolatilityMetrics `json:"volatility"`
	Profile        PLProfile         `json:"profile"`
	Score          ScoreBreakdown    `json:"score"`
	Recommendation Recommendation    `json:"recommendation"`
	Risk           RiskTier          `json:"risk"`
	Reasoning      string            `json:"reasoning"`
}
