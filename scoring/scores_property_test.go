package scoring

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/danielbowman/calspread/models"
)

// Property: every component score and the composite stay inside [0,100] for
// any input combination the market could plausibly hand us.
func TestProperty_ScoresStayInBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	parameters.Rng.Seed(1791)

	properties := gopter.NewProperties(parameters)

	properties.Property("all scores in [0,100]", prop.ForAll(
		func(frontTheta, backTheta, frontIV, skew, pct, hv, atr, trend, prox, stdev float64, volume, oi int) bool {
			b := Score(Inputs{
				FrontTheta:     -frontTheta,
				BackTheta:      -backTheta,
				FrontIV:        frontIV,
				Skew:           skew,
				IVPercentile:   pct,
				HistoricalVol:  hv,
				ATRRatio:       atr,
				TrendStrength:  trend,
				LevelProximity: prox,
				ReturnStdev:    stdev,
				Volume:         volume,
				OpenInterest:   oi,
			}, models.Weights{Liquidity: 0.30, TimeDecay: 0.30, Volatility: 0.20, PriceStability: 0.20})

			for _, v := range []float64{b.TimeDecay, b.Volatility, b.PriceStability, b.Liquidity, b.Composite, b.Final} {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 2),
		gen.Float64Range(0, 2),
		gen.Float64Range(0, 3),
		gen.Float64Range(-1, 1),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 2),
		gen.Float64Range(0, 0.2),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 0.5),
		gen.Float64Range(0, 0.2),
		gen.IntRange(0, 5_000_000),
		gen.IntRange(0, 5_000_000),
	))

	properties.TestingRun(t)
}

// Property: the recommendation procedure is a pure function of its two
// inputs; repeated calls never disagree.
func TestProperty_RecommendationIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(1792)

	properties := gopter.NewProperties(parameters)

	properties.Property("identical inputs, identical outputs", prop.ForAll(
		func(score, liquidity float64) bool {
			rec1, risk1, _ := Decide(score, liquidity)
			rec2, risk2, _ := Decide(score, liquidity)
			if rec1 != rec2 || risk1 != risk2 {
				return false
			}
			// Liquidity floor dominates everything else.
			if liquidity < 40 && rec1 != models.Skip {
				return false
			}
			return true
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
