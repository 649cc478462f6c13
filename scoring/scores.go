package scoring

import (
	"math"

	"github.com/danielbowman/calspread/models"
)

// Inputs gathers everything the scoring tables consume. All values come from
// upstream components; nothing here re-derives market data.
type Inputs struct {
	FrontTheta float64
	BackTheta  float64

	FrontIV      float64
	Skew         float64
	IVPercentile float64

	HistoricalVol  float64
	ATRRatio       float64 // ATR / spot, 0 when unavailable
	TrendStrength  float64 // [0,1]
	LevelProximity float64 // distance to nearest S/R level as fraction of spot
	ReturnStdev    float64 // raw 20-day daily return stdev

	Volume       int // both legs combined
	OpenInterest int
}

// Score runs the four sub-scores, the weighted composite and the
// business-rule adjustments, recording every applied multiplier.
func Score(in Inputs, w models.Weights) models.ScoreBreakdown {
	b := models.ScoreBreakdown{
		TimeDecay:      TimeDecayScore(in.FrontTheta, in.BackTheta),
		Volatility:     VolatilityScore(in.FrontIV, in.Skew, in.IVPercentile),
		PriceStability: PriceStabilityScore(in.HistoricalVol, in.ATRRatio, in.TrendStrength, in.LevelProximity),
		Liquidity:      LiquidityScore(in.Volume, in.OpenInterest),
	}
	b.Composite = clamp(b.Liquidity*w.Liquidity +
		b.TimeDecay*w.TimeDecay +
		b.Volatility*w.Volatility +
		b.PriceStability*w.PriceStability)

	b.Final = b.Composite
	apply := func(rule string, mult float64) {
		b.Adjustments = append(b.Adjustments, models.AppliedAdjustment{Rule: rule, Multiplier: mult})
		b.Final *= mult
	}
	if in.FrontIV > adjHighFrontIVMax {
		apply("front IV above 30%", adjHighFrontIVMult)
	}
	if ratio := thetaRatio(in.FrontTheta, in.BackTheta); ratio >= thetaRatioGoodLow && ratio <= thetaRatioGoodHigh {
		apply("theta ratio in favorable band", adjGoodRatioMult)
	}
	if b.Liquidity < adjThinLiquidityMin {
		apply("thin liquidity", adjThinLiquidityMult)
	}
	if in.ReturnStdev < adjQuietStdevMax {
		apply("quiet 20-day price action", adjQuietStdevMult)
	}
	b.Final = clamp(b.Final)
	return b
}

func thetaRatio(frontTheta, backTheta float64) float64 {
	if backTheta == 0 {
		return 0
	}
	return math.Abs(frontTheta) / math.Abs(backTheta)
}

// TimeDecayScore rewards the theta differential that pays a calendar: a
// front leg decaying around twice as fast as the back leg.
func TimeDecayScore(frontTheta, backTheta float64) float64 {
	ratio := thetaRatio(frontTheta, backTheta)
	var base float64
	switch {
	case ratio >= thetaRatioIdealLow && ratio <= thetaRatioIdealHigh:
		base = thetaRatioIdealPts
	case ratio >= thetaRatioGoodLow && ratio <= thetaRatioGoodHigh:
		base = thetaRatioGoodPts
	case ratio < thetaRatioGoodLow:
		base = thetaRatioGoodPts * ratio / thetaRatioGoodLow
	default:
		base = thetaRatioGoodPts * math.Max(0, 1-(ratio-thetaRatioGoodHigh)/thetaRatioGoodHigh)
	}

	absDecay := math.Abs(frontTheta - backTheta)
	for _, row := range decayFactorTable {
		if absDecay >= row.min {
			return clamp(base * row.factor)
		}
	}
	return clamp(base * decayFactorTable[len(decayFactorTable)-1].factor)
}

// VolatilityScore blends front IV level, term structure and IV percentile.
func VolatilityScore(frontIV, skew, percentile float64) float64 {
	ivScore := 0.0
	for _, row := range ivLevelTable {
		if frontIV <= row.max {
			ivScore = row.pts
			break
		}
	}

	structureScore := skewSteepPts
	if abs := math.Abs(skew); abs <= skewFlatMax {
		structureScore = skewFlatPts
	} else if abs <= skewMildMax {
		structureScore = skewMildPts
	}

	mult := ivPercentileHighMult
	for _, row := range ivPercentileTable {
		if percentile <= row.max {
			mult = row.mult
			break
		}
	}

	blended := ivScore*volBlendIVLevel + structureScore*volBlendStructure + (100-percentile)*volBlendPercentile
	return clamp(blended * mult)
}

// PriceStabilityScore rewards underlyings likely to pin near the strike:
// low realized vol, tight ranges, no trend, nearby support/resistance.
func PriceStabilityScore(hv, atrRatio, trendStrength, levelProximity float64) float64 {
	base := 0.0
	for _, row := range hvLevelTable {
		if hv <= row.max {
			base = row.pts
			break
		}
	}

	atrMult := atrRatioWideMult
	if atrRatio == 0 {
		atrMult = 1.0 // ATR unavailable, no opinion
	} else {
		for _, row := range atrRatioTable {
			if atrRatio <= row.max {
				atrMult = row.mult
				break
			}
		}
	}

	score := base * atrMult * (1 - clamp01(trendStrength)*trendPenaltyWeight)
	if levelProximity <= srNearPct {
		score *= srNearMult
	} else if levelProximity <= srClosePct {
		score *= srCloseMult
	}
	return clamp(score)
}

// LiquidityScore buckets combined volume and open interest logarithmically:
// metric = 2*volume + openInterest.
func LiquidityScore(volume, openInterest int) float64 {
	metric := 2*volume + openInterest
	for _, bucket := range liquidityBuckets {
		if metric >= bucket.min {
			return bucket.pts
		}
	}
	return 0
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
