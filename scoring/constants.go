// Package scoring maps a candidate's Greeks, volatility picture and quote
// liquidity into four 0-100 sub-scores, a weighted composite with
// business-rule adjustments, and the final position recommendation.
package scoring

// Every scoring threshold is a design constant collected here so the tables
// can be tuned and tested independently of the scoring logic.

// Time-decay bands on theta ratio = |front theta| / |back theta|.
const (
	thetaRatioIdealLow  = 1.8
	thetaRatioIdealHigh = 2.2
	thetaRatioGoodLow   = 1.5
	thetaRatioGoodHigh  = 2.5
	thetaRatioIdealPts  = 100.0
	thetaRatioGoodPts   = 80.0
)

// Absolute daily decay |front theta - back theta| multipliers.
var decayFactorTable = []struct {
	min    float64
	factor float64
}{
	{0.15, 1.0},
	{0.10, 0.9},
	{0.05, 0.8},
	{0, 0.6},
}

// Front IV level table: cheap vol scores high.
var ivLevelTable = []struct {
	max float64
	pts float64
}{
	{0.20, 100},
	{0.25, 75},
	{0.30, 50},
	{0.35, 25},
}

// Term-structure table on |back IV - front IV|.
const (
	skewFlatMax  = 0.02
	skewMildMax  = 0.05
	skewFlatPts  = 100.0
	skewMildPts  = 70.0
	skewSteepPts = 40.0
)

// IV percentile multipliers: low-percentile vol regimes favor calendars.
var ivPercentileTable = []struct {
	max  float64
	mult float64
}{
	{20, 1.1},
	{30, 1.0},
	{50, 0.9},
}

const ivPercentileHighMult = 0.7

// Volatility sub-score blend weights.
const (
	volBlendIVLevel    = 0.5
	volBlendStructure  = 0.3
	volBlendPercentile = 0.2
)

// 20-day historical volatility table for price stability.
var hvLevelTable = []struct {
	max float64
	pts float64
}{
	{0.15, 100},
	{0.20, 75},
	{0.25, 50},
	{0.30, 25},
}

// ATR-to-spot multipliers.
var atrRatioTable = []struct {
	max  float64
	mult float64
}{
	{0.01, 1.1},
	{0.02, 1.0},
	{0.03, 0.9},
}

const atrRatioWideMult = 0.8

// Trend penalty: score * (1 - trendStrength*trendPenaltyWeight).
const trendPenaltyWeight = 0.3

// Support/resistance proximity bonuses.
const (
	srNearPct   = 0.01
	srClosePct  = 0.02
	srNearMult  = 1.10
	srCloseMult = 1.05
)

// Liquidity buckets on metric = 2*volume + openInterest. Logarithmic steps
// from 0 at zero activity to 100 at >= 100,000.
var liquidityBuckets = []struct {
	min int
	pts float64
}{
	{100000, 100},
	{50000, 90},
	{20000, 80},
	{10000, 70},
	{5000, 60},
	{2000, 50},
	{1000, 40},
	{500, 30},
	{100, 20},
	{10, 10},
	{1, 5},
}

// Business-rule adjustment multipliers, applied after the weighted blend.
const (
	adjHighFrontIVMax    = 0.30
	adjHighFrontIVMult   = 0.8
	adjGoodRatioMult     = 1.1
	adjThinLiquidityMin  = 50.0
	adjThinLiquidityMult = 0.9
	adjQuietStdevMax     = 0.02
	adjQuietStdevMult    = 1.05
)

// Recommendation thresholds.
const (
	recMinLiquidity = 40.0
	recEnterScore   = 75.0
	recLowRiskScore = 85.0
	recMaybeScore   = 60.0
)
