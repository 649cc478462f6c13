package volatility

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/danielbowman/calspread/models"
)

const (
	// ATRPeriod is the Wilder average-true-range lookback.
	ATRPeriod = 14
	// trendWindow is the lookback for the regression trend signal.
	trendWindow = 20
	// swingPivot is the number of bars on each side that a swing high/low
	// must dominate.
	swingPivot = 2
	// swingLookback bounds how far back swing levels are collected.
	swingLookback = 60
)

// ATR returns the simple average true range over the trailing ATRPeriod
// bars, 0 when history is too short.
func ATR(bars []models.DailyBar) float64 {
	if len(bars) < ATRPeriod+1 {
		return 0
	}
	window := bars[len(bars)-ATRPeriod-1:]
	sum := 0.0
	for i := 1; i < len(window); i++ {
		high, low, prevClose := window[i].High, window[i].Low, window[i-1].Close
		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		sum += tr
	}
	return sum / ATRPeriod
}

// TrendStrength regresses the trailing closes against time and maps the
// normalized slope magnitude into [0,1]. 0 is flat, 1 is a strong one-way
// move; the price-stability score penalizes trending underlyings.
func TrendStrength(closes []float64) float64 {
	if len(closes) < trendWindow {
		return 0
	}
	window := closes[len(closes)-trendWindow:]
	xs := make([]float64, len(window))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, window, nil, false)
	mean := stat.Mean(window, nil)
	if mean <= 0 {
		return 0
	}
	// Total regression move over the window as a fraction of price; a 10%
	// drift across the window saturates the signal.
	drift := math.Abs(slope) * float64(len(window)-1) / mean
	return math.Min(drift/0.10, 1)
}

// SwingLevels collects recent swing highs and lows: bars whose high (low)
// dominates swingPivot bars on each side, within the trailing swingLookback.
func SwingLevels(bars []models.DailyBar) []float64 {
	if len(bars) <= 2*swingPivot {
		return nil
	}
	start := 0
	if len(bars) > swingLookback {
		start = len(bars) - swingLookback
	}
	var levels []float64
	for i := start + swingPivot; i < len(bars)-swingPivot; i++ {
		isHigh, isLow := true, true
		for j := i - swingPivot; j <= i+swingPivot; j++ {
			if j == i {
				continue
			}
			if bars[j].High >= bars[i].High {
				isHigh = false
			}
			if bars[j].Low <= bars[i].Low {
				isLow = false
			}
		}
		if isHigh {
			levels = append(levels, bars[i].High)
		}
		if isLow {
			levels = append(levels, bars[i].Low)
		}
	}
	return levels
}

// LevelProximity returns the distance from spot to the nearest known level
// as a fraction of spot, or +Inf when no levels exist.
func LevelProximity(spot float64, levels []float64) float64 {
	if spot <= 0 || len(levels) == 0 {
		return math.Inf(1)
	}
	nearest := math.Inf(1)
	for _, level := range levels {
		if d := math.Abs(spot-level) / spot; d < nearest {
			nearest = d
		}
	}
	return nearest
}
