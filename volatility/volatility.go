// Package volatility derives the implied- and realized-volatility signals
// that feed spread scoring: IV percentile and skew, close-to-close
// historical volatility, range-based estimators, ATR, trend strength and
// support/resistance proximity.
package volatility

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/danielbowman/calspread/models"
)

// ErrInsufficientData marks a historical series too short to analyze. The
// affected symbol is excluded from the batch rather than scored on a guess.
var ErrInsufficientData = errors.New("volatility: insufficient historical data")

const (
	// MinSamples is the floor below which no volatility statistic is
	// produced.
	MinSamples = 20
	// HVWindow is the close-to-close realized volatility lookback.
	HVWindow           = 20
	tradingDaysPerYear = 252
)

// Analyze computes the full volatility picture for one spread candidate.
// ivHistory is the rolling daily IV series for the underlying, bars the
// daily OHLC history, both oldest first. The metrics travel with the
// opportunity so the presentation layer can render them.
func Analyze(frontIV, backIV float64, ivHistory []float64, bars []models.DailyBar) (models.VolatilityMetrics, error) {
	pct, err := IVPercentile(frontIV, ivHistory)
	if err != nil {
		return models.VolatilityMetrics{}, err
	}
	hv, stdev, err := HistoricalVolatility(closesOf(bars))
	if err != nil {
		return models.VolatilityMetrics{}, err
	}
	m := models.VolatilityMetrics{
		FrontIV:       frontIV,
		BackIV:        backIV,
		Skew:          backIV - frontIV,
		IVPercentile:  pct,
		HistoricalVol: hv,
		ReturnStdev:   stdev,
		Parkinson:     Parkinson(bars, HVWindow),
		GarmanKlass:   GarmanKlass(bars, HVWindow),
	}
	return m, nil
}

// IVPercentile ranks current against the historical IV series:
// rank(current) / count * 100.
func IVPercentile(current float64, history []float64) (float64, error) {
	if len(history) < MinSamples {
		return 0, fmt.Errorf("%w: %d IV samples, need %d", ErrInsufficientData, len(history), MinSamples)
	}
	rank := 0
	for _, iv := range history {
		if iv <= current {
			rank++
		}
	}
	return float64(rank) / float64(len(history)) * 100, nil
}

// HistoricalVolatility returns the annualized close-to-close volatility over
// the trailing HVWindow days together with the raw daily return stdev.
func HistoricalVolatility(closes []float64) (annualized, dailyStdev float64, err error) {
	if len(closes) < MinSamples {
		return 0, 0, fmt.Errorf("%w: %d closes, need %d", ErrInsufficientData, len(closes), MinSamples)
	}
	window := closes
	if len(window) > HVWindow+1 {
		window = window[len(window)-HVWindow-1:]
	}
	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		if window[i-1] <= 0 || window[i] <= 0 {
			return 0, 0, fmt.Errorf("%w: non-positive close in window", ErrInsufficientData)
		}
		returns = append(returns, math.Log(window[i]/window[i-1]))
	}
	dailyStdev, statErr := stats.StandardDeviationSample(returns)
	if statErr != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInsufficientData, statErr)
	}
	return dailyStdev * math.Sqrt(tradingDaysPerYear), dailyStdev, nil
}

func closesOf(bars []models.DailyBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
