package volatility

import (
	"math"

	"github.com/danielbowman/calspread/models"
)

// Parkinson computes the annualized Parkinson range estimator over the
// trailing days of OHLC history. Returns 0 when the window cannot be filled;
// these estimators are advisory and never gate a candidate.
func Parkinson(bars []models.DailyBar, days int) float64 {
	window := trailing(bars, days)
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, bar := range window {
		if bar.Low <= 0 {
			return 0
		}
		logRatio := math.Log(bar.High / bar.Low)
		sum += logRatio * logRatio
	}
	daily := math.Sqrt(sum / (4 * float64(len(window)) * math.Ln2))
	return daily * math.Sqrt(tradingDaysPerYear)
}

// GarmanKlass computes the annualized Garman-Klass estimator over the
// trailing days of OHLC history.
func GarmanKlass(bars []models.DailyBar, days int) float64 {
	window := trailing(bars, days)
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, bar := range window {
		if bar.Low <= 0 || bar.Open <= 0 {
			return 0
		}
		hl := math.Log(bar.High / bar.Low)
		co := math.Log(bar.Close / bar.Open)
		sum += 0.5*hl*hl - (2*math.Ln2-1)*co*co
	}
	mean := sum / float64(len(window))
	if mean < 0 {
		return 0
	}
	return math.Sqrt(mean * tradingDaysPerYear)
}

func trailing(bars []models.DailyBar, days int) []models.DailyBar {
	if days <= 0 || len(bars) < days {
		return nil
	}
	return bars[len(bars)-days:]
}
