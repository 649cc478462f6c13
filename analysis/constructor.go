// Package analysis turns chain snapshots into ranked calendar-spread
// opportunities: it constructs candidates, fans them out across a worker
// pool, and assembles scored results.
package analysis

import (
	"sort"
	"time"

	"github.com/danielbowman/calspread/models"
)

type expiryGroup struct {
	expiry time.Time
	dte    int
	// quotes by strike and type
	quotes map[float64]map[models.OptionType]models.OptionQuote
}

// FindCalendarSpreads enumerates calendar candidates for one snapshot under
// the configured DTE windows and strike mode. A symbol with no qualifying
// expiry pair or common strike simply contributes no candidates; that is an
// empty slice, not an error.
func FindCalendarSpreads(snap models.ChainSnapshot, cfg models.Config) []models.CalendarSpread {
	groups := groupByExpiry(snap)
	if len(groups) < 2 {
		return nil
	}

	front := nearestInWindow(groups, cfg.MinFrontDTE, cfg.MaxFrontDTE, 0)
	if front == nil {
		return nil
	}
	back := nearestInWindow(groups, cfg.MinBackDTE, cfg.MaxBackDTE, front.dte+cfg.MinDTEGap)
	if back == nil {
		return nil
	}

	strike, ok := selectStrike(front, back, snap.Spot)
	if !ok {
		return nil
	}

	var spreads []models.CalendarSpread
	for _, optType := range []models.OptionType{models.Call, models.Put} {
		frontQuote, haveFront := front.quotes[strike][optType]
		backQuote, haveBack := back.quotes[strike][optType]
		if !haveFront || !haveBack {
			continue
		}
		spreads = append(spreads, models.CalendarSpread{
			Symbol:     snap.Symbol,
			Strike:     strike,
			OptionType: optType,
			Front:      frontQuote,
			Back:       backQuote,
			Spot:       snap.Spot,
		})
	}
	return spreads
}

func groupByExpiry(snap models.ChainSnapshot) []expiryGroup {
	byExpiry := make(map[time.Time]*expiryGroup)
	for _, q := range snap.Quotes {
		day := q.Expiration.Truncate(24 * time.Hour)
		g, ok := byExpiry[day]
		if !ok {
			g = &expiryGroup{
				expiry: day,
				dte:    q.DTE(snap.AsOf),
				quotes: make(map[float64]map[models.OptionType]models.OptionQuote),
			}
			byExpiry[day] = g
		}
		byStrike, ok := g.quotes[q.Strike]
		if !ok {
			byStrike = make(map[models.OptionType]models.OptionQuote)
			g.quotes[q.Strike] = byStrike
		}
		byStrike[q.OptionType] = q
	}

	groups := make([]expiryGroup, 0, len(byExpiry))
	for _, g := range byExpiry {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].dte < groups[j].dte })
	return groups
}

// nearestInWindow picks the earliest expiry whose DTE falls in [min,max] and
// is at least floor. Groups arrive sorted by DTE so the first hit is the
// nearest.
func nearestInWindow(groups []expiryGroup, min, max, floor int) *expiryGroup {
	for i := range groups {
		dte := groups[i].dte
		if dte >= min && dte <= max && dte >= floor {
			return &groups[i]
		}
	}
	return nil
}

// selectStrike implements ATM mode: from the strikes common to both
// expiries, the one nearest spot; ties break to the lower strike so the
// choice is deterministic.
func selectStrike(front, back *expiryGroup, spot float64) (float64, bool) {
	var common []float64
	for strike := range front.quotes {
		if _, ok := back.quotes[strike]; ok {
			common = append(common, strike)
		}
	}
	if len(common) == 0 {
		return 0, false
	}
	sort.Float64s(common)

	best := common[0]
	bestDist := dist(best, spot)
	for _, strike := range common[1:] {
		if d := dist(strike, spot); d < bestDist {
			best, bestDist = strike, d
		}
	}
	return best, true
}

func dist(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
