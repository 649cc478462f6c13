package pnl

const (
	// Breakeven search covers [strike*searchLow, strike*searchHigh].
	searchLow  = 0.5
	searchHigh = 1.5
	// gridSteps is the coarse scan resolution used to bracket sign changes
	// before bisecting.
	gridSteps = 200
	// bisectTol is the spot-price tolerance of the bisection.
	bisectTol = 1e-4
	// maxBisect caps iterations; the range halves each step so this is far
	// more than enough for the tolerance.
	maxBisect = 100
)

// breakevens locates the spot prices at front expiry where the spread value
// equals the net debit. A calendar's value is tent-shaped around the strike,
// so two roots are expected. When fewer than two sign changes exist in the
// search range, the missing side falls back to the range edge and the result
// is flagged low-confidence for the caller to log; that is not an error.
func breakevens(valueAt func(float64) float64, strike, netDebit float64) (lower, upper float64, lowConfidence bool) {
	f := func(spot float64) float64 { return valueAt(spot) - netDebit }

	lo := strike * searchLow
	hi := strike * searchHigh
	step := (hi - lo) / gridSteps

	var roots []float64
	prevX := lo
	prevY := f(lo)
	for i := 1; i <= gridSteps; i++ {
		x := lo + float64(i)*step
		y := f(x)
		if prevY == 0 {
			roots = append(roots, prevX)
		} else if (prevY < 0) != (y < 0) {
			roots = append(roots, bisect(f, prevX, x))
		}
		prevX, prevY = x, y
	}

	switch len(roots) {
	case 0:
		return lo, hi, true
	case 1:
		if roots[0] < strike {
			return roots[0], hi, true
		}
		return lo, roots[0], true
	default:
		return roots[0], roots[len(roots)-1], false
	}
}

func bisect(f func(float64) float64, lo, hi float64) float64 {
	fLo := f(lo)
	for i := 0; i < maxBisect && hi-lo > bisectTol; i++ {
		mid := (lo + hi) / 2
		fMid := f(mid)
		if fMid == 0 {
			return mid
		}
		if (fLo < 0) == (fMid < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
