package economic

import "math"

const (
	irrLowerBound = -0.99
	irrUpperBound = 10.0
	irrTolerance  = 1e-10
	irrMaxSteps   = 200
)

// IRR solves NPV(rate) = 0 by bisection and returns the rate as a fraction.
// A constant positive benefit makes NPV strictly decreasing in the rate, so a sign change
// across the bracket means exactly one root. ok is false when no root lies in
// [-99 %, 1000 %].
func IRR(benefit, investment float64, horizon int) (float64, bool) {
	if horizon <= 0 || investment <= 0 || benefit <= 0 {
		return 0, false
	}
	lo, hi := irrLowerBound, irrUpperBound
	fLo := NPV(benefit, investment, lo, horizon)
	fHi := NPV(benefit, investment, hi, horizon)
	if math.IsNaN(fLo) || math.IsNaN(fHi) || fLo < 0 || fHi > 0 {
		return 0, false
	}

	for i := 0; i < irrMaxSteps; i++ {
		mid := (lo + hi) / 2
		f := NPV(benefit, investment, mid, horizon)
		if f == 0 || (hi-lo)/2 < irrTolerance {
			return mid, true
		}
		if f > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
