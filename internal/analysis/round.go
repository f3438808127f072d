package analysis

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundTo rounds half away from zero on the shortest decimal representation
// of v, so 0.285 becomes 0.29 rather than 0.28.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// round2 is used for millisecond values
func round2(v float64) float64 { return roundTo(v, 2) }

// round1 is used for percentages and rates
func round1(v float64) float64 { return roundTo(v, 1) }

// round0 is used for watts, joules and seconds
func round0(v float64) float64 { return roundTo(v, 0) }

// Round1 rounds to one decimal place for display
func Round1(v float64) float64 { return round1(v) }
