package analysis

import "math"

// DefaultBaselineDays is the rolling window used for the rMSSD baseline
const DefaultBaselineDays = 7

// Baseline is the rolling mean and spread of a daily metric
type Baseline struct {
	Mean   float64
	StdDev float64 // population
	Count  int     // values actually used
	Days   int     // requested window
}

// HasData reports whether any values went into the baseline
func (b Baseline) HasData() bool {
	return b.Count > 0
}

// EstimateBaseline computes mean and population standard deviation over the
// last windowDays values. values must be oldest first. windowDays <= 0 uses
// DefaultBaselineDays. Empty input returns the zero baseline.
func EstimateBaseline(values []float64, windowDays int) Baseline {
	if windowDays <= 0 {
		windowDays = DefaultBaselineDays
	}

	b := Baseline{Days: windowDays}
	if len(values) == 0 {
		return b
	}

	window := values
	if len(window) > windowDays {
		window = window[len(window)-windowDays:]
	}

	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(len(window))

	var sq float64
	for _, v := range window {
		d := v - mean
		sq += d * d
	}

	b.Mean = round2(mean)
	b.StdDev = round2(math.Sqrt(sq / float64(len(window))))
	b.Count = len(window)
	return b
}

// Chronological reverses a newest-first series (the order the diary is read
// back in) into the oldest-first order EstimateBaseline expects.
func Chronological(newestFirst []float64) []float64 {
	out := make([]float64, len(newestFirst))
	for i, v := range newestFirst {
		out[len(newestFirst)-1-i] = v
	}
	return out
}
