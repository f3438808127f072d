package analysis

import "math"

// PNN50ThresholdMs is the successive-difference cutoff for pNN50
const PNN50ThresholdMs = 50

// HRVMetrics holds time-domain HRV statistics for one recording.
// Millisecond values carry 2 decimals, percentages and heart rate 1 decimal.
type HRVMetrics struct {
	RMSSD     float64 // ms
	SDNN      float64 // ms, population std dev
	PNN50     float64 // percent
	CV        float64 // percent
	MeanRR    float64 // ms
	HeartRate float64 // bpm
}

// ComputeHRV derives time-domain metrics from a cleaning result.
// Returns nil when fewer than two clean beats remain.
func ComputeHRV(c CleaningResult) *HRVMetrics {
	rr := c.Cleaned
	n := len(rr)
	if n < 2 {
		return nil
	}

	var sum float64
	for _, v := range rr {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var sqDev float64
	for _, v := range rr {
		d := float64(v) - mean
		sqDev += d * d
	}
	sdnn := math.Sqrt(sqDev / float64(n))

	var sqDiff float64
	var over50 int
	for i := 0; i < n-1; i++ {
		d := math.Abs(float64(rr[i+1] - rr[i]))
		sqDiff += d * d
		if d > PNN50ThresholdMs {
			over50++
		}
	}
	diffs := float64(n - 1)

	return &HRVMetrics{
		RMSSD:     round2(math.Sqrt(sqDiff / diffs)),
		SDNN:      round2(sdnn),
		PNN50:     round1(float64(over50) / diffs * 100),
		CV:        round1(sdnn / mean * 100),
		MeanRR:    round2(mean),
		HeartRate: round1(60000 / mean),
	}
}
