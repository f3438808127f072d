package analysis

// BestEffort is the highest average power held for a duration within a ride
type BestEffort struct {
	DurationSeconds int
	AvgPower        float64
	StartOffset     int // seconds from ride start
	EndOffset       int
}

const (
	MinPointsForEffort = 10 // minimum stream samples needed
	MaxFillGapSeconds  = 5  // longer gaps are treated as stopped (0 W)
)

// EffortDurations are the mean-maximal durations extracted from each ride.
// All of them fall inside the trusted critical power band.
var EffortDurations = []int{180, 300, 600, 720, 1200}

// ResampleTo1Hz turns a (time offset, watts) stream into one sample per second
// so that a window of n samples is exactly n seconds. Short gaps repeat the
// previous value; gaps over MaxFillGapSeconds are filled with zero.
func ResampleTo1Hz(times, watts []int) []int {
	n := len(times)
	if len(watts) < n {
		n = len(watts)
	}
	if n == 0 {
		return nil
	}

	start := times[0]
	length := times[n-1] - start + 1
	if length <= 0 {
		return nil
	}

	out := make([]int, length)
	for i := 0; i < n; i++ {
		at := times[i] - start
		if at < 0 || at >= length {
			continue
		}
		out[at] = watts[i]

		if i+1 < n {
			gap := times[i+1] - times[i]
			if gap > 1 && gap <= MaxFillGapSeconds {
				for s := at + 1; s < at+gap && s < length; s++ {
					out[s] = watts[i]
				}
			}
		}
	}
	return out
}

// FindBestEffort finds the highest average power over any window of
// consecutive 1 Hz samples using a rolling sum.
// Returns nil if the ride is shorter than the window or has insufficient data.
func FindBestEffort(watts []int, window int) *BestEffort {
	if window <= 0 || len(watts) < MinPointsForEffort || len(watts) < window {
		return nil
	}

	var sum int
	for i := 0; i < window; i++ {
		sum += watts[i]
	}

	best := sum
	bestStart := 0
	for right := window; right < len(watts); right++ {
		sum += watts[right] - watts[right-window]
		if sum > best {
			best = sum
			bestStart = right - window + 1
		}
	}

	if best <= 0 {
		return nil
	}

	return &BestEffort{
		DurationSeconds: window,
		AvgPower:        round1(float64(best) / float64(window)),
		StartOffset:     bestStart,
		EndOffset:       bestStart + window - 1,
	}
}

// FindBestEfforts runs FindBestEffort for each duration, skipping those the
// ride is too short for.
func FindBestEfforts(watts []int, durations []int) []BestEffort {
	var efforts []BestEffort
	for _, d := range durations {
		if e := FindBestEffort(watts, d); e != nil {
			efforts = append(efforts, *e)
		}
	}
	return efforts
}

// MeanMaximalPoints converts best efforts into points for the CP solver
func MeanMaximalPoints(efforts []BestEffort) []PowerDurationPoint {
	points := make([]PowerDurationPoint, 0, len(efforts))
	for _, e := range efforts {
		points = append(points, PowerDurationPoint{
			Duration: float64(e.DurationSeconds),
			Power:    e.AvgPower,
		})
	}
	return points
}
