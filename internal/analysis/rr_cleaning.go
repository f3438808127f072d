package analysis

import "fmt"

// RR interval cleaning defaults (milliseconds / percent)
const (
	DefaultMinRR            = 300  // 200 bpm
	DefaultMaxRR            = 2000 // 30 bpm
	DefaultThresholdPercent = 20.0 // max beat-to-beat change
	MaxArtifactPercent      = 5.0  // recordings at or above this are rejected
	MinCleanBeats           = 30   // below this the metrics are unreliable
)

// CleanOptions controls artifact rejection
type CleanOptions struct {
	MinRR            int
	MaxRR            int
	ThresholdPercent float64
}

// DefaultCleanOptions returns the standard physiological limits
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		MinRR:            DefaultMinRR,
		MaxRR:            DefaultMaxRR,
		ThresholdPercent: DefaultThresholdPercent,
	}
}

func (o CleanOptions) withDefaults() CleanOptions {
	d := DefaultCleanOptions()
	if o.MinRR <= 0 {
		o.MinRR = d.MinRR
	}
	if o.MaxRR <= 0 {
		o.MaxRR = d.MaxRR
	}
	if o.ThresholdPercent <= 0 {
		o.ThresholdPercent = d.ThresholdPercent
	}
	return o
}

// CleaningResult is the outcome of running CleanRR over a recording
type CleaningResult struct {
	Cleaned            []int
	Original           []int
	ArtifactCount      int
	ArtifactPercentage float64
	IsValid            bool
	Warnings           []string
}

// beatRule decides whether a beat survives. last is the most recently
// accepted beat, or 0 when nothing has been accepted yet.
type beatRule interface {
	accept(rr, last int) bool
}

// rangeRule drops beats outside physiological limits
type rangeRule struct {
	min, max int
}

func (r rangeRule) accept(rr, _ int) bool {
	return rr >= r.min && rr <= r.max
}

// quotientRule drops beats that change too much relative to the last accepted beat
type quotientRule struct {
	threshold float64 // fraction, e.g. 0.2
}

func (r quotientRule) accept(rr, last int) bool {
	if last == 0 {
		return true // first valid beat seeds the filter
	}
	ratio := float64(rr) / float64(last)
	return ratio >= 1-r.threshold && ratio <= 1+r.threshold
}

// CleanRR removes artifacts from a raw RR interval series.
//
// Beats outside [MinRR, MaxRR] are dropped first. Each remaining beat is then
// compared against the last accepted beat and dropped if the ratio leaves the
// ±ThresholdPercent band. Rejected beats never become the new reference.
// Empty input yields an invalid result with a warning rather than an error.
func CleanRR(raw []int, opts CleanOptions) CleaningResult {
	opts = opts.withDefaults()

	result := CleaningResult{
		Cleaned:  []int{},
		Original: append([]int{}, raw...),
	}

	if len(raw) == 0 {
		result.Warnings = append(result.Warnings, "No RR intervals provided")
		return result
	}

	rules := []beatRule{
		rangeRule{min: opts.MinRR, max: opts.MaxRR},
		quotientRule{threshold: opts.ThresholdPercent / 100},
	}

	last := 0
	for _, rr := range raw {
		if !acceptBeat(rules, rr, last) {
			result.ArtifactCount++
			continue
		}
		result.Cleaned = append(result.Cleaned, rr)
		last = rr
	}

	result.ArtifactPercentage = float64(result.ArtifactCount) / float64(len(raw)) * 100
	result.IsValid = result.ArtifactPercentage < MaxArtifactPercent

	if !result.IsValid {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"High artifact rate: %.1f%% (max %.0f%%) - repeat the measurement",
			result.ArtifactPercentage, MaxArtifactPercent))
	}
	if len(result.Cleaned) < MinCleanBeats {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Insufficient clean beats: %d (need at least %d)",
			len(result.Cleaned), MinCleanBeats))
	}

	return result
}

func acceptBeat(rules []beatRule, rr, last int) bool {
	for _, r := range rules {
		if !r.accept(rr, last) {
			return false
		}
	}
	return true
}
