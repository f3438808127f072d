package analysis

// TlimSentinelSeconds is returned when pVO2max does not exceed CP and the
// time to exhaustion is effectively unbounded.
const TlimSentinelSeconds = 3600

// Weights for blending an observed Tlim into the running estimate
const (
	TlimPriorWeight    = 0.7
	TlimObservedWeight = 0.3
)

// SustainablePower is the power that exhausts W' in exactly duration seconds
func SustainablePower(duration, cp, wPrime float64) float64 {
	if duration <= 0 {
		return 0
	}
	return round0(cp + wPrime/duration)
}

// PercentVO2 expresses power as a share of pVO2max, capped at 100
func PercentVO2(power, pVO2max float64) float64 {
	if pVO2max == 0 {
		return 0
	}
	pct := power / pVO2max * 100
	if pct > 100 {
		pct = 100
	}
	return round1(pct)
}

// EstimateVO2maxFromRamp estimates VO2max (ml/kg/min) from ramp-test peak
// (maximal aerobic) power using the ACSM cycling equation.
func EstimateVO2maxFromRamp(mapWatts, weightKg float64) float64 {
	if weightKg <= 0 {
		return 0
	}
	litersPerMin := 0.01141*mapWatts + 0.435
	return round1(litersPerMin * 1000 / weightKg)
}

// PVO2maxFrom5MinPower estimates power at VO2max from a 5 minute maximal effort
func PVO2maxFrom5MinPower(power float64) float64 {
	return round0(0.95 * power)
}

// TlimAtPVO2max is the time (seconds) pVO2max can be held before W' runs out
func TlimAtPVO2max(pVO2max, cp, wPrime float64) float64 {
	if pVO2max <= cp {
		return TlimSentinelSeconds
	}
	return round0(wPrime / (pVO2max - cp))
}

// UpdateTlim blends a newly observed time to exhaustion into the estimate
func UpdateTlim(current, observed float64) float64 {
	return round0(TlimPriorWeight*current + TlimObservedWeight*observed)
}

// PacingTarget is the sustainable power for one target duration
type PacingTarget struct {
	Duration   float64
	Power      float64
	PercentVO2 float64
	AboveCP    bool
}

// PacingTable computes sustainable power for each duration. percentVO2 is
// left at 0 when pVO2max is unknown.
func PacingTable(durations []float64, cp, wPrime, pVO2max float64) []PacingTarget {
	targets := make([]PacingTarget, 0, len(durations))
	for _, d := range durations {
		p := SustainablePower(d, cp, wPrime)
		targets = append(targets, PacingTarget{
			Duration:   d,
			Power:      p,
			PercentVO2: PercentVO2(p, pVO2max),
			AboveCP:    p > cp,
		})
	}
	return targets
}

// VO2maxLabel classifies a VO2max value for display
func VO2maxLabel(vo2max float64) string {
	switch {
	case vo2max >= 70:
		return "Elite"
	case vo2max >= 60:
		return "Excellent"
	case vo2max >= 50:
		return "Good"
	case vo2max >= 40:
		return "Average"
	case vo2max > 0:
		return "Below average"
	default:
		return "Unknown"
	}
}
