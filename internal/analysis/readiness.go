package analysis

// ReadinessStatus is the traffic-light training recommendation
type ReadinessStatus string

const (
	ReadinessGreen  ReadinessStatus = "GREEN"
	ReadinessYellow ReadinessStatus = "YELLOW"
	ReadinessRed    ReadinessStatus = "RED"
)

// ReadinessPolicy holds the classification bands. A reading more than
// YellowBelowPercent under baseline is YELLOW, more than RedBelowPercent
// under is RED.
type ReadinessPolicy struct {
	YellowBelowPercent float64                    `yaml:"yellow_below_percent"`
	RedBelowPercent    float64                    `yaml:"red_below_percent"`
	Recommendations    map[ReadinessStatus]string `yaml:"recommendations"`
}

// DefaultReadinessPolicy returns the standard -10% / -20% bands
func DefaultReadinessPolicy() ReadinessPolicy {
	return ReadinessPolicy{
		YellowBelowPercent: 10,
		RedBelowPercent:    20,
		Recommendations: map[ReadinessStatus]string{
			ReadinessGreen:  "Ready to train - proceed with planned session",
			ReadinessYellow: "Reduce intensity - keep the session aerobic",
			ReadinessRed:    "Recovery day - rest or very easy movement only",
		},
	}
}

// Recommendation returns the text for a status, falling back to the defaults
func (p ReadinessPolicy) Recommendation(s ReadinessStatus) string {
	if text, ok := p.Recommendations[s]; ok && text != "" {
		return text
	}
	return DefaultReadinessPolicy().Recommendations[s]
}

// Readiness is the classification of one day's rMSSD against its baseline
type Readiness struct {
	Status           ReadinessStatus
	Recommendation   string
	DeviationPercent float64
}

// ClassifyReadiness compares today's rMSSD with the baseline mean.
// With no baseline (mean <= 0) the athlete is assumed ready.
func ClassifyReadiness(todayRMSSD, baselineMean float64, policy ReadinessPolicy) Readiness {
	if baselineMean <= 0 {
		return Readiness{
			Status:         ReadinessGreen,
			Recommendation: policy.Recommendation(ReadinessGreen),
		}
	}

	// Bands apply to the reported one-decimal deviation so -10.0 is GREEN
	deviation := round1((todayRMSSD - baselineMean) / baselineMean * 100)

	var status ReadinessStatus
	switch {
	case deviation < -policy.RedBelowPercent:
		status = ReadinessRed
	case deviation < -policy.YellowBelowPercent:
		status = ReadinessYellow
	default:
		status = ReadinessGreen
	}

	return Readiness{
		Status:           status,
		Recommendation:   policy.Recommendation(status),
		DeviationPercent: deviation,
	}
}

// ReadinessLabel returns a short display label for a status
func ReadinessLabel(s ReadinessStatus) string {
	switch s {
	case ReadinessGreen:
		return "Ready"
	case ReadinessYellow:
		return "Caution"
	case ReadinessRed:
		return "Recover"
	default:
		return "Unknown"
	}
}
