package analysis

import "fmt"

// Trusted duration band for the two-parameter model (seconds). Shorter
// efforts are dominated by anaerobic power, longer ones by fatigue.
const (
	MinTrustedDuration = 180
	MaxTrustedDuration = 1200
)

// PowerDurationPoint is a best average power held for a duration
type PowerDurationPoint struct {
	Duration float64 // seconds
	Power    float64 // watts
}

// CPModel selects the linearization used for the critical power fit
type CPModel string

const (
	// ModelWorkTime regresses work = CP*t + W'
	ModelWorkTime CPModel = "work_time"
	// ModelInverseTime regresses P = CP + W'*(1/t)
	ModelInverseTime CPModel = "inverse_time"
)

// ParseCPModel maps a config or query value to a model
func ParseCPModel(s string) (CPModel, error) {
	switch CPModel(s) {
	case ModelWorkTime, "":
		return ModelWorkTime, nil
	case ModelInverseTime:
		return ModelInverseTime, nil
	default:
		return "", fmt.Errorf("unknown critical power model %q (want %q or %q)", s, ModelWorkTime, ModelInverseTime)
	}
}

// CPModelResult is a fitted critical power model
type CPModelResult struct {
	CP         float64  // watts
	WPrime     float64  // joules
	R2         *float64 // work/time model only
	Model      CPModel
	PointsUsed int
}

// CPSolver fits CP and W' by ordinary least squares
type CPSolver struct {
	Model       CPModel
	MinDuration float64
	MaxDuration float64
}

// NewCPSolver returns a solver using the standard trusted band
func NewCPSolver(model CPModel) CPSolver {
	if model == "" {
		model = ModelWorkTime
	}
	return CPSolver{
		Model:       model,
		MinDuration: MinTrustedDuration,
		MaxDuration: MaxTrustedDuration,
	}
}

// SolveCriticalPower fits the given model over the standard band
func SolveCriticalPower(efforts []PowerDurationPoint, model CPModel) *CPModelResult {
	return NewCPSolver(model).Solve(efforts)
}

// Solve fits the model. Returns nil when fewer than two efforts fall inside
// the trusted band or the durations are degenerate.
func (s CPSolver) Solve(efforts []PowerDurationPoint) *CPModelResult {
	points := FilterTrustedEfforts(efforts, s.MinDuration, s.MaxDuration)
	if len(points) < 2 {
		return nil
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		switch s.Model {
		case ModelInverseTime:
			xs[i] = 1 / p.Duration
			ys[i] = p.Power
		default:
			xs[i] = p.Duration
			ys[i] = p.Power * p.Duration
		}
	}

	slope, intercept, ok := linearRegression(xs, ys)
	if !ok {
		return nil
	}

	result := &CPModelResult{PointsUsed: len(points)}
	switch s.Model {
	case ModelInverseTime:
		result.Model = ModelInverseTime
		result.CP = round0(intercept)
		result.WPrime = round0(slope)
	default:
		result.Model = ModelWorkTime
		result.CP = round0(slope)
		result.WPrime = round0(intercept)
		if r2, ok := rSquared(xs, ys, slope, intercept); ok {
			result.R2 = &r2
		}
	}

	return result
}

// FilterTrustedEfforts keeps efforts whose duration lies in [min, max]
func FilterTrustedEfforts(efforts []PowerDurationPoint, min, max float64) []PowerDurationPoint {
	var out []PowerDurationPoint
	for _, e := range efforts {
		if e.Duration >= min && e.Duration <= max {
			out = append(out, e)
		}
	}
	return out
}

// linearRegression returns the closed-form OLS fit y = slope*x + intercept.
// ok is false when all x are equal.
func linearRegression(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom <= 1e-12*n*sumXX {
		return 0, 0, false
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}

// rSquared is 1 - SSres/SStot, rounded to 4 decimals
func rSquared(xs, ys []float64, slope, intercept float64) (float64, bool) {
	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssRes, ssTot float64
	for i := range xs {
		pred := slope*xs[i] + intercept
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - mean) * (ys[i] - mean)
	}
	if ssTot == 0 {
		return 0, false
	}
	return roundTo(1-ssRes/ssTot, 4), true
}
