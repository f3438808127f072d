package analysis

import (
	"sort"
	"time"
)

// PowerTSS calculates Training Stress Score from weighted average power.
// TSS = hours * IF^2 * 100, with intensity factor IF = power / CP.
// A one hour ride at CP scores 100.
func PowerTSS(weightedAvgPower float64, seconds int, cp float64) float64 {
	if cp <= 0 || weightedAvgPower <= 0 || seconds <= 0 {
		return 0
	}
	intensity := weightedAvgPower / cp
	hours := float64(seconds) / 3600
	return round1(hours * intensity * intensity * 100)
}

// DailyLoad represents training load for a single day
type DailyLoad struct {
	Date time.Time
	TSS  float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// CalculateFitnessTrend computes CTL/ATL/TSB from daily loads.
// Days without a ride count as zero load.
func CalculateFitnessTrend(dailyLoads []DailyLoad) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	loads := append([]DailyLoad(nil), dailyLoads...)
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	ctlDecay := 2.0 / (42.0 + 1.0)
	atlDecay := 2.0 / (7.0 + 1.0)

	byDay := make(map[string]float64)
	for _, dl := range loads {
		byDay[dl.Date.Format("2006-01-02")] += dl.TSS
	}

	startDate := loads[0].Date.Truncate(24 * time.Hour)
	endDate := loads[len(loads)-1].Date.Truncate(24 * time.Hour)

	var metrics []FitnessMetrics
	var ctl, atl float64
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		tss := byDay[d.Format("2006-01-02")]

		ctl += ctlDecay * (tss - ctl)
		atl += atlDecay * (tss - atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}

	return metrics
}

// GetCurrentFitness returns the most recent CTL/ATL/TSB values
func GetCurrentFitness(dailyLoads []DailyLoad) FitnessMetrics {
	metrics := CalculateFitnessTrend(dailyLoads)
	if len(metrics) == 0 {
		return FitnessMetrics{}
	}
	return metrics[len(metrics)-1]
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detraining)"
	case tsb > 10:
		return "Fresh - good day for a test"
	case tsb > 0:
		return "Neutral"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Productive overload"
	default:
		return "Overreaching - prioritise recovery"
	}
}
