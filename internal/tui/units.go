package tui

import (
	"fmt"
	"math"

	"coachlab/internal/service"
)

// formatWatts formats an optional power value
func formatWatts(w *float64) string {
	if w == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f W", *w)
}

// formatWattsPerKg formats power relative to body weight
func formatWattsPerKg(w *float64, weightKg float64) string {
	if w == nil || weightKg <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f W/kg", *w/weightKg)
}

// formatKilojoules formats W' in kJ
func formatKilojoules(j *float64) string {
	if j == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f kJ", *j/1000)
}

// formatSeconds formats an optional duration in seconds as M:SS
func formatSeconds(s *float64) string {
	if s == nil {
		return "-"
	}
	return service.FormatDuration(int(math.Round(*s)))
}

// formatDeviation formats a signed percentage change against baseline
func formatDeviation(pct *float64) string {
	if pct == nil {
		return "no baseline"
	}
	return fmt.Sprintf("%+.1f%%", *pct)
}

// gapZeros replaces zeros with NaN so the chart leaves gaps for days with no baseline
func gapZeros(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
