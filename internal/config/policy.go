package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"coachlab/internal/analysis"
)

// LoadReadinessPolicy reads a YAML readiness policy and overlays it on base.
// Keys missing from the file keep their base values:
//
//	yellow_below_percent: 8
//	red_below_percent: 18
//	recommendations:
//	  YELLOW: "Zone 2 only, cap at 75 minutes"
func LoadReadinessPolicy(path string, base analysis.ReadinessPolicy) (analysis.ReadinessPolicy, error) {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return base, fmt.Errorf("reading readiness policy: %w", err)
	}

	policy := base
	policy.Recommendations = make(map[analysis.ReadinessStatus]string, len(base.Recommendations))
	for k, v := range base.Recommendations {
		policy.Recommendations[k] = v
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return base, fmt.Errorf("parsing readiness policy %s: %w", path, err)
	}

	if policy.YellowBelowPercent <= 0 || policy.YellowBelowPercent >= policy.RedBelowPercent {
		return base, fmt.Errorf("readiness policy %s: yellow_below_percent (%v) must be positive and less than red_below_percent (%v)",
			path, policy.YellowBelowPercent, policy.RedBelowPercent)
	}
	for status := range policy.Recommendations {
		switch status {
		case analysis.ReadinessGreen, analysis.ReadinessYellow, analysis.ReadinessRed:
		default:
			return base, fmt.Errorf("readiness policy %s: unknown status %q", path, status)
		}
	}

	return policy, nil
}
