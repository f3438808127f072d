package config

import "coachlab/internal/analysis"

// EnvPrefix is prepended to environment overrides, e.g. COACHLAB_LOG_LEVEL
const EnvPrefix = "COACHLAB"

// DefaultPacingDurations are the target durations shown in pacing tables (seconds)
var DefaultPacingDurations = []int{180, 300, 600, 1200, 1800, 3600}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	policy := analysis.DefaultReadinessPolicy()
	return Config{
		Athlete: AthleteConfig{
			WeightKg: 70,
		},
		Engine: EngineConfig{
			MinRR:              analysis.DefaultMinRR,
			MaxRR:              analysis.DefaultMaxRR,
			ThresholdPercent:   analysis.DefaultThresholdPercent,
			BaselineDays:       analysis.DefaultBaselineDays,
			YellowBelowPercent: policy.YellowBelowPercent,
			RedBelowPercent:    policy.RedBelowPercent,
			CPModel:            string(analysis.ModelWorkTime),
			PacingDurations:    DefaultPacingDurations,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
