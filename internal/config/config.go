package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"coachlab/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Strava   StravaConfig   `json:"strava" mapstructure:"strava"`
	Athlete  AthleteConfig  `json:"athlete" mapstructure:"athlete"`
	Engine   EngineConfig   `json:"engine" mapstructure:"engine"`
	Server   ServerConfig   `json:"server" mapstructure:"server"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
	Database DatabaseConfig `json:"database" mapstructure:"database"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
}

// AthleteConfig describes the default athlete created on first run
type AthleteConfig struct {
	Name     string  `json:"name" mapstructure:"name"`
	WeightKg float64 `json:"weight_kg" mapstructure:"weight_kg"`
}

// EngineConfig holds the tunable analysis parameters
type EngineConfig struct {
	MinRR               int     `json:"min_rr" mapstructure:"min_rr"`
	MaxRR               int     `json:"max_rr" mapstructure:"max_rr"`
	ThresholdPercent    float64 `json:"threshold_percent" mapstructure:"threshold_percent"`
	BaselineDays        int     `json:"baseline_days" mapstructure:"baseline_days"`
	YellowBelowPercent  float64 `json:"yellow_below_percent" mapstructure:"yellow_below_percent"`
	RedBelowPercent     float64 `json:"red_below_percent" mapstructure:"red_below_percent"`
	CPModel             string  `json:"cp_model" mapstructure:"cp_model"`
	ReadinessPolicyFile string  `json:"readiness_policy_file,omitempty" mapstructure:"readiness_policy_file"`
	PacingDurations     []int   `json:"pacing_durations" mapstructure:"pacing_durations"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DatabaseConfig holds storage settings. An empty path means ~/.coachlab/data.db
type DatabaseConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// Load reads the configuration from path, or ~/.coachlab/config.json when
// path is empty. Missing values fall back to DefaultConfig and every key can
// be overridden from the environment (COACHLAB_ENGINE_BASELINE_DAYS etc).
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return nil, err
		}
	}
	path = expandPath(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNoConfig
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return unmarshal(v)
}

// LoadOrDefault is Load, but a missing file yields the defaults (with
// environment overrides applied) instead of ErrNoConfig.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrNoConfig) {
		return unmarshal(newViper())
	}
	return cfg, err
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("strava.client_id", d.Strava.ClientID)
	v.SetDefault("strava.client_secret", d.Strava.ClientSecret)
	v.SetDefault("athlete.name", d.Athlete.Name)
	v.SetDefault("athlete.weight_kg", d.Athlete.WeightKg)
	v.SetDefault("engine.min_rr", d.Engine.MinRR)
	v.SetDefault("engine.max_rr", d.Engine.MaxRR)
	v.SetDefault("engine.threshold_percent", d.Engine.ThresholdPercent)
	v.SetDefault("engine.baseline_days", d.Engine.BaselineDays)
	v.SetDefault("engine.yellow_below_percent", d.Engine.YellowBelowPercent)
	v.SetDefault("engine.red_below_percent", d.Engine.RedBelowPercent)
	v.SetDefault("engine.cp_model", d.Engine.CPModel)
	v.SetDefault("engine.readiness_policy_file", d.Engine.ReadinessPolicyFile)
	v.SetDefault("engine.pacing_durations", d.Engine.PacingDurations)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("database.path", d.Database.Path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.Engine.ReadinessPolicyFile = expandPath(cfg.Engine.ReadinessPolicyFile)
	cfg.Database.Path = expandPath(cfg.Database.Path)
	return &cfg, nil
}

// Save writes the configuration to ~/.coachlab/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	example.Athlete.Name = "Me"

	return Save(&example)
}

// Validate checks the engine, logging and athlete settings
func (c *Config) Validate() error {
	e := c.Engine
	if e.MinRR <= 0 || e.MaxRR <= 0 {
		return fmt.Errorf("engine.min_rr (%d) and engine.max_rr (%d) must be positive", e.MinRR, e.MaxRR)
	}
	if e.MinRR >= e.MaxRR {
		return fmt.Errorf("engine.min_rr (%d) must be less than engine.max_rr (%d)", e.MinRR, e.MaxRR)
	}
	if e.ThresholdPercent <= 0 || e.ThresholdPercent >= 100 {
		return fmt.Errorf("engine.threshold_percent must be between 0 and 100, got %v", e.ThresholdPercent)
	}
	if e.BaselineDays <= 0 {
		return fmt.Errorf("engine.baseline_days must be positive, got %d", e.BaselineDays)
	}
	if e.YellowBelowPercent <= 0 || e.YellowBelowPercent >= e.RedBelowPercent {
		return fmt.Errorf("engine.yellow_below_percent (%v) must be positive and less than engine.red_below_percent (%v)",
			e.YellowBelowPercent, e.RedBelowPercent)
	}
	if _, err := analysis.ParseCPModel(e.CPModel); err != nil {
		return fmt.Errorf("engine.cp_model: %w", err)
	}
	for _, d := range e.PacingDurations {
		if d <= 0 {
			return fmt.Errorf("engine.pacing_durations must be positive, got %d", d)
		}
	}

	if c.Athlete.WeightKg < 0 {
		return fmt.Errorf("athlete.weight_kg must not be negative, got %v", c.Athlete.WeightKg)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	return nil
}

// ValidateStrava checks that Strava credentials are present (needed for auth and sync)
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// CleanOptions converts the engine settings into cleaner options
func (e EngineConfig) CleanOptions() analysis.CleanOptions {
	return analysis.CleanOptions{
		MinRR:            e.MinRR,
		MaxRR:            e.MaxRR,
		ThresholdPercent: e.ThresholdPercent,
	}
}

// Model returns the configured critical power model
func (e EngineConfig) Model() analysis.CPModel {
	m, err := analysis.ParseCPModel(e.CPModel)
	if err != nil {
		return analysis.ModelWorkTime
	}
	return m
}

// ReadinessPolicy builds the classification policy from the thresholds,
// overlaid with readiness_policy_file when one is configured.
func (e EngineConfig) ReadinessPolicy() (analysis.ReadinessPolicy, error) {
	policy := analysis.DefaultReadinessPolicy()
	if e.YellowBelowPercent > 0 {
		policy.YellowBelowPercent = e.YellowBelowPercent
	}
	if e.RedBelowPercent > 0 {
		policy.RedBelowPercent = e.RedBelowPercent
	}

	if e.ReadinessPolicyFile == "" {
		return policy, nil
	}
	return LoadReadinessPolicy(e.ReadinessPolicyFile, policy)
}

// PacingSeconds returns the pacing durations as float seconds
func (e EngineConfig) PacingSeconds() []float64 {
	durations := e.PacingDurations
	if len(durations) == 0 {
		durations = DefaultPacingDurations
	}
	out := make([]float64, len(durations))
	for i, d := range durations {
		out[i] = float64(d)
	}
	return out
}

// DBPath returns the configured database path or ~/.coachlab/data.db
func (c *Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data.db"), nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".coachlab"), nil
}

// expandPath replaces a leading ~ with the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
