package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Analysis AnalysisConfig `json:"analysis"`
	Athlete  AthleteConfig  `json:"athlete"`
	Strava   StravaConfig   `json:"strava"`
	Export   ExportConfig   `json:"export"`
	Log      LogConfig      `json:"log"`
}

// AnalysisConfig tunes the alpha1 timeline and the CP fit
type AnalysisConfig struct {
	WindowSeconds int   `json:"window_seconds"`
	StepSeconds   int   `json:"step_seconds"`
	ScaleMin      int   `json:"scale_min"`
	ScaleMax      int   `json:"scale_max"`
	Use3Point     *bool `json:"use_3point,omitempty"`
	MMPDurations  []int `json:"mmp_durations"`
}

// ThreePoint reports whether the hyperbolic CP fit is enabled (default true)
func (a AnalysisConfig) ThreePoint() bool {
	return a.Use3Point == nil || *a.Use3Point
}

// AthleteConfig holds a known capacity. CriticalPower 0 means estimate it per activity.
type AthleteConfig struct {
	CriticalPower float64 `json:"critical_power"` // watts
	WPrime        float64 `json:"w_prime"`        // joules
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// ExportConfig controls Parquet output
type ExportConfig struct {
	Dir string `json:"dir"` // empty disables export
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level string `json:"level"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Analysis: AnalysisConfig{
			WindowSeconds: 120,
			StepSeconds:   30,
			ScaleMin:      4,
			ScaleMax:      16,
			MMPDurations:  []int{180, 360, 720, 900, 1200},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration from ~/.threshold/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path and fills missing values with defaults
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Analysis.WindowSeconds == 0 {
		cfg.Analysis.WindowSeconds = defaults.Analysis.WindowSeconds
	}
	if cfg.Analysis.StepSeconds == 0 {
		cfg.Analysis.StepSeconds = defaults.Analysis.StepSeconds
	}
	if cfg.Analysis.ScaleMin == 0 {
		cfg.Analysis.ScaleMin = defaults.Analysis.ScaleMin
	}
	if cfg.Analysis.ScaleMax == 0 {
		cfg.Analysis.ScaleMax = defaults.Analysis.ScaleMax
	}
	if len(cfg.Analysis.MMPDurations) == 0 {
		cfg.Analysis.MMPDurations = defaults.Analysis.MMPDurations
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.threshold/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	return Save(&example)
}

// Validate checks the analysis and athlete settings
func (c *Config) Validate() error {
	a := c.Analysis
	if a.ScaleMin < 2 {
		return fmt.Errorf("analysis.scale_min must be at least 2, got %d", a.ScaleMin)
	}
	if a.ScaleMax <= a.ScaleMin {
		return fmt.Errorf("analysis.scale_max (%d) must be greater than analysis.scale_min (%d)", a.ScaleMax, a.ScaleMin)
	}
	if a.WindowSeconds <= 0 {
		return fmt.Errorf("analysis.window_seconds must be positive, got %d", a.WindowSeconds)
	}
	if a.StepSeconds <= 0 {
		return fmt.Errorf("analysis.step_seconds must be positive, got %d", a.StepSeconds)
	}
	if a.StepSeconds > a.WindowSeconds {
		return fmt.Errorf("analysis.step_seconds (%d) must not exceed analysis.window_seconds (%d)", a.StepSeconds, a.WindowSeconds)
	}
	for _, d := range a.MMPDurations {
		if d <= 0 {
			return fmt.Errorf("analysis.mmp_durations must be positive, got %d", d)
		}
	}

	if c.Athlete.CriticalPower < 0 {
		return fmt.Errorf("athlete.critical_power must not be negative, got %v", c.Athlete.CriticalPower)
	}
	if c.Athlete.WPrime < 0 {
		return fmt.Errorf("athlete.w_prime must not be negative, got %v", c.Athlete.WPrime)
	}

	if c.Log.Level != "" && !logLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

// ValidateStrava checks the credentials needed to fetch remote activities
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
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
	return filepath.Join(home, ".threshold"), nil
}
