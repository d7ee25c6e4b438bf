package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test analysis defaults
	if cfg.Analysis.WindowSeconds != 120 {
		t.Errorf("Analysis.WindowSeconds = %v, want 120", cfg.Analysis.WindowSeconds)
	}
	if cfg.Analysis.StepSeconds != 30 {
		t.Errorf("Analysis.StepSeconds = %v, want 30", cfg.Analysis.StepSeconds)
	}
	if cfg.Analysis.ScaleMin != 4 || cfg.Analysis.ScaleMax != 16 {
		t.Errorf("Analysis scales = %d..%d, want 4..16", cfg.Analysis.ScaleMin, cfg.Analysis.ScaleMax)
	}
	if !cfg.Analysis.ThreePoint() {
		t.Error("Analysis.ThreePoint() = false, want true by default")
	}
	if len(cfg.Analysis.MMPDurations) != 5 {
		t.Errorf("Analysis.MMPDurations = %v, want 5 durations", cfg.Analysis.MMPDurations)
	}

	// Capacity is estimated unless configured
	if cfg.Athlete.CriticalPower != 0 {
		t.Errorf("Athlete.CriticalPower = %v, want 0", cfg.Athlete.CriticalPower)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Export.Dir != "" {
		t.Errorf("Export.Dir = %q, want empty", cfg.Export.Dir)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errContains string
	}{
		{"defaults", func(c *Config) {}, false, ""},
		{"configured capacity", func(c *Config) { c.Athlete.CriticalPower = 250; c.Athlete.WPrime = 20000 }, false, ""},
		{"scale_min too small", func(c *Config) { c.Analysis.ScaleMin = 1 }, true, "scale_min"},
		{"scale_max not above scale_min", func(c *Config) { c.Analysis.ScaleMax = 4 }, true, "scale_max"},
		{"zero window", func(c *Config) { c.Analysis.WindowSeconds = 0 }, true, "window_seconds"},
		{"negative step", func(c *Config) { c.Analysis.StepSeconds = -30 }, true, "step_seconds"},
		{"step exceeds window", func(c *Config) { c.Analysis.StepSeconds = 180 }, true, "step_seconds"},
		{"bad duration", func(c *Config) { c.Analysis.MMPDurations = []int{180, 0} }, true, "mmp_durations"},
		{"negative cp", func(c *Config) { c.Athlete.CriticalPower = -1 }, true, "critical_power"},
		{"negative w'", func(c *Config) { c.Athlete.WPrime = -1 }, true, "w_prime"},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, true, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStrava(t *testing.T) {
	tests := []struct {
		name        string
		strava      StravaConfig
		errContains string
	}{
		{"valid", StravaConfig{ClientID: "12345", ClientSecret: "abc123secret"}, ""},
		{"empty client ID", StravaConfig{ClientSecret: "abc123secret"}, "client_id"},
		{"placeholder client ID", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc123secret"}, "client_id"},
		{"empty client secret", StravaConfig{ClientID: "12345"}, "client_secret"},
		{"placeholder client secret", StravaConfig{ClientID: "12345", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_secret"},
		{"both placeholders", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_id"}, // first error wins
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strava = tt.strava
			err := cfg.ValidateStrava()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error = %v, want it to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"analysis": {"window_seconds": 180, "use_3point": false},
		"athlete": {"critical_power": 260, "w_prime": 18000},
		"export": {"dir": "/tmp/out"}
	}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Analysis.WindowSeconds != 180 {
		t.Errorf("WindowSeconds = %d, want 180", cfg.Analysis.WindowSeconds)
	}
	if cfg.Analysis.StepSeconds != 30 || cfg.Analysis.ScaleMax != 16 {
		t.Errorf("defaults not applied: %+v", cfg.Analysis)
	}
	if cfg.Analysis.ThreePoint() {
		t.Error("ThreePoint() = true, want false from file")
	}
	if cfg.Athlete.CriticalPower != 260 || cfg.Athlete.WPrime != 18000 {
		t.Errorf("Athlete = %+v", cfg.Athlete)
	}
	if cfg.Export.Dir != "/tmp/out" {
		t.Errorf("Export.Dir = %q", cfg.Export.Dir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := Load(); !errors.Is(err, ErrNoConfig) {
		t.Errorf("Load error = %v, want ErrNoConfig", err)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadFrom(path); err == nil || errors.Is(err, ErrNoConfig) {
		t.Errorf("LoadFrom error = %v, want a parse error", err)
	}
}

func TestCreateExample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := CreateExample(); err != nil {
		t.Fatalf("CreateExample failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load after CreateExample failed: %v", err)
	}
	if cfg.Strava.ClientID != "YOUR_CLIENT_ID" {
		t.Errorf("ClientID = %q, want placeholder", cfg.Strava.ClientID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example config should pass Validate: %v", err)
	}
	if err := cfg.ValidateStrava(); err == nil {
		t.Error("example config should fail ValidateStrava")
	}

	// Existing config is not overwritten
	cfg.Athlete.CriticalPower = 275
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := CreateExample(); err != nil {
		t.Fatalf("second CreateExample failed: %v", err)
	}
	again, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again.Athlete.CriticalPower != 275 {
		t.Errorf("CriticalPower = %v, CreateExample overwrote the config", again.Athlete.CriticalPower)
	}
}
