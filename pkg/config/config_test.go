package config

import (
	"strings"
	"testing"
	"time"

	"github.com/fastfile/fastfile/internal/bytesize"
)

func defaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := defaultConfig()

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_Storage(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Storage.Root == "" {
		t.Error("Expected default storage root to be set")
	}
	if cfg.Storage.Tiers.Free != 10*bytesize.GB {
		t.Errorf("Expected default free quota 10GB, got %s", cfg.Storage.Tiers.Free)
	}
	if cfg.Storage.Tiers.Premium != 100*bytesize.GB {
		t.Errorf("Expected default premium quota 100GB, got %s", cfg.Storage.Tiers.Premium)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/fastfile.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Storage: StorageConfig{
			Root: "/srv/fastfile",
			Tiers: TierConfig{
				Free:    bytesize.GB,
				Premium: 5 * bytesize.GB,
			},
		},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit shutdown timeout to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Storage.Root != "/srv/fastfile" {
		t.Errorf("Expected explicit storage root to be preserved, got %q", cfg.Storage.Root)
	}
	if cfg.Storage.Tiers.Free != bytesize.GB {
		t.Errorf("Expected explicit free quota to be preserved, got %s", cfg.Storage.Tiers.Free)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(defaultConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("Expected error to name logging.level, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_MissingStorageRoot(t *testing.T) {
	cfg := defaultConfig()
	cfg.Storage.Root = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing storage root")
	}
	if !strings.Contains(err.Error(), "storage.root") {
		t.Errorf("Expected error to name storage.root, got: %v", err)
	}
}

func TestValidate_ZeroShutdownTimeout(t *testing.T) {
	cfg := defaultConfig()
	cfg.ShutdownTimeout = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for zero shutdown timeout")
	}
}

func TestValidate_PremiumBelowFree(t *testing.T) {
	cfg := defaultConfig()
	cfg.Storage.Tiers.Free = 10 * bytesize.GB
	cfg.Storage.Tiers.Premium = bytesize.GB

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for premium quota below free")
	}
	if !strings.Contains(err.Error(), "premium") {
		t.Errorf("Expected error about premium quota, got: %v", err)
	}
}

func TestTierConfig_Limit(t *testing.T) {
	tiers := TierConfig{
		Free:    bytesize.GB,
		Premium: 10 * bytesize.GB,
	}

	tests := []struct {
		tier string
		want int64
	}{
		{"free", tiers.Free.Int64()},
		{"premium", tiers.Premium.Int64()},
		{"PREMIUM", tiers.Premium.Int64()},
		{"", tiers.Free.Int64()},
		{"unknown", tiers.Free.Int64()},
	}

	for _, tc := range tests {
		if got := tiers.Limit(tc.tier); got != tc.want {
			t.Errorf("Limit(%q): expected %d, got %d", tc.tier, tc.want, got)
		}
	}
}
