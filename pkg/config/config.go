// Package config loads and validates FastFile server configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (FASTFILE_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// The loaded Config is passed by reference into every component at
// construction; no package holds configuration in mutable globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/fastfile/fastfile/internal/bytesize"
	"github.com/fastfile/fastfile/pkg/api"
	"github.com/fastfile/fastfile/pkg/store"
)

// Config represents the FastFile server configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database configures the persistence store (SQLite or PostgreSQL) that
	// holds users, file links, and viewer grants.
	Database store.Config `mapstructure:"database" yaml:"database"`

	// Storage configures where user files live on disk and the per-tier quotas.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// API contains HTTP API server configuration.
	API api.Config `mapstructure:"api" yaml:"api"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format (text or json).
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// StorageConfig configures the on-disk file store.
type StorageConfig struct {
	// Root is the directory all user subtrees live under. Each user's files
	// are stored below <root>/<user id>.
	Root string `mapstructure:"root" validate:"required" yaml:"root"`

	// Tiers maps account tiers to storage quotas.
	Tiers TierConfig `mapstructure:"tiers" yaml:"tiers"`
}

// TierConfig holds the byte quota for each account tier. Values accept
// human-readable sizes ("10GB", "500Mi") or plain byte counts.
type TierConfig struct {
	Free    bytesize.ByteSize `mapstructure:"free" yaml:"free"`
	Premium bytesize.ByteSize `mapstructure:"premium" yaml:"premium"`
}

// Limit returns the byte quota for the given tier name, falling back to the
// free tier for unknown values.
func (t *TierConfig) Limit(tier string) int64 {
	if strings.EqualFold(tier, "premium") {
		return t.Premium.Int64()
	}
	return t.Free.Int64()
}

// Load reads configuration from the given path (or the default location when
// empty), applies environment overrides and defaults, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if configFileFound {
		if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable support and config file search.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the FASTFILE_ prefix and underscores.
	// Example: FASTFILE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("FASTFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for custom config types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize so
// config files can use human-readable sizes like "10GB" or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration so config files can
// use human-readable durations like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path: $XDG_CONFIG_HOME/
// fastfile, falling back to ~/.config/fastfile, or "." as a last resort.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fastfile")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "fastfile")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
