package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fastfile/fastfile/internal/bytesize"
)

// ApplyDefaults fills in default values for any unset configuration fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	cfg.Database.ApplyDefaults()

	if cfg.Storage.Root == "" {
		cfg.Storage.Root = getDefaultStorageRoot()
	}
	if cfg.Storage.Tiers.Free == 0 {
		cfg.Storage.Tiers.Free = 10 * bytesize.GB
	}
	if cfg.Storage.Tiers.Premium == 0 {
		cfg.Storage.Tiers.Premium = 100 * bytesize.GB
	}

	cfg.API.ApplyDefaults()
}

// getDefaultStorageRoot returns the default directory for user files:
// $XDG_DATA_HOME/fastfile/files, falling back to ~/.local/share/fastfile/files.
func getDefaultStorageRoot() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "fastfile", "files")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "fastfile-files")
	}

	return filepath.Join(home, ".local", "share", "fastfile", "files")
}
