package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fastfile/fastfile/internal/logger"
	"github.com/fastfile/fastfile/pkg/api"
	"github.com/fastfile/fastfile/pkg/config"
	"github.com/fastfile/fastfile/pkg/files"
	"github.com/fastfile/fastfile/pkg/links"
	"github.com/fastfile/fastfile/pkg/storage"
	"github.com/fastfile/fastfile/pkg/store"
	"github.com/fastfile/fastfile/pkg/users"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FastFile server",
	Long: `Start the FastFile server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/fastfile/config.yaml.

Examples:
  # Start with default config
  fastfile serve

  # Start with custom config file
  fastfile serve --config /etc/fastfile/config.yaml

  # Start with environment variable overrides
  FASTFILE_LOGGING_LEVEL=DEBUG fastfile serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := initLogger(cfg); err != nil {
		return err
	}

	logger.Info("configuration loaded",
		"source", configSource(GetConfigFile()),
		"database", cfg.Database.Type,
		"storage_root", cfg.Storage.Root,
	)

	db, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	resolver, err := storage.NewResolver(cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("invalid storage root: %w", err)
	}
	fs := storage.NewFilesystem()
	if err := fs.MkdirAll(resolver.Root()); err != nil {
		return fmt.Errorf("failed to create storage root: %w", err)
	}

	linkSvc := links.NewService(db, resolver, fs)
	userSvc := users.NewService(db, linkSvc, resolver, fs)
	fileSvc := files.NewService(db, linkSvc, resolver, fs, &cfg.Storage.Tiers)

	server, err := api.NewServer(cfg.API, api.Deps{
		Users: userSvc,
		Files: fileSvc,
		Links: linkSvc,
		DB:    db,
	})
	if err != nil {
		return err
	}

	// Cancel on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}

// initLogger initializes the structured logger from configuration.
func initLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// configSource describes where the configuration came from for logging.
func configSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if _, err := os.Stat(config.GetDefaultConfigPath()); err == nil {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
