package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"outagemonitor/internal/config"
	"outagemonitor/internal/logging"
	"outagemonitor/internal/storage"
)

var (
	configPath string
	cfg        config.Config
	logger     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "outagemonitor",
	Short: "Serve planned power outage schedules as JSON",
	Long: `outagemonitor fetches the utility's outage announcement page, extracts the
per-queue off-periods and serves them over HTTP together with the current
supply status of every queue.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file (YAML)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and sets up logging for the running command.
func loadConfig() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = logging.Setup(cfg.Environment, cfg.LogLevel)
	return nil
}

// openStore builds the configured page cache. The returned func releases it.
func openStore() (storage.PageStore, func() error, error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		store, err := storage.NewRedisStore(cfg.Cache.RedisURL, cfg.Cache.RedisKey)
		if err != nil {
			return nil, nil, fmt.Errorf("initialise redis store: %w", err)
		}
		return store, store.Close, nil
	default:
		store, err := storage.NewFileStore(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("initialise file store: %w", err)
		}
		return store, func() error { return nil }, nil
	}
}
