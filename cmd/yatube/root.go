package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DariaKalinichenko/Yatube/internal/app/runtime"
	"github.com/DariaKalinichenko/Yatube/internal/config"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "yatube",
		Short:         "Yatube social blogging service",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (overrides YATUBE_CONFIG)")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreateUserCommand(),
		newCreateGroupCommand(),
		newListUsersCommand(),
		newDeletePostCommand(),
		newCacheCommand(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("YATUBE_CONFIG", configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// requirement rejects a configuration the command cannot act on.
type requirement func(cfg *config.Config) error

// requirePostgres refuses to run against the in-memory store, which would
// be thrown away when the command exits.
func requirePostgres(cfg *config.Config) error {
	if !cfg.UsesPostgres() {
		return errors.New("DATABASE_URL is required: the in-memory store does not outlive this command")
	}
	return nil
}

// requireSharedCache refuses to clear a cache that lives only in this process.
func requireSharedCache(cfg *config.Config) error {
	if !cfg.UsesSharedCache() {
		return errors.New("REDIS_URL is required: only the redis page cache is shared with the server")
	}
	return nil
}

// withApplication builds the application without starting the HTTP server,
// runs fn and releases the database and cache afterwards.
func withApplication(need requirement, fn func(ctx context.Context, a *runtime.Application) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := need(cfg); err != nil {
		return err
	}
	a, err := runtime.NewApplication(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runErr := fn(ctx, a)
	if err := a.Shutdown(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
