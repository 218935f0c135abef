package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"gamedex/internal/fetchers"
	"gamedex/internal/shared"
)

// Setup initializes the config file and the catalog database, running migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.config = config
	r.logger.Info("initializing database", "path", config.Database.Path)

	store, db, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("seed") {
		r.logger.Info("seeding catalog with sample Game Pass data")
		mock := fetchers.NewMockGamePassFetcher(store)
		inserted, err := mock.Refresh(ctx, config.Fetcher.Market)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		r.logger.Info("seed complete", "inserted", inserted)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
