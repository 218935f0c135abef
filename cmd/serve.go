package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"gamedex/internal/fetchers"
	"gamedex/internal/server"
	"gamedex/internal/services"
)

// Serve runs the availability API server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	store, db, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	igdb := services.NewIGDBClient(
		config.Credentials.Twitch.ClientID,
		config.Credentials.Twitch.ClientSecret,
		store,
		r.logger,
	)

	var engineFetchers []fetchers.Fetcher
	if cmd.Bool("mock") || !igdb.Remote() {
		if !cmd.Bool("mock") {
			r.logger.Warn("no Twitch credentials configured, serving sample catalog data")
		}
		engineFetchers = append(engineFetchers, fetchers.NewMockGamePassFetcher(store))
	} else {
		engineFetchers = append(engineFetchers, fetchers.NewGamePassFetcher(store, igdb, r.logger, fetchers.GamePassOpts{
			HTTPClient: r.httpClient,
			Language:   config.Fetcher.Language,
			MaxPages:   config.Fetcher.MaxPages,
			RateLimit:  config.Fetcher.RateLimit,
		}))
	}

	engine := fetchers.NewRefreshEngine(store, r.logger, engineFetchers...)

	host := config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := config.Server.Port
	if cmd.Int("port") != 0 {
		port = cmd.Int("port")
	}

	srv := server.New(server.Config{
		Host:        host,
		Port:        port,
		Region:      config.Search.Region,
		SearchLimit: config.Search.Limit,
	}, store, igdb, engine, r.logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
