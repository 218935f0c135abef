package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"gamedex/internal/fetchers"
	"gamedex/internal/services"
)

// Refresh re-ingests service catalogs, either locally or via a running API server.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	region := cmd.String("region")
	if region == "" {
		region = config.Fetcher.Market
	}

	if cmd.Bool("remote") {
		r.writePlain("Requesting refresh from %s...\n", config.Search.APIBaseURL)
		counts, err := r.api.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("remote refresh failed: %w", err)
		}
		for svc, count := range counts {
			r.writePlain("  %s: %d entries\n", svc.DisplayName(), count)
		}
		return nil
	}

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
			r.logger.Warn("no Twitch credentials configured, loading sample catalog data")
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

	r.writePlain("Refreshing catalogs for region %s...\n\n", region)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan fetchers.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case fetchers.FetchCatalog:
				r.writePlain("📥 %s\n", update.Message)
			case fetchers.ResolveGames:
				r.writePlain("   %s\n", update.Message)
			case fetchers.RecordJob:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, region, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Refresh Complete!")
	for svc, count := range result.Counts {
		r.writePlain("%s: %d entries\n", svc.DisplayName(), count)
	}
	if result.Failed > 0 {
		r.writePlain("Failed fetchers: %d (see jobs for details)\n", result.Failed)
	}

	return nil
}

// Jobs lists recent refresh jobs recorded in the database.
func (r *Runner) Jobs(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	store, db, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	jobs, err := store.Jobs.Recent(cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(jobs, cmd.Bool("pretty"))
	}

	if len(jobs) == 0 {
		return r.writePlain("No refresh jobs recorded yet. Run 'gamedex refresh' first.\n")
	}

	r.writePlainHeader("Recent Refresh Jobs")
	for _, job := range jobs {
		status := job.Status
		r.writePlain("%s  %s/%s  %s  inserted=%d\n", job.StartedAt.Format("2006-01-02 15:04"), job.Service.DisplayName(), job.Region, status, job.Inserted)
		if job.Error != "" {
			r.writePlain("    error: %s\n", job.Error)
		}
	}

	return nil
}
