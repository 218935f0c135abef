package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"gamedex/internal/formatter"
	"gamedex/internal/models"
	"gamedex/internal/services"
	"gamedex/internal/shared"
)

// Search runs a one-shot query against the availability API and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	api := r.api
	if config.Search.APIBaseURL != "" {
		api = services.NewAvailabilityClient(config.Search.APIBaseURL, r.httpClient)
	}

	r.logger.Debug("searching catalog", "query", query)

	resp, err := api.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp, cmd.Bool("pretty"))
	}

	selection, err := parseSelection(cmd.String("services"))
	if err != nil {
		return err
	}

	switch cmd.String("format") {
	case "", "text":
		return r.writePlain("%s", formatter.ResultsToText(resp, selection))
	case "csv":
		data, err := formatter.ResultsToCSV(resp)
		if err != nil {
			return fmt.Errorf("failed to render CSV: %w", err)
		}
		return r.writePlain("%s", data)
	case "markdown", "md":
		return r.writePlain("%s", formatter.ResultsToMarkdown(resp))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}
}

// parseSelection turns a comma-separated service list into a [models.SubscriptionSelection].
// An empty list means all subscriptions are held.
func parseSelection(raw string) (models.SubscriptionSelection, error) {
	selection := models.DefaultSelection()
	if strings.TrimSpace(raw) == "" {
		return selection, nil
	}

	held := map[models.Service]bool{}
	for _, token := range strings.Split(raw, ",") {
		svc := models.Service(strings.ToLower(strings.TrimSpace(token)))
		if !svc.Known() {
			return nil, fmt.Errorf("%w: %q", shared.ErrUnknownService, token)
		}
		held[svc] = true
	}

	for _, svc := range models.AllServices() {
		if !held[svc] && selection.Enabled(svc) {
			selection = selection.Toggle(svc)
		}
	}

	return selection, nil
}
