// Package fetchers implements catalog ingestion for subscription services.
//
// Each [Fetcher] observes one service's current catalog and upserts
// catalog_items rows; re-observations refresh last_seen_at, so absence from a
// later run is inferred rather than recorded. The [RefreshEngine] runs
// fetchers, records a jobs row per run, and emits progress updates via
// channels for non-blocking status reporting to the CLI layer.
package fetchers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"gamedex/internal/catalog"
	"gamedex/internal/models"
)

// Fetcher observes one subscription service's catalog.
type Fetcher interface {
	// Service returns the service this fetcher ingests.
	Service() models.Service

	// Refresh pulls the service's current catalog and upserts availability
	// rows for the given region. Returns the number of rows written.
	Refresh(ctx context.Context, region string) (int, error)
}

// Phase enumerates refresh run phases for progress reporting.
type Phase int

const (
	FetchCatalog Phase = iota
	ResolveGames
	RecordJob
)

func (p Phase) String() string {
	switch p {
	case FetchCatalog:
		return "fetch_catalog"
	case ResolveGames:
		return "resolve_games"
	case RecordJob:
		return "record_job"
	default:
		return "unknown"
	}
}

// ProgressUpdate represents a progress event during a refresh run.
type ProgressUpdate struct {
	Phase   Phase          // Operation phase
	Service models.Service // Service being refreshed
	Step    int            // Current step number within phase
	Total   int            // Total steps in this phase (0 when unknown)
	Message string         // Human-readable message for display
}

// RunResult summarises one engine run across all fetchers.
type RunResult struct {
	Counts map[models.Service]int // Rows written per service
	Jobs   []*models.Job          // Job rows recorded, one per fetcher
	Failed int                    // Number of fetchers that errored
}

// RefreshEngine runs fetchers and records each run in the jobs table.
type RefreshEngine struct {
	store    *catalog.Store
	fetchers []Fetcher
	logger   *log.Logger
}

// NewRefreshEngine creates a RefreshEngine over the given fetchers.
func NewRefreshEngine(store *catalog.Store, logger *log.Logger, fetchers ...Fetcher) *RefreshEngine {
	return &RefreshEngine{store: store, fetchers: fetchers, logger: logger}
}

// Run refreshes every fetcher sequentially for the given region.
//
// Each fetcher gets its own jobs row; one fetcher failing marks its job
// failed and moves on, so a dead scrape target can't starve the others. The
// returned error is non-nil only when every fetcher failed.
func (e *RefreshEngine) Run(ctx context.Context, region string, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{Counts: make(map[models.Service]int)}

	for _, fetcher := range e.fetchers {
		svc := fetcher.Service()
		e.sendProgress(progress, ProgressUpdate{
			Phase:   FetchCatalog,
			Service: svc,
			Message: fmt.Sprintf("refreshing %s catalog", svc.DisplayName()),
		})

		job, err := e.store.Jobs.Start(svc, region)
		if err != nil {
			return nil, fmt.Errorf("failed to start job for %s: %w", svc, err)
		}

		inserted, refreshErr := fetcher.Refresh(ctx, region)
		errMsg := ""
		if refreshErr != nil {
			errMsg = refreshErr.Error()
			result.Failed++
			e.logger.Warn("catalog refresh failed", "service", svc, "error", refreshErr)
		}

		e.sendProgress(progress, ProgressUpdate{
			Phase:   RecordJob,
			Service: svc,
			Step:    inserted,
			Message: fmt.Sprintf("%s: %d entries", svc.DisplayName(), inserted),
		})

		if err := e.store.Jobs.Finish(job, inserted, errMsg); err != nil {
			return nil, fmt.Errorf("failed to finish job for %s: %w", svc, err)
		}

		result.Counts[svc] = inserted
		result.Jobs = append(result.Jobs, job)

		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	if len(e.fetchers) > 0 && result.Failed == len(e.fetchers) {
		return result, fmt.Errorf("all %d fetchers failed", result.Failed)
	}

	return result, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks ingestion.
func (e *RefreshEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
