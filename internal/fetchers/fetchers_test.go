package fetchers

import (
	"context"
	"errors"
	"io"
	"testing"

	"gamedex/internal/catalog"
	"gamedex/internal/models"
	"gamedex/internal/shared"
	tu "gamedex/internal/testing"
)

// stubFetcher returns canned results for engine tests.
type stubFetcher struct {
	svc      models.Service
	inserted int
	err      error
}

func (f *stubFetcher) Service() models.Service { return f.svc }

func (f *stubFetcher) Refresh(ctx context.Context, region string) (int, error) {
	return f.inserted, f.err
}

func TestRefreshEngine(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("RecordsJobPerFetcher", func(t *testing.T) {
		store := catalog.NewStore(tu.MustOpenDB(t))
		engine := NewRefreshEngine(store, logger,
			&stubFetcher{svc: models.ServiceGamePass, inserted: 8},
			&stubFetcher{svc: models.ServicePSPlus, inserted: 3},
		)

		result, err := engine.Run(context.Background(), "US", nil)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if result.Counts[models.ServiceGamePass] != 8 || result.Counts[models.ServicePSPlus] != 3 {
			t.Errorf("unexpected counts: %v", result.Counts)
		}
		if len(result.Jobs) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(result.Jobs))
		}

		jobs, err := store.Jobs.Recent(10)
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(jobs) != 2 {
			t.Fatalf("expected 2 persisted jobs, got %d", len(jobs))
		}
		for _, job := range jobs {
			if job.Status != models.JobOK {
				t.Errorf("expected ok job, got %s for %s", job.Status, job.Service)
			}
		}
	})

	t.Run("ContinuesPastSingleFailure", func(t *testing.T) {
		store := catalog.NewStore(tu.MustOpenDB(t))
		engine := NewRefreshEngine(store, logger,
			&stubFetcher{svc: models.ServiceGamePass, err: errors.New("listing unreachable")},
			&stubFetcher{svc: models.ServicePSPlus, inserted: 3},
		)

		result, err := engine.Run(context.Background(), "US", nil)
		if err != nil {
			t.Fatalf("one failing fetcher should not fail the run: %v", err)
		}
		if result.Failed != 1 {
			t.Errorf("expected 1 failed fetcher, got %d", result.Failed)
		}
		if result.Counts[models.ServicePSPlus] != 3 {
			t.Errorf("healthy fetcher should still run, got counts %v", result.Counts)
		}

		jobs, err := store.Jobs.Recent(10)
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		var failed *models.Job
		for _, job := range jobs {
			if job.Service == models.ServiceGamePass {
				failed = job
			}
		}
		if failed == nil || failed.Status != models.JobFailed {
			t.Errorf("failing fetcher should record a failed job, got %+v", failed)
		}
		if failed != nil && failed.Error != "listing unreachable" {
			t.Errorf("expected recorded error message, got %q", failed.Error)
		}
	})

	t.Run("AllFailedIsAnError", func(t *testing.T) {
		store := catalog.NewStore(tu.MustOpenDB(t))
		engine := NewRefreshEngine(store, logger,
			&stubFetcher{svc: models.ServiceGamePass, err: errors.New("down")},
			&stubFetcher{svc: models.ServicePSPlus, err: errors.New("down")},
		)

		if _, err := engine.Run(context.Background(), "US", nil); err == nil {
			t.Error("expected error when every fetcher fails")
		}
	})

	t.Run("ProgressNeverBlocks", func(t *testing.T) {
		store := catalog.NewStore(tu.MustOpenDB(t))
		engine := NewRefreshEngine(store, logger, &stubFetcher{svc: models.ServiceGamePass, inserted: 1})

		// Unbuffered channel with no reader; sends must be dropped, not block.
		progress := make(chan ProgressUpdate)
		if _, err := engine.Run(context.Background(), "US", progress); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	})
}
