package fetchers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"gamedex/internal/catalog"
	"gamedex/internal/models"
)

//go:embed mock_gamepass.json
var mockGamePassData []byte

// mockEntry mirrors one record of the embedded seed file.
type mockEntry struct {
	IGDBID           int64    `json:"igdb_id"`
	Name             string   `json:"name"`
	ServiceTitle     string   `json:"service_title"`
	FirstReleaseYear int      `json:"first_release_year"`
	Platforms        []string `json:"platforms"`
}

// MockGamePassFetcher loads the embedded Game Pass seed data through the same
// upsert path as the live scraper. Used by `setup --seed` and in tests, and
// as the server's startup catalog when scraping is disabled.
type MockGamePassFetcher struct {
	store *catalog.Store
}

// NewMockGamePassFetcher creates a fetcher over the embedded seed data.
func NewMockGamePassFetcher(store *catalog.Store) *MockGamePassFetcher {
	return &MockGamePassFetcher{store: store}
}

func (f *MockGamePassFetcher) Service() models.Service {
	return models.ServiceGamePass
}

// Refresh upserts every seed entry for the given region.
func (f *MockGamePassFetcher) Refresh(ctx context.Context, region string) (int, error) {
	var entries []mockEntry
	if err := json.Unmarshal(mockGamePassData, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse embedded Game Pass seed: %w", err)
	}

	now := time.Now().UTC()
	inserted := 0

	for _, entry := range entries {
		if ctx.Err() != nil {
			return inserted, ctx.Err()
		}

		if err := f.store.Games.Ensure(entry.IGDBID, entry.Name, entry.FirstReleaseYear); err != nil {
			return inserted, err
		}

		err := f.store.Items.Upsert(&models.CatalogItem{
			Service:      models.ServiceGamePass,
			IGDBID:       entry.IGDBID,
			ServiceTitle: entry.ServiceTitle,
			Platforms:    entry.Platforms,
			Region:       region,
		}, now)
		if err != nil {
			return inserted, err
		}

		inserted++
	}

	return inserted, nil
}
