package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamedex/internal/catalog"
	"gamedex/internal/fetchers"
	"gamedex/internal/models"
	"gamedex/internal/services"
	"gamedex/internal/shared"
	tu "gamedex/internal/testing"
)

func newTestServer(t *testing.T, store *catalog.Store) *httptest.Server {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	igdb := services.NewIGDBClient("", "", store, logger)
	engine := fetchers.NewRefreshEngine(store, logger, fetchers.NewMockGamePassFetcher(store))

	srv := New(Config{Region: "US"}, store, igdb, engine, logger)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func seedGame(t *testing.T, store *catalog.Store) {
	t.Helper()

	if err := store.Games.Upsert(&models.Game{IGDBID: 1942, Name: "Hades", FirstReleaseYear: 2020}); err != nil {
		t.Fatalf("failed to seed game: %v", err)
	}
	item := &models.CatalogItem{
		Service:      models.ServiceGamePass,
		IGDBID:       1942,
		ServiceTitle: "Hades",
		Platforms:    []string{"pc", "console"},
		Tier:         "Standard",
		Region:       "US",
	}
	seen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Items.Upsert(item, seen); err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, catalog.NewStore(tu.MustOpenDB(t)))

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	var payload map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !payload["ok"] {
		t.Error("expected ok=true")
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("ReturnsAvailabilityPerService", func(t *testing.T) {
		store := catalog.NewStore(tu.MustOpenDB(t))
		seedGame(t, store)
		ts := newTestServer(t, store)

		resp, err := http.Get(ts.URL + "/search?q=hades")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var payload models.SearchResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if payload.Query != "hades" {
			t.Errorf("expected echoed query, got %q", payload.Query)
		}
		if len(payload.Results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(payload.Results))
		}

		result := payload.Results[0]
		if result.IGDBID != 1942 || result.FirstReleaseYear != 2020 {
			t.Errorf("unexpected result: %+v", result)
		}
		if len(result.Services) != len(models.AllServices()) {
			t.Errorf("every service should appear, got %v", result.Services)
		}

		gp := result.Services[models.ServiceGamePass]
		if !gp.Available {
			t.Error("gamepass should be available")
		}
		if gp.Tier != "Standard" {
			t.Errorf("expected tier Standard, got %q", gp.Tier)
		}
		if gp.FirstSeenAt != "2024-03-01T12:00:00Z" {
			t.Errorf("unexpected first_seen_at: %q", gp.FirstSeenAt)
		}
		if result.Services[models.ServicePSPlus].Available {
			t.Error("psplus should not be available")
		}
	})

	t.Run("NoMatchesReturnsEmptyList", func(t *testing.T) {
		ts := newTestServer(t, catalog.NewStore(tu.MustOpenDB(t)))

		resp, err := http.Get(ts.URL + "/search?q=nothing")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		body, _ := io.ReadAll(resp.Body)
		var payload struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload.Results == nil {
			t.Errorf("results should serialise as an empty list, body: %s", body)
		}
	})
}

func TestRefreshEndpoint(t *testing.T) {
	store := catalog.NewStore(tu.MustOpenDB(t))
	ts := newTestServer(t, store)

	resp, err := http.Post(ts.URL+"/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Status string                 `json:"status"`
		Counts map[models.Service]int `json:"counts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Errorf("expected status ok, got %q", payload.Status)
	}
	if payload.Counts[models.ServiceGamePass] == 0 {
		t.Error("refresh should ingest the seed catalog")
	}

	counts, err := store.Items.CountByService("US")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts[models.ServiceGamePass] != payload.Counts[models.ServiceGamePass] {
		t.Errorf("reported counts should match stored rows: %v vs %v", payload.Counts, counts)
	}
}
