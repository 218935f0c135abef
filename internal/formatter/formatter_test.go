package formatter

import (
	"encoding/csv"
	"strings"
	"testing"

	"gamedex/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query: "hades",
		Results: []models.SearchResult{
			{
				IGDBID:           1942,
				Name:             "Hades",
				FirstReleaseYear: 2020,
				Services: map[models.Service]models.ServiceAvailability{
					models.ServiceGamePass: {
						Available: true,
						Tier:      "Standard",
						Platforms: []string{"pc", "console"},
					},
					models.ServicePSPlus:      {Available: true, Tier: "Extra"},
					models.ServiceUbisoftPlus: {Available: false},
				},
			},
		},
	}
}

func TestResultsToText(t *testing.T) {
	t.Run("RendersBadgesPerService", func(t *testing.T) {
		out := ResultsToText(sampleResponse(), models.DefaultSelection())

		if !strings.Contains(out, "Hades (2020)") {
			t.Errorf("expected game header with year, got:\n%s", out)
		}
		if !strings.Contains(out, "Game Pass: available · Standard [Pc · Console]") {
			t.Errorf("expected gamepass badge line, got:\n%s", out)
		}
		if !strings.Contains(out, "Ubisoft+: not available") {
			t.Errorf("expected ubisoft badge line, got:\n%s", out)
		}
	})

	t.Run("MarksUnsubscribedServices", func(t *testing.T) {
		selection := models.DefaultSelection().Toggle(models.ServicePSPlus)
		out := ResultsToText(sampleResponse(), selection)

		if !strings.Contains(out, "PS Plus: available · Extra") {
			t.Errorf("unsubscribed service should keep truthful availability, got:\n%s", out)
		}
		if !strings.Contains(out, "(not subscribed)") {
			t.Errorf("expected not-subscribed marker, got:\n%s", out)
		}
	})

	t.Run("EmptyResults", func(t *testing.T) {
		out := ResultsToText(&models.SearchResponse{Query: "nothing"}, models.DefaultSelection())
		if !strings.Contains(out, `No games found for "nothing"`) {
			t.Errorf("expected empty-state message, got:\n%s", out)
		}
	})
}

func TestResultsToCSV(t *testing.T) {
	data, err := ResultsToCSV(sampleResponse())
	if err != nil {
		t.Fatalf("CSV rendering failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// Header plus one row per service.
	if len(records) != 1+len(models.AllServices()) {
		t.Fatalf("expected %d records, got %d", 1+len(models.AllServices()), len(records))
	}
	if records[0][0] != "IGDB ID" {
		t.Errorf("unexpected header: %v", records[0])
	}

	gamepass := records[1]
	if gamepass[3] != "gamepass" || gamepass[4] != "true" || gamepass[5] != "Standard" {
		t.Errorf("unexpected gamepass row: %v", gamepass)
	}

	ubisoft := records[3]
	if ubisoft[3] != "ubisoftplus" || ubisoft[4] != "false" {
		t.Errorf("unexpected ubisoft row: %v", ubisoft)
	}
	if ubisoft[6] != "" {
		t.Errorf("unavailable service should have no platforms, got %q", ubisoft[6])
	}
}

func TestResultsToMarkdown(t *testing.T) {
	out := string(ResultsToMarkdown(sampleResponse()))

	if !strings.Contains(out, `# Search results for "hades"`) {
		t.Errorf("expected title, got:\n%s", out)
	}
	if !strings.Contains(out, "| Game | Year | Game Pass | PS Plus | Ubisoft+ |") {
		t.Errorf("expected header row, got:\n%s", out)
	}
	if !strings.Contains(out, "| Hades | 2020 | ✓ Standard | ✓ Extra | — |") {
		t.Errorf("expected result row, got:\n%s", out)
	}
}
