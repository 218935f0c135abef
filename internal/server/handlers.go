package server

import (
	"net/http"
	"strings"

	"gamedex/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleSearch resolves candidates via the IGDB client (remote with local
// fallback) and fans each one out to its per-service availability summary.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	candidates, err := s.igdb.SearchGames(r.Context(), query, s.config.SearchLimit)
	if err != nil {
		s.logger.Warn("search failed", "query", query, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}

	results := make([]models.SearchResult, 0, len(candidates))
	for _, candidate := range candidates {
		items, err := s.store.Items.ByGame(candidate.IGDBID, s.config.Region)
		if err != nil {
			s.logger.Warn("failed to load catalog items", "igdb_id", candidate.IGDBID, "error", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog lookup failed"})
			return
		}

		result := models.SearchResult{
			IGDBID:           candidate.IGDBID,
			Name:             candidate.Name,
			FirstReleaseYear: candidate.FirstReleaseYear,
			Services:         make(map[models.Service]models.ServiceAvailability, len(models.AllServices())),
		}
		for _, svc := range models.AllServices() {
			result.Services[svc] = summariseService(items, svc)
		}

		results = append(results, result)
	}

	s.writeJSON(w, http.StatusOK, models.SearchResponse{Query: query, Results: results})
}

// handleRefresh re-runs catalog ingestion and reports inserted counts.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Run(r.Context(), s.config.Region, nil)
	if err != nil {
		s.logger.Error("catalog refresh failed", "error", err)
		s.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "refresh failed"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"counts": result.Counts,
	})
}

// summariseService reduces a game's catalog rows to one service's
// availability payload. With multiple rows for a service (shouldn't happen
// within one region, but regions aside) the most recently seen one wins.
func summariseService(items []*models.CatalogItem, svc models.Service) models.ServiceAvailability {
	var latest *models.CatalogItem
	for _, item := range items {
		if item.Service != svc {
			continue
		}
		if latest == nil || item.LastSeenAt.After(latest.LastSeenAt) {
			latest = item
		}
	}

	if latest == nil {
		return models.ServiceAvailability{Available: false}
	}

	return models.ServiceAvailability{
		Available:    true,
		ServiceTitle: latest.ServiceTitle,
		Tier:         latest.Tier,
		Platforms:    latest.Platforms,
		FirstSeenAt:  latest.FirstSeenAt.UTC().Format("2006-01-02T15:04:05Z"),
		LastSeenAt:   latest.LastSeenAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
