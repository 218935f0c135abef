// Client for the gamedex availability API (search endpoint)
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gamedex/internal/models"
	"gamedex/internal/shared"
)

// AvailabilityClient queries the availability API for games and their
// per-service subscription status.
type AvailabilityClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAvailabilityClient creates a client for the availability API at baseURL.
//
// The base URL is passed explicitly so callers wire it from configuration
// rather than a process-wide default; it falls back to the local server
// address when empty.
func NewAvailabilityClient(baseURL string, client *http.Client) *AvailabilityClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AvailabilityClient{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Search queries the availability API for games matching q.
//
// A non-2xx response is an error whose message embeds the HTTP status code.
// A 2xx response with a missing or null results list yields an empty slice.
// Context cancellation propagates unchanged so callers can tell a superseded
// request apart from a real failure.
func (c *AvailabilityClient) Search(ctx context.Context, q string) (*models.SearchResponse, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(q))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var payload models.SearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if payload.Results == nil {
		payload.Results = []models.SearchResult{}
	}

	return &payload, nil
}

// Health checks the availability API's health endpoint.
func (c *AvailabilityClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	return nil
}

// Refresh asks the availability API to re-run catalog ingestion and returns
// the inserted counts per service.
func (c *AvailabilityClient) Refresh(ctx context.Context) (map[models.Service]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refresh", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("refresh failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Status string                 `json:"status"`
		Counts map[models.Service]int `json:"counts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return payload.Counts, nil
}
