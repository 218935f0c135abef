// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"gamedex/internal/models"
	"gamedex/internal/shared"
)

// MockSearchAPI is a test double for [ui.SearchAPI].
//
// Responses are returned in order; the final response repeats once the list
// is exhausted. Calls counts dispatched searches.
type MockSearchAPI struct {
	Responses []MockSearchResponse
	Calls     atomic.Int32
	Block     chan struct{} // when non-nil, Search waits for a receive or ctx cancellation
}

// MockSearchResponse is one canned search outcome.
type MockSearchResponse struct {
	Results []models.SearchResult
	Err     error
}

func (m *MockSearchAPI) Search(ctx context.Context, q string) (*models.SearchResponse, error) {
	n := int(m.Calls.Add(1)) - 1

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(m.Responses) == 0 {
		return &models.SearchResponse{Query: q, Results: []models.SearchResult{}}, nil
	}
	if n >= len(m.Responses) {
		n = len(m.Responses) - 1
	}

	resp := m.Responses[n]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &models.SearchResponse{Query: q, Results: resp.Results}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// MustOpenDB opens an in-memory SQLite database with migrations applied.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Every pooled connection to :memory: would get its own database.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}
