package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gamedex/internal/models"
)

// IGDBCacheRepository persists name → IGDB id lookups so repeated catalog
// refreshes don't re-query the remote API for titles already resolved.
//
// Keys are stored lower-cased; lookups are case-insensitive.
type IGDBCacheRepository struct {
	db *sql.DB
}

// NewIGDBCacheRepository creates a new IGDBCacheRepository with the given database connection
func NewIGDBCacheRepository(db *sql.DB) *IGDBCacheRepository {
	return &IGDBCacheRepository{db: db}
}

// Put stores or refreshes the cached payload for a name.
func (r *IGDBCacheRepository) Put(name string, game *models.IGDBGame) error {
	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode IGDB payload: %w", err)
	}

	query := `
		INSERT INTO igdb_cache (name, igdb_id, payload_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			igdb_id = excluded.igdb_id,
			payload_json = excluded.payload_json,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query, strings.ToLower(name), game.IGDBID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert IGDB cache entry: %w", err)
	}

	return nil
}

// Get retrieves the cached payload for a name, returning nil on a miss.
func (r *IGDBCacheRepository) Get(name string) (*models.IGDBGame, error) {
	var payload string

	err := r.db.QueryRow("SELECT payload_json FROM igdb_cache WHERE name = ?", strings.ToLower(name)).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query IGDB cache: %w", err)
	}

	var game models.IGDBGame
	if err := json.Unmarshal([]byte(payload), &game); err != nil {
		return nil, fmt.Errorf("failed to decode IGDB payload: %w", err)
	}

	return &game, nil
}
