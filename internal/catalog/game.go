package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gamedex/internal/models"
)

// GameRepository persists canonical games keyed by IGDB id.
type GameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository with the given database connection
func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Upsert inserts a game or refreshes its name, alternate names, and release
// year when a row for the IGDB id already exists.
func (r *GameRepository) Upsert(game *models.Game) error {
	altNames, err := json.Marshal(orEmpty(game.AltNames))
	if err != nil {
		return fmt.Errorf("failed to encode alt names: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO games (igdb_id, name, alt_names_json, first_release_year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(igdb_id) DO UPDATE SET
			name = excluded.name,
			alt_names_json = excluded.alt_names_json,
			first_release_year = excluded.first_release_year,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query, game.IGDBID, game.Name, string(altNames), nullableYear(game.FirstReleaseYear), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// Ensure inserts a game only if no row exists for the IGDB id.
// Used by fetchers so catalog observations never clobber richer IGDB data.
func (r *GameRepository) Ensure(igdbID int64, name string, firstReleaseYear int) error {
	existing, err := r.Get(igdbID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	return r.Upsert(&models.Game{
		IGDBID:           igdbID,
		Name:             name,
		AltNames:         []string{name},
		FirstReleaseYear: firstReleaseYear,
	})
}

// Get retrieves a game by IGDB id, returning nil when absent.
func (r *GameRepository) Get(igdbID int64) (*models.Game, error) {
	query := `
		SELECT igdb_id, name, alt_names_json, first_release_year, created_at, updated_at
		FROM games
		WHERE igdb_id = ?
	`

	game, err := r.scanOne(r.db.QueryRow(query, igdbID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return game, err
}

// Find searches games by substring match over name and alternate names,
// ordered by name, capped at limit. The pattern is matched case-insensitively.
func (r *GameRepository) Find(pattern string, limit int) ([]*models.Game, error) {
	like := "%" + strings.ToLower(pattern) + "%"

	query := `
		SELECT igdb_id, name, alt_names_json, first_release_year, created_at, updated_at
		FROM games
		WHERE lower(name) LIKE ? OR lower(alt_names_json) LIKE ?
		ORDER BY name ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

func (r *GameRepository) scanOne(row *sql.Row) (*models.Game, error) {
	var game models.Game
	var altNamesJSON string
	var year sql.NullInt64

	err := row.Scan(&game.IGDBID, &game.Name, &altNamesJSON, &year, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	decodeGame(&game, altNamesJSON, year)
	return &game, nil
}

func (r *GameRepository) scanRow(rows *sql.Rows) (*models.Game, error) {
	var game models.Game
	var altNamesJSON string
	var year sql.NullInt64

	err := rows.Scan(&game.IGDBID, &game.Name, &altNamesJSON, &year, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	decodeGame(&game, altNamesJSON, year)
	return &game, nil
}

// decodeGame fills the JSON and nullable columns; a corrupt alt_names_json
// degrades to no alternate names rather than failing the whole query.
func decodeGame(game *models.Game, altNamesJSON string, year sql.NullInt64) {
	if err := json.Unmarshal([]byte(altNamesJSON), &game.AltNames); err != nil {
		game.AltNames = nil
	}
	if year.Valid {
		game.FirstReleaseYear = int(year.Int64)
	}
}

func nullableYear(year int) any {
	if year == 0 {
		return nil
	}
	return year
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
