package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gamedex/internal/models"
)

// ItemRepository persists per-service availability observations.
//
// The UNIQUE (service, igdb_id, region) constraint guarantees at most one
// live row per combination; [ItemRepository.Upsert] is the only write path.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Upsert records one observation of a game on a service in a region.
//
// First observation inserts the row with first_seen_at = seenAt; later
// observations refresh the payload and last_seen_at only, so first_seen_at
// keeps the original sighting.
func (r *ItemRepository) Upsert(item *models.CatalogItem, seenAt time.Time) error {
	platforms, err := json.Marshal(orEmpty(item.Platforms))
	if err != nil {
		return fmt.Errorf("failed to encode platforms: %w", err)
	}

	query := `
		INSERT INTO catalog_items (service, igdb_id, service_title, platforms_json, tier, region, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(service, igdb_id, region) DO UPDATE SET
			service_title = excluded.service_title,
			platforms_json = excluded.platforms_json,
			tier = excluded.tier,
			last_seen_at = excluded.last_seen_at
	`

	_, err = r.db.Exec(query,
		string(item.Service),
		item.IGDBID,
		item.ServiceTitle,
		string(platforms),
		nullableString(item.Tier),
		item.Region,
		seenAt.UTC(),
		seenAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog item: %w", err)
	}

	return nil
}

// ByGame retrieves all availability rows for a game in a region.
func (r *ItemRepository) ByGame(igdbID int64, region string) ([]*models.CatalogItem, error) {
	query := `
		SELECT service, igdb_id, service_title, platforms_json, tier, region, first_seen_at, last_seen_at
		FROM catalog_items
		WHERE igdb_id = ? AND region = ?
		ORDER BY service ASC
	`

	rows, err := r.db.Query(query, igdbID, region)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var items []*models.CatalogItem
	for rows.Next() {
		item, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// CountByService returns the number of live rows per service in a region.
func (r *ItemRepository) CountByService(region string) (map[models.Service]int, error) {
	query := `
		SELECT service, COUNT(*)
		FROM catalog_items
		WHERE region = ?
		GROUP BY service
	`

	rows, err := r.db.Query(query, region)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog items: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Service]int)
	for rows.Next() {
		var svc string
		var n int
		if err := rows.Scan(&svc, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.Service(svc)] = n
	}

	return counts, rows.Err()
}

func (r *ItemRepository) scanRow(rows *sql.Rows) (*models.CatalogItem, error) {
	var item models.CatalogItem
	var svc, platformsJSON string
	var tier sql.NullString

	err := rows.Scan(&svc, &item.IGDBID, &item.ServiceTitle, &platformsJSON, &tier, &item.Region, &item.FirstSeenAt, &item.LastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog item: %w", err)
	}

	item.Service = models.Service(svc)
	item.Tier = tier.String
	if err := json.Unmarshal([]byte(platformsJSON), &item.Platforms); err != nil {
		item.Platforms = nil
	}

	return &item, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
