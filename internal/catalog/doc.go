// Package catalog implements SQLite persistence for the game availability catalog.
//
// Each repository wraps one table:
//   - [GameRepository] : canonical games keyed by IGDB id
//   - [ItemRepository] : per-service availability rows, unique on (service, igdb_id, region)
//   - [IGDBCacheRepository] : name-keyed IGDB lookup cache
//   - [JobRepository] : ingestion run bookkeeping
//
// List-valued columns (alternate names, platform tokens) are stored as JSON
// text, matching the wire format of the search endpoint. Catalog items are
// upserted: a re-observation refreshes last_seen_at and the payload while
// first_seen_at is preserved, and nothing is ever hard-deleted.
package catalog
