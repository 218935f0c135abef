package catalog

import "database/sql"

// Store bundles the catalog repositories behind one handle.
// The server, the fetchers, and the IGDB client all share a Store.
type Store struct {
	Games     *GameRepository
	Items     *ItemRepository
	IGDBCache *IGDBCacheRepository
	Jobs      *JobRepository
}

// NewStore creates a Store with all repositories backed by the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Games:     NewGameRepository(db),
		Items:     NewItemRepository(db),
		IGDBCache: NewIGDBCacheRepository(db),
		Jobs:      NewJobRepository(db),
	}
}
