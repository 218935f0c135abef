// IGDB API implementation
//
// Query language and auth flow per https://api-docs.igdb.com/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"gamedex/internal/catalog"
	"gamedex/internal/models"
	"gamedex/internal/shared"
)

const (
	igdbBaseURL    = "https://api.igdb.com/v4"
	twitchTokenURL = "https://id.twitch.tv/oauth2/token"
)

// igdbGame mirrors the fields requested from IGDB's /games endpoint.
type igdbGame struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	AlternativeNames []struct {
		Name string `json:"name"`
	} `json:"alternative_names"`
	FirstReleaseDate int64 `json:"first_release_date"`
}

// IGDBClient resolves game names against the IGDB API, writing every remote
// hit through to the local catalog so later lookups (and offline operation)
// are served from cache.
type IGDBClient struct {
	baseURL    string
	clientID   string
	httpClient *http.Client // nil when credentials are not configured
	store      *catalog.Store
	limiter    *rate.Limiter
	logger     *log.Logger

	mu       sync.Mutex
	resolved map[string]int64 // per-run name → id cache; 0 records a miss
}

// NewIGDBClient creates an IGDB client backed by the given catalog store.
//
// Missing Twitch credentials are not an error: the client stays usable and
// every search is served from the local catalog instead of the remote API.
// The token for the client-credentials grant is fetched and refreshed by the
// oauth2 transport.
func NewIGDBClient(clientID, clientSecret string, store *catalog.Store, logger *log.Logger) *IGDBClient {
	c := &IGDBClient{
		baseURL:  igdbBaseURL,
		clientID: clientID,
		store:    store,
		limiter:  rate.NewLimiter(rate.Limit(4), 1), // IGDB allows 4 req/sec
		logger:   logger,
		resolved: make(map[string]int64),
	}

	if clientID != "" && clientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     twitchTokenURL,
		}
		c.httpClient = cc.Client(context.Background())
	}

	return c
}

// SetBaseURL overrides the IGDB endpoint. Used by tests.
func (c *IGDBClient) SetBaseURL(u string) {
	c.baseURL = u
}

// SetHTTPClient overrides the remote transport, bypassing the
// client-credentials flow. Used by tests.
func (c *IGDBClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Remote reports whether the client has credentials for remote lookups.
func (c *IGDBClient) Remote() bool {
	return c.httpClient != nil
}

// SearchGames looks up candidate games for a query.
//
// The remote API is tried first when configured; results are upserted into
// the games table and the igdb_cache. Any remote failure logs a warning and
// falls back to a substring search over the local catalog, so a dead network
// degrades search rather than breaking it.
func (c *IGDBClient) SearchGames(ctx context.Context, query string, limit int) ([]*models.IGDBGame, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	if c.httpClient != nil {
		games, err := c.remoteSearch(ctx, query, limit)
		if err == nil && len(games) > 0 {
			c.cacheResults(games)
			return games, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("falling back to cached IGDB data", "query", query, "error", err)
		}
	}

	return c.localSearch(query, limit)
}

// ResolveID resolves a single game name to an IGDB id, returning 0 when no
// match exists. Results, including misses, are remembered for the rest of the
// run so a full catalog refresh hits each unique title once.
func (c *IGDBClient) ResolveID(ctx context.Context, name string) (int64, error) {
	key := strings.ToLower(name)

	c.mu.Lock()
	id, seen := c.resolved[key]
	c.mu.Unlock()
	if seen {
		return id, nil
	}

	if cached, err := c.store.IGDBCache.Get(name); err == nil && cached != nil {
		c.remember(key, cached.IGDBID)
		return cached.IGDBID, nil
	}

	games, err := c.SearchGames(ctx, name, 1)
	if err != nil {
		return 0, err
	}
	if len(games) == 0 {
		c.remember(key, 0)
		return 0, nil
	}

	c.remember(key, games[0].IGDBID)
	return games[0].IGDBID, nil
}

func (c *IGDBClient) remember(key string, id int64) {
	c.mu.Lock()
	c.resolved[key] = id
	c.mu.Unlock()
}

// remoteSearch POSTs an IGDB query-language body to /games.
func (c *IGDBClient) remoteSearch(ctx context.Context, query string, limit int) ([]*models.IGDBGame, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("search %q; fields name,alternative_names.name,first_release_date; limit %d;", query, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("IGDB search failed with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var remote []igdbGame
	if err := json.Unmarshal(raw, &remote); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	games := make([]*models.IGDBGame, 0, len(remote))
	for _, g := range remote {
		game := &models.IGDBGame{IGDBID: g.ID, Name: g.Name}
		for _, alt := range g.AlternativeNames {
			if alt.Name != "" {
				game.AltNames = append(game.AltNames, alt.Name)
			}
		}
		if g.FirstReleaseDate > 0 {
			game.FirstReleaseYear = time.Unix(g.FirstReleaseDate, 0).UTC().Year()
		}
		games = append(games, game)
	}

	return games, nil
}

// cacheResults writes remote hits through to the games table and the lookup
// cache. Failures are logged and skipped — a broken cache write must not fail
// the search that produced it.
func (c *IGDBClient) cacheResults(games []*models.IGDBGame) {
	for _, game := range games {
		err := c.store.Games.Upsert(&models.Game{
			IGDBID:           game.IGDBID,
			Name:             game.Name,
			AltNames:         game.AltNames,
			FirstReleaseYear: game.FirstReleaseYear,
		})
		if err == nil {
			err = c.store.IGDBCache.Put(game.Name, game)
		}
		if err != nil {
			c.logger.Debug("unable to cache IGDB record", "igdb_id", game.IGDBID, "error", err)
		}
	}
}

// localSearch serves results from the games table.
func (c *IGDBClient) localSearch(query string, limit int) ([]*models.IGDBGame, error) {
	rows, err := c.store.Games.Find(query, limit)
	if err != nil {
		return nil, err
	}

	games := make([]*models.IGDBGame, 0, len(rows))
	for _, row := range rows {
		games = append(games, &models.IGDBGame{
			IGDBID:           row.IGDBID,
			Name:             row.Name,
			AltNames:         row.AltNames,
			FirstReleaseYear: row.FirstReleaseYear,
		})
	}

	return games, nil
}
