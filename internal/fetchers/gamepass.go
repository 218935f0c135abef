// Game Pass catalog ingestion via the AppAgg listing pages.
//
// AppAgg aggregates the Microsoft Store's Game Pass listing into plain HTML,
// which is considerably more stable to scrape than the store itself.
package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"gamedex/internal/catalog"
	"gamedex/internal/models"
	"gamedex/internal/services"
)

const (
	appaggBaseURL   = "https://appagg.com/search/@gamepass:xbox/"
	defaultMaxPages = 50
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// gamePassEntry is one product card parsed off an AppAgg listing page.
type gamePassEntry struct {
	ID          string
	Title       string
	Platforms   []string
	ReleaseYear int
}

// GamePassFetcher ingests the Xbox Game Pass catalog.
type GamePassFetcher struct {
	store      *catalog.Store
	igdb       *services.IGDBClient
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	listingURL string
	language   string
	maxPages   int
}

// GamePassOpts contains configuration for the Game Pass fetcher.
type GamePassOpts struct {
	HTTPClient *http.Client
	ListingURL string  // Override for tests; defaults to the AppAgg listing
	Language   string  // hl query parameter (default en-us)
	MaxPages   int     // Pagination cap (default 50)
	RateLimit  float64 // Page requests per second (default 2)
}

// NewGamePassFetcher creates a Game Pass fetcher writing into the given store.
func NewGamePassFetcher(store *catalog.Store, igdb *services.IGDBClient, logger *log.Logger, opts GamePassOpts) *GamePassFetcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.ListingURL == "" {
		opts.ListingURL = appaggBaseURL
	}
	if opts.Language == "" {
		opts.Language = "en-us"
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	return &GamePassFetcher{
		store:      store,
		igdb:       igdb,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:     logger,
		listingURL: opts.ListingURL,
		language:   strings.ToLower(opts.Language),
		maxPages:   opts.MaxPages,
	}
}

func (f *GamePassFetcher) Service() models.Service {
	return models.ServiceGamePass
}

// Refresh walks the AppAgg listing page by page, resolving each entry to an
// IGDB id and upserting its availability row. Entries without an IGDB match
// are skipped. A download failure mid-pagination keeps what was ingested so
// far rather than failing the run.
func (f *GamePassFetcher) Refresh(ctx context.Context, region string) (int, error) {
	now := time.Now().UTC()
	inserted := 0

	for page := 1; page <= f.maxPages; page++ {
		markup, err := f.fetchPage(ctx, page)
		if err != nil {
			if page == 1 {
				return 0, fmt.Errorf("failed to download Game Pass listing: %w", err)
			}
			f.logger.Warn("unable to download Game Pass page", "page", page, "error", err)
			break
		}

		entries, hasNext, err := parseListing(markup, f.listingURL)
		if err != nil {
			return inserted, fmt.Errorf("failed to parse Game Pass page %d: %w", page, err)
		}
		if len(entries) == 0 && page == 1 {
			return 0, fmt.Errorf("no Game Pass entries detected on the first listing page")
		}

		for _, entry := range entries {
			n, err := f.ingest(ctx, entry, region, now)
			if err != nil {
				if ctx.Err() != nil {
					return inserted, ctx.Err()
				}
				f.logger.Warn("failed to ingest Game Pass entry", "title", entry.Title, "error", err)
				continue
			}
			inserted += n
		}

		if !hasNext {
			break
		}
	}

	return inserted, nil
}

// ingest resolves one entry against IGDB and writes its catalog row.
// Returns 1 when a row was written, 0 when the entry had no IGDB match.
func (f *GamePassFetcher) ingest(ctx context.Context, entry gamePassEntry, region string, seenAt time.Time) (int, error) {
	igdbID, err := f.igdb.ResolveID(ctx, entry.Title)
	if err != nil {
		return 0, err
	}
	if igdbID == 0 {
		f.logger.Debug("skipping Game Pass entry without IGDB match", "title", entry.Title)
		return 0, nil
	}

	if err := f.store.Games.Ensure(igdbID, entry.Title, entry.ReleaseYear); err != nil {
		return 0, err
	}

	err = f.store.Items.Upsert(&models.CatalogItem{
		Service:      models.ServiceGamePass,
		IGDBID:       igdbID,
		ServiceTitle: entry.Title,
		Platforms:    entry.Platforms,
		Region:       region,
	}, seenAt)
	if err != nil {
		return 0, err
	}

	return 1, nil
}

func (f *GamePassFetcher) fetchPage(ctx context.Context, page int) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{"hl": {f.language}}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.listingURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}

// parseListing extracts product entries and the next-page marker from one
// AppAgg listing page.
func parseListing(markup, base string) ([]gamePassEntry, bool, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, false, err
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, false, err
	}

	entries := make(map[string]*gamePassEntry)
	hasNext := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if isNextLink(n) {
				hasNext = true
			}
			collectEntry(n, baseURL, entries)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	out := make([]gamePassEntry, 0, len(entries))
	for _, entry := range entries {
		sort.Strings(entry.Platforms)
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, hasNext, nil
}

// collectEntry inspects one anchor and merges it into the entry map when it
// links to a Microsoft Store product.
func collectEntry(anchor *html.Node, base *url.URL, entries map[string]*gamePassEntry) {
	href := attr(anchor, "href")
	if href == "" {
		return
	}

	ref, err := url.Parse(href)
	if err != nil {
		return
	}
	full := base.ResolveReference(ref)

	// Listing self-links and filter links stay on appagg.com.
	if !strings.Contains(full.Host, "microsoft.com") {
		return
	}

	title := strings.TrimSpace(nodeText(anchor))
	if title == "" {
		return
	}

	card := cardAncestor(anchor)
	cardText := nodeText(card)

	id := productID(full, title)
	entry := entries[id]
	if entry == nil {
		entry = &gamePassEntry{ID: id, Title: title}
		entries[id] = entry
	}

	entry.Platforms = mergePlatforms(entry.Platforms, platformTokens(cardText))
	if entry.ReleaseYear == 0 {
		entry.ReleaseYear = extractYear(cardText)
	}
}

// cardAncestor finds the product card wrapping an anchor: the nearest
// article/li/div ancestor that looks like an app card.
func cardAncestor(anchor *html.Node) *html.Node {
	for parent := anchor.Parent; parent != nil; parent = parent.Parent {
		if parent.Type != html.ElementNode {
			continue
		}
		switch parent.Data {
		case "article", "li", "div":
			classes := attr(parent, "class")
			if attr(parent, "data-app-id") != "" || strings.Contains(classes, "app") || strings.Contains(classes, "card") {
				return parent
			}
		}
	}
	if anchor.Parent != nil {
		return anchor.Parent
	}
	return anchor
}

func isNextLink(anchor *html.Node) bool {
	return attr(anchor, "rel") == "next" || attr(anchor, "aria-label") == "Next"
}

// platformTokens scans free text for platform keywords and returns the
// matching raw tokens (pc, console, cloud).
func platformTokens(text string) []string {
	lowered := strings.ToLower(text)
	var tokens []string
	if containsAny(lowered, "windows", "pc", "play anywhere") {
		tokens = append(tokens, "pc")
	}
	if containsAny(lowered, "xbox series", "xbox one", "console") {
		tokens = append(tokens, "console")
	}
	if containsAny(lowered, "cloud", "xcloud") {
		tokens = append(tokens, "cloud")
	}
	return tokens
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func mergePlatforms(existing, extra []string) []string {
	for _, token := range extra {
		found := false
		for _, have := range existing {
			if have == token {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, token)
		}
	}
	return existing
}

// extractYear returns the first plausible release year in the text, bounded
// to 1970 through the current year, or 0 when none is found.
func extractYear(text string) int {
	for _, match := range yearPattern.FindAllString(text, -1) {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if year >= 1970 && year <= time.Now().UTC().Year() {
			return year
		}
	}
	return 0
}

// productID derives a stable entry key from the product URL slug, falling
// back to the stripped title when the URL has no path.
func productID(u *url.URL, title string) string {
	path := strings.TrimRight(u.Path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		if slug := path[idx+1:]; slug != "" {
			return slug
		}
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, title)
	if cleaned != "" {
		return cleaned
	}
	return u.String()
}

// nodeText returns the concatenated text content of a node, whitespace-normalised.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
