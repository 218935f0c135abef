package models

import "time"

// Service identifies one subscription catalog provider.
type Service string

const (
	ServiceGamePass    Service = "gamepass"
	ServicePSPlus      Service = "psplus"
	ServiceUbisoftPlus Service = "ubisoftplus"
)

// AllServices returns the fixed service enumeration in display order.
func AllServices() []Service {
	return []Service{ServiceGamePass, ServicePSPlus, ServiceUbisoftPlus}
}

// DisplayName returns the human-readable label for a service.
// Unknown identifiers fall back to the raw identifier.
func (s Service) DisplayName() string {
	switch s {
	case ServiceGamePass:
		return "Game Pass"
	case ServicePSPlus:
		return "PS Plus"
	case ServiceUbisoftPlus:
		return "Ubisoft+"
	default:
		return string(s)
	}
}

// Known reports whether the service is part of the fixed enumeration.
func (s Service) Known() bool {
	switch s {
	case ServiceGamePass, ServicePSPlus, ServiceUbisoftPlus:
		return true
	}
	return false
}

// Game represents a canonical catalog entry keyed by IGDB id.
// Rows are created and refreshed by ingestion; the search path treats them as read-only.
type Game struct {
	IGDBID           int64
	Name             string
	AltNames         []string
	FirstReleaseYear int // 0 when unknown
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CatalogItem represents one (service, game, region) availability fact.
//
// At most one live row exists per combination; re-observations refresh
// LastSeenAt and the payload while FirstSeenAt is preserved. Rows are never
// hard-deleted — absence from a catalog is inferred, not recorded.
type CatalogItem struct {
	Service      Service
	IGDBID       int64
	ServiceTitle string
	Platforms    []string
	Tier         string
	Region       string
	FirstSeenAt  time.Time
	LastSeenAt   time.Time
}

// JobStatus enumerates ingestion run states.
type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobOK      JobStatus = "ok"
	JobFailed  JobStatus = "failed"
)

// Job records one ingestion run for a service/region pair.
type Job struct {
	ID         string
	Service    Service
	Region     string
	Status     JobStatus
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Inserted   int
	Error      string
}

// ServiceAvailability is the per-service availability payload served by the
// search endpoint and consumed by the badge renderer.
type ServiceAvailability struct {
	Available      bool     `json:"available"`
	ServiceTitle   string   `json:"service_title,omitempty"`
	Tier           string   `json:"tier,omitempty"`
	Platforms      []string `json:"platforms,omitempty"`
	PlatformLabels []string `json:"platform_labels,omitempty"`
	FirstSeenAt    string   `json:"first_seen_at,omitempty"`
	LastSeenAt     string   `json:"last_seen_at,omitempty"`
}

// SearchResult is one game in a search response, with availability fanned out per service.
// It exists only for the lifetime of one query response.
type SearchResult struct {
	IGDBID           int64                           `json:"igdb_id"`
	Name             string                          `json:"name"`
	FirstReleaseYear int                             `json:"first_release_year,omitempty"`
	Services         map[Service]ServiceAvailability `json:"services"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// IGDBGame is a candidate record from the IGDB lookup (remote or cached).
type IGDBGame struct {
	IGDBID           int64    `json:"igdb_id"`
	Name             string   `json:"name"`
	AltNames         []string `json:"alt_names,omitempty"`
	FirstReleaseYear int      `json:"first_release_year,omitempty"`
}

// SubscriptionSelection maps each service to whether the user holds that
// subscription. It is client-local and never persisted server-side.
type SubscriptionSelection map[Service]bool

// DefaultSelection returns a selection with every known service enabled.
func DefaultSelection() SubscriptionSelection {
	sel := make(SubscriptionSelection, len(AllServices()))
	for _, svc := range AllServices() {
		sel[svc] = true
	}
	return sel
}

// Toggle returns a new selection with only the given service's flag flipped.
// The receiver is left untouched, so callers can rely on reference comparison
// to detect changes.
func (s SubscriptionSelection) Toggle(svc Service) SubscriptionSelection {
	next := make(SubscriptionSelection, len(s))
	for k, v := range s {
		next[k] = v
	}
	next[svc] = !next[svc]
	return next
}

// Enabled reports the flag for a service; services missing from the map
// default to enabled, matching DefaultSelection semantics.
func (s SubscriptionSelection) Enabled(svc Service) bool {
	v, ok := s[svc]
	if !ok {
		return true
	}
	return v
}
