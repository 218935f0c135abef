// Package services implements HTTP clients for the remote APIs gamedex talks to.
//
// # Availability API
//
// [AvailabilityClient] wraps the gamedex search endpoint (GET /search?q=).
// The base URL is an explicit constructor argument — there is no ambient
// global — and every request takes a context so callers can cancel superseded
// searches. Non-2xx responses surface as errors embedding the status code.
//
// # IGDB
//
// [IGDBClient] resolves game names to IGDB ids. Authentication uses the
// Twitch client-credentials grant via [clientcredentials.Config], which
// caches and refreshes the app token transparently. Queries are written in
// IGDB's query language and POSTed to /games. Every remote result is written
// through to the local catalog (games + igdb_cache), and remote failures fall
// back to the cached catalog so search keeps working offline.
//
// # Error Handling
//
// Transport failures wrap [shared.ErrAPIRequest]. Missing IGDB credentials
// are not an error: the client degrades to local-catalog lookups.
package services
