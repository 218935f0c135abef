// Package models defines domain entities for the gamedex availability service.
//
// The package contains two categories of types:
//
// 1. Persistent entities backed by the SQLite catalog:
//   - [Game] : Canonical game identity keyed by IGDB id
//   - [CatalogItem] : One (service, game, region) availability observation
//   - [Job] : Ingestion run bookkeeping
//
// 2. Transient types exchanged with the search endpoint and the UI:
//   - [SearchResult] : One game with its per-service availability map
//   - [ServiceAvailability] : Whether/how a service offers a game
//   - [SubscriptionSelection] : Client-local service → enabled mapping
//
// Subscription services form a fixed enumeration ([ServiceGamePass],
// [ServicePSPlus], [ServiceUbisoftPlus]); unknown identifiers coming off the
// wire are carried through verbatim so the UI can still show them.
package models
