// Package ui implements the interactive search terminal interface using bubbletea's Elm architecture.
//
// The TUI provides two views:
//  1. [SearchView] : a debounced free-text search box with per-service availability badges
//  2. [SettingsView] : subscription toggles controlling badge presentation
//
// # Debounce and cancellation
//
// Every edit bumps a generation counter and schedules a [tea.Tick] carrying
// that generation; only the tick whose generation is still current dispatches
// a query, so a burst of keystrokes produces one request for the final value.
// Each dispatch cancels the previous request's context, and result messages
// are tagged with their generation — a stale message (success or error) is
// dropped without touching visible state, which closes the race where a slow
// early response overwrites a fast later one.
//
// Badges are rendered by the pure [Badge] function, keeping the availability →
// display mapping testable without a terminal.
package ui
