// Package repositories implements the persistent caches and histories behind a blend.
//
// Every store is a single JSON document held by a [Document] backend (a file, a row in the
// sqlite documents table, or a key in a bbolt bucket). [Store] loads that document once,
// keeps it in memory and rewrites it in full after every mutation.
//
// Key Implementations:
//   - [ThemeCache] : lower-cased theme to the songs generated for it
//   - [TrackCache] : "Artist - Song Title" to the resolved track URI
//   - [RequestHistory] : distinct theme requests in the order they were first made
//   - [PlaylistHistory] : the most recent playlist and the last five playlists blended into
//
// [OpenStores] wires all four together for the configured storage driver.
package repositories
