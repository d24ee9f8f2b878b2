// Package tasks orchestrates a blend between the song generator, the caches and the streaming service.
//
// # Core Operations
//
//  1. [Blender.Blend] : Fusion of themed song lists
//     - Computes the per-theme sample size as playlist_length / number of themes
//     - Generates and caches a theme's songs only on a cache miss
//     - Samples without replacement and merges, keeping the first occurrence of each song
//
//  2. [Resolver.Resolve] : Song to track URI resolution
//     - Serves cached URIs without calling the service
//     - Paces search calls with a token bucket (golang.org/x/time/rate)
//     - Drops songs that do not resolve instead of failing the run
//
//  3. [BlendEngine.Run] : The full pipeline
//     - Records the request, blends, optionally renames, resolves, shuffles
//     - Publishes by replacing or appending, then updates the playlist description
//
// [BlendEngine.RefreshHistory] and [BlendEngine.SelectPlaylist] maintain the playlist usage history.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
package tasks
