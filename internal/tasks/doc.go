// Package tasks orchestrates multi-request movie operations with real-time progress reporting.
//
// # Core Operations
//
// [DiscoveryEngine] implements four operations:
//
//  1. [DiscoveryEngine.MovieView] : everything a detail screen needs
//     - Fetches details, credits, similar movies and videos in parallel
//     - Details are required; the other sections are best effort and reported in [MovieView.Errors]
//
//  2. [DiscoveryEngine.FavoriteMovies] : resolves a favorites list to movie records
//     - Fetches every id in parallel, bounded by the configured concurrency
//     - Results keep the order of the favorites list
//     - Failed fetches fall back to the local movie cache when one is configured
//
//  3. [DiscoveryEngine.CachePosters] : stores poster images for offline display
//
//  4. [DiscoveryEngine.ExportFavorites] : resolves favorites and writes them with the formatter package
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Movie Caching
//
// The optional [MovieCacher] interface persists every successfully fetched movie.
// Cache writes are best effort: failures are logged and never abort the operation.
package tasks
