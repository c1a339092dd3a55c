// Package repositories implements SQLite persistence for cached movie data.
//
// Nothing here is authoritative: the movies and posters tables are caches of TMDB data so that
// favorites can be listed and shown offline. Favorites themselves live in the kv_store table owned
// by the storage package.
//
// Key Implementations:
//   - [MovieRepository] : movie summaries plus the full details record as JSON
//   - [PosterRepository] : poster image blobs keyed by URL
//   - [PosterCache] : best-effort concurrent poster downloads with content sniffing
//   - [MovieCacheAdapter] : tasks.MovieCacher backed by [MovieRepository]
package repositories
