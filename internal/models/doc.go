// Package models defines the data transfer objects shared by the TMDB client, the caches, the TUI and the HTTP server.
//
// Types mirror the TMDB v3 JSON payloads:
//   - [Movie] : list entry returned by trending, search, discover and similar endpoints
//   - [MovieDetails] : full record from /movie/{id}
//   - [Credits] : cast and crew from /movie/{id}/credits
//   - [Video] : trailers and clips from /movie/{id}/videos
//   - [MoviePage] : one page of a paginated listing
//
// [Filters] carries the discover filters and [ClampPage] keeps page numbers inside the range TMDB will serve.
package models
