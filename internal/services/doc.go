// Package services defines the [MovieService] interface for movie metadata providers and implements it for
// The Movie Database (TMDB).
//
// # TMDB Implementation
//
// [TMDBService] talks to the TMDB v3 REST API. Requests authenticate either with an api_key query
// parameter or, when a v4 read access token is configured, with a bearer token supplied by an
// [oauth2.StaticTokenSource]. Every request carries the configured language (default fr-FR).
//
// Outgoing requests are rate limited with a [rate.Limiter]. Successful GET responses are kept in a
// [ttlcache.Cache] keyed by request URL, so paging back and forth or reopening a movie does not hit the
// network again until the entry expires.
//
// # Listings
//
// Search with a blank query returns an empty page without issuing a request. Discover uses
// /search/movie when a query is given and /discover/movie otherwise; sort_by is only sent to discover,
// which is the only endpoint that honors it. Reported page counts are capped at [models.MaxPages].
//
// # Raw Requests
//
// [APIService] performs unauthenticated-by-default raw GETs against the API root and returns the status,
// headers and body, used by the `api get` command.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : neither api key nor access token configured
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrMovieNotFound] : 404 from a movie endpoint
//   - [shared.ErrInvalidArgument] : invalid discover filters
package services
