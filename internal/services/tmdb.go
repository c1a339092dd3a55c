// TMDB API implementation of [MovieService]
//
// Endpoint reference: https://developer.themoviedb.org/reference/intro/getting-started
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p/w500"
	tmdbLanguage     = "fr-FR"
)

var _ MovieService = (*TMDBService)(nil)

type listResponse[T any] struct {
	Results []T `json:"results"`
}

type genresResponse struct {
	Genres []models.Genre `json:"genres"`
}

// TMDBService implements [MovieService] for the TMDB v3 API.
type TMDBService struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	httpClient   *http.Client
	limiter      *rate.Limiter
	cache        *ttlcache.Cache[string, []byte]
	logger       *log.Logger
}

// TMDBOption configures a [TMDBService].
type TMDBOption func(*TMDBService)

// WithHTTPClient sets the client used for requests. When an access token is configured the client's
// transport is wrapped with bearer authentication.
func WithHTTPClient(c *http.Client) TMDBOption {
	return func(s *TMDBService) { s.httpClient = c }
}

// WithServiceLogger sets the logger for request tracing.
func WithServiceLogger(l *log.Logger) TMDBOption {
	return func(s *TMDBService) { s.logger = l }
}

// NewTMDBService creates a TMDB client from cfg. Empty fields fall back to the public API defaults.
func NewTMDBService(cfg shared.TMDBConfig, opts ...TMDBOption) (*TMDBService, error) {
	if cfg.APIKey == "" && cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: set tmdb.api_key or tmdb.access_token", shared.ErrMissingCredentials)
	}

	s := &TMDBService{
		baseURL:      strings.TrimSuffix(orDefault(cfg.BaseURL, tmdbBaseURL), "/"),
		imageBaseURL: orDefault(cfg.ImageBaseURL, tmdbImageBaseURL),
		apiKey:       cfg.APIKey,
		language:     orDefault(cfg.Language, tmdbLanguage),
		httpClient:   http.DefaultClient,
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	if ttl := cfg.CacheTTL(); ttl > 0 {
		s.cache = ttlcache.New(
			ttlcache.WithTTL[string, []byte](ttl),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		)
		go s.cache.Start()
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}

	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, s.httpClient)
		s.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}))
	}

	return s, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (s *TMDBService) Name() string {
	return "TMDB"
}

// ImageURL resolves a TMDB image path against the configured image base URL.
func (s *TMDBService) ImageURL(path string) string {
	return models.PosterURL(s.imageBaseURL, path)
}

// Close stops the response cache eviction loop.
func (s *TMDBService) Close() {
	if s.cache != nil {
		s.cache.Stop()
	}
}

// endpoint builds the request URL with authentication and language parameters.
func (s *TMDBService) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}
	params.Set("language", s.language)
	return s.baseURL + path + "?" + params.Encode()
}

// doRequest performs a GET against the TMDB API and decodes the JSON body into result.
func (s *TMDBService) doRequest(ctx context.Context, path string, params url.Values, result any) error {
	apiURL := s.endpoint(path, params)

	if s.cache != nil {
		if item := s.cache.Get(apiURL); item != nil {
			return decode(item.Value(), result)
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", shared.ErrTimeout, path)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	s.logger.Debug("tmdb request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: tmdb status %d for %s", shared.ErrAPIRequest, resp.StatusCode, path)
	}

	if err := decode(body, result); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Set(apiURL, body, ttlcache.DefaultTTL)
	}
	return nil
}

func decode(body []byte, result any) error {
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Trending returns the weekly trending movies.
func (s *TMDBService) Trending(ctx context.Context) ([]models.Movie, error) {
	var response listResponse[models.Movie]
	if err := s.doRequest(ctx, "/trending/movie/week", nil, &response); err != nil {
		return nil, err
	}
	return nonNil(response.Results), nil
}

// Search returns one page of search results. A blank query returns an empty first page.
func (s *TMDBService) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	query = shared.NormalizeQuery(query)
	if query == "" {
		return emptyPage(), nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(clampRequestPage(page)))
	params.Set("include_adult", "false")
	return s.page(ctx, "/search/movie", params)
}

// Discover lists movies with filters. With a query the search endpoint is used and sort order is ignored.
func (s *TMDBService) Discover(ctx context.Context, query string, page int, filters models.Filters) (*models.MoviePage, error) {
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	query = shared.NormalizeQuery(query)
	params := url.Values{}
	params.Set("page", strconv.Itoa(clampRequestPage(page)))

	path := "/discover/movie"
	if query != "" {
		path = "/search/movie"
		params.Set("query", query)
		params.Set("include_adult", "false")
	}

	if filters.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(filters.Year))
	}
	if filters.Genre > 0 {
		params.Set("with_genres", strconv.Itoa(filters.Genre))
	}
	if filters.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(filters.MinRating, 'f', -1, 64))
	}
	if filters.SortBy != "" && query == "" {
		params.Set("sort_by", filters.SortBy)
	}

	return s.page(ctx, path, params)
}

func (s *TMDBService) page(ctx context.Context, path string, params url.Values) (*models.MoviePage, error) {
	var page models.MoviePage
	if err := s.doRequest(ctx, path, params, &page); err != nil {
		return nil, err
	}
	page.TotalPages = models.CapTotalPages(page.TotalPages)
	page.Results = nonNil(page.Results)
	return &page, nil
}

// Genres returns the movie genre list.
func (s *TMDBService) Genres(ctx context.Context) ([]models.Genre, error) {
	var response genresResponse
	if err := s.doRequest(ctx, "/genre/movie/list", nil, &response); err != nil {
		return nil, err
	}
	return nonNil(response.Genres), nil
}

// Details retrieves a movie by ID.
func (s *TMDBService) Details(ctx context.Context, id int) (*models.MovieDetails, error) {
	var details models.MovieDetails
	if err := s.doRequest(ctx, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Credits retrieves the cast and crew for a movie.
func (s *TMDBService) Credits(ctx context.Context, id int) (*models.Credits, error) {
	var credits models.Credits
	if err := s.doRequest(ctx, fmt.Sprintf("/movie/%d/credits", id), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// Similar returns the first page of movies similar to id.
func (s *TMDBService) Similar(ctx context.Context, id int) ([]models.Movie, error) {
	params := url.Values{}
	params.Set("page", "1")

	var response listResponse[models.Movie]
	if err := s.doRequest(ctx, fmt.Sprintf("/movie/%d/similar", id), params, &response); err != nil {
		return nil, err
	}
	return nonNil(response.Results), nil
}

// ByGenre returns the first page of a genre sorted by popularity.
func (s *TMDBService) ByGenre(ctx context.Context, genreID int) ([]models.Movie, error) {
	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", models.DefaultSort)
	params.Set("page", "1")

	var response listResponse[models.Movie]
	if err := s.doRequest(ctx, "/discover/movie", params, &response); err != nil {
		return nil, err
	}
	return nonNil(response.Results), nil
}

// Videos returns the videos attached to a movie.
func (s *TMDBService) Videos(ctx context.Context, id int) ([]models.Video, error) {
	var response listResponse[models.Video]
	if err := s.doRequest(ctx, fmt.Sprintf("/movie/%d/videos", id), nil, &response); err != nil {
		return nil, err
	}
	return nonNil(response.Results), nil
}

func emptyPage() *models.MoviePage {
	return &models.MoviePage{Page: 1, Results: []models.Movie{}}
}

func clampRequestPage(page int) int {
	return max(1, min(page, models.MaxPages))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
