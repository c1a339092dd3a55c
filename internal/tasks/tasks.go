// package tasks implements movie fetch operations that span several API requests.
//
// The core abstraction is DiscoveryEngine, which fans requests out in parallel and reports per-item outcomes.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/shared"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 5

// SectionError records a best-effort section of a [MovieView] that could not be fetched.
type SectionError struct {
	Section string
	Err     error
}

func (e SectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Section, e.Err)
}

// MovieView contains everything needed to render one movie.
type MovieView struct {
	Details *models.MovieDetails
	Credits *models.Credits
	Similar []models.Movie
	Videos  []models.Video
	Errors  []SectionError // Sections that failed; their fields stay empty
}

// FavoriteResult is the outcome of resolving one favorite id.
type FavoriteResult struct {
	ID        int
	Movie     *models.MovieDetails // nil when neither the API nor the cache had the movie
	FromCache bool                 // Movie came from the local cache after the API failed
	Error     error                // API error, kept even when a cached copy was used
}

// FavoritesResult contains the resolved favorites in list order.
type FavoritesResult struct {
	Results []FavoriteResult
	Fetched int // Resolved from the API
	Cached  int // Resolved from the local cache
	Failed  int // Not resolved
}

// Movies returns the resolved movies in list order, skipping failures.
func (r *FavoritesResult) Movies() []models.MovieDetails {
	movies := make([]models.MovieDetails, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Movie != nil {
			movies = append(movies, *res.Movie)
		}
	}
	return movies
}

// MovieCacher persists fetched movies and serves them when the API cannot.
type MovieCacher interface {
	CacheMovie(details models.MovieDetails) error
	CachedMovie(id int) (*models.MovieDetails, error)
}

// PosterCacher stores poster images by URL and reports how many were newly stored.
type PosterCacher interface {
	CacheImages(ctx context.Context, urls []string) int
}

// Engine defines the multi-request movie operations.
type Engine interface {
	// MovieView fetches details, credits, similar movies and videos for id.
	MovieView(ctx context.Context, id int, progress chan<- ProgressUpdate) (*MovieView, error)

	// FavoriteMovies resolves every id to a movie record, in order.
	FavoriteMovies(ctx context.Context, ids []int, progress chan<- ProgressUpdate) (*FavoritesResult, error)

	// CachePosters stores the posters of movies for offline display.
	CachePosters(ctx context.Context, movies []models.Movie, progress chan<- ProgressUpdate) (int, error)

	// ExportFavorites resolves ids and writes them to a file.
	ExportFavorites(ctx context.Context, ids []int, opts ExportOpts, progress chan<- ProgressUpdate) (*ExportResult, error)
}

// DiscoveryEngine implements [Engine] on top of a [services.MovieService].
type DiscoveryEngine struct {
	movies      services.MovieService
	cache       MovieCacher
	posters     PosterCacher
	logger      *log.Logger
	concurrency int
}

// EngineOption configures a [DiscoveryEngine].
type EngineOption func(*DiscoveryEngine)

// WithMovieCache enables persistence of fetched movies and offline fallback.
func WithMovieCache(c MovieCacher) EngineOption {
	return func(e *DiscoveryEngine) { e.cache = c }
}

// WithPosterCache enables [DiscoveryEngine.CachePosters].
func WithPosterCache(p PosterCacher) EngineOption {
	return func(e *DiscoveryEngine) { e.posters = p }
}

// WithEngineLogger sets the logger for best-effort failures.
func WithEngineLogger(l *log.Logger) EngineOption {
	return func(e *DiscoveryEngine) { e.logger = l }
}

// WithConcurrency bounds how many favorites are fetched at once.
func WithConcurrency(n int) EngineOption {
	return func(e *DiscoveryEngine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewDiscoveryEngine creates a new DiscoveryEngine with the provided service.
func NewDiscoveryEngine(movies services.MovieService, opts ...EngineOption) *DiscoveryEngine {
	e := &DiscoveryEngine{movies: movies, concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(nil)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *DiscoveryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *DiscoveryEngine) cacheMovie(details *models.MovieDetails) {
	if e.cache == nil || details == nil {
		return
	}
	if err := e.cache.CacheMovie(*details); err != nil {
		e.logger.Warn("failed to cache movie", "id", details.ID, "error", err)
	}
}

// MovieView fetches all sections of a movie in parallel.
//
// A details failure cancels the other requests and is returned. Failures of the other sections
// are collected in [MovieView.Errors].
func (e *DiscoveryEngine) MovieView(ctx context.Context, id int, progress chan<- ProgressUpdate) (*MovieView, error) {
	if e.movies == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}

	view := &MovieView{}
	var (
		mu   sync.Mutex
		done atomic.Int32
	)
	const sections = 4

	report := func(phase Phase) {
		e.sendProgress(progress, sectionUpdate(phase, int(done.Add(1)), sections, id))
	}
	fail := func(section string, err error) {
		mu.Lock()
		view.Errors = append(view.Errors, SectionError{Section: section, Err: err})
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		details, err := e.movies.Details(gctx, id)
		if err != nil {
			return err
		}
		view.Details = details
		report(FetchDetails)
		return nil
	})
	g.Go(func() error {
		credits, err := e.movies.Credits(gctx, id)
		if err != nil {
			fail("credits", err)
			return nil
		}
		view.Credits = credits
		report(FetchCredits)
		return nil
	})
	g.Go(func() error {
		similar, err := e.movies.Similar(gctx, id)
		if err != nil {
			fail("similar", err)
			return nil
		}
		view.Similar = similar
		report(FetchSimilar)
		return nil
	})
	g.Go(func() error {
		videos, err := e.movies.Videos(gctx, id)
		if err != nil {
			fail("videos", err)
			return nil
		}
		view.Videos = videos
		report(FetchVideos)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.cacheMovie(view.Details)
	return view, nil
}

// FavoriteMovies resolves every id with settled semantics: one failure never hides the other results.
//
// Results keep the order of ids. When the API fails for an id and a movie cache is configured, the
// cached copy is used. The returned error is non-nil only when ctx is done.
func (e *DiscoveryEngine) FavoriteMovies(ctx context.Context, ids []int, progress chan<- ProgressUpdate) (*FavoritesResult, error) {
	if e.movies == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}

	total := len(ids)
	result := &FavoritesResult{Results: make([]FavoriteResult, total)}
	e.sendProgress(progress, favoritesStartUpdate(total))

	var completed atomic.Int32
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			res := e.resolveFavorite(ctx, id)
			result.Results[i] = res

			step := int(completed.Add(1))
			switch {
			case res.Movie == nil:
				e.sendProgress(progress, favoriteFailedUpdate(step, total, id, res.Error))
			case res.FromCache:
				e.sendProgress(progress, favoriteCachedUpdate(step, total, res.Movie))
			default:
				e.sendProgress(progress, favoriteFetchedUpdate(step, total, res.Movie))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	for _, res := range result.Results {
		switch {
		case res.Movie == nil:
			result.Failed++
		case res.FromCache:
			result.Cached++
		default:
			result.Fetched++
		}
	}
	return result, nil
}

func (e *DiscoveryEngine) resolveFavorite(ctx context.Context, id int) FavoriteResult {
	res := FavoriteResult{ID: id}

	details, err := e.movies.Details(ctx, id)
	if err == nil {
		res.Movie = details
		e.cacheMovie(details)
		return res
	}
	res.Error = err

	if e.cache == nil || ctx.Err() != nil {
		return res
	}
	cached, cacheErr := e.cache.CachedMovie(id)
	if cacheErr != nil {
		if !errors.Is(cacheErr, shared.ErrCacheMiss) {
			e.logger.Warn("failed to read movie cache", "id", id, "error", cacheErr)
		}
		return res
	}
	res.Movie = cached
	res.FromCache = true
	return res
}

// CachePosters stores the posters of movies. Movies without a poster are skipped.
func (e *DiscoveryEngine) CachePosters(ctx context.Context, movies []models.Movie, progress chan<- ProgressUpdate) (int, error) {
	if e.posters == nil {
		return 0, fmt.Errorf("%w: poster cache not configured", shared.ErrServiceUnavailable)
	}

	urls := make([]string, 0, len(movies))
	for _, m := range movies {
		if u := e.movies.ImageURL(m.PosterPath); u != "" {
			urls = append(urls, u)
		}
	}

	e.sendProgress(progress, cachePostersUpdate(0, len(urls)))
	stored := e.posters.CacheImages(ctx, urls)
	e.sendProgress(progress, postersCachedUpdate(stored, len(urls)))

	return stored, ctx.Err()
}
