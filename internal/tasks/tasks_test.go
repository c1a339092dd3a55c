package tasks

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	tu "github.com/desertthunder/reel/internal/testing"
)

type mockCache struct {
	mu      sync.Mutex
	movies  map[int]models.MovieDetails
	putErr  error
	getErr  error
	puts    int
}

func newMockCache(movies ...models.MovieDetails) *mockCache {
	c := &mockCache{movies: map[int]models.MovieDetails{}}
	for _, m := range movies {
		c.movies[m.ID] = m
	}
	return c
}

func (c *mockCache) CacheMovie(details models.MovieDetails) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.movies[details.ID] = details
	return nil
}

func (c *mockCache) CachedMovie(id int) (*models.MovieDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	m, ok := c.movies[id]
	if !ok {
		return nil, shared.ErrCacheMiss
	}
	return &m, nil
}

type mockPosters struct {
	urls []string
}

func (p *mockPosters) CacheImages(ctx context.Context, urls []string) int {
	p.urls = append(p.urls, urls...)
	return len(urls)
}

func movie(id int, title string) models.MovieDetails {
	return models.MovieDetails{Movie: models.Movie{ID: id, Title: title, PosterPath: "/" + title + ".jpg"}}
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestMovieView(t *testing.T) {
	ctx := context.Background()

	t.Run("All Sections", func(t *testing.T) {
		svc := tu.NewMockMovieService(movie(550, "Fight Club"), movie(13, "Forrest Gump"))
		cache := newMockCache()
		engine := NewDiscoveryEngine(svc, WithMovieCache(cache))
		progress := make(chan ProgressUpdate, 10)

		view, err := engine.MovieView(ctx, 550, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if view.Details.Title != "Fight Club" {
			t.Errorf("unexpected details %+v", view.Details)
		}
		if view.Credits == nil || len(view.Similar) != 2 || len(view.Videos) != 1 {
			t.Errorf("expected every section populated, got %+v", view)
		}
		if len(view.Errors) != 0 {
			t.Errorf("expected no section errors, got %v", view.Errors)
		}
		if updates := drain(progress); len(updates) != 4 {
			t.Errorf("expected 4 progress updates, got %d", len(updates))
		}
		if _, err := cache.CachedMovie(550); err != nil {
			t.Error("expected details to be cached")
		}
	})

	t.Run("Details Failure Is Returned", func(t *testing.T) {
		svc := tu.NewMockMovieService()
		engine := NewDiscoveryEngine(svc)

		_, err := engine.MovieView(ctx, 404, nil)
		if !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("Section Failures Are Collected", func(t *testing.T) {
		svc := &sectionFailService{MockMovieService: tu.NewMockMovieService(movie(550, "Fight Club"))}
		engine := NewDiscoveryEngine(svc)

		view, err := engine.MovieView(ctx, 550, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if view.Details == nil || view.Videos == nil {
			t.Error("expected details and videos to be present")
		}
		if len(view.Errors) != 2 {
			t.Fatalf("expected 2 section errors, got %v", view.Errors)
		}
		sections := view.Errors[0].Section + "," + view.Errors[1].Section
		if !strings.Contains(sections, "credits") || !strings.Contains(sections, "similar") {
			t.Errorf("unexpected sections %s", sections)
		}
	})

	t.Run("Nil Service", func(t *testing.T) {
		engine := NewDiscoveryEngine(nil)
		if _, err := engine.MovieView(ctx, 1, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

// sectionFailService fails credits and similar lookups.
type sectionFailService struct {
	*tu.MockMovieService
}

func (s *sectionFailService) Credits(ctx context.Context, id int) (*models.Credits, error) {
	return nil, shared.ErrAPIRequest
}

func (s *sectionFailService) Similar(ctx context.Context, id int) ([]models.Movie, error) {
	return nil, shared.ErrAPIRequest
}

func TestFavoriteMovies(t *testing.T) {
	ctx := context.Background()

	t.Run("Keeps List Order", func(t *testing.T) {
		svc := tu.NewMockMovieService(movie(1, "A"), movie(2, "B"), movie(3, "C"), movie(4, "D"))
		engine := NewDiscoveryEngine(svc, WithConcurrency(2))

		result, err := engine.FavoriteMovies(ctx, []int{3, 1, 4, 2}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var titles []string
		for _, m := range result.Movies() {
			titles = append(titles, m.Title)
		}
		if strings.Join(titles, "") != "CADB" {
			t.Errorf("expected CADB, got %v", titles)
		}
		if result.Fetched != 4 || result.Failed != 0 || result.Cached != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
	})

	t.Run("Settled Semantics", func(t *testing.T) {
		svc := tu.NewMockMovieService(movie(1, "A"), movie(2, "B"))
		svc.Fail[2] = shared.ErrAPIRequest
		engine := NewDiscoveryEngine(svc)
		progress := make(chan ProgressUpdate, 10)

		result, err := engine.FavoriteMovies(ctx, []int{1, 2, 99}, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Fetched != 1 || result.Failed != 2 {
			t.Errorf("unexpected counts %+v", result)
		}
		if result.Results[1].Movie != nil || !errors.Is(result.Results[1].Error, shared.ErrAPIRequest) {
			t.Errorf("unexpected result for 2: %+v", result.Results[1])
		}
		if !errors.Is(result.Results[2].Error, shared.ErrMovieNotFound) {
			t.Errorf("unexpected result for 99: %+v", result.Results[2])
		}

		updates := drain(progress)
		if len(updates) != 4 || updates[0].Phase != FetchFavorites {
			t.Errorf("expected start plus 3 item updates, got %v", updates)
		}
	})

	t.Run("Falls Back To Cache", func(t *testing.T) {
		svc := tu.NewMockMovieService(movie(1, "A"))
		svc.Fail[2] = shared.ErrAPIRequest
		cache := newMockCache(movie(2, "B (cached)"))
		engine := NewDiscoveryEngine(svc, WithMovieCache(cache))

		result, err := engine.FavoriteMovies(ctx, []int{1, 2}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Fetched != 1 || result.Cached != 1 || result.Failed != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
		res := result.Results[1]
		if !res.FromCache || res.Movie.Title != "B (cached)" || res.Error == nil {
			t.Errorf("unexpected cached result %+v", res)
		}
		if _, err := cache.CachedMovie(1); err != nil {
			t.Error("expected fetched movie to be cached")
		}
	})

	t.Run("Cache Write Failures Are Ignored", func(t *testing.T) {
		svc := tu.NewMockMovieService(movie(1, "A"))
		cache := newMockCache()
		cache.putErr = errors.New("disk full")
		engine := NewDiscoveryEngine(svc, WithMovieCache(cache), WithEngineLogger(shared.NewLogger(io.Discard)))

		result, err := engine.FavoriteMovies(ctx, []int{1}, nil)
		if err != nil || result.Fetched != 1 {
			t.Errorf("expected fetch to succeed, got %+v, %v", result, err)
		}
	})

	t.Run("Empty List", func(t *testing.T) {
		engine := NewDiscoveryEngine(tu.NewMockMovieService())
		result, err := engine.FavoriteMovies(ctx, nil, nil)
		if err != nil || len(result.Results) != 0 || len(result.Movies()) != 0 {
			t.Errorf("unexpected result %+v, %v", result, err)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		engine := NewDiscoveryEngine(tu.NewMockMovieService(movie(1, "A")))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := engine.FavoriteMovies(cctx, []int{1}, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestCachePosters(t *testing.T) {
	ctx := context.Background()

	t.Run("Without Poster Cache", func(t *testing.T) {
		engine := NewDiscoveryEngine(tu.NewMockMovieService())
		if _, err := engine.CachePosters(ctx, nil, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Resolves Poster URLs", func(t *testing.T) {
		posters := &mockPosters{}
		engine := NewDiscoveryEngine(tu.NewMockMovieService(), WithPosterCache(posters))
		movies := []models.Movie{
			{ID: 1, PosterPath: "/a.jpg"},
			{ID: 2},
			{ID: 3, PosterPath: "/c.jpg"},
		}

		n, err := engine.CachePosters(ctx, movies, nil)
		if err != nil || n != 2 {
			t.Errorf("CachePosters() = %d, %v", n, err)
		}
		if len(posters.urls) != 2 || posters.urls[0] != "https://image.test/w500/a.jpg" {
			t.Errorf("unexpected urls %v", posters.urls)
		}
	})
}

func TestExportFavorites(t *testing.T) {
	svc := tu.NewMockMovieService(movie(1, "Alpha"), movie(2, "Beta"))
	svc.Fail[3] = shared.ErrAPIRequest
	engine := NewDiscoveryEngine(svc)
	path := filepath.Join(t.TempDir(), "out.md")

	result, err := engine.ExportFavorites(context.Background(), []int{2, 3, 1}, ExportOpts{Format: "markdown", Path: path}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Path != path || result.Favorites.Failed != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	content := tu.MustReadFile(t, path)
	if !strings.Contains(content, "# Favorites") || strings.Index(content, "Beta") > strings.Index(content, "Alpha") {
		t.Errorf("unexpected export:\n%s", content)
	}

	t.Run("Invalid Format", func(t *testing.T) {
		_, err := engine.ExportFavorites(context.Background(), []int{1}, ExportOpts{Format: "xml"}, nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	phases := map[Phase]string{
		FetchDetails:   "fetch_details",
		FetchFavorites: "fetch_favorites",
		CachePosters:   "cache_posters",
		ExportList:     "export_list",
		Phase(99):      "",
	}
	for p, want := range phases {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, p.String(), want)
		}
	}
}
