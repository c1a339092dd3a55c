// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

// MockMovieService is a test double for [services.MovieService].
//
// Movies keyed by ID back Details; Fail makes every call for that ID return an error.
type MockMovieService struct {
	mu       sync.Mutex
	Movies   map[int]models.MovieDetails
	Fail     map[int]error
	Page     models.MoviePage
	GenreSet []models.Genre
	Err      error
	Calls    []string
}

// NewMockMovieService creates a mock serving the given movies.
func NewMockMovieService(movies ...models.MovieDetails) *MockMovieService {
	m := &MockMovieService{Movies: map[int]models.MovieDetails{}, Fail: map[int]error{}}
	for _, movie := range movies {
		m.Movies[movie.ID] = movie
		m.Page.Results = append(m.Page.Results, movie.Movie)
	}
	m.Page.Page, m.Page.TotalPages, m.Page.TotalResults = 1, 1, len(movies)
	return m
}

func (m *MockMovieService) record(call string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	m.mu.Unlock()
}

// CallCount returns how many recorded calls start with prefix.
func (m *MockMovieService) CallCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (m *MockMovieService) movieErr(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Fail[id]; ok {
		return err
	}
	return m.Err
}

func (m *MockMovieService) Trending(ctx context.Context) ([]models.Movie, error) {
	m.record("trending")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Page.Results, nil
}

func (m *MockMovieService) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	m.record("search:" + query)
	if m.Err != nil {
		return nil, m.Err
	}
	if strings.TrimSpace(query) == "" {
		return &models.MoviePage{Page: 1, Results: []models.Movie{}}, nil
	}
	p := m.Page
	p.Page = page
	return &p, nil
}

func (m *MockMovieService) Discover(ctx context.Context, query string, page int, filters models.Filters) (*models.MoviePage, error) {
	m.record("discover:" + query)
	if m.Err != nil {
		return nil, m.Err
	}
	p := m.Page
	p.Page = page
	return &p, nil
}

func (m *MockMovieService) Genres(ctx context.Context) ([]models.Genre, error) {
	m.record("genres")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.GenreSet, nil
}

func (m *MockMovieService) Details(ctx context.Context, id int) (*models.MovieDetails, error) {
	m.record(fmt.Sprintf("details:%d", id))
	if err := m.movieErr(id); err != nil {
		return nil, err
	}
	movie, ok := m.Movies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", shared.ErrMovieNotFound, id)
	}
	return &movie, nil
}

func (m *MockMovieService) Credits(ctx context.Context, id int) (*models.Credits, error) {
	m.record(fmt.Sprintf("credits:%d", id))
	if err := m.movieErr(id); err != nil {
		return nil, err
	}
	return &models.Credits{Crew: []models.CrewMember{{Name: "Director", Job: "Director"}}}, nil
}

func (m *MockMovieService) Similar(ctx context.Context, id int) ([]models.Movie, error) {
	m.record(fmt.Sprintf("similar:%d", id))
	if err := m.movieErr(id); err != nil {
		return nil, err
	}
	return m.Page.Results, nil
}

func (m *MockMovieService) ByGenre(ctx context.Context, genreID int) ([]models.Movie, error) {
	m.record(fmt.Sprintf("genre:%d", genreID))
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Page.Results, nil
}

func (m *MockMovieService) Videos(ctx context.Context, id int) ([]models.Video, error) {
	m.record(fmt.Sprintf("videos:%d", id))
	if err := m.movieErr(id); err != nil {
		return nil, err
	}
	return []models.Video{{ID: "v", Key: "k", Site: "YouTube", Type: "Trailer"}}, nil
}

func (m *MockMovieService) ImageURL(path string) string {
	return models.PosterURL("https://image.test/w500", path)
}

func (m *MockMovieService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
