package repositories

import (
	"github.com/desertthunder/reel/internal/models"
)

// MovieCacheAdapter implements tasks.MovieCacher using MovieRepository.
type MovieCacheAdapter struct {
	repo *MovieRepository
}

// NewMovieCacheAdapter creates a new MovieCacheAdapter with the given repository
func NewMovieCacheAdapter(repo *MovieRepository) *MovieCacheAdapter {
	return &MovieCacheAdapter{repo: repo}
}

// CacheMovie stores details, replacing any older copy.
func (a *MovieCacheAdapter) CacheMovie(details models.MovieDetails) error {
	return a.repo.Upsert(details)
}

// CachedMovie returns the stored copy of a movie, or [shared.ErrCacheMiss].
func (a *MovieCacheAdapter) CachedMovie(id int) (*models.MovieDetails, error) {
	cached, err := a.repo.Get(id)
	if err != nil {
		return nil, err
	}
	return &cached.Details, nil
}
