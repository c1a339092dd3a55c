package services

import (
	"context"

	"github.com/desertthunder/reel/internal/models"
)

// MovieService defines the interface for movie metadata providers.
type MovieService interface {
	// Trending returns this week's trending movies.
	Trending(ctx context.Context) ([]models.Movie, error)

	// Search returns one page of movies matching query. A blank query yields an empty page.
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)

	// Discover lists movies matching filters, optionally narrowed by a search query.
	Discover(ctx context.Context, query string, page int, filters models.Filters) (*models.MoviePage, error)

	// Genres returns the list of movie genres.
	Genres(ctx context.Context) ([]models.Genre, error)

	// Details retrieves the full record for one movie.
	Details(ctx context.Context, id int) (*models.MovieDetails, error)

	// Credits retrieves the cast and crew of one movie.
	Credits(ctx context.Context, id int) (*models.Credits, error)

	// Similar returns movies similar to id.
	Similar(ctx context.Context, id int) ([]models.Movie, error)

	// ByGenre returns the most popular movies in a genre.
	ByGenre(ctx context.Context, genreID int) ([]models.Movie, error)

	// Videos returns trailers and clips for one movie.
	Videos(ctx context.Context, id int) ([]models.Video, error)

	// ImageURL resolves a poster or profile path to an absolute URL.
	ImageURL(path string) string

	// Name returns the name of the provider (e.g., "TMDB")
	Name() string
}
