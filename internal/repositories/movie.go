package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

// CachedMovie is a movie record as stored locally, with the time it was fetched.
type CachedMovie struct {
	Details  models.MovieDetails
	CachedAt time.Time
}

// MovieRepository caches movie records so favorites can be listed without the API.
//
// Summary columns are stored for listing; the full [models.MovieDetails] record is kept as JSON in data.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Upsert inserts or replaces the cached record for details.ID
func (r *MovieRepository) Upsert(details models.MovieDetails) error {
	if details.ID <= 0 {
		return fmt.Errorf("%w: movie id must be positive, got %d", shared.ErrInvalidInput, details.ID)
	}
	if strings.TrimSpace(details.Title) == "" {
		return fmt.Errorf("%w: movie %d has no title", shared.ErrInvalidInput, details.ID)
	}

	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode movie: %w", err)
	}

	query := `
		INSERT INTO movies (id, title, poster_path, release_date, vote_average, overview, data, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			poster_path = excluded.poster_path,
			release_date = excluded.release_date,
			vote_average = excluded.vote_average,
			overview = excluded.overview,
			data = excluded.data,
			cached_at = excluded.cached_at
	`

	_, err = r.db.Exec(query,
		details.ID,
		details.Title,
		details.PosterPath,
		details.ReleaseDate,
		details.VoteAverage,
		details.Overview,
		string(data),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert movie: %w", err)
	}

	return nil
}

// Get retrieves a cached movie by ID. Returns [shared.ErrCacheMiss] when absent.
func (r *MovieRepository) Get(id int) (*CachedMovie, error) {
	query := `SELECT data, cached_at FROM movies WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetMany retrieves the cached movies among ids, keyed by ID. Missing ids are simply absent from the map.
func (r *MovieRepository) GetMany(ids []int) (map[int]*CachedMovie, error) {
	found := make(map[int]*CachedMovie, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(fmt.Sprintf("SELECT data, cached_at FROM movies WHERE id IN (%s)", placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		movie, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		found[movie.Details.ID] = movie
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return found, nil
}

// List retrieves every cached movie, most recently cached first
func (r *MovieRepository) List() ([]*CachedMovie, error) {
	rows, err := r.db.Query(`SELECT data, cached_at FROM movies ORDER BY cached_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []*CachedMovie
	for rows.Next() {
		movie, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return movies, nil
}

// Delete removes a cached movie by ID
func (r *MovieRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: movie %d", shared.ErrCacheMiss, id)
	}

	return nil
}

// Prune removes movies cached before cutoff and returns how many were removed
func (r *MovieRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM movies WHERE cached_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune movies: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *MovieRepository) scanOne(row *sql.Row) (*CachedMovie, error) {
	movie, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrCacheMiss
	}
	return movie, err
}

func (r *MovieRepository) scanRow(rows *sql.Rows) (*CachedMovie, error) {
	return r.scan(rows)
}

func (r *MovieRepository) scan(s scanner) (*CachedMovie, error) {
	var (
		data     string
		cachedAt time.Time
	)

	if err := s.Scan(&data, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan movie: %w", err)
	}

	var details models.MovieDetails
	if err := json.Unmarshal([]byte(data), &details); err != nil {
		return nil, fmt.Errorf("%w: cached movie: %v", shared.ErrCorruptData, err)
	}

	return &CachedMovie{Details: details, CachedAt: cachedAt}, nil
}
