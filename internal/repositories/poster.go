package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/reel/internal/shared"
)

// Poster is an image blob cached by URL.
type Poster struct {
	URL         string
	ContentType string
	Data        []byte
	CachedAt    time.Time
}

// PosterRepository stores poster blobs in the posters table.
type PosterRepository struct {
	db *sql.DB
}

// NewPosterRepository creates a new PosterRepository with the given database connection
func NewPosterRepository(db *sql.DB) *PosterRepository {
	return &PosterRepository{db: db}
}

// Put inserts or replaces the blob stored for p.URL
func (r *PosterRepository) Put(p Poster) error {
	if p.URL == "" {
		return fmt.Errorf("%w: poster url is required", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO posters (url, content_type, data, size, cached_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			content_type = excluded.content_type,
			data = excluded.data,
			size = excluded.size,
			cached_at = excluded.cached_at
	`

	if _, err := r.db.Exec(query, p.URL, p.ContentType, p.Data, len(p.Data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store poster: %w", err)
	}
	return nil
}

// Get retrieves a poster by URL. Returns [shared.ErrCacheMiss] when absent.
func (r *PosterRepository) Get(url string) (*Poster, error) {
	var p Poster
	err := r.db.QueryRow(`SELECT url, content_type, data, cached_at FROM posters WHERE url = ?`, url).
		Scan(&p.URL, &p.ContentType, &p.Data, &p.CachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan poster: %w", err)
	}
	return &p, nil
}

// Has reports whether url is cached
func (r *PosterRepository) Has(url string) (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(1) FROM posters WHERE url = ?`, url).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query poster: %w", err)
	}
	return n > 0, nil
}

// Stats returns the number of cached posters and their total size in bytes
func (r *PosterRepository) Stats() (count int, size int64, err error) {
	err = r.db.QueryRow(`SELECT COUNT(1), COALESCE(SUM(size), 0) FROM posters`).Scan(&count, &size)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query poster stats: %w", err)
	}
	return count, size, nil
}

// Clear removes every cached poster
func (r *PosterRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM posters`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear posters: %w", err)
	}
	return result.RowsAffected()
}
