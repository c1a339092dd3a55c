package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/reel/internal/formatter"
)

// ExportOpts contains configuration for favorites exports.
type ExportOpts struct {
	Format       string // Export format: json, csv, markdown, txt
	Path         string // Output file (default: favorites.{ext})
	Title        string // List title (default: "Favorites")
	ImageBaseURL string // Poster base URL for CSV and Markdown; empty omits posters
}

// ExportResult summarizes a favorites export.
type ExportResult struct {
	Path      string
	Favorites *FavoritesResult
}

// ExportFavorites resolves ids and writes the resolved movies with [formatter.WriteExport].
//
// Ids that could not be resolved are left out of the file and counted in [FavoritesResult.Failed].
func (e *DiscoveryEngine) ExportFavorites(ctx context.Context, ids []int, opts ExportOpts, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if opts.Title == "" {
		opts.Title = "Favorites"
	}

	favorites, err := e.FavoriteMovies(ctx, ids, progress)
	if err != nil {
		return nil, err
	}

	list := &formatter.MovieList{
		Title:        opts.Title,
		Movies:       favorites.Movies(),
		ImageBaseURL: opts.ImageBaseURL,
	}

	path, err := formatter.WriteExport(list, opts.Format, opts.Path)
	if err != nil {
		return &ExportResult{Favorites: favorites}, fmt.Errorf("failed to write export: %w", err)
	}

	e.sendProgress(progress, exportUpdate(path, len(list.Movies)))
	return &ExportResult{Path: path, Favorites: favorites}, nil
}
