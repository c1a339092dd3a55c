package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CachePosters downloads the posters of favorites (or of trending movies with --trending).
func (r *Runner) CachePosters(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.discoveryEngine()
	if err != nil {
		return err
	}

	var movies []models.Movie
	if cmd.Bool("trending") {
		svc, err := r.movieService()
		if err != nil {
			return err
		}
		if movies, err = svc.Trending(ctx); err != nil {
			return fmt.Errorf("failed to fetch trending movies: %w", err)
		}
	} else {
		store, _ := r.favoritesStore(ctx)
		ids := store.Favorites()
		store.Close()

		result, err := engine.FavoriteMovies(ctx, ids, nil)
		if err != nil {
			return fmt.Errorf("failed to resolve favorites: %w", err)
		}
		for _, d := range result.Movies() {
			movies = append(movies, d.Movie)
		}
	}

	progress, stop := r.printProgress()
	stored, err := engine.CachePosters(ctx, movies, progress)
	stop()
	if err != nil {
		return fmt.Errorf("failed to cache posters: %w", err)
	}

	r.writePlain("\n✓ Cached %d new posters for %d movies\n", stored, len(movies))
	return nil
}

// CacheFavorites stores every favorite in the movie cache, optionally pruning stale entries.
func (r *Runner) CacheFavorites(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.discoveryEngine()
	if err != nil {
		return err
	}

	store, _ := r.favoritesStore(ctx)
	ids := store.Favorites()
	store.Close()

	progress, stop := r.printProgress()
	result, err := engine.FavoriteMovies(ctx, ids, progress)
	stop()
	if err != nil {
		return fmt.Errorf("failed to resolve favorites: %w", err)
	}

	r.writePlain("\n✓ Fetched %d, served %d from cache, %d failed\n", result.Fetched, result.Cached, result.Failed)

	if days := cmd.Int("prune-days"); days > 0 {
		db, err := r.database()
		if err != nil {
			return err
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		pruned, err := repositories.NewMovieRepository(db).Prune(cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune movie cache: %w", err)
		}
		r.writePlain("✓ Pruned %d movies cached before %s\n", pruned, cutoff.Format(time.DateOnly))
	}
	return nil
}

// CacheStats prints how many movies and posters are cached.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	cached, err := repositories.NewMovieRepository(db).List()
	if err != nil {
		return fmt.Errorf("failed to list cached movies: %w", err)
	}
	count, size, err := repositories.NewPosterRepository(db).Stats()
	if err != nil {
		return fmt.Errorf("failed to read poster stats: %w", err)
	}

	r.writePlainHeader("Cache")
	r.writePlain("Movies:  %d\n", len(cached))
	r.writePlain("Posters: %d (%.1f KiB)\n", count, float64(size)/1024)
	return nil
}
