package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/reel/internal/favorites"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
	"github.com/urfave/cli/v3"
)

type favoritesOutput struct {
	IDs        []int `json:"ids"`
	MemoryOnly bool  `json:"memory_only"`
}

// FavoritesList prints the favorites set, resolving each id with --details.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	store, _ := r.favoritesStore(ctx)
	defer store.Close()
	ids := store.Favorites()

	if !cmd.Bool("details") {
		if cmd.Bool("json") {
			return r.writeJSON(favoritesOutput{IDs: ids, MemoryOnly: store.MemoryOnly()}, cmd.Bool("pretty"))
		}
		r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(ids)))
		if len(ids) == 0 {
			r.writePlain("No favorites yet. Add one with `reel favorites toggle <id>`.\n")
			return nil
		}
		for _, id := range ids {
			r.writePlain("♥ %d\n", id)
		}
		return nil
	}

	engine, err := r.discoveryEngine()
	if err != nil {
		return err
	}

	var progress chan tasks.ProgressUpdate
	stop := func() {}
	if !cmd.Bool("json") {
		progress, stop = r.printProgress()
	}
	result, err := engine.FavoriteMovies(ctx, ids, progress)
	stop()
	if err != nil {
		return fmt.Errorf("failed to resolve favorites: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Movies(), cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(ids)))
	for _, res := range result.Results {
		switch {
		case res.Movie == nil:
			r.writePlain("♥ %7d  (unavailable: %v)\n", res.ID, res.Error)
		case res.FromCache:
			r.writePlain("%s  [cached]\n", movieLine(res.Movie.Movie, true))
		default:
			r.writePlain("%s\n", movieLine(res.Movie.Movie, true))
		}
	}
	if result.Failed > 0 {
		r.writePlainln("⚠ %d of %d favorites could not be resolved", result.Failed, len(ids))
	}
	return nil
}

// FavoritesToggle toggles each id argument in order, stopping at the first failed write.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := parseMovieID(arg)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	store, _ := r.favoritesStore(ctx)
	defer store.Close()

	for _, id := range ids {
		favorite, err := store.Toggle(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to toggle %d: %w", id, err)
		}
		r.logger.Debug("toggled favorite", "id", id, "favorite", favorite)
		if favorite {
			r.writePlain("♥ %d added to favorites\n", id)
		} else {
			r.writePlain("  %d removed from favorites\n", id)
		}
	}
	if store.MemoryOnly() {
		r.writePlain("⚠ storage unavailable, changes were not saved\n")
	}
	return nil
}

// FavoritesCheck prints whether id is a favorite.
func (r *Runner) FavoritesCheck(ctx context.Context, cmd *cli.Command) error {
	id, err := parseMovieID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	store, _ := r.favoritesStore(ctx)
	defer store.Close()

	if store.IsFavorite(id) {
		r.writePlain("♥ %d is a favorite\n", id)
	} else {
		r.writePlain("  %d is not a favorite\n", id)
	}
	return nil
}

// FavoritesWatch prints the favorites set each time another context changes it, until interrupted.
func (r *Runner) FavoritesWatch(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, result := r.favoritesStore(ctx)
	defer store.Close()
	if result.Status == favorites.LoadStorageUnavailable {
		return fmt.Errorf("cannot watch favorites: %w", result.Err)
	}

	changes := make(chan []int, 8)
	unsubscribe := store.OnExternalChange(func(ids []int) {
		select {
		case changes <- ids:
		default:
			r.logger.Warn("dropping favorites change, output is behind")
		}
	})
	defer unsubscribe()

	if !r.crossProc {
		r.logger.Warn("no broker configured, only changes made in this process are observed")
		r.writePlain("! broker.nats_url is not set: changes from other reel processes will not appear\n")
	}
	r.writePlain("Watching favorites (%d), Ctrl+C to stop\n", len(result.Favorites))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ids := <-changes:
			r.writePlain("♥ %v\n", ids)
		}
	}
}

// FavoritesExport writes the resolved favorites to a file.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	store, _ := r.favoritesStore(ctx)
	ids := store.Favorites()
	store.Close()

	if len(ids) == 0 {
		return fmt.Errorf("%w: no favorites to export", shared.ErrInvalidInput)
	}

	engine, err := r.discoveryEngine()
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format: cmd.String("format"),
		Path:   cmd.String("output"),
		Title:  cmd.String("title"),
	}
	if cmd.Bool("posters") {
		opts.ImageBaseURL = r.config.TMDB.ImageBaseURL
	}

	progress, stop := r.printProgress()
	result, err := engine.ExportFavorites(ctx, ids, opts, progress)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("\n✓ Exported %d of %d favorites to %s\n", len(result.Favorites.Movies()), len(ids), result.Path)
	if result.Favorites.Failed > 0 {
		r.writePlain("⚠ %d favorites could not be resolved and were left out\n", result.Favorites.Failed)
	}
	return nil
}
