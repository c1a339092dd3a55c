package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/urfave/cli/v3"
)

const tmdbMovieURL = "https://www.themoviedb.org/movie/"

func joinSortOptions() string {
	return strings.Join(models.SortOptions, ", ")
}

// parseMovieID parses a positive movie id argument.
func parseMovieID(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a movie id", shared.ErrInvalidArgument, arg)
	}
	return id, nil
}

// movieLine renders one movie as "  550  Fight Club (1999) ★ 8.4", marking favorites with ♥.
func movieLine(m models.Movie, favorite bool) string {
	mark := " "
	if favorite {
		mark = "♥"
	}
	line := fmt.Sprintf("%s %7d  %s", mark, m.ID, m.Title)
	if m.ReleaseDate != "" {
		line += fmt.Sprintf(" (%s)", shared.ReleaseYear(m.ReleaseDate))
	}
	if m.VoteAverage > 0 {
		line += fmt.Sprintf(" ★ %.1f", m.VoteAverage)
	}
	return line
}

// writeMovies prints movies, marking favorites when the store can be opened.
func (r *Runner) writeMovies(ctx context.Context, movies []models.Movie) {
	store, _ := r.favoritesStore(ctx)
	defer store.Close()

	for _, m := range movies {
		r.writePlain("%s\n", movieLine(m, store.IsFavorite(m.ID)))
	}
}

func (r *Runner) writePage(ctx context.Context, cmd *cli.Command, title string, page *models.MoviePage) error {
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (page %d/%d, %d results)", title, page.Page, max(page.TotalPages, 1), page.TotalResults))
	if len(page.Results) == 0 {
		r.writePlain("No movies found.\n")
		return nil
	}
	r.writeMovies(ctx, page.Results)
	if page.HasNext() {
		r.writePlainln("More results: --page %d", page.Page+1)
	}
	return nil
}

// MoviesTrending lists this week's trending movies.
func (r *Runner) MoviesTrending(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.movieService()
	if err != nil {
		return err
	}

	r.logger.Info("fetching trending movies")
	results, err := movies.Trending(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch trending movies: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}
	r.writePlainHeader("Trending this week")
	r.writeMovies(ctx, results)
	return nil
}

// MoviesSearch searches movies by title.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := shared.NormalizeQuery(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	movies, err := r.movieService()
	if err != nil {
		return err
	}

	r.logger.Info("searching movies", "query", query, "page", cmd.Int("page"))
	page, err := movies.Search(ctx, query, cmd.Int("page"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return r.writePage(ctx, cmd, fmt.Sprintf("Results for %q", query), page)
}

// MoviesDiscover lists movies matching the filter flags.
func (r *Runner) MoviesDiscover(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.movieService()
	if err != nil {
		return err
	}

	filters := models.Filters{
		Year:      cmd.Int("year"),
		Genre:     cmd.Int("genre"),
		MinRating: cmd.Float("min-rating"),
		SortBy:    cmd.String("sort"),
	}
	query := shared.NormalizeQuery(cmd.String("query"))

	r.logger.Info("discovering movies", "query", query, "filters", filters)
	page, err := movies.Discover(ctx, query, cmd.Int("page"), filters)
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}

	title := "Discover"
	if query != "" {
		title = fmt.Sprintf("Discover %q", query)
	}
	return r.writePage(ctx, cmd, title, page)
}

// MoviesShow prints the full view of one movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseMovieID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	engine, err := r.discoveryEngine()
	if err != nil {
		return err
	}

	view, err := engine.MovieView(ctx, id, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch movie %d: %w", id, err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	store, _ := r.favoritesStore(ctx)
	defer store.Close()

	d := view.Details
	title := d.Title
	if d.ReleaseDate != "" {
		title = fmt.Sprintf("%s (%s)", title, shared.ReleaseYear(d.ReleaseDate))
	}
	if store.IsFavorite(id) {
		title = "♥ " + title
	}
	r.writePlainHeader(title)
	if d.Tagline != "" {
		r.writePlain("%s\n\n", d.Tagline)
	}
	if d.VoteAverage > 0 {
		r.writePlain("Rating:   ★ %.1f\n", d.VoteAverage)
	}
	if d.Runtime > 0 {
		r.writePlain("Runtime:  %s\n", shared.FormatRuntime(d.Runtime))
	}
	if genres := d.GenreNames(); genres != "" {
		r.writePlain("Genres:   %s\n", genres)
	}
	if view.Credits != nil {
		if directors := view.Credits.Directors(); len(directors) > 0 {
			r.writePlain("Director: %s\n", strings.Join(directors, ", "))
		}
		cast := view.Credits.Cast[:min(5, len(view.Credits.Cast))]
		for i, c := range cast {
			label := "          "
			if i == 0 {
				label = "Cast:     "
			}
			r.writePlain("%s%s as %s\n", label, c.Name, c.Character)
		}
	}
	if d.Overview != "" {
		r.writePlainln("%s", d.Overview)
	}
	if len(view.Similar) > 0 {
		r.writePlainln("Similar:")
		r.writeMovies(ctx, view.Similar[:min(5, len(view.Similar))])
	}
	for _, v := range view.Videos {
		if u := v.URL(); u != "" {
			r.writePlain("\n▶ %s (%s): %s", v.Name, v.Type, u)
		}
	}
	for _, e := range view.Errors {
		r.writePlain("\n⚠ %s unavailable: %v", e.Section, e.Err)
	}
	r.writePlain("\n")
	return nil
}

// MoviesGenres lists genres, or popular movies of the genre given by --id.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.movieService()
	if err != nil {
		return err
	}

	if genreID := cmd.Int("id"); genreID > 0 {
		results, err := movies.ByGenre(ctx, genreID)
		if err != nil {
			return fmt.Errorf("failed to fetch genre %d: %w", genreID, err)
		}
		if cmd.Bool("json") {
			return r.writeJSON(results, cmd.Bool("pretty"))
		}
		r.writePlainHeader(fmt.Sprintf("Popular in genre %d", genreID))
		r.writeMovies(ctx, results)
		return nil
	}

	genres, err := movies.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch genres: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}
	r.writePlainHeader("Genres")
	for _, g := range genres {
		r.writePlain("%7d  %s\n", g.ID, g.Name)
	}
	return nil
}

// MoviesOpen opens the TMDB page of a movie, or its first trailer with --trailer.
func (r *Runner) MoviesOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := parseMovieID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	url := tmdbMovieURL + strconv.Itoa(id)
	if cmd.Bool("trailer") {
		movies, err := r.movieService()
		if err != nil {
			return err
		}
		videos, err := movies.Videos(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch videos: %w", err)
		}
		url = trailerURL(videos)
		if url == "" {
			return fmt.Errorf("%w: no playable trailer for movie %d", shared.ErrMovieNotFound, id)
		}
	}

	r.writePlain("Opening %s\n", url)
	return shared.OpenBrowser(url)
}

// trailerURL prefers a trailer over other video types.
func trailerURL(videos []models.Video) string {
	fallback := ""
	for _, v := range videos {
		u := v.URL()
		if u == "" {
			continue
		}
		if v.Type == "Trailer" {
			return u
		}
		if fallback == "" {
			fallback = u
		}
	}
	return fallback
}
