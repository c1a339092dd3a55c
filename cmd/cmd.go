// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/reel/internal/models"
	"github.com/urfave/cli/v3"
)

func outputFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: prettyDefault,
		},
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml populated with defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// moviesCommand handles TMDB lookups
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse and search movies on TMDB",
		Commands: []*cli.Command{
			{
				Name:   "trending",
				Usage:  "List this week's trending movies",
				Flags:  outputFlags(false),
				Action: r.MoviesTrending,
			},
			{
				Name:  "search",
				Usage: "Search movies by title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page",
						Value: 1,
					},
				}, outputFlags(false)...),
				Action: r.MoviesSearch,
			},
			{
				Name:  "discover",
				Usage: "Discover movies with filters",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Title query; when set, results come from search and --sort is ignored",
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Primary release year",
					},
					&cli.IntFlag{
						Name:  "genre",
						Usage: "Genre ID (see 'reel movies genres')",
					},
					&cli.FloatFlag{
						Name:  "min-rating",
						Usage: "Minimum vote average (0-10)",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort order (" + joinSortOptions() + ")",
						Value: models.DefaultSort,
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page",
						Value: 1,
					},
				}, outputFlags(false)...),
				Action: r.MoviesDiscover,
			},
			{
				Name:  "show",
				Usage: "Show details, credits, similar movies and videos",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(true),
				Action: r.MoviesShow,
			},
			{
				Name:  "genres",
				Usage: "List genres, or popular movies of one genre with --id",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "id",
						Usage: "Genre ID whose popular movies to list",
					},
				}, outputFlags(false)...),
				Action: r.MoviesGenres,
			},
			{
				Name:  "open",
				Usage: "Open a movie's TMDB page (or trailer) in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "trailer",
						Usage: "Open the first trailer instead",
					},
				},
				Action: r.MoviesOpen,
			},
		},
	}
}

// favoritesCommand handles the local favorites set
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite movies",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorite movie IDs, or full records with --details",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "details",
						Usage: "Fetch each favorite from TMDB (falls back to the local cache)",
					},
				}, outputFlags(false)...),
				Action: r.FavoritesList,
			},
			{
				Name:      "toggle",
				Usage:     "Add a movie to favorites, or remove it when already present",
				ArgsUsage: "<id> [id...]",
				Action:    r.FavoritesToggle,
			},
			{
				Name:  "check",
				Usage: "Report whether a movie is a favorite",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.FavoritesCheck,
			},
			{
				Name:   "watch",
				Usage:  "Print the favorites set whenever another process changes it",
				Action: r.FavoritesWatch,
			},
			{
				Name:  "export",
				Usage: "Export favorites to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, txt)",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: favorites.{ext})",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "List title",
						Value: "Favorites",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Include poster URLs",
						Value: true,
					},
				},
				Action: r.FavoritesExport,
			},
		},
	}
}

// cacheCommand handles opt-in movie and poster caching
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Cache movies and posters locally for offline display",
		Commands: []*cli.Command{
			{
				Name:  "posters",
				Usage: "Download posters of favorites (or trending movies)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "trending",
						Usage: "Cache trending posters instead of favorites",
					},
				},
				Action: r.CachePosters,
			},
			{
				Name:  "favorites",
				Usage: "Fetch every favorite and store it in the movie cache",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "prune-days",
						Usage: "Also drop cached movies older than this many days (0 keeps all)",
					},
				},
				Action: r.CacheFavorites,
			},
			{
				Name:   "stats",
				Usage:  "Show cache contents",
				Action: r.CacheStats,
			},
		},
	}
}

// apiCommand handles direct TMDB API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the TMDB API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to TMDB, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand starts the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the REST API and favorites sockets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}
