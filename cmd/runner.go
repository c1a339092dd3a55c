package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/favorites"
	"github.com/desertthunder/reel/internal/repositories"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/storage"
	"github.com/desertthunder/reel/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies that need credentials or a database are opened on first use so commands that do not
// need them (setup, help) work without either.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	movies     services.MovieService
	api        *services.APIService
	db         *sql.DB
	newStorage func() storage.Storage
	crossProc  bool // storage contexts hear writes from other processes
	engine     *tasks.DiscoveryEngine
	posters    *repositories.PosterCache

	mu      sync.Mutex
	closers []func()
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Movies     services.MovieService
	API        *services.APIService
	DB         *sql.DB
	NewStorage func() storage.Storage // opens one favorites storage context
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		movies:     opts.Movies,
		api:        opts.API,
		db:         opts.DB,
		newStorage: opts.NewStorage,
	}
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases every dependency opened by the runner, in reverse order.
func (r *Runner) Close() {
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func (r *Runner) onClose(fn func()) {
	r.mu.Lock()
	r.closers = append(r.closers, fn)
	r.mu.Unlock()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, moviesCommand, favoritesCommand, cacheCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// movieService returns the TMDB client, creating it from config on first use.
func (r *Runner) movieService() (services.MovieService, error) {
	if r.movies != nil {
		return r.movies, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	svc, err := services.NewTMDBService(r.config.TMDB,
		services.WithHTTPClient(r.httpClient),
		services.WithServiceLogger(r.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create TMDB client: %w", err)
	}
	r.onClose(svc.Close)
	r.movies = svc
	return svc, nil
}

// apiService returns the raw TMDB client used by `api get`.
func (r *Runner) apiService() *services.APIService {
	if r.api == nil {
		r.api = services.NewAPIService(r.config.TMDB.BaseURL, r.config.TMDB.APIKey, r.config.TMDB.Language, r.httpClient)
	}
	return r.api
}

// database opens the configured database and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to run migrations: %v", shared.ErrStorageUnavailable, err)
	}
	r.onClose(func() { db.Close() })
	r.db = db
	return db, nil
}

// storageOpener returns the function that opens favorites storage contexts.
//
// The SQLite backend is used when the database opens; the broker is attached when configured and
// reachable. When the database cannot be opened, contexts come from a memory backend whose reads
// fail, so stores load as memory-only.
func (r *Runner) storageOpener() func() storage.Storage {
	if r.newStorage != nil {
		return r.newStorage
	}

	db, err := r.database()
	if err != nil {
		r.logger.Warn("favorites will not persist", "error", err)
		mem := storage.NewMemoryBackend()
		mem.Fail(storage.OpGet, err)
		r.onClose(mem.Close)
		r.newStorage = func() storage.Storage { return mem.NewContext() }
		return r.newStorage
	}

	var opts []storage.SQLiteOption
	opts = append(opts, storage.WithLogger(r.logger))
	if url := r.config.Broker.NATSURL; url != "" {
		notifier, err := storage.NewNATSNotifier(url, r.config.Broker.Subject, r.logger)
		if err != nil {
			r.logger.Warn("broker unavailable, favorites changes stay in this process", "error", err)
		} else {
			r.onClose(notifier.Close)
			opts = append(opts, storage.WithNotifier(notifier))
			r.crossProc = true
		}
	}

	backend, err := storage.NewSQLiteBackend(db, opts...)
	if err != nil {
		r.crossProc = false
		r.logger.Warn("favorites will not persist", "error", err)
		mem := storage.NewMemoryBackend()
		mem.Fail(storage.OpGet, err)
		r.onClose(mem.Close)
		r.newStorage = func() storage.Storage { return mem.NewContext() }
		return r.newStorage
	}
	r.onClose(backend.Close)
	r.newStorage = func() storage.Storage { return backend.NewContext() }
	return r.newStorage
}

// favoritesStore opens and loads a favorites context. The caller closes it.
func (r *Runner) favoritesStore(ctx context.Context) (*favorites.Store, favorites.LoadResult) {
	store := favorites.New(r.storageOpener()(),
		favorites.WithKey(r.config.Favorites.Key),
		favorites.WithLogger(r.logger),
	)
	result := store.Load(ctx)
	switch result.Status {
	case favorites.LoadCorruptData:
		r.logger.Warn("stored favorites were corrupt and have been reset")
	case favorites.LoadStorageUnavailable:
		r.logger.Warn("favorites storage unavailable, changes will be lost on exit")
	}
	return store, result
}

// discoveryEngine returns the engine, with movie and poster caches when the database is available.
func (r *Runner) discoveryEngine() (*tasks.DiscoveryEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	movies, err := r.movieService()
	if err != nil {
		return nil, err
	}

	opts := []tasks.EngineOption{tasks.WithEngineLogger(r.logger)}
	if db, err := r.database(); err == nil {
		r.posters = repositories.NewPosterCache(repositories.NewPosterRepository(db), r.httpClient, r.logger)
		opts = append(opts,
			tasks.WithMovieCache(repositories.NewMovieCacheAdapter(repositories.NewMovieRepository(db))),
			tasks.WithPosterCache(r.posters),
		)
	} else {
		r.logger.Warn("movie cache disabled", "error", err)
	}

	r.engine = tasks.NewDiscoveryEngine(movies, opts...)
	return r.engine, nil
}

// printProgress prints updates until the returned stop function is called.
func (r *Runner) printProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.FetchFavorites, tasks.CachePosters:
				if update.Step == 0 {
					r.writePlain("📥 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.ExportList:
				r.writePlain("\n📝 %s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
