package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/favorites"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
)

// APIConfig lists the components served by [NewAPIRouter]. Nil components leave their routes out.
type APIConfig struct {
	Movies  services.MovieService
	Engine  tasks.Engine
	Store   *favorites.Store
	Hub     *SocketHub
	Origins []string
	Logger  *log.Logger
}

// NewAPIRouter registers the REST and socket routes behind request id, logging, recovery and CORS
// middleware.
func NewAPIRouter(cfg APIConfig) *BasicRouter {
	logger := cfg.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	r := NewBasicRouter()
	r.Use(RequestID(), RequestLogger(logger), Recoverer(logger), CORS(cfg.Origins))

	r.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	engine := cfg.Engine
	if engine == nil && cfg.Movies != nil {
		engine = tasks.NewDiscoveryEngine(cfg.Movies, tasks.WithEngineLogger(logger))
	}
	if cfg.Movies != nil {
		r.Handler(NewMoviesHandler(cfg.Movies, engine))
	}
	if cfg.Store != nil {
		r.Handler(NewFavoritesHandler(cfg.Store, engine))
	}
	if cfg.Hub != nil {
		r.Handler(cfg.Hub)
	}
	return r
}
