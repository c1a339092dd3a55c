package server

import (
	"net/http"

	"github.com/desertthunder/reel/internal/favorites"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/tasks"
)

// FavoritesHandler exposes one favorites context over REST.
//
// Writes made here reach socket clients and other processes through storage notifications.
type FavoritesHandler struct {
	store  *favorites.Store
	engine tasks.Engine
	mux    *http.ServeMux
}

type favoritesResponse struct {
	IDs        []int                 `json:"ids"`
	MemoryOnly bool                  `json:"memory_only"`
	Movies     []models.MovieDetails `json:"movies,omitempty"`
	Failed     []int                 `json:"failed,omitempty"`
}

type favoriteResponse struct {
	ID       int  `json:"id"`
	Favorite bool `json:"favorite"`
}

// NewFavoritesHandler creates a handler on a loaded store. engine may be nil, which disables
// ?details=true.
func NewFavoritesHandler(store *favorites.Store, engine tasks.Engine) *FavoritesHandler {
	h := &FavoritesHandler{store: store, engine: engine, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/favorites", h.list)
	h.mux.HandleFunc("GET /api/favorites/{id}", h.check)
	h.mux.HandleFunc("POST /api/favorites/{id}/toggle", h.toggle)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *FavoritesHandler) Routes() []string {
	return []string{
		"GET /api/favorites",
		"GET /api/favorites/{id}",
		"POST /api/favorites/{id}/toggle",
	}
}

func (h *FavoritesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *FavoritesHandler) list(w http.ResponseWriter, r *http.Request) {
	body := favoritesResponse{IDs: h.store.Favorites(), MemoryOnly: h.store.MemoryOnly()}

	if r.URL.Query().Get("details") == "true" {
		if h.engine == nil {
			writeError(w, http.StatusNotImplemented, "movie details are not available")
			return
		}
		result, err := h.engine.FavoriteMovies(r.Context(), body.IDs, nil)
		if err != nil {
			writeErr(w, err)
			return
		}
		body.Movies = result.Movies()
		for _, res := range result.Results {
			if res.Movie == nil {
				body.Failed = append(body.Failed, res.ID)
			}
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *FavoritesHandler) check(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{ID: id, Favorite: h.store.IsFavorite(id)})
}

func (h *FavoritesHandler) toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	favorite, err := h.store.Toggle(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{ID: id, Favorite: favorite})
}
