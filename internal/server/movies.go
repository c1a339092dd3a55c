package server

import (
	"net/http"
	"strconv"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/tasks"
)

// MoviesHandler serves read-only TMDB lookups.
type MoviesHandler struct {
	movies services.MovieService
	engine tasks.Engine
	mux    *http.ServeMux
}

// NewMoviesHandler creates a handler backed by movies. engine builds the full movie view.
func NewMoviesHandler(movies services.MovieService, engine tasks.Engine) *MoviesHandler {
	h := &MoviesHandler{movies: movies, engine: engine, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/movies/trending", h.trending)
	h.mux.HandleFunc("GET /api/movies/search", h.search)
	h.mux.HandleFunc("GET /api/movies/discover", h.discover)
	h.mux.HandleFunc("GET /api/movies/{id}", h.details)
	h.mux.HandleFunc("GET /api/genres", h.genres)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *MoviesHandler) Routes() []string {
	return []string{
		"GET /api/movies/trending",
		"GET /api/movies/search",
		"GET /api/movies/discover",
		"GET /api/movies/{id}",
		"GET /api/genres",
	}
}

func (h *MoviesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *MoviesHandler) trending(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.Trending(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *MoviesHandler) search(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.movies.Search(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.movies.Discover(r.Context(), q.Get("q"), page, filters)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseFilters(r *http.Request) (models.Filters, error) {
	var f models.Filters
	var err error
	if f.Year, err = queryInt(r, "year", 0); err != nil {
		return f, err
	}
	if f.Genre, err = queryInt(r, "genre", 0); err != nil {
		return f, err
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		if f.MinRating, err = strconv.ParseFloat(v, 64); err != nil {
			return f, err
		}
	}
	f.SortBy = r.URL.Query().Get("sort_by")
	return f, f.Validate()
}

func (h *MoviesHandler) details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	view, err := h.engine.MovieView(r.Context(), id, nil)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movieViewBody(view))
}

type sectionErrorBody struct {
	Section string `json:"section"`
	Error   string `json:"error"`
}

type movieViewResponse struct {
	*models.MovieDetails
	Credits *models.Credits    `json:"credits,omitempty"`
	Similar []models.Movie     `json:"similar"`
	Videos  []models.Video     `json:"videos"`
	Errors  []sectionErrorBody `json:"errors,omitempty"`
}

func movieViewBody(v *tasks.MovieView) movieViewResponse {
	body := movieViewResponse{
		MovieDetails: v.Details,
		Credits:      v.Credits,
		Similar:      v.Similar,
		Videos:       v.Videos,
	}
	for _, e := range v.Errors {
		body.Errors = append(body.Errors, sectionErrorBody{Section: e.Section, Error: e.Err.Error()})
	}
	return body
}

func (h *MoviesHandler) genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.movies.Genres(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}
