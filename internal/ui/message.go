package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgMoviesFetched MsgKind = iota
	MsgDetailsFetched
	MsgFavoritesFetched
	MsgFavoritesChanged
)

type moviesFetched struct {
	page  *models.MoviePage
	query string
	err   error
}

type detailsFetched struct {
	view *tasks.MovieView
	err  error
}

type favoritesFetched struct {
	result *tasks.FavoritesResult
	err    error
}

// moviesFetchedMsg is the constructor for [MsgMoviesFetched]. An empty query means trending.
func moviesFetchedMsg(page *models.MoviePage, query string, err error) Msg {
	return Msg{kind: MsgMoviesFetched, data: moviesFetched{page, query, err}}
}

// detailsFetchedMsg is the constructor for [MsgDetailsFetched]
func detailsFetchedMsg(view *tasks.MovieView, err error) Msg {
	return Msg{kind: MsgDetailsFetched, data: detailsFetched{view, err}}
}

// favoritesFetchedMsg is the constructor for [MsgFavoritesFetched]
func favoritesFetchedMsg(result *tasks.FavoritesResult, err error) Msg {
	return Msg{kind: MsgFavoritesFetched, data: favoritesFetched{result, err}}
}

// favoritesChangedMsg is the constructor for [MsgFavoritesChanged], sent when another context changes the set.
func favoritesChangedMsg(ids []int) Msg {
	return Msg{kind: MsgFavoritesChanged, data: ids}
}
