// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [BrowseView] : trending movies, or TMDB search results paged with n/p
//  2. [DetailView] : details, credits, similar movies and videos for one movie
//  3. [FavoritesView] : the favorites set resolved to movies
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// The model owns a [favorites.Store]; changes made by other contexts (the server, another terminal) arrive
// through a channel and re-render the open view.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, v, /, n/p, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
