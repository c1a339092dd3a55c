package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reel/internal/favorites"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	DetailView
	FavoritesView
)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	back        ViewState
	movies      services.MovieService
	engine      tasks.Engine
	store       *favorites.Store
	width       int
	height      int
	browseList  list.Model
	favList     list.Model
	search      textinput.Model
	searching   bool
	query       string
	page        int
	totalPages  int
	detail      *tasks.MovieView
	changes     chan []int
	unsubscribe func()
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model. store must already be loaded.
func NewModel(ctx context.Context, movies services.MovieService, engine tasks.Engine, store *favorites.Store) *Model {
	search := textinput.New()
	search.Placeholder = "Search movies"
	search.Prompt = "/ "

	m := &Model{
		ctx:        ctx,
		view:       BrowseView,
		movies:     movies,
		engine:     engine,
		store:      store,
		browseList: newMovieList("Trending this week"),
		favList:    newMovieList("Favorites"),
		search:     search,
		page:       1,
		totalPages: 1,
		changes:    make(chan []int, 1),
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.unsubscribe = store.OnExternalChange(m.notifyChange)
	return m
}

// notifyChange runs on a storage goroutine. Only the latest pending set matters since the store is
// re-read on receipt.
func (m *Model) notifyChange(ids []int) {
	select {
	case m.changes <- ids:
	default:
	}
}

// Close stops listening for favorites changes.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init fetches trending movies and starts listening for favorites changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTrending(), m.waitForChanges())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.browseList.SetSize(msg.Width-4, msg.Height-6)
		m.favList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case FavoritesView:
			return m.handleFavoritesKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgMoviesFetched:
		data := msg.data.(moviesFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.query = data.query
		m.page = max(data.page.Page, 1)
		m.totalPages = max(models.CapTotalPages(data.page.TotalPages), 1)
		m.browseList.SetItems(movieItems(data.page.Results, m.store.IsFavorite))
		m.browseList.Select(0)
		if data.query == "" {
			m.browseList.Title = "Trending this week"
		} else {
			m.browseList.Title = fmt.Sprintf("Results for %q (page %d/%d)", data.query, m.page, m.totalPages)
		}
		return m, nil

	case MsgDetailsFetched:
		data := msg.data.(detailsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.detail = data.view
		m.view = DetailView
		return m, nil

	case MsgFavoritesFetched:
		data := msg.data.(favoritesFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		movies := make([]models.Movie, 0, len(data.result.Results))
		for _, res := range data.result.Movies() {
			movies = append(movies, res.Movie)
		}
		m.favList.SetItems(movieItems(movies, m.store.IsFavorite))
		m.favList.Title = fmt.Sprintf("Favorites (%d)", len(movies))
		if data.result.Failed > 0 {
			m.status = styles.warn.Render(fmt.Sprintf("%d favorites could not be loaded", data.result.Failed))
		}
		return m, nil

	case MsgFavoritesChanged:
		m.status = styles.help.Render("Favorites changed elsewhere")
		m.refreshFavorites()
		cmds := []tea.Cmd{m.waitForChanges()}
		if m.view == FavoritesView {
			cmds = append(cmds, m.fetchFavorites())
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case BrowseView:
		body = m.renderBrowse()
	case DetailView:
		body = m.renderDetail()
	case FavoritesView:
		body = m.renderFavorites()
	}

	var footer []string
	if m.err != nil {
		footer = append(footer, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.status != "" {
		footer = append(footer, m.status)
	}
	if len(footer) == 0 {
		return body
	}
	return body + "\n" + strings.Join(footer, "\n")
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		query := shared.NormalizeQuery(m.search.Value())
		if query == "" {
			return m, m.fetchTrending()
		}
		return m, m.fetchSearch(query, 1)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.search.SetValue(m.query)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.next):
		if m.query != "" && m.page < m.totalPages {
			return m, m.fetchSearch(m.query, models.ClampPage(m.page+1, m.totalPages))
		}
		return m, nil
	case key.Matches(msg, m.keys.prev):
		if m.query != "" && m.page > 1 {
			return m, m.fetchSearch(m.query, models.ClampPage(m.page-1, m.totalPages))
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.browseList.SelectedItem().(movieItem); ok {
			m.back = BrowseView
			return m, m.fetchDetails(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if item, ok := m.browseList.SelectedItem().(movieItem); ok {
			m.toggle(item.movie.ID, item.movie.Title)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		m.view = FavoritesView
		return m, m.fetchFavorites()
	case key.Matches(msg, m.keys.back):
		if m.query != "" {
			m.search.SetValue("")
			return m, m.fetchTrending()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.browseList, cmd = m.browseList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.back
		if m.back == FavoritesView {
			return m, m.fetchFavorites()
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if m.detail != nil && m.detail.Details != nil {
			m.toggle(m.detail.Details.ID, m.detail.Details.Title)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		m.view = FavoritesView
		return m, m.fetchFavorites()
	}
	return m, nil
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = BrowseView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.favList.SelectedItem().(movieItem); ok {
			m.back = FavoritesView
			return m, m.fetchDetails(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if item, ok := m.favList.SelectedItem().(movieItem); ok {
			m.toggle(item.movie.ID, item.movie.Title)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.favList, cmd = m.favList.Update(msg)
	return m, cmd
}

// toggle flips id in the store and refreshes the favorite markers.
func (m *Model) toggle(id int, title string) {
	favorite, err := m.store.Toggle(m.ctx, id)
	switch {
	case err != nil:
		m.status = styles.err.Render(err.Error())
	case favorite:
		m.status = styles.ok.Render(fmt.Sprintf("♥ Added %s to favorites", title))
	default:
		m.status = styles.warn.Render(fmt.Sprintf("Removed %s from favorites", title))
	}
	m.refreshFavorites()
}

// refreshFavorites re-marks browse items and drops favorites-view items that are no longer favorites.
func (m *Model) refreshFavorites() {
	items := m.browseList.Items()
	for i, it := range items {
		if mi, ok := it.(movieItem); ok {
			mi.favorite = m.store.IsFavorite(mi.movie.ID)
			items[i] = mi
		}
	}
	m.browseList.SetItems(items)

	kept := make([]list.Item, 0, len(m.favList.Items()))
	for _, it := range m.favList.Items() {
		if mi, ok := it.(movieItem); ok && m.store.IsFavorite(mi.movie.ID) {
			kept = append(kept, it)
		}
	}
	m.favList.SetItems(kept)
	m.favList.Title = fmt.Sprintf("Favorites (%d)", len(kept))
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	case m.view == BrowseView:
		m.browseList, cmd = m.browseList.Update(msg)
	case m.view == FavoritesView:
		m.favList, cmd = m.favList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchTrending() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.movies.Trending(m.ctx)
		if err != nil {
			return moviesFetchedMsg(nil, "", err)
		}
		return moviesFetchedMsg(&models.MoviePage{Page: 1, TotalPages: 1, Results: movies}, "", nil)
	}
}

func (m *Model) fetchSearch(query string, page int) tea.Cmd {
	return func() tea.Msg {
		result, err := m.movies.Search(m.ctx, query, page)
		return moviesFetchedMsg(result, query, err)
	}
}

func (m *Model) fetchDetails(id int) tea.Cmd {
	return func() tea.Msg {
		view, err := m.engine.MovieView(m.ctx, id, nil)
		return detailsFetchedMsg(view, err)
	}
}

func (m *Model) fetchFavorites() tea.Cmd {
	ids := m.store.Favorites()
	return func() tea.Msg {
		result, err := m.engine.FavoriteMovies(m.ctx, ids, nil)
		return favoritesFetchedMsg(result, err)
	}
}

func (m *Model) waitForChanges() tea.Cmd {
	return func() tea.Msg {
		select {
		case ids := <-m.changes:
			return favoritesChangedMsg(ids)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) renderBrowse() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.favorite, m.keys.favorites, m.keys.search}
	if m.query != "" {
		helpKeys = append(helpKeys, m.keys.next, m.keys.prev, m.keys.back)
	}
	helpKeys = append(helpKeys, m.keys.quit)

	view := m.browseList.View()
	if m.searching {
		view = fmt.Sprintf("%s\n%s", view, m.search.View())
	}
	return fmt.Sprintf("%s\n\n%s", view, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderFavorites() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.favorite, m.keys.back, m.keys.quit}
	if len(m.favList.Items()) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s",
			styles.title.Render("Favorites"),
			styles.help.Render("No favorites yet. Press f on a movie to add it."),
			m.help.ShortHelpView(helpKeys))
	}
	return fmt.Sprintf("%s\n\n%s", m.favList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	if m.detail == nil || m.detail.Details == nil {
		return styles.help.Render("Loading...")
	}
	d := m.detail.Details

	var b strings.Builder
	title := d.Title
	if year := shared.ReleaseYear(d.ReleaseDate); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	if m.store.IsFavorite(d.ID) {
		title = styles.fav.Render("♥ ") + title
	}
	b.WriteString(styles.title.Render(title) + "\n")
	if d.Tagline != "" {
		b.WriteString(styles.help.Render(d.Tagline) + "\n\n")
	}

	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s %s\n", styles.label.Render(label+":"), value)
		}
	}
	if d.VoteAverage > 0 {
		line("Rating", fmt.Sprintf("★ %.1f", d.VoteAverage))
	}
	line("Runtime", shared.FormatRuntime(d.Runtime))
	line("Genres", d.GenreNames())
	if c := m.detail.Credits; c != nil {
		line("Director", strings.Join(c.Directors(), ", "))
		cast := make([]string, 0, 5)
		for _, member := range c.Cast[:min(5, len(c.Cast))] {
			cast = append(cast, member.Name)
		}
		line("Cast", strings.Join(cast, ", "))
	}
	if d.Overview != "" {
		b.WriteString("\n" + d.Overview + "\n")
	}

	if len(m.detail.Similar) > 0 {
		b.WriteString("\n" + styles.label.Render("Similar") + "\n")
		for _, s := range m.detail.Similar[:min(5, len(m.detail.Similar))] {
			fmt.Fprintf(&b, "  • %s\n", s.Title)
		}
	}
	var videos []string
	for _, v := range m.detail.Videos {
		if u := v.URL(); u != "" {
			videos = append(videos, fmt.Sprintf("  • %s: %s", v.Type, u))
		}
	}
	if len(videos) > 0 {
		b.WriteString("\n" + styles.label.Render("Videos") + "\n" + strings.Join(videos, "\n") + "\n")
	}
	for _, e := range m.detail.Errors {
		b.WriteString(styles.warn.Render(fmt.Sprintf("\n%s unavailable: %v", e.Section, e.Err)))
	}

	helpKeys := []key.Binding{m.keys.favorite, m.keys.favorites, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}
