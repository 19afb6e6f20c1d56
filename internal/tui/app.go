// Package tui is the terminal client for the pokedex API. It follows the
// bubbletea model/update/view loop; favorites go through favstate so a
// toggle shows up before the server answers.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/richxcame/pokedex/internal/apiclient"
	"github.com/richxcame/pokedex/internal/auth"
	"github.com/richxcame/pokedex/internal/favorites"
	"github.com/richxcame/pokedex/internal/favstate"
	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/pagination"
)

const (
	requestTimeout = 10 * time.Second
	statusTTL      = 3 * time.Second
	pageSize       = 20
)

// API is the part of apiclient.Client the terminal client uses
type API interface {
	favstate.Gateway
	Login(ctx context.Context, username, password string) (*auth.AuthResponse, error)
	Signup(ctx context.Context, username, password string) (*auth.AuthResponse, error)
	Me(ctx context.Context) (*auth.User, error)
	Logout()
	ListPokemons(ctx context.Context, q apiclient.ListQuery) (*pagination.Page[pokemons.PokemonView], error)
	GetMyFavorites(ctx context.Context) (*favorites.FavoritesResponse, error)
	SaveTokenFile(path string) error
}

type screen int

const (
	screenLogin screen = iota
	screenBrowse
	screenFavorites
)

type (
	authResultMsg struct {
		user *auth.User
		err  error
	}
	pageMsg struct {
		page *pagination.Page[pokemons.PokemonView]
		err  error
	}
	favoritesListMsg struct {
		resp *favorites.FavoritesResponse
		err  error
	}
	favoritesLoadedMsg struct{ err error }
	favoritesChangedMsg struct{ ids []int }
	toggleResultMsg    struct{ result favstate.Result }
	clearStatusMsg     struct{ seq int }
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// pokemonItem implements list.DefaultItem
type pokemonItem struct {
	view     pokemons.PokemonView
	favorite bool
}

func (i pokemonItem) Title() string {
	star := "  "
	if i.favorite {
		star = "★ "
	}
	return fmt.Sprintf("%s#%03d %s", star, i.view.ID, i.view.Name)
}

func (i pokemonItem) Description() string {
	types := i.view.Type1
	if i.view.Type2 != nil && *i.view.Type2 != "" {
		types += "/" + *i.view.Type2
	}
	desc := fmt.Sprintf("%s · gen %d · total %d · spd %d", types, i.view.Generation, i.view.Total, i.view.Speed)
	if i.view.Legendary {
		desc += " · legendary"
	}
	return desc
}

func (i pokemonItem) FilterValue() string { return i.view.Name }

// App is the root bubbletea model
type App struct {
	api       API
	favs      *favstate.State
	events    chan tea.Msg
	tokenFile string

	screen   screen
	user     *auth.User
	username textinput.Model
	password textinput.Model
	search   textinput.Model
	focus    int
	busy     bool

	query       apiclient.ListQuery
	page        *pagination.Page[pokemons.PokemonView]
	browse      list.Model
	favorites   []pokemons.PokemonView
	favList     list.Model
	searching   bool
	status      string
	statusErr   bool
	statusSeq   int
	width       int
	height      int
	unsubscribe func()
}

// AppOption customizes App construction
type AppOption func(*App)

// WithTokenFile persists the access token between runs
func WithTokenFile(path string) AppOption {
	return func(a *App) {
		a.tokenFile = path
	}
}

// WithFavoritesState shares an existing favorites state
func WithFavoritesState(s *favstate.State) AppOption {
	return func(a *App) {
		if s != nil {
			a.favs = s
		}
	}
}

// NewApp creates the terminal client. When api already holds a token the
// app starts by checking it instead of showing the login form.
func NewApp(api API, opts ...AppOption) *App {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 20
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "name"

	browse := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	browse.Title = "Pokedex"
	browse.SetShowStatusBar(false)
	browse.SetFilteringEnabled(false)

	favList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	favList.Title = "Favorites"
	favList.SetShowStatusBar(false)
	favList.SetFilteringEnabled(false)

	a := &App{
		api:      api,
		events:   make(chan tea.Msg, 64),
		username: username,
		password: password,
		search:   search,
		browse:   browse,
		favList:  favList,
		query:    apiclient.ListQuery{Page: 1, Limit: pageSize},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.favs == nil {
		a.favs = favstate.New(api)
	}
	a.unsubscribe = a.favs.Subscribe(favstate.ObserverFuncs{
		Change:    func(ids []int) { a.publish(favoritesChangedMsg{ids: ids}) },
		Succeeded: func(r favstate.Result) { a.publish(toggleResultMsg{result: r}) },
		Failed:    func(r favstate.Result) { a.publish(toggleResultMsg{result: r}) },
	})
	return a
}

// publish hands an observer event to the update loop. Events are dropped
// rather than block the favorites state when the loop falls far behind.
func (a *App) publish(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
	}
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-a.events
	}
}

// Close detaches the app from the favorites state
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Init is called once when the program starts
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.waitForEvent(), a.checkSession())
}

func (a *App) checkSession() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		user, err := a.api.Me(ctx)
		if err != nil {
			return authResultMsg{err: errSilent{err}}
		}
		return authResultMsg{user: user}
	}
}

// errSilent marks a failed session check that should not be shown as an error
type errSilent struct{ error }

func (a *App) submitAuth(signup bool) tea.Cmd {
	username := strings.TrimSpace(a.username.Value())
	password := a.password.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		call := a.api.Login
		if signup {
			call = a.api.Signup
		}
		resp, err := call(ctx, username, password)
		if err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: resp.User}
	}
}

func (a *App) fetchPage() tea.Cmd {
	q := a.query
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := a.api.ListPokemons(ctx, q)
		return pageMsg{page: page, err: err}
	}
}

func (a *App) fetchFavorites() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := a.api.GetMyFavorites(ctx)
		return favoritesListMsg{resp: resp, err: err}
	}
}

func (a *App) loadFavorites() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return favoritesLoadedMsg{err: a.favs.Load(ctx)}
	}
}

// toggle flips the selected item. The state applies it at once; the outcome
// arrives later through the observer.
func (a *App) toggle(id int) {
	a.favs.Toggle(context.Background(), id)
}

func (a *App) setStatus(text string, isErr bool) tea.Cmd {
	a.status = text
	a.statusErr = isErr
	a.statusSeq++
	seq := a.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

// Update is called when a message is received
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browse.SetSize(max(0, msg.Width-4), max(0, msg.Height-6))
		a.favList.SetSize(max(0, msg.Width-4), max(0, msg.Height-6))
		return a, nil

	case authResultMsg:
		a.busy = false
		if msg.err != nil {
			if _, silent := msg.err.(errSilent); silent {
				return a, nil
			}
			return a, a.setStatus(apiclient.Message(msg.err), true)
		}
		a.user = msg.user
		a.screen = screenBrowse
		a.password.SetValue("")
		if a.tokenFile != "" {
			if err := a.api.SaveTokenFile(a.tokenFile); err != nil {
				return a, tea.Batch(a.fetchPage(), a.loadFavorites(), a.setStatus(err.Error(), true))
			}
		}
		return a, tea.Batch(a.fetchPage(), a.loadFavorites())

	case pageMsg:
		if msg.err != nil {
			return a, a.setStatus(apiclient.Message(msg.err), true)
		}
		a.page = msg.page
		a.refreshBrowse()
		return a, nil

	case favoritesLoadedMsg:
		if msg.err != nil {
			return a, a.setStatus("Failed to load favorites: "+apiclient.Message(msg.err), true)
		}
		return a, nil

	case favoritesListMsg:
		if msg.err != nil {
			return a, a.setStatus(apiclient.Message(msg.err), true)
		}
		a.favorites = msg.resp.Items
		a.refreshFavorites()
		return a, nil

	case favoritesChangedMsg:
		a.refreshBrowse()
		a.refreshFavorites()
		return a, a.waitForEvent()

	case toggleResultMsg:
		return a, tea.Batch(a.waitForEvent(), a.setStatus(msg.result.Message, !msg.result.OK()))

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case screenLogin:
			return a.updateLogin(msg)
		case screenBrowse:
			return a.updateBrowse(msg)
		case screenFavorites:
			return a.updateFavorites(msg)
		}
	}

	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		a.focus = 1 - a.focus
		if a.focus == 0 {
			a.password.Blur()
			return a, a.username.Focus()
		}
		a.username.Blur()
		return a, a.password.Focus()
	case "enter", "ctrl+n":
		if a.busy {
			return a, nil
		}
		if strings.TrimSpace(a.username.Value()) == "" || a.password.Value() == "" {
			return a, a.setStatus("Username and password are required", true)
		}
		a.busy = true
		return a, a.submitAuth(msg.String() == "ctrl+n")
	}

	var cmd tea.Cmd
	if a.focus == 0 {
		a.username, cmd = a.username.Update(msg)
	} else {
		a.password, cmd = a.password.Update(msg)
	}
	return a, cmd
}

func (a *App) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		switch msg.String() {
		case "enter":
			a.searching = false
			a.search.Blur()
			a.query.Name = strings.TrimSpace(a.search.Value())
			a.query.Page = 1
			return a, a.fetchPage()
		case "esc":
			a.searching = false
			a.search.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "f", " ":
		if item, ok := a.browse.SelectedItem().(pokemonItem); ok {
			a.toggle(item.view.ID)
		}
		return a, nil
	case "n":
		if a.page != nil && a.query.Page < a.page.TotalPages {
			a.query.Page++
			return a, a.fetchPage()
		}
		return a, nil
	case "p":
		if a.query.Page > 1 {
			a.query.Page--
			return a, a.fetchPage()
		}
		return a, nil
	case "/":
		a.searching = true
		a.search.SetValue(a.query.Name)
		return a, a.search.Focus()
	case "v":
		a.screen = screenFavorites
		return a, a.fetchFavorites()
	case "r":
		return a, tea.Batch(a.fetchPage(), a.loadFavorites())
	case "L":
		return a.logout()
	}

	var cmd tea.Cmd
	a.browse, cmd = a.browse.Update(msg)
	return a, cmd
}

func (a *App) updateFavorites(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "v":
		a.screen = screenBrowse
		return a, nil
	case "f", " ", "x":
		if item, ok := a.favList.SelectedItem().(pokemonItem); ok {
			a.toggle(item.view.ID)
		}
		return a, nil
	case "r":
		return a, tea.Batch(a.fetchFavorites(), a.loadFavorites())
	}

	var cmd tea.Cmd
	a.favList, cmd = a.favList.Update(msg)
	return a, cmd
}

func (a *App) logout() (tea.Model, tea.Cmd) {
	a.api.Logout()
	a.favs.Clear()
	a.user = nil
	a.page = nil
	a.favorites = nil
	a.screen = screenLogin
	a.focus = 0
	a.password.Blur()
	var cmds []tea.Cmd
	cmds = append(cmds, a.username.Focus())
	if a.tokenFile != "" {
		if err := a.api.SaveTokenFile(a.tokenFile); err != nil {
			cmds = append(cmds, a.setStatus(err.Error(), true))
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) refreshBrowse() {
	if a.page == nil {
		a.browse.SetItems(nil)
		return
	}
	items := make([]list.Item, 0, len(a.page.Items))
	for _, v := range a.page.Items {
		items = append(items, pokemonItem{view: v, favorite: a.favs.IsFavorite(v.ID)})
	}
	a.browse.SetItems(items)
}

// refreshFavorites shows the fetched favorites that the state still holds, so
// an optimistic removal disappears at once and reappears on rollback
func (a *App) refreshFavorites() {
	items := make([]list.Item, 0, len(a.favorites))
	for _, v := range a.favorites {
		if a.favs.IsFavorite(v.ID) {
			items = append(items, pokemonItem{view: v, favorite: true})
		}
	}
	a.favList.SetItems(items)
}

// View renders the current screen
func (a *App) View() string {
	var body, help string
	switch a.screen {
	case screenLogin:
		body = a.viewLogin()
		help = "tab switch field · enter log in · ctrl+n sign up · ctrl+c quit"
	case screenBrowse:
		body = a.viewBrowse()
		help = "f favorite · n/p page · / search · v favorites · r reload · L log out · q quit"
	case screenFavorites:
		body = a.favList.View()
		help = "f remove · r reload · esc back · q quit"
	}

	lines := []string{body}
	if a.status != "" {
		style := okStyle
		if a.statusErr {
			style = errStyle
		}
		lines = append(lines, style.Render(a.status))
	}
	lines = append(lines, hintStyle.Render(help))
	return strings.Join(lines, "\n")
}

func (a *App) viewLogin() string {
	form := strings.Join([]string{
		titleStyle.Render("Pokedex"),
		"",
		a.username.View(),
		a.password.View(),
	}, "\n")
	if a.busy {
		form += "\n" + hintStyle.Render("signing in...")
	}
	return borderStyle.Render(form)
}

func (a *App) viewBrowse() string {
	header := titleStyle.Render("Pokedex")
	if a.user != nil {
		header += hintStyle.Render(fmt.Sprintf("  %s · %d favorites", a.user.Username, len(a.favs.IDs())))
	}
	if a.page != nil {
		header += hintStyle.Render(fmt.Sprintf("  page %d/%d · %d results", a.page.Page, max(1, a.page.TotalPages), a.page.Total))
	}
	if a.searching {
		header += "\n" + a.search.View()
	} else if a.query.Name != "" {
		header += hintStyle.Render("  name: " + a.query.Name)
	}
	return header + "\n" + a.browse.View()
}
