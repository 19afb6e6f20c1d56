package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/richxcame/pokedex/internal/apiclient"
	"github.com/richxcame/pokedex/internal/auth"
	"github.com/richxcame/pokedex/internal/favorites"
	"github.com/richxcame/pokedex/internal/favstate"
	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu         sync.Mutex
	loginErr   error
	meErr      error
	addErr     error
	ids        []int
	queries    []apiclient.ListQuery
	logouts    int
	savedPaths []string
	page       *pagination.Page[pokemons.PokemonView]
	favorites  []pokemons.PokemonView
}

func (f *fakeAPI) Login(_ context.Context, username, _ string) (*auth.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &auth.AuthResponse{User: &auth.User{ID: 1, Username: username}, AccessToken: "token"}, nil
}

func (f *fakeAPI) Signup(ctx context.Context, username, password string) (*auth.AuthResponse, error) {
	return f.Login(ctx, username, password)
}

func (f *fakeAPI) Me(context.Context) (*auth.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &auth.User{ID: 1, Username: "ash"}, nil
}

func (f *fakeAPI) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
}

func (f *fakeAPI) ListPokemons(_ context.Context, q apiclient.ListQuery) (*pagination.Page[pokemons.PokemonView], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.page, nil
}

func (f *fakeAPI) GetMyFavorites(context.Context) (*favorites.FavoritesResponse, error) {
	return &favorites.FavoritesResponse{Items: f.favorites, Total: len(f.favorites)}, nil
}

func (f *fakeAPI) SaveTokenFile(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedPaths = append(f.savedPaths, path)
	return nil
}

func (f *fakeAPI) AddFavorite(context.Context, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addErr
}

func (f *fakeAPI) RemoveFavorite(context.Context, int) error { return nil }

func (f *fakeAPI) FavoriteIDs(context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.ids...), nil
}

func samplePage() *pagination.Page[pokemons.PokemonView] {
	return &pagination.Page[pokemons.PokemonView]{
		Items: []pokemons.PokemonView{
			{ID: 1, Name: "Bulbasaur", Type1: "Grass", Generation: 1},
			{ID: 4, Name: "Charmander", Type1: "Fire", Generation: 1},
		},
		Total:      60,
		Page:       1,
		Limit:      20,
		TotalPages: 3,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T, api *fakeAPI, opts ...AppOption) *App {
	t.Helper()
	app := NewApp(api, opts...)
	t.Cleanup(app.Close)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app
}

func loggedIn(t *testing.T, api *fakeAPI) *App {
	t.Helper()
	app := newTestApp(t, api)
	app.Update(authResultMsg{user: &auth.User{ID: 1, Username: "ash"}})
	app.Update(app.fetchPage()())
	return app
}

// nextEvent reads one observer event and feeds it to the app
func nextEvent(t *testing.T, app *App) tea.Msg {
	t.Helper()
	select {
	case msg := <-app.events:
		app.Update(msg)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for favorites event")
		return nil
	}
}

func browseItems(app *App) []pokemonItem {
	var out []pokemonItem
	for _, it := range app.browse.Items() {
		out = append(out, it.(pokemonItem))
	}
	return out
}

func TestApp_LoginMovesToBrowse(t *testing.T) {
	api := &fakeAPI{page: samplePage()}
	app := newTestApp(t, api, WithTokenFile("/tmp/pokedex-token"))

	app.username.SetValue("ash")
	app.password.SetValue("pikachu1")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.busy)

	msg := cmd()
	require.IsType(t, authResultMsg{}, msg)
	app.Update(msg)

	assert.Equal(t, screenBrowse, app.screen)
	assert.False(t, app.busy)
	assert.Equal(t, "ash", app.user.Username)
	assert.Empty(t, app.password.Value())
	assert.Equal(t, []string{"/tmp/pokedex-token"}, api.savedPaths)
}

func TestApp_LoginRequiresCredentials(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.NotNil(t, cmd)
	assert.False(t, app.busy)
	assert.Equal(t, "Username and password are required", app.status)
	assert.True(t, app.statusErr)
	assert.Equal(t, screenLogin, app.screen)
}

func TestApp_LoginFailureShowsMessage(t *testing.T) {
	api := &fakeAPI{loginErr: errors.New("invalid username or password")}
	app := newTestApp(t, api)
	app.username.SetValue("ash")
	app.password.SetValue("wrong")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	assert.Equal(t, screenLogin, app.screen)
	assert.Equal(t, "invalid username or password", app.status)
	assert.True(t, app.statusErr)
}

func TestApp_SilentSessionCheck(t *testing.T) {
	app := newTestApp(t, &fakeAPI{meErr: apiclient.ErrNotLoggedIn})

	app.Update(app.checkSession()())

	assert.Equal(t, screenLogin, app.screen)
	assert.Empty(t, app.status)
}

func TestApp_BrowseMarksFavorites(t *testing.T) {
	api := &fakeAPI{page: samplePage(), ids: []int{4}}
	app := loggedIn(t, api)

	app.Update(app.loadFavorites()())
	nextEvent(t, app)

	items := browseItems(app)
	require.Len(t, items, 2)
	assert.False(t, items[0].favorite)
	assert.True(t, items[1].favorite)
	assert.Contains(t, items[1].Title(), "★")
	assert.Contains(t, items[1].Title(), "#004 Charmander")
}

func TestApp_ToggleIsOptimisticThenConfirmed(t *testing.T) {
	api := &fakeAPI{page: samplePage()}
	app := loggedIn(t, api)

	app.Update(runes("f"))
	assert.True(t, app.favs.IsFavorite(1))

	assert.IsType(t, favoritesChangedMsg{}, nextEvent(t, app))
	assert.True(t, browseItems(app)[0].favorite)

	assert.IsType(t, toggleResultMsg{}, nextEvent(t, app))
	assert.Equal(t, "Added to favorites", app.status)
	assert.False(t, app.statusErr)
}

func TestApp_ToggleFailureRollsBack(t *testing.T) {
	api := &fakeAPI{page: samplePage(), addErr: favstate.ErrConflict}
	app := loggedIn(t, api)

	app.Update(runes("f"))
	nextEvent(t, app) // optimistic flip
	nextEvent(t, app) // rollback
	assert.IsType(t, toggleResultMsg{}, nextEvent(t, app))

	assert.False(t, app.favs.IsFavorite(1))
	assert.False(t, browseItems(app)[0].favorite)
	assert.Equal(t, "Pokemon is already in favorites", app.status)
	assert.True(t, app.statusErr)
}

func TestApp_Paging(t *testing.T) {
	api := &fakeAPI{page: samplePage()}
	app := loggedIn(t, api)

	_, cmd := app.Update(runes("p"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, app.query.Page)

	_, cmd = app.Update(runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, 2, app.query.Page)
	cmd()
	assert.Equal(t, 2, api.queries[len(api.queries)-1].Page)

	_, cmd = app.Update(runes("p"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, app.query.Page)
}

func TestApp_SearchResetsPage(t *testing.T) {
	api := &fakeAPI{page: samplePage()}
	app := loggedIn(t, api)
	app.query.Page = 3

	app.Update(runes("/"))
	require.True(t, app.searching)
	app.search.SetValue("  char ")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.False(t, app.searching)
	assert.Equal(t, "char", app.query.Name)
	assert.Equal(t, 1, app.query.Page)
}

func TestApp_FavoritesViewHidesOptimisticRemoval(t *testing.T) {
	api := &fakeAPI{
		page:      samplePage(),
		ids:       []int{1},
		favorites: []pokemons.PokemonView{{ID: 1, Name: "Bulbasaur", Type1: "Grass"}},
	}
	app := loggedIn(t, api)
	app.Update(app.loadFavorites()())
	nextEvent(t, app)

	_, cmd := app.Update(runes("v"))
	require.NotNil(t, cmd)
	assert.Equal(t, screenFavorites, app.screen)
	app.Update(cmd())
	require.Len(t, app.favList.Items(), 1)

	app.Update(runes("f"))
	nextEvent(t, app)
	assert.Empty(t, app.favList.Items())

	assert.IsType(t, toggleResultMsg{}, nextEvent(t, app))
	assert.Equal(t, "Removed from favorites", app.status)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenBrowse, app.screen)
}

func TestApp_LogoutClearsState(t *testing.T) {
	api := &fakeAPI{page: samplePage(), ids: []int{1, 4}}
	app := newTestApp(t, api, WithTokenFile("/tmp/pokedex-token"))
	app.Update(authResultMsg{user: &auth.User{ID: 1, Username: "ash"}})
	app.Update(app.loadFavorites()())
	nextEvent(t, app)
	require.Len(t, app.favs.IDs(), 2)

	app.Update(runes("L"))

	assert.Equal(t, screenLogin, app.screen)
	assert.Nil(t, app.user)
	assert.Empty(t, app.favs.IDs())
	assert.Equal(t, 1, api.logouts)
	assert.Len(t, api.savedPaths, 2)
}

func TestApp_StaleStatusClearIgnored(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})

	app.setStatus("first", false)
	app.setStatus("second", false)
	app.Update(clearStatusMsg{seq: 1})
	assert.Equal(t, "second", app.status)

	app.Update(clearStatusMsg{seq: 2})
	assert.Empty(t, app.status)
}

func TestApp_View(t *testing.T) {
	api := &fakeAPI{page: samplePage()}
	app := newTestApp(t, api)
	assert.Contains(t, app.View(), "enter log in")

	app.Update(authResultMsg{user: &auth.User{ID: 1, Username: "ash"}})
	app.Update(app.fetchPage()())
	view := app.View()
	assert.Contains(t, view, "ash")
	assert.Contains(t, view, "page 1/3")
	assert.Contains(t, view, "Bulbasaur")
}

func TestApp_QuitKeys(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// q types into the login form instead of quitting
	app.Update(runes("q"))
	assert.Equal(t, "q", app.username.Value())
}
