package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/richxcame/pokedex/internal/auth"
	"github.com/richxcame/pokedex/internal/favorites"
	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/config"
	"github.com/richxcame/pokedex/pkg/httpclient"
	"github.com/richxcame/pokedex/pkg/pagination"
	"github.com/richxcame/pokedex/pkg/resilience"
)

// ErrNotLoggedIn is returned by calls that need a token when none is set
var ErrNotLoggedIn = errors.New("not logged in")

// Client is a typed client for the pokedex HTTP API. It satisfies
// favstate.Gateway.
type Client struct {
	http *httpclient.Client

	mu    sync.RWMutex
	token string
}

// New builds a client from the terminal client configuration with retries on
// reads and a circuit breaker in front of the API.
func New(cfg *config.ClientConfig) *Client {
	retry := resilience.DefaultRetryConfig()
	retry.InitialBackoff = 200 * time.Millisecond
	retry.MaxBackoff = 2 * time.Second
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	retry.RetryableChecker = httpclient.IsHTTPRetryable

	settings := resilience.BuildSettings("pokedex-api", 0, cfg.BreakerTimeout, cfg.BreakerFailureThreshold, 1)
	settings.IsFailure = isUpstreamFailure

	hc := httpclient.NewClient(cfg.APIURL, time.Duration(cfg.Timeout)*time.Second).Apply(
		httpclient.WithRetry(retry),
		httpclient.WithBreaker(resilience.NewCircuitBreaker(settings, resilience.GracefulDegradation("pokedex-api"))),
	)
	return NewWithHTTP(hc)
}

// NewWithHTTP wraps an already configured transport
func NewWithHTTP(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

// isUpstreamFailure counts transport errors and 5xx responses against the
// breaker; client errors such as 404 or 409 are normal answers.
func isUpstreamFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	code := httpclient.StatusCode(err)
	return code == 0 || code >= 500
}

// SetToken sets the bearer token sent with authenticated calls
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoadTokenFile reads a token saved by SaveTokenFile. A missing file is not an error.
func (c *Client) LoadTokenFile(path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}
	c.SetToken(strings.TrimSpace(string(b)))
	return nil
}

// SaveTokenFile persists the current token, or removes the file when logged out
func (c *Client) SaveTokenFile(path string) error {
	if path == "" {
		return nil
	}
	token := c.Token()
	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove token file: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (c *Client) authHeaders() (map[string]string, error) {
	token := c.Token()
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// Signup registers a user and keeps the returned token
func (c *Client) Signup(ctx context.Context, username, password string) (*auth.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/signup", username, password)
}

// Login authenticates and keeps the returned token
func (c *Client) Login(ctx context.Context, username, password string) (*auth.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (*auth.AuthResponse, error) {
	body, err := c.http.Post(ctx, path, map[string]string{"username": username, "password": password}, nil)
	if err != nil {
		return nil, err
	}
	var resp auth.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	c.SetToken(resp.AccessToken)
	return &resp, nil
}

// Logout forgets the token
func (c *Client) Logout() {
	c.SetToken("")
}

// Me returns the authenticated user's profile
func (c *Client) Me(ctx context.Context) (*auth.User, error) {
	var user auth.User
	if err := c.getJSON(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListQuery selects a catalog page
type ListQuery struct {
	Page      int
	Limit     int
	Name      string
	Type      string
	Legendary *bool
	MinSpeed  *int
	MaxSpeed  *int
}

// Encode renders the query string for GET /pokemons
func (q ListQuery) Encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	if q.Legendary != nil {
		v.Set("legendary", strconv.FormatBool(*q.Legendary))
	}
	if q.MinSpeed != nil {
		v.Set("minSpeed", strconv.Itoa(*q.MinSpeed))
	}
	if q.MaxSpeed != nil {
		v.Set("maxSpeed", strconv.Itoa(*q.MaxSpeed))
	}
	return v.Encode()
}

// ListPokemons returns one page of the catalog
func (c *Client) ListPokemons(ctx context.Context, q ListQuery) (*pagination.Page[pokemons.PokemonView], error) {
	path := "/pokemons"
	if qs := q.Encode(); qs != "" {
		path += "?" + qs
	}
	var page pagination.Page[pokemons.PokemonView]
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPokemon returns a single catalog item
func (c *Client) GetPokemon(ctx context.Context, id int) (*pokemons.PokemonView, error) {
	var p pokemons.PokemonView
	if err := c.getJSON(ctx, "/pokemons/"+strconv.Itoa(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddFavorite favorites a pokemon for the current user
func (c *Client) AddFavorite(ctx context.Context, itemID int) error {
	headers, err := c.authHeaders()
	if err != nil {
		return err
	}
	_, err = c.http.Post(ctx, "/favorites/"+strconv.Itoa(itemID), nil, headers)
	return err
}

// RemoveFavorite removes a pokemon from the current user's favorites
func (c *Client) RemoveFavorite(ctx context.Context, itemID int) error {
	headers, err := c.authHeaders()
	if err != nil {
		return err
	}
	_, err = c.http.Delete(ctx, "/favorites/"+strconv.Itoa(itemID), headers)
	return err
}

// GetMyFavorites returns the current user's favorites
func (c *Client) GetMyFavorites(ctx context.Context) (*favorites.FavoritesResponse, error) {
	return c.favorites(ctx, "/favorites/users/me")
}

// GetUserFavorites returns another user's favorites; the server requires admin
func (c *Client) GetUserFavorites(ctx context.Context, userID int64) (*favorites.FavoritesResponse, error) {
	return c.favorites(ctx, "/favorites/users/"+strconv.FormatInt(userID, 10))
}

// FavoriteIDs returns the ids of the current user's favorites
func (c *Client) FavoriteIDs(ctx context.Context) ([]int, error) {
	resp, err := c.GetMyFavorites(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(resp.Items))
	for _, item := range resp.Items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (c *Client) favorites(ctx context.Context, path string) (*favorites.FavoritesResponse, error) {
	var resp favorites.FavoritesResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	headers, err := c.authHeaders()
	if err != nil {
		return err
	}
	body, err := c.http.Get(ctx, path, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Message returns the server's error message when err carries an error body,
// otherwise err's own text
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		var body common.ErrorBody
		if json.Unmarshal([]byte(httpErr.Body), &body) == nil && body.Error.Message != "" {
			return body.Error.Message
		}
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "API unavailable, try again shortly"
	}
	return err.Error()
}
