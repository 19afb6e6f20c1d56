package favorites

import (
	"errors"
	"time"

	"github.com/richxcame/pokedex/internal/pokemons"
)

var (
	// ErrFavoriteExists is returned when the user already favorited the pokemon
	ErrFavoriteExists = errors.New("favorite already exists")
	// ErrFavoriteNotFound is returned when the user has no favorite for the pokemon
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrUserGone is returned when the favoriting user no longer exists
	ErrUserGone = errors.New("user no longer exists")
)

// Favorite is a persisted user to pokemon relation
type Favorite struct {
	ID        int64                 `json:"id"`
	UserID    int64                 `json:"userId"`
	PokemonID int                   `json:"pokemonId"`
	CreatedAt time.Time             `json:"createdAt"`
	Pokemon   *pokemons.PokemonView `json:"pokemon,omitempty"`
}

// FavoritesResponse is the full favorites list of one user
type FavoritesResponse struct {
	Items []pokemons.PokemonView `json:"items"`
	Total int                    `json:"total"`
}
