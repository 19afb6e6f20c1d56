package favorites

import (
	"context"

	"github.com/richxcame/pokedex/internal/pokemons"
)

// RepositoryInterface defines the persistence operations for favorites
type RepositoryInterface interface {
	// CreateFavorite inserts the pair and returns it joined with its pokemon
	CreateFavorite(ctx context.Context, userID int64, pokemonID int) (*Favorite, error)

	// DeleteFavorite removes the pair owned by userID
	DeleteFavorite(ctx context.Context, userID int64, pokemonID int) error

	// ListByUser returns the current catalog rows favorited by userID
	ListByUser(ctx context.Context, userID int64) ([]*pokemons.Pokemon, error)
}

// ServiceInterface defines the favorites operations exposed over HTTP
type ServiceInterface interface {
	AddFavorite(ctx context.Context, callerID int64, pokemonID int) (*Favorite, error)
	RemoveFavorite(ctx context.Context, callerID int64, pokemonID int) error
	GetFavorites(ctx context.Context, callerID, targetID int64, callerIsAdmin bool) (*FavoritesResponse, error)
}
