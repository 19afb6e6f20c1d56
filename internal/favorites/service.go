package favorites

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/logger"
	"go.uber.org/zap"
)

var operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pokedex",
	Subsystem: "favorites",
	Name:      "operations_total",
	Help:      "Favorites operations by kind and outcome",
}, []string{"operation", "result"})

// Service applies authorization and response shaping in front of the repository
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new favorites service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// AddFavorite favorites pokemonID on behalf of the caller
func (s *Service) AddFavorite(ctx context.Context, callerID int64, pokemonID int) (*Favorite, error) {
	log := logger.WithContext(ctx).With(zap.Int64("user_id", callerID), zap.Int("pokemon_id", pokemonID))

	fav, err := s.repo.CreateFavorite(ctx, callerID, pokemonID)
	if err != nil {
		switch {
		case errors.Is(err, ErrFavoriteExists):
			operations.WithLabelValues("add", "conflict").Inc()
			log.Info("favorite already exists")
			return nil, common.NewConflictError("Pokemon is already in favorites")
		case errors.Is(err, pokemons.ErrPokemonNotFound):
			operations.WithLabelValues("add", "not_found").Inc()
			return nil, common.NewNotFoundError("Pokemon not found", err)
		case errors.Is(err, ErrUserGone):
			operations.WithLabelValues("add", "unauthorized").Inc()
			log.Warn("favorite requested for a deleted user")
			return nil, common.NewUnauthorizedError("User no longer exists")
		}
		operations.WithLabelValues("add", "error").Inc()
		log.Error("failed to add favorite", zap.Error(err))
		return nil, common.NewInternalServerError("failed to add favorite", err)
	}

	operations.WithLabelValues("add", "ok").Inc()
	log.Info("favorite added", zap.Int64("favorite_id", fav.ID))
	return fav, nil
}

// RemoveFavorite removes the caller's favorite for pokemonID
func (s *Service) RemoveFavorite(ctx context.Context, callerID int64, pokemonID int) error {
	log := logger.WithContext(ctx).With(zap.Int64("user_id", callerID), zap.Int("pokemon_id", pokemonID))

	if err := s.repo.DeleteFavorite(ctx, callerID, pokemonID); err != nil {
		if errors.Is(err, ErrFavoriteNotFound) {
			operations.WithLabelValues("remove", "not_found").Inc()
			return common.NewNotFoundError("Favorite not found", err)
		}
		operations.WithLabelValues("remove", "error").Inc()
		log.Error("failed to remove favorite", zap.Error(err))
		return common.NewInternalServerError("failed to remove favorite", err)
	}

	operations.WithLabelValues("remove", "ok").Inc()
	log.Info("favorite removed")
	return nil
}

// GetFavorites returns the full favorites list of targetID. Callers other than
// the owner need admin rights; otherwise the result is NotFound, the same as
// for a user that does not exist.
func (s *Service) GetFavorites(ctx context.Context, callerID, targetID int64, callerIsAdmin bool) (*FavoritesResponse, error) {
	if targetID != callerID && !callerIsAdmin {
		operations.WithLabelValues("list", "not_found").Inc()
		logger.WithContext(ctx).Warn("favorites of another user requested",
			zap.Int64("user_id", callerID), zap.Int64("target_user_id", targetID))
		return nil, common.NewNotFoundError("User not found", nil)
	}

	items, err := s.repo.ListByUser(ctx, targetID)
	if err != nil {
		operations.WithLabelValues("list", "error").Inc()
		logger.WithContext(ctx).Error("failed to list favorites", zap.Int64("target_user_id", targetID), zap.Error(err))
		return nil, common.NewInternalServerError("failed to get favorites", err)
	}

	operations.WithLabelValues("list", "ok").Inc()
	views := pokemons.ToViews(items)
	return &FavoritesResponse{Items: views, Total: len(views)}, nil
}
