package pokemons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/logger"
	"github.com/richxcame/pokedex/pkg/pagination"
	"github.com/richxcame/pokedex/pkg/redis"
	"github.com/richxcame/pokedex/pkg/storage"
	"go.uber.org/zap"
)

var cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pokedex",
	Subsystem: "catalog",
	Name:      "cache_requests_total",
	Help:      "Find-by-id cache lookups by result",
}, []string{"result"})

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Service handles catalog business logic
type Service struct {
	repo     RepositoryInterface
	cache    Cache
	cacheTTL time.Duration
	images   ImageStore
}

// NewService creates a catalog service. cache may be nil.
func NewService(repo RepositoryInterface, cache Cache, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// WithImageStore enables image uploads
func (s *Service) WithImageStore(images ImageStore) *Service {
	s.images = images
	return s
}

func cacheKey(id int) string {
	return fmt.Sprintf("pokemon:%d", id)
}

// List returns one page of the filtered catalog
func (s *Service) List(ctx context.Context, filters *Filters, params pagination.Params) (pagination.Page[PokemonView], error) {
	items, total, err := s.repo.List(ctx, filters, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[PokemonView]{}, common.NewInternalServerError("failed to list pokemons", err)
	}
	return pagination.NewPage(ToViews(items), total, params), nil
}

// GetByID returns a single catalog item, consulting the cache first
func (s *Service) GetByID(ctx context.Context, id int) (*PokemonView, error) {
	if s.cache != nil {
		var cached PokemonView
		err := s.cache.GetJSON(ctx, cacheKey(id), &cached)
		switch {
		case err == nil:
			cacheRequests.WithLabelValues("hit").Inc()
			return &cached, nil
		case errors.Is(err, redis.ErrCacheMiss):
			cacheRequests.WithLabelValues("miss").Inc()
		default:
			cacheRequests.WithLabelValues("error").Inc()
			logger.WithContext(ctx).Warn("catalog cache read failed", zap.Int("pokemon_id", id), zap.Error(err))
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPokemonNotFound) {
			return nil, common.NewNotFoundError("Pokemon not found", err)
		}
		return nil, common.NewInternalServerError("failed to get pokemon", err)
	}

	view := ToView(p)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey(id), view, s.cacheTTL); err != nil {
			logger.WithContext(ctx).Warn("catalog cache write failed", zap.Int("pokemon_id", id), zap.Error(err))
		}
	}
	return &view, nil
}

// Import upserts every valid row of a catalog CSV. Rows that fail to store are
// logged and counted as skipped.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	items, skipped, err := ParseCSV(r)
	if err != nil {
		return nil, common.NewBadRequestError("Failed to import CSV: "+err.Error(), err)
	}

	log := logger.WithContext(ctx)
	imported := 0
	keys := make([]string, 0, len(items))
	for _, p := range items {
		if err := s.repo.Upsert(ctx, p); err != nil {
			if ctx.Err() != nil {
				return nil, common.NewInternalServerError("import interrupted", ctx.Err())
			}
			log.Error("failed to import pokemon", zap.Int("pokemon_id", p.ID), zap.Error(err))
			skipped++
			continue
		}
		imported++
		keys = append(keys, cacheKey(p.ID))
	}

	if s.cache != nil && len(keys) > 0 {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			log.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}

	log.Info("catalog import finished", zap.Int("imported", imported), zap.Int("skipped", skipped))

	return &ImportResult{
		Imported: imported,
		Skipped:  skipped,
		Message:  fmt.Sprintf("Successfully imported %d Pokemon", imported),
	}, nil
}

// SetImage stores an uploaded image and points the catalog row at it
func (s *Service) SetImage(ctx context.Context, id int, filename, contentType string, r io.Reader, size int64) (*PokemonView, error) {
	if s.images == nil {
		return nil, common.NewAppError(http.StatusServiceUnavailable, "Image storage is not configured", nil)
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.GetMimeTypeFromExtension(filename)
	}
	if !storage.ValidateMimeType(contentType, allowedImageTypes) {
		return nil, common.NewBadRequestError("Only image files are allowed", nil)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPokemonNotFound) {
			return nil, common.NewNotFoundError("Pokemon not found", err)
		}
		return nil, common.NewInternalServerError("failed to get pokemon", err)
	}

	log := logger.WithContext(ctx).With(zap.Int("pokemon_id", id))
	key := storage.ImageKey(id, filename)
	uploaded, err := s.images.Upload(ctx, key, r, size, contentType)
	if err != nil {
		return nil, common.NewInternalServerError("failed to store image", err)
	}

	if err := s.repo.UpdateImage(ctx, id, uploaded.URL); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			log.Warn("failed to remove orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		if errors.Is(err, ErrPokemonNotFound) {
			return nil, common.NewNotFoundError("Pokemon not found", err)
		}
		return nil, common.NewInternalServerError("failed to update pokemon image", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
			log.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}
	log.Info("pokemon image updated", zap.String("key", key))

	p.Image = &uploaded.URL
	view := ToView(p)
	return &view, nil
}
