package pokemons

import (
	"context"
	"io"
	"time"

	"github.com/richxcame/pokedex/pkg/storage"
)

// RepositoryInterface defines catalog persistence
type RepositoryInterface interface {
	List(ctx context.Context, filters *Filters, limit, offset int) ([]*Pokemon, int64, error)
	GetByID(ctx context.Context, id int) (*Pokemon, error)
	Upsert(ctx context.Context, p *Pokemon) error
	UpdateImage(ctx context.Context, id int, image string) error
}

// Cache is the subset of the Redis client used for find-by-id caching
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ImageStore keeps uploaded pokemon images
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.UploadResult, error)
	Delete(ctx context.Context, key string) error
}
