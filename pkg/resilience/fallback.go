package resilience

import (
	"context"

	"github.com/richxcame/pokedex/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc handles calls the breaker rejected.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback reports ErrCircuitOpen.
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// StaticFallback serves defaultValue while the breaker is open.
func StaticFallback(defaultValue interface{}) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("upstream unavailable, serving fallback value", zap.Error(err))
		return defaultValue, nil
	}
}

// GracefulDegradation logs and reports ErrCircuitOpen so the caller can degrade.
func GracefulDegradation(upstream string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("upstream unavailable",
			zap.String("upstream", upstream),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	}
}
