package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/pokedex/internal/auth"
	"github.com/richxcame/pokedex/internal/favorites"
	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/config"
	"github.com/richxcame/pokedex/pkg/database"
	"github.com/richxcame/pokedex/pkg/health"
	"github.com/richxcame/pokedex/pkg/jwtkeys"
	"github.com/richxcame/pokedex/pkg/logger"
	"github.com/richxcame/pokedex/pkg/ratelimit"
	"github.com/richxcame/pokedex/pkg/redis"
	"github.com/richxcame/pokedex/pkg/secrets"
	"github.com/richxcame/pokedex/pkg/storage"
	"github.com/richxcame/pokedex/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName    = "pokedex-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()
	if err := secrets.Apply(context.Background(), cfg); err != nil {
		return err
	}
	production := cfg.Server.Environment == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	var extra []gin.HandlerFunc
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     serviceName + "@" + serviceVersion,
		}); err != nil {
			log.Warn("failed to initialize sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
			extra = append(extra, sentrygin.New(sentrygin.Options{Repanic: true}))
			log.Info("sentry error reporting enabled")
		}
	}

	tp, err := tracing.InitTracer(context.Background(), serviceName, serviceVersion, cfg.Tracing)
	if err != nil {
		log.Warn("failed to initialize tracing, continuing without it", zap.Error(err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				log.Warn("failed to shut down tracer", zap.Error(err))
			}
		}()
	}

	if cfg.Database.RunMigrations {
		if err := database.Migrate(cfg.Database.URL()); err != nil {
			return err
		}
		log.Info("database migrations applied")
	}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(pool)
	log.Info("connected to PostgreSQL")

	readiness := map[string]func() error{
		"database": health.NewCachedChecker(health.DatabaseChecker(pool), 5*time.Second).Check,
	}

	// Redis backs the catalog cache and the credential rate limiter. Both
	// degrade to pass-through when it is unavailable.
	var (
		cache   pokemons.Cache
		limiter *ratelimit.Limiter
	)
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
	} else {
		defer redisClient.Close()
		cache = redisClient
		if cfg.RateLimit.Enabled {
			limiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit)
		}
		readiness["redis"] = health.NewCachedChecker(health.RedisChecker(redisClient), 5*time.Second).Check
		log.Info("connected to Redis")
	}

	catalog := pokemons.NewService(pokemons.NewRepository(pool), cache, time.Duration(cfg.Redis.CacheTTL)*time.Second)
	if cfg.Storage.Enabled() {
		images, err := storage.New(context.Background(), &cfg.Storage)
		if err != nil {
			return err
		}
		catalog.WithImageStore(images)
		log.Info("image uploads enabled", zap.String("bucket", cfg.Storage.Bucket))
	}
	catalogHandler := pokemons.NewHandler(catalog)
	catalogHandler.SetMaxImageSize(cfg.Storage.MaxImageSizeMB)

	jwtProvider := jwtkeys.NewStaticProvider(cfg.JWT.Secret)
	tokenTTL := time.Duration(cfg.JWT.Expiration) * time.Hour

	router := setupRouter(routerDeps{
		serviceName:    serviceName,
		version:        serviceVersion,
		production:     production,
		allowedOrigins: cfg.Server.AllowedOrigins(),
		requestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		extra:          extra,
		jwtProvider:    jwtProvider,
		limiter:        limiter,
		readiness:      readiness,
		auth:           auth.NewHandler(auth.NewService(auth.NewRepository(pool), jwtProvider, tokenTTL)),
		pokemons:       catalogHandler,
		favorites:      favorites.NewHandler(favorites.NewService(favorites.NewRepository(pool))),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout+cfg.Server.RequestTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
