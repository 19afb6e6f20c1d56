package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/config"
	"github.com/richxcame/pokedex/pkg/database"
	"github.com/richxcame/pokedex/pkg/logger"
	"github.com/richxcame/pokedex/pkg/redis"
	"github.com/richxcame/pokedex/pkg/secrets"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "pokemon.csv", "path to the catalog CSV")
	migrate := flag.Bool("migrate", true, "apply database migrations before importing")
	flag.Parse()

	cfg, err := config.Load("pokedex-importer")
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Server.Environment); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *file, *migrate); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, path string, migrate bool) error {
	if err := secrets.Apply(ctx, cfg); err != nil {
		return err
	}

	if migrate {
		if err := database.Migrate(cfg.Database.URL()); err != nil {
			return err
		}
	}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(pool)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Imported ids are evicted from the API's catalog cache when Redis is reachable
	var cache pokemons.Cache
	if rc, err := redis.NewRedisClient(&cfg.Redis); err != nil {
		logger.Warn("redis unavailable, catalog cache will expire on its own", zap.Error(err))
	} else {
		defer rc.Close()
		cache = rc
	}

	svc := pokemons.NewService(pokemons.NewRepository(pool), cache, 0)
	result, err := svc.Import(ctx, f)
	if err != nil {
		return err
	}

	logger.Info(result.Message,
		zap.String("file", path),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return nil
}
