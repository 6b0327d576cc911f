package main

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/rocketshoes/internal/storage"
	"github.com/angelmondragon/rocketshoes/pkg/config"
	"github.com/angelmondragon/rocketshoes/pkg/db"
	"github.com/angelmondragon/rocketshoes/pkg/enums"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
	"github.com/angelmondragon/rocketshoes/pkg/migrate"
	"github.com/angelmondragon/rocketshoes/pkg/redis"
)

// backend is the opened durable storage plus whatever must be closed afterwards.
// dbClient is nil unless the backend is SQL.
type backend struct {
	storage  storage.Storage
	dbClient *db.Client
	closers  []io.Closer
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	switch kind := cfg.Storage.BackendKind(); kind {
	case enums.StorageBackendMemory:
		return &backend{storage: storage.NewMemoryStorage(nil)}, nil

	case enums.StorageBackendSQLite, enums.StorageBackendPostgres:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", kind, err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		return &backend{
			storage:  storage.NewDBStorage(dbClient.DB()),
			dbClient: dbClient,
			closers:  []io.Closer{dbClient},
		}, nil

	case enums.StorageBackendRedis:
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		return &backend{
			storage: storage.NewRedisStorage(redisClient),
			closers: []io.Closer{redisClient},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", kind)
	}
}
