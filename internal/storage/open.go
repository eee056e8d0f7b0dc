package storage

import (
	"context"
	"fmt"

	"mooderia/internal/cache"
	"mooderia/internal/config"

	"github.com/redis/go-redis/v9"
)

// Open builds the Store selected by cfg.StoreBackend. rdb is reused for the
// redis backend when non-nil.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile:
		return NewFile(cfg.StorePath)
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.BackendPostgres:
		return OpenPostgres(cfg.DatabaseURL)
	case config.BackendRedis:
		if rdb != nil {
			return NewRedis(rdb, cfg.RedisPrefix), nil
		}
		owned, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return &Redis{rdb: owned, prefix: cfg.RedisPrefix, owned: true}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
