package storage

import (
	"context"
	"fmt"

	"github.com/runnerr0/viewtally/internal/config"
)

// Open returns the history store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.HistoryConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		path, err := cfg.SQLitePath()
		if err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, path, cfg.JournalMode, cfg.Limit)
	case config.BackendRedis:
		return OpenRedis(ctx, cfg.RedisURL, cfg.RedisKey, cfg.Limit)
	case config.BackendMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, cfg.Limit)
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
}
