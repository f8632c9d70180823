package blob

import (
	"fmt"

	"tumatch/client/internal/config"
	"tumatch/client/internal/database"
)

// Open builds the Store selected by cfg.StoreBackend. The returned close
// function releases the underlying connection and is never nil.
func Open(cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemory(), noop, nil
	case config.BackendFile:
		f, err := NewFile(cfg.StorePath)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case config.BackendSQL:
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, fmt.Errorf("database handle: %w", err)
		}
		return NewSQL(db), sqlDB.Close, nil
	case config.BackendRedis:
		client, err := NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		return NewRedis(client, ""), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
