package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/traveller-reservation/internal/config"
	"github.com/iliyamo/traveller-reservation/internal/database"
)

// Open builds the store named by cfg.Driver.  The returned close function
// releases the backend connection and is never nil.
func Open(ctx context.Context, cfg config.StoreConfig) (KVStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemoryStore(), noop, nil
	case config.DriverRedis:
		rdb := config.NewRedisClient(cfg.Redis)
		if rdb == nil {
			return nil, noop, fmt.Errorf("redis at %s: %w", cfg.Redis.Addr, ErrUnavailable)
		}
		return NewRedisStore(rdb, cfg.RedisPrefix), rdb.Close, nil
	case config.DriverMySQL:
		db, err := database.OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("mysql: %w: %v", ErrUnavailable, err)
		}
		store := NewMySQLStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return store, db.Close, nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, err
		}
		store := NewGormStore(db)
		if err := store.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, noop, fmt.Errorf("migrate sqlite: %w", err)
		}
		return store, sqlDB.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
