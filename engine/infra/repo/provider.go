// Package repo builds the settings backend selected by configuration. It
// returns store.Backend rather than driver-specific types.
package repo

import (
	"context"
	"fmt"

	"github.com/slyguy/settings/engine/infra/memory"
	"github.com/slyguy/settings/engine/infra/postgres"
	"github.com/slyguy/settings/engine/infra/redis"
	"github.com/slyguy/settings/engine/infra/sqlite"
	"github.com/slyguy/settings/engine/infra/sugardb"
	"github.com/slyguy/settings/engine/store"
	"github.com/slyguy/settings/pkg/config"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSugarDB  = "sugardb"
)

// NewBackend opens the backend named by cfg.Store.Driver.
func NewBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("repo: config is required")
	}
	switch cfg.Store.Driver {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite, "":
		return open(sqlite.NewStore(ctx, &sqlite.Config{
			Path:        cfg.SQLitePath(),
			BusyTimeout: cfg.Store.SQLite.BusyTimeout,
		}))
	case DriverPostgres:
		return open(postgres.NewStore(ctx, &postgres.Config{
			ConnString: cfg.Store.Postgres.ConnString.Value(),
			MaxConns:   cfg.Store.Postgres.MaxConns,
		}))
	case DriverRedis:
		return open(redis.NewStore(ctx, &redis.Config{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password.Value(),
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		}))
	case DriverSugarDB:
		return open(sugardb.NewEmbedded(ctx, cfg.SugarDBDataDir()))
	default:
		return nil, fmt.Errorf("repo: unsupported store driver %q", cfg.Store.Driver)
	}
}

// open keeps a failed constructor's typed nil out of the interface.
func open[T store.Backend](b T, err error) (store.Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
