package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slyguy/settings/engine/infra/memory"
	"github.com/slyguy/settings/engine/infra/redis"
	"github.com/slyguy/settings/engine/infra/sqlite"
	"github.com/slyguy/settings/pkg/config"
)

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject a nil config", func(t *testing.T) {
		_, err := NewBackend(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("Should build the memory backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = DriverMemory
		b, err := NewBackend(ctx, cfg)
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, b)
	})

	t.Run("Should build the sqlite backend at the configured path", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = DriverSQLite
		cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "settings.db")
		b, err := NewBackend(ctx, cfg)
		require.NoError(t, err)
		defer b.Close(ctx)
		assert.IsType(t, &sqlite.Store{}, b)
	})

	t.Run("Should build the redis backend", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Store.Driver = DriverRedis
		cfg.Store.Redis.Addr = mr.Addr()
		b, err := NewBackend(ctx, cfg)
		require.NoError(t, err)
		defer b.Close(ctx)
		assert.IsType(t, &redis.Store{}, b)
	})

	t.Run("Should reject unknown drivers", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = "mysql"
		_, err := NewBackend(ctx, cfg)
		assert.Error(t, err)
	})
}
