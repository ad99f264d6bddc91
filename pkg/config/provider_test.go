package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvProvider(t *testing.T) {
	t.Run("Should return empty map as loading is handled by koanf", func(t *testing.T) {
		provider := NewEnvProvider()

		data, err := provider.Load()

		require.NoError(t, err)
		assert.Empty(t, data)
		assert.Equal(t, SourceEnv, provider.Type())
		assert.NoError(t, provider.Close())
	})
}

func TestCLIProvider_Load(t *testing.T) {
	t.Run("Should map CLI flags to configuration structure", func(t *testing.T) {
		provider := NewCLIProvider(map[string]any{
			"plugin-id":    "plugin.video.disneyplus",
			"store-driver": "redis",
			"redis-addr":   "cache:6379",
			"cache-size":   128,
		})

		data, err := provider.Load()

		require.NoError(t, err)
		assert.Equal(t, "plugin.video.disneyplus", data["plugin"].(map[string]any)["id"])
		store := data["store"].(map[string]any)
		assert.Equal(t, "redis", store["driver"])
		assert.Equal(t, "cache:6379", store["redis"].(map[string]any)["addr"])
		assert.Equal(t, 128, data["cache"].(map[string]any)["size"])
		assert.Equal(t, SourceCLI, provider.Type())
	})

	t.Run("Should ignore unknown flags", func(t *testing.T) {
		provider := NewCLIProvider(map[string]any{"json": true})

		data, err := provider.Load()

		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Should handle nil flags", func(t *testing.T) {
		data, err := NewCLIProvider(nil).Load()
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestSetNested(t *testing.T) {
	t.Run("Should create intermediate maps", func(t *testing.T) {
		m := map[string]any{}
		require.NoError(t, setNested(m, "store.redis.addr", "x"))
		assert.Equal(t, "x", m["store"].(map[string]any)["redis"].(map[string]any)["addr"])
	})

	t.Run("Should report conflicts with scalar values", func(t *testing.T) {
		m := map[string]any{"store": "flat"}
		assert.Error(t, setNested(m, "store.driver", "sqlite"))
	})
}

func TestYAMLProvider_Load(t *testing.T) {
	t.Run("Should load nested values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		content := `
plugin:
  id: plugin.video.disneyplus
store:
  driver: memory
  redis:
    addr:
host:
  conditions: [inputstream.adaptive]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		provider := NewYAMLProvider(path)

		data, err := provider.Load()

		require.NoError(t, err)
		assert.Equal(t, "plugin.video.disneyplus", data["plugin"].(map[string]any)["id"])
		store := data["store"].(map[string]any)
		assert.Equal(t, "memory", store["driver"])
		assert.NotContains(t, store, "redis")
		assert.Equal(t, SourceYAML, provider.Type())
	})

	t.Run("Should treat a missing file as empty", func(t *testing.T) {
		data, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).Load()
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Should fail on malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plugin: [unterminated"), 0o600))
		_, err := NewYAMLProvider(path).Load()
		assert.Error(t, err)
	})
}

func TestDefaultProvider_Load(t *testing.T) {
	t.Run("Should expose defaults as a nested map", func(t *testing.T) {
		provider := NewDefaultProvider()

		data, err := provider.Load()

		require.NoError(t, err)
		assert.Equal(t, "sqlite", data["store"].(map[string]any)["driver"])
		assert.Equal(t, SourceDefault, provider.Type())
	})
}
