package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/slyguy/settings/pkg/config/definition"
)

// Config represents the complete configuration of a settings process.
type Config struct {
	Plugin    PluginConfig    `koanf:"plugin"    validate:"required"`
	Store     StoreConfig     `koanf:"store"     validate:"required"`
	Cache     CacheConfig     `koanf:"cache"`
	Migration MigrationConfig `koanf:"migration"`
	Language  LanguageConfig  `koanf:"language"`
	Host      HostConfig      `koanf:"host"`
	Runtime   RuntimeConfig   `koanf:"runtime"`
}

// PluginConfig identifies the active namespace and the shared one it inherits from.
type PluginConfig struct {
	ID         string `koanf:"id"          validate:"required,namespace_id" env:"SLYGUY_PLUGIN_ID"`
	Name       string `koanf:"name"                                         env:"SLYGUY_PLUGIN_NAME"`
	Common     string `koanf:"common"      validate:"required,namespace_id" env:"SLYGUY_PLUGIN_COMMON"`
	ProfileDir string `koanf:"profile_dir"                                  env:"SLYGUY_PROFILE_DIR"`
}

// StoreConfig selects and configures the persistence backing.
type StoreConfig struct {
	Driver   string         `koanf:"driver"   validate:"store_driver" env:"SLYGUY_STORE_DRIVER"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
	SugarDB  SugarDBConfig  `koanf:"sugardb"`
}

type SQLiteConfig struct {
	Path        string        `koanf:"path"         env:"SLYGUY_STORE_SQLITE_PATH"`
	BusyTimeout time.Duration `koanf:"busy_timeout" env:"SLYGUY_STORE_SQLITE_BUSY_TIMEOUT"`
}

type PostgresConfig struct {
	ConnString SensitiveString `koanf:"conn_string" env:"SLYGUY_STORE_POSTGRES_CONN_STRING" sensitive:"true"`
	MaxConns   int             `koanf:"max_conns"   env:"SLYGUY_STORE_POSTGRES_MAX_CONNS"   validate:"min=0"`
}

type RedisConfig struct {
	Addr     string          `koanf:"addr"     env:"SLYGUY_STORE_REDIS_ADDR"`
	Password SensitiveString `koanf:"password" env:"SLYGUY_STORE_REDIS_PASSWORD" sensitive:"true"`
	DB       int             `koanf:"db"       env:"SLYGUY_STORE_REDIS_DB"       validate:"min=0"`
	Prefix   string          `koanf:"prefix"   env:"SLYGUY_STORE_REDIS_PREFIX"`
}

type SugarDBConfig struct {
	DataDir string `koanf:"data_dir" env:"SLYGUY_STORE_SUGARDB_DATA_DIR"`
}

// CacheConfig sizes the resolver's per-process read cache.
type CacheConfig struct {
	Size int `koanf:"size" validate:"min=1" env:"SLYGUY_CACHE_SIZE"`
}

// MigrationConfig controls the one-time legacy import.
type MigrationConfig struct {
	Enabled    bool   `koanf:"enabled"     env:"SLYGUY_MIGRATION_ENABLED"`
	LegacyFile string `koanf:"legacy_file" env:"SLYGUY_MIGRATION_LEGACY_FILE"`
}

type LanguageConfig struct {
	Locale string   `koanf:"locale" env:"SLYGUY_LANGUAGE_LOCALE"`
	Paths  []string `koanf:"paths"  env:"SLYGUY_LANGUAGE_PATHS"`
}

// HostConfig describes the environment that setting conditions are evaluated against.
type HostConfig struct {
	Platform   string   `koanf:"platform"   env:"SLYGUY_HOST_PLATFORM"`
	Conditions []string `koanf:"conditions" env:"SLYGUY_HOST_CONDITIONS"`
}

type RuntimeConfig struct {
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error disabled" env:"SLYGUY_LOG_LEVEL"`
	LogJSON  bool   `koanf:"log_json"                                                  env:"SLYGUY_LOG_JSON"`
}

// Service defines the configuration loading service.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns which source provided the value at key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
	// Close releases any resources held by the source.
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// SensitiveString hides its value when printed or marshaled.
type SensitiveString string

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

// Default returns a Config populated from the definition registry.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		Plugin: PluginConfig{
			ID:         getString(registry, "plugin.id"),
			Name:       getString(registry, "plugin.name"),
			Common:     getString(registry, "plugin.common"),
			ProfileDir: getString(registry, "plugin.profile_dir"),
		},
		Store: StoreConfig{
			Driver: getString(registry, "store.driver"),
			SQLite: SQLiteConfig{
				Path:        getString(registry, "store.sqlite.path"),
				BusyTimeout: getDuration(registry, "store.sqlite.busy_timeout"),
			},
			Postgres: PostgresConfig{
				ConnString: SensitiveString(getString(registry, "store.postgres.conn_string")),
				MaxConns:   getInt(registry, "store.postgres.max_conns"),
			},
			Redis: RedisConfig{
				Addr:     getString(registry, "store.redis.addr"),
				Password: SensitiveString(getString(registry, "store.redis.password")),
				DB:       getInt(registry, "store.redis.db"),
				Prefix:   getString(registry, "store.redis.prefix"),
			},
			SugarDB: SugarDBConfig{
				DataDir: getString(registry, "store.sugardb.data_dir"),
			},
		},
		Cache: CacheConfig{
			Size: getInt(registry, "cache.size"),
		},
		Migration: MigrationConfig{
			Enabled:    getBool(registry, "migration.enabled"),
			LegacyFile: getString(registry, "migration.legacy_file"),
		},
		Language: LanguageConfig{
			Locale: getString(registry, "language.locale"),
			Paths:  getStringSlice(registry, "language.paths"),
		},
		Host: HostConfig{
			Platform:   getString(registry, "host.platform"),
			Conditions: getStringSlice(registry, "host.conditions"),
		},
		Runtime: RuntimeConfig{
			LogLevel: getString(registry, "runtime.log_level"),
			LogJSON:  getBool(registry, "runtime.log_json"),
		},
	}
}

// BaseDir is the directory shared by every plugin of the family.
func (c *Config) BaseDir() string {
	if c.Plugin.ProfileDir != "" {
		return filepath.Dir(c.Plugin.ProfileDir)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "slyguy")
}

// ProfileDir is the active plugin's private directory.
func (c *Config) ProfileDir() string {
	if c.Plugin.ProfileDir != "" {
		return c.Plugin.ProfileDir
	}
	return filepath.Join(c.BaseDir(), c.Plugin.ID)
}

// SQLitePath resolves the database file shared by all plugins.
func (c *Config) SQLitePath() string {
	if c.Store.SQLite.Path != "" {
		return c.Store.SQLite.Path
	}
	return filepath.Join(c.BaseDir(), "settings.db")
}

// SugarDBDataDir resolves the embedded SugarDB data directory.
func (c *Config) SugarDBDataDir() string {
	if c.Store.SugarDB.DataDir != "" {
		return c.Store.SugarDB.DataDir
	}
	return filepath.Join(c.BaseDir(), "sugardb")
}

// LegacyFile resolves the legacy settings.xml of the active plugin.
func (c *Config) LegacyFile() string {
	if c.Migration.LegacyFile != "" {
		return c.Migration.LegacyFile
	}
	return filepath.Join(c.ProfileDir(), "settings.xml")
}

func getString(registry *definition.Registry, path string) string {
	if val := registry.GetDefault(path); val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if val := registry.GetDefault(path); val != nil {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if val := registry.GetDefault(path); val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getDuration(registry *definition.Registry, path string) time.Duration {
	if val := registry.GetDefault(path); val != nil {
		if d, ok := val.(time.Duration); ok {
			return d
		}
	}
	return 0
}

func getStringSlice(registry *definition.Registry, path string) []string {
	if val := registry.GetDefault(path); val != nil {
		if slice, ok := val.([]string); ok {
			return append([]string(nil), slice...)
		}
	}
	return []string{}
}
