package definition

import (
	"reflect"
	"runtime"
	"time"
)

var (
	durationType    = reflect.TypeOf(time.Duration(0))
	stringSliceType = reflect.TypeOf([]string{})
)

// CreateRegistry creates and populates the configuration registry.
// It is the single source of truth for defaults, flags and environment names.
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerPluginFields(registry)
	registerStoreFields(registry)
	registerCacheFields(registry)
	registerMigrationFields(registry)
	registerLanguageFields(registry)
	registerHostFields(registry)
	registerRuntimeFields(registry)
	return registry
}

func registerPluginFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:      "plugin.id",
		Default:   "script.module.slyguy",
		CLIFlag:   "plugin-id",
		Shorthand: "n",
		EnvVar:    "SLYGUY_PLUGIN_ID",
		Help:      "Active namespace: the id of the plugin owning this process",
	})
	registry.Register(&FieldDef{
		Path:    "plugin.name",
		Default: "SlyGuy",
		CLIFlag: "plugin-name",
		EnvVar:  "SLYGUY_PLUGIN_NAME",
		Help:    "Display name used for the plugin's own settings category",
	})
	registry.Register(&FieldDef{
		Path:    "plugin.common",
		Default: "script.module.slyguy",
		CLIFlag: "plugin-common",
		EnvVar:  "SLYGUY_PLUGIN_COMMON",
		Help:    "Shared namespace other plugins inherit values from",
	})
	registry.Register(&FieldDef{
		Path:    "plugin.profile_dir",
		Default: "",
		CLIFlag: "profile-dir",
		EnvVar:  "SLYGUY_PROFILE_DIR",
		Help:    "Per-plugin profile directory (defaults to <user config dir>/slyguy/<plugin id>)",
	})
}

func registerStoreFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "store.driver",
		Default: "sqlite",
		CLIFlag: "store-driver",
		EnvVar:  "SLYGUY_STORE_DRIVER",
		Help:    "Persistence backing: memory, sqlite, postgres, redis or sugardb",
	})
	registry.Register(&FieldDef{
		Path:    "store.sqlite.path",
		Default: "",
		CLIFlag: "sqlite-path",
		EnvVar:  "SLYGUY_STORE_SQLITE_PATH",
		Help:    "SQLite database file (defaults to settings.db in the shared profile directory)",
	})
	registry.Register(&FieldDef{
		Path:    "store.sqlite.busy_timeout",
		Default: 5 * time.Second,
		EnvVar:  "SLYGUY_STORE_SQLITE_BUSY_TIMEOUT",
		Type:    durationType,
		Help:    "How long SQLite waits on a locked database",
	})
	registry.Register(&FieldDef{
		Path:    "store.postgres.conn_string",
		Default: "",
		CLIFlag: "postgres-dsn",
		EnvVar:  "SLYGUY_STORE_POSTGRES_CONN_STRING",
		Help:    "PostgreSQL connection string",
	})
	registry.Register(&FieldDef{
		Path:    "store.postgres.max_conns",
		Default: 4,
		EnvVar:  "SLYGUY_STORE_POSTGRES_MAX_CONNS",
		Help:    "Maximum pooled PostgreSQL connections",
	})
	registry.Register(&FieldDef{
		Path:    "store.redis.addr",
		Default: "localhost:6379",
		CLIFlag: "redis-addr",
		EnvVar:  "SLYGUY_STORE_REDIS_ADDR",
		Help:    "Redis address",
	})
	registry.Register(&FieldDef{
		Path:    "store.redis.password",
		Default: "",
		EnvVar:  "SLYGUY_STORE_REDIS_PASSWORD",
		Help:    "Redis password",
	})
	registry.Register(&FieldDef{
		Path:    "store.redis.db",
		Default: 0,
		EnvVar:  "SLYGUY_STORE_REDIS_DB",
		Help:    "Redis logical database",
	})
	registry.Register(&FieldDef{
		Path:    "store.redis.prefix",
		Default: "settings",
		EnvVar:  "SLYGUY_STORE_REDIS_PREFIX",
		Help:    "Key prefix for stored settings",
	})
	registry.Register(&FieldDef{
		Path:    "store.sugardb.data_dir",
		Default: "",
		EnvVar:  "SLYGUY_STORE_SUGARDB_DATA_DIR",
		Help:    "SugarDB data directory (defaults to sugardb/ in the shared profile directory)",
	})
}

func registerCacheFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "cache.size",
		Default: 512,
		CLIFlag: "cache-size",
		EnvVar:  "SLYGUY_CACHE_SIZE",
		Help:    "Number of (owner, id) lookups kept between resets",
	})
}

func registerMigrationFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "migration.enabled",
		Default: true,
		CLIFlag: "migrate",
		EnvVar:  "SLYGUY_MIGRATION_ENABLED",
		Help:    "Import the legacy settings.xml once on first start",
	})
	registry.Register(&FieldDef{
		Path:    "migration.legacy_file",
		Default: "",
		CLIFlag: "legacy-file",
		EnvVar:  "SLYGUY_MIGRATION_LEGACY_FILE",
		Help:    "Legacy settings file (defaults to settings.xml in the plugin profile directory)",
	})
}

func registerLanguageFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "language.locale",
		Default: "en",
		CLIFlag: "locale",
		EnvVar:  "SLYGUY_LANGUAGE_LOCALE",
		Help:    "Preferred locale for setting labels",
	})
	registry.Register(&FieldDef{
		Path:    "language.paths",
		Default: []string{},
		EnvVar:  "SLYGUY_LANGUAGE_PATHS",
		Type:    stringSliceType,
		Help:    "Label catalog files (YAML) layered over the built-in strings",
	})
}

func registerHostFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "host.platform",
		Default: runtime.GOOS,
		CLIFlag: "platform",
		EnvVar:  "SLYGUY_HOST_PLATFORM",
		Help:    "Platform name exposed to setting conditions",
	})
	registry.Register(&FieldDef{
		Path:    "host.conditions",
		Default: []string{},
		EnvVar:  "SLYGUY_HOST_CONDITIONS",
		Type:    stringSliceType,
		Help:    "Host conditions that evaluate to true (e.g. inputstream.adaptive)",
	})
}

func registerRuntimeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "runtime.log_level",
		Default: "info",
		EnvVar:  "SLYGUY_LOG_LEVEL",
		Help:    "Log level (debug, info, warn, error)",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_json",
		Default: false,
		EnvVar:  "SLYGUY_LOG_JSON",
		Help:    "Emit JSON logs",
	})
}
