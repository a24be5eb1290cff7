package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port         string `mapstructure:"port"`
	ReferenceDir string `mapstructure:"referenceDir"`

	// Хранилище: memory (default) | postgres | sqlite
	StoreDriver string `mapstructure:"storeDriver"`
	DBURL       string `mapstructure:"dbUrl"`
	SQLitePath  string `mapstructure:"sqlitePath"`
	AutoMigrate bool   `mapstructure:"autoMigrate"`

	// Redis для нормализованных документов; пустой адрес — без кэша
	RedisAddr     string        `mapstructure:"redisAddr"`
	RedisPassword string        `mapstructure:"redisPassword"`
	RedisDB       int           `mapstructure:"redisDb"`
	CacheTTL      time.Duration `mapstructure:"cacheTtl"`

	LogLevel  string `mapstructure:"logLevel"`
	LogFormat string `mapstructure:"logFormat"` // json | console
}

// key -> (флаг, ENV, описание)
var keys = []struct {
	key, flag, env, usage string
}{
	{"port", "port", "PAGEX_PORT", "HTTP port"},
	{"referenceDir", "reference-dir", "PAGEX_REFERENCE_DIR", "Path to field type / definition catalogs"},
	{"storeDriver", "store", "PAGEX_STORE", "Store driver (memory/postgres/sqlite)"},
	{"dbUrl", "db", "PAGEX_DB_URL", "Postgres URL (store=postgres)"},
	{"sqlitePath", "sqlite-path", "PAGEX_SQLITE_PATH", "SQLite file (store=sqlite)"},
	{"autoMigrate", "auto-migrate", "PAGEX_AUTO_MIGRATE", "Create tables on start"},
	{"redisAddr", "redis-addr", "PAGEX_REDIS_ADDR", "Redis address (empty = no cache)"},
	{"redisPassword", "redis-password", "PAGEX_REDIS_PASSWORD", "Redis password"},
	{"redisDb", "redis-db", "PAGEX_REDIS_DB", "Redis database number"},
	{"cacheTtl", "cache-ttl", "PAGEX_CACHE_TTL", "TTL of cached normalized patterns"},
	{"logLevel", "log-level", "PAGEX_LOG_LEVEL", "Log level (debug/info/warn/error)"},
	{"logFormat", "log-format", "PAGEX_LOG_FORMAT", "Log format (json/console)"},
}

func def() Config {
	return Config{
		Port:         "8080",
		ReferenceDir: "reference",
		StoreDriver:  StoreMemory,
		SQLitePath:   "pagex.db",
		CacheTTL:     5 * time.Minute,
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// Flags регистрирует флаги сервера. Значения по умолчанию: из def().
func Flags(flags *pflag.FlagSet) {
	d := def()
	flags.String("config", "config.json", "Path to config JSON")
	flags.String("port", d.Port, keys[0].usage)
	flags.String("reference-dir", d.ReferenceDir, keys[1].usage)
	flags.String("store", d.StoreDriver, keys[2].usage)
	flags.String("db", d.DBURL, keys[3].usage)
	flags.String("sqlite-path", d.SQLitePath, keys[4].usage)
	flags.Bool("auto-migrate", d.AutoMigrate, keys[5].usage)
	flags.String("redis-addr", d.RedisAddr, keys[6].usage)
	flags.String("redis-password", d.RedisPassword, keys[7].usage)
	flags.Int("redis-db", d.RedisDB, keys[8].usage)
	flags.Duration("cache-ttl", d.CacheTTL, keys[9].usage)
	flags.String("log-level", d.LogLevel, keys[10].usage)
	flags.String("log-format", d.LogFormat, keys[11].usage)
}

// Load: дефолты, затем JSON (если файл есть), затем ENV, затем флаги.
// flags должен быть уже распарсен; nil — без флагов.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := def()
	v.SetDefault("port", d.Port)
	v.SetDefault("referenceDir", d.ReferenceDir)
	v.SetDefault("storeDriver", d.StoreDriver)
	v.SetDefault("dbUrl", d.DBURL)
	v.SetDefault("sqlitePath", d.SQLitePath)
	v.SetDefault("autoMigrate", d.AutoMigrate)
	v.SetDefault("redisAddr", d.RedisAddr)
	v.SetDefault("redisPassword", d.RedisPassword)
	v.SetDefault("redisDb", d.RedisDB)
	v.SetDefault("cacheTtl", d.CacheTTL)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("logFormat", d.LogFormat)

	path := "config.json"
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	for _, k := range keys {
		if err := v.BindEnv(k.key, k.env); err != nil {
			return Config{}, err
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(k.flag); f != nil {
			if err := v.BindPFlag(k.key, f); err != nil {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.DBURL = strings.TrimSpace(cfg.DBURL)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.DBURL == "" {
			return errors.New("store=postgres requires dbUrl")
		}
	default:
		return fmt.Errorf("unknown storeDriver %q", cfg.StoreDriver)
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logFormat %q", cfg.LogFormat)
	}
	return nil
}
