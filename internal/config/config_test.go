package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(parse(t, "--config", filepath.Join(t.TempDir(), "missing.json")))
	require.NoError(t, err)
	assert.Equal(t, def(), cfg)
}

func TestLoad_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"port": "9000",
		"referenceDir": "catalogs",
		"storeDriver": "sqlite",
		"cacheTtl": "1m",
		"logLevel": "debug"
	}`), 0o644))

	// файл
	cfg, err := Load(parse(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "catalogs", cfg.ReferenceDir)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)

	// ENV поверх файла
	t.Setenv("PAGEX_PORT", "9100")
	t.Setenv("PAGEX_REDIS_DB", "2")
	t.Setenv("PAGEX_AUTO_MIGRATE", "true")
	cfg, err = Load(parse(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.AutoMigrate)

	// флаги поверх ENV
	cfg, err = Load(parse(t, "--config", path, "--port", "9200", "--cache-ttl", "30s"))
	require.NoError(t, err)
	assert.Equal(t, "9200", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "catalogs", cfg.ReferenceDir)
}

func TestLoad_Validation(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	_, err := Load(parse(t, "--config", missing, "--store", "postgres"))
	assert.Error(t, err)

	cfg, err := Load(parse(t, "--config", missing, "--store", "Postgres", "--db", "postgres://localhost/pagex"))
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)

	_, err = Load(parse(t, "--config", missing, "--store", "mongo"))
	assert.Error(t, err)

	_, err = Load(parse(t, "--config", missing, "--log-format", "xml"))
	assert.Error(t, err)
}

func TestLoad_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	_, err := Load(parse(t, "--config", path))
	assert.Error(t, err)
}
