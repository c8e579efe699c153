package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "APP_PORT", "APP_VERSION", "LOG_LEVEL",
		"DB_DRIVER", "SQLITE_PATH", "DB_AUTO_MIGRATE", "DB_PASSWORD",
		"IMPORT_MAX_FILE_SIZE", "IMPORT_MAX_ROWS",
		"DB_PORT", "DB_MAX_CONNECTIONS", "DB_MIN_CONNECTIONS", "DB_RETRY_DELAY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "catalog.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, int64(5<<20), cfg.Import.MaxFileSize)
	assert.Equal(t, 1000, cfg.Import.MaxRows)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("IMPORT_MAX_ROWS", "50")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 50, cfg.Import.MaxRows)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":         {"DB_DRIVER": "mysql"},
		"production no password": {"DB_DRIVER": "postgres", "APP_ENV": "production"},
		"zero rows":              {"IMPORT_MAX_ROWS": "0"},
		"negative file size":     {"IMPORT_MAX_FILE_SIZE": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "twelve")
	t.Setenv("X_BOOL", "maybe")
	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.True(t, getEnvBool("X_BOOL", true))
}

func TestLoadDatabaseConfig(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, time.Second, cfg.RetryDelay)

	t.Setenv("DB_MIN_CONNECTIONS", "20")
	_, err = LoadDatabaseConfig()
	assert.Error(t, err)

	t.Setenv("DB_MIN_CONNECTIONS", "")
	t.Setenv("DB_PORT", "abc")
	_, err = LoadDatabaseConfig()
	assert.Error(t, err)
}
