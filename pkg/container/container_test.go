package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog/internal/config"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Environment: "test", Port: "0"},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:", AutoMigrate: true},
		Import:   config.ImportConfig{MaxFileSize: 1 << 20, MaxRows: 10},
	}
}

func TestNewContainerWithConfig_SQLite(t *testing.T) {
	c, err := NewContainerWithConfig(sqliteConfig())
	require.NoError(t, err)
	defer c.Cleanup()

	assert.Nil(t, c.Postgres)
	require.NotNil(t, c.SQLite)
	assert.NotNil(t, c.AuthorHandler)
	assert.NotNil(t, c.BookHandler)
	assert.NotNil(t, c.BulkImportHandler)
	assert.NotNil(t, c.WebHandler)
	assert.NoError(t, c.HealthCheck(context.Background()))

	n, err := c.BookService.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewContainerWithConfig_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Database.Driver = "oracle"

	_, err := NewContainerWithConfig(cfg)
	assert.Error(t, err)
}

func TestHealthCheck_NoDatabase(t *testing.T) {
	assert.Error(t, (&Container{}).HealthCheck(context.Background()))
}
