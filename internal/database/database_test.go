package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "recipes.db"),
	}

	db, err := database.Open(context.Background(), cfg, testhelpers.Logger())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	assert.Equal(t, "sqlite", db.Dialector.Name())
	assert.NoError(t, database.HealthCheck(context.Background(), db))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := database.Open(context.Background(), &config.Config{DBDriver: "mysql"}, testhelpers.Logger())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenPostgresUnreachable(t *testing.T) {
	cfg := &config.Config{
		DBDriver:  config.DriverPostgres,
		DBHost:    "127.0.0.1",
		DBPort:    "1",
		DBUser:    "nobody",
		DBName:    "none",
		DBSSLMode: "disable",
	}
	_, err := database.Open(context.Background(), cfg, testhelpers.Logger())
	assert.ErrorContains(t, err, "error connecting to the database")
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := database.NewRedisClient(context.Background(), &config.Config{RedisURL: "not-a-url"}, testhelpers.Logger())
	assert.ErrorContains(t, err, "failed to parse Redis URL")

	_, err = database.NewRedisClient(context.Background(), &config.Config{RedisHost: "127.0.0.1", RedisPort: "1"}, testhelpers.Logger())
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
