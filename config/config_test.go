package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"CI", "ENV", "SECRETS_DIR",
	"SERVER_HOST", "SERVER_PORT",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "SQLITE_PATH",
	"REDIS_HOST", "REDIS_PORT", "REDIS_URL", "REDIS_PASSWORD",
	"JWT_SECRET",
	"STORAGE_BACKEND", "S3_BUCKET_NAME", "AWS_REGION", "MEDIA_ROOT", "MEDIA_URL", "MAX_IMAGE_BYTES",
	"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE",
}

// isolateEnv blanks every key the loader reads and points SECRETS_DIR at an
// empty directory.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	return dir
}

func writeSecret(t *testing.T, dir, name, value string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o600))
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "recipes.db", cfg.SQLitePath)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "recipes", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "dev-secret-change-me", cfg.JWTSecret)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
	assert.Equal(t, "media", cfg.MediaRoot)
	assert.Equal(t, int64(5<<20), cfg.MaxImageBytes)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigPrefersDockerSecrets(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "from-env")
	writeSecret(t, dir, "jwt_secret", "from-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ENV", "test")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/recipes.db")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET_NAME", "recipe-images")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/recipes.db", cfg.SQLitePath)
	assert.Equal(t, StorageS3, cfg.StorageBackend)
	assert.Equal(t, "recipe-images", cfg.S3BucketName)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
}

func TestLoadConfigCIRequiresSecretsInEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CI", "true")
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("DB_NAME", "recipes")
	t.Setenv("DB_USER", "ci")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	t.Setenv("JWT_SECRET", "ci-secret")
	t.Setenv("DB_PASSWORD", "ci-pass")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ci-secret", cfg.JWTSecret)
	assert.Equal(t, "ci-pass", cfg.DBPassword)
}

func TestLoadConfigProductionUsesSecretsOnly(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "recipes")
	t.Setenv("JWT_SECRET", "ignored-in-production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")

	writeSecret(t, dir, "db_user", "app")
	writeSecret(t, dir, "db_password", "s3cret")
	writeSecret(t, dir, "jwt_secret", "prod-jwt")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.DBUser)
	assert.Equal(t, "s3cret", cfg.DBPassword)
	assert.Equal(t, "prod-jwt", cfg.JWTSecret)
}

func TestLoadConfigRejectsBadInteger(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MAX_IMAGE_BYTES", "lots")

	_, err := LoadConfig()
	require.Error(t, err)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "MAX_IMAGE_BYTES", ve.Field)
}

func TestValidateConfig(t *testing.T) {
	isolateEnv(t)

	valid := func() *Config {
		return &Config{
			ServerPort:     "8080",
			DBDriver:       DriverSQLite,
			SQLitePath:     "x.db",
			StorageBackend: StorageLocal,
			MediaRoot:      "media",
			MaxImageBytes:  1,
		}
	}
	require.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"postgres needs host", func(c *Config) { c.DBDriver = DriverPostgres }, "DB_HOST"},
		{"unknown storage", func(c *Config) { c.StorageBackend = "ftp" }, "STORAGE_BACKEND"},
		{"s3 needs bucket", func(c *Config) { c.StorageBackend = StorageS3; c.AWSRegion = "us-east-1" }, "S3_BUCKET_NAME"},
		{"image limit", func(c *Config) { c.MaxImageBytes = 0 }, "MAX_IMAGE_BYTES"},
		{"rate limit", func(c *Config) { c.RateLimitPerMinute = -1 }, "RATE_LIMIT_PER_MINUTE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestGetEnvironment(t *testing.T) {
	isolateEnv(t)
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("ENV", "staging")
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("ENV", "test")
	assert.Equal(t, Test, GetEnvironment())

	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}

func TestLoadConfigTestEnvironmentDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "recipes_test.db", cfg.SQLitePath)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)

	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
}

func TestValidateConfigRejectsSQLiteInProduction(t *testing.T) {
	cfg := &Config{
		Environment:    Production,
		ServerPort:     "8080",
		DBDriver:       DriverSQLite,
		SQLitePath:     "x.db",
		StorageBackend: StorageLocal,
		MediaRoot:      "media",
		MaxImageBytes:  1,
		JWTSecret:      "s",
		DBPassword:     "p",
	}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite is not supported in production")

	cfg.Environment = Development
	assert.NoError(t, ValidateConfig(cfg))
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "recipes", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=recipes sslmode=disable", cfg.DSN())
}
