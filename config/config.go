package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"

	defaultMaxImageBytes = 5 << 20
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Image storage
	StorageBackend string
	S3BucketName   string
	AWSRegion      string
	MediaRoot      string
	MediaURL       string
	MaxImageBytes  int64

	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	// Load configuration based on environment
	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig reads everything, secrets included, from environment variables.
func loadCIConfig(cfg *Config) error {
	if err := loadCommon(cfg); err != nil {
		return err
	}
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	return nil
}

// loadDevConfig reads environment variables with local defaults. A docker
// secret, when present, takes precedence for the sensitive values.
func loadDevConfig(cfg *Config) error {
	if err := loadCommon(cfg); err != nil {
		return err
	}
	setDefault(&cfg.DBHost, "localhost")
	setDefault(&cfg.DBPort, "5432")
	setDefault(&cfg.DBUser, "postgres")
	setDefault(&cfg.DBName, "recipes")
	setDefault(&cfg.SQLitePath, cfg.Environment.defaultSQLitePath())

	cfg.DBPassword = secretOrEnv("db_password", "DB_PASSWORD", "postgres")
	cfg.JWTSecret = secretOrEnv("jwt_secret", "JWT_SECRET", "dev-secret-change-me")
	cfg.RedisPassword = secretOrEnv("redis_password", "REDIS_PASSWORD", "")
	return nil
}

// loadProdConfig reads non-sensitive values from the environment and
// credentials from docker secrets only.
func loadProdConfig(cfg *Config) error {
	if err := loadCommon(cfg); err != nil {
		return err
	}
	if user := readSecret("db_user"); user != "" {
		cfg.DBUser = user
	}
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
	if url := readSecret("redis_url"); url != "" {
		cfg.RedisURL = url
	}
	return nil
}

func loadCommon(cfg *Config) error {
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.Environment.defaultDriver()))
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")

	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal))
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	cfg.MediaRoot = getEnv("MEDIA_ROOT", "media")
	cfg.MediaURL = getEnv("MEDIA_URL", "/media/")

	var err error
	if cfg.MaxImageBytes, err = getEnvInt64("MAX_IMAGE_BYTES", defaultMaxImageBytes); err != nil {
		return err
	}
	limit, err := getEnvInt64("RATE_LIMIT_PER_MINUTE", cfg.Environment.defaultRateLimit())
	if err != nil {
		return err
	}
	cfg.RateLimitPerMinute = int(limit)

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))
	return nil
}

// DSN returns the lib/pq connection string for the postgres settings.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func secretOrEnv(secret, envKey, fallback string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return getEnv(envKey, fallback)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("must be an integer, got %q", v)}
	}
	return n, nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
