package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks cfg against the requirements of cfg.Environment.
func ValidateConfig(cfg *Config) error {
	env := cfg.Environment
	var errs []error

	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	require("SERVER_PORT", cfg.ServerPort)

	switch cfg.DBDriver {
	case DriverPostgres:
		require("DB_HOST", cfg.DBHost)
		require("DB_NAME", cfg.DBName)
		require("DB_USER", cfg.DBUser)
	case DriverSQLite:
		require("SQLITE_PATH", cfg.SQLitePath)
		if env == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	switch cfg.StorageBackend {
	case StorageLocal:
		require("MEDIA_ROOT", cfg.MediaRoot)
	case StorageS3:
		require("S3_BUCKET_NAME", cfg.S3BucketName)
		require("AWS_REGION", cfg.AWSRegion)
	default:
		errs = append(errs, ValidationError{Field: "STORAGE_BACKEND", Message: fmt.Sprintf("unknown backend %q", cfg.StorageBackend)})
	}

	if cfg.MaxImageBytes <= 0 {
		errs = append(errs, ValidationError{Field: "MAX_IMAGE_BYTES", Message: "must be positive"})
	}
	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: "must not be negative"})
	}

	// Sensitive values come from env vars in CI and from docker secrets in production.
	switch env {
	case CI:
		require("JWT_SECRET", cfg.JWTSecret)
		if cfg.DBDriver == DriverPostgres {
			require("DB_PASSWORD", cfg.DBPassword)
		}
	case Production:
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{Field: "jwt_secret", Message: "secret is required"})
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{Field: "db_password", Message: "secret is required"})
		}
	}

	return errors.Join(errs...)
}
