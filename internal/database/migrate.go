package database

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

const rollbackSuffix = "_rollback.sql"

// ErrNothingToRollback is returned by Rollback when no migration is recorded.
var ErrNothingToRollback = errors.New("no migrations to rollback")

// migrationRecord is a row of the migrations bookkeeping table.
type migrationRecord struct {
	ID   uint
	Name string
}

func (migrationRecord) TableName() string {
	return "migrations"
}

// RunMigrations applies every pending migration in fsys. SQLite databases
// are migrated from the models instead of the postgres SQL files.
func RunMigrations(db *gorm.DB, fsys fs.FS, log *slog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("using GORM auto-migration for SQLite")
		return db.AutoMigrate(&model.Recipe{}, &model.AdminUser{})
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		return err
	}

	// Create migrations table if it doesn't exist (PostgreSQL)
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, name := range files {
		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug("skipping migration", "name", name)
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Info("applied migration", "name", name)
	}

	return nil
}

// Rollback reverts the most recently applied migration using its
// _rollback.sql file and returns the migration name.
func Rollback(db *gorm.DB, fsys fs.FS, log *slog.Logger) (string, error) {
	var last migrationRecord
	err := db.Order("id DESC").Limit(1).Find(&last).Error
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}
	if last.Name == "" {
		return "", ErrNothingToRollback
	}

	rollbackFile := strings.TrimSuffix(last.Name, ".sql") + rollbackSuffix
	content, err := fs.ReadFile(fsys, rollbackFile)
	if err != nil {
		return "", fmt.Errorf("rollback file not found: %s: %w", rollbackFile, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		if err := tx.Exec("DELETE FROM migrations WHERE id = ?", last.ID).Error; err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Info("rolled back migration", "name", last.Name)
	return last.Name, nil
}

// AppliedMigrations lists recorded migrations in the order they ran.
func AppliedMigrations(db *gorm.DB) ([]string, error) {
	var names []string
	if err := db.Model(&migrationRecord{}).Order("id").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	return names, nil
}

// migrationFiles returns the forward migrations in fsys sorted by name.
func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
