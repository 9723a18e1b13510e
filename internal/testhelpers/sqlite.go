package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/migrations"
)

// SetupSQLite returns a migrated in-memory database private to the test.
// The pool is limited to one connection so every query sees the same
// in-memory schema.
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private", uuid.NewString())
	db, err := gorm.Open(database.SQLite(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.RunMigrations(db, migrations.FS, Logger()); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}
