package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/migrations"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	status := flag.Bool("status", false, "List applied migrations")
	dir := flag.String("dir", "", "Read migrations from this directory instead of the embedded files")
	flag.Parse()

	log := observability.NewLogger("migrate")
	if err := run(context.Background(), log, *dir, *rollback, *status); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, dir string, rollback, status bool) error {
	db, err := open(ctx, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}

	switch {
	case status:
		applied, err := database.AppliedMigrations(db)
		if err != nil {
			return err
		}
		for _, name := range applied {
			fmt.Println(name)
		}
		return nil
	case rollback:
		name, err := database.Rollback(db, fsys, log)
		if errors.Is(err, database.ErrNothingToRollback) {
			fmt.Println("No migrations to rollback")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return nil
	default:
		if err := database.RunMigrations(db, fsys, log); err != nil {
			return err
		}
		fmt.Println("All migrations applied successfully.")
		return nil
	}
}

// open prefers DATABASE_URL and falls back to the application config.
func open(ctx context.Context, log *slog.Logger) (*gorm.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		sqlDB, err := database.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("error wrapping database connection: %w", err)
		}
		return db, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return database.Open(ctx, cfg, log)
}
