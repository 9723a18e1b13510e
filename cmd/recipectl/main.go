// Command recipectl is the operator CLI for the recipe catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/migrations"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(openConfiguredDB, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openConfiguredDB opens the database named by the environment. sqlite
// databases are migrated on open since they have no separate migration step.
func openConfiguredDB(ctx context.Context, a *app) (*gorm.DB, func() error, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(ctx, cfg, a.log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBDriver == config.DriverSQLite {
		if err := database.RunMigrations(db, migrations.FS, a.log); err != nil {
			database.Close(db)
			return nil, nil, err
		}
	}
	return db, func() error { return database.Close(db) }, nil
}
