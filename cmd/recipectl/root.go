package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

// dbOpener returns the database and the function that releases it.
type dbOpener func(ctx context.Context, a *app) (*gorm.DB, func() error, error)

// app holds what every subcommand shares once the database is open.
type app struct {
	open    dbOpener
	out     io.Writer
	log     *slog.Logger
	db      *gorm.DB
	closeDB func() error
	recipes *service.RecipeService
	auth    *service.AuthService
}

func newRootCmd(open dbOpener, out, errOut io.Writer) *cobra.Command {
	a := &app{
		open: open,
		out:  out,
		log:  observability.NewLoggerTo(errOut, "recipectl", slog.LevelWarn),
	}

	var verbose bool
	root := &cobra.Command{
		Use:           "recipectl",
		Short:         "Manage the recipe catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				a.log = observability.NewLoggerTo(errOut, "recipectl", slog.LevelDebug)
			}
			if skipsDatabase(cmd) {
				return nil
			}
			db, closeDB, err := a.open(cmd.Context(), a)
			if err != nil {
				return err
			}
			a.db, a.closeDB = db, closeDB
			a.recipes = service.NewRecipeService(db, nil)
			// Tokens are never issued from the CLI.
			a.auth = service.NewAuthService(db, "")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeDB == nil {
				return nil
			}
			return a.closeDB()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newCreateSuperuserCmd(a),
		newRecipesCmd(a),
		newLoadDataCmd(a),
	)
	return root
}

func skipsDatabase(cmd *cobra.Command) bool {
	if cmd.Name() == "help" {
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
