package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCreateSuperuserCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an admin account",
		Long: `Create an admin account that can log in to the API.

The password can be given with --password or the RECIPECTL_PASSWORD
environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("RECIPECTL_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required: use --password or RECIPECTL_PASSWORD")
			}

			admin, err := a.auth.CreateAdmin(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			a.log.Info("admin created", "admin", admin.Username, "admin_id", admin.ID.String())
			fmt.Fprintln(a.out, "Superuser created successfully.")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
