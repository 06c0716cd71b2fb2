package main

import (
	"fmt"
	"strings"

	intconfig "cabbooking/internal/config"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/repositories"
	"cabbooking/internal/services"

	"github.com/spf13/cobra"
)

func createAdminCmd() *cobra.Command {
	var email, name, password, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office account or reset its password",
		Example: `  adminctl create-admin --email ops@example.com --name "Ops Desk" --password 'long-secret'
  adminctl create-admin --email viewer@example.com --password 'long-secret' --role viewer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" || !strings.Contains(email, "@") {
				return fmt.Errorf("--email must be an email address")
			}
			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer intconfig.CloseDB()

			err = repositories.AdminUserRepository{DB: db}.Upsert(cmd.Context(), models.AdminUser{
				Email:        email,
				Name:         strings.TrimSpace(name),
				PasswordHash: hash,
				Role:         strings.ToLower(strings.TrimSpace(role)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (role %s)\n", email, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters (required)")
	cmd.Flags().StringVar(&role, "role", "admin", "role: admin, ops or viewer")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
