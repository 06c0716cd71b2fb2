package main

import (
	"fmt"

	intconfig "cabbooking/internal/config"
	intdb "cabbooking/internal/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables",
		Long: `Create every table the server needs. Existing tables are left as they are,
so the command is safe to run on each deploy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer intconfig.CloseDB()

			created, err := intdb.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			}
			for _, t := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", t)
			}
			return nil
		},
	}
}
