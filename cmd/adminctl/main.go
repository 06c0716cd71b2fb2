// Command adminctl prepares the booking database: schema, catalog seed data
// and back-office accounts.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	intconfig "cabbooking/internal/config"
	"cabbooking/internal/utils"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Administrative tasks for the cab booking backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := intconfig.LoadEnv()
			_, err := utils.InitLogger(env.LogLevel, false)
			return err
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB connects with the same environment the server uses.
func openDB() (*sql.DB, error) {
	db, err := intconfig.ConnectDB(intconfig.LoadEnv())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
