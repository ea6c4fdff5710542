package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmon131/my-reporter-assistant/db"
	"github.com/salmon131/my-reporter-assistant/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the job and report tables in DATABASE_URL",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.SetupLogger()

	if err := db.Connect(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context(), db.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}
