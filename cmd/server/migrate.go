package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpattn/crmql/internal/config"
	"github.com/rpattn/crmql/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		conn, err := db.NewConnection(cmd.Context(), cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()

		return db.RunMigrations(conn.Pool)
	},
}
