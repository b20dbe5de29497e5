package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timesaver/backend/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		applied, err := db.RunMigrations(cmd.Context(), database, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied", zap.Strings("applied", applied), zap.String("db_path", cfg.DBPath))
		return nil
	},
}
