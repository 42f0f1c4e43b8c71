package main

import (
	"github.com/spf13/cobra"

	"github.com/diewo77/brushwork/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Long: `Apply database migrations and exit.

With MIGRATIONS=1 on postgres the embedded SQL migrations run through
golang-migrate; otherwise the schema is created with gorm AutoMigrate.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		conn, err := db.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := db.Migrate(conn, cfg.Database, cfg.App.Migrations); err != nil {
			return err
		}
		logger.Info("migrations completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
