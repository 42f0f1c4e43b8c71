package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diewo77/brushwork/internal/db"
)

var (
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create an account with default settings",
	Long: `Create an account with default settings. Running it again for the same
e-mail leaves the existing account untouched.

Examples:
  brushwork seed --email crew@example.com --password 'change-me-now'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if seedEmail == "" || seedPassword == "" {
			return errors.New("--email and --password are required")
		}
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
		u, err := db.SeedUser(cmd.Context(), conn, seedEmail, seedPassword)
		if err != nil {
			return err
		}
		logger.Info("account ready", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "account e-mail")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "account password (min 8 characters)")
}
