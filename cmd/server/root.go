package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diewo77/brushwork/internal/config"
	"github.com/diewo77/brushwork/internal/obs"
)

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "brushwork",
	Short: "Job tracking and weekly payroll for painting crews",
	Long: `brushwork tracks painting jobs through their lifecycle, computes payouts
and profit, and produces the weekly payroll report.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml, json or toml); defaults to $BRUSHWORK_CONFIG")
}

// setup loads .env, the configuration and the logger for every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	if configPath == "" {
		configPath = os.Getenv("BRUSHWORK_CONFIG")
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := obs.NewLogger(c.Log.Level, c.App.Dev)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg, logger = c, l
	return nil
}
