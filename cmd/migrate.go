package main

import (
	"invoicedesk/internal/logger"
	"invoicedesk/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("migrate")

		if err := cfg.ValidateDatabase(); err != nil {
			return err
		}
		pool, err := database.NewPool(cmd.Context(), cfg.DatabaseURL, database.PoolConfig{MaxConns: 2}, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := database.Migrate(cmd.Context(), pool, log)
		if err != nil {
			return err
		}
		log.Info().Int("applied", applied).Msg("migrations complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
