package main

import (
	"invoicedesk/internal/config"
	"invoicedesk/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

// cfg is loaded once before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "invoicedesk",
	Short: "Invoicing back office for small businesses",
	Long: `invoicedesk issues GST invoices, records payments with TDS withholding,
renders invoice documents and hands business records over to their owners
when they sign in.

Configuration is read from the environment and an optional .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("tax-config"); path != "" {
			loaded.TaxConfigPath = path
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			loaded.LogLevel = level
		}
		if err := logger.Setup(loaded.GetLoggerConfig()); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("tax-config", "", "TOML file with tax rates and payment terms (overrides TAX_CONFIG_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (overrides LOG_LEVEL)")
}
