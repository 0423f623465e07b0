package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/payment-advice-converter/internal/config"
	"github.com/insightdelivered/payment-advice-converter/internal/logger"
)

var version = "2.0.0"

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "payment-advice-converter",
	Short: "Convert bank payment advice PDFs into per-invoice reconciliation tables",
	Long: `Payment Advice Converter by Insight Delivered (QEA AutoLens)

Reads payment advice PDFs (or their extracted text), recognizes invoice,
GST, short-payment and TDS lines, and produces one row per invoice with the
final paid amount, TDS and debit note. Optional ledger and state-map tables
add the import name for each invoice.

Settings come from an optional config file and PAYADVICE_* environment
variables (a .env file in the working directory is loaded first).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")

		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			loaded.Parser.Debug = true
			loaded.Log.Level = "debug"
		}
		if err := logger.Setup(loaded.GetLoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg = loaded
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Record per-line parse decisions and log at debug level")
}
