// =============================================================================
// Receipt Checker - Root Command
// =============================================================================
//
// Defines the root command for the Cobra CLI and the global flags shared by
// every subcommand.
//
// COBRA CLI STRUCTURE:
//   rootCmd (receipt-checker)
//   ├── reconcileCmd (receipt-checker reconcile)
//   ├── serveCmd     (receipt-checker serve)
//   └── versionCmd   (receipt-checker version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/checkhesab/receipt-checker/internal/config"
)

// cfgFile holds the path to the configuration file; overridable with
// --config.
var cfgFile string

// verbose raises the log level to debug.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "receipt-checker",
	Short: "Receipt Checker - Reconcile accounting statements against bank spreadsheets",
	Long: `Receipt Checker recovers structured transactions from a Tahesab account
statement (PDF or HTML export) and from a bank-issued spreadsheet with an
unknown column layout, then aligns the two sides with explainable
confidence tiers.

Matched bank rows are written back into a highlighted spreadsheet copy so a
later pass can flag them as duplicates.

Example Usage:
  receipt-checker reconcile --ledger statement.pdf --bank melli.xls
  receipt-checker serve --config ./config.yaml
  receipt-checker version`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig reads the configuration and applies it to the global logger.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg, nil
}
