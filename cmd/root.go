// =============================================================================
// Wage Ledger - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ledger)
//   ├── ingestCmd   (ledger ingest)
//   ├── compileCmd  (ledger compile)
//   ├── exportCmd   (ledger export)
//   ├── masterCmd   (ledger master sync)
//   ├── templateCmd (ledger template scaffold)
//   └── versionCmd  (ledger version)
//
// The root command owns the global flags (--config, --verbose) and the
// helpers every command uses to load configuration, build a logger and
// open the record store.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/wage-ledger/internal/config"
	"github.com/ginjaninja78/wage-ledger/internal/ledger"
	"github.com/ginjaninja78/wage-ledger/internal/logging"
	"github.com/ginjaninja78/wage-ledger/internal/store"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Wage Ledger - compile annual wage ledgers from monthly payroll sheets",
	Long: `Wage Ledger reads the monthly wage-calculation workbooks produced by the
payroll macro, stores one record per employee and pay period, and compiles a
year of records into the annual wage ledger (賃金台帳) layouts.

Key Features:
  - Reads both the wide table sheet and the per-employee pay-slip blocks
  - Re-ingesting a period replaces the earlier record
  - Three ledger layouts: print, format_b and format_c
  - Bounded concurrent export with a manifest of every outcome

Example Usage:
  ledger template scaffold                       # Create blank template assets
  ledger master sync                             # Load the employee master
  ledger ingest                                  # Ingest every workbook in input_dir
  ledger compile --employee 0312345 --year 2025  # One ledger
  ledger export --year 2025                      # Every employee, every layout`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main(). Interrupts cancel the
// command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig reads the configuration and builds the logger it asks for.
func loadConfig() (*config.MainConfig, logging.Logger, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return cfg, logging.New(os.Stderr, level), nil
}

// openStore opens the SQLite record store named by the configuration.
func openStore(cfg *config.MainConfig) (*store.SQLite, error) {
	st, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return st, nil
}

// newService builds a ledger service reading from st.
func newService(cfg *config.MainConfig, st *store.SQLite, logger logging.Logger) *ledger.Service {
	opts := ledger.DefaultOptions()
	opts.CommuteExclusion = cfg.CommuteExclusion

	return ledger.NewService(ledger.ServiceConfig{
		Records:          st,
		Master:           st,
		Stubs:            st,
		TemplatesDir:     cfg.TemplatesDir,
		OutputDir:        cfg.OutputDir,
		OutputNameFormat: cfg.OutputNameFormat,
		Options:          opts,
		Logger:           logger,
	})
}

// parseTemplates turns --template values into template IDs. No values
// means every layout.
func parseTemplates(values []string) ([]ledger.TemplateID, error) {
	if len(values) == 0 {
		return ledger.Templates, nil
	}
	out := make([]ledger.TemplateID, 0, len(values))
	for _, v := range values {
		id, err := ledger.ParseTemplate(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
