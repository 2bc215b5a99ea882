// =============================================================================
// Wage Ledger - Export Command
// =============================================================================
//
// COMMAND USAGE:
//   ledger export --year 2025 [--template print --template format_b]
//                 [--employees 0312345,123456] [--concurrency 8]
//
// Compiles ledgers for every employee in the record store (or the listed
// ones) and writes a JSON manifest of every outcome to the output directory.
// A failed ledger is reported and does not stop the others.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/wage-ledger/internal/batch"
	"github.com/ginjaninja78/wage-ledger/internal/store"
)

var (
	exportYear        int
	exportTemplates   []string
	exportEmployees   []string
	exportConcurrency int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Compile ledgers for many employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().IntVarP(&exportYear, "year", "y", 0, "Ledger year")
	exportCmd.Flags().StringSliceVarP(&exportTemplates, "template", "t", nil, "Layouts to compile (default: all)")
	exportCmd.Flags().StringSliceVar(&exportEmployees, "employees", nil, "Employee numbers (default: everyone in the store)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "Override max_concurrency")
	exportCmd.MarkFlagRequired("year")
}

func runExport(cmd *cobra.Command) error {
	templates, err := parseTemplates(exportTemplates)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	concurrency := cfg.MaxConcurrency
	if exportConcurrency > 0 {
		concurrency = exportConcurrency
	}

	exp := batch.NewExporter(batch.Config{
		Compiler:       newService(cfg, st, logger),
		Sources:        []store.RecordReader{st},
		Templates:      templates,
		MaxConcurrency: concurrency,
		ManifestDir:    cfg.OutputDir,
		Logger:         logger,
	})

	m, err := exp.Export(cmd.Context(), exportYear, exportEmployees)
	if err != nil {
		return err
	}
	printManifest(m)

	if m.Failed() > 0 {
		return fmt.Errorf("%d of %d ledger(s) failed", m.Failed(), len(m.Outcomes))
	}
	return nil
}

// printManifest lists every outcome of an export run.
func printManifest(m *batch.Manifest) {
	fmt.Printf("Export %s (%d)\n", m.RunID, m.Year)
	for _, o := range m.Outcomes {
		if o.Success() {
			fmt.Printf("  ✓ %s %-9s %s\n", o.EmployeeID, o.Template, filepath.Base(o.OutputPath))
		} else {
			fmt.Printf("  ✗ %s %-9s %v\n", o.EmployeeID, o.Template, o.Err)
		}
	}
	fmt.Printf("Written: %d  Failed: %d  Time: %s\n", m.Succeeded(), m.Failed(), m.Finished.Sub(m.Started))
}
