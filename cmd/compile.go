// =============================================================================
// Wage Ledger - Compile Command
// =============================================================================
//
// COMMAND USAGE:
//   ledger compile --employee 0312345 --year 2025 [--template print] [--output path]
//
// Compiles one employee's ledger for one year and layout from the record
// store. The exit status is non-zero when the template asset is missing,
// the employee is unknown, or the employee has no records for the year.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/wage-ledger/internal/ledger"
)

var (
	compileEmployee string
	compileYear     int
	compileTemplate string
	compileOutput   string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile one employee's annual wage ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileEmployee, "employee", "e", "", "Employee number")
	compileCmd.Flags().IntVarP(&compileYear, "year", "y", 0, "Ledger year")
	compileCmd.Flags().StringVarP(&compileTemplate, "template", "t", "print", "Layout: print, format_b or format_c")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Output file (default: derived from output_name_format)")
	compileCmd.MarkFlagRequired("employee")
	compileCmd.MarkFlagRequired("year")
}

func runCompile(cmd *cobra.Command) error {
	tmpl, err := ledger.ParseTemplate(compileTemplate)
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

	out, err := newService(cfg, st, logger).Compile(cmd.Context(), compileEmployee, compileYear, tmpl, compileOutput)
	switch {
	case errors.Is(err, ledger.ErrTemplateMissing):
		return fmt.Errorf("%w (run 'ledger template scaffold' or copy the template into %s)", err, cfg.TemplatesDir)
	case err != nil:
		return err
	}

	fmt.Printf("%s %s (%d): %d month(s) -> %s\n", out.EmployeeID, out.Name, out.Year, out.Months, out.OutputPath)
	return nil
}
