// =============================================================================
// Wage Ledger - Main Entry Point
// =============================================================================
//
// USAGE:
//   ledger ingest              - Read payroll workbooks into the record store
//   ledger compile             - Compile one employee's annual ledger
//   ledger export              - Compile ledgers for every employee
//   ledger master sync         - Load the employee master workbook
//   ledger template scaffold   - Create blank template assets
//   ledger version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Extraction, storage, aggregation and ledger compilation
//   - pkg/       : Shared file utilities
//   - templates/ : Ledger template assets (template_<layout>.xlsx)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/wage-ledger/cmd"
)

func main() {
	cmd.Execute()
}
