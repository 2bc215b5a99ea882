// =============================================================================
// Wage Ledger - Employee Master Import
// =============================================================================
//
// This module reads the employee master workbook maintained by HR and
// replaces the master table of the store with its contents.
//
// SOURCE SHEETS:
//   - DBGenzaiX: dispatched workers (派遣社員)
//   - DBUkeoiX:  contract workers (請負社員)
//
// Row 1 holds headers; data starts on row 2. Rows without an employee
// number are skipped. When the same number appears on both sheets the
// dispatched entry is kept.
//
// =============================================================================

package master

import (
	"context"
	"fmt"
	"strings"

	"github.com/ginjaninja78/wage-ledger/internal/converter"
	"github.com/ginjaninja78/wage-ledger/internal/logging"
	"github.com/ginjaninja78/wage-ledger/internal/store"
	"github.com/ginjaninja78/wage-ledger/internal/types"
	"github.com/ginjaninja78/wage-ledger/internal/xlsxparser"
)

// Sheet names in the master workbook.
const (
	DispatchedSheet = "DBGenzaiX"
	ContractSheet   = "DBUkeoiX"
)

// columns holds the 0-based positions of the fields read from one sheet.
// -1 means the sheet has no such column.
type columns struct {
	status, id, site, department, name, kana, gender, birth, hire int
}

var (
	dispatchedColumns = columns{status: 0, id: 1, site: 3, department: 4, name: 7, kana: 8, gender: 9, birth: 11, hire: 29}
	contractColumns   = columns{status: 0, id: 1, site: 2, department: -1, name: 3, kana: 4, gender: 5, birth: 7, hire: 25}
)

// Result summarizes an import.
type Result struct {
	Dispatched int
	Contract   int
	Skipped    int
	Duplicates int
}

// Total is the number of entries stored.
func (r Result) Total() int {
	return r.Dispatched + r.Contract
}

// Read parses the master workbook at path.
//
// RETURNS:
//   - The entries in sheet order, dispatched first.
//   - The import counts.
//   - An error if the workbook cannot be opened or has neither sheet.
func Read(path string, logger logging.Logger) ([]types.EmployeeMaster, Result, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	wb, err := xlsxparser.OpenWorkbook(path)
	if err != nil {
		return nil, Result{}, err
	}
	defer wb.Close()

	present := make(map[string]bool)
	for _, name := range wb.Sheets() {
		present[name] = true
	}
	if !present[DispatchedSheet] && !present[ContractSheet] {
		return nil, Result{}, fmt.Errorf("master workbook has neither %s nor %s", DispatchedSheet, ContractSheet)
	}

	var (
		entries []types.EmployeeMaster
		result  Result
		seen    = make(map[string]bool)
	)

	sheets := []struct {
		name     string
		category types.Category
		cols     columns
		count    *int
	}{
		{DispatchedSheet, types.CategoryDispatched, dispatchedColumns, &result.Dispatched},
		{ContractSheet, types.CategoryContract, contractColumns, &result.Contract},
	}

	for _, s := range sheets {
		if !present[s.name] {
			logger.Warn("Master workbook has no %s sheet", s.name)
			continue
		}
		g, err := wb.Grid(s.name)
		if err != nil {
			return nil, Result{}, err
		}

		for row := 1; row < g.Height(); row++ {
			e, ok := parseRow(g, row, s.cols, s.category)
			if !ok {
				result.Skipped++
				continue
			}
			if seen[e.ID] {
				logger.Debug("Employee %s listed twice; keeping the first entry", e.ID)
				result.Duplicates++
				continue
			}
			seen[e.ID] = true
			entries = append(entries, e)
			*s.count++
		}
	}

	return entries, result, nil
}

// Sync reads the master workbook and replaces the store's master table.
func Sync(ctx context.Context, path string, st store.MasterStore, logger logging.Logger) (Result, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	entries, result, err := Read(path, logger)
	if err != nil {
		return Result{}, err
	}
	if err := st.ReplaceMaster(ctx, entries); err != nil {
		return Result{}, fmt.Errorf("failed to store employee master: %w", err)
	}

	logger.Info("Employee master synced: %d dispatched, %d contract, %d skipped",
		result.Dispatched, result.Contract, result.Skipped)
	return result, nil
}

func parseRow(g *xlsxparser.Grid, row int, c columns, category types.Category) (types.EmployeeMaster, bool) {
	text := func(col int) string {
		if col < 0 {
			return ""
		}
		return strings.TrimSpace(g.Cell(row, col).Text)
	}
	date := func(col int) string {
		if col < 0 {
			return ""
		}
		return converter.ToISODate(g.Cell(row, col))
	}

	id := text(c.id)
	if id == "" {
		return types.EmployeeMaster{}, false
	}

	return types.EmployeeMaster{
		ID:         id,
		Category:   category,
		Name:       text(c.name),
		NameKana:   text(c.kana),
		Gender:     text(c.gender),
		BirthDate:  date(c.birth),
		HireDate:   date(c.hire),
		Site:       text(c.site),
		Department: text(c.department),
		Status:     text(c.status),
	}, true
}
