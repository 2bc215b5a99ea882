// =============================================================================
// Wage Ledger - Source Workbook Reader
// =============================================================================
//
// This module opens the monthly wage-calculation workbooks written by the
// payroll macro and exposes each sheet as a Grid of cells. Layout detection
// (detect.go) and positional extraction (extract.go) work on Grids only, so
// a CSV export of the wide sheet can be fed through the same code.
//
// CELL VALUES:
//   Every cell is read twice through excelize:
//   - Text: the displayed value, used for identifiers and labels
//   - Raw:  the stored value, used for numbers and date serials
//
// SHEET SELECTION:
//   The primary sheet is chosen by a priority list (see
//   schema.DefaultSheetPriority). Matching is a case-insensitive substring
//   test; the schema.YearSheetToken entry matches sheets named "2025年..." .
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/wage-ledger/internal/schema"
)

// =============================================================================
// GRID
// =============================================================================

// Cell is one source cell.
type Cell struct {
	// Text is the value as displayed in the spreadsheet.
	Text string

	// Raw is the stored value (unformatted number, date serial, or text).
	Raw string
}

// Blank reports whether the cell holds nothing but whitespace.
func (c Cell) Blank() bool {
	return strings.TrimSpace(c.Text) == "" && strings.TrimSpace(c.Raw) == ""
}

// Grid is a rectangular view of one sheet. Rows may be ragged; reads outside
// the stored area return blank cells.
type Grid struct {
	Name string
	text [][]string
	raw  [][]string
}

// NewGrid builds a Grid whose raw values equal its displayed values. It is
// used for CSV sources and in tests.
func NewGrid(name string, rows [][]string) *Grid {
	return &Grid{Name: name, text: rows, raw: rows}
}

// Cell returns the cell at a 0-based row and column.
func (g *Grid) Cell(row, col int) Cell {
	return Cell{Text: at(g.text, row, col), Raw: at(g.raw, row, col)}
}

// Row returns the displayed values of a 0-based row.
func (g *Grid) Row(row int) []string {
	if row < 0 || row >= len(g.text) {
		return nil
	}
	return g.text[row]
}

// Height is the number of stored rows.
func (g *Grid) Height() int {
	return len(g.text)
}

// Width is the length of the longest stored row.
func (g *Grid) Width() int {
	w := 0
	for _, r := range g.text {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

func at(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is an open source workbook.
type Workbook struct {
	Path string
	f    *excelize.File
}

// OpenWorkbook opens an .xlsx or .xlsm file.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Workbook{Path: path, f: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheets lists the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// Grid reads a sheet into a Grid.
func (w *Workbook) Grid(sheet string) (*Grid, error) {
	text, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}
	raw, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows of sheet %q: %w", sheet, err)
	}
	return &Grid{Name: sheet, text: text, raw: raw}, nil
}

// =============================================================================
// SHEET SELECTION
// =============================================================================

var yearSheet = regexp.MustCompile(`^\d{4}年`)

// SelectPrimarySheet picks the sheet holding the wide payroll table. It
// returns "" only when names is empty.
func SelectPrimarySheet(names []string, priority []string) string {
	for _, p := range priority {
		for _, name := range names {
			if p == schema.YearSheetToken {
				if yearSheet.MatchString(name) {
					return name
				}
				continue
			}
			if strings.Contains(strings.ToLower(name), strings.ToLower(p)) {
				return name
			}
		}
	}

	for _, name := range names {
		if yearSheet.MatchString(name) {
			return name
		}
	}

	if len(names) > 0 {
		return names[0]
	}
	return ""
}
