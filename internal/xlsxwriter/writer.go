// =============================================================================
// Wage Ledger - Ledger Workbook Writer
// =============================================================================
//
// This module writes resolved cells into a copy of a pre-formatted template
// workbook, and creates blank templates for 'template scaffold'.
//
// WRITING RULES:
//   - The template file itself is never modified; the result is saved to
//     the output path, overwriting any earlier ledger there
//   - A cell's existing style (borders, fonts, fill) is kept; only the
//     number format is replaced when the cell asks for one
//   - nil values are skipped, leaving the template's content in place
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Cell is one value to write. Row and Col are 1-based.
type Cell struct {
	Row    int
	Col    int
	Value  interface{}
	NumFmt string
}

// =============================================================================
// FILL A TEMPLATE
// =============================================================================

// Fill writes cells into a copy of the template at templatePath and saves
// it to outputPath.
//
// PARAMETERS:
//   - templatePath: The template asset.
//   - outputPath: The ledger to create; parent directories are created.
//   - sheet: The sheet to write. When the template has no such sheet the
//     active sheet is used.
//   - cells: The resolved cells.
//
// RETURNS:
//   - An error if the template cannot be opened or the result cannot be
//     saved. Nothing is written to outputPath on error.
func Fill(templatePath, outputPath, sheet string, cells []Cell) error {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	target := resolveSheet(f, sheet)
	if err := writeCells(f, target, cells); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputPath, err)
	}
	return nil
}

// resolveSheet returns sheet when the workbook has it, else the active one.
func resolveSheet(f *excelize.File, sheet string) string {
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		return sheet
	}
	return f.GetSheetName(f.GetActiveSheetIndex())
}

// =============================================================================
// CREATE A TEMPLATE
// =============================================================================

// Create writes a new workbook with one sheet holding cells.
func Create(path, sheet string, cells []Cell, widths map[int]float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	cols := make([]int, 0, len(widths))
	for c := range widths {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	for _, c := range cols {
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, widths[c]); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	if err := writeCells(f, sheet, cells); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// CELL WRITING
// =============================================================================

// styleKey identifies a derived style: a base style with a number format.
type styleKey struct {
	base   int
	numFmt string
}

func writeCells(f *excelize.File, sheet string, cells []Cell) error {
	styles := make(map[styleKey]int)

	for _, c := range cells {
		if c.Value == nil {
			continue
		}
		ref, err := excelize.CoordinatesToCellName(c.Col, c.Row)
		if err != nil {
			return fmt.Errorf("invalid cell (%d, %d): %w", c.Row, c.Col, err)
		}
		if err := f.SetCellValue(sheet, ref, c.Value); err != nil {
			return fmt.Errorf("failed to write %s: %w", ref, err)
		}
		if c.NumFmt == "" {
			continue
		}
		if err := applyNumFmt(f, sheet, ref, c.NumFmt, styles); err != nil {
			return err
		}
	}
	return nil
}

// applyNumFmt sets the number format of ref while keeping the rest of its
// style.
func applyNumFmt(f *excelize.File, sheet, ref, numFmt string, cache map[styleKey]int) error {
	base, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return fmt.Errorf("failed to read style of %s: %w", ref, err)
	}

	key := styleKey{base: base, numFmt: numFmt}
	id, ok := cache[key]
	if !ok {
		style := &excelize.Style{}
		if base != 0 {
			if existing, err := f.GetStyle(base); err == nil && existing != nil {
				style = existing
			}
		}
		format := numFmt
		style.NumFmt = 0
		style.CustomNumFmt = &format
		if id, err = f.NewStyle(style); err != nil {
			return fmt.Errorf("failed to create style for %s: %w", ref, err)
		}
		cache[key] = id
	}

	return f.SetCellStyle(sheet, ref, ref, id)
}
