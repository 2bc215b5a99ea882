package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/types"
	"github.com/ginjaninja78/wage-ledger/internal/validation"
)

// =============================================================================
// RAW ROW
// =============================================================================

// RawRow is one extracted row or block before normalization.
type RawRow struct {
	Layout types.Layout
	Sheet  string

	// Position is the 1-based sheet row (horizontal) or the 1-based block
	// start column (vertical block).
	Position int

	// EmployeeID is the identifier that passed the gate.
	EmployeeID string

	// Fields holds the cells named by the field schema.
	Fields map[schema.Field]Cell

	// Snapshot is every non-blank source value keyed by header or label.
	Snapshot map[string]string

	// CommuteColumn is the 0-based column resolved for the non-taxable
	// commuting allowance, or types.NoColumn.
	CommuteColumn int
}

// =============================================================================
// HORIZONTAL LAYOUT
// =============================================================================

// FindCommuteColumn returns the first header that names the non-taxable
// commuting allowance, or types.NoColumn.
func FindCommuteColumn(headers []string, l schema.HorizontalLayout) int {
	for i, h := range headers {
		if strings.Contains(h, l.CommuteMarker) && strings.Contains(h, l.NonTaxableMarker) {
			return i
		}
	}
	return types.NoColumn
}

// ExtractHorizontal reads every data row of a wide sheet. The commuting
// column is resolved once from the header row and carried on each row.
// Blank rows are ignored; rows failing the identifier gate are returned as
// skip errors.
func ExtractHorizontal(g *Grid, l schema.HorizontalLayout) ([]RawRow, []*validation.ValidationError) {
	headers := g.Row(l.HeaderRow - 1)
	commute := FindCommuteColumn(headers, l)
	keys := snapshotKeys(headers, l.Headers, max(g.Width(), l.Width()))

	var rows []RawRow
	var skipped []*validation.ValidationError

	for r := l.FirstDataRow - 1; r < g.Height(); r++ {
		if isRowEmpty(g.Row(r)) {
			continue
		}

		id, verr := validation.EmployeeID(g.Cell(r, l.Columns[schema.EmployeeID]).Text)
		if verr != nil {
			verr.Sheet = g.Name
			verr.Position = r + 1
			verr.Layout = types.LayoutHorizontal
			skipped = append(skipped, verr)
			continue
		}

		fields := make(map[schema.Field]Cell, len(l.Columns))
		for f, col := range l.Columns {
			if f == schema.CommutingAllowance {
				continue
			}
			fields[f] = g.Cell(r, col)
		}
		if commute != types.NoColumn {
			fields[schema.CommutingAllowance] = g.Cell(r, commute)
		}

		snapshot := make(map[string]string)
		for col, key := range keys {
			if v := strings.TrimSpace(g.Cell(r, col).Text); v != "" {
				snapshot[key] = v
			}
		}

		rows = append(rows, RawRow{
			Layout:        types.LayoutHorizontal,
			Sheet:         g.Name,
			Position:      r + 1,
			EmployeeID:    id,
			Fields:        fields,
			Snapshot:      snapshot,
			CommuteColumn: commute,
		})
	}

	return rows, skipped
}

// snapshotKeys names each column by its sheet header, falling back to the
// canonical header, then to the column number. Repeated names get the
// column number appended.
func snapshotKeys(headers, canonical []string, width int) []string {
	keys := make([]string, width)
	seen := make(map[string]bool, width)
	for i := 0; i < width; i++ {
		key := ""
		if i < len(headers) {
			key = strings.TrimSpace(headers[i])
		}
		if key == "" && i < len(canonical) {
			key = canonical[i]
		}
		if key == "" {
			key = fmt.Sprintf("col%d", i+1)
		}
		if seen[key] {
			key = fmt.Sprintf("%s#%d", key, i+1)
		}
		seen[key] = true
		keys[i] = key
	}
	return keys
}

// =============================================================================
// VERTICAL BLOCK LAYOUT
// =============================================================================

// ExtractBlock reads the pay-slip block starting at the 0-based column
// start. All blocks share the layout of the first one.
func ExtractBlock(g *Grid, start int, l schema.VerticalLayout) (RawRow, *validation.ValidationError) {
	idAt := l.Cells[schema.EmployeeID]
	id, verr := validation.EmployeeID(g.Cell(idAt.Row-1, start+idAt.Col).Text)
	if verr != nil {
		verr.Sheet = g.Name
		verr.Position = start + 1
		verr.Layout = types.LayoutVerticalBlock
		return RawRow{}, verr
	}

	labels := l.Labels()
	fields := make(map[schema.Field]Cell, len(l.Cells))
	snapshot := make(map[string]string, len(l.Cells))
	for f, off := range l.Cells {
		c := g.Cell(off.Row-1, start+off.Col)
		fields[f] = c
		if v := strings.TrimSpace(c.Text); v != "" {
			snapshot[labels[f]] = v
		}
	}

	return RawRow{
		Layout:        types.LayoutVerticalBlock,
		Sheet:         g.Name,
		Position:      start + 1,
		EmployeeID:    id,
		Fields:        fields,
		Snapshot:      snapshot,
		CommuteColumn: types.NoColumn,
	}, nil
}

// ExtractBlocks reads every detected block in sheet order.
func ExtractBlocks(g *Grid, starts []int, l schema.VerticalLayout) ([]RawRow, []*validation.ValidationError) {
	var rows []RawRow
	var skipped []*validation.ValidationError
	for _, start := range starts {
		row, verr := ExtractBlock(g, start, l)
		if verr != nil {
			skipped = append(skipped, verr)
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
