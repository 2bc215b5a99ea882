// =============================================================================
// Wage Ledger - Ledger Template Compiler
// =============================================================================
//
// One interpreter resolves every template. A Plan lists the rows of a
// layout and the rule each row uses; Compile walks the plan for each of the
// twelve months and then writes the annual total column.
//
// EVALUATION ORDER:
//   1. Detail rows (every rule except sum), month by month
//   2. Sum rows in plan order, reading rows already resolved
//   3. Annual totals for every totaled row
//
// Summary rows therefore always agree with the detail rows printed above
// them. A month without a record, or a record without the field, leaves a
// blank cell and never stops the compilation.
//
// =============================================================================

package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/wage-ledger/internal/aggregator"
)

// Cell is one resolved cell. Row and Col are 1-based.
type Cell struct {
	Row    int
	Col    int
	Value  Value
	NumFmt string
}

// Document is a compiled ledger ready to be written into its template.
type Document struct {
	Template  TemplateID
	SheetName string
	Cells     []Cell

	// Grid holds the resolved monthly values, row -> month (1-12), and
	// Totals the annual totals by row.
	Grid   map[int]map[int]Value
	Totals map[int]Value
}

// At returns the resolved value of row for month m.
func (d *Document) At(row, m int) Value {
	return d.Grid[row][m]
}

// Total returns the annual total of row.
func (d *Document) Total(row int) Value {
	return d.Totals[row]
}

// Compile resolves plan against one employee's year.
//
// PARAMETERS:
//   - plan: The template layout.
//   - a: The employee's records bucketed by month.
//   - opts: Rule options such as the commute exclusion policy.
//
// RETURNS:
//   - The compiled document. Compile never fails; gaps become blanks.
func Compile(plan Plan, a *aggregator.Annual, opts Options) Document {
	doc := Document{
		Template:  plan.Template,
		SheetName: plan.SheetName,
		Grid:      make(map[int]map[int]Value, len(plan.Rows)),
		Totals:    make(map[int]Value, len(plan.Rows)),
	}

	for _, p := range plan.Rows {
		doc.Grid[p.Row] = make(map[int]Value, 12)
	}

	for _, p := range plan.Rows {
		if p.Rule == RuleSum || p.Rule == RuleNone {
			continue
		}
		for m := 1; m <= 12; m++ {
			if rec, ok := a.Month(m); ok {
				doc.Grid[p.Row][m] = resolve(p, rec, opts)
			}
		}
	}

	for _, p := range plan.Rows {
		if p.Rule != RuleSum {
			continue
		}
		for m := 1; m <= 12; m++ {
			doc.Grid[p.Row][m] = doc.resum(p, m)
		}
	}

	for _, p := range plan.Rows {
		if p.Totaled() {
			doc.Totals[p.Row] = annualTotal(p, doc.Grid[p.Row])
		}
	}

	doc.Cells = layout(plan, a, &doc)
	return doc
}

// resum adds and subtracts rows already resolved for month m.
func (d *Document) resum(p RowPlan, m int) Value {
	sum := decimal.Zero
	for _, r := range p.Rows {
		sum = sum.Add(d.Grid[r][m].Num)
	}
	for _, r := range p.Minus {
		sum = sum.Sub(d.Grid[r][m].Num)
	}
	return Number(sum)
}

// annualTotal adds the twelve monthly values; blanks count as zero.
func annualTotal(p RowPlan, months map[int]Value) Value {
	sum := decimal.Zero
	for m := 1; m <= 12; m++ {
		sum = sum.Add(months[m].Num)
	}
	if p.Rule == RuleHours {
		return Hours(sum)
	}
	return Number(sum)
}

// layout places header, label, month and total cells at their coordinates.
func layout(plan Plan, a *aggregator.Annual, doc *Document) []Cell {
	var cells []Cell
	if plan.Header != nil {
		cells = append(cells, plan.Header(a)...)
	}
	cells = append(cells, frame(plan)...)

	for _, p := range plan.Rows {
		for m := 1; m <= 12; m++ {
			if v := doc.Grid[p.Row][m]; !v.IsBlank() {
				cells = append(cells, Cell{Row: p.Row, Col: plan.MonthCol(m), Value: v, NumFmt: p.NumFmt})
			}
		}
		if v := doc.Totals[p.Row]; !v.IsBlank() {
			cells = append(cells, Cell{Row: p.Row, Col: plan.TotalCol, Value: v, NumFmt: p.NumFmt})
		}
	}
	return cells
}

// frame is the static part of a template: month headings and row labels.
func frame(plan Plan) []Cell {
	var cells []Cell
	if plan.MonthHeaderRow > 0 {
		for m := 1; m <= 12; m++ {
			cells = append(cells, Cell{Row: plan.MonthHeaderRow, Col: plan.MonthCol(m), Value: Text(fmt.Sprintf(plan.MonthHeader, m))})
		}
		cells = append(cells, Cell{Row: plan.MonthHeaderRow, Col: plan.TotalCol, Value: Text(plan.TotalHeader)})
	}
	if plan.LabelCol > 0 {
		for _, p := range plan.Rows {
			cells = append(cells, Cell{Row: p.Row, Col: plan.LabelCol, Value: Text(p.Label)})
		}
	}
	return cells
}

func intValue(n int) Value {
	return Number(decimal.NewFromInt(int64(n)))
}
