package xlsxparser

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// wideRow returns a 53-column data row with the given cells set.
func wideRow(cells map[int]string) []string {
	row := make([]string, schema.Horizontal().Width())
	for col, v := range cells {
		row[col] = v
	}
	return row
}

func wideHeaders() []string {
	return append([]string{}, schema.Horizontal().Headers...)
}

func TestSelectPrimarySheet(t *testing.T) {
	priority := schema.DefaultSheetPriority()
	tests := []struct {
		names []string
		want  string
	}{
		{[]string{"Sheet1", "総合", "TOTALCHIN"}, "TOTALCHIN"},
		{[]string{"請負", "2025年3月", "総合"}, "2025年3月"},
		{[]string{"請負", "総合シート"}, "総合シート"},
		{[]string{"請負", "明細"}, "請負"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := SelectPrimarySheet(tt.names, priority); got != tt.want {
			t.Fatalf("SelectPrimarySheet(%v): expected %q, got %q", tt.names, tt.want, got)
		}
	}
}

func TestDetectVerticalBlocks(t *testing.T) {
	marker := make([]string, 30)
	marker[0] = "給　料　支　払　明　細　書"
	marker[14] = "給 料 支 払 明 細 書"
	marker[28] = "給料支払明細書（請負）"
	g := NewGrid("請負", [][]string{{"会社名"}, marker})

	d := Detect(g, schema.Vertical())
	if d.Layout != types.LayoutVerticalBlock {
		t.Fatalf("expected vertical-block layout, got %s", d.Layout)
	}
	if !reflect.DeepEqual(d.BlockStarts, []int{0, 14, 28}) {
		t.Fatalf("expected block starts [0 14 28], got %v", d.BlockStarts)
	}
}

func TestDetectFallsBackToHorizontal(t *testing.T) {
	g := NewGrid("総合", [][]string{wideHeaders(), wideRow(map[int]string{1: "123456"})})
	d := Detect(g, schema.Vertical())
	if d.Layout != types.LayoutHorizontal {
		t.Fatalf("expected horizontal layout, got %s", d.Layout)
	}
	if len(d.BlockStarts) != 0 {
		t.Fatalf("expected no blocks, got %v", d.BlockStarts)
	}

	empty := Detect(NewGrid("空", nil), schema.Vertical())
	if empty.Layout != types.LayoutHorizontal {
		t.Fatalf("expected empty sheet to be horizontal, got %s", empty.Layout)
	}
}

func TestExtractHorizontalGate(t *testing.T) {
	rows := [][]string{
		wideHeaders(),
		wideRow(map[int]string{1: "123456", 3: "山田 太郎", 4: "2025年3月分"}),
		wideRow(map[int]string{1: "12AB56", 3: "不正"}),
		wideRow(map[int]string{1: "1234", 3: "短い"}),
		wideRow(nil),
		wideRow(map[int]string{1: "0312345", 3: "佐藤 花子"}),
	}
	g := NewGrid("総合", rows)

	got, skipped := ExtractHorizontal(g, schema.Horizontal())
	if len(got) != 2 {
		t.Fatalf("expected 2 accepted rows, got %d", len(got))
	}
	if got[0].EmployeeID != "123456" || got[1].EmployeeID != "0312345" {
		t.Fatalf("unexpected identifiers %q, %q", got[0].EmployeeID, got[1].EmployeeID)
	}
	if got[1].Position != 6 {
		t.Fatalf("expected sheet row 6, got %d", got[1].Position)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped rows (blank rows are not counted), got %d", len(skipped))
	}
	if skipped[0].Position != 3 || skipped[0].Rule != "numeric" {
		t.Fatalf("unexpected first skip %+v", skipped[0])
	}
	if got[0].Snapshot["氏名"] != "山田 太郎" {
		t.Fatalf("expected snapshot keyed by header, got %v", got[0].Snapshot)
	}
}

func TestExtractHorizontalResolvesCommuteColumn(t *testing.T) {
	l := schema.Horizontal()

	headers := wideHeaders()
	g := NewGrid("総合", [][]string{headers, wideRow(map[int]string{1: "123456", 50: "8000"})})
	rows, _ := ExtractHorizontal(g, l)
	if rows[0].CommuteColumn != 50 {
		t.Fatalf("expected commute column 50, got %d", rows[0].CommuteColumn)
	}
	if rows[0].Fields[schema.CommutingAllowance].Text != "8000" {
		t.Fatalf("expected commuting value from column 50, got %q", rows[0].Fields[schema.CommutingAllowance].Text)
	}

	// The macro sometimes writes the commuting allowance into a generic slot.
	moved := wideHeaders()
	moved[27] = "通勤手当(非課税)"
	moved[50] = "予備"
	g = NewGrid("総合", [][]string{moved, wideRow(map[int]string{1: "123456", 27: "6000", 50: "999"})})
	rows, _ = ExtractHorizontal(g, l)
	if rows[0].CommuteColumn != 27 {
		t.Fatalf("expected commute column 27, got %d", rows[0].CommuteColumn)
	}
	if rows[0].Fields[schema.CommutingAllowance].Text != "6000" {
		t.Fatalf("expected commuting value from column 27, got %q", rows[0].Fields[schema.CommutingAllowance].Text)
	}

	none := wideHeaders()
	none[50] = "通勤手当"
	g = NewGrid("総合", [][]string{none, wideRow(map[int]string{1: "123456", 50: "5000"})})
	rows, _ = ExtractHorizontal(g, l)
	if rows[0].CommuteColumn != types.NoColumn {
		t.Fatalf("expected unresolved commute column, got %d", rows[0].CommuteColumn)
	}
	if _, ok := rows[0].Fields[schema.CommutingAllowance]; ok {
		t.Fatalf("expected no commuting field when the column is unresolved")
	}
}

// blockGrid lays out one pay-slip block per start column.
func blockGrid(starts map[int]string) *Grid {
	rows := make([][]string, 47)
	for i := range rows {
		rows[i] = make([]string, 60)
	}
	l := schema.Vertical()
	for start, id := range starts {
		rows[l.MarkerRow-1][start] = l.Title
		set := func(f schema.Field, v string) {
			off := l.Cells[f]
			rows[off.Row-1][start+off.Col] = v
		}
		set(schema.EmployeeID, id)
		set(schema.Period, "2025年3月分")
		set(schema.NameJP, "氏名 西岡　守")
		set(schema.BasePay, "210000")
		set(schema.CommutingAllowance, "4000")
		set(schema.NetPay, "180000")
	}
	return NewGrid("請負", rows)
}

func TestExtractBlocks(t *testing.T) {
	g := blockGrid(map[int]string{0: "200001", 14: "", 28: "200003"})

	d := Detect(g, schema.Vertical())
	if !reflect.DeepEqual(d.BlockStarts, []int{0, 14, 28}) {
		t.Fatalf("expected three blocks, got %v", d.BlockStarts)
	}

	rows, skipped := ExtractBlocks(g, d.BlockStarts, schema.Vertical())
	if len(rows) != 2 || len(skipped) != 1 {
		t.Fatalf("expected 2 rows and 1 skip, got %d and %d", len(rows), len(skipped))
	}
	if rows[1].EmployeeID != "200003" || rows[1].Position != 29 {
		t.Fatalf("unexpected second block %+v", rows[1])
	}
	if rows[0].Fields[schema.NameJP].Text != "氏名 西岡　守" {
		t.Fatalf("expected raw name cell, got %q", rows[0].Fields[schema.NameJP].Text)
	}
	if rows[0].CommuteColumn != types.NoColumn {
		t.Fatalf("expected block rows to carry no commute column")
	}
	if rows[0].Snapshot["基本給"] != "210000" {
		t.Fatalf("expected block snapshot keyed by label, got %v", rows[0].Snapshot)
	}
}

func TestWorkbookGridReadsTextAndRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.xlsx")

	f := excelize.NewFile()
	sheet := "総合"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	f.SetCellValue(sheet, "A1", "従業員番号")
	f.SetCellValue(sheet, "B1", "基本給")
	f.SetCellValue(sheet, "A2", "0312345")
	f.SetCellValue(sheet, "B2", 250000)
	style, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	f.SetCellStyle(sheet, "B2", "B2", style)
	if _, err := f.NewSheet("請負"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	wb, err := OpenWorkbook(path)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	defer wb.Close()

	if !reflect.DeepEqual(wb.Sheets(), []string{"総合", "請負"}) {
		t.Fatalf("unexpected sheets %v", wb.Sheets())
	}

	g, err := wb.Grid(sheet)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if c := g.Cell(1, 0); c.Text != "0312345" {
		t.Fatalf("expected text identifier, got %+v", c)
	}
	if c := g.Cell(1, 1); c.Raw != "250000" || c.Text != "250,000" {
		t.Fatalf("expected formatted text and raw number, got %+v", c)
	}
	if c := g.Cell(10, 10); !c.Blank() {
		t.Fatalf("expected blank cell outside the grid, got %+v", c)
	}
}
