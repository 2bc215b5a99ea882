package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/wage-ledger/internal/converter"
	"github.com/ginjaninja78/wage-ledger/internal/logging"
	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/store"
)

// TestWorkbookToPrintLedger ingests a one-row wide sheet and compiles the
// Print ledger from it.
func TestWorkbookToPrintLedger(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := excelize.NewFile()
	l := schema.Horizontal()
	set := func(col, row int, v interface{}) {
		ref, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := src.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatal(err)
		}
	}
	for i, h := range l.Headers {
		set(i, 1, h)
	}
	set(l.Columns[schema.EmployeeID], 2, "0312345")
	set(l.Columns[schema.NameJP], 2, "山田 太郎")
	set(l.Columns[schema.Period], 2, "2025年3月分(4月17日支給)")
	set(l.Columns[schema.BasePay], 2, 250000)
	set(l.Columns[schema.OvertimePay], 2, 12000)
	set(l.Columns[schema.NetPay], 2, 230000)

	path := filepath.Join(dir, "payroll.xlsx")
	if err := src.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	src.Close()

	mem := store.NewMemory()
	accepted, rejected, err := converter.ExtractRecordsFromWorkbook(ctx, path, nil, mem, logging.Nop())
	if err != nil || accepted != 1 || rejected != 0 {
		t.Fatalf("expected 1 accepted and 0 rejected, got %d/%d (%v)", accepted, rejected, err)
	}

	svc := newService(t, mem, TemplatePrint)
	out, err := svc.Compile(ctx, "0312345", 2025, TemplatePrint, filepath.Join(dir, "ledger.xlsx"))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	f, err := excelize.OpenFile(out.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	plan := PrintPlan()
	march, _ := excelize.ColumnNumberToName(plan.MonthCol(3))
	want := map[int]string{7: "4月17日支給", 20: "250000", 40: "12000", 80: "230000"}
	for row, w := range want {
		ref, _ := excelize.JoinCellName(march, row)
		got, err := f.GetCellValue(plan.SheetName, ref, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("expected %s = %q, got %q", ref, w, got)
		}
	}
	if got, _ := f.GetCellValue(plan.SheetName, "C3"); got != "山田 太郎" {
		t.Fatalf("expected name from the record, got %q", got)
	}
}
