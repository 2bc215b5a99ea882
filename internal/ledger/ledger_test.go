package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/wage-ledger/internal/aggregator"
	"github.com/ginjaninja78/wage-ledger/internal/config"
	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/store"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

var t0 = time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC)

func rec(id, label string, measures map[schema.Field]float64) types.Record {
	return types.Record{
		EmployeeID:    id,
		NameJP:        "山田太郎",
		Period:        label,
		PeriodStart:   "2025-02-16",
		PeriodEnd:     "2025-03-15",
		Measures:      measures,
		CommuteColumn: types.NoColumn,
		ProcessedAt:   t0,
	}
}

func annualOf(year int, records ...types.Record) *aggregator.Annual {
	a := aggregator.Build(records[0].EmployeeID, records, year, nil)
	return &a
}

func expectNum(t *testing.T, v Value, want int64) {
	t.Helper()
	if want == 0 {
		if !v.IsBlank() {
			t.Fatalf("expected blank, got %s", v.String())
		}
		return
	}
	if v.Kind != KindNumber || !v.Num.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("expected %d, got %q (kind %d)", want, v.String(), v.Kind)
	}
}

func TestFormatHours(t *testing.T) {
	tests := map[string]string{
		"153.4": "153:24",
		"8":     "8:00",
		"7.99":  "7:59",
		"7.999": "8:00",
		"0.5":   "0:30",
	}
	for in, want := range tests {
		if got := FormatHours(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatHours(%s): expected %s, got %s", in, want, got)
		}
	}
}

func TestValueInterface(t *testing.T) {
	if got := Number(decimal.NewFromInt(250000)).Interface(); got != int64(250000) {
		t.Fatalf("expected int64 250000, got %#v", got)
	}
	if got := Number(decimal.RequireFromString("0.5")).Interface(); got != 0.5 {
		t.Fatalf("expected 0.5, got %#v", got)
	}
	if got := Hours(decimal.RequireFromString("1.5")).Interface(); got != "1:30" {
		t.Fatalf("expected 1:30, got %#v", got)
	}
	if Number(decimal.Zero).Interface() != nil || Text("").Interface() != nil {
		t.Fatal("expected zero and empty values to be blank")
	}
}

func TestPrintDetailRows(t *testing.T) {
	march := rec("0312345", "2025年3月分(4月17日支給)", map[schema.Field]float64{
		schema.BasePay:     250000,
		schema.OvertimePay: 12000,
		schema.NetPay:      230000,
		schema.WorkHours:   153.4,
		schema.WorkDays:    20,
	})
	april := rec("0312345", "2025年4月分(5月15日支給)", map[schema.Field]float64{
		schema.BasePay:   240000,
		schema.WorkHours: 8,
	})

	doc := Compile(PrintPlan(), annualOf(2025, march, april), DefaultOptions())

	expectNum(t, doc.At(20, 3), 250000)
	expectNum(t, doc.At(40, 3), 12000)
	expectNum(t, doc.At(80, 3), 230000)
	expectNum(t, doc.At(40, 4), 0)
	expectNum(t, doc.At(20, 1), 0)

	if got := doc.At(7, 3).String(); got != "4月17日支給" {
		t.Fatalf("expected payment fragment, got %q", got)
	}
	if got := doc.At(8, 3).String(); got != "02/16～03/15" {
		t.Fatalf("expected compact range, got %q", got)
	}
	if got := doc.At(14, 3).String(); got != "153:24" {
		t.Fatalf("expected 153:24, got %q", got)
	}

	expectNum(t, doc.Total(20), 490000)
	if got := doc.Total(14).String(); got != "161:24" {
		t.Fatalf("expected hours total 161:24, got %q", got)
	}
	if !doc.Total(7).IsBlank() {
		t.Fatal("expected no total for the payment row")
	}
}

func TestPrintAllowanceExclusion(t *testing.T) {
	base := map[schema.Field]float64{
		schema.Allowance1:         5000,
		schema.Allowance5:         10000,
		schema.CommutingAllowance: 10000,
	}
	inRange := rec("0312345", "2025年3月分", base)
	inRange.CommuteColumn = 27
	outOfRange := rec("0312345", "2025年3月分", base)
	outOfRange.CommuteColumn = 50

	tests := []struct {
		name   string
		record types.Record
		policy string
		want   int64
	}{
		{"in range", inRange, config.ExclusionInRange, 5000},
		{"dedicated column", outOfRange, config.ExclusionInRange, 15000},
		{"always", outOfRange, config.ExclusionAlways, 5000},
		{"never", inRange, config.ExclusionNever, 15000},
	}
	for _, tt := range tests {
		opts := DefaultOptions()
		opts.CommuteExclusion = tt.policy
		doc := Compile(PrintPlan(), annualOf(2025, tt.record), opts)
		if got := doc.At(28, 3); !got.Num.Equal(decimal.NewFromInt(tt.want)) {
			t.Fatalf("%s: expected %d, got %s", tt.name, tt.want, got.String())
		}
	}
}

func TestPrintNenchoSplit(t *testing.T) {
	doc := Compile(PrintPlan(), annualOf(2025,
		rec("1", "2025年11月分", map[schema.Field]float64{schema.NenchoAdjustment: -5000}),
		rec("1", "2025年12月分", map[schema.Field]float64{schema.NenchoAdjustment: 3000}),
		rec("1", "2025年10月分", map[schema.Field]float64{schema.NenchoAdjustment: 0}),
	), DefaultOptions())

	expectNum(t, doc.At(78, 11), 5000)
	expectNum(t, doc.At(79, 11), 0)
	expectNum(t, doc.At(78, 12), 0)
	expectNum(t, doc.At(79, 12), 3000)
	expectNum(t, doc.At(78, 10), 0)
	expectNum(t, doc.At(79, 10), 0)
	expectNum(t, doc.Total(78), 5000)
	expectNum(t, doc.Total(79), 3000)
}

func TestFormatBSumRows(t *testing.T) {
	doc := Compile(FormatBPlan(), annualOf(2025, rec("1", "2025年6月分", map[schema.Field]float64{
		schema.BasePay:             200000,
		schema.OvertimePay:         10000,
		schema.NightPay:            5000,
		schema.CommutingAllowance:  8000,
		schema.HealthInsurance:     10000,
		schema.Pension:             18000,
		schema.EmploymentInsurance: 1000,
		schema.IncomeTax:           5000,
		schema.ResidentTax:         7000,
	})), DefaultOptions())

	want := map[int]int64{24: 215000, 25: 8000, 26: 223000, 31: 29000, 32: 215000, 39: 41000, 40: 182000}
	for row, w := range want {
		if got := doc.At(row, 6); !got.Num.Equal(decimal.NewFromInt(w)) {
			t.Fatalf("row %d: expected %d, got %s", row, w, got.String())
		}
		expectNum(t, doc.Total(row), w)
	}
	expectNum(t, doc.At(26, 5), 0)
}

func TestFormatCColumns(t *testing.T) {
	plan := FormatCPlan()
	if plan.MonthCol(1) != 12 || plan.MonthCol(12) != 56 {
		t.Fatalf("unexpected month columns %d..%d", plan.MonthCol(1), plan.MonthCol(12))
	}

	doc := Compile(plan, annualOf(2025, rec("1", "2025年2月分", map[schema.Field]float64{
		schema.BasePay:            100000,
		schema.OvertimePay:        2000,
		schema.CommutingAllowance: 3000,
		schema.NightPay:           400,
		schema.IncomeTax:          1500,
		schema.ResidentTax:        500,
	})), DefaultOptions())

	expectNum(t, doc.At(28, 2), 3400)
	expectNum(t, doc.At(40, 2), 105400)
	expectNum(t, doc.At(46, 2), 105400)
	expectNum(t, doc.At(48, 2), 2000)
}

func TestCompileIgnoresOtherYears(t *testing.T) {
	doc := Compile(PrintPlan(), annualOf(2025,
		rec("1", "2024年12月分", map[schema.Field]float64{schema.BasePay: 1}),
		rec("1", "2025年1月分", map[schema.Field]float64{schema.BasePay: 2}),
	), DefaultOptions())

	expectNum(t, doc.At(20, 1), 2)
	expectNum(t, doc.At(20, 12), 0)
	expectNum(t, doc.Total(20), 2)
}

// =============================================================================
// SERVICE
// =============================================================================

func newService(t *testing.T, mem *store.Memory, scaffold ...TemplateID) *Service {
	t.Helper()
	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	for _, id := range scaffold {
		plan, _ := PlanFor(id)
		if err := Scaffold(plan, filepath.Join(templates, id.FileName())); err != nil {
			t.Fatalf("Scaffold %s failed: %v", id, err)
		}
	}
	return NewService(ServiceConfig{
		Records:          mem,
		Master:           mem,
		Stubs:            mem,
		TemplatesDir:     templates,
		OutputDir:        filepath.Join(dir, "output"),
		OutputNameFormat: "{employee_id}_{year}_{template}.xlsx",
	})
}

func TestServiceCompilePrint(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	if err := mem.Upsert(ctx, rec("0312345", "2025年3月分(4月17日支給)", map[schema.Field]float64{
		schema.BasePay:     250000,
		schema.OvertimePay: 12000,
		schema.NetPay:      230000,
	})); err != nil {
		t.Fatal(err)
	}
	if err := mem.ReplaceMaster(ctx, []types.EmployeeMaster{{
		ID: "0312345", Name: "山田 太郎", Gender: "男", HireDate: "2020-04-01", Site: "本社",
	}}); err != nil {
		t.Fatal(err)
	}

	svc := newService(t, mem, TemplatePrint)
	out, err := svc.Compile(ctx, "0312345", 2025, TemplatePrint, "")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if out.Months != 1 || out.Name != "山田 太郎" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if filepath.Base(out.OutputPath) != "0312345_2025_print.xlsx" {
		t.Fatalf("unexpected output name %s", out.OutputPath)
	}

	f, err := excelize.OpenFile(out.OutputPath)
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	checks := map[string]string{
		"E20": "250000",
		"E40": "12000",
		"E80": "230000",
		"O20": "250000",
		"E7":  "4月17日支給",
		"C6":  "1月分",
		"B3":  "0312345",
		"C3":  "山田 太郎",
		"C1":  "2020/04/01",
		"D20": "",
	}
	for ref, want := range checks {
		got, err := f.GetCellValue("賃金台帳", ref, raw)
		if err != nil {
			t.Fatalf("GetCellValue %s: %v", ref, err)
		}
		if got != want {
			t.Fatalf("expected %s = %q, got %q", ref, want, got)
		}
	}
}

func TestServiceErrors(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	if err := mem.Upsert(ctx, rec("123456", "2024年12月分", map[schema.Field]float64{schema.BasePay: 1})); err != nil {
		t.Fatal(err)
	}

	svc := newService(t, mem, TemplatePrint)

	if _, err := svc.Compile(ctx, "123456", 2025, TemplateFormatB, ""); !errors.Is(err, ErrTemplateMissing) {
		t.Fatalf("expected ErrTemplateMissing, got %v", err)
	}
	if _, err := svc.Compile(ctx, "123456", 2025, TemplatePrint, ""); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	out, err := svc.Compile(ctx, "999999", 2025, TemplatePrint, "")
	if !errors.Is(err, ErrEmployeeUnknown) {
		t.Fatalf("expected ErrEmployeeUnknown, got %v", err)
	}
	if out.Success() {
		t.Fatal("expected failed outcome")
	}
}

func TestServiceMergesBatchIndex(t *testing.T) {
	ctx := context.Background()
	persisted := store.NewMemory()
	index := store.NewMemory()

	old := rec("123456", "2025年5月分", map[schema.Field]float64{schema.BasePay: 100})
	fresh := rec("123456", "2025年5月分", map[schema.Field]float64{schema.BasePay: 200})
	fresh.ProcessedAt = t0.Add(time.Hour)
	if err := persisted.Upsert(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := index.Upsert(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	svc := NewService(ServiceConfig{Records: persisted, Index: index})
	a, err := svc.Annual(ctx, "123456", 2025)
	if err != nil {
		t.Fatalf("Annual failed: %v", err)
	}
	if got := a.Months[5].Measure(schema.BasePay); got != 200 {
		t.Fatalf("expected batch record to win, got %v", got)
	}
}

func TestParseTemplate(t *testing.T) {
	for in, want := range map[string]TemplateID{"print": TemplatePrint, "b": TemplateFormatB, "format_c": TemplateFormatC} {
		got, err := ParseTemplate(in)
		if err != nil || got != want {
			t.Fatalf("ParseTemplate(%s): expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseTemplate("xml"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
