package xlsxwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCreateAndFill(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "templates", "template_print.xlsx")

	frame := []Cell{
		{Row: 6, Col: 3, Value: "1月分"},
		{Row: 20, Col: 2, Value: "基本給 (時給)"},
	}
	if err := Create(tmpl, "賃金台帳", frame, map[int]float64{2: 18, 3: 10}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out := filepath.Join(dir, "output", "ledger.xlsx")
	cells := []Cell{
		{Row: 20, Col: 3, Value: int64(250000), NumFmt: "#,##0"},
		{Row: 14, Col: 3, Value: "153:24"},
		{Row: 21, Col: 3, Value: nil},
	}
	if err := Fill(tmpl, out, "賃金台帳", cells); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"C6":  "1月分",
		"B20": "基本給 (時給)",
		"C14": "153:24",
		"C21": "",
	}
	for ref, want := range checks {
		got, err := f.GetCellValue("賃金台帳", ref)
		if err != nil {
			t.Fatalf("GetCellValue %s: %v", ref, err)
		}
		if got != want {
			t.Fatalf("expected %s = %q, got %q", ref, want, got)
		}
	}

	raw, err := f.GetCellValue("賃金台帳", "C20", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue C20: %v", err)
	}
	if raw != "250000" {
		t.Fatalf("expected raw C20 = 250000, got %q", raw)
	}

	style, err := f.GetCellStyle("賃金台帳", "C20")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	if style == 0 {
		t.Fatal("expected C20 to carry a number format style")
	}
}

func TestFillLeavesTemplateUntouched(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "template.xlsx")
	if err := Create(tmpl, "賃金台帳", nil, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	before, err := os.ReadFile(tmpl)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.xlsx")
	if err := Fill(tmpl, out, "賃金台帳", []Cell{{Row: 1, Col: 1, Value: "x"}}); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	after, err := os.ReadFile(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("expected template file to be unchanged")
	}
}

func TestFillFallsBackToActiveSheet(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "template.xlsx")
	if err := Create(tmpl, "台帳", nil, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out := filepath.Join(dir, "out.xlsx")
	if err := Fill(tmpl, out, "賃金台帳", []Cell{{Row: 2, Col: 2, Value: "0312345"}}); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, _ := f.GetCellValue("台帳", "B2")
	if got != "0312345" {
		t.Fatalf("expected B2 on the active sheet, got %q", got)
	}
}

func TestFillMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	err := Fill(filepath.Join(dir, "missing.xlsx"), filepath.Join(dir, "out.xlsx"), "賃金台帳", nil)
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.xlsx")); !os.IsNotExist(statErr) {
		t.Fatal("expected no output file")
	}
}
