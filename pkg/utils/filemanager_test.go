package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.CSV", "c.xlsm", "~$b.xlsx", "notes.txt"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0755); err != nil {
		t.Fatal(err)
	}

	fm := NewFileManager(dir, t.TempDir(), "")
	files, err := fm.DiscoverInputFiles()
	if err != nil {
		t.Fatalf("DiscoverInputFiles failed: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if got := strings.Join(names, ","); got != "a.CSV,b.xlsx,c.xlsm" {
		t.Fatalf("expected a.CSV,b.xlsx,c.xlsm, got %s", got)
	}
}

func TestArchiveInputFile(t *testing.T) {
	in := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")
	fm := NewFileManager(in, t.TempDir(), archive)
	fm.now = func() time.Time { return time.Date(2025, 4, 17, 9, 30, 0, 0, time.UTC) }

	src := filepath.Join(in, "給与.xlsx")
	touch(t, src)
	got, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatalf("ArchiveInputFile failed: %v", err)
	}
	if got != filepath.Join(archive, "給与.xlsx") {
		t.Fatalf("unexpected archive path %s", got)
	}
	if FileExists(src) {
		t.Fatal("expected source to be moved")
	}

	touch(t, src)
	got, err = fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatalf("second ArchiveInputFile failed: %v", err)
	}
	if filepath.Base(got) != "給与_20250417_093000.xlsx" {
		t.Fatalf("expected timestamped name on clash, got %s", filepath.Base(got))
	}
}

func TestArchiveDisabled(t *testing.T) {
	in := t.TempDir()
	src := filepath.Join(in, "a.xlsx")
	touch(t, src)

	fm := NewFileManager(in, t.TempDir(), "")
	got, err := fm.ArchiveInputFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if got != src || !FileExists(src) {
		t.Fatal("expected source to stay in place")
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		format string
		params OutputNameParams
		want   string
	}{
		{
			format: "賃金台帳_{employee_id}_{name}_{year}_{template}.xlsx",
			params: OutputNameParams{EmployeeID: "0312345", Name: "山田 太郎", Year: 2025, Template: "print"},
			want:   "賃金台帳_0312345_山田 太郎_2025_print.xlsx",
		},
		{
			format: "{employee_id}_{name}_{year}",
			params: OutputNameParams{EmployeeID: "123456", Year: 2024},
			want:   "123456_2024.xlsx",
		},
		{
			format: "{name}.xlsx",
			params: OutputNameParams{Name: "A/B:C"},
			want:   "A_B_C.xlsx",
		},
		{
			format: "",
			params: OutputNameParams{EmployeeID: "123456", Year: 2025, Template: "format_b"},
			want:   "賃金台帳_123456_2025_format_b.xlsx",
		},
	}

	for _, tt := range tests {
		if got := GenerateOutputFileName(tt.format, tt.params); got != tt.want {
			t.Fatalf("format %q: expected %q, got %q", tt.format, tt.want, got)
		}
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, 4, 17, 9, 0, 0, 0, time.UTC)
	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		AcceptedRecords: 12,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.xlsx", Accepted: 12}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.xlsx", ErrorMessage: "broken"}},
	}, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Accepted Records:  12", "a.xlsx", "Error: broken"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected summary to contain %q", want)
		}
	}
}
