package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/ginjaninja78/wage-ledger/internal/config"
)

func TestReadUTF8WithBOM(t *testing.T) {
	in := "\ufeffNumber,従業員番号,氏名\n1,123456,山田 太郎\n2,654321\n"
	rows, err := Read(strings.NewReader(in), config.CSVSettings{Delimiter: ","})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rows[0][0] != "Number" {
		t.Fatalf("expected BOM to be stripped, got %q", rows[0][0])
	}
	if len(rows) != 3 || len(rows[2]) != 2 {
		t.Fatalf("expected ragged rows to be kept, got %v", rows)
	}
	if rows[1][2] != "山田 太郎" {
		t.Fatalf("unexpected name %q", rows[1][2])
	}
}

func TestReadShiftJIS(t *testing.T) {
	var buf bytes.Buffer
	enc := japanese.ShiftJIS.NewEncoder()
	encoded, err := enc.String("従業員番号\t氏名\n123456\t佐藤 花子\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf.WriteString(encoded)

	rows, err := Read(&buf, config.CSVSettings{Delimiter: "tab", Encoding: "shift_jis"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rows[0][0] != "従業員番号" || rows[1][1] != "佐藤 花子" {
		t.Fatalf("unexpected decoded rows %v", rows)
	}
}

func TestParseEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Parse(path, config.CSVSettings{}); err == nil {
		t.Fatalf("expected empty file to fail")
	}
}
