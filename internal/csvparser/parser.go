// =============================================================================
// Wage Ledger - CSV Source Reader
// =============================================================================
//
// Some sites export the wide payroll sheet as CSV instead of sending the
// macro workbook. This module reads such a file into rows of strings so the
// converter can wrap it in an xlsxparser.Grid and run the horizontal
// extractor over it unchanged.
//
// FEATURES:
//   - Comma, tab, pipe or semicolon delimiters
//   - UTF-8 (with or without BOM) or Shift_JIS input
//   - Ragged rows and lazy quotes are tolerated
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/wage-ledger/internal/config"
)

const utf8BOM = "\ufeff"

// Parse reads every row of a CSV file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - All rows, header included.
//   - An error if the file cannot be read or is empty.
func Parse(filePath string, settings config.CSVSettings) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := Read(file, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return rows, nil
}

// Read parses CSV from r.
func Read(r io.Reader, settings config.CSVSettings) ([][]string, error) {
	var src io.Reader = bufio.NewReader(r)

	switch strings.ToLower(strings.ReplaceAll(settings.Encoding, "-", "_")) {
	case "shift_jis", "sjis", "cp932":
		src = transform.NewReader(src, japanese.ShiftJIS.NewDecoder())
	}

	reader := csv.NewReader(src)
	configureReader(reader, settings)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	if len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	return rows, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}
