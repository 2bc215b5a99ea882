// =============================================================================
// Wage Ledger - Canonical Record Builder
// =============================================================================
//
// This module turns a raw row or block, as pulled out of a source sheet by
// xlsxparser, into a canonical payroll record.
//
// NORMALIZATION RULES:
//   - Measures: blanks become 0; thousands separators and yen signs are
//     stripped; full-width digits are folded to ASCII
//   - Hours: split hour/minute columns combine to decimal hours (h + m/60);
//     "H:MM" text is read the same way
//   - Dates: Excel serials and "YYYY/MM/DD", "YYYY-MM-DD", "YYYY年M月D日"
//     become ISO dates; other text passes through unchanged
//   - Names: the block label in "氏名 山田 太郎" is dropped
//
// The raw snapshot is carried unchanged so a ledger can recover source
// values that are not promoted to measures.
//
// =============================================================================

package converter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/types"
	"github.com/ginjaninja78/wage-ledger/internal/xlsxparser"
)

// dateLayouts are the textual date forms accepted in period bound cells.
var dateLayouts = []string{
	"2006/01/02",
	"2006/1/2",
	"2006-01-02",
	"2006-1-2",
	"2006年1月2日",
	"2006.1.2",
}

// Excel serials outside this window are not treated as dates
// (1954-10-03 .. 2173-10-14).
const (
	minDateSerial = 20000
	maxDateSerial = 100000
)

var clockHours = regexp.MustCompile(`^(\d+):(\d{1,2})$`)

// =============================================================================
// BUILD
// =============================================================================

// Build normalizes a raw row into a canonical record.
//
// PARAMETERS:
//   - raw: The row or block returned by the extractor.
//   - sourceFile: The workbook the row came from, kept for traceability.
//   - processedAt: The ingest time used for last-write-wins.
//
// RETURNS:
//   - The canonical record. Build never fails; unreadable cells become 0
//     or pass through as text.
func Build(raw xlsxparser.RawRow, sourceFile string, processedAt time.Time) types.Record {
	rec := types.Record{
		EmployeeID:    raw.EmployeeID,
		NameJP:        cleanName(raw.Fields[schema.NameJP].Text),
		NameRoman:     strings.TrimSpace(raw.Fields[schema.NameRoman].Text),
		Period:        strings.TrimSpace(raw.Fields[schema.Period].Text),
		PeriodStart:   ToISODate(raw.Fields[schema.PeriodStart]),
		PeriodEnd:     ToISODate(raw.Fields[schema.PeriodEnd]),
		Site:          strings.TrimSpace(raw.Fields[schema.Site].Text),
		SourceFile:    sourceFile,
		Sheet:         raw.Sheet,
		Layout:        raw.Layout,
		Measures:      make(map[schema.Field]float64, len(raw.Fields)),
		Raw:           raw.Snapshot,
		CommuteColumn: raw.CommuteColumn,
		ProcessedAt:   processedAt,
	}
	if rec.Raw == nil {
		rec.Raw = map[string]string{}
	}

	for f, c := range raw.Fields {
		if schema.IsText(f) || schema.IsMinute(f) {
			continue
		}
		if minutes, ok := schema.MinuteFields[f]; ok {
			rec.Measures[f] = ToHours(c, raw.Fields[minutes])
			continue
		}
		if f == schema.HolidayHours {
			rec.Measures[f] = ToHours(c, xlsxparser.Cell{})
			continue
		}
		rec.Measures[f] = ToNumber(c)
	}

	return rec
}

// =============================================================================
// CELL COERCION
// =============================================================================

// ToNumber reads a numeric cell. The unformatted value is preferred; blank
// or unreadable cells give 0.
func ToNumber(c xlsxparser.Cell) float64 {
	if v, ok := parseNumber(c.Raw); ok {
		return v
	}
	if v, ok := parseNumber(c.Text); ok {
		return v
	}
	return 0
}

func parseNumber(s string) (float64, bool) {
	s = norm.NFKC.String(s)
	s = strings.NewReplacer(",", "", "¥", "", "\\", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToHours combines an hour cell and an optional minute cell into decimal
// hours. An hour cell written as "H:MM" is read as clock time.
func ToHours(hours, minutes xlsxparser.Cell) float64 {
	text := strings.TrimSpace(norm.NFKC.String(hours.Text))
	if m := clockHours.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		return float64(h) + float64(mm)/60
	}
	return ToNumber(hours) + ToNumber(minutes)/60
}

// ToISODate renders a date cell as YYYY-MM-DD. Cells that are not dates
// are returned as their trimmed display text.
func ToISODate(c xlsxparser.Cell) string {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return ""
	}

	folded := norm.NFKC.String(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, folded); err == nil {
			return t.Format(time.DateOnly)
		}
	}

	if serial, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64); err == nil &&
		serial >= minDateSerial && serial < maxDateSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(time.DateOnly)
		}
	}

	return text
}

var nameLabel = regexp.MustCompile(`^` + schema.Vertical().NameLabel + `[\s\x{3000}:：]*(.*)$`)

// cleanName strips the block label from a name cell and trims the result.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if m := nameLabel.FindStringSubmatch(s); m != nil {
		return strings.Trim(m[1], " \t\u3000")
	}
	return s
}
