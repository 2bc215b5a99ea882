// Package period parses the free-text period labels written by the payroll
// macro, e.g. "2025年3月分(4月17日支給)" or "2025-03".
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var (
	jpYearMonth  = regexp.MustCompile(`(\d{4})年\s*(\d{1,2})月`)
	isoYearMonth = regexp.MustCompile(`^(\d{4})-(\d{1,2})`)
	payment      = regexp.MustCompile(`\(([^)]+)\)`)
)

// normalize folds full-width digits, parentheses and spaces to ASCII.
func normalize(label string) string {
	return strings.TrimSpace(norm.NFKC.String(label))
}

// YearMonth extracts the year and month a period label refers to.
func YearMonth(label string) (year, month int, ok bool) {
	s := normalize(label)
	m := jpYearMonth.FindStringSubmatch(s)
	if m == nil {
		m = isoYearMonth.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// MatchesYear reports whether a label starts with "{year}年" or "{year}-".
func MatchesYear(label string, year int) bool {
	s := normalize(label)
	y := strconv.Itoa(year)
	return strings.HasPrefix(s, y+"年") || strings.HasPrefix(s, y+"-")
}

// YearPatterns returns the SQL LIKE patterns equivalent to MatchesYear.
func YearPatterns(year int) []string {
	return []string{fmt.Sprintf("%d年%%", year), fmt.Sprintf("%d-%%", year)}
}

// PaymentFragment returns the parenthesized payment-date part of a label,
// or the whole label when there is none.
func PaymentFragment(label string) string {
	s := normalize(label)
	if m := payment.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(label)
}

// CompactRange renders two period bounds as "MM/DD～MM/DD". Either bound
// missing yields "".
func CompactRange(start, end string) string {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return ""
	}
	return monthDay(start) + "～" + monthDay(end)
}

func monthDay(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format("01/02")
	}
	return s
}
