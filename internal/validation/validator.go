// =============================================================================
// Wage Ledger - Validation
// =============================================================================
//
// This module decides which extracted rows and blocks become payroll records
// and flags records that will not land in any ledger month.
//
// VALIDATION LEVELS:
//   1. Gate:    the employee identifier must be present, all digits and at
//               least MinEmployeeIDLength long. Failures are skipped, not
//               surfaced as errors (source sheets carry many blank or
//               decorative rows).
//   2. Record:  a built record whose period cannot be placed in a month, or
//               that has no name at all, produces a warning. The record is
//               still stored.
//
// ERROR HANDLING:
//   - Errors are collected, not returned immediately
//   - Each error carries sheet and position context for the rejection log
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/wage-ledger/internal/period"
	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// MinEmployeeIDLength is the shortest identifier accepted by the gate.
const MinEmployeeIDLength = 6

// Severity levels.
const (
	SeveritySkip    = "skip"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError describes one rejected row/block or one suspicious record.
type ValidationError struct {
	// Severity is SeveritySkip for gate failures and SeverityWarning for
	// records that were kept.
	Severity string

	// Field is the semantic field that failed.
	Field schema.Field

	// Value is the offending source value.
	Value string

	// Rule names the check that failed.
	Rule string

	// Message is a human-readable description.
	Message string

	// Sheet and Position locate the source: the 1-based row for the wide
	// layout, the 1-based block start column for the block layout.
	Sheet    string
	Position int
	Layout   types.Layout
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	where := "row"
	if e.Layout == types.LayoutVerticalBlock {
		where = "block column"
	}
	return fmt.Sprintf("[%s] sheet %q %s %d, field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Sheet,
		where,
		e.Position,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// GATE
// =============================================================================

// EmployeeID applies the validity gate. It returns the cleaned identifier,
// or a skip error describing why the value was refused.
func EmployeeID(value string) (string, *ValidationError) {
	id := strings.TrimSpace(norm.NFKC.String(value))

	switch {
	case id == "":
		return "", &ValidationError{
			Severity: SeveritySkip,
			Field:    schema.EmployeeID,
			Rule:     "required",
			Message:  "employee identifier is empty",
		}
	case !isDigits(id):
		return "", &ValidationError{
			Severity: SeveritySkip,
			Field:    schema.EmployeeID,
			Value:    value,
			Rule:     "numeric",
			Message:  "employee identifier is not numeric",
		}
	case len(id) < MinEmployeeIDLength:
		return "", &ValidationError{
			Severity: SeveritySkip,
			Field:    schema.EmployeeID,
			Value:    value,
			Rule:     "min_length",
			Message:  fmt.Sprintf("employee identifier is shorter than %d digits", MinEmployeeIDLength),
		}
	}

	return id, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// RECORD CHECKS
// =============================================================================

// Record returns warnings for a built record. An empty slice means the
// record is fully usable by the ledger compiler.
func Record(rec *types.Record) []*ValidationError {
	var errs []*ValidationError

	if _, _, ok := period.YearMonth(rec.Period); !ok {
		errs = append(errs, &ValidationError{
			Severity: SeverityWarning,
			Field:    schema.Period,
			Value:    rec.Period,
			Rule:     "year_month",
			Message:  "period has no recognizable year and month; record will not appear in a ledger",
			Sheet:    rec.Sheet,
			Layout:   rec.Layout,
		})
	}

	if rec.NameJP == "" && rec.NameRoman == "" {
		errs = append(errs, &ValidationError{
			Severity: SeverityWarning,
			Field:    schema.NameJP,
			Rule:     "required",
			Message:  "record carries no employee name",
			Sheet:    rec.Sheet,
			Layout:   rec.Layout,
		})
	}

	return errs
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// WriteErrorLog writes validation errors to filePath, replacing any existing
// file.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatErrors(errors)); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return writer.Flush()
}
