// =============================================================================
// Wage Ledger - Shared Types
// =============================================================================
//
// This package contains the types passed between the extraction side and the
// compilation side of the engine. They live here to avoid import cycles
// between:
//   - converter (builds records)
//   - store     (persists and queries records)
//   - aggregator / ledger (reads records)
//
// =============================================================================

package types

import (
	"time"

	"github.com/ginjaninja78/wage-ledger/internal/schema"
)

// Layout tags the physical arrangement a record was extracted from.
type Layout string

const (
	LayoutHorizontal    Layout = "horizontal"
	LayoutVerticalBlock Layout = "vertical-block"
)

// NoColumn marks a commuting column that could not be resolved.
const NoColumn = -1

// =============================================================================
// CANONICAL PAYROLL RECORD
// =============================================================================

// Record is one employee's wages for one pay period.
// (EmployeeID, Period) is the replace key.
type Record struct {
	EmployeeID string
	NameJP     string
	NameRoman  string

	// Period is the free-text period label, e.g. "2025年3月分(4月17日支給)".
	Period string

	// PeriodStart and PeriodEnd are ISO dates when the source held a date,
	// otherwise the source text unchanged.
	PeriodStart string
	PeriodEnd   string

	// Site is the dispatch destination printed on the source row.
	Site string

	SourceFile string
	Sheet      string
	Layout     Layout

	// Measures holds every numeric field. Hours are decimal hours.
	Measures map[schema.Field]float64

	// Raw is the source row or block keyed by header text or block label.
	Raw map[string]string

	// CommuteColumn is the 0-based source column resolved as the non-taxable
	// commuting allowance, or NoColumn.
	CommuteColumn int

	ProcessedAt time.Time
}

// Measure returns the value of f, or 0 when the record does not carry it.
func (r *Record) Measure(f schema.Field) float64 {
	if r.Measures == nil {
		return 0
	}
	return r.Measures[f]
}

// Text returns the string value of an identity or period field.
func (r *Record) Text(f schema.Field) string {
	switch f {
	case schema.EmployeeID:
		return r.EmployeeID
	case schema.NameJP:
		return r.NameJP
	case schema.NameRoman:
		return r.NameRoman
	case schema.Period:
		return r.Period
	case schema.PeriodStart:
		return r.PeriodStart
	case schema.PeriodEnd:
		return r.PeriodEnd
	case schema.Site:
		return r.Site
	}
	return ""
}

// DisplayName prefers the local-script name.
func (r *Record) DisplayName() string {
	if r.NameJP != "" {
		return r.NameJP
	}
	return r.NameRoman
}

// Key is the replace key of the record.
func (r *Record) Key() string {
	return r.EmployeeID + "\x00" + r.Period
}

// =============================================================================
// EMPLOYEE MASTER
// =============================================================================

// Category is the contract type of an employee.
type Category string

const (
	CategoryDispatched Category = "dispatched"
	CategoryContract   Category = "contract"
)

// EmployeeMaster is the authoritative identity of an employee.
type EmployeeMaster struct {
	ID       string
	Category Category
	Name     string
	NameKana string
	Gender   string

	// BirthDate and HireDate are ISO dates, or source text when unparseable.
	BirthDate string
	HireDate  string

	// Site is the dispatch company for dispatched workers and the job type
	// for contract workers.
	Site       string
	Department string
	Status     string
}

// EmployeeStub is the name-only entry upserted while ingesting records.
type EmployeeStub struct {
	ID        string
	NameJP    string
	NameRoman string
}
