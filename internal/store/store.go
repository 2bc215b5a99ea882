// Package store holds payroll records and the employee master.
//
// Two implementations share the interfaces below: Memory, used as the
// per-batch index and in tests, and SQLite, the persistent store used by
// the CLI. Both treat (employee identifier, period label) as a replace key.
package store

import (
	"context"

	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// RecordReader is the query side used during compilation.
type RecordReader interface {
	// ByEmployee returns every record of one employee.
	ByEmployee(ctx context.Context, employeeID string) ([]types.Record, error)

	// ByPeriod returns every record carrying exactly this period label.
	ByPeriod(ctx context.Context, period string) ([]types.Record, error)

	// ByEmployeeYear returns the employee's records whose period label
	// starts with "{year}年" or "{year}-".
	ByEmployeeYear(ctx context.Context, employeeID string, year int) ([]types.Record, error)

	// Employees lists the identifiers that have at least one record,
	// sorted ascending.
	Employees(ctx context.Context) ([]string, error)
}

// RecordStore adds the write side used during extraction.
type RecordStore interface {
	RecordReader

	// Upsert inserts rec or replaces the record with the same key.
	Upsert(ctx context.Context, rec types.Record) error

	// UpsertEmployeeStub records an employee's names without overwriting
	// known names with blanks.
	UpsertEmployeeStub(ctx context.Context, stub types.EmployeeStub) error
}

// MasterLookup resolves authoritative employee identity.
type MasterLookup interface {
	Lookup(ctx context.Context, employeeID string) (types.EmployeeMaster, bool, error)
}

// MasterStore can replace the whole employee master.
type MasterStore interface {
	MasterLookup
	ReplaceMaster(ctx context.Context, entries []types.EmployeeMaster) error
}

// StubLookup resolves name-only entries collected during ingest.
type StubLookup interface {
	Stub(ctx context.Context, employeeID string) (types.EmployeeStub, bool, error)
}
