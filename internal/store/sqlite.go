package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/wage-ledger/internal/period"
	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// SQLite stores records and the employee master in a SQLite database.
//
// KEY TABLES:
//
//	payroll_records:  one row per (employee_id, period), measures and the raw
//	                  snapshot as JSON
//	employees:        name stubs collected during ingest
//	employee_master:  identity imported by 'master sync'
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path. Use ":memory:" for a
// throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS payroll_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		period TEXT NOT NULL,
		name_jp TEXT NOT NULL DEFAULT '',
		name_roman TEXT NOT NULL DEFAULT '',
		period_start TEXT NOT NULL DEFAULT '',
		period_end TEXT NOT NULL DEFAULT '',
		site TEXT NOT NULL DEFAULT '',
		source_file TEXT NOT NULL DEFAULT '',
		sheet TEXT NOT NULL DEFAULT '',
		layout TEXT NOT NULL DEFAULT '',
		commute_column INTEGER NOT NULL DEFAULT -1,
		measures TEXT NOT NULL DEFAULT '{}',
		raw_data TEXT NOT NULL DEFAULT '{}',
		processed_at TEXT NOT NULL,
		UNIQUE(employee_id, period)
	);
	CREATE INDEX IF NOT EXISTS idx_payroll_employee ON payroll_records(employee_id);
	CREATE INDEX IF NOT EXISTS idx_payroll_period ON payroll_records(period);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name_jp TEXT NOT NULL DEFAULT '',
		name_roman TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employee_master (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		name_kana TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		birth_date TEXT NOT NULL DEFAULT '',
		hire_date TEXT NOT NULL DEFAULT '',
		site TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT ''
	);`
	_, err := s.db.Exec(ddl)
	return err
}

// =============================================================================
// RECORDS
// =============================================================================

// Upsert implements RecordStore.
func (s *SQLite) Upsert(ctx context.Context, rec types.Record) error {
	measures, err := json.Marshal(rec.Measures)
	if err != nil {
		return fmt.Errorf("failed to encode measures: %w", err)
	}
	raw, err := json.Marshal(rec.Raw)
	if err != nil {
		return fmt.Errorf("failed to encode raw snapshot: %w", err)
	}
	processed := rec.ProcessedAt
	if processed.IsZero() {
		processed = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payroll_records (
			employee_id, period, name_jp, name_roman, period_start, period_end,
			site, source_file, sheet, layout, commute_column, measures, raw_data, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, period) DO UPDATE SET
			name_jp = excluded.name_jp,
			name_roman = excluded.name_roman,
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			site = excluded.site,
			source_file = excluded.source_file,
			sheet = excluded.sheet,
			layout = excluded.layout,
			commute_column = excluded.commute_column,
			measures = excluded.measures,
			raw_data = excluded.raw_data,
			processed_at = excluded.processed_at`,
		rec.EmployeeID, rec.Period, rec.NameJP, rec.NameRoman, rec.PeriodStart, rec.PeriodEnd,
		rec.Site, rec.SourceFile, rec.Sheet, string(rec.Layout), rec.CommuteColumn,
		string(measures), string(raw), processed.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s/%s: %w", rec.EmployeeID, rec.Period, err)
	}
	return nil
}

const recordColumns = `employee_id, period, name_jp, name_roman, period_start, period_end,
	site, source_file, sheet, layout, commute_column, measures, raw_data, processed_at`

// ByEmployee implements RecordReader.
func (s *SQLite) ByEmployee(ctx context.Context, employeeID string) ([]types.Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM payroll_records
		WHERE employee_id = ? ORDER BY period, processed_at`, employeeID)
}

// ByPeriod implements RecordReader.
func (s *SQLite) ByPeriod(ctx context.Context, label string) ([]types.Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM payroll_records
		WHERE period = ? ORDER BY employee_id, processed_at`, label)
}

// ByEmployeeYear implements RecordReader.
func (s *SQLite) ByEmployeeYear(ctx context.Context, employeeID string, year int) ([]types.Record, error) {
	p := period.YearPatterns(year)
	return s.query(ctx, `SELECT `+recordColumns+` FROM payroll_records
		WHERE employee_id = ? AND (period LIKE ? OR period LIKE ?)
		ORDER BY period, processed_at`, employeeID, p[0], p[1])
}

// Employees implements RecordReader.
func (s *SQLite) Employees(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT employee_id FROM payroll_records ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var (
			rec       types.Record
			layout    string
			measures  string
			raw       string
			processed string
		)
		if err := rows.Scan(
			&rec.EmployeeID, &rec.Period, &rec.NameJP, &rec.NameRoman, &rec.PeriodStart, &rec.PeriodEnd,
			&rec.Site, &rec.SourceFile, &rec.Sheet, &layout, &rec.CommuteColumn, &measures, &raw, &processed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Layout = types.Layout(layout)
		rec.Measures = make(map[schema.Field]float64)
		if err := json.Unmarshal([]byte(measures), &rec.Measures); err != nil {
			return nil, fmt.Errorf("failed to decode measures of %s/%s: %w", rec.EmployeeID, rec.Period, err)
		}
		rec.Raw = make(map[string]string)
		if err := json.Unmarshal([]byte(raw), &rec.Raw); err != nil {
			return nil, fmt.Errorf("failed to decode raw snapshot of %s/%s: %w", rec.EmployeeID, rec.Period, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, processed); err == nil {
			rec.ProcessedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// UpsertEmployeeStub implements RecordStore. Known names are never replaced
// by blanks.
func (s *SQLite) UpsertEmployeeStub(ctx context.Context, stub types.EmployeeStub) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name_jp, name_roman, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name_jp = COALESCE(NULLIF(excluded.name_jp, ''), employees.name_jp),
			name_roman = COALESCE(NULLIF(excluded.name_roman, ''), employees.name_roman),
			updated_at = excluded.updated_at`,
		stub.ID, stub.NameJP, stub.NameRoman, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert employee %s: %w", stub.ID, err)
	}
	return nil
}

// Stub implements StubLookup.
func (s *SQLite) Stub(ctx context.Context, employeeID string) (types.EmployeeStub, bool, error) {
	var stub types.EmployeeStub
	err := s.db.QueryRowContext(ctx, `SELECT id, name_jp, name_roman FROM employees WHERE id = ?`, employeeID).
		Scan(&stub.ID, &stub.NameJP, &stub.NameRoman)
	if err == sql.ErrNoRows {
		return types.EmployeeStub{}, false, nil
	}
	if err != nil {
		return types.EmployeeStub{}, false, fmt.Errorf("failed to look up employee %s: %w", employeeID, err)
	}
	return stub, true, nil
}

// Lookup implements MasterLookup.
func (s *SQLite) Lookup(ctx context.Context, employeeID string) (types.EmployeeMaster, bool, error) {
	var (
		e        types.EmployeeMaster
		category string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category, name, name_kana, gender, birth_date, hire_date, site, department, status
		FROM employee_master WHERE id = ?`, employeeID).
		Scan(&e.ID, &category, &e.Name, &e.NameKana, &e.Gender, &e.BirthDate, &e.HireDate, &e.Site, &e.Department, &e.Status)
	if err == sql.ErrNoRows {
		return types.EmployeeMaster{}, false, nil
	}
	if err != nil {
		return types.EmployeeMaster{}, false, fmt.Errorf("failed to look up master %s: %w", employeeID, err)
	}
	e.Category = types.Category(category)
	return e, true, nil
}

// ReplaceMaster implements MasterStore.
func (s *SQLite) ReplaceMaster(ctx context.Context, entries []types.EmployeeMaster) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM employee_master`); err != nil {
		return fmt.Errorf("failed to clear employee master: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO employee_master
			(id, category, name, name_kana, gender, birth_date, hire_date, site, department, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, string(e.Category), e.Name, e.NameKana, e.Gender,
			e.BirthDate, e.HireDate, e.Site, e.Department, e.Status); err != nil {
			return fmt.Errorf("failed to insert master %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}
