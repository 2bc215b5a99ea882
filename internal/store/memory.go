package store

import (
	"context"
	"sort"
	"sync"

	"github.com/ginjaninja78/wage-ledger/internal/period"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// Memory is an in-process store. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu      sync.RWMutex
	records map[string]types.Record
	stubs   map[string]types.EmployeeStub
	master  map[string]types.EmployeeMaster
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]types.Record),
		stubs:   make(map[string]types.EmployeeStub),
		master:  make(map[string]types.EmployeeMaster),
	}
}

// Upsert implements RecordStore.
func (m *Memory) Upsert(_ context.Context, rec types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key()] = rec
	return nil
}

// UpsertEmployeeStub implements RecordStore.
func (m *Memory) UpsertEmployeeStub(_ context.Context, stub types.EmployeeStub) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.stubs[stub.ID]
	cur.ID = stub.ID
	if stub.NameJP != "" {
		cur.NameJP = stub.NameJP
	}
	if stub.NameRoman != "" {
		cur.NameRoman = stub.NameRoman
	}
	m.stubs[stub.ID] = cur
	return nil
}

// Stub implements StubLookup.
func (m *Memory) Stub(_ context.Context, employeeID string) (types.EmployeeStub, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stubs[employeeID]
	return s, ok, nil
}

// ByEmployee implements RecordReader.
func (m *Memory) ByEmployee(_ context.Context, employeeID string) ([]types.Record, error) {
	return m.filter(func(r *types.Record) bool { return r.EmployeeID == employeeID }), nil
}

// ByPeriod implements RecordReader.
func (m *Memory) ByPeriod(_ context.Context, label string) ([]types.Record, error) {
	return m.filter(func(r *types.Record) bool { return r.Period == label }), nil
}

// ByEmployeeYear implements RecordReader.
func (m *Memory) ByEmployeeYear(_ context.Context, employeeID string, year int) ([]types.Record, error) {
	return m.filter(func(r *types.Record) bool {
		return r.EmployeeID == employeeID && period.MatchesYear(r.Period, year)
	}), nil
}

// Employees implements RecordReader.
func (m *Memory) Employees(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var ids []string
	for _, r := range m.records {
		if !seen[r.EmployeeID] {
			seen[r.EmployeeID] = true
			ids = append(ids, r.EmployeeID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Len is the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Lookup implements MasterLookup.
func (m *Memory) Lookup(_ context.Context, employeeID string) (types.EmployeeMaster, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.master[employeeID]
	return e, ok, nil
}

// ReplaceMaster implements MasterStore.
func (m *Memory) ReplaceMaster(_ context.Context, entries []types.EmployeeMaster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = make(map[string]types.EmployeeMaster, len(entries))
	for _, e := range entries {
		m.master[e.ID] = e
	}
	return nil
}

// filter returns matching records ordered by employee, period label and
// processing time.
func (m *Memory) filter(keep func(*types.Record) bool) []types.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.Record
	for _, r := range m.records {
		if keep(&r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].ProcessedAt.Before(out[j].ProcessedAt)
	})
	return out
}
