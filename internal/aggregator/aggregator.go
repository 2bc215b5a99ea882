// Package aggregator buckets one employee's records for a year by month.
package aggregator

import (
	"sort"

	"github.com/ginjaninja78/wage-ledger/internal/period"
	"github.com/ginjaninja78/wage-ledger/internal/types"
)

// Identity is the employee header printed on a ledger.
type Identity struct {
	EmployeeID string
	Name       string
	NameRoman  string
	NameKana   string
	Gender     string
	BirthDate  string
	HireDate   string
	Site       string
	Department string
	Category   types.Category

	// FromMaster is set when the employee master supplied the identity.
	FromMaster bool
}

// Annual is one employee's year of records keyed by month (1-12).
type Annual struct {
	Year     int
	Identity Identity
	Months   map[int]*types.Record
}

// Month returns the record for month m.
func (a *Annual) Month(m int) (*types.Record, bool) {
	r, ok := a.Months[m]
	return r, ok
}

// Empty reports whether no month has a record.
func (a *Annual) Empty() bool {
	return len(a.Months) == 0
}

// MonthsInOrder lists the populated months ascending.
func (a *Annual) MonthsInOrder() []int {
	out := make([]int, 0, len(a.Months))
	for m := range a.Months {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// Build buckets records by the month of their period label. Records of
// other years, or whose label has no recognizable month, are dropped. When
// two records land on the same month the most recently processed wins.
//
// master may be nil; the identity then comes from the most recent record.
func Build(employeeID string, records []types.Record, year int, master *types.EmployeeMaster) Annual {
	sorted := make([]types.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProcessedAt.Before(sorted[j].ProcessedAt)
	})

	a := Annual{Year: year, Months: make(map[int]*types.Record)}
	var latest *types.Record
	for i := range sorted {
		r := &sorted[i]
		if r.EmployeeID != employeeID || !period.MatchesYear(r.Period, year) {
			continue
		}
		y, m, ok := period.YearMonth(r.Period)
		if !ok || y != year {
			continue
		}
		a.Months[m] = r
		latest = r
	}

	a.Identity = identity(employeeID, latest, master)
	return a
}

func identity(employeeID string, latest *types.Record, master *types.EmployeeMaster) Identity {
	id := Identity{EmployeeID: employeeID}
	if latest != nil {
		id.Name = latest.DisplayName()
		id.NameRoman = latest.NameRoman
		id.Site = latest.Site
	}
	if master == nil {
		return id
	}

	id.FromMaster = true
	id.Category = master.Category
	id.NameKana = master.NameKana
	id.Gender = master.Gender
	id.BirthDate = master.BirthDate
	id.HireDate = master.HireDate
	id.Department = master.Department
	if master.Name != "" {
		id.Name = master.Name
	}
	if master.Site != "" {
		id.Site = master.Site
	}
	return id
}
