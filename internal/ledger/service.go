package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/wage-ledger/internal/aggregator"
	"github.com/ginjaninja78/wage-ledger/internal/logging"
	"github.com/ginjaninja78/wage-ledger/internal/store"
	"github.com/ginjaninja78/wage-ledger/internal/types"
	"github.com/ginjaninja78/wage-ledger/internal/xlsxwriter"
	"github.com/ginjaninja78/wage-ledger/pkg/utils"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTemplateMissing means the template asset is not on disk.
	ErrTemplateMissing = errors.New("template asset not found")

	// ErrNoData means the employee is known but has no records for the year.
	ErrNoData = errors.New("no payroll data for the requested year")

	// ErrEmployeeUnknown means neither the record store nor the employee
	// master knows the identifier.
	ErrEmployeeUnknown = errors.New("employee unknown")
)

// =============================================================================
// SERVICE
// =============================================================================

// ServiceConfig wires a Service.
type ServiceConfig struct {
	// Records is the record store queried for the year.
	Records store.RecordReader

	// Index, when set, is the in-memory index of the current batch. Its
	// records are merged with the store's; the later processed one wins.
	Index store.RecordReader

	// Master and Stubs resolve identity. Both may be nil.
	Master store.MasterLookup
	Stubs  store.StubLookup

	TemplatesDir     string
	OutputDir        string
	OutputNameFormat string

	Options Options
	Logger  logging.Logger
}

// Outcome is the result of compiling one ledger.
type Outcome struct {
	EmployeeID string
	Name       string
	Year       int
	Template   TemplateID
	OutputPath string
	Months     int
	Err        error
}

// Success reports whether the ledger was written.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// Service compiles ledgers from the record store into template copies.
type Service struct {
	cfg ServiceConfig
}

// NewService creates a Service. A nil logger discards output.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Options.CommuteExclusion == "" {
		cfg.Options = DefaultOptions()
	}
	return &Service{cfg: cfg}
}

// Compile builds one employee's ledger for year and writes it.
//
// PARAMETERS:
//   - employeeID: The employee identifier.
//   - year: The calendar year of the period labels.
//   - tmpl: The ledger layout.
//   - outputPath: Where to write; "" derives a name in the output directory.
//
// RETURNS:
//   - The outcome. Err is also returned and wraps ErrTemplateMissing,
//     ErrNoData or ErrEmployeeUnknown where those apply.
func (s *Service) Compile(ctx context.Context, employeeID string, year int, tmpl TemplateID, outputPath string) (Outcome, error) {
	out := Outcome{EmployeeID: employeeID, Year: year, Template: tmpl}
	fail := func(err error) (Outcome, error) {
		out.Err = err
		s.cfg.Logger.Warn("Ledger %s/%d/%s failed: %v", employeeID, year, tmpl, err)
		return out, err
	}

	plan, ok := PlanFor(tmpl)
	if !ok {
		return fail(fmt.Errorf("unknown template %q", tmpl))
	}

	templatePath := filepath.Join(s.cfg.TemplatesDir, tmpl.FileName())
	if _, err := os.Stat(templatePath); err != nil {
		return fail(fmt.Errorf("%w: %s", ErrTemplateMissing, templatePath))
	}

	annual, err := s.Annual(ctx, employeeID, year)
	if err != nil {
		return fail(err)
	}
	out.Name = annual.Identity.Name
	out.Months = len(annual.Months)

	doc := Compile(plan, &annual, s.cfg.Options)

	if outputPath == "" {
		name := utils.GenerateOutputFileName(s.cfg.OutputNameFormat, utils.OutputNameParams{
			EmployeeID: employeeID,
			Name:       annual.Identity.Name,
			Year:       year,
			Template:   string(tmpl),
		})
		outputPath = filepath.Join(s.cfg.OutputDir, name)
	}

	if err := xlsxwriter.Fill(templatePath, outputPath, doc.SheetName, toSheetCells(doc.Cells)); err != nil {
		return fail(fmt.Errorf("failed to write ledger: %w", err))
	}

	out.OutputPath = outputPath
	s.cfg.Logger.Info("Wrote %s ledger for %s (%d month(s)): %s", tmpl, employeeID, out.Months, outputPath)
	return out, nil
}

// Annual loads and buckets one employee's records for year. It returns
// ErrNoData or ErrEmployeeUnknown when there is nothing to compile.
func (s *Service) Annual(ctx context.Context, employeeID string, year int) (aggregator.Annual, error) {
	records, err := s.cfg.Records.ByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return aggregator.Annual{}, fmt.Errorf("failed to query records: %w", err)
	}
	if s.cfg.Index != nil {
		extra, err := s.cfg.Index.ByEmployeeYear(ctx, employeeID, year)
		if err != nil {
			return aggregator.Annual{}, fmt.Errorf("failed to query batch index: %w", err)
		}
		records = append(records, extra...)
	}

	var master *types.EmployeeMaster
	if s.cfg.Master != nil {
		m, ok, err := s.cfg.Master.Lookup(ctx, employeeID)
		if err != nil {
			return aggregator.Annual{}, fmt.Errorf("failed to look up employee master: %w", err)
		}
		if ok {
			master = &m
		}
	}

	annual := aggregator.Build(employeeID, records, year, master)
	if !annual.Empty() {
		return annual, nil
	}

	known, err := s.known(ctx, employeeID, master != nil)
	if err != nil {
		return aggregator.Annual{}, err
	}
	if !known {
		return aggregator.Annual{}, fmt.Errorf("%w: %s", ErrEmployeeUnknown, employeeID)
	}
	return aggregator.Annual{}, fmt.Errorf("%w: employee %s, %d", ErrNoData, employeeID, year)
}

// known reports whether any source has heard of the employee.
func (s *Service) known(ctx context.Context, employeeID string, inMaster bool) (bool, error) {
	if inMaster {
		return true, nil
	}
	all, err := s.cfg.Records.ByEmployee(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("failed to query records: %w", err)
	}
	if len(all) > 0 {
		return true, nil
	}
	if s.cfg.Index != nil {
		batch, err := s.cfg.Index.ByEmployee(ctx, employeeID)
		if err != nil {
			return false, fmt.Errorf("failed to query batch index: %w", err)
		}
		if len(batch) > 0 {
			return true, nil
		}
	}
	if s.cfg.Stubs != nil {
		_, ok, err := s.cfg.Stubs.Stub(ctx, employeeID)
		if err != nil {
			return false, fmt.Errorf("failed to look up employee: %w", err)
		}
		return ok, nil
	}
	return false, nil
}

func toSheetCells(cells []Cell) []xlsxwriter.Cell {
	out := make([]xlsxwriter.Cell, 0, len(cells))
	for _, c := range cells {
		out = append(out, xlsxwriter.Cell{Row: c.Row, Col: c.Col, Value: c.Value.Interface(), NumFmt: c.NumFmt})
	}
	return out
}

// Scaffold writes a blank template asset for plan: month headings, row
// labels and column widths.
func Scaffold(plan Plan, path string) error {
	return xlsxwriter.Create(path, plan.SheetName, toSheetCells(frame(plan)), plan.ColumnWidths)
}
