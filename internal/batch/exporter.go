// =============================================================================
// Wage Ledger - Batch Exporter
// =============================================================================
//
// This module compiles ledgers for many employees in one run.
//
// PROCESSING MODEL:
//   - One job per employee × template
//   - At most MaxConcurrency jobs run at once (1 = strictly sequential)
//   - A failed job is recorded in the manifest and never stops the others
//   - Outcomes keep the order of the population, not completion order
//
// Every run is identified by a random run ID. The manifest is written to the
// output directory as export_<run id>.json.
//
// =============================================================================

package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/wage-ledger/internal/ledger"
	"github.com/ginjaninja78/wage-ledger/internal/logging"
	"github.com/ginjaninja78/wage-ledger/internal/store"
)

// Compiler is the part of ledger.Service the exporter needs.
type Compiler interface {
	Compile(ctx context.Context, employeeID string, year int, tmpl ledger.TemplateID, outputPath string) (ledger.Outcome, error)
}

// Config wires an Exporter.
type Config struct {
	Compiler Compiler

	// Sources supply the population when Export is given no employees. The
	// union of their identifiers is used.
	Sources []store.RecordReader

	// Templates are compiled for every employee. Empty means all three.
	Templates []ledger.TemplateID

	// MaxConcurrency bounds parallel jobs. Values below 1 mean 1.
	MaxConcurrency int

	// ManifestDir receives the manifest. Empty skips writing it.
	ManifestDir string

	Logger logging.Logger
}

// Manifest is the record of one export run.
type Manifest struct {
	RunID    string
	Year     int
	Started  time.Time
	Finished time.Time
	Outcomes []ledger.Outcome
}

// Succeeded counts the ledgers written.
func (m *Manifest) Succeeded() int {
	n := 0
	for _, o := range m.Outcomes {
		if o.Success() {
			n++
		}
	}
	return n
}

// Failed counts the ledgers that could not be written.
func (m *Manifest) Failed() int {
	return len(m.Outcomes) - m.Succeeded()
}

// Exporter fans ledger compilation out over employees.
type Exporter struct {
	cfg Config
}

// NewExporter creates an Exporter. A nil logger discards output.
func NewExporter(cfg Config) *Exporter {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if len(cfg.Templates) == 0 {
		cfg.Templates = ledger.Templates
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &Exporter{cfg: cfg}
}

// Export compiles every template for every employee for year.
//
// PARAMETERS:
//   - year: The ledger year.
//   - employees: The population; nil or empty uses the configured sources.
//
// RETURNS:
//   - The manifest with one outcome per employee × template.
//   - An error only when the population cannot be listed or the manifest
//     cannot be written. Failed ledgers are reported in the manifest.
func (e *Exporter) Export(ctx context.Context, year int, employees []string) (*Manifest, error) {
	m := &Manifest{RunID: uuid.New().String(), Year: year, Started: time.Now()}

	if len(employees) == 0 {
		var err error
		if employees, err = e.population(ctx); err != nil {
			return nil, err
		}
	}

	e.cfg.Logger.Info("Export %s: %d employee(s), %d template(s), concurrency %d",
		m.RunID, len(employees), len(e.cfg.Templates), e.cfg.MaxConcurrency)

	m.Outcomes = make([]ledger.Outcome, len(employees)*len(e.cfg.Templates))

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.MaxConcurrency)

	for i, id := range employees {
		for j, tmpl := range e.cfg.Templates {
			slot := i*len(e.cfg.Templates) + j
			id, tmpl := id, tmpl
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					m.Outcomes[slot] = ledger.Outcome{EmployeeID: id, Year: year, Template: tmpl, Err: err}
					return nil
				}
				out, _ := e.cfg.Compiler.Compile(ctx, id, year, tmpl, "")
				m.Outcomes[slot] = out
				return nil
			})
		}
	}
	// Jobs never return errors; failures live in the outcomes.
	_ = g.Wait()

	m.Finished = time.Now()
	e.cfg.Logger.Info("Export %s finished: %d written, %d failed in %s",
		m.RunID, m.Succeeded(), m.Failed(), m.Finished.Sub(m.Started))

	if e.cfg.ManifestDir != "" {
		path, err := WriteManifest(m, e.cfg.ManifestDir)
		if err != nil {
			return m, err
		}
		e.cfg.Logger.Info("Manifest written: %s", path)
	}
	return m, nil
}

// population lists the union of employees known to the sources.
func (e *Exporter) population(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, src := range e.cfg.Sources {
		if src == nil {
			continue
		}
		list, err := src.Employees(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// =============================================================================
// MANIFEST FILE
// =============================================================================

type manifestFile struct {
	RunID     string          `json:"run_id"`
	Year      int             `json:"year"`
	Started   time.Time       `json:"started"`
	Finished  time.Time       `json:"finished"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Outcomes  []manifestEntry `json:"outcomes"`
}

type manifestEntry struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name,omitempty"`
	Template   string `json:"template"`
	OutputPath string `json:"output_path,omitempty"`
	Months     int    `json:"months"`
	Error      string `json:"error,omitempty"`
}

// WriteManifest writes m as indented JSON into dir and returns the path.
func WriteManifest(m *Manifest, dir string) (string, error) {
	doc := manifestFile{
		RunID:     m.RunID,
		Year:      m.Year,
		Started:   m.Started,
		Finished:  m.Finished,
		Succeeded: m.Succeeded(),
		Failed:    m.Failed(),
		Outcomes:  make([]manifestEntry, 0, len(m.Outcomes)),
	}
	for _, o := range m.Outcomes {
		entry := manifestEntry{
			EmployeeID: o.EmployeeID,
			Name:       o.Name,
			Template:   string(o.Template),
			OutputPath: o.OutputPath,
			Months:     o.Months,
		}
		if o.Err != nil {
			entry.Error = o.Err.Error()
		}
		doc.Outcomes = append(doc.Outcomes, entry)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create manifest directory: %w", err)
	}
	path := filepath.Join(dir, "export_"+m.RunID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
