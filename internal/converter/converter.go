// =============================================================================
// Wage Ledger - Ingest Pipeline
// =============================================================================
//
// This module orchestrates the ingest of a single source file, from opening
// the workbook to upserting canonical records into the record store.
//
// INGEST PIPELINE:
//   1. Open the workbook (or read the CSV export into a grid)
//   2. Pick the primary sheet; every other sheet is read only when it holds
//      pay-slip blocks
//   3. Detect the layout of each sheet
//   4. Extract raw rows (horizontal) or blocks (vertical)
//   5. Build canonical records
//   6. Upsert each record, then the employee stub as a courtesy
//
// FAILURE MODEL:
//   Rows and blocks that fail the identifier gate are counted as rejected,
//   never as errors. An unreadable file or a failing store write fails the
//   whole file and is reported in the Result.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/wage-ledger/internal/config"
	"github.com/ginjaninja78/wage-ledger/internal/csvparser"
	"github.com/ginjaninja78/wage-ledger/internal/logging"
	"github.com/ginjaninja78/wage-ledger/internal/schema"
	"github.com/ginjaninja78/wage-ledger/internal/store"
	"github.com/ginjaninja78/wage-ledger/internal/types"
	"github.com/ginjaninja78/wage-ledger/internal/validation"
	"github.com/ginjaninja78/wage-ledger/internal/xlsxparser"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of ingesting a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Success indicates whether the file was read and its records stored.
	Success bool

	// Error contains the error if processing failed.
	// This is nil if processing was successful.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats

	// Rejections lists the rows and blocks that failed the identifier gate.
	Rejections []*validation.ValidationError

	// Warnings lists accepted records with unusable periods or names.
	Warnings []*validation.ValidationError
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Sheets is the number of sheets records were extracted from.
	Sheets int

	// Accepted is the number of records upserted.
	Accepted int

	// Rejected is the number of rows and blocks skipped by the gate.
	Rejected int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter ingests one source file into a record store.
type Converter struct {
	path   string
	cfg    *config.MainConfig
	store  store.RecordStore
	index  store.RecordStore
	logger logging.Logger
	now    func() time.Time
}

// New creates a Converter for one file.
//
// PARAMETERS:
//   - path: The .xlsx, .xlsm or .csv file to ingest.
//   - cfg: The main application configuration.
//   - st: The record store receiving the records.
//
// RETURNS:
//   - A new Converter instance logging to stderr.
func New(path string, cfg *config.MainConfig, st store.RecordStore) *Converter {
	return &Converter{
		path:   path,
		cfg:    cfg,
		store:  st,
		logger: logging.Default(),
		now:    time.Now,
	}
}

// SetLogger replaces the logger.
func (c *Converter) SetLogger(l logging.Logger) *Converter {
	c.logger = l
	return c
}

// SetIndex additionally writes every accepted record to idx, the in-memory
// index of the current batch.
func (c *Converter) SetIndex(idx store.RecordStore) *Converter {
	c.index = idx
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the ingest pipeline for the file.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: c.path}

	c.logger.Info("Processing file: %s", c.path)

	var (
		raws []xlsxparser.RawRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(c.path)) {
	case ".csv":
		raws, err = c.extractCSV(&result)
	case ".xlsx", ".xlsm":
		raws, err = c.extractWorkbook(&result)
	default:
		err = fmt.Errorf("unsupported file type: %s", filepath.Ext(c.path))
	}
	if err != nil {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	result.Stats.Rejected = len(result.Rejections)
	for _, r := range result.Rejections {
		c.logger.Debug("Skipped: %s", r.Error())
	}

	source := filepath.Base(c.path)
	processedAt := c.now()
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			result.Error = err
			result.Stats.ProcessingTime = time.Since(startTime)
			return result
		}

		rec := Build(raw, source, processedAt)
		for _, w := range validation.Record(&rec) {
			w.Position = raw.Position
			c.logger.Warn("Employee %s: %s", rec.EmployeeID, w.Error())
			result.Warnings = append(result.Warnings, w)
		}

		if err := c.store.Upsert(ctx, rec); err != nil {
			result.Error = fmt.Errorf("failed to store record: %w", err)
			result.Stats.ProcessingTime = time.Since(startTime)
			return result
		}
		if c.index != nil {
			if err := c.index.Upsert(ctx, rec); err != nil {
				c.logger.Warn("Failed to index %s/%s: %v", rec.EmployeeID, rec.Period, err)
			}
		}
		result.Stats.Accepted++

		stub := types.EmployeeStub{ID: rec.EmployeeID, NameJP: rec.NameJP, NameRoman: rec.NameRoman}
		if err := c.store.UpsertEmployeeStub(ctx, stub); err != nil {
			c.logger.Warn("Failed to upsert employee %s: %v", rec.EmployeeID, err)
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Info("Stored %d record(s) from %s, skipped %d", result.Stats.Accepted, source, result.Stats.Rejected)

	return result
}

// ExtractRecordsFromWorkbook ingests one file and reports how many records
// were accepted and rejected.
func ExtractRecordsFromWorkbook(ctx context.Context, path string, cfg *config.MainConfig, st store.RecordStore, logger logging.Logger) (accepted, rejected int, err error) {
	res := New(path, cfg, st).SetLogger(logger).Run(ctx)
	return res.Stats.Accepted, res.Stats.Rejected, res.Error
}

// =============================================================================
// EXTRACTION
// =============================================================================

// extractWorkbook reads the primary sheet and every pay-slip sheet.
func (c *Converter) extractWorkbook(result *Result) ([]xlsxparser.RawRow, error) {
	wb, err := xlsxparser.OpenWorkbook(c.path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.Sheets()
	primary := xlsxparser.SelectPrimarySheet(sheets, c.sheetPriority())
	c.logger.Debug("Primary sheet: %q", primary)

	vertical := schema.Vertical()
	var raws []xlsxparser.RawRow
	for _, sheet := range sheets {
		g, err := wb.Grid(sheet)
		if err != nil {
			return nil, err
		}

		det := xlsxparser.Detect(g, vertical)
		switch {
		case det.Layout == types.LayoutVerticalBlock:
			rows, skipped := xlsxparser.ExtractBlocks(g, det.BlockStarts, vertical)
			c.logger.Debug("Sheet %q: %d block(s)", sheet, len(det.BlockStarts))
			raws = append(raws, rows...)
			result.Rejections = append(result.Rejections, skipped...)
			result.Stats.Sheets++
		case sheet == primary:
			rows, skipped := xlsxparser.ExtractHorizontal(g, schema.Horizontal())
			c.logger.Debug("Sheet %q: %d row(s)", sheet, len(rows)+len(skipped))
			raws = append(raws, rows...)
			result.Rejections = append(result.Rejections, skipped...)
			result.Stats.Sheets++
		}
	}

	return raws, nil
}

// extractCSV reads a CSV export of the wide sheet.
func (c *Converter) extractCSV(result *Result) ([]xlsxparser.RawRow, error) {
	var settings config.CSVSettings
	if c.cfg != nil {
		settings = c.cfg.CSV
	}
	rows, err := csvparser.Parse(c.path, settings)
	if err != nil {
		return nil, err
	}
	g := xlsxparser.NewGrid(filepath.Base(c.path), rows)
	raws, skipped := xlsxparser.ExtractHorizontal(g, schema.Horizontal())
	result.Rejections = append(result.Rejections, skipped...)
	result.Stats.Sheets = 1
	return raws, nil
}

func (c *Converter) sheetPriority() []string {
	if c.cfg != nil && len(c.cfg.SheetPriority) > 0 {
		return c.cfg.SheetPriority
	}
	return schema.DefaultSheetPriority()
}
