// =============================================================================
// Wage Ledger - Ingest Command
// =============================================================================
//
// This file defines the 'ingest' command, which reads monthly wage workbooks
// into the record store.
//
// COMMAND USAGE:
//   ledger ingest [flags]
//
// FLAGS:
//   --file         : Ingest one file instead of scanning input_dir
//   --dry-run      : Extract into memory only; nothing is stored or archived
//   --export-year  : After ingesting, export ledgers for the employees seen
//
// PROCESSING PIPELINE:
//   1. Load configuration and open the record store
//   2. Discover .xlsx, .xlsm and .csv files in the input directory
//   3. For each file, in name order:
//      a. Select the primary sheet and detect the layout
//      b. Extract rows or blocks and gate them on the employee number
//      c. Build canonical records and upsert them
//      d. Archive the file when it was fully stored
//   4. Write the ingest summary and the rejected-row log
//
// Files are ingested one at a time. A failed file stops the run unless
// continue_on_error is set (the default).
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/wage-ledger/internal/batch"
	"github.com/ginjaninja78/wage-ledger/internal/config"
	"github.com/ginjaninja78/wage-ledger/internal/converter"
	"github.com/ginjaninja78/wage-ledger/internal/ledger"
	"github.com/ginjaninja78/wage-ledger/internal/logging"
	"github.com/ginjaninja78/wage-ledger/internal/store"
	"github.com/ginjaninja78/wage-ledger/internal/validation"
	"github.com/ginjaninja78/wage-ledger/pkg/utils"
)

var (
	ingestFile       string
	ingestDryRun     bool
	ingestExportYear int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Read payroll workbooks into the record store",
	Long: `The ingest command scans the input directory for payroll workbooks and stores
one record per employee and pay period. Re-ingesting a period replaces the
earlier record for that employee.

Rows whose employee number is missing, not numeric or shorter than six digits
are skipped and listed in the error log in the output directory.

On success the workbook is moved to input_archive_dir when one is configured.
A failed workbook stays in the input directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "Ingest a single file instead of scanning input_dir")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Extract into memory without storing or archiving")
	ingestCmd.Flags().IntVar(&ingestExportYear, "export-year", 0, "Export ledgers for the ingested employees for this year")
}

func runIngest(cmd *cobra.Command) error {
	ctx := cmd.Context()
	summary := utils.ProcessingSummary{StartTime: time.Now()}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		records store.RecordStore
		sqlite  *store.SQLite
	)
	if ingestDryRun {
		records = store.NewMemory()
		logger.Info("Dry run: records are kept in memory only")
	} else {
		if sqlite, err = openStore(cfg); err != nil {
			return err
		}
		defer sqlite.Close()
		records = sqlite
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	files := []string{ingestFile}
	if ingestFile == "" {
		if files, err = fm.DiscoverInputFiles(); err != nil {
			return err
		}
	}
	if len(files) == 0 {
		logger.Info("No payroll workbooks found in %s", cfg.InputDir)
		return nil
	}
	logger.Info("Found %d file(s) to ingest", len(files))

	index := store.NewMemory()
	var rejections []*validation.ValidationError

	for _, file := range files {
		result := converter.New(file, cfg, records).SetLogger(logger).SetIndex(index).Run(ctx)
		summary.TotalFiles++
		rejections = append(rejections, result.Rejections...)
		summary.ValidationErrors += len(result.Rejections) + len(result.Warnings)

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    file,
				ErrorMessage: result.Error.Error(),
			})
			logger.Error("%s: %v", filepath.Base(file), result.Error)
			if !cfg.KeepGoing() || ctx.Err() != nil {
				break
			}
			continue
		}

		summary.SuccessfulFiles++
		summary.AcceptedRecords += result.Stats.Accepted
		summary.RejectedRows += result.Stats.Rejected

		info := utils.ProcessedFileInfo{
			InputFile:   file,
			Sheets:      result.Stats.Sheets,
			Accepted:    result.Stats.Accepted,
			Rejected:    result.Stats.Rejected,
			ProcessTime: result.Stats.ProcessingTime,
		}
		if !ingestDryRun {
			archived, err := fm.ArchiveInputFile(file)
			if err != nil {
				logger.Warn("Failed to archive %s: %v", file, err)
			}
			info.ArchivePath = archived
		}
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)
	}
	summary.EndTime = time.Now()

	if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
		logger.Warn("Failed to write ingest summary: %v", err)
	} else {
		logger.Info("Summary written: %s", path)
	}
	if len(rejections) > 0 {
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("ingest_errors_%s.txt", summary.StartTime.Format("20060102_150405")))
		if err := validation.WriteErrorLog(rejections, path); err != nil {
			logger.Warn("Failed to write error log: %v", err)
		} else {
			logger.Info("%d skipped row(s) logged to %s", len(rejections), path)
		}
	}

	fmt.Printf("Ingested %d of %d file(s): %d record(s) stored, %d row(s) skipped\n",
		summary.SuccessfulFiles, summary.TotalFiles, summary.AcceptedRecords, summary.RejectedRows)

	if ingestExportYear > 0 && index.Len() > 0 {
		if err := exportIngested(cmd, cfg, logger, records, index, sqlite); err != nil {
			return err
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}
	return nil
}

// exportIngested compiles every layout for the employees of this run.
func exportIngested(cmd *cobra.Command, cfg *config.MainConfig, logger logging.Logger, records store.RecordReader, index *store.Memory, sqlite *store.SQLite) error {
	opts := ledger.DefaultOptions()
	opts.CommuteExclusion = cfg.CommuteExclusion

	svcCfg := ledger.ServiceConfig{
		Records:          records,
		Index:            index,
		TemplatesDir:     cfg.TemplatesDir,
		OutputDir:        cfg.OutputDir,
		OutputNameFormat: cfg.OutputNameFormat,
		Options:          opts,
		Logger:           logger,
	}
	if sqlite != nil {
		svcCfg.Master = sqlite
		svcCfg.Stubs = sqlite
	}

	exp := batch.NewExporter(batch.Config{
		Compiler:       ledger.NewService(svcCfg),
		Sources:        []store.RecordReader{index},
		MaxConcurrency: cfg.MaxConcurrency,
		ManifestDir:    cfg.OutputDir,
		Logger:         logger,
	})
	m, err := exp.Export(cmd.Context(), ingestExportYear, nil)
	if err != nil {
		return err
	}
	printManifest(m)
	return nil
}
