// =============================================================================
// Wage Ledger - File Manager Utility
// =============================================================================
//
// This module provides the file handling shared by the commands:
//   - Source workbook discovery in the input directory
//   - Archival of ingested sources
//   - Ledger file naming
//   - The ingest summary log
//
// ARCHIVAL STRATEGY:
//   - A source is moved to the archive directory only after every record
//     it produced was stored
//   - Failed sources stay in the input directory for the next run
//   - A name clash in the archive gets a timestamp suffix instead of
//     overwriting the earlier file
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceExtensions are the file types 'ingest' picks up.
var SourceExtensions = []string{".xlsx", ".xlsm", ".csv"}

// DefaultNameFormat is used when no output name format is configured.
const DefaultNameFormat = "賃金台帳_{employee_id}_{year}_{template}.xlsx"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the input side of a run.
type FileManager struct {
	// InputDir is scanned for source workbooks.
	InputDir string

	// OutputDir receives logs and ledgers.
	OutputDir string

	// InputArchiveDir receives ingested sources. Empty disables archiving.
	InputArchiveDir string

	// UseTimestampSubdirs files archives under YYYY/MM/DD.
	UseTimestampSubdirs bool

	now func() time.Time
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		now:             time.Now,
	}
}

// EnsureDirectories creates the configured directories.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the source workbooks directly inside the input
// directory, sorted by name. Office lock files ("~$...") are skipped.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if IsSourceFile(e.Name()) {
			files = append(files, filepath.Join(fm.InputDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// IsSourceFile reports whether name has one of the SourceExtensions.
func IsSourceFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range SourceExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an ingested source to the archive directory.
//
// PARAMETERS:
//   - filePath: The source to archive.
//
// RETURNS:
//   - The archived path, or filePath unchanged when archiving is disabled.
//   - An error if the move fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.InputArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.archivePath(filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) archivePath(filePath string) string {
	now := fm.clock()
	dir := fm.InputArchiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(dir, now.Format("2006"), now.Format("01"), now.Format("02"))
	}

	name := filepath.Base(filePath)
	target := filepath.Join(dir, name)
	if !FileExists(target) {
		return target
	}
	ext := filepath.Ext(name)
	return filepath.Join(dir, strings.TrimSuffix(name, ext)+"_"+now.Format("20060102_150405")+ext)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputNameParams are the placeholder values of a ledger file name.
type OutputNameParams struct {
	EmployeeID string
	Name       string
	Year       int
	Template   string
}

// GenerateOutputFileName builds a ledger file name.
//
// PARAMETERS:
//   - format: The name format. Placeholders:
//     {employee_id} {name} {year} {template} {uuid} {date}
//     An empty format uses DefaultNameFormat.
//   - params: The placeholder values.
//
// RETURNS:
//   - A file name with characters that are invalid on Windows replaced by
//     "_", always ending in ".xlsx".
//
// EXAMPLE:
//
//	format: "賃金台帳_{employee_id}_{name}_{year}.xlsx"
//	output: "賃金台帳_0312345_山田太郎_2025.xlsx"
func GenerateOutputFileName(format string, params OutputNameParams) string {
	if format == "" {
		format = DefaultNameFormat
	}

	r := strings.NewReplacer(
		"{employee_id}", params.EmployeeID,
		"{name}", params.Name,
		"{year}", strconv.Itoa(params.Year),
		"{template}", params.Template,
		"{uuid}", uuid.New().String(),
		"{date}", time.Now().Format("20060102"),
	)
	name := SanitizeFileName(r.Replace(format))

	// Placeholders left empty leave doubled or trailing separators behind.
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.ReplaceAll(name, "_.", ".")

	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name += ".xlsx"
	}
	return name
}

// SanitizeFileName replaces path separators and characters Windows rejects
// in file names, and trims surrounding spaces.
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}

// =============================================================================
// INGEST SUMMARY
// =============================================================================

// ProcessingSummary describes one ingest run.
type ProcessingSummary struct {
	StartTime        time.Time
	EndTime          time.Time
	TotalFiles       int
	SuccessfulFiles  int
	FailedFiles      int
	AcceptedRecords  int
	RejectedRows     int
	ValidationErrors int
	ProcessedFiles   []ProcessedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo describes one ingested source.
type ProcessedFileInfo struct {
	InputFile   string
	ArchivePath string
	Sheets      int
	Accepted    int
	Rejected    int
	ProcessTime time.Duration
}

// FailedFileInfo describes a source that could not be ingested.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes an ingest summary into outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	name := fmt.Sprintf("ingest_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	const rule = "================================================================================\n"

	fmt.Fprintf(w, "Wage Ledger - Ingest Summary\n"+rule+"\n")
	fmt.Fprintf(w, "Run Information:\n")
	fmt.Fprintf(w, "  Start Time:        %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  End Time:          %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:          %s\n\n", summary.EndTime.Sub(summary.StartTime))
	fmt.Fprintf(w, "Statistics:\n")
	fmt.Fprintf(w, "  Total Files:       %d\n", summary.TotalFiles)
	fmt.Fprintf(w, "  Successful:        %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(w, "  Failed:            %d\n", summary.FailedFiles)
	fmt.Fprintf(w, "  Accepted Records:  %d\n", summary.AcceptedRecords)
	fmt.Fprintf(w, "  Rejected Rows:     %d\n", summary.RejectedRows)
	fmt.Fprintf(w, "  Validation Errors: %d\n\n", summary.ValidationErrors)

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprintf(w, "Successful Files:\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			if pf.ArchivePath != "" && pf.ArchivePath != pf.InputFile {
				fmt.Fprintf(w, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(w, "  Sheets:       %d\n", pf.Sheets)
			fmt.Fprintf(w, "  Accepted:     %d\n", pf.Accepted)
			fmt.Fprintf(w, "  Rejected:     %d\n", pf.Rejected)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime)
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprintf(w, "Failed Files:\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	fmt.Fprintf(w, rule+"End of Summary\n")

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return path, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
