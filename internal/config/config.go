// =============================================================================
// Wage Ledger - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later wins):
//   1. Built-in defaults
//   2. config.yaml
//   3. .env next to config.yaml (LEDGER_* keys)
//   4. Process environment (LEDGER_* keys)
//
// A missing config.yaml is not an error: the defaults plus environment are
// used. The merged result is checked with struct validation tags before the
// working directories are created.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/wage-ledger/internal/schema"
)

// Commute exclusion policies for the allowance exclusion-sum row.
const (
	ExclusionInRange = "in_range"
	ExclusionAlways  = "always"
	ExclusionNever   = "never"
)

// DefaultOutputNameFormat names compiled ledgers.
const DefaultOutputNameFormat = "賃金台帳_{employee_id}_{name}_{year}_{template}.xlsx"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for source workbooks by 'ingest'.
	// Default: "./input"
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputDir receives compiled ledgers, manifests and error logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// InputArchiveDir receives source workbooks after a successful ingest
	// when archiving is enabled. Empty disables archiving.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// TemplatesDir holds template_print.xlsx, template_format_b.xlsx and
	// template_format_c.xlsx.
	// Default: "./templates"
	TemplatesDir string `yaml:"templates_dir" validate:"required"`

	// =========================================================================
	// STORAGE SETTINGS
	// =========================================================================

	// DatabasePath is the SQLite database holding payroll records and the
	// employee master. ":memory:" keeps everything in memory for the run.
	// Default: "./data/ledger.db"
	DatabasePath string `yaml:"database_path"`

	// MasterFile is the employee master workbook read by 'master sync'.
	MasterFile string `yaml:"master_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// =========================================================================
	// EXTRACTION SETTINGS
	// =========================================================================

	// SheetPriority orders the candidate primary sheets of a source workbook.
	// "YYYY年" matches any sheet whose name starts with a year.
	SheetPriority []string `yaml:"sheet_priority"`

	// CSV configures .csv sources.
	CSV CSVSettings `yaml:"csv"`

	// =========================================================================
	// COMPILATION SETTINGS
	// =========================================================================

	// CommuteExclusion decides when the commuting allowance is subtracted
	// from the generic allowance sum: "in_range", "always" or "never".
	// Default: "in_range"
	CommuteExclusion string `yaml:"commute_exclusion" validate:"omitempty,oneof=in_range always never"`

	// OutputNameFormat names compiled ledgers. Placeholders:
	//   {employee_id} {name} {year} {template} {uuid}
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds the employees compiled at once by 'export'.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=1,lte=64"`

	// ContinueOnError keeps 'ingest' going after a file fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`
}

// CSVSettings configures .csv sources.
type CSVSettings struct {
	// Delimiter separates fields. "tab" and "\t" select a tab.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is "utf-8" or "shift_jis".
	// Default: "utf-8"
	Encoding string `yaml:"encoding" validate:"omitempty,oneof=utf-8 shift_jis"`
}

// KeepGoing reports whether ingest continues after a failed file.
func (c *MainConfig) KeepGoing() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig reads and validates the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults and environment only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dotenv, err := godotenv.Read(filepath.Join(filepath.Dir(configPath), ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	applyEnvOverrides(&config, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides copies LEDGER_* variables over file values.
func applyEnvOverrides(config *MainConfig, lookup func(string) (string, bool)) {
	strs := map[string]*string{
		"LEDGER_INPUT_DIR":          &config.InputDir,
		"LEDGER_OUTPUT_DIR":         &config.OutputDir,
		"LEDGER_INPUT_ARCHIVE_DIR":  &config.InputArchiveDir,
		"LEDGER_TEMPLATES_DIR":      &config.TemplatesDir,
		"LEDGER_DATABASE_PATH":      &config.DatabasePath,
		"LEDGER_MASTER_FILE":        &config.MasterFile,
		"LEDGER_LOG_LEVEL":          &config.LogLevel,
		"LEDGER_COMMUTE_EXCLUSION":  &config.CommuteExclusion,
		"LEDGER_OUTPUT_NAME_FORMAT": &config.OutputNameFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("LEDGER_MAX_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.MaxConcurrency = n
		}
	}
	if v, ok := lookup("LEDGER_CONTINUE_ON_ERROR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.ContinueOnError = &b
		}
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.TemplatesDir == "" {
		config.TemplatesDir = "./templates"
	}
	if config.DatabasePath == "" {
		config.DatabasePath = "./data/ledger.db"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if len(config.SheetPriority) == 0 {
		config.SheetPriority = schema.DefaultSheetPriority()
	}
	if config.CommuteExclusion == "" {
		config.CommuteExclusion = ExclusionInRange
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = DefaultOutputNameFormat
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.CSV.Encoding == "" {
		config.CSV.Encoding = "utf-8"
	}
}

// validateMainConfig checks struct tags and creates the working directories.
func validateMainConfig(config *MainConfig) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.TemplatesDir,
	}
	if config.InputArchiveDir != "" {
		dirs = append(dirs, config.InputArchiveDir)
	}
	if config.DatabasePath != ":memory:" {
		dirs = append(dirs, filepath.Dir(config.DatabasePath))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
