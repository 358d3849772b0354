// =============================================================================
// ASYCUDA Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration and the shipment constant
// table.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, concurrency, server
//   2. Shipment Constants (constants.yaml): the per-consignment values that
//      are injected into every document of a batch (see constants.go)
//
// Both files are optional. A missing main config at the default path yields
// the built-in defaults; a missing constants file yields the built-in
// shipment table.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the main config file used when none is given.
const DefaultConfigPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for workbooks by the convert command.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives generated XML documents and error reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input workbooks after a successful conversion
	// when ArchiveInputs is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives the ZIP archive of a batch.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ConstantsFile is the shipment constants YAML file.
	// Empty means the built-in table.
	ConstantsFile string `yaml:"constants_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log encoding.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files converted at once.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ArchiveNameFormat names the batch ZIP archive.
	// Placeholders:
	//   {short}     - first 8 hex characters of a random UUID
	//   {uuid}      - a full random UUID
	//   {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
	// Default: "ASYCUDA_XML_Output_{short}.zip"
	ArchiveNameFormat string `yaml:"archive_name_format"`

	// ArchiveInputs moves converted workbooks to InputArchiveDir.
	// Default: false
	ArchiveInputs bool `yaml:"archive_inputs"`

	// ArchiveByDate files archived inputs under year/month/day
	// subdirectories of InputArchiveDir.
	// Example: input_archive/2025/06/15/declaration.xlsx
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds the settings of the HTTP upload service.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":5000"
	Addr string `yaml:"addr"`

	// MaxUploadSize caps the multipart request body in bytes.
	// Default: 64 MiB
	MaxUploadSize int64 `yaml:"max_upload_size"`

	// ProgressTTL is how long a finished session stays queryable.
	// Default: 2s
	ProgressTTL time.Duration `yaml:"progress_ttl"`

	// RequestTimeout bounds a single conversion request.
	// Default: 5m
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Default returns the built-in configuration.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. When it is the
//     default path and the file does not exist, defaults are returned.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && configPath == DefaultConfigPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse the YAML.
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ArchiveNameFormat == "" {
		config.ArchiveNameFormat = "ASYCUDA_XML_Output_{short}.zip"
	}
	if config.Server.Addr == "" {
		config.Server.Addr = ":5000"
	}
	if config.Server.MaxUploadSize == 0 {
		config.Server.MaxUploadSize = 64 << 20
	}
	if config.Server.ProgressTTL == 0 {
		config.Server.ProgressTTL = 2 * time.Second
	}
	if config.Server.RequestTimeout == 0 {
		config.Server.RequestTimeout = 5 * time.Minute
	}
}

// validateMainConfig validates the main configuration. Directories are
// created by the commands that use them, not here.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", config.LogLevel)
	}

	switch strings.ToLower(config.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not one of text, json", config.LogFormat)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	if !strings.HasSuffix(strings.ToLower(config.ArchiveNameFormat), ".zip") {
		return fmt.Errorf("archive_name_format %q must end in .zip", config.ArchiveNameFormat)
	}
	if config.Server.MaxUploadSize < 0 {
		return fmt.Errorf("server.max_upload_size must not be negative")
	}
	if config.Server.ProgressTTL < 0 || config.Server.RequestTimeout < 0 {
		return fmt.Errorf("server durations must not be negative")
	}
	return nil
}
