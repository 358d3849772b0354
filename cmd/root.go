// =============================================================================
// ASYCUDA Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (asycuda-converter)
//   ├── convertCmd  (convert workbooks from files or the input directory)
//   ├── serveCmd    (HTTP upload service)
//   ├── validateCmd (check configuration, constants and workbooks)
//   ├── schemaCmd   (print the XSD of the output document)
//   └── versionCmd
//
// CONFIGURATION:
//   The root command:
//   1. Sets up global flags (--config, --constants, --verbose)
//   2. Loads the main configuration before any subcommand runs
//   3. Sets up structured logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/asycuda-converter/internal/config"
	"github.com/ginjaninja78/asycuda-converter/internal/logging"
	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// constantsFile overrides constants_file from the configuration.
var constantsFile string

// verbose forces debug logging.
var verbose bool

// mainConfig is loaded by PersistentPreRunE.
var mainConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "asycuda-converter",

	Short: "Convert customs declaration workbooks to ASYCUDA XML",

	Long: `asycuda-converter turns customs declaration workbooks (sheets "SAD" and
"Items") into ASYCUDA XML documents for electronic submission.

Key Features:
  - Fixed ASYCUDA layout with per-field defaults
  - Shipment constants injected from a YAML table
  - Concurrent batch conversion with one output per input file
  - HTTP upload service with progress polling

Example Usage:
  asycuda-converter convert a.xlsx b.xlsx --zip out.zip
  asycuda-converter convert                 # everything in input_dir
  asycuda-converter serve --addr :5000
  asycuda-converter validate --constants shipment.yaml`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		if constantsFile != "" {
			cfg.ConstantsFile = constantsFile
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logging.Setup(level, cfg.LogFormat)

		mainConfig = cfg
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConstants loads the shipment constants named by the configuration.
func loadConstants() (types.ConstantTable, error) {
	constants, err := config.LoadConstants(mainConfig.ConstantsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipment constants: %w", err)
	}
	return constants, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&constantsFile,
		"constants",
		"",
		"Path to a shipment constants YAML file (overrides constants_file)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
