// =============================================================================
// ASYCUDA Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration,
// the shipment constants and, optionally, workbooks without writing output.
//
// COMMAND USAGE:
//   asycuda-converter validate [workbooks...]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/config"
	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/ginjaninja78/asycuda-converter/internal/validation"
	"github.com/ginjaninja78/asycuda-converter/internal/xlsxparser"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [workbooks...]",
	Short: "Validate configuration, shipment constants and workbooks",
	Long: `The validate command loads the configuration and the shipment constants
and reports every problem found. Workbooks given as arguments are extracted
and mapped without writing output; unused columns, unreadable sheets and
non-numeric invoice amounts are reported as warnings.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, args []string) error {
	fmt.Fprintln(out, "Configuration: OK")

	// LoadConstants rejects tables with errors; warnings are reported here.
	constants, err := loadConstants()
	if err != nil {
		return err
	}
	source := mainConfig.ConstantsFile
	if source == "" {
		source = "built-in"
	}
	result := validation.ValidateConstants(constants, config.RequiredConstantKeys())
	fmt.Fprintf(out, "Shipment constants (%s): %d key(s), %d warning(s)\n", source, len(constants), result.WarningCount)
	if len(result.Errors) > 0 {
		fmt.Fprint(out, validation.FormatErrors(result.Errors))
	}

	failed := 0
	for _, path := range args {
		if !validateWorkbook(out, path, constants) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d workbook(s) cannot be converted", failed, len(args))
	}
	return nil
}

// validateWorkbook reports on one workbook and returns whether it converts.
func validateWorkbook(out io.Writer, path string, constants types.ConstantTable) bool {
	fmt.Fprintf(out, "\n%s:\n", path)

	ext, err := xlsxparser.ExtractFile(path)
	if ext != nil {
		result := validation.ValidateExtraction(ext)
		if len(result.Errors) > 0 {
			fmt.Fprint(out, validation.FormatErrors(result.Errors))
		}
	}
	if err != nil {
		fmt.Fprintf(out, "  not convertible: %v\n", err)
		return false
	}

	if _, err := asycuda.Map(ext.Header, ext.Items, constants); err != nil {
		fmt.Fprintf(out, "  not convertible: %v\n", err)
		return false
	}
	fmt.Fprintf(out, "  OK: %d header column(s), %d item(s)\n", len(ext.HeaderColumns), len(ext.Items))
	return true
}
