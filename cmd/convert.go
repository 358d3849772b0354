// =============================================================================
// ASYCUDA Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the batch conversion entry point
// for local files.
//
// COMMAND USAGE:
//   asycuda-converter convert [files...] [flags]
//
// FLAGS:
//   --dry-run : Convert without writing anything
//   --zip     : Write the batch archive to this path instead of output_archive
//   --no-zip  : Skip the batch archive
//
// PROCESSING PIPELINE:
//   1. Load the shipment constants
//   2. Collect the workbooks: the arguments, or every workbook in input_dir
//   3. Convert them concurrently (max_concurrency)
//   4. Write <base>.xml or <name>_ERROR.txt per file to output_dir
//   5. Archive converted inputs (archive_inputs) and write the ZIP
//   6. Write the processing summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ginjaninja78/asycuda-converter/internal/batch"
	"github.com/ginjaninja78/asycuda-converter/internal/converter"
	"github.com/ginjaninja78/asycuda-converter/internal/xlsxparser"
	"github.com/ginjaninja78/asycuda-converter/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun converts without writing output files.
var dryRun bool

// zipPath overrides the archive location.
var zipPath string

// noZip disables the batch archive.
var noZip bool

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert declaration workbooks to ASYCUDA XML",
	Long: `The convert command converts declaration workbooks to ASYCUDA XML.

With file arguments, exactly those files are converted. Without arguments,
every .xlsx, .xlsm and .xls file in input_dir is converted.

Each input produces exactly one output in output_dir:
  - <name>.xml on success
  - <name>_ERROR.txt describing the failure otherwise

A failure in one file never affects the others. Converted inputs from
input_dir are moved to input_archive_dir when archive_inputs is set, and all
outputs are packed into a ZIP archive in output_archive_dir.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runConvert(ctx, cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Convert without writing output files",
	)

	convertCmd.Flags().StringVar(
		&zipPath,
		"zip",
		"",
		"Write the batch archive to this path",
	)

	convertCmd.Flags().BoolVar(
		&noZip,
		"no-zip",
		false,
		"Do not write a batch archive",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert orchestrates one local batch.
func runConvert(ctx context.Context, out io.Writer, args []string) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONSTANTS
	// =========================================================================

	constants, err := loadConstants()
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir,
		mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
	// Explicit file arguments are never moved.
	fm.ArchiveOnSuccess = mainConfig.ArchiveInputs && len(args) == 0
	fm.UseTimestampSubdirs = mainConfig.ArchiveByDate

	// =========================================================================
	// STEP 2: COLLECT INPUT FILES
	// =========================================================================

	paths := args
	if len(paths) == 0 {
		paths, err = fm.DiscoverInputFiles(xlsxparser.WorkbookExtensions)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintf(out, "No workbooks found in %s.\n", mainConfig.InputDir)
			return nil
		}
	}

	// Workers read the files; an unreadable one gets its own error entry.
	files := make([]batch.FileInput, 0, len(paths))
	for _, p := range paths {
		files = append(files, batch.FileInput{Name: filepath.Base(p), Path: p})
	}

	fmt.Fprintf(out, "Converting %d file(s)...\n", len(files))

	// =========================================================================
	// STEP 3: CONVERT CONCURRENTLY
	// =========================================================================

	logger := slog.Default()
	runner := batch.NewRunner(converter.New(constants, logger), mainConfig.MaxConcurrency, logger)

	output, err := runner.Run(ctx, nil, files)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: WRITE RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		TotalFiles: len(files),
	}

	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	names := output.EntryNames()
	for i, result := range output.Entries {
		target := names[i]
		if !dryRun {
			if target, err = fm.WriteOutputFile(names[i], result.Output); err != nil {
				return err
			}
		}

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FileName,
				ErrorMessage: result.Error.Error(),
				ErrorType:    string(converter.Classify(result.Error)),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", result.FileName, result.Error)
			continue
		}

		info := utils.ProcessedFileInfo{
			InputFile:   result.FileName,
			OutputFile:  target,
			Items:       result.Stats.ItemsMapped,
			ProcessTime: result.Stats.ProcessingTime,
		}
		if !dryRun && fm.ArchiveOnSuccess {
			archived, err := fm.ArchiveInputFile(paths[i])
			if err != nil {
				slog.Warn("failed to archive input", "file", paths[i], "error", err)
			} else {
				info.ArchivePath = archived
			}
		}

		summary.SuccessfulFiles++
		summary.TotalItems += result.Stats.ItemsMapped
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)
		fmt.Fprintf(out, "  ✓ %s -> %s\n", result.FileName, filepath.Base(target))
	}

	// =========================================================================
	// STEP 5: ARCHIVE AND SUMMARY
	// =========================================================================

	if !dryRun && !noZip {
		archivePath, err := writeBatchArchive(fm, output)
		if err != nil {
			return err
		}
		summary.ArchivePath = archivePath
	}

	summary.EndTime = time.Now()

	if !dryRun {
		summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
		if err != nil {
			slog.Warn("failed to write summary", "error", err)
		} else {
			slog.Debug("summary written", "path", summaryPath)
		}
	}

	fmt.Fprintln(out, "\n=== Conversion Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	if summary.ArchivePath != "" {
		fmt.Fprintf(out, "Archive:         %s\n", summary.ArchivePath)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	return nil
}

// writeBatchArchive writes the ZIP to --zip or to output_archive_dir.
func writeBatchArchive(fm *utils.FileManager, output *batch.Output) (string, error) {
	if zipPath == "" {
		return fm.WriteArchive(batch.ArchiveName(mainConfig.ArchiveNameFormat), output.WriteZip)
	}

	if dir := filepath.Dir(zipPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	if err := output.WriteZip(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive: %w", err)
	}
	return zipPath, nil
}
