// =============================================================================
// ASYCUDA Converter - Converter Module
// =============================================================================
//
// This module runs the conversion pipeline for a single workbook:
//
//   1. Extract the SAD header record and the Items records
//   2. Map them against the shipment constants into the ASYCUDA tree
//   3. Serialize the tree as XML
//
// A failure at any step is reported in the Result; nothing is thrown past
// Convert. The batch runner relies on this to keep one bad file from
// affecting the others.
//
// CONCURRENCY:
//   A Converter holds only read-only state and is safe to share between
//   goroutines.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/ginjaninja78/asycuda-converter/internal/xlsxparser"
	"github.com/ginjaninja78/asycuda-converter/internal/xmlwriter"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// FileName is the name of the input file as submitted.
	FileName string

	// OutputName is the name of the generated XML document, or of the error
	// report when the conversion failed.
	OutputName string

	// Output is the XML document on success, or the error report text.
	Output []byte

	// Success indicates whether the conversion produced an XML document.
	Success bool

	// Error contains the failure. Nil on success.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about one conversion.
type ProcessingStats struct {
	// HeaderColumns is the number of columns found on the SAD sheet.
	HeaderColumns int

	// ItemsMapped is the number of Item elements written.
	ItemsMapped int

	// Warnings is the number of sheet read failures that were absorbed.
	Warnings int

	// ProcessingTime is the time taken to convert the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter turns declaration workbooks into ASYCUDA XML.
type Converter struct {
	mapper *asycuda.Mapper
	logger *slog.Logger
}

// New creates a Converter bound to one shipment constant table.
//
// PARAMETERS:
//   - constants: the shipment constants injected into every document.
//   - logger: destination for per-file diagnostics. Nil uses slog.Default().
func New(constants types.ConstantTable, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		mapper: asycuda.NewMapper(constants),
		logger: logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Convert runs the pipeline for one in-memory workbook.
//
// PARAMETERS:
//   - ctx: checked before work starts; a cancelled context fails the file.
//   - name: the submitted file name, used to derive the output name.
//   - data: the workbook bytes.
//
// RETURNS:
//   - A Result. On failure Output holds a plain-text error report named
//     "<name>_ERROR.txt".
func (c *Converter) Convert(ctx context.Context, name string, data []byte) Result {
	start := time.Now()
	log := c.logger.With(slog.String("file", name))

	result := c.convert(ctx, log, name, data)
	result.Stats.ProcessingTime = time.Since(start)

	if result.Success {
		log.Debug("file converted",
			slog.Int("items", result.Stats.ItemsMapped),
			slog.Duration("duration", result.Stats.ProcessingTime))
	} else {
		log.Warn("file conversion failed",
			slog.String("code", string(Classify(result.Error))),
			slog.Any("error", result.Error))
	}
	return result
}

// ConvertFile reads a workbook from disk and converts it. A file that
// cannot be read fails like any other conversion.
func (c *Converter) ConvertFile(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		result := failed(name, fmt.Errorf("failed to read file: %w", err))
		c.logger.Warn("file conversion failed",
			slog.String("file", name),
			slog.String("code", string(Classify(result.Error))),
			slog.Any("error", result.Error))
		return result
	}
	return c.Convert(ctx, name, data)
}

func (c *Converter) convert(ctx context.Context, log *slog.Logger, name string, data []byte) Result {
	// =========================================================================
	// STEP 0: ADMISSION
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return failed(name, err)
	}
	if !xlsxparser.IsWorkbookName(name) {
		return failed(name, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(name)))
	}

	// =========================================================================
	// STEP 1: EXTRACT
	// =========================================================================
	// Sheet failures are absorbed by the extractor; only an empty workbook
	// is fatal.

	ext, err := xlsxparser.Extract(data)
	if ext != nil {
		for _, w := range ext.Warnings {
			log.Warn("sheet skipped", slog.String("sheet", w.Sheet), slog.Any("error", w.Err))
		}
	}
	if err != nil {
		return failed(name, err)
	}

	// =========================================================================
	// STEP 2: MAP
	// =========================================================================

	tree, err := c.mapper.Map(ext.Header, ext.Items)
	if err != nil {
		return failed(name, err)
	}

	// =========================================================================
	// STEP 3: SERIALIZE
	// =========================================================================

	xmlBytes, err := xmlwriter.Serialize(tree)
	if err != nil {
		return failed(name, err)
	}

	return Result{
		FileName:   name,
		OutputName: OutputName(name),
		Output:     xmlBytes,
		Success:    true,
		Stats: ProcessingStats{
			HeaderColumns: len(ext.HeaderColumns),
			ItemsMapped:   len(ext.Items),
			Warnings:      len(ext.Warnings),
		},
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// OutputName derives the XML name from an input name: the extension is
// replaced by ".xml".
func OutputName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xml"
}

// ErrorReportName derives the error report name from an input name.
func ErrorReportName(name string) string {
	return filepath.Base(name) + "_ERROR.txt"
}

// ErrorReport renders the plain-text report written in place of a failed
// file's XML.
func ErrorReport(name string, err error) []byte {
	return []byte(fmt.Sprintf("Conversion failed: %s | Error: %v", filepath.Base(name), err))
}

// Failed builds the Result for a file that could not be converted.
func Failed(name string, err error) Result {
	return failed(name, err)
}

func failed(name string, err error) Result {
	return Result{
		FileName:   name,
		OutputName: ErrorReportName(name),
		Output:     ErrorReport(name, err),
		Success:    false,
		Error:      err,
	}
}
