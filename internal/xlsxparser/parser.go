// =============================================================================
// ASYCUDA Converter - Workbook Extractor
// =============================================================================
//
// This module reads a declaration workbook and turns its two sheets into
// generic records:
//
//   | Sheet | Used rows                  | Result                  |
//   |-------|----------------------------|-------------------------|
//   | SAD   | header row + first data row| one header Record       |
//   | Items | header row + every data row| one Record per data row |
//
// The first row of each sheet names the columns. Cells are read as their
// stored values with no number format applied, so a currency-formatted
// 1234.5 reads "1234.5" and not "1,234.50". Missing cells become "".
//
// Each sheet is read independently. A missing or unreadable sheet yields an
// empty result for that sheet and a SheetReadError warning, never an abort of
// the other sheet. Only when neither sheet yields data is the workbook
// rejected with EmptyInputError.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHEET NAMES
// =============================================================================

const (
	// HeaderSheet holds the declaration-level (SAD) row.
	HeaderSheet = "SAD"

	// ItemsSheet holds one row per customs line item.
	ItemsSheet = "Items"
)

// =============================================================================
// EXTRACTION RESULT
// =============================================================================

// Extraction is the tabular content of one workbook.
type Extraction struct {
	// Header is the first data row of the SAD sheet.
	// Empty when the sheet is missing or has no data rows.
	Header types.Record

	// Items holds the data rows of the Items sheet in sheet order.
	Items []types.Record

	// HeaderColumns lists the SAD columns in sheet order.
	HeaderColumns []string

	// ItemColumns lists the Items columns in sheet order.
	ItemColumns []string

	// Warnings collects the per-sheet read failures that were absorbed.
	Warnings []*SheetReadError
}

// Empty reports whether neither sheet produced data.
func (e *Extraction) Empty() bool {
	return len(e.Header) == 0 && len(e.Items) == 0
}

// =============================================================================
// EXTRACTION FUNCTIONS
// =============================================================================

// Extract reads the SAD and Items sheets from workbook bytes.
//
// RETURNS:
//   - The extraction, including absorbed sheet warnings.
//   - An *EmptyInputError if neither sheet produced data. The extraction is
//     still returned so callers can log its warnings.
func Extract(data []byte) (*Extraction, error) {
	ext := &Extraction{Header: types.Record{}}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		// Nothing can be read from an unopenable workbook, so both sheets fail.
		ext.Warnings = append(ext.Warnings,
			&SheetReadError{Sheet: HeaderSheet, Err: fmt.Errorf("open workbook: %w", err)},
			&SheetReadError{Sheet: ItemsSheet, Err: fmt.Errorf("open workbook: %w", err)},
		)
		return ext, &EmptyInputError{Warnings: ext.Warnings}
	}
	defer f.Close()

	// SAD: header record.
	if columns, rows, err := readSheet(f, HeaderSheet); err != nil {
		ext.Warnings = append(ext.Warnings, err)
	} else if len(rows) > 0 {
		ext.HeaderColumns = columns
		ext.Header = rows[0]
	}

	// Items: one record per row.
	if columns, rows, err := readSheet(f, ItemsSheet); err != nil {
		ext.Warnings = append(ext.Warnings, err)
	} else {
		ext.ItemColumns = columns
		ext.Items = rows
	}

	if ext.Empty() {
		return ext, &EmptyInputError{Warnings: ext.Warnings}
	}
	return ext, nil
}

// ExtractFile reads a workbook from disk and extracts it.
func ExtractFile(path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return Extract(data)
}

// readSheet returns the column names and data records of one sheet.
// Any panic raised while reading the sheet is reported as a SheetReadError so
// the sibling sheet is still read.
func readSheet(f *excelize.File, sheet string) (columns []string, records []types.Record, sheetErr *SheetReadError) {
	defer func() {
		if r := recover(); r != nil {
			columns, records = nil, nil
			sheetErr = &SheetReadError{Sheet: sheet, Err: fmt.Errorf("panic while reading: %v", r)}
		}
	}()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, nil, &SheetReadError{Sheet: sheet, Err: err}
	}
	if idx < 0 {
		return nil, nil, &SheetReadError{Sheet: sheet, Err: ErrSheetNotFound}
	}

	// Raw values: a number formatted as "1,234.50" on screen must still
	// read as 1234.5.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, &SheetReadError{Sheet: sheet, Err: fmt.Errorf("failed to read rows: %w", err)}
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	columns = cleanHeaders(rows[0])
	for _, row := range rows[1:] {
		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}
		records = append(records, buildRecord(columns, row))
	}
	return columns, records, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims the header cells. Blank headers stay blank and are
// skipped when records are built.
func cleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// buildRecord maps one row onto the column names. Cells missing from the end
// of a short row become "". When a column name repeats, the first occurrence
// wins.
func buildRecord(columns []string, row []string) types.Record {
	record := make(types.Record, len(columns))
	for i, col := range columns {
		if col == "" {
			continue
		}
		if _, seen := record[col]; seen {
			continue
		}
		if i < len(row) {
			record[col] = row[i]
		} else {
			record[col] = ""
		}
	}
	return record
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// IsWorkbookName reports whether a file name carries a spreadsheet
// extension accepted for conversion.
func IsWorkbookName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range WorkbookExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// WorkbookExtensions lists the accepted input extensions. Legacy .xls files
// are accepted by name; excelize cannot open them, so they fail extraction
// with a per-file error.
var WorkbookExtensions = []string{".xlsx", ".xlsm", ".xls"}
