// =============================================================================
// ASYCUDA Converter - Validation Engine
// =============================================================================
//
// This module checks inputs before they reach the mapper:
//
//   | Check               | Target               | Severity          |
//   |---------------------|----------------------|-------------------|
//   | constant present    | shipment constants   | error             |
//   | constant numeric    | shipment constants   | error             |
//   | container flag      | shipment constants   | warning           |
//   | sheet readable      | workbook extraction  | warning           |
//   | column recognised   | workbook extraction  | warning           |
//   | invoice amount      | Items rows           | warning           |
//
// Errors make a constant table unusable. Warnings never stop a conversion;
// they explain why an output field fell back to its default or was omitted.
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - Each entry carries the field, value and a human-readable message
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/ginjaninja78/asycuda-converter/internal/xlsxparser"
	"github.com/shopspring/decimal"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Scope names what was checked: "constants", a sheet name, or
	// "Items row N".
	Scope string

	// Field is the constant key or column name.
	Field string

	// Value is the offending value, if any.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("[%s] %s, Field '%s': %s", strings.ToUpper(e.Severity), e.Scope, e.Field, e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return msg
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors of SeverityError.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of fatal findings.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

// =============================================================================
// SHIPMENT CONSTANTS
// =============================================================================

// textualConstants are the keys whose values are not numbers.
var textualConstants = map[string]bool{
	"container_flag":      true,
	"delivery_terms_code": true,
	"manifest_reference":  true,
}

// ValidateConstants checks a shipment constant table.
//
// PARAMETERS:
//   - table: the constants to check.
//   - required: keys the document layout reads; each must be present and
//     non-empty. Numeric keys must parse as decimals.
func ValidateConstants(table types.ConstantTable, required []string) *ValidationResult {
	result := newResult()

	for _, key := range required {
		value, ok := table.Lookup(key)
		value = strings.TrimSpace(value)
		switch {
		case !ok:
			result.add(&ValidationError{Severity: SeverityError, Scope: "constants", Field: key,
				Message: "required constant is missing"})
			continue
		case value == "":
			result.add(&ValidationError{Severity: SeverityError, Scope: "constants", Field: key,
				Message: "required constant is empty"})
			continue
		}

		if textualConstants[key] {
			continue
		}
		if _, err := decimal.NewFromString(value); err != nil {
			result.add(&ValidationError{Severity: SeverityError, Scope: "constants", Field: key, Value: value,
				Message: "value is not a decimal number"})
		}
	}

	if flag, ok := table.Lookup("container_flag"); ok && flag != "True" && flag != "False" {
		result.add(&ValidationError{Severity: SeverityWarning, Scope: "constants", Field: "container_flag", Value: flag,
			Message: "expected True or False"})
	}

	if rate, ok := table.Lookup("currency_rate"); ok {
		if d, err := decimal.NewFromString(strings.TrimSpace(rate)); err == nil && !d.IsPositive() {
			result.add(&ValidationError{Severity: SeverityError, Scope: "constants", Field: "currency_rate", Value: rate,
				Message: "currency rate must be positive"})
		}
	}

	// Keys nobody reads are usually typos of required ones.
	known := make(map[string]bool, len(required))
	for _, key := range required {
		known[key] = true
	}
	for _, key := range table.Keys() {
		if !known[key] {
			result.add(&ValidationError{Severity: SeverityWarning, Scope: "constants", Field: key,
				Message: "constant is not used by the document layout"})
		}
	}

	return result
}

// =============================================================================
// WORKBOOKS
// =============================================================================

// ValidateExtraction reports problems in an extracted workbook that would
// make output fields fall back to defaults.
func ValidateExtraction(ext *xlsxparser.Extraction) *ValidationResult {
	result := newResult()
	if ext == nil {
		return result
	}

	for _, w := range ext.Warnings {
		result.add(&ValidationError{Severity: SeverityWarning, Scope: w.Sheet, Field: "-",
			Message: w.Err.Error()})
	}

	checkColumns(result, xlsxparser.HeaderSheet, ext.HeaderColumns, asycuda.HeaderColumns())
	checkColumns(result, xlsxparser.ItemsSheet, ext.ItemColumns, asycuda.ItemColumns())

	if len(ext.Items) > 0 && !contains(ext.ItemColumns, asycuda.InvoiceForeignColumn) {
		result.add(&ValidationError{Severity: SeverityWarning, Scope: xlsxparser.ItemsSheet, Field: asycuda.InvoiceForeignColumn,
			Message: "column missing; the declaration invoice total will be 0"})
	}

	for i, item := range ext.Items {
		v := item.Value(asycuda.InvoiceForeignColumn)
		if v == "" {
			continue
		}
		if _, err := decimal.NewFromString(v); err != nil {
			result.add(&ValidationError{Severity: SeverityWarning, Scope: fmt.Sprintf("Items row %d", i+1),
				Field: asycuda.InvoiceForeignColumn, Value: v,
				Message: "not a number; excluded from the invoice total"})
		}
	}

	return result
}

// checkColumns warns about sheet columns that no output field reads.
func checkColumns(result *ValidationResult, sheet string, columns, known []string) {
	for _, col := range columns {
		if col == "" || contains(known, col) {
			continue
		}
		result.add(&ValidationError{Severity: SeverityWarning, Scope: sheet, Field: col,
			Message: "column is not used by any output field"})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats validation findings for display.
//
// RETURNS:
//   - A formatted string containing all findings.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
