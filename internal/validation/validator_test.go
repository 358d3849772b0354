package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/ginjaninja78/asycuda-converter/internal/xlsxparser"
)

func validTable() types.ConstantTable {
	table := types.ConstantTable{}
	for _, key := range asycuda.ConstantKeys() {
		table[key] = "1"
	}
	table["container_flag"] = "False"
	table["delivery_terms_code"] = "DDP"
	table["manifest_reference"] = "LV02 2025 6241"
	return table
}

func findings(result *ValidationResult, field string) []*ValidationError {
	var out []*ValidationError
	for _, e := range result.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

func TestValidateConstantsValid(t *testing.T) {
	result := ValidateConstants(validTable(), asycuda.ConstantKeys())
	if !result.IsValid || len(result.Errors) != 0 {
		t.Errorf("findings on a valid table:\n%s", FormatErrors(result.Errors))
	}
}

func TestValidateConstantsErrors(t *testing.T) {
	table := validTable()
	delete(table, "total_cif")
	table["duty_tax_rate"] = " "
	table["total_invoice"] = "2.006,64"
	table["currency_rate"] = "0"

	result := ValidateConstants(table, asycuda.ConstantKeys())
	if result.IsValid {
		t.Fatal("table should be invalid")
	}
	if result.ErrorCount != 4 {
		t.Errorf("ErrorCount = %d, want 4\n%s", result.ErrorCount, FormatErrors(result.Errors))
	}
	for field, msg := range map[string]string{
		"total_cif":     "missing",
		"duty_tax_rate": "empty",
		"total_invoice": "decimal",
		"currency_rate": "positive",
	} {
		got := findings(result, field)
		if len(got) != 1 || got[0].Severity != SeverityError || !strings.Contains(got[0].Message, msg) {
			t.Errorf("%s findings = %v, want one error about %s", field, got, msg)
		}
	}
}

func TestValidateConstantsWarnings(t *testing.T) {
	table := validTable()
	table["container_flag"] = "yes"
	table["total_cfi"] = "1"

	result := ValidateConstants(table, asycuda.ConstantKeys())
	if !result.IsValid {
		t.Fatalf("warnings must not invalidate:\n%s", FormatErrors(result.Errors))
	}
	if result.WarningCount != 2 {
		t.Errorf("WarningCount = %d, want 2", result.WarningCount)
	}
	if got := findings(result, "total_cfi"); len(got) != 1 || got[0].Severity != SeverityWarning {
		t.Errorf("unused key findings = %v", got)
	}
}

func TestValidateExtraction(t *testing.T) {
	ext := &xlsxparser.Extraction{
		Header:        types.Record{"Exporter_code": "X1", "Favourite colour": "blue"},
		HeaderColumns: []string{"Exporter_code", "Favourite colour"},
		Items: []types.Record{
			{"Commodity_code": "1", asycuda.InvoiceForeignColumn: "10.5"},
			{"Commodity_code": "2", asycuda.InvoiceForeignColumn: "ten"},
			{"Commodity_code": "3", asycuda.InvoiceForeignColumn: "nan"},
		},
		ItemColumns: []string{"Commodity_code", asycuda.InvoiceForeignColumn},
		Warnings: []*xlsxparser.SheetReadError{
			{Sheet: xlsxparser.ItemsSheet, Err: xlsxparser.ErrSheetNotFound},
		},
	}

	result := ValidateExtraction(ext)
	if !result.IsValid {
		t.Errorf("extraction findings are warnings only")
	}
	if result.WarningCount != 3 {
		t.Errorf("WarningCount = %d, want 3\n%s", result.WarningCount, FormatErrors(result.Errors))
	}
	if got := findings(result, "Favourite colour"); len(got) != 1 {
		t.Errorf("unused column findings = %v", got)
	}
	invoice := findings(result, asycuda.InvoiceForeignColumn)
	if len(invoice) != 1 || invoice[0].Scope != "Items row 2" || invoice[0].Value != "ten" {
		t.Errorf("invoice findings = %v", invoice)
	}
}

func TestValidateExtractionMissingInvoiceColumn(t *testing.T) {
	ext := &xlsxparser.Extraction{
		Header:      types.Record{},
		Items:       []types.Record{{"Commodity_code": "1"}},
		ItemColumns: []string{"Commodity_code"},
	}
	result := ValidateExtraction(ext)
	got := findings(result, asycuda.InvoiceForeignColumn)
	if len(got) != 1 || !strings.Contains(got[0].Message, "total will be 0") {
		t.Errorf("findings = %v", got)
	}
}

func TestValidateExtractionNil(t *testing.T) {
	if result := ValidateExtraction(nil); !result.IsValid || len(result.Errors) != 0 {
		t.Errorf("nil extraction = %+v", result)
	}
}

func TestFormatErrors(t *testing.T) {
	if got := FormatErrors(nil); got != "No validation errors." {
		t.Errorf("FormatErrors(nil) = %q", got)
	}

	out := FormatErrors([]*ValidationError{
		{Severity: SeverityError, Scope: "constants", Field: "total_cif", Message: "required constant is missing"},
		{Severity: SeverityWarning, Scope: "SAD", Field: "x", Value: "y", Message: "column is not used"},
	})
	for _, want := range []string{
		"2 finding(s)",
		"1. [ERROR] constants, Field 'total_cif': required constant is missing",
		"2. [WARNING] SAD, Field 'x': column is not used (value: 'y')",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
