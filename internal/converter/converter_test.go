package converter

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/config"
	"github.com/ginjaninja78/asycuda-converter/internal/logging"
	"github.com/ginjaninja78/asycuda-converter/internal/testutil"
	"github.com/ginjaninja78/asycuda-converter/internal/xlsxparser"
	"github.com/ginjaninja78/asycuda-converter/internal/xmlwriter"
)

var update = flag.Bool("update", false, "rewrite testdata golden files")

func newTestConverter() *Converter {
	return New(config.DefaultShipmentConstants(), logging.Discard())
}

func declarationWorkbook(t *testing.T) []byte {
	t.Helper()
	data, err := testutil.Declaration(
		[]string{"Exporter_code", "Reference Number"},
		[]string{"X123", "77"},
		[]string{"Commodity_code", asycuda.InvoiceForeignColumn},
		[]string{"85171200", "10.5"},
		[]string{"84713000", "4.5"},
	)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	return data
}

func TestConvertSuccess(t *testing.T) {
	res := newTestConverter().Convert(context.Background(), "shipment.xlsx", declarationWorkbook(t))
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Error)
	}
	if res.OutputName != "shipment.xml" {
		t.Errorf("OutputName = %q, want shipment.xml", res.OutputName)
	}
	if res.Stats.ItemsMapped != 2 {
		t.Errorf("ItemsMapped = %d, want 2", res.Stats.ItemsMapped)
	}

	out := string(res.Output)
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"<Exporter_code>X123</Exporter_code>",
		"<Total_weight>2</Total_weight>",
		"<Manifest_reference_number>LV02 2025 6241</Manifest_reference_number>",
		"<Commodity_code>85171200</Commodity_code>",
		"<Amount_foreign_currency>15.0</Amount_foreign_currency>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if n := strings.Count(out, "<Item>"); n != 2 {
		t.Errorf("Item elements = %d, want 2", n)
	}
}

// TestConvertGolden pins the whole document: tag names, order, nesting and
// which leaves are omitted.
func TestConvertGolden(t *testing.T) {
	res := newTestConverter().Convert(context.Background(), "shipment.xlsx", declarationWorkbook(t))
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Error)
	}

	golden := filepath.Join("testdata", "shipment.golden.xml")
	if *update {
		if err := os.WriteFile(golden, res.Output, 0644); err != nil {
			t.Fatal(err)
		}
	}
	want, err := os.ReadFile(golden)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if !bytes.Equal(res.Output, want) {
		t.Errorf("document differs from %s\n got:\n%s", golden, res.Output)
	}
}

func TestConvertFormattedInvoiceAmounts(t *testing.T) {
	data, err := testutil.Declaration(
		[]string{"Exporter_code"}, []string{"X123"},
		[]string{"Commodity_code", asycuda.InvoiceForeignColumn},
		[]string{"85171200"},
		[]string{"84713000"},
	)
	if err != nil {
		t.Fatal(err)
	}
	// Shown as "1,234.50" and "10.50".
	data, err = testutil.FormattedNumbers(data, "Items", 4, map[string]float64{
		"B2": 1234.5,
		"B3": 10.5,
	})
	if err != nil {
		t.Fatal(err)
	}

	res := newTestConverter().Convert(context.Background(), "formatted.xlsx", data)
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Error)
	}
	out := string(res.Output)
	for _, want := range []string{
		"<Amount_foreign_currency>1245.0</Amount_foreign_currency>",
		"<Amount_foreign_currency>1234.5</Amount_foreign_currency>",
		"<Amount_foreign_currency>10.5</Amount_foreign_currency>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if strings.Contains(out, "1,234.50") {
		t.Error("display text written instead of the cell value")
	}
}

func TestConvertDeterministic(t *testing.T) {
	c := newTestConverter()
	data := declarationWorkbook(t)
	a := c.Convert(context.Background(), "a.xlsx", data)
	b := c.Convert(context.Background(), "a.xlsx", data)
	if !bytes.Equal(a.Output, b.Output) {
		t.Error("same workbook converted to different documents")
	}
}

func TestConvertUnsupportedFile(t *testing.T) {
	res := newTestConverter().Convert(context.Background(), "notes.txt", []byte("hello"))
	if res.Success {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Error, ErrUnsupportedFile) {
		t.Errorf("err = %v, want ErrUnsupportedFile", res.Error)
	}
	if res.OutputName != "notes.txt_ERROR.txt" {
		t.Errorf("OutputName = %q", res.OutputName)
	}
	if !strings.HasPrefix(string(res.Output), "Conversion failed: notes.txt | Error: ") {
		t.Errorf("report = %q", res.Output)
	}
}

func TestConvertEmptyWorkbook(t *testing.T) {
	data, err := testutil.Workbook(testutil.Sheet{Name: "Other", Rows: [][]string{{"a"}, {"b"}}})
	if err != nil {
		t.Fatal(err)
	}
	res := newTestConverter().Convert(context.Background(), "empty.xlsx", data)
	if res.Success {
		t.Fatal("expected failure")
	}
	if got := Classify(res.Error); got != CodeEmptyInput {
		t.Errorf("Classify = %q, want %q", got, CodeEmptyInput)
	}
	if res.OutputName != "empty.xlsx_ERROR.txt" {
		t.Errorf("OutputName = %q", res.OutputName)
	}
}

func TestConvertItemsOnly(t *testing.T) {
	data, err := testutil.Declaration(nil, nil, []string{"Commodity_code"}, []string{"85171200"})
	if err != nil {
		t.Fatal(err)
	}
	res := newTestConverter().Convert(context.Background(), "items.xlsm", data)
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Error)
	}
	if res.Stats.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", res.Stats.Warnings)
	}
	// Defaults stand in for the missing header.
	if !bytes.Contains(res.Output, []byte("<Sad_flow>I</Sad_flow>")) {
		t.Errorf("default Sad_flow not written")
	}
}

func TestConvertMissingConstant(t *testing.T) {
	constants := config.DefaultShipmentConstants()
	delete(constants, "currency_rate")
	c := New(constants, logging.Discard())

	res := c.Convert(context.Background(), "a.xlsx", declarationWorkbook(t))
	if res.Success {
		t.Fatal("expected failure")
	}
	if got := Classify(res.Error); got != CodeMapping {
		t.Errorf("Classify = %q, want %q", got, CodeMapping)
	}
	if !errors.Is(res.Error, asycuda.ErrMissingConstant) {
		t.Errorf("err = %v, want ErrMissingConstant", res.Error)
	}
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newTestConverter().Convert(ctx, "a.xlsx", declarationWorkbook(t))
	if res.Success {
		t.Fatal("expected failure")
	}
	if got := Classify(res.Error); got != CodeCancelled {
		t.Errorf("Classify = %q, want %q", got, CodeCancelled)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decl.xlsx")
	if err := os.WriteFile(path, declarationWorkbook(t), 0644); err != nil {
		t.Fatal(err)
	}

	res := newTestConverter().ConvertFile(context.Background(), path)
	if !res.Success {
		t.Fatalf("conversion failed: %v", res.Error)
	}
	if res.FileName != "decl.xlsx" {
		t.Errorf("FileName = %q", res.FileName)
	}

	res = newTestConverter().ConvertFile(context.Background(), filepath.Join(dir, "missing.xlsx"))
	if res.Success || res.OutputName != "missing.xlsx_ERROR.txt" {
		t.Errorf("missing file: success=%v output=%q", res.Success, res.OutputName)
	}
	if got := Classify(res.Error); got != CodeRead {
		t.Errorf("Classify = %q, want %q", got, CodeRead)
	}
}

func TestOutputNames(t *testing.T) {
	tests := []struct {
		in, xml, report string
	}{
		{"a.xlsx", "a.xml", "a.xlsx_ERROR.txt"},
		{"dir/b.XLSM", "b.xml", "b.XLSM_ERROR.txt"},
		{"c.v2.xls", "c.v2.xml", "c.v2.xls_ERROR.txt"},
		{"noext", "noext.xml", "noext_ERROR.txt"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.in); got != tt.xml {
			t.Errorf("OutputName(%q) = %q, want %q", tt.in, got, tt.xml)
		}
		if got := ErrorReportName(tt.in); got != tt.report {
			t.Errorf("ErrorReportName(%q) = %q, want %q", tt.in, got, tt.report)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{errors.New("boom"), CodeUnknown},
		{context.DeadlineExceeded, CodeCancelled},
		{fmt.Errorf("wrapped: %w", ErrUnsupportedFile), CodeUnsupported},
		{&xlsxparser.EmptyInputError{}, CodeEmptyInput},
		{&asycuda.MappingError{Err: asycuda.ErrMissingConstant}, CodeMapping},
		{&xmlwriter.SerializationError{Err: errors.New("x")}, CodeSerialization},
		{fmt.Errorf("failed to read file: %w", &fs.PathError{Op: "open", Path: "a.xlsx", Err: fs.ErrNotExist}), CodeRead},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
