package config

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/ginjaninja78/asycuda-converter/internal/validation"
	"gopkg.in/yaml.v3"
)

// DefaultShipmentConstants returns the built-in constant table for
// consignment LV02 2025 6241. The returned table is a fresh copy.
func DefaultShipmentConstants() types.ConstantTable {
	return types.ConstantTable{
		"total_invoice":             "2006.64",
		"total_cif":                 "4212.99",
		"total_cost":                "621.1",
		"external_freight_foreign":  "4.78",
		"external_freight_national": "8.56",
		"insurance_foreign":         "0.58",
		"insurance_national":        "1.04",
		"other_cost_foreign":        "0.47",
		"other_cost_national":       "0.84",
		"total_cif_itm":             "70.8",
		"statistical_value":         "71",
		"alpha_coefficient":         "0.0168042100227245",
		"duty_tax_base":             "71",
		"duty_tax_rate":             "6",
		"duty_tax_amount":           "4.3",
		"total_item_taxes":          "347.75",
		"calculation_working_mode":  "0",
		"container_flag":            "False",
		"delivery_terms_code":       "DDP",
		"currency_rate":             "1.79",
		"manifest_reference":        "LV02 2025 6241",
		"total_forms":               "16",
	}
}

// RequiredConstantKeys lists every constant the document layout reads.
func RequiredConstantKeys() []string {
	return asycuda.ConstantKeys()
}

// LoadConstants loads a shipment constant table.
//
// PARAMETERS:
//   - path: a YAML file holding a flat key/value map. Scalars are kept as
//     written, so "0.0168042100227245" is not rounded through float64.
//     An empty path returns DefaultShipmentConstants().
//
// RETURNS:
//   - The validated table.
//   - An error if the file cannot be read or parsed, or fails validation.
func LoadConstants(path string) (types.ConstantTable, error) {
	if path == "" {
		return DefaultShipmentConstants(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read constants file: %w", err)
	}
	return ParseConstants(data)
}

// ParseConstants parses and validates a YAML constant table.
func ParseConstants(data []byte) (types.ConstantTable, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse constants file: %w", err)
	}

	table := make(types.ConstantTable, len(raw))
	for k, v := range raw {
		table[k] = v
	}

	result := validation.ValidateConstants(table, RequiredConstantKeys())
	if !result.IsValid {
		return nil, fmt.Errorf("invalid shipment constants:\n%s", validation.FormatErrors(result.Errors))
	}
	return table, nil
}
