// =============================================================================
// ASYCUDA Converter - Document Layout
// =============================================================================
//
// The fixed shape of the ASYCUDA document, written as data. Tag names, order
// and nesting are the wire contract of the customs system and must not vary
// with input; only leaf values and the number of Item subtrees do.
//
//   <ASYCUDA>
//     <SAD>      declarationLayout, mapped from the SAD header record
//     <Items>
//       <Item>   itemLayout, mapped once per Items row
//
// Each leaf carries its Source (see source.go).
//
// =============================================================================

package asycuda

// Node is one element of the layout. Leaves have a Source; containers have
// Children.
type Node struct {
	Tag      string
	Source   *Source
	Children []Node
}

// IsLeaf reports whether the node carries a value.
func (n Node) IsLeaf() bool { return n.Source != nil }

func leaf(tag string, src Source) Node {
	return Node{Tag: tag, Source: &src}
}

func group(tag string, children ...Node) Node {
	return Node{Tag: tag, Children: children}
}

// Element names shared by the mapper and its callers.
const (
	RootTag  = "ASYCUDA"
	SADTag   = "SAD"
	ItemsTag = "Items"
	ItemTag  = "Item"
)

// Column read from every item for its own invoice amount and for the
// declaration-level total.
const InvoiceForeignColumn = "Invoice Amount_foreign_currency"

const (
	currencyCode      = "USD"
	noForeignCurrency = "Geen vreemde valuta"
)

// currencyBlock is the five-leaf shape shared by every valuation sub-block.
func currencyBlock(tag string, national, foreign, code, rate Source) Node {
	return group(tag,
		leaf("Amount_national_currency", national),
		leaf("Amount_foreign_currency", foreign),
		leaf("Currency_code", code),
		leaf("Currency_name", Lit(noForeignCurrency)),
		leaf("Currency_rate", rate),
	)
}

// =============================================================================
// DECLARATION (SAD) LAYOUT
// =============================================================================

var declarationLayout = group(SADTag,
	group("Assessment_notice",
		leaf("Total_item_taxes", Const("total_item_taxes")),
		group("Items_taxes",
			group("Item_tax",
				leaf("Tax_code", Row("Tax_code", "IR")),
				leaf("Tax_description", Row("Tax_description", "Invoerrechten")),
				leaf("Tax_amount", Const("total_item_taxes")),
				leaf("Tax_mop", Row("Tax_mop", "1")),
			),
		),
	),
	group("Properties",
		leaf("Sad_flow", Row("Sad_flow", "I")),
		group("Forms",
			leaf("Number_of_the_form", Row("Number_of_the_form", "1")),
			leaf("Total_number_of_forms", Const("total_forms")),
		),
		leaf("Selected_page", Row("Selected_page", "1")),
	),
	group("Identification",
		leaf("Manifest_reference_number", Const("manifest_reference")),
		group("Office_segment",
			leaf("Customs_clearance_office_code", Row("Customs_clearance_office_code", "LV01")),
			leaf("Customs_clearance_office_name", Row("Customs_clearance_office_name", "Luchthaven Vracht")),
		),
		group("Type",
			leaf("Type_of_declaration", Row("Type_of_declaration", "INV")),
			leaf("General_procedure_code", Row("General_procedure_code", "4")),
		),
	),
	group("Traders",
		group("Exporter",
			leaf("Exporter_code", Row("Exporter_code", "")),
			leaf("Exporter_name", Row("Exporter_name", "")),
		),
		group("Consignee",
			leaf("Consignee_code", Row("Consignee_code", "10026483")),
			leaf("Consignee_name", Row("Consignee_name", "Dhr. Anthony Martina Paradera 1-H Paradera Paradera Aruba")),
		),
		group("Financial",
			leaf("Financial_code", Row("Financial_code", "")),
			leaf("Financial_name", Row("Financial_name", "")),
		),
	),
	group("Declarant",
		leaf("Declarant_code", Row("Declarant_code", "1160650")),
		leaf("Declarant_name", Row("Declarant_name", "Dhr. Victor Hoek Alto Vista 133 Alto Vista Noord/Tanki Leendert Aruba")),
		leaf("Declarant_representative", Row("Declarant_representative", "Lizandra I. Geerman")),
		group("Reference",
			leaf("Year", Row("Reference Year", "2025")),
			leaf("Number", Row("Reference Number", "")),
		),
	),
	group("General_information",
		group("Country",
			leaf("Country_first_destination", Row("Country_first_destination", "US")),
			leaf("Trading_country", Row("Trading_country", "US")),
			leaf("Country_of_origin_name", Row("Country_of_origin_name", "Verenigde Staten")),
			group("Export",
				leaf("Export_country_code", Row("Export_country_code", "US")),
				leaf("Export_country_name", Row("Export_country_name", "Verenigde Staten")),
				leaf("Export_country_region", Row("Export_country_region", "")),
			),
			group("Destination",
				leaf("Destination_country_code", Row("Destination_country_code", "AW")),
				leaf("Destination_country_name", Row("Destination_country_name", "Aruba")),
				leaf("Destination_country_region", Row("Destination_country_region", "")),
			),
		),
		leaf("Value_details", Const("total_cost")),
		leaf("CAP", Row("CAP", "")),
	),
	group("Transport",
		leaf("Container_flag", Const("container_flag")),
		leaf("Location_of_goods", Row("Location_of_goods", "RT-01")),
		leaf("Location_of_goods_address", Row("Location_of_goods_address", "Sabana Berde #75")),
		group("Means_of_transport",
			group("Departure_arrival_information",
				leaf("Identity", Row("Departure_arrival_information Identity", "COPA AIRLINES")),
				leaf("Nationality", Row("Departure_arrival_information Nationality", "PA")),
			),
			group("Border_information",
				leaf("Identity", Row("Border_information Identity", "")),
				leaf("Nationality", Row("Border_information Nationality", "")),
				leaf("Mode", Row("Border_information Mode", "4")),
			),
		),
		group("Delivery_terms",
			leaf("Code", Const("delivery_terms_code")),
			leaf("Place", Row("Delivery_terms Place", "USA")),
		),
		group("Border_office",
			leaf("Code", Row("Border_office Code", "LV01")),
			leaf("Name", Row("Border_office Name", "Luchthaven Vracht")),
		),
		group("Place_of_loading",
			leaf("Code", Row("Place_of_loading Code", "AWAIR")),
			leaf("Name", Row("Place_of_loading Name", "Aeropuerto Reina Beatrix")),
		),
	),
	group("Financial",
		leaf("Deffered_payment_reference", Row("Deffered_payment_reference", "")),
		leaf("Mode_of_payment", Row("Mode_of_payment", "CONTANT")),
		group("Financial_transaction",
			leaf("Code_1", Row("Financial_transaction Code_1", "1")),
			// Code_2 mirrors the Code_1 column in the declarations this
			// format was built from.
			leaf("Code_2", Row("Financial_transaction Code_1", "1")),
		),
		group("Bank",
			leaf("Branch", Row("Bank Branch", "")),
			leaf("Reference", Row("Bank Reference", "")),
		),
		group("Terms",
			leaf("Code", Row("Terms Code", "")),
			leaf("Description", Row("Terms Description", "")),
		),
		group("Amounts",
			leaf("Global_taxes", Row("Amounts Global_taxes", "0")),
			leaf("Totals_taxes", Const("total_item_taxes")),
		),
		group("Guarantee",
			leaf("Amount", Row("Guarantee Amount", "0")),
		),
	),
	group("Transit",
		leaf("Result_of_control", Row("Result_of_control", "")),
	),
	group("Valuation",
		leaf("Calculation_working_mode", Const("calculation_working_mode")),
		leaf("Total_cost", Const("total_cost")),
		leaf("Total_cif", Const("total_cif")),
		currencyBlock("Invoice", Lit("3591.89"), Derived(DerivedInvoiceForeignTotal), Lit(currencyCode), Const("currency_rate")),
		currencyBlock("External_freight", Lit("509.24"), Lit("17.27"), Lit(currencyCode), Const("currency_rate")),
		currencyBlock("Internal_freight", Lit("0"), Lit("0"), Lit(""), Lit("0")),
		currencyBlock("Insurance", Lit("62.26"), Lit("1.00875"), Lit(currencyCode), Const("currency_rate")),
		currencyBlock("Other_cost", Lit("49.6"), Lit(""), Lit(currencyCode), Const("currency_rate")),
		currencyBlock("Deduction", Lit("0"), Lit("0"), Lit(currencyCode), Const("currency_rate")),
		group("Total",
			leaf("Total_invoice", Const("total_invoice")),
			// Carries the item row count, not a weight.
			leaf("Total_weight", Derived(DerivedItemCount)),
		),
	),
)

// =============================================================================
// ITEM LAYOUT
// =============================================================================

var itemLayout = group(ItemTag,
	group("Packages",
		leaf("Number_of_packages", Row("Number_of_packages", "")),
		leaf("Marks1_of_packages", Row("Marks1_of_packages", "")),
		leaf("Marks2_of_packages", Row("Marks2_of_packages", "")),
		leaf("Kind_of_packages_code", Row("Kind_of_packages_code", "STKS")),
		leaf("Kind_of_packages_name", Row("Kind_of_packages_name", "Stuks")),
	),
	group("Tariff",
		leaf("Extended_customs_procedure", Row("Extended_customs_procedure", "4000")),
		leaf("National_customs_procedure", Row("National_customs_procedure", "00:00:00")),
		leaf("Preference_code", Row("Preference_code", "")),
		group("Harmonized_system",
			leaf("Commodity_code", Row("Commodity_code", "")),
			leaf("Precision_4", Row("Precision_4", "")),
		),
		// Slot 1 has no rank but a code; slots 2 and 3 have a rank and no
		// code. The customs schema expects exactly this asymmetry.
		group("Supplementary_unit",
			leaf("Supplementary_unit_rank", Lit("")),
			leaf("Supplementary_unit_code", Row("Supplementary_unit_code", "PCE").Emit()),
			leaf("Supplementary_unit_name", Row("Supplementary_unit_name_1", "Aantal Stucks").Emit()),
			leaf("Supplementary_unit_quantity", Row("Supplementary_unit_quantity_1", "")),
		),
		group("Supplementary_unit",
			leaf("Supplementary_unit_rank", Lit("2")),
			leaf("Supplementary_unit_name", Row("Supplementary_unit_name_2", "")),
			leaf("Supplementary_unit_quantity", Row("Supplementary_unit_quantity_2", "")),
		),
		group("Supplementary_unit",
			leaf("Supplementary_unit_rank", Lit("3")),
			leaf("Supplementary_unit_name", Row("Supplementary_unit_name_3", "")),
			leaf("Supplementary_unit_quantity", Row("Supplementary_unit_quantity_3", "")),
		),
		group("Quota",
			leaf("Quota_code", Row("Quota_code", "")),
		),
	),
	group("Goods_description",
		leaf("Country_of_origin_code", Row("Country_of_origin_code", "US")),
		leaf("Description_of_goods", Row("Description_of_goods", "")),
		leaf("Commercial_description", Row("Commercial_description", "")),
	),
	group("Valuation_item",
		leaf("Rate_of_adjustment", Lit("1")),
		leaf("Total_cost_itm", Lit("")),
		leaf("Total_cif_itm", Const("total_cif_itm")),
		leaf("Statistical_value", Const("statistical_value")),
		leaf("Alpha_coeficient_of_apportionment", Const("alpha_coefficient")),
		group("Weight",
			leaf("Gross_weight_itm", Row("Gross_weight_itm", "0.5")),
			leaf("Net_weight_itm", Row("Net_weight_itm", "0.5")),
		),
		currencyBlock("Invoice", Lit(""), Row(InvoiceForeignColumn, ""), Lit(currencyCode), Const("currency_rate")),
		// Freight, insurance and other cost repeat the shipment values on
		// every item; they are not apportioned.
		currencyBlock("External_freight", Const("external_freight_national"), Const("external_freight_foreign"), Lit(currencyCode), Const("currency_rate")),
		currencyBlock("Internal_freight", Lit("0"), Lit(""), Lit(""), Lit("0")),
		currencyBlock("Insurance", Const("insurance_national"), Const("insurance_foreign"), Lit(currencyCode), Const("currency_rate")),
		currencyBlock("Other_cost", Const("other_cost_national"), Const("other_cost_foreign"), Lit(currencyCode), Const("currency_rate")),
		currencyBlock("Deduction", Lit("0"), Lit("0"), Lit(currencyCode), Const("currency_rate")),
	),
	group("Previous_document",
		leaf("Summary_declaration", Row("Summary_declaration", "")),
		leaf("Summary_declaration_sl", Row("Summary_declaration_sl", "1")),
	),
	group("Taxation",
		leaf("Item_taxes_amount", Const("duty_tax_amount")),
		leaf("Item_taxes_mode_of_payment", Lit("1")),
		group("Taxation_line",
			leaf("Duty_tax_code", Lit("IR")),
			leaf("Duty_tax_base", Const("duty_tax_base")),
			leaf("Duty_tax_rate", Const("duty_tax_rate")),
			leaf("Duty_tax_amount", Const("duty_tax_amount")),
			leaf("Duty_tax_MP", Lit("1")),
		),
	),
)

// ConstantKeys returns every constant key referenced by the layouts, in
// first-use order.
func ConstantKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	collect := func(n Node) {
		walkLeaves(n, "", func(_ string, src Source) {
			if src.Kind == FromConstant && !seen[src.Key] {
				seen[src.Key] = true
				keys = append(keys, src.Key)
			}
		})
	}
	collect(declarationLayout)
	collect(itemLayout)
	return keys
}

// HeaderColumns returns the SAD sheet columns read by the declaration
// layout, in first-use order.
func HeaderColumns() []string { return rowColumns(declarationLayout) }

// ItemColumns returns the Items sheet columns read by the item layout, in
// first-use order.
func ItemColumns() []string { return rowColumns(itemLayout) }

func rowColumns(layout Node) []string {
	seen := make(map[string]bool)
	var cols []string
	walkLeaves(layout, "", func(_ string, src Source) {
		if src.Kind == FromRow && !seen[src.Column] {
			seen[src.Column] = true
			cols = append(cols, src.Column)
		}
	})
	return cols
}
