// =============================================================================
// ASYCUDA Converter - Field Sources
// =============================================================================
//
// Every leaf of the ASYCUDA document takes its value from exactly one source:
//
//   | Kind     | Value                                                 |
//   |----------|-------------------------------------------------------|
//   | row      | a column of the current record, else a literal default|
//   | constant | a key of the shipment constant table, no fallback     |
//   | literal  | a fixed string                                        |
//   | derived  | a value computed once per document (totals, counts)   |
//
// Sources are plain data so the layout tables in layout.go stay declarative
// and every field can be audited and tested on its own.
//
// =============================================================================

package asycuda

import (
	"fmt"

	"github.com/ginjaninja78/asycuda-converter/internal/types"
)

// SourceKind identifies where a leaf value comes from.
type SourceKind int

const (
	// FromRow reads a column of the record being mapped.
	FromRow SourceKind = iota

	// FromConstant reads the shipment constant table.
	FromConstant

	// FromLiteral uses a fixed value.
	FromLiteral

	// FromDerived uses a value computed from all item records.
	FromDerived
)

func (k SourceKind) String() string {
	switch k {
	case FromRow:
		return "row"
	case FromConstant:
		return "constant"
	case FromLiteral:
		return "literal"
	case FromDerived:
		return "derived"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// Derived value names.
const (
	// DerivedInvoiceForeignTotal is the sum of every item's foreign invoice
	// amount.
	DerivedInvoiceForeignTotal = "invoice_foreign_total"

	// DerivedItemCount is the number of item records.
	DerivedItemCount = "item_count"
)

// Source describes how one leaf is resolved.
type Source struct {
	Kind SourceKind

	// Column is the record column read by FromRow.
	Column string

	// Value is the FromRow fallback or the FromLiteral value.
	Value string

	// Key names the constant (FromConstant) or derived value (FromDerived).
	Key string

	// Always writes the leaf even when it resolves to an absent value.
	Always bool
}

// Row reads column from the record, falling back to def when the column is
// missing or holds an absent value.
func Row(column, def string) Source {
	return Source{Kind: FromRow, Column: column, Value: def}
}

// Const reads key from the shipment constant table.
func Const(key string) Source {
	return Source{Kind: FromConstant, Key: key}
}

// Lit always yields value.
func Lit(value string) Source {
	return Source{Kind: FromLiteral, Value: value}
}

// Derived yields a per-document computed value.
func Derived(name string) Source {
	return Source{Kind: FromDerived, Key: name}
}

// Emit marks the source as always written.
func (s Source) Emit() Source {
	s.Always = true
	return s
}

// scope carries everything a source may read while one record is mapped.
type scope struct {
	record    types.Record
	constants types.ConstantTable
	derived   map[string]string
}

// resolve returns the value of s within sc.
func (s Source) resolve(sc scope) (string, error) {
	switch s.Kind {
	case FromRow:
		if v := sc.record.Value(s.Column); v != "" {
			return v, nil
		}
		return s.Value, nil

	case FromConstant:
		v, ok := sc.constants.Lookup(s.Key)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingConstant, s.Key)
		}
		return v, nil

	case FromLiteral:
		return s.Value, nil

	case FromDerived:
		v, ok := sc.derived[s.Key]
		if !ok {
			return "", fmt.Errorf("unknown derived value %q", s.Key)
		}
		return v, nil
	}
	return "", fmt.Errorf("unknown source kind %v", s.Kind)
}
