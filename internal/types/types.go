// =============================================================================
// ASYCUDA Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser (produces Records)
//   - asycuda    (consumes Records and a ConstantTable, produces Elements)
//   - xmlwriter  (renders Elements)
//   - config     (loads the ConstantTable)
//
// =============================================================================

package types

import (
	"sort"
	"strings"
)

// =============================================================================
// RECORDS
// =============================================================================

// Record is one spreadsheet row keyed by column header.
// Missing or blank cells are stored as the empty string.
type Record map[string]string

// Value returns the trimmed cell value for a column.
// Cells holding the placeholders "nan" or "None" read as empty, the same way
// a missing column does.
func (r Record) Value(column string) string {
	v, ok := r[column]
	if !ok {
		return ""
	}
	v = strings.TrimSpace(v)
	if IsAbsent(v) {
		return ""
	}
	return v
}

// IsAbsent reports whether a resolved value counts as "no value".
// Absent leaves are not written to the output document.
func IsAbsent(v string) bool {
	switch v {
	case "", "nan", "None":
		return true
	}
	return false
}

// =============================================================================
// SHIPMENT CONSTANTS
// =============================================================================

// ConstantTable holds the values fixed for one consignment: invoice and CIF
// totals, freight/insurance/other-cost splits, duty base/rate/amount,
// currency rate, manifest reference and form count.
//
// A table is read-only once loaded and is shared by every conversion in a
// batch.
type ConstantTable map[string]string

// Lookup returns the value stored under key.
func (c ConstantTable) Lookup(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Clone returns an independent copy of the table.
func (c ConstantTable) Clone() ConstantTable {
	out := make(ConstantTable, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Keys returns the table keys in sorted order.
func (c ConstantTable) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// DOCUMENT TREE
// =============================================================================

// Element is one node of the output document.
//
// Leaf elements carry Text; container elements carry Children. A leaf whose
// Text is absent (see IsAbsent) is dropped by the serializer unless Always is
// set, in which case it is written as an empty element.
type Element struct {
	// Tag is the XML element name.
	Tag string

	// Text is the resolved value of a leaf.
	Text string

	// Leaf marks value-bearing elements.
	Leaf bool

	// Always forces a leaf to be written even when its value is absent.
	Always bool

	// Children holds the ordered child elements of a container.
	// Sibling tags may repeat.
	Children []*Element
}

// NewContainer creates a container element.
func NewContainer(tag string, children ...*Element) *Element {
	return &Element{Tag: tag, Children: children}
}

// NewLeaf creates a leaf element holding text.
func NewLeaf(tag, text string) *Element {
	return &Element{Tag: tag, Text: text, Leaf: true}
}

// Append adds children to a container and returns it.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Child returns the first direct child with the given tag, or nil.
func (e *Element) Child(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns every direct child with the given tag, in order.
func (e *Element) ChildrenByTag(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Find walks a slash separated path of tags starting below e and returns the
// first match, e.g. "Valuation/Total/Total_weight".
func (e *Element) Find(path string) *Element {
	cur := e
	for _, tag := range strings.Split(path, "/") {
		if cur = cur.Child(tag); cur == nil {
			return nil
		}
	}
	return cur
}

// Emitted reports whether the serializer writes this element.
func (e *Element) Emitted() bool {
	if !e.Leaf {
		return true
	}
	return e.Always || !IsAbsent(e.Text)
}
