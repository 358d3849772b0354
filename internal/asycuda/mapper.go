// =============================================================================
// ASYCUDA Converter - Field Mapper
// =============================================================================
//
// The mapper turns extracted records into the ASYCUDA document in two steps:
//
//   1. Resolve: every layout leaf is given a value from its Source. The
//      result is a flat Values map per block, keyed by leaf path, e.g.
//      "Traders/Exporter/Exporter_code". Repeated sibling tags get a 1-based
//      index: "Tariff/Supplementary_unit[2]/Supplementary_unit_rank".
//   2. Render: the layout is walked again and the resolved values are placed
//      into a types.Element tree.
//
// Mapping is a pure function of (header, items, constants): the same inputs
// always produce the same tree.
//
// =============================================================================

package asycuda

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/asycuda-converter/internal/types"
	"github.com/shopspring/decimal"
)

// Values holds resolved leaf values keyed by leaf path.
type Values map[string]string

// Resolution is the resolved content of one document.
type Resolution struct {
	// Declaration holds the SAD block values.
	Declaration Values

	// Items holds one Values map per item record, in input order.
	Items []Values
}

// Mapper builds ASYCUDA documents against one shipment constant table.
// A Mapper is safe for concurrent use; it never mutates its table.
type Mapper struct {
	constants types.ConstantTable
}

// NewMapper creates a mapper for the given constant table. The mapper keeps
// its own copy, so later changes to constants do not reach it.
func NewMapper(constants types.ConstantTable) *Mapper {
	return &Mapper{constants: constants.Clone()}
}

// Map resolves and renders one document.
func Map(header types.Record, items []types.Record, constants types.ConstantTable) (*types.Element, error) {
	return NewMapper(constants).Map(header, items)
}

// Map resolves and renders one document.
//
// PARAMETERS:
//   - header: the SAD record (may be empty)
//   - items: the Items records in sheet order (may be empty)
//
// RETURNS:
//   - The ASYCUDA root element
//   - A *MappingError if any leaf could not be resolved
func (m *Mapper) Map(header types.Record, items []types.Record) (*types.Element, error) {
	res, err := m.Resolve(header, items)
	if err != nil {
		return nil, err
	}
	return Render(res), nil
}

// Resolve computes every leaf value of the document.
func (m *Mapper) Resolve(header types.Record, items []types.Record) (res *Resolution, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &MappingError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if header == nil {
		header = types.Record{}
	}
	derived := map[string]string{
		DerivedInvoiceForeignTotal: invoiceForeignTotal(items),
		DerivedItemCount:           strconv.Itoa(len(items)),
	}

	decl, lerr := resolveBlock(declarationLayout, scope{record: header, constants: m.constants, derived: derived})
	if lerr != nil {
		return nil, &MappingError{Path: lerr.path, Err: lerr.err}
	}

	res = &Resolution{Declaration: decl, Items: make([]Values, 0, len(items))}
	for i, item := range items {
		vals, lerr := resolveBlock(itemLayout, scope{record: item, constants: m.constants, derived: derived})
		if lerr != nil {
			return nil, &MappingError{Item: i + 1, Path: lerr.path, Err: lerr.err}
		}
		res.Items = append(res.Items, vals)
	}
	return res, nil
}

// Render builds the element tree for a resolution. Every layout node is
// present in the tree; the serializer decides which leaves are written.
func Render(res *Resolution) *types.Element {
	items := types.NewContainer(ItemsTag)
	for _, vals := range res.Items {
		items.Append(renderNode(itemLayout, "", vals))
	}
	return types.NewContainer(RootTag,
		renderNode(declarationLayout, "", res.Declaration),
		items,
	)
}

// Skeleton returns the document tree with one empty Item and no values. It is
// used to derive the XML schema.
func Skeleton() *types.Element {
	return types.NewContainer(RootTag,
		renderNode(declarationLayout, "", Values{}),
		types.NewContainer(ItemsTag, renderNode(itemLayout, "", Values{})),
	)
}

// =============================================================================
// LAYOUT TRAVERSAL
// =============================================================================

type leafError struct {
	path string
	err  error
}

func resolveBlock(layout Node, sc scope) (Values, *leafError) {
	vals := make(Values)
	var failed *leafError
	walkLeaves(layout, "", func(path string, src Source) {
		if failed != nil {
			return
		}
		v, err := src.resolve(sc)
		if err != nil {
			failed = &leafError{path: path, err: err}
			return
		}
		vals[path] = v
	})
	return vals, failed
}

// walkLeaves calls fn for every leaf below n with its path relative to n.
func walkLeaves(n Node, prefix string, fn func(path string, src Source)) {
	for i, child := range n.Children {
		path := joinPath(prefix, childSegment(n.Children, i))
		if child.IsLeaf() {
			fn(path, *child.Source)
			continue
		}
		walkLeaves(child, path, fn)
	}
}

func renderNode(n Node, prefix string, vals Values) *types.Element {
	el := types.NewContainer(n.Tag)
	for i, child := range n.Children {
		path := joinPath(prefix, childSegment(n.Children, i))
		if child.IsLeaf() {
			leaf := types.NewLeaf(child.Tag, vals[path])
			leaf.Always = child.Source.Always
			el.Append(leaf)
			continue
		}
		el.Append(renderNode(child, path, vals))
	}
	return el
}

// childSegment names siblings[i] within its parent, adding a 1-based index
// when the tag occurs more than once among the siblings.
func childSegment(siblings []Node, i int) string {
	tag := siblings[i].Tag
	count, pos := 0, 0
	for j, s := range siblings {
		if s.Tag != tag {
			continue
		}
		count++
		if j <= i {
			pos = count
		}
	}
	if count == 1 {
		return tag
	}
	return fmt.Sprintf("%s[%d]", tag, pos)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "/" + segment
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// invoiceForeignTotal sums the foreign invoice amount of every item. Cells
// that are absent or not numeric contribute nothing. The result is "0" when
// no cell parses, and otherwise always carries a fractional part ("15.0").
func invoiceForeignTotal(items []types.Record) string {
	sum := decimal.Zero
	parsed := false
	for _, item := range items {
		v := item.Value(InvoiceForeignColumn)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			continue
		}
		sum = sum.Add(d)
		parsed = true
	}
	if !parsed {
		return "0"
	}
	return formatFloat(sum)
}

func formatFloat(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
