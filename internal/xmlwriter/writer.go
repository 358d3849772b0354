// =============================================================================
// ASYCUDA Converter - XML Writer Module
// =============================================================================
//
// This module renders a mapped document tree (types.Element) as XML text.
//
// OUTPUT FORMAT:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <ASYCUDA>
//     <SAD>
//       <Assessment_notice>
//         <Total_item_taxes>347.75</Total_item_taxes>
//         ...
//       </Assessment_notice>
//       ...
//       <Transit/>                     <!-- container with nothing to write -->
//     </SAD>
//     <Items>
//       <Item>...</Item>
//     </Items>
//   </ASYCUDA>
//
// RULES:
//   - 2-space indentation, one element per line.
//   - Leaves whose value is absent ("", "nan", "None") are omitted unless the
//     leaf is marked Always, in which case they are written empty.
//   - Containers are always written, self-closed when nothing is left inside.
//   - Output is a pure function of the tree: element order is the tree order
//     and there are no attributes, so identical trees give identical bytes.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/asycuda-converter/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// Options contains options for XML generation.
type Options struct {
	// IndentSpaces is the number of spaces per nesting level.
	// Default: 2
	IndentSpaces int

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		IndentSpaces:          2,
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Serialize renders the tree with the default options.
func Serialize(root *types.Element) ([]byte, error) {
	return SerializeWithOptions(root, DefaultOptions())
}

// SerializeWithOptions renders the tree as XML.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - A *SerializationError if the tree cannot be rendered.
func SerializeWithOptions(root *types.Element, options Options) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &SerializationError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if root == nil {
		return nil, &SerializationError{Err: fmt.Errorf("nil document")}
	}
	if err := checkTag(root.Tag); err != nil {
		return nil, &SerializationError{Err: err}
	}

	doc := etree.NewDocument()
	if options.IncludeXMLDeclaration {
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	}

	top := doc.CreateElement(root.Tag)
	if err := buildElement(top, root); err != nil {
		return nil, &SerializationError{Err: err}
	}

	doc.Indent(options.IndentSpaces)

	xmlBytes, err := doc.WriteToBytes()
	if err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("failed to write XML: %w", err)}
	}
	return xmlBytes, nil
}

// buildElement copies the content of src into dst.
func buildElement(dst *etree.Element, src *types.Element) error {
	if src.Leaf {
		if !types.IsAbsent(src.Text) {
			dst.SetText(src.Text)
		}
		return nil
	}

	for _, child := range src.Children {
		if !child.Emitted() {
			continue
		}
		if err := checkTag(child.Tag); err != nil {
			return err
		}
		if err := buildElement(dst.CreateElement(child.Tag), child); err != nil {
			return err
		}
	}
	return nil
}

// checkTag rejects names that would produce malformed XML.
func checkTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("empty element name")
	}
	if strings.ContainsAny(tag, " <>&\"'/=\t\n") {
		return fmt.Errorf("invalid element name %q", tag)
	}
	return nil
}

// =============================================================================
// XSD GENERATION
// =============================================================================

// GenerateXSD creates an XSD schema describing a document tree.
//
// PARAMETERS:
//   - skeleton: a tree holding every element once, e.g. asycuda.Skeleton().
//
// RETURNS:
//   - The XSD document as a byte slice.
//
// Every leaf is typed xs:string with minOccurs="0" because absent values
// are omitted. The repeating element named by repeated (Item) is declared
// with maxOccurs="unbounded".
func GenerateXSD(skeleton *types.Element, repeated string) ([]byte, error) {
	if skeleton == nil {
		return nil, fmt.Errorf("nil skeleton")
	}

	var buffer bytes.Buffer

	// Write XSD header.
	buffer.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
`)
	writeXSDElement(&buffer, skeleton, repeated, 1, true)
	buffer.WriteString("</xs:schema>\n")

	return buffer.Bytes(), nil
}

// writeXSDElement writes an XSD element definition and its children.
func writeXSDElement(buffer *bytes.Buffer, el *types.Element, repeated string, indentLevel int, top bool) {
	indent := strings.Repeat("  ", indentLevel)

	occurs := ` minOccurs="0"`
	if top {
		occurs = ""
	} else if el.Tag == repeated {
		occurs = ` minOccurs="0" maxOccurs="unbounded"`
	}

	if el.Leaf {
		buffer.WriteString(fmt.Sprintf("%s<xs:element name=\"%s\" type=\"xs:string\"%s/>\n", indent, el.Tag, occurs))
		return
	}

	buffer.WriteString(fmt.Sprintf("%s<xs:element name=\"%s\"%s>\n", indent, el.Tag, occurs))
	buffer.WriteString(indent + "  <xs:complexType>\n")
	buffer.WriteString(indent + "    <xs:sequence>\n")
	for _, group := range mergeSiblings(el.Children) {
		if group.count > 1 {
			writeXSDRepeated(buffer, group, repeated, indentLevel+3)
			continue
		}
		writeXSDElement(buffer, group.element, repeated, indentLevel+3, false)
	}
	buffer.WriteString(indent + "    </xs:sequence>\n")
	buffer.WriteString(indent + "  </xs:complexType>\n")
	buffer.WriteString(indent + "</xs:element>\n")
}

// siblingGroup is a run of adjacent siblings sharing one tag.
type siblingGroup struct {
	element *types.Element
	count   int
}

// mergeSiblings folds adjacent same-tag siblings into one declaration whose
// children are the union of theirs in first-seen order. An XSD sequence
// may not declare the same name twice with different content.
func mergeSiblings(children []*types.Element) []siblingGroup {
	var groups []siblingGroup
	for _, child := range children {
		n := len(groups)
		if n == 0 || groups[n-1].element.Tag != child.Tag || child.Leaf {
			groups = append(groups, siblingGroup{element: child, count: 1})
			continue
		}
		prev := groups[n-1].element
		merged := types.NewContainer(prev.Tag, append([]*types.Element(nil), prev.Children...)...)
		for _, c := range child.Children {
			if merged.Child(c.Tag) == nil {
				merged.Append(c)
			}
		}
		groups[n-1].element = merged
		groups[n-1].count++
	}
	return groups
}

// writeXSDRepeated declares a merged run of count siblings.
func writeXSDRepeated(buffer *bytes.Buffer, group siblingGroup, repeated string, indentLevel int) {
	var inner bytes.Buffer
	writeXSDElement(&inner, group.element, repeated, indentLevel, false)
	first := fmt.Sprintf(`name="%s" minOccurs="0"`, group.element.Tag)
	bounded := fmt.Sprintf(`name="%s" minOccurs="0" maxOccurs="%d"`, group.element.Tag, group.count)
	buffer.WriteString(strings.Replace(inner.String(), first, bounded, 1))
}
