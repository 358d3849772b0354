package xmlwriter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ginjaninja78/asycuda-converter/internal/types"
)

func sampleTree() *types.Element {
	always := types.NewLeaf("Code", "")
	always.Always = true
	return types.NewContainer("ASYCUDA",
		types.NewContainer("SAD",
			types.NewLeaf("Sad_flow", "I"),
			types.NewLeaf("Exporter_code", ""),
			types.NewLeaf("CAP", "nan"),
			types.NewContainer("Transit",
				types.NewLeaf("Result_of_control", ""),
			),
			types.NewContainer("Unit", always),
		),
		types.NewContainer("Items"),
	)
}

func TestSerializeLayout(t *testing.T) {
	out, err := Serialize(sampleTree())
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<ASYCUDA>
  <SAD>
    <Sad_flow>I</Sad_flow>
    <Transit/>
    <Unit>
      <Code/>
    </Unit>
  </SAD>
  <Items/>
</ASYCUDA>
`
	if string(out) != want {
		t.Errorf("Serialize output mismatch\n got:\n%s\nwant:\n%s", out, want)
	}
}

func TestSerializeEscapesText(t *testing.T) {
	root := types.NewContainer("ASYCUDA", types.NewLeaf("Name", "A & B <C>"))
	out, err := Serialize(root)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Contains(out, []byte("<Name>A &amp; B &lt;C&gt;</Name>")) {
		t.Errorf("text not escaped: %s", out)
	}
}

func TestSerializeWithoutDeclaration(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeXMLDeclaration = false
	out, err := SerializeWithOptions(types.NewContainer("ASYCUDA"), opts)
	if err != nil {
		t.Fatalf("SerializeWithOptions: %v", err)
	}
	if bytes.HasPrefix(out, []byte("<?xml")) {
		t.Errorf("declaration written: %s", out)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	a, err := Serialize(sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Serialize(sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("identical trees serialized differently")
	}
}

func TestSerializeErrors(t *testing.T) {
	tests := []struct {
		name string
		root *types.Element
	}{
		{"nil root", nil},
		{"empty root tag", types.NewContainer("")},
		{"invalid child tag", types.NewContainer("ASYCUDA", types.NewLeaf("bad tag", "x"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Serialize(tt.root)
			var serr *SerializationError
			if !errors.As(err, &serr) {
				t.Fatalf("err = %v, want *SerializationError", err)
			}
			if out != nil {
				t.Errorf("output = %q, want nil", out)
			}
		})
	}
}

func TestGenerateXSD(t *testing.T) {
	skeleton := types.NewContainer("ASYCUDA",
		types.NewContainer("Items",
			types.NewContainer("Item",
				types.NewContainer("Tariff",
					types.NewContainer("Supplementary_unit",
						types.NewLeaf("Supplementary_unit_rank", ""),
						types.NewLeaf("Supplementary_unit_code", ""),
					),
					types.NewContainer("Supplementary_unit",
						types.NewLeaf("Supplementary_unit_rank", ""),
						types.NewLeaf("Supplementary_unit_name", ""),
					),
				),
			),
		),
	)

	out, err := GenerateXSD(skeleton, "Item")
	if err != nil {
		t.Fatalf("GenerateXSD: %v", err)
	}
	xsd := string(out)

	for _, want := range []string{
		`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">`,
		`<xs:element name="ASYCUDA">`,
		`<xs:element name="Item" minOccurs="0" maxOccurs="unbounded">`,
		`<xs:element name="Supplementary_unit" minOccurs="0" maxOccurs="2">`,
		`<xs:element name="Supplementary_unit_code" type="xs:string" minOccurs="0"/>`,
		`<xs:element name="Supplementary_unit_name" type="xs:string" minOccurs="0"/>`,
	} {
		if !strings.Contains(xsd, want) {
			t.Errorf("XSD missing %s\n%s", want, xsd)
		}
	}
	if n := strings.Count(xsd, `name="Supplementary_unit"`); n != 1 {
		t.Errorf("Supplementary_unit declared %d times, want 1", n)
	}
	if n := strings.Count(xsd, `name="Supplementary_unit_rank"`); n != 1 {
		t.Errorf("Supplementary_unit_rank declared %d times, want 1", n)
	}

	// Merging must not touch the input tree.
	first := skeleton.Find("Items/Item/Tariff").Children[0]
	if len(first.Children) != 2 {
		t.Errorf("skeleton modified: %d children", len(first.Children))
	}
}

func TestGenerateXSDNil(t *testing.T) {
	if _, err := GenerateXSD(nil, "Item"); err == nil {
		t.Error("expected an error for a nil skeleton")
	}
}
