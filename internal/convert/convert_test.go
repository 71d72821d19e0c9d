package convert

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nibzard/fieldtree/internal/field"
	"github.com/nibzard/fieldtree/internal/schema"
)

func marshal(t *testing.T, s *schema.Schema) string {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestToSchemaRequiredString(t *testing.T) {
	root := &field.Node{
		Key:  "r",
		Kind: field.Object,
		Children: []*field.Node{
			{Key: "a", PropertyKey: "name", Kind: field.String, IsRequired: true},
		},
	}

	got := marshal(t, ToSchema(root))
	want := `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`
	if got != want {
		t.Errorf("ToSchema = %s, want %s", got, want)
	}
}

func TestToSchemaArrayOfObjects(t *testing.T) {
	root := &field.Node{
		Key:                  "r",
		Kind:                 field.ArrayOf(field.PrimitiveObject),
		AdditionalProperties: field.Bool(false),
		Children: []*field.Node{
			{Key: "a", PropertyKey: "id", Kind: field.Integer},
		},
	}

	got := marshal(t, ToSchema(root))
	want := `{"type":"array","items":{"type":"object","properties":{"id":{"type":"integer"}},"additionalProperties":false}}`
	if got != want {
		t.Errorf("ToSchema = %s, want %s", got, want)
	}
}

func TestToSchema(t *testing.T) {
	tests := []struct {
		name string
		root *field.Node
		want string
	}{
		{
			name: "scalar",
			root: &field.Node{Kind: field.Float},
			want: `{"type":"number"}`,
		},
		{
			name: "array of scalars",
			root: &field.Node{Kind: field.ArrayOf(field.PrimitiveBoolean)},
			want: `{"type":"array","items":{"type":"boolean"}}`,
		},
		{
			name: "empty object keeps properties",
			root: &field.Node{Kind: field.Object},
			want: `{"type":"object","properties":{}}`,
		},
		{
			name: "open object",
			root: &field.Node{Kind: field.Object, AdditionalProperties: field.Bool(true)},
			want: `{"type":"object","properties":{},"additionalProperties":true}`,
		},
		{
			name: "scalar ignores additional properties",
			root: &field.Node{Kind: field.String, AdditionalProperties: field.Bool(false)},
			want: `{"type":"string"}`,
		},
		{
			name: "unnamed children skipped",
			root: &field.Node{Kind: field.Object, Children: []*field.Node{
				{PropertyKey: "", Kind: field.String, IsRequired: true},
				{PropertyKey: "b", Kind: field.Integer},
			}},
			want: `{"type":"object","properties":{"b":{"type":"integer"}}}`,
		},
		{
			name: "child order kept",
			root: &field.Node{Kind: field.Object, Children: []*field.Node{
				{PropertyKey: "z", Kind: field.String},
				{PropertyKey: "a", Kind: field.String, IsRequired: true},
				{PropertyKey: "m", Kind: field.String, IsRequired: true},
			}},
			want: `{"type":"object","properties":{"z":{"type":"string"},"a":{"type":"string"},"m":{"type":"string"}},"required":["a","m"]}`,
		},
		{
			name: "root property key ignored",
			root: &field.Node{PropertyKey: "outer", IsRequired: true, Kind: field.Integer},
			want: `{"type":"integer"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marshal(t, ToSchema(tt.root)); got != tt.want {
				t.Errorf("ToSchema = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestImportNestedArray(t *testing.T) {
	doc := `{"type":"object","properties":{"tags":{"type":"array","items":{"type":"object","properties":{"label":{"type":"string"}},"required":["label"],"additionalProperties":false}}},"required":["tags"]}`

	root, err := Import([]byte(doc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := &field.Node{
		Kind: field.Object,
		Children: []*field.Node{
			{
				PropertyKey:          "tags",
				Kind:                 field.ArrayOf(field.PrimitiveObject),
				IsRequired:           true,
				AdditionalProperties: field.Bool(false),
				Children: []*field.Node{
					{PropertyKey: "label", Kind: field.String, IsRequired: true},
				},
			},
		},
	}
	opts := []cmp.Option{
		cmpopts.IgnoreFields(field.Node{}, "Key"),
		cmpopts.EquateEmpty(),
		cmp.Comparer(func(a, b field.Kind) bool { return a == b }),
	}
	if diff := cmp.Diff(want, root, opts...); diff != "" {
		t.Errorf("Import mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSchemaFreshKeys(t *testing.T) {
	root, err := Import([]byte(`{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"object"}}}`))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	seen := map[string]bool{root.Key: true}
	for _, c := range root.Children {
		if c.Key == "" || seen[c.Key] {
			t.Errorf("child %q has key %q, want fresh unique key", c.PropertyKey, c.Key)
		}
		seen[c.Key] = true
	}
	if b := root.Children[1]; b.Children == nil || len(b.Children) != 0 {
		t.Errorf("object without properties: children = %#v, want empty", b.Children)
	}
	if root.AdditionalProperties != nil {
		t.Errorf("absent additionalProperties = %v, want unspecified", *root.AdditionalProperties)
	}
	if !root.AllowsAdditional() {
		t.Error("absent additionalProperties should read as allowed")
	}
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{`},
		{name: "missing type", doc: `{"properties":{}}`},
		{name: "nested arrays", doc: `{"type":"array","items":{"type":"array","items":{"type":"string"}}}`},
		{name: "too deep", doc: nestedDoc(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.doc))
			if !errors.Is(err, schema.ErrInvalidStructure) {
				t.Errorf("Import error = %v, want ErrInvalidStructure", err)
			}
		})
	}
}

// nestedDoc returns an object schema with n levels of single-property
// nesting below the root.
func nestedDoc(n int) string {
	doc := `{"type":"string"}`
	for range n {
		doc = `{"type":"object","properties":{"p":` + doc + `}}`
	}
	return doc
}

func TestFromSchemaRejectsUnknownType(t *testing.T) {
	_, err := FromSchema(&schema.Schema{Type: "null"}, false)
	if !errors.Is(err, schema.ErrInvalidStructure) {
		t.Errorf("FromSchema error = %v, want ErrInvalidStructure", err)
	}
}

func TestExport(t *testing.T) {
	root := &field.Node{
		Kind: field.Object,
		Children: []*field.Node{
			{PropertyKey: "name", Kind: field.String, IsRequired: true},
		},
	}

	got, err := Export(root, 2)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "{\n  \"type\": \"object\",\n  \"properties\": {\n    \"name\": {\n      \"type\": \"string\"\n    }\n  },\n  \"required\": [\n    \"name\"\n  ]\n}"
	if string(got) != want {
		t.Errorf("Export =\n%s\nwant\n%s", got, want)
	}
}

func TestExportTooDeep(t *testing.T) {
	root := &field.Node{Kind: field.String}
	for range 5 {
		root = &field.Node{Kind: field.Object, Children: []*field.Node{
			withKey(root, "p"),
		}}
	}

	_, err := Export(root, 0)
	if !errors.Is(err, schema.ErrInvalidStructure) {
		t.Fatalf("Export error = %v, want ErrInvalidStructure", err)
	}
	if !strings.Contains(err.Error(), "exceeds 5 levels") {
		t.Errorf("Export error = %q, want depth violation", err)
	}
}

func withKey(n *field.Node, propertyKey string) *field.Node {
	cp := *n
	cp.PropertyKey = propertyKey
	return &cp
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 200 {
		root := randomTree(rng, 1)
		data, err := Export(root, 0)
		if err != nil {
			t.Fatalf("tree %d: Export: %v", i, err)
		}
		back, err := Import(data)
		if err != nil {
			t.Fatalf("tree %d: Import(%s): %v", i, data, err)
		}
		if !field.Equal(root, back) {
			t.Fatalf("tree %d: round trip changed structure\nschema: %s", i, data)
		}
	}
}

// randomTree builds a valid tree whose depth never exceeds schema.MaxDepth.
// Property keys are unique among siblings and the root has none.
func randomTree(rng *rand.Rand, depth int) *field.Node {
	kinds := field.Kinds()
	n := &field.Node{Key: field.NewKey(), Kind: kinds[rng.IntN(len(kinds))]}
	if depth >= schema.MaxDepth && n.Kind.HasChildren() {
		n.Kind = field.String
	}
	if !n.Kind.HasChildren() {
		return n
	}

	switch rng.IntN(3) {
	case 1:
		n.AdditionalProperties = field.Bool(false)
	case 2:
		n.AdditionalProperties = field.Bool(true)
	}
	for j := range rng.IntN(4) {
		child := randomTree(rng, depth+1)
		child.PropertyKey = string(rune('a' + j))
		child.IsRequired = rng.IntN(2) == 0
		n.Children = append(n.Children, child)
	}
	return n
}

func TestDiff(t *testing.T) {
	before := []byte(`{"type":"object","properties":{"name":{"type":"string"}}}`)
	after := []byte(`{"type":"object","properties":{"name":{"type":"integer"}},"required":["name"]}`)

	patch, err := Diff(before, after)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var paths []string
	for _, op := range patch {
		paths = append(paths, op.Type+" "+string(op.Path))
	}
	want := []string{
		"replace /properties/name/type",
		"add /required",
	}
	if diff := cmp.Diff(want, paths, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("Diff ops mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffIdentical(t *testing.T) {
	doc := []byte(`{"type":"string"}`)
	patch, err := Diff(doc, doc)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(patch) != 0 {
		t.Errorf("Diff of identical documents = %v, want empty", patch)
	}
}
