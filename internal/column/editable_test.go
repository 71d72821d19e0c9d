package column

import (
	"errors"
	"testing"

	"github.com/nibzard/fieldtree/internal/field"
	"github.com/nibzard/fieldtree/internal/schema"
)

const tagsSchema = `{"type":"object","properties":{"name":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}}},"required":["name"]}`

func TestToEditableObject(t *testing.T) {
	e, err := ToEditable(Schema{Name: "meta", TextSchema: tagsSchema})
	if err != nil {
		t.Fatalf("ToEditable: %v", err)
	}
	if e.Type != "object" {
		t.Errorf("Type = %q, want object", e.Type)
	}
	if e.Input != InputForm {
		t.Errorf("Input = %q, want Form", e.Input)
	}
	if got := len(e.Tree.Children); got != 2 {
		t.Fatalf("children = %d, want 2", got)
	}
	if name := e.Tree.Children[0]; name.PropertyKey != "name" || !name.IsRequired {
		t.Errorf("first child = %+v, want required name", name)
	}
	if e.ShowAdditional {
		t.Error("ShowAdditional should start false without open objects")
	}
}

func TestToEditableRejectsInvalidObjectSchema(t *testing.T) {
	text := `{"type":"object","properties":{"a":{"type":"array","items":{"type":"array","items":{"type":"string"}}}}}`
	_, err := ToEditable(Schema{Name: "bad", TextSchema: text})
	if !errors.Is(err, schema.ErrInvalidStructure) {
		t.Errorf("ToEditable error = %v, want ErrInvalidStructure", err)
	}
}

func TestToEditableScalar(t *testing.T) {
	e, err := ToEditable(Schema{Name: "score", TextSchema: `{"type":"number"}`})
	if err != nil {
		t.Fatalf("ToEditable: %v", err)
	}
	if e.Tree == nil || e.Tree.Kind != field.Float {
		t.Errorf("Tree = %+v, want number root", e.Tree)
	}
}

func TestEditableToSchema(t *testing.T) {
	e := NewEditable("meta", "object")
	e.Tree = field.AddChild(e.Tree, e.Tree.Key)
	e.Tree = field.SetPropertyKey(e.Tree, e.Tree.Children[0].Key, "name")

	s, err := e.ToSchema()
	if err != nil {
		t.Fatalf("ToSchema: %v", err)
	}
	if s.ContentType != ContentTypeText {
		t.Errorf("ContentType = %q, want Text", s.ContentType)
	}
	back, err := ToEditable(s)
	if err != nil {
		t.Fatalf("ToEditable(%s): %v", s.TextSchema, err)
	}
	if !field.Equal(e.Tree, back.Tree) {
		t.Errorf("tree changed across ToSchema/ToEditable: %s", s.TextSchema)
	}
}

func TestEditableToSchemaNonText(t *testing.T) {
	s, err := NewEditable("pic", DataTypeImage).ToSchema()
	if err != nil {
		t.Fatalf("ToSchema: %v", err)
	}
	if s.ContentType != ContentTypeImage || s.TextSchema != "" {
		t.Errorf("ToSchema() = %+v, want image column without text schema", s)
	}

	s, err = NewEditable("n", "array<integer>").ToSchema()
	if err != nil {
		t.Fatalf("ToSchema: %v", err)
	}
	if want := `{"type":"array","items":{"type":"integer"}}`; s.TextSchema != want {
		t.Errorf("TextSchema = %s, want %s", s.TextSchema, want)
	}
}

func TestSwitchInputRoundTrip(t *testing.T) {
	e, err := ToEditable(Schema{Name: "meta", TextSchema: tagsSchema})
	if err != nil {
		t.Fatalf("ToEditable: %v", err)
	}
	before := e.Tree

	if err := e.SwitchInput(InputJSON, false); err != nil {
		t.Fatalf("to JSON: %v", err)
	}
	if e.Input != InputJSON || e.Text == "" {
		t.Fatalf("after switch: input %q, text %q", e.Input, e.Text)
	}
	if err := e.SwitchInput(InputForm, false); err != nil {
		t.Fatalf("to Form: %v", err)
	}
	if !field.Equal(before, e.Tree) {
		t.Error("tree changed across JSON and back")
	}
}

func TestSwitchInputInvalidText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{name: "malformed", text: `{`, want: schema.ErrInvalidStructure},
		{name: "too deep", text: `{"type":"object","properties":{"a":{"type":"object","properties":{"b":{"type":"object","properties":{"c":{"type":"object","properties":{"d":{"type":"object","properties":{"e":{"type":"string"}}}}}}}}}}}`, want: schema.ErrInvalidStructure},
		{name: "wrong type", text: `{"type":"array","items":{"type":"object"}}`, want: ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ToEditable(Schema{Name: "meta", TextSchema: tagsSchema})
			if err != nil {
				t.Fatalf("ToEditable: %v", err)
			}
			if err := e.SwitchInput(InputJSON, false); err != nil {
				t.Fatalf("to JSON: %v", err)
			}
			e.Text = tt.text

			err = e.SwitchInput(InputForm, false)
			if !errors.Is(err, tt.want) {
				t.Fatalf("SwitchInput error = %v, want %v", err, tt.want)
			}
			if e.Input != InputJSON || len(e.Tree.Children) != 2 {
				t.Errorf("failed switch changed state: input %q, %d children", e.Input, len(e.Tree.Children))
			}

			if err := e.SwitchInput(InputForm, true); err != nil {
				t.Fatalf("forced switch: %v", err)
			}
			if e.Input != InputForm || len(e.Tree.Children) != 0 {
				t.Errorf("forced switch: input %q, %d children, want Form with none", e.Input, len(e.Tree.Children))
			}
		})
	}
}

func TestSwitchInputNonObject(t *testing.T) {
	e := NewEditable("n", "integer")
	if err := e.SwitchInput(InputJSON, false); !errors.Is(err, ErrNotObject) {
		t.Errorf("SwitchInput error = %v, want ErrNotObject", err)
	}
}

func TestResetAdditionalProperties(t *testing.T) {
	text := `{"type":"object","properties":{"a":{"type":"object","additionalProperties":true}},"additionalProperties":true}`
	e, err := ToEditable(Schema{Name: "meta", TextSchema: text})
	if err != nil {
		t.Fatalf("ToEditable: %v", err)
	}
	if !e.ShowAdditional || !e.HasAdditionalProperties() {
		t.Fatal("open objects should show the additional-properties switches")
	}

	e.ResetAdditionalProperties()
	if e.ShowAdditional || e.HasAdditionalProperties() {
		t.Error("reset should close every object and hide the switches")
	}
	if e.Tree.AdditionalProperties == nil || *e.Tree.AdditionalProperties {
		t.Error("reset root should disallow additional properties explicitly")
	}
}
