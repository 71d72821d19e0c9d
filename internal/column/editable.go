package column

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nibzard/fieldtree/internal/convert"
	"github.com/nibzard/fieldtree/internal/field"
	"github.com/nibzard/fieldtree/internal/schema"
)

// InputType is how an object column's structure is being edited.
type InputType string

const (
	// InputForm edits the field tree.
	InputForm InputType = "Form"
	// InputJSON edits the schema text directly.
	InputJSON InputType = "JSON"
)

var (
	// ErrTypeMismatch reports schema text whose type differs from the
	// column's data type.
	ErrTypeMismatch = errors.New("schema type does not match column type")
	// ErrNotObject reports an operation that needs an object column.
	ErrNotObject = errors.New("column is not an object type")
)

// Editable is a column being edited.
type Editable struct {
	Column Schema
	Type   DataType
	// Tree holds the column's structure for text types. The root carries the
	// column kind; only object kinds have children.
	Tree  *field.Node
	Input InputType
	// Text is the schema text edited in JSON mode.
	Text string
	// ShowAdditional reports whether the additional-properties switches are
	// shown on the tree.
	ShowAdditional bool
}

// ToEditable prepares a stored column for editing. Object columns have
// their text schema strictly validated and converted to a field tree.
func ToEditable(s Schema) (*Editable, error) {
	e := &Editable{
		Column: s,
		Type:   DataTypeOf(s),
		Input:  InputForm,
	}
	k, ok := e.Type.Kind()
	if !ok {
		return e, nil
	}
	if !k.HasChildren() {
		e.Tree = &field.Node{Key: field.NewKey(), Kind: k}
		return e, nil
	}

	root, err := convert.Import([]byte(s.TextSchema))
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", s.Name, err)
	}
	e.Tree = root
	e.ShowAdditional = field.HasAdditionalProperties(root)
	return e, nil
}

// NewEditable returns an empty editable column of type d.
func NewEditable(name string, d DataType) *Editable {
	e := &Editable{
		Column: Schema{Name: name, ContentType: d.ContentType()},
		Type:   d,
		Input:  InputForm,
	}
	if k, ok := d.Kind(); ok {
		e.Tree = &field.Node{Key: field.NewKey(), Kind: k}
		if k.HasChildren() {
			e.Tree.AdditionalProperties = field.Bool(false)
			e.Tree.Children = []*field.Node{}
		}
	}
	return e
}

// ToSchema renders the edited column in its stored form. Object columns
// edited as JSON store the text as typed; otherwise the tree is exported.
func (e *Editable) ToSchema() (Schema, error) {
	s := e.Column
	s.ContentType = e.Type.ContentType()
	s.TextSchema = ""

	switch {
	case !e.Type.IsText():
	case !e.Type.IsObject():
		s.TextSchema = DefaultTextSchema(e.Type)
	case e.Input == InputJSON && e.Text != "":
		s.TextSchema = e.Text
	default:
		data, err := convert.Export(e.Tree, 2)
		if err != nil {
			return Schema{}, fmt.Errorf("column %q: %w", e.Column.Name, err)
		}
		s.TextSchema = string(data)
	}
	return s, nil
}

// SwitchInput changes how an object column is edited.
//
// Switching to JSON renders the tree as schema text. Switching to Form
// validates the text and rebuilds the tree from it. Invalid text is reported
// and nothing changes, unless force is set: then the tree loses its children
// and the switch goes ahead.
func (e *Editable) SwitchInput(to InputType, force bool) error {
	if !e.Type.IsObject() {
		return ErrNotObject
	}
	if to == e.Input {
		return nil
	}

	switch to {
	case InputJSON:
		data, err := convert.Export(e.Tree, 2)
		if err != nil {
			return err
		}
		e.Text = string(data)
	case InputForm:
		if err := ValidateSchemaText(e.Text, e.Type); err != nil {
			if !force {
				return err
			}
			e.Tree = e.Tree.WithChildren([]*field.Node{})
			break
		}
		root, err := convert.Import([]byte(e.Text))
		if err != nil {
			return err
		}
		e.Tree = e.Tree.WithChildren(root.Children)
		e.Tree.AdditionalProperties = root.AdditionalProperties
		e.ShowAdditional = e.ShowAdditional || field.HasAdditionalProperties(e.Tree)
	default:
		return fmt.Errorf("unknown input type %q", to)
	}
	e.Input = to
	return nil
}

// ResetAdditionalProperties closes every object in the tree to additional
// properties and hides the switches.
func (e *Editable) ResetAdditionalProperties() {
	if e.Tree != nil {
		e.Tree = field.ResetAdditionalProperties(e.Tree)
	}
	e.ShowAdditional = false
}

// HasAdditionalProperties reports whether any object in the tree explicitly
// allows additional properties.
func (e *Editable) HasAdditionalProperties() bool {
	return e.Tree != nil && field.HasAdditionalProperties(e.Tree)
}

// ValidateSchemaText checks text as the schema of a column of type d: it
// must pass the strict validator and its type must be d.
func ValidateSchemaText(text string, d DataType) error {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrInvalidStructure, err)
	}
	if err := schema.Diagnose(doc); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrInvalidStructure, err)
	}
	if got := textDataType(text); got != d {
		return fmt.Errorf("%w: schema is %s, column is %s", ErrTypeMismatch, got, d)
	}
	return nil
}
