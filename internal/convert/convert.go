// Package convert translates between field trees and their schema form.
//
// ToSchema is the forward direction, used when an editor saves; FromSchema is
// the backward direction, used when a stored or imported document is loaded.
// Documents from outside the process must pass the strict validator first;
// Import does both steps.
package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wI2L/jsondiff"

	"github.com/nibzard/fieldtree/internal/field"
	"github.com/nibzard/fieldtree/internal/schema"
)

// ToSchema converts a field tree to its schema form. The root's own property
// key and required flag are ignored. Children with an empty property key
// cannot be named in "properties" and are skipped.
//
// For ArrayOf(Object) the object constraints go on "items"; the array schema
// itself carries only "type" and "items".
func ToSchema(root *field.Node) *schema.Schema {
	if root.Kind.IsArray() {
		return &schema.Schema{
			Type:  schema.TypeArray,
			Items: elementSchema(root),
		}
	}
	return elementSchema(root)
}

// elementSchema converts n as its element kind, ignoring any array wrapper.
func elementSchema(n *field.Node) *schema.Schema {
	s := &schema.Schema{Type: n.Kind.Elem().SchemaType()}
	if !n.Kind.HasChildren() {
		return s
	}

	s.Properties = schema.NewProperties()
	if n.AdditionalProperties != nil {
		s.AdditionalProperties = field.Bool(*n.AdditionalProperties)
	}
	for _, child := range n.Children {
		if child.PropertyKey == "" {
			continue
		}
		s.Properties.Set(child.PropertyKey, ToSchema(child))
		if child.IsRequired && !s.IsRequired(child.PropertyKey) {
			s.Required = append(s.Required, child.PropertyKey)
		}
	}
	return s
}

// FromSchema converts a schema to a freshly keyed field tree. isRequired is
// the root's membership in its enclosing "required" list, supplied by the
// caller. For arrays, "required", "properties", and "additionalProperties"
// are read from "items".
//
// An object without "properties" yields no children. An absent
// "additionalProperties" stays unspecified on the node, which reads as
// allowed.
func FromSchema(s *schema.Schema, isRequired bool) (*field.Node, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: missing schema", schema.ErrInvalidStructure)
	}

	n := &field.Node{Key: field.NewKey(), IsRequired: isRequired}
	src := s
	if s.Type == schema.TypeArray {
		if s.Items == nil {
			return nil, fmt.Errorf("%w: array without items", schema.ErrInvalidStructure)
		}
		elem, ok := field.ParsePrimitive(s.Items.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported item type %q", schema.ErrInvalidStructure, s.Items.Type)
		}
		n.Kind = field.ArrayOf(elem)
		src = s.Items
	} else {
		p, ok := field.ParsePrimitive(s.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported type %q", schema.ErrInvalidStructure, s.Type)
		}
		n.Kind = field.KindOf(p)
	}

	if !n.Kind.HasChildren() {
		return n, nil
	}
	if src.AdditionalProperties != nil {
		n.AdditionalProperties = field.Bool(*src.AdditionalProperties)
	}
	n.Children = make([]*field.Node, 0, src.Properties.Len())
	for name, ps := range src.Properties.All() {
		child, err := FromSchema(ps, src.IsRequired(name))
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		child.PropertyKey = name
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// Import strictly validates a schema document and converts it to a field
// tree. Every rejection wraps schema.ErrInvalidStructure.
func Import(data []byte) (*field.Node, error) {
	s, err := schema.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromSchema(s, false)
}

// Export converts root to schema text indented by indent spaces (compact when
// indent is 0). The result is checked against the strict validator so that
// whatever is stored can be imported again.
func Export(root *field.Node, indent int) ([]byte, error) {
	s := ToSchema(root)

	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = json.MarshalIndent(s, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("re-read schema: %w", err)
	}
	if err := schema.Diagnose(doc); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// Diff returns the JSON Patch (RFC 6902) turning the schema document before
// into after. Reordering properties is not a change at this level.
func Diff(before, after []byte) (jsondiff.Patch, error) {
	patch, err := jsondiff.CompareJSON(before, after)
	if err != nil {
		return nil, fmt.Errorf("compare schemas: %w", err)
	}
	return patch, nil
}
