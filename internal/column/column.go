// Package column describes dataset columns: their stored wire form, the data
// type derived from it, and the editable state used while a column's
// structure is being changed.
package column

import (
	"encoding/json"

	"github.com/nibzard/fieldtree/internal/field"
)

// ContentType is the broad content class of a column.
type ContentType string

const (
	ContentTypeText      ContentType = "Text"
	ContentTypeImage     ContentType = "Image"
	ContentTypeAudio     ContentType = "Audio"
	ContentTypeMultiPart ContentType = "MultiPart"
)

// DataType is the user-facing type of a column. Text columns use a field
// kind name ("number", "array<object>"); the other content types have their
// own names.
type DataType string

const (
	DataTypeImage     DataType = "Image"
	DataTypeMultiPart DataType = "MultiPart"
)

// DataTypeFor returns the data type of a text column whose values have
// kind k.
func DataTypeFor(k field.Kind) DataType {
	return DataType(k.String())
}

// Kind returns the field kind of a text data type.
func (d DataType) Kind() (field.Kind, bool) {
	k, err := field.ParseKind(string(d))
	if err != nil {
		return field.Kind{}, false
	}
	return k, true
}

// IsText reports whether values of d are stored as text validated by a
// schema.
func (d DataType) IsText() bool {
	_, ok := d.Kind()
	return ok
}

// IsObject reports whether d is "object" or "array<object>", the types whose
// structure is edited as a field tree.
func (d DataType) IsObject() bool {
	k, ok := d.Kind()
	return ok && k.HasChildren()
}

// ContentType returns the content type that stores values of d.
func (d DataType) ContentType() ContentType {
	switch d {
	case DataTypeImage:
		return ContentTypeImage
	case DataTypeMultiPart:
		return ContentTypeMultiPart
	}
	return ContentTypeText
}

// TransformationType identifies a transformation applied to imported values
// after they pass validation.
type TransformationType int

// RemoveExtraFields drops object members the column schema does not declare.
const RemoveExtraFields TransformationType = 1

// Transformation is one configured value transformation.
type Transformation struct {
	Type TransformationType `json:"transType" yaml:"transType"`
	// Global applies the transformation to nested structures as well as the
	// column's outermost value.
	Global bool `json:"global,omitempty" yaml:"global,omitempty"`
}

// Schema is a column as stored with its dataset.
type Schema struct {
	Key         string      `json:"key,omitempty" yaml:"key,omitempty"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	ContentType ContentType `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	// TextSchema is the JSON Schema text constraining values of text
	// columns. It is empty for other content types.
	TextSchema             string           `json:"text_schema,omitempty" yaml:"text_schema,omitempty"`
	IsRequired             bool             `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	DefaultTransformations []Transformation `json:"default_transformations,omitempty" yaml:"default_transformations,omitempty"`
}

// DataTypeOf derives a column's data type. Audio is edited as multi-part
// content. A text schema that is missing, malformed, or of an unsupported
// type reads as "string".
func DataTypeOf(s Schema) DataType {
	switch s.ContentType {
	case ContentTypeImage:
		return DataTypeImage
	case ContentTypeAudio, ContentTypeMultiPart:
		return DataTypeMultiPart
	}
	return textDataType(s.TextSchema)
}

func textDataType(text string) DataType {
	fallback := DataTypeFor(field.String)
	if text == "" {
		return fallback
	}

	var head struct {
		Type  any `json:"type"`
		Items struct {
			Type any `json:"type"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &head); err != nil {
		return fallback
	}
	typ, _ := head.Type.(string)
	if typ == "array" {
		item, _ := head.Items.Type.(string)
		typ = "array<" + item + ">"
	}
	if d := DataType(typ); d.IsText() {
		return d
	}
	return fallback
}

// DefaultTextSchema returns the text schema a new column of type d starts
// with. Object types start open, with no properties; other content types
// have no text schema.
func DefaultTextSchema(d DataType) string {
	k, ok := d.Kind()
	if !ok {
		return ""
	}
	if k.IsArray() {
		return `{"type":"array","items":{"type":"` + k.Elem().SchemaType() + `"}}`
	}
	return `{"type":"` + k.SchemaType() + `"}`
}

// RemovesExtraFields reports whether imported values have undeclared members
// removed, and whether the removal reaches nested structures.
func (s Schema) RemovesExtraFields() (remove, global bool) {
	for _, t := range s.DefaultTransformations {
		if t.Type == RemoveExtraFields {
			remove = true
			global = global || t.Global
		}
	}
	return remove, global
}

// ShowAdvancedConfig reports whether an editor should open the column's
// advanced settings by default: a transformation is configured or the
// schema closes some object to additional properties.
func (s Schema) ShowAdvancedConfig() bool {
	if len(s.DefaultTransformations) > 0 {
		return true
	}
	var doc any
	if err := json.Unmarshal([]byte(s.TextSchema), &doc); err != nil {
		return false
	}
	return closesObject(doc)
}

func closesObject(node any) bool {
	switch v := node.(type) {
	case map[string]any:
		if allowed, ok := v["additionalProperties"].(bool); ok && !allowed {
			return true
		}
		for _, child := range v {
			if closesObject(child) {
				return true
			}
		}
	case []any:
		for _, child := range v {
			if closesObject(child) {
				return true
			}
		}
	}
	return false
}
