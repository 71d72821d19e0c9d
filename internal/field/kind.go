// Package field models the editable tree behind a dataset column's structure.
package field

import (
	"fmt"
	"strings"
)

// Primitive is the element type of a Kind.
type Primitive uint8

const (
	primitiveInvalid Primitive = iota
	PrimitiveString
	PrimitiveInteger
	PrimitiveFloat
	PrimitiveBoolean
	PrimitiveObject
)

var primitiveSchemaTypes = map[Primitive]string{
	PrimitiveString:  "string",
	PrimitiveInteger: "integer",
	PrimitiveFloat:   "number",
	PrimitiveBoolean: "boolean",
	PrimitiveObject:  "object",
}

// SchemaType returns the JSON Schema type name ("number" for floats).
func (p Primitive) SchemaType() string {
	return primitiveSchemaTypes[p]
}

// ParsePrimitive maps a JSON Schema type name to a Primitive. "array" is not
// a primitive.
func ParsePrimitive(schemaType string) (Primitive, bool) {
	for p, name := range primitiveSchemaTypes {
		if name == schemaType {
			return p, true
		}
	}
	return primitiveInvalid, false
}

// Kind is the tagged type of a Node: one of String, Integer, Float, Boolean,
// Object, or ArrayOf one of those. Arrays of arrays are not representable.
// The zero Kind is invalid.
type Kind struct {
	elem  Primitive
	array bool
}

var (
	String  = Kind{elem: PrimitiveString}
	Integer = Kind{elem: PrimitiveInteger}
	Float   = Kind{elem: PrimitiveFloat}
	Boolean = Kind{elem: PrimitiveBoolean}
	Object  = Kind{elem: PrimitiveObject}
)

// KindOf returns the non-array kind for p.
func KindOf(p Primitive) Kind {
	return Kind{elem: p}
}

// ArrayOf returns the kind of a list whose items are elem.
func ArrayOf(elem Primitive) Kind {
	return Kind{elem: elem, array: true}
}

// Kinds lists every valid kind, scalars first. Editors cycle through it.
func Kinds() []Kind {
	return []Kind{
		String, Integer, Float, Boolean, Object,
		ArrayOf(PrimitiveString),
		ArrayOf(PrimitiveInteger),
		ArrayOf(PrimitiveFloat),
		ArrayOf(PrimitiveBoolean),
		ArrayOf(PrimitiveObject),
	}
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	_, ok := primitiveSchemaTypes[k.elem]
	return ok
}

// IsArray reports whether k is ArrayOf some element.
func (k Kind) IsArray() bool { return k.array }

// Elem returns the element primitive: the kind itself for scalars and
// objects, the item type for arrays.
func (k Kind) Elem() Primitive { return k.elem }

// HasChildren reports whether nodes of this kind carry child properties:
// Object and ArrayOf(Object).
func (k Kind) HasChildren() bool { return k.elem == PrimitiveObject }

// SchemaType returns the JSON Schema "type" of the kind.
func (k Kind) SchemaType() string {
	if k.array {
		return "array"
	}
	return k.elem.SchemaType()
}

// String returns the data type name used in column definitions, such as
// "integer" or "array<object>".
func (k Kind) String() string {
	if !k.Valid() {
		return "invalid"
	}
	if k.array {
		return "array<" + k.elem.SchemaType() + ">"
	}
	return k.elem.SchemaType()
}

// ParseKind parses the String form of a kind.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(s, "array<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return Kind{}, fmt.Errorf("invalid kind %q", s)
		}
		p, ok := ParsePrimitive(inner)
		if !ok {
			return Kind{}, fmt.Errorf("invalid array item kind %q", inner)
		}
		return ArrayOf(p), nil
	}
	p, ok := ParsePrimitive(s)
	if !ok {
		return Kind{}, fmt.Errorf("invalid kind %q", s)
	}
	return KindOf(p), nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal invalid kind")
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
