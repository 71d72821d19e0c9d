package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// Schema type names.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Schema is one node of a restricted draft-07 document.
type Schema struct {
	Type string `json:"type"`
	// Properties is nil when the keyword is absent: an open object.
	Properties *Properties `json:"properties,omitempty"`
	Required   []string    `json:"required,omitempty"`
	Items      *Schema     `json:"items,omitempty"`
	// AdditionalProperties is nil when the keyword is absent.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`
}

// IsRequired reports whether name is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Properties is an insertion-ordered map of property schemas.
type Properties struct {
	names  []string
	byName map[string]*Schema
}

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return &Properties{byName: make(map[string]*Schema)}
}

// Set stores s under name. Replacing an existing name keeps its position.
func (p *Properties) Set(name string, s *Schema) {
	if p.byName == nil {
		p.byName = make(map[string]*Schema)
	}
	if _, ok := p.byName[name]; !ok {
		p.names = append(p.names, name)
	}
	p.byName[name] = s
}

// Get returns the schema stored under name.
func (p *Properties) Get(name string) (*Schema, bool) {
	if p == nil {
		return nil, false
	}
	s, ok := p.byName[name]
	return s, ok
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns the property names in order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.names...)
}

// All iterates over the properties in order.
func (p *Properties) All() iter.Seq2[string, *Schema] {
	return func(yield func(string, *Schema) bool) {
		if p == nil {
			return
		}
		for _, name := range p.names {
			if !yield(name, p.byName[name]) {
				return
			}
		}
	}
}

// MarshalJSON writes the properties as a JSON object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.byName[name])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping member order. A repeated member
// keeps its first position and its last value.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties must be an object")
	}

	*p = Properties{byName: make(map[string]*Schema)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in properties", tok)
		}
		var s *Schema
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		p.Set(name, s)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
