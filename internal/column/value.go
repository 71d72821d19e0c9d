package column

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nibzard/fieldtree/internal/schema"
)

var (
	// ErrRequired reports an empty value in a required column.
	ErrRequired = errors.New("value is required")
	// ErrNotStructured reports a value of an object or array column that is
	// not a JSON object or array.
	ErrNotStructured = errors.New("value is not a JSON object or array")
)

// CheckOptions adjusts how CheckValue treats undeclared object members.
type CheckOptions struct {
	// Strict rejects undeclared members instead of tolerating them.
	Strict bool
}

// CheckValue validates value, the text of one cell, against the column and
// returns it decoded and transformed. Empty cells are accepted unless the
// column is required, and yield nil. String cells are returned as is; cells
// of other content types are not checked.
//
// When the column removes extra fields, the returned value has them removed.
func (s Schema) CheckValue(value string, opts CheckOptions) (any, error) {
	d := DataTypeOf(s)
	k, ok := d.Kind()
	if !ok {
		return value, nil
	}

	if strings.TrimSpace(value) == "" {
		if s.IsRequired {
			return nil, fmt.Errorf("%s: %w", s.Name, ErrRequired)
		}
		if k.SchemaType() == "string" {
			return value, nil
		}
		return nil, nil
	}
	if k.SchemaType() == "string" {
		return value, nil
	}

	v, err := schema.DecodeValue(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if k.HasChildren() || k.IsArray() {
		switch v.(type) {
		case map[string]any, []any:
		default:
			return nil, fmt.Errorf("%s: %w", s.Name, ErrNotStructured)
		}
	}

	text := s.TextSchema
	if text == "" {
		text = DefaultTextSchema(d)
	}
	compiled, err := schema.Compile(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if err := schema.CheckValue(compiled, v, opts.Strict); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}

	remove, global := s.RemovesExtraFields()
	if !remove || !k.HasChildren() {
		return v, nil
	}
	var structure schema.Schema
	if err := json.Unmarshal([]byte(text), &structure); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if global {
		return schema.Prune(&structure, v), nil
	}
	return schema.PruneTop(&structure, v), nil
}
