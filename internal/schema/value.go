package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/fieldtree/internal/utils"
)

const resourceName = "column.schema.json"

// Compile compiles text as a draft-07 schema for checking data values.
// Compilation checks text against the draft-07 metaschema; it does not apply
// the strict rules of Validate.
func Compile(text string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	if err := compiler.AddResource(resourceName, strings.NewReader(text)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// DecodeValue decodes JSON text the way the validator expects instances,
// keeping numbers exact.
func DecodeValue(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse value: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse value: unexpected data after the value")
	}
	return v, nil
}

// ValueError is one place where a data value does not conform to its schema.
type ValueError struct {
	// Path is the dot-notation location inside the value; empty for the
	// value itself.
	Path    string
	Message string
	// Keyword is the failing schema keyword, such as "required".
	Keyword string
}

func (e *ValueError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// CheckValue validates value against compiled. Undeclared object members are
// tolerated unless strict is set, matching how imports treat them: they are
// stripped by the remove-extra-fields transformation rather than rejected.
func CheckValue(compiled *jsonschema.Schema, value any, strict bool) error {
	err := compiled.Validate(value)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var result *multierror.Error
	collectValueErrors(ve, strict, &result)
	return result.ErrorOrNil()
}

func collectValueErrors(err *jsonschema.ValidationError, strict bool, result **multierror.Error) {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			collectValueErrors(cause, strict, result)
		}
		return
	}

	keyword := lastToken(err.KeywordLocation)
	if keyword == "additionalProperties" && !strict {
		return
	}
	*result = multierror.Append(*result, &ValueError{
		Path:    utils.JSONPointerToPath(err.InstanceLocation),
		Message: err.Message,
		Keyword: keyword,
	})
}

func lastToken(ptr string) string {
	if i := strings.LastIndexByte(ptr, '/'); i >= 0 {
		return ptr[i+1:]
	}
	return ptr
}

// Prune returns a copy of value without the object members s does not
// declare, at every level. Objects whose schema has no "properties" are open
// and kept whole.
func Prune(s *Schema, value any) any {
	return prune(s, value, true)
}

// PruneTop is Prune limited to the outermost object, or the objects directly
// inside an outermost array. Members that are kept are not descended into.
func PruneTop(s *Schema, value any) any {
	return prune(s, value, false)
}

func prune(s *Schema, value any, nested bool) any {
	if s == nil {
		return value
	}
	switch s.Type {
	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok || s.Properties == nil {
			return value
		}
		out := make(map[string]any, len(obj))
		for name, member := range obj {
			ps, ok := s.Properties.Get(name)
			if !ok {
				continue
			}
			if nested {
				member = prune(ps, member, true)
			}
			out[name] = member
		}
		return out
	case TypeArray:
		list, ok := value.([]any)
		if !ok {
			return value
		}
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = prune(s.Items, item, nested)
		}
		return out
	}
	return value
}
