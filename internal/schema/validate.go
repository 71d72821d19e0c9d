package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/nibzard/fieldtree/internal/utils"
)

// MaxDepth bounds object nesting. The root schema is depth 1 and each level
// of "properties" adds one; "items" stays at its array's depth.
const MaxDepth = 5

// ErrInvalidStructure is reported for any document the strict validator
// rejects, including text that is not JSON at all.
var ErrInvalidStructure = errors.New("invalid structure")

// Violation is one failed strict rule.
type Violation struct {
	// Pointer is the JSON Pointer of the offending schema node.
	Pointer string
	Reason  string
}

func (v *Violation) Error() string {
	path := utils.JSONPointerToPath(v.Pointer)
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("%s: %s", path, v.Reason)
}

// Is makes every violation match ErrInvalidStructure.
func (v *Violation) Is(target error) bool {
	return target == ErrInvalidStructure
}

var allowedTypes = map[string]bool{
	TypeString:  true,
	TypeInteger: true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeObject:  true,
	TypeArray:   true,
}

// Validate reports whether doc, a value decoded from JSON into any, is a
// schema the field tree can represent. It never panics on malformed input.
func Validate(doc any) bool {
	return ValidateDepth(doc, 1)
}

// ValidateDepth is Validate for a node that sits at the given nesting depth.
func ValidateDepth(doc any, depth int) bool {
	w := &walker{}
	w.check(doc, "", depth)
	return w.violations == nil
}

// Diagnose applies the same rules as Validate and returns every violation,
// or nil when doc is valid. Each violation matches ErrInvalidStructure.
func Diagnose(doc any) error {
	w := &walker{all: true}
	w.check(doc, "", 1)
	if w.violations == nil {
		return nil
	}
	w.violations.ErrorFormat = func(errs []error) string {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return strings.Join(msgs, "; ")
	}
	return w.violations
}

// Parse decodes and strictly validates a schema document. Every failure,
// including malformed JSON, wraps ErrInvalidStructure.
func Parse(data []byte) (*Schema, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	if err := Diagnose(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	return &s, nil
}

type walker struct {
	// all keeps walking after the first violation.
	all        bool
	violations *multierror.Error
}

func (w *walker) fail(ptr, format string, args ...any) {
	w.violations = multierror.Append(w.violations, &Violation{
		Pointer: ptr,
		Reason:  fmt.Sprintf(format, args...),
	})
}

func (w *walker) stopped() bool {
	return !w.all && w.violations != nil
}

func (w *walker) check(node any, ptr string, depth int) {
	if depth > MaxDepth {
		w.fail(ptr, "nesting exceeds %d levels", MaxDepth)
		return
	}
	obj, ok := node.(map[string]any)
	if !ok {
		w.fail(ptr, "schema must be an object")
		return
	}

	typ, ok := w.checkType(obj, ptr)
	if !ok {
		return
	}
	w.checkKeywords(obj, typ, ptr)
	if w.stopped() {
		return
	}
	switch typ {
	case TypeArray:
		w.checkItems(obj, ptr, depth)
	case TypeObject:
		w.checkProperties(obj, ptr, depth)
	}
}

func (w *walker) checkType(obj map[string]any, ptr string) (string, bool) {
	switch t := obj["type"].(type) {
	case string:
		if !allowedTypes[t] {
			w.fail(ptr+"/type", "unsupported type %q", t)
			return "", false
		}
		return t, true
	case []any:
		w.fail(ptr+"/type", "multiple types are not supported")
	case nil:
		w.fail(ptr, "missing type")
	default:
		w.fail(ptr+"/type", "type must be a string")
	}
	return "", false
}

// checkKeywords rejects keyword values the field tree cannot carry: a
// non-boolean additionalProperties, a required list that is not made of
// names, and properties or items on a type that has no place for them.
func (w *walker) checkKeywords(obj map[string]any, typ, ptr string) {
	switch v := obj["additionalProperties"].(type) {
	case nil, bool:
	default:
		w.fail(ptr+"/additionalProperties", "additionalProperties must be a boolean, got %T", v)
	}

	switch v := obj["required"].(type) {
	case nil:
	case []any:
		for i, name := range v {
			if _, ok := name.(string); !ok {
				w.fail(fmt.Sprintf("%s/required/%d", ptr, i), "required entries must be property names")
			}
		}
	default:
		w.fail(ptr+"/required", "required must be a list of property names")
	}

	if obj["properties"] != nil && typ != TypeObject {
		w.fail(ptr+"/properties", "properties is only allowed on object schemas")
	}
	if obj["items"] != nil && typ != TypeArray {
		w.fail(ptr+"/items", "items is only allowed on array schemas")
	}
}

func (w *walker) checkItems(obj map[string]any, ptr string, depth int) {
	at := ptr + "/items"
	switch items := obj["items"].(type) {
	case nil:
		w.fail(ptr, "array requires items")
	case []any:
		w.fail(at, "tuple items are not supported")
	case map[string]any:
		if t, ok := items["type"].(string); ok && t == TypeArray {
			w.fail(at, "arrays of arrays are not supported")
			return
		}
		w.check(items, at, depth)
	default:
		w.fail(at, "items must be a schema object")
	}
}

func (w *walker) checkProperties(obj map[string]any, ptr string, depth int) {
	raw := obj["properties"]
	if raw == nil {
		return
	}
	props, ok := raw.(map[string]any)
	if !ok {
		w.fail(ptr+"/properties", "properties must be an object")
		return
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if w.stopped() {
			return
		}
		w.check(props[name], utils.AppendPointer(ptr+"/properties", name), depth+1)
	}
}
