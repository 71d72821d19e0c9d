package field

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/nibzard/fieldtree/internal/tree"
)

// Node is one property in a column's structure tree.
type Node struct {
	// Key identifies the node within its tree. Keys are generated on
	// creation and carry no meaning; conversions regenerate them.
	Key string `json:"key" yaml:"key"`
	// PropertyKey is the property name the node occupies in its parent
	// object. It is empty on the root.
	PropertyKey string `json:"propertyKey,omitempty" yaml:"propertyKey,omitempty"`
	Kind        Kind   `json:"type" yaml:"type"`
	// IsRequired is meaningful only when the parent has an object kind.
	IsRequired bool `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	// AdditionalProperties is meaningful only on Object and ArrayOf(Object).
	// Nil means unspecified: the wire form omits the keyword, which JSON
	// Schema reads as allowed.
	AdditionalProperties *bool `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	// Children is populated only for Object and ArrayOf(Object).
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewKey returns a process-unique opaque node key.
func NewKey() string {
	return uuid.NewString()
}

// NewNode returns the node an editor inserts for "add field": a string
// that disallows additional properties should it become an object.
func NewNode() *Node {
	return &Node{
		Key:                  NewKey(),
		Kind:                 String,
		AdditionalProperties: Bool(false),
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// AllowsAdditional reports whether object instances may carry undeclared
// properties. Unspecified reads as allowed.
func (n *Node) AllowsAdditional() bool {
	return n.AdditionalProperties == nil || *n.AdditionalProperties
}

// TreeKey implements tree.Node.
func (n *Node) TreeKey() string { return n.Key }

// TreeChildren implements tree.Node.
func (n *Node) TreeChildren() []*Node { return n.Children }

// WithChildren implements tree.Node.
func (n *Node) WithChildren(children []*Node) *Node {
	cp := *n
	if n.AdditionalProperties != nil {
		cp.AdditionalProperties = Bool(*n.AdditionalProperties)
	}
	cp.Children = children
	return &cp
}

// AddChild returns a copy of root with a NewNode appended under the node
// keyed parentKey. A missing parent leaves the copy unchanged.
func AddChild(root *Node, parentKey string) *Node {
	return tree.AddChild(root, parentKey, NewNode)
}

// Remove returns a copy of root without the node keyed key. It returns nil
// when key is the root's own key.
func Remove(root *Node, key string) *Node {
	next, ok := tree.Remove(root, key)
	if !ok {
		return nil
	}
	return next
}

func edit(root *Node, key string, fn func(n *Node)) *Node {
	return tree.Update(root, key, func(n *Node) *Node {
		cp := n.WithChildren(n.Children)
		fn(cp)
		return cp
	})
}

// SetKind changes the kind of the node keyed key. Children are dropped
// when the new kind cannot hold them; switching between Object and
// ArrayOf(Object) keeps them.
func SetKind(root *Node, key string, kind Kind) *Node {
	return edit(root, key, func(n *Node) {
		if !kind.HasChildren() {
			n.Children = nil
		}
		n.Kind = kind
	})
}

// SetPropertyKey renames the node keyed key.
func SetPropertyKey(root *Node, key, propertyKey string) *Node {
	return edit(root, key, func(n *Node) { n.PropertyKey = propertyKey })
}

// SetRequired sets whether the node keyed key is required in its parent.
func SetRequired(root *Node, key string, required bool) *Node {
	return edit(root, key, func(n *Node) { n.IsRequired = required })
}

// SetAdditionalProperties sets the additional-properties flag of the node
// keyed key.
func SetAdditionalProperties(root *Node, key string, allowed bool) *Node {
	return edit(root, key, func(n *Node) { n.AdditionalProperties = Bool(allowed) })
}

// ResetAdditionalProperties returns a copy of root in which every node
// disallows additional properties.
func ResetAdditionalProperties(root *Node) *Node {
	var reset func(n *Node) *Node
	reset = func(n *Node) *Node {
		var children []*Node
		if n.Children != nil {
			children = make([]*Node, len(n.Children))
			for i, child := range n.Children {
				children[i] = reset(child)
			}
		}
		cp := n.WithChildren(children)
		cp.AdditionalProperties = Bool(false)
		return cp
	}
	return reset(root)
}

// HasAdditionalProperties reports whether any node in the tree explicitly
// allows additional properties.
func HasAdditionalProperties(root *Node) bool {
	found := false
	tree.Walk(root, func(n *Node, _ int) bool {
		if n.AdditionalProperties != nil && *n.AdditionalProperties {
			found = true
			return false
		}
		return true
	})
	return found
}

// Validate reports structural problems that would make the tree lose data
// on conversion: invalid kinds, children under kinds that cannot hold them,
// and empty or duplicate property keys among siblings. Node keys must be
// set and unique across the tree.
func Validate(root *Node) error {
	var result *multierror.Error
	keys := make(map[string]string)

	var walk func(n *Node, path string)
	walk = func(n *Node, path string) {
		where := path
		if where == "" {
			where = "root"
		}
		switch first, dup := keys[n.Key]; {
		case n.Key == "":
			result = multierror.Append(result, fmt.Errorf("%s: empty key", where))
		case dup:
			result = multierror.Append(result, fmt.Errorf("%s: duplicate key %q (first at %s)", where, n.Key, first))
		default:
			keys[n.Key] = where
		}
		if !n.Kind.Valid() {
			result = multierror.Append(result, fmt.Errorf("%s: invalid kind", where))
		}
		if len(n.Children) > 0 && !n.Kind.HasChildren() {
			result = multierror.Append(result, fmt.Errorf("%s: kind %s cannot have children", where, n.Kind))
		}

		seen := make(map[string]bool, len(n.Children))
		for i, child := range n.Children {
			at := childPath(path, i)
			switch {
			case child.PropertyKey == "":
				result = multierror.Append(result, fmt.Errorf("%s: empty property key", at))
			case seen[child.PropertyKey]:
				result = multierror.Append(result, fmt.Errorf("%s: duplicate property key %q", at, child.PropertyKey))
			}
			seen[child.PropertyKey] = true
			walk(child, at)
		}
	}
	if root != nil {
		walk(root, "")
	}
	return result.ErrorOrNil()
}

func childPath(base string, i int) string {
	p := fmt.Sprintf("children[%d]", i)
	if base == "" {
		return p
	}
	return base + "." + p
}

// Equal reports whether a and b describe the same structure. Keys are
// ignored, as are fields that carry no meaning for a node's kind: the
// additional-properties flag and children of kinds without children.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.PropertyKey != b.PropertyKey || a.IsRequired != b.IsRequired {
		return false
	}
	if !a.Kind.HasChildren() {
		return true
	}
	if !equalFlag(a.AdditionalProperties, b.AdditionalProperties) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func equalFlag(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
