package tree

import (
	"fmt"
	"strings"
)

// Node is the constraint satisfied by editable tree nodes. N is the concrete
// node type, usually a pointer.
type Node[N any] interface {
	// TreeKey returns the node's identifier, unique within one tree.
	TreeKey() string
	// TreeChildren returns the ordered child list. It may be nil.
	TreeChildren() []N
	// WithChildren returns a shallow copy of the node holding children.
	// The receiver must not be modified.
	WithChildren(children []N) N
}

// Entry describes one node's position in an Index.
type Entry[N any] struct {
	Node N
	// Path is the dot/bracket child-index chain leading to Node.
	Path string
	// Parent is the enclosing node. HasParent is false for the root.
	Parent     N
	HasParent  bool
	ParentPath string
	// Depth is 0 for the root.
	Depth int
}

// Index maps node keys to their position in a tree.
type Index[N any] map[string]Entry[N]

// BuildIndex walks root depth-first once and records every node by key.
func BuildIndex[N Node[N]](root N) Index[N] {
	return BuildIndexWithPrefix(root, "")
}

// BuildIndexWithPrefix is BuildIndex with every path rooted at prefix. The
// root's own path and parent path are the prefix itself.
func BuildIndexWithPrefix[N Node[N]](root N, prefix string) Index[N] {
	idx := make(Index[N])
	var visit func(node N, parent N, hasParent bool, path []string, parentPath string, depth int)
	visit = func(node N, parent N, hasParent bool, path []string, parentPath string, depth int) {
		current := strings.Join(path, ".")
		idx[node.TreeKey()] = Entry[N]{
			Node:       node,
			Path:       current,
			Parent:     parent,
			HasParent:  hasParent,
			ParentPath: parentPath,
			Depth:      depth,
		}
		for i, child := range node.TreeChildren() {
			childPath := make([]string, len(path), len(path)+1)
			copy(childPath, path)
			childPath = append(childPath, fmt.Sprintf("children[%d]", i))
			visit(child, node, true, childPath, current, depth+1)
		}
	}

	var none N
	var path []string
	if prefix != "" {
		path = []string{prefix}
	}
	visit(root, none, false, path, prefix, 0)
	return idx
}

// Clone returns a deep copy of root.
func Clone[N Node[N]](root N) N {
	children := root.TreeChildren()
	if children == nil {
		return root.WithChildren(nil)
	}
	copied := make([]N, len(children))
	for i, child := range children {
		copied[i] = Clone(child)
	}
	return root.WithChildren(copied)
}

// AddChild returns a deep copy of root in which a node produced by newNode
// has been appended to the children of the node keyed parentKey. When no node
// has that key the copy is returned unchanged and newNode is not called.
func AddChild[N Node[N]](root N, parentKey string, newNode func() N) N {
	added := false
	var add func(node N) N
	add = func(node N) N {
		children := node.TreeChildren()
		if !added && node.TreeKey() == parentKey {
			added = true
			copied := make([]N, 0, len(children)+1)
			for _, child := range children {
				copied = append(copied, Clone(child))
			}
			return node.WithChildren(append(copied, newNode()))
		}
		if children == nil {
			return node.WithChildren(nil)
		}
		copied := make([]N, len(children))
		for i, child := range children {
			copied[i] = add(child)
		}
		return node.WithChildren(copied)
	}
	return add(root)
}

// Remove returns a copy of root without the node keyed targetKey and its
// subtree. ok is false when root itself carries targetKey, in which case the
// whole tree is gone and the returned node is the zero value.
func Remove[N Node[N]](root N, targetKey string) (N, bool) {
	if root.TreeKey() == targetKey {
		var none N
		return none, false
	}
	var rebuild func(node N) N
	rebuild = func(node N) N {
		children := node.TreeChildren()
		if children == nil {
			return node.WithChildren(nil)
		}
		kept := make([]N, 0, len(children))
		for _, child := range children {
			if child.TreeKey() == targetKey {
				continue
			}
			kept = append(kept, rebuild(child))
		}
		return node.WithChildren(kept)
	}
	return rebuild(root), true
}

// Update returns a copy of root in which the node keyed key has been replaced
// by edit(node). Only the nodes on the path to the edited node are copied; the
// rest of the tree is shared with the input. A missing key returns root as is.
func Update[N Node[N]](root N, key string, edit func(N) N) N {
	var update func(node N) (N, bool)
	update = func(node N) (N, bool) {
		if node.TreeKey() == key {
			return edit(node), true
		}
		children := node.TreeChildren()
		for i, child := range children {
			updated, ok := update(child)
			if !ok {
				continue
			}
			copied := make([]N, len(children))
			copy(copied, children)
			copied[i] = updated
			return node.WithChildren(copied), true
		}
		return node, false
	}
	updated, _ := update(root)
	return updated
}

// Find returns the node keyed key.
func Find[N Node[N]](root N, key string) (N, bool) {
	var found N
	ok := false
	Walk(root, func(node N, _ int) bool {
		if node.TreeKey() == key {
			found, ok = node, true
			return false
		}
		return true
	})
	return found, ok
}

// Walk visits root and its descendants depth-first, parents before children.
// Returning false from fn stops the walk.
func Walk[N Node[N]](root N, fn func(node N, depth int) bool) {
	var walk func(node N, depth int) bool
	walk = func(node N, depth int) bool {
		if !fn(node, depth) {
			return false
		}
		for _, child := range node.TreeChildren() {
			if !walk(child, depth+1) {
				return false
			}
		}
		return true
	}
	walk(root, 0)
}

// Count returns the number of nodes in the tree.
func Count[N Node[N]](root N) int {
	n := 0
	Walk(root, func(N, int) bool {
		n++
		return true
	})
	return n
}

// CollectKeys returns every key in depth-first order.
func CollectKeys[N Node[N]](root N) []string {
	var keys []string
	Walk(root, func(node N, _ int) bool {
		keys = append(keys, node.TreeKey())
		return true
	})
	return keys
}
