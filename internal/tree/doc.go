// Package tree implements structural edits over rooted trees of keyed nodes.
//
// The package is generic: any node type that can report its key, list its
// children, and produce a copy of itself with a different child list can be
// edited. Trees are treated as immutable snapshots. Every mutation returns a
// new root and leaves the input untouched, so callers own the transition to
// the "current" tree:
//
//	root = tree.AddChild(root, parentKey, newNode)
//	root, ok := tree.Remove(root, key)
//	if !ok {
//		// the root itself was deleted
//	}
//
// Addressing a key that does not exist is a no-op, not an error. Editors race
// with their own deletions (a click on a node that was just removed), and the
// right outcome there is an unchanged tree.
//
// # Paths
//
// BuildIndex records a positional path for every node, encoded as a chain of
// child indexes:
//
//	""                          the root
//	"children[0]"               first child of the root
//	"children[0].children[2]"   third child of that child
//
// Paths are for consumers that address nodes by position (form field names,
// status lines). The mutation functions address nodes by key only.
//
// # Expansion state
//
// Which branches are visually open is tracked by Expanded, a set of keys kept
// beside the tree value. Collapsing a branch never touches the tree.
package tree
