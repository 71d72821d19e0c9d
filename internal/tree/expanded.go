package tree

// Expanded is the set of keys whose branches are open in a view. It is kept
// apart from the tree value so that collapsing never discards data.
type Expanded map[string]struct{}

// ExpandAll returns a set holding every key of root.
func ExpandAll[N Node[N]](root N) Expanded {
	e := make(Expanded)
	for _, key := range CollectKeys(root) {
		e[key] = struct{}{}
	}
	return e
}

// Has reports whether key is open.
func (e Expanded) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Toggle returns a new set with key flipped. With forceOpen an already open
// key stays open; editors use that after adding a child so the new node is
// visible.
func (e Expanded) Toggle(key string, forceOpen bool) Expanded {
	next := make(Expanded, len(e)+1)
	for k := range e {
		next[k] = struct{}{}
	}
	if next.Has(key) {
		if !forceOpen {
			delete(next, key)
		}
		return next
	}
	next[key] = struct{}{}
	return next
}

// Prune returns a new set without the keys that no longer exist in root.
func Prune[N Node[N]](e Expanded, root N) Expanded {
	next := make(Expanded, len(e))
	Walk(root, func(node N, _ int) bool {
		if e.Has(node.TreeKey()) {
			next[node.TreeKey()] = struct{}{}
		}
		return true
	})
	return next
}

// Row is one visible line of a rendered tree.
type Row[N any] struct {
	Node  N
	Depth int
	// Last reports whether Node is the final child of its parent.
	Last bool
}

// Visible flattens root into the rows a view shows: every node whose
// ancestors are all open. The root is always visible.
func Visible[N Node[N]](root N, e Expanded) []Row[N] {
	var rows []Row[N]
	var visit func(node N, depth int, last bool)
	visit = func(node N, depth int, last bool) {
		rows = append(rows, Row[N]{Node: node, Depth: depth, Last: last})
		if !e.Has(node.TreeKey()) {
			return
		}
		children := node.TreeChildren()
		for i, child := range children {
			visit(child, depth+1, i == len(children)-1)
		}
	}
	visit(root, 0, true)
	return rows
}
