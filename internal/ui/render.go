// Package ui provides the terminal views over field trees: a plain text
// rendering and an interactive editor.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/fieldtree/internal/field"
	"github.com/nibzard/fieldtree/internal/tree"
)

// FormatNode returns the one-line description of n shown in tree views,
// such as "name: string required" or "tags: array<object> closed".
func FormatNode(n *field.Node, isRoot bool) string {
	var b strings.Builder
	switch {
	case isRoot:
		b.WriteString("(root)")
	case n.PropertyKey == "":
		b.WriteString("(unnamed)")
	default:
		b.WriteString(n.PropertyKey)
	}
	b.WriteString(": ")
	b.WriteString(n.Kind.String())

	if n.IsRequired && !isRoot {
		b.WriteString(" required")
	}
	if n.Kind.HasChildren() && n.AdditionalProperties != nil {
		if *n.AdditionalProperties {
			b.WriteString(" open")
		} else {
			b.WriteString(" closed")
		}
	}
	return b.String()
}

// RenderTree writes the whole tree as indented text, two spaces per level.
func RenderTree(w io.Writer, root *field.Node) error {
	for _, row := range tree.Visible(root, tree.ExpandAll(root)) {
		line := strings.Repeat("  ", row.Depth) + FormatNode(row.Node, row.Depth == 0)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
