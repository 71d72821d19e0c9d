package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/fieldtree/internal/convert"
	"github.com/nibzard/fieldtree/internal/field"
	"github.com/nibzard/fieldtree/internal/tree"
)

// EditorOptions configures the interactive editor.
type EditorOptions struct {
	// Title is shown above the tree, usually the file being edited.
	Title string
	// Indent is passed to convert.Export when saving.
	Indent int
	// Save persists exported schema text. A nil Save disables saving.
	Save func(data []byte) error
}

// RunEditor edits root interactively and returns the tree as it was when the
// editor quit.
func RunEditor(ctx context.Context, root *field.Node, opts EditorOptions) (*field.Node, error) {
	if !IsTTY(os.Stdout) {
		return nil, fmt.Errorf("editor requires a TTY")
	}

	model := newEditorModel(root, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return nil, err
	}
	if m, ok := finalModel.(*editorModel); ok {
		return m.root, nil
	}
	return root, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type editorModel struct {
	opts     EditorOptions
	root     *field.Node
	expanded tree.Expanded
	cursor   int

	renaming bool
	input    string

	dirty       bool
	confirmQuit bool
	showHelp    bool
	status      string
	err         error
}

func newEditorModel(root *field.Node, opts EditorOptions) *editorModel {
	return &editorModel{
		opts:     opts,
		root:     root,
		expanded: tree.ExpandAll(root),
	}
}

func (m *editorModel) Init() tea.Cmd {
	return nil
}

func (m *editorModel) rows() []tree.Row[*field.Node] {
	return tree.Visible(m.root, m.expanded)
}

// selected returns the node under the cursor.
func (m *editorModel) selected() *field.Node {
	rows := m.rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	return rows[m.cursor].Node
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.renaming {
		m.updateRename(key)
		return m, nil
	}

	k := key.String()
	if k != "q" {
		m.confirmQuit = false
	}
	m.err = nil
	m.status = ""

	switch k {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.dirty && !m.confirmQuit {
			m.confirmQuit = true
			m.status = "Unsaved changes. Press q again to discard them."
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case "enter", " ":
		m.expanded = m.expanded.Toggle(m.selected().Key, false)
	case "right", "l":
		m.expanded = m.expanded.Toggle(m.selected().Key, true)
	case "left", "h":
		if n := m.selected(); m.expanded.Has(n.Key) {
			m.expanded = m.expanded.Toggle(n.Key, false)
		}
	case "E":
		m.expanded = tree.ExpandAll(m.root)
	case "a":
		m.addChild()
	case "d", "delete":
		m.remove()
	case "t":
		m.cycleKind()
	case "r":
		m.toggleRequired()
	case "x":
		m.toggleAdditional()
	case "e", "f2":
		if m.cursor == 0 {
			m.status = "The root has no property name."
			break
		}
		m.renaming = true
		m.input = m.selected().PropertyKey
	case "s", "ctrl+s":
		m.save()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *editorModel) updateRename(key tea.KeyMsg) {
	switch key.Type {
	case tea.KeyEnter:
		n := m.selected()
		if m.input != n.PropertyKey {
			m.commit(field.SetPropertyKey(m.root, n.Key, m.input))
		}
		m.renaming = false
	case tea.KeyEsc:
		m.renaming = false
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(key.Runes)
	}
}

func (m *editorModel) commit(root *field.Node) {
	m.root = root
	m.dirty = true
}

func (m *editorModel) addChild() {
	parent := m.selected()
	if !parent.Kind.HasChildren() {
		m.status = fmt.Sprintf("A %s has no properties.", parent.Kind)
		return
	}
	m.commit(field.AddChild(m.root, parent.Key))
	m.expanded = m.expanded.Toggle(parent.Key, true)

	updated, _ := tree.Find(m.root, parent.Key)
	child := updated.Children[len(updated.Children)-1]
	for i, row := range m.rows() {
		if row.Node.Key == child.Key {
			m.cursor = i
			break
		}
	}
	m.renaming = true
	m.input = ""
}

func (m *editorModel) remove() {
	if m.cursor == 0 {
		m.status = "The root cannot be deleted."
		return
	}
	m.commit(field.Remove(m.root, m.selected().Key))
	m.expanded = tree.Prune(m.expanded, m.root)
	if rows := m.rows(); m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
}

func (m *editorModel) cycleKind() {
	n := m.selected()
	kinds := field.Kinds()
	next := kinds[0]
	for i, k := range kinds {
		if k == n.Kind {
			next = kinds[(i+1)%len(kinds)]
			break
		}
	}
	m.commit(field.SetKind(m.root, n.Key, next))
	m.expanded = tree.Prune(m.expanded, m.root)
}

func (m *editorModel) toggleRequired() {
	if m.cursor == 0 {
		m.status = "The root cannot be required."
		return
	}
	n := m.selected()
	m.commit(field.SetRequired(m.root, n.Key, !n.IsRequired))
}

func (m *editorModel) toggleAdditional() {
	n := m.selected()
	if !n.Kind.HasChildren() {
		m.status = fmt.Sprintf("A %s has no properties.", n.Kind)
		return
	}
	m.commit(field.SetAdditionalProperties(m.root, n.Key, !n.AllowsAdditional()))
}

func (m *editorModel) save() {
	if m.opts.Save == nil {
		m.status = "Saving is disabled."
		return
	}
	if err := field.Validate(m.root); err != nil {
		m.err = err
		return
	}
	data, err := convert.Export(m.root, m.opts.Indent)
	if err != nil {
		m.err = err
		return
	}
	if err := m.opts.Save(data); err != nil {
		m.err = fmt.Errorf("save: %w", err)
		return
	}
	m.dirty = false
	m.status = "Saved."
}

func (m *editorModel) View() string {
	var b strings.Builder

	title := "fieldtree"
	if m.opts.Title != "" {
		title += " - " + m.opts.Title
	}
	if m.dirty {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	for i, row := range m.rows() {
		line := strings.Repeat("  ", row.Depth) + branchMarker(row.Node, m.expanded)
		if i == m.cursor && m.renaming {
			line += "name: " + m.input + "_"
		} else {
			line += FormatNode(row.Node, row.Depth == 0)
		}
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString(m.status + "\n")
	}
	if m.renaming {
		b.WriteString(mutedStyle.Render("enter to confirm | esc to cancel") + "\n")
	} else {
		b.WriteString(mutedStyle.Render("Press ? for help | s to save | q to quit") + "\n")
	}
	return b.String()
}

func branchMarker(n *field.Node, expanded tree.Expanded) string {
	if len(n.Children) == 0 {
		return "  "
	}
	if expanded.Has(n.Key) {
		return "- "
	}
	return "+ "
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j   Move\n")
	b.WriteString("  enter, space   Expand or collapse\n")
	b.WriteString("  right, left    Expand, collapse\n")
	b.WriteString("  E              Expand all\n")
	b.WriteString("  a              Add a property to an object\n")
	b.WriteString("  d              Delete the property\n")
	b.WriteString("  e, F2          Rename the property\n")
	b.WriteString("  t              Cycle the type\n")
	b.WriteString("  r              Toggle required\n")
	b.WriteString("  x              Toggle additional properties\n")
	b.WriteString("  s, ctrl+s      Save\n")
	b.WriteString("  ?              Toggle this help screen\n")
	b.WriteString("  q              Quit\n\n")
}
