package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/fieldtree/internal/column"
	"github.com/nibzard/fieldtree/internal/config"
	"github.com/nibzard/fieldtree/internal/convert"
	"github.com/nibzard/fieldtree/internal/field"
	"github.com/nibzard/fieldtree/internal/parallel"
	"github.com/nibzard/fieldtree/internal/schema"
	"github.com/nibzard/fieldtree/internal/tree"
	"github.com/nibzard/fieldtree/internal/ui"
)

// validateCommand checks each schema against the strict rules and reports
// every violation. It fails if any schema is invalid.
func (a *app) validateCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fieldtree validate", flag.ContinueOnError)
	quiet := fs.Bool("q", false, "Only report failures")
	jobs := fs.Int("j", runtime.NumCPU(), "Schemas to check at once")
	paths, err := parseArgs(fs, args, -1, "validate [-q] [-j n] <schema>...")
	if err != nil {
		return err
	}
	if *jobs < 0 {
		return fmt.Errorf("%w: -j must not be negative", errUsage)
	}
	stdinCount := 0
	for _, path := range paths {
		if path == "-" {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return fmt.Errorf("%w: standard input (-) can be given only once", errUsage)
	}

	pool := parallel.NewPool[[]byte](ctx, *jobs, false)
	for _, path := range paths {
		pool.Submit(path, func(context.Context) ([]byte, error) {
			return readInput(path)
		})
	}

	results := pool.Wait()
	if errs := parallel.Errors(results); len(errs) > 0 {
		return multierror.Append(nil, errs...)
	}

	failed := 0
	for _, r := range results {
		if r.Skipped {
			return ctx.Err()
		}
		if _, err := schema.Parse(r.Value); err != nil {
			failed++
			fmt.Fprintf(stdout, "%s: %s\n", r.ID, schema.ErrInvalidStructure)
			for _, line := range violationLines(err) {
				fmt.Fprintf(stdout, "  %s\n", line)
			}
			continue
		}
		a.log.Debug("schema is valid", "file", r.ID, "took", r.Duration)
		if !*quiet {
			fmt.Fprintf(stdout, "%s: ok\n", r.ID)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d schemas: %w", failed, len(paths), schema.ErrInvalidStructure)
	}
	return nil
}

// violationLines returns one line per strict rule violation in a Parse
// error. Errors that carry no violation list, such as malformed JSON, give a
// single line.
func violationLines(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		lines := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			lines[i] = e.Error()
		}
		return lines
	}
	return []string{strings.TrimPrefix(err.Error(), schema.ErrInvalidStructure.Error()+": ")}
}

// treeCommand prints the field tree of a schema.
func (a *app) treeCommand(args []string) error {
	fs := flag.NewFlagSet("fieldtree tree", flag.ContinueOnError)
	output := fs.String("o", a.cfg.Output, "Output format (text, json, yaml)")
	paths, err := parseArgs(fs, args, 1, "tree <schema> [-o text|json|yaml]")
	if err != nil {
		return err
	}

	root, err := a.importFile(paths[0])
	if err != nil {
		return err
	}
	return writeTree(root, *output)
}

func writeTree(root *field.Node, output string) error {
	switch output {
	case config.OutputText:
		return ui.RenderTree(stdout, root)
	case config.OutputJSON:
		return writeJSON(stdout, root, true)
	case config.OutputYAML:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: unknown output %q", errUsage, output)
}

// schemaCommand converts a field tree file to schema text.
func (a *app) schemaCommand(args []string) error {
	fs := flag.NewFlagSet("fieldtree schema", flag.ContinueOnError)
	indent := fs.Int("indent", a.cfg.Indent, "Spaces per level (0 for compact)")
	paths, err := parseArgs(fs, args, 1, "schema <tree.json|tree.yaml>")
	if err != nil {
		return err
	}

	data, err := readInput(paths[0])
	if err != nil {
		return err
	}
	root := &field.Node{}
	if isYAMLPath(paths[0]) {
		err = yaml.Unmarshal(data, root)
	} else {
		err = json.Unmarshal(data, root)
	}
	if err != nil {
		return fmt.Errorf("%s: decode tree: %w", paths[0], err)
	}
	if err := field.Validate(root); err != nil {
		return fmt.Errorf("%s: %w", paths[0], err)
	}

	out, err := convert.Export(root, *indent)
	if err != nil {
		return fmt.Errorf("%s: %w", paths[0], err)
	}
	a.log.Debug("converted tree", "file", paths[0], "nodes", tree.Count(root))
	_, err = fmt.Fprintf(stdout, "%s\n", out)
	return err
}

// checkCommand validates a value against a schema and prints it after any
// configured transformation.
func (a *app) checkCommand(args []string) error {
	fs := flag.NewFlagSet("fieldtree check", flag.ContinueOnError)
	strict := fs.Bool("strict", a.cfg.StrictAdditional, "Reject undeclared object members")
	removeExtra := fs.Bool("remove-extra", a.cfg.RemoveExtraFields, "Remove undeclared object members")
	required := fs.Bool("required", false, "Reject an empty value")
	paths, err := parseArgs(fs, args, 2, "check <schema> <value.json>")
	if err != nil {
		return err
	}

	text, err := readInput(paths[0])
	if err != nil {
		return err
	}
	if _, err := schema.Parse(text); err != nil {
		return fmt.Errorf("%s: %w", paths[0], err)
	}
	value, err := readInput(paths[1])
	if err != nil {
		return err
	}

	col := column.Schema{
		Name:        paths[1],
		ContentType: column.ContentTypeText,
		TextSchema:  string(text),
		IsRequired:  *required,
	}
	if *removeExtra {
		col.DefaultTransformations = []column.Transformation{
			{Type: column.RemoveExtraFields, Global: true},
		}
	}

	checked, err := col.CheckValue(string(value), column.CheckOptions{Strict: *strict})
	if err != nil {
		return err
	}
	return writeJSON(stdout, checked, false)
}

// diffCommand prints the JSON Patch between two schemas, one operation per
// line.
func (a *app) diffCommand(args []string) error {
	fs := flag.NewFlagSet("fieldtree diff", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print the patch as a JSON document")
	paths, err := parseArgs(fs, args, 2, "diff <old> <new>")
	if err != nil {
		return err
	}

	docs := make([][]byte, len(paths))
	for i, path := range paths {
		data, err := readInput(path)
		if err != nil {
			return err
		}
		if _, err := schema.Parse(data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		docs[i] = data
	}

	patch, err := convert.Diff(docs[0], docs[1])
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(stdout, patch, true)
	}
	for _, op := range patch {
		line := fmt.Sprintf("%s %s", op.Type, op.Path)
		if op.Value != nil {
			var value strings.Builder
			if err := writeJSON(&value, op.Value, false); err != nil {
				return err
			}
			line += " " + strings.TrimSuffix(value.String(), "\n")
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

// editCommand opens the interactive editor on a schema file. A missing file
// starts from an empty object.
func (a *app) editCommand(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("fieldtree edit", flag.ContinueOnError)
	paths, err := parseArgs(flags, args, 1, "edit <schema>")
	if err != nil {
		return err
	}
	path := config.ExpandPath(paths[0])

	root, err := a.importFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		root = &field.Node{
			Key:                  field.NewKey(),
			Kind:                 field.Object,
			AdditionalProperties: field.Bool(false),
			Children:             []*field.Node{},
		}
		a.log.Info("starting a new schema", "file", path)
	} else if err != nil {
		return err
	}

	_, err = ui.RunEditor(ctx, root, ui.EditorOptions{
		Title:  path,
		Indent: a.cfg.Indent,
		Save: func(data []byte) error {
			return os.WriteFile(path, append(data, '\n'), 0644)
		},
	})
	return err
}

// importFile reads and strictly imports a schema file.
func (a *app) importFile(path string) (*field.Node, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	root, err := convert.Import(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.log.Debug("imported schema", "file", path, "nodes", tree.Count(root))
	return root, nil
}

// writeJSON encodes v followed by a newline. Kind names such as
// "array<object>" are written as is, not HTML-escaped.
func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// columnCommand shows a stored dataset column and its structure. The
// structure can be replaced from schema text or closed to additional
// properties, and the result written back.
func (a *app) columnCommand(args []string) error {
	fs := flag.NewFlagSet("fieldtree column", flag.ContinueOnError)
	schemaFile := fs.String("schema", "", "Replace the structure with this schema text")
	force := fs.Bool("force", false, "With -schema, clear the structure if the text is invalid")
	reset := fs.Bool("reset-additional", false, "Close every object to additional properties")
	write := fs.Bool("w", false, "Write the result back to the column file")
	paths, err := parseArgs(fs, args, 1, "column [-schema file [-force]] [-reset-additional] [-w] <column.json|yaml>")
	if err != nil {
		return err
	}
	path := paths[0]
	if *write && path == "-" {
		return fmt.Errorf("%w: -w needs a column file, not standard input", errUsage)
	}

	data, err := readInput(path)
	if err != nil {
		return err
	}
	var col column.Schema
	if isYAMLPath(path) {
		err = yaml.Unmarshal(data, &col)
	} else {
		err = json.Unmarshal(data, &col)
	}
	if err != nil {
		return fmt.Errorf("%s: decode column: %w", path, err)
	}

	e, err := column.ToEditable(col)
	if err != nil {
		return err
	}
	if *schemaFile != "" {
		text, err := readInput(*schemaFile)
		if err != nil {
			return err
		}
		if err := e.SwitchInput(column.InputJSON, false); err != nil {
			return err
		}
		e.Text = string(text)
		if err := e.SwitchInput(column.InputForm, *force); err != nil {
			return fmt.Errorf("%s: %w", *schemaFile, err)
		}
		a.log.Debug("replaced column structure", "column", col.Name, "schema", *schemaFile)
	}
	if *reset {
		e.ResetAdditionalProperties()
	}

	out, err := e.ToSchema()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "name: %s\n", out.Name)
	fmt.Fprintf(stdout, "type: %s\n", e.Type)
	fmt.Fprintf(stdout, "content: %s\n", out.ContentType)
	fmt.Fprintf(stdout, "advanced: %t\n", out.ShowAdvancedConfig())
	if e.Tree != nil {
		if err := ui.RenderTree(stdout, e.Tree); err != nil {
			return err
		}
	}

	if !*write {
		return nil
	}
	var buf strings.Builder
	if isYAMLPath(path) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else if err := writeJSON(&buf, out, true); err != nil {
		return err
	}
	target := config.ExpandPath(path)
	a.log.Info("writing column", "file", target)
	return os.WriteFile(target, []byte(buf.String()), 0644)
}
