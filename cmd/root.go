// Package cmd implements the CLI command structure for fieldtree.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/fieldtree/internal/config"
	"github.com/nibzard/fieldtree/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	log     *log.Logger
}

// Run executes the fieldtree CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fieldtree", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(fs, stdout)
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	cfg := cws.Config
	a := &app{
		cfg:     cfg,
		sources: cws,
		log:     logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stderr)
		return fmt.Errorf("%w: no command given", errUsage)
	}
	subcommand, remaining := remaining[0], remaining[1:]
	a.log.Debug("running command", "command", subcommand, "args", remaining)

	switch subcommand {
	case "validate":
		return a.validateCommand(ctx, remaining)
	case "tree":
		return a.treeCommand(remaining)
	case "schema":
		return a.schemaCommand(remaining)
	case "check":
		return a.checkCommand(remaining)
	case "diff":
		return a.diffCommand(remaining)
	case "edit":
		return a.editCommand(ctx, remaining)
	case "column":
		return a.columnCommand(remaining)
	case "config":
		return a.configCommand(remaining)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func versionCommand() error {
	fmt.Fprintf(stdout, "fieldtree version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "fieldtree - edit and validate dataset column structures")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fieldtree [global options] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate <schema>...       Check schemas against the strict structure rules")
	fmt.Fprintln(w, "  tree <schema>              Print the field tree of a schema")
	fmt.Fprintln(w, "  schema <tree>              Convert a field tree (JSON or YAML) to a schema")
	fmt.Fprintln(w, "  check <schema> <value>     Validate a value against a schema")
	fmt.Fprintln(w, "  diff <old> <new>           Show the JSON Patch between two schemas")
	fmt.Fprintln(w, "  edit <schema>              Edit a schema's field tree in the terminal")
	fmt.Fprintln(w, "  column <column>            Show or rework a stored dataset column")
	fmt.Fprintln(w, "  config [-example|-check f] Show the effective configuration")
	fmt.Fprintln(w, "  version                    Show version information")
	fmt.Fprintln(w, "  help                       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Files may be given as - to read standard input.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}

// configCommand prints the effective configuration and where each value
// came from.
func (a *app) configCommand(args []string) error {
	fs := flag.NewFlagSet("fieldtree config", flag.ContinueOnError)
	example := fs.Bool("example", false, "Print an example config file")
	check := fs.String("check", "", "Check a config file for unknown keys and invalid values")
	if _, err := parseArgs(fs, args, 0, "config [-example] [-check file]"); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}
	if *check != "" {
		path := config.ExpandPath(*check)
		if _, err := config.LoadFile(path); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: ok\n", path)
		return nil
	}

	if file := a.sources.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "# config file: %s\n", file)
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(stdout, "%-20s %-8s (%s)\n", field, a.cfg.Value(field), a.sources.Sources[field])
	}
	return nil
}

// readInput reads a named file, or standard input for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// parseArgs parses a subcommand's flags and checks its positional argument
// count. Flags may also follow the positional arguments.
func parseArgs(fs *flag.FlagSet, args []string, want int, usage string) ([]string, error) {
	fs.SetOutput(stderr)
	var rest []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		rest = append(rest, args[0])
		args = args[1:]
	}
	if want >= 0 && len(rest) != want {
		return nil, fmt.Errorf("%w: fieldtree %s", errUsage, usage)
	}
	if want < 0 && len(rest) == 0 {
		return nil, fmt.Errorf("%w: fieldtree %s", errUsage, usage)
	}
	return rest, nil
}

func isYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
