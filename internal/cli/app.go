// Package cli implements the mailfold command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dgellow/mailfold/internal/config"
	"github.com/dgellow/mailfold/internal/listio"
	"github.com/dgellow/mailfold/internal/log"
)

// Exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1 // runtime error, or find matched nothing
	ExitUsage    = 2
	usageSummary = `Usage: mailfold [flags] <command> [command flags] [files...]

Commands:
  dedupe              print each address once, first occurrence wins (case-insensitive)
  find -domain D      print the index of the first address in domain D
  count               print the number of addresses per domain
  serve               serve the commands as MCP tools

Files are read in order, one address per line. No files, or "-", reads stdin.
Entries without '@' are ignored.

Flags:
`
)

var errUsage = errors.New("usage error")

// App is the CLI application
type App struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Stdin   io.Reader
	Version string

	cfg    config.Config
	format config.OutputFormat
}

// Run parses args and dispatches the command. args excludes the program name.
func (a *App) Run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("mailfold", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	configPath := fs.String("config", "", "path to config file")
	format := fs.String("format", "", "output format: text or json (overrides config)")
	version := fs.Bool("version", false, "print version and exit")
	configInit := fs.String("config-init", "", "generate default config file at specified path")
	validate := fs.Bool("validate", false, "validate config file and exit")
	fs.Usage = func() {
		fmt.Fprint(a.Stderr, usageSummary)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if *version {
		fmt.Fprintln(a.Stdout, a.Version)
		return ExitOK
	}

	if *configInit != "" {
		if err := generateDefaultConfig(*configInit); err != nil {
			log.LogError("Failed to generate config: %v", err)
			return ExitFailure
		}
		fmt.Fprintf(a.Stdout, "Generated default config at: %s\n", *configInit)
		return ExitOK
	}

	if *validate {
		if *configPath == "" {
			fmt.Fprintln(a.Stderr, "Error: -config flag is required for validation")
			return ExitUsage
		}
		if err := a.validateConfig(*configPath); err != nil {
			return ExitFailure
		}
		return ExitOK
	}

	if err := a.loadConfig(*configPath, *format); err != nil {
		log.LogError("%v", err)
		return ExitFailure
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return ExitUsage
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	code, err := a.dispatch(ctx, cmd, cmdArgs)
	if err != nil {
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		log.LogErrorWithFields("cli", "Command failed", map[string]any{
			"command": cmd,
			"error":   err.Error(),
		})
		return ExitFailure
	}
	return code
}

func (a *App) loadConfig(path, format string) error {
	a.cfg = config.Default()
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.cfg = cfg

		if err := log.SetLogLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("applying log level: %w", err)
		}
		if err := log.SetLogFormat(cfg.Log.Format); err != nil {
			return fmt.Errorf("applying log format: %w", err)
		}
	}

	a.format = a.cfg.Output.Format
	if format != "" {
		a.format = config.OutputFormat(format)
	}
	switch a.format {
	case config.OutputFormatText, config.OutputFormatJSON:
	default:
		return fmt.Errorf("invalid -format %q: must be text or json", format)
	}
	return nil
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) (int, error) {
	switch cmd {
	case "dedupe":
		return a.runDedupe(ctx, args)
	case "find":
		return a.runFind(ctx, args)
	case "count":
		return a.runCount(ctx, args)
	case "serve":
		return a.runServe(ctx, args)
	default:
		fmt.Fprintf(a.Stderr, "Error: unknown command %q\nRun with -help for usage information\n", cmd)
		return ExitUsage, errUsage
	}
}

func (a *App) reader() *listio.Reader {
	return &listio.Reader{
		Stdin:          a.Stdin,
		MaxConcurrency: a.cfg.Input.MaxConcurrentFiles,
	}
}

func (a *App) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.Stderr, "Usage: mailfold %s\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseCommand parses command flags; a nil error with done set means -h was handled
func parseCommand(fs *flag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return true, errUsage
	}
	return false, nil
}
