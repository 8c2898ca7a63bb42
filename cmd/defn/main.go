package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/toyz/defn/internal/cli"
	"github.com/toyz/defn/internal/server"
	"github.com/toyz/defn/internal/utils"
)

const description = "Synthesizes C++ forwarding functions for define_function declarations and decorated definitions.\n\n" +
	"Paths follow the Go convention: './...' scans recursively, a directory scans only its own files."

// CLI is the top-level command-line interface
type CLI struct {
	Config     string `help:"Configuration file (default ${defaultConfig} when present)" short:"c" type:"path"`
	Verbose    bool   `help:"Enable verbose output and detailed error reporting" short:"v" xor:"verbosity"`
	Quiet      bool   `help:"Only show errors and final results" short:"q" xor:"verbosity"`
	Jobs       int    `help:"Files processed at once (0 uses every CPU)" short:"j" default:"0"`
	Profile    string `help:"Enable profiling" enum:",${profileModes}" default:"" placeholder:"MODE"`
	ProfileDir string `help:"Profile output directory" default:"." type:"path"`

	Generate   generateCmd   `cmd:"" help:"Generate headers for .defn files"`
	Check      checkCmd      `cmd:"" help:"Report diagnostics without writing headers"`
	Clean      cleanCmd      `cmd:"" help:"Delete generated headers"`
	Watch      watchCmd      `cmd:"" help:"Regenerate headers whenever a .defn file changes"`
	Serve      serveCmd      `cmd:"" help:"Serve synthesis over HTTP"`
	Decorators decoratorsCmd `cmd:"" help:"List the decorators available to .defn files"`
	Schema     schemaCmd     `cmd:"" help:"Print the JSON schema of the configuration file"`
	Support    supportCmd    `cmd:"" help:"Print the C++ header defining the built-in decorators"`
}

// app carries what every command needs once flags are parsed
type app struct {
	cfg         cli.Config
	jobs        int
	diagnostics *utils.DiagnosticSystem
	reporter    *cli.DiagnosticReporter
	stdout      io.Writer
}

// errReported marks failures whose diagnostics were already printed
var errReported = stderrors.New("errors were reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes the selected command and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var c CLI
	exitCode := -1

	parser, err := kong.New(&c,
		kong.Name("defn"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
		kong.Vars{
			"defaultConfig": cli.DefaultConfigFile,
			"defaultAddr":   server.DefaultAddr,
			"profileModes":  strings.Join(profileModes(), ","),
		},
	)
	if err != nil {
		fmt.Fprintf(stderr, "defn: %v\n", err)
		return 2
	}

	ktx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	a, err := c.newApp(stdout, stderr)
	if err != nil {
		cli.NewDiagnosticReporter(stderr, c.Verbose, false).ReportError(err)
		return 1
	}

	defer startProfile(c.Profile, c.ProfileDir, a.diagnostics)()

	if err := ktx.Run(a); err != nil {
		if !stderrors.Is(err, errReported) {
			a.reporter.ReportError(err)
		}
		return 1
	}
	return 0
}

// newApp builds the diagnostics and loads the configuration selected by the flags
func (c *CLI) newApp(stdout, stderr io.Writer) (*app, error) {
	level := utils.DiagnosticInfo
	switch {
	case c.Quiet:
		level = utils.DiagnosticError
	case c.Verbose:
		level = utils.DiagnosticDebug
	}
	diagnostics := utils.NewDiagnosticSystem(level)
	diagnostics.SetOutput(stdout, stderr)
	diagnostics.SetShowTime(false)

	path, required := c.Config, true
	if path == "" {
		path, required = cli.DefaultConfigFile, false
	}
	cfg, err := cli.LoadConfig(path, required)
	if err != nil {
		return nil, err
	}
	diagnostics.Debug("Loaded configuration from %s", path)

	return &app{
		cfg:         cfg,
		jobs:        c.Jobs,
		diagnostics: diagnostics,
		reporter:    cli.NewDiagnosticReporter(stderr, c.Verbose, diagnostics.Colors()),
		stdout:      stdout,
	}, nil
}

func (a *app) generator() (*cli.Generator, error) {
	return cli.NewGenerator(a.cfg, a.jobs, a.diagnostics, a.reporter)
}
