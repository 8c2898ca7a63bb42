package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/toyz/defn/internal/cli"
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/server"
	"github.com/toyz/defn/internal/templates"
)

type generateCmd struct {
	Paths []string `arg:"" optional:"" help:"Files, directories or './...' patterns (default ./...)"`
}

func (g *generateCmd) Run(ctx context.Context, a *app) error {
	a.diagnostics.Section("generate")

	gen, err := a.generator()
	if err != nil {
		return err
	}
	summary, err := gen.Run(ctx, g.Paths, true)
	if err != nil {
		a.reporter.ReportError(err)
		return errReported
	}

	a.reporter.ReportSuccess(summary)
	a.diagnostics.Summary("Generation complete", map[string]interface{}{
		"Files":        summary.FilesProcessed,
		"Declarations": summary.Declarations,
		"Entities":     summary.EntitiesGenerated,
		"Written":      len(summary.GeneratedFiles),
		"Unchanged":    summary.Unchanged,
		"Warnings":     summary.Warnings,
	})
	return nil
}

type checkCmd struct {
	Paths []string `arg:"" optional:"" help:"Files, directories or './...' patterns (default ./...)"`
}

func (c *checkCmd) Run(ctx context.Context, a *app) error {
	a.diagnostics.Section("check")

	gen, err := a.generator()
	if err != nil {
		return err
	}
	summary, err := gen.Run(ctx, c.Paths, false)
	if err != nil {
		a.reporter.ReportError(err)
		return errReported
	}
	a.reporter.ReportSuccess(summary)
	return nil
}

type cleanCmd struct {
	Paths []string `arg:"" optional:"" help:"Files, directories or './...' patterns (default ./...)"`
}

func (c *cleanCmd) Run(a *app) error {
	a.diagnostics.Section("clean")

	removed, err := cli.NewCleaner(a.cfg.HeaderSuffix).CleanGeneratedFiles(c.Paths)
	a.diagnostics.Indent()
	for _, path := range removed {
		a.diagnostics.Done("removed %s", path)
	}
	a.diagnostics.Unindent()
	if err != nil {
		return err
	}

	a.diagnostics.Success("Removed %d generated headers", len(removed))
	return nil
}

type watchCmd struct {
	Paths []string `arg:"" optional:"" help:"Files, directories or './...' patterns (default ./...)"`
}

func (w *watchCmd) Run(ctx context.Context, a *app) error {
	a.diagnostics.Section("watch")

	gen, err := a.generator()
	if err != nil {
		return err
	}
	return cli.NewWatcher(gen, w.Paths, a.diagnostics, a.reporter).Run(ctx)
}

type serveCmd struct {
	Addr string `help:"Listen address" default:"${defaultAddr}"`
}

func (s *serveCmd) Run(ctx context.Context, a *app) error {
	a.diagnostics.Section("serve")

	gen, err := a.generator()
	if err != nil {
		return err
	}
	return server.New(gen.CodeGenerator(), a.diagnostics).Start(ctx, s.Addr)
}

type decoratorsCmd struct{}

func (decoratorsCmd) Run(a *app) error {
	registry, err := a.cfg.Registry()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tEXPRESSION\tEFFECT")
	for _, d := range registry.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name(), d.Kind(), d.Expression(), d.Kind().Summary())
	}
	return tw.Flush()
}

type schemaCmd struct{}

func (schemaCmd) Run(a *app) error {
	data, err := cli.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

type supportCmd struct {
	Output string `help:"Write the header to this file instead of stdout" short:"o" type:"path"`
}

func (s *supportCmd) Run(a *app) error {
	header, err := templates.RenderSupport()
	if err != nil {
		return err
	}
	if s.Output == "" {
		_, err = fmt.Fprint(a.stdout, header)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.Output), 0755); err != nil {
		return errors.WrapFileSystemError("create directory for", s.Output, err)
	}
	if err := os.WriteFile(s.Output, []byte(header), 0644); err != nil {
		return errors.WrapFileSystemError("write", s.Output, err)
	}
	a.diagnostics.Written(s.Output)
	return nil
}
