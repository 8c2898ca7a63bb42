package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/generator"
	"github.com/toyz/defn/internal/models"
	"github.com/toyz/defn/internal/parser"
	"github.com/toyz/defn/internal/utils"
)

// GenerationSummary contains information about one generation run
type GenerationSummary struct {
	FilesProcessed    int
	Declarations      int
	EntitiesGenerated int
	Unchanged         int
	Warnings          int
	GeneratedFiles    []string
}

// FileResult is the outcome of generating one source file
type FileResult struct {
	Source string
	Header *models.GeneratedHeader
	Err    error
	Cached bool
}

// Generator coordinates the CLI generation process
type Generator struct {
	scanner       *DirectoryScanner
	parser        parser.UnitParser
	codeGenerator *generator.Generator
	diagnostics   *utils.DiagnosticSystem
	reporter      *DiagnosticReporter
	cache         *utils.FileCache[*models.GeneratedHeader]
	jobs          int
}

// NewGenerator creates a CLI generator from the project configuration.
// jobs bounds the number of files processed at once; zero means GOMAXPROCS.
func NewGenerator(cfg Config, jobs int, diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) (*Generator, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	options, err := cfg.GeneratorOptions()
	if err != nil {
		return nil, err
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	return &Generator{
		scanner:       NewDirectoryScanner(options.HeaderSuffix),
		parser:        parser.New(),
		codeGenerator: generator.NewGenerator(options, registry),
		diagnostics:   diagnostics,
		reporter:      reporter,
		cache:         utils.NewFileCache[*models.GeneratedHeader](),
		jobs:          jobs,
	}, nil
}

// Scanner returns the scanner used to find sources
func (g *Generator) Scanner() *DirectoryScanner {
	return g.scanner
}

// Run generates headers for every source matched by patterns. When write is
// false nothing is written and the run only reports diagnostics.
func (g *Generator) Run(ctx context.Context, patterns []string, write bool) (GenerationSummary, error) {
	sources, err := g.scanner.ScanSources(patterns)
	if err != nil {
		return GenerationSummary{}, err
	}
	if len(sources) == 0 {
		return GenerationSummary{}, errors.New(errors.GenerationErrorCode, "no .defn files found").
			WithSuggestions(
				"Check that the directories contain .defn files",
				"Use './...' to scan directories recursively",
			)
	}

	g.diagnostics.Verbose("Found %d source files", len(sources))
	return g.RunFiles(ctx, sources, write)
}

// RunFiles generates headers for the given sources
func (g *Generator) RunFiles(ctx context.Context, sources []string, write bool) (GenerationSummary, error) {
	results, err := g.GenerateFiles(ctx, sources)
	if err != nil {
		return GenerationSummary{}, err
	}

	summary := GenerationSummary{GeneratedFiles: make([]string, 0)}
	errs := errors.NewMultipleErrors()

	if write {
		g.diagnostics.Phase("Writing")
		g.diagnostics.Indent()
		defer g.diagnostics.Unindent()
	}

	for _, res := range results {
		if res.Err != nil {
			errs.AddError(res.Err)
			continue
		}

		summary.FilesProcessed++
		summary.Declarations += len(res.Header.Syntheses)
		summary.EntitiesGenerated += res.Header.EntityCount()
		for _, syn := range res.Header.Syntheses {
			for _, w := range syn.Warnings {
				summary.Warnings++
				g.reporter.ReportWarning(w)
			}
		}

		if !write {
			continue
		}
		changed, err := writeHeader(res.Header)
		if err != nil {
			errs.AddError(err)
			continue
		}
		if !changed {
			summary.Unchanged++
			g.diagnostics.Verbose("%s is up to date", res.Header.FilePath)
			continue
		}
		summary.GeneratedFiles = append(summary.GeneratedFiles, res.Header.FilePath)
		g.diagnostics.Written(res.Header.FilePath)
	}

	return summary, errs.ErrOrNil()
}

// GenerateFiles generates every source concurrently, at most jobs at a time.
// Results are returned in the order of sources.
func (g *Generator) GenerateFiles(ctx context.Context, sources []string) ([]FileResult, error) {
	results := make([]FileResult, len(sources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.jobs)

	for i, source := range sources {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = g.generateFile(source)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.diagnostics.Debug("%d headers cached", g.cache.Len())
	return results, nil
}

// generateFile parses and generates one source, reusing the cached header
// when the file has not changed since it was last generated
func (g *Generator) generateFile(source string) FileResult {
	if header, ok := g.cache.Get(source); ok {
		g.diagnostics.Debug("Reusing header for %s", source)
		return FileResult{Source: source, Header: header, Cached: true}
	}

	g.diagnostics.Debug("Generating %s", source)
	unit, err := g.parser.ParseFile(source)
	if err != nil {
		return FileResult{Source: source, Err: err}
	}

	header, err := g.codeGenerator.Generate(unit)
	if err != nil {
		return FileResult{Source: source, Err: err}
	}

	if err := g.cache.Set(source, header); err != nil {
		g.diagnostics.Debug("Not caching %s: %v", source, err)
	}
	return FileResult{Source: source, Header: header}
}

// Forget drops the cached header of source
func (g *Generator) Forget(source string) {
	g.cache.Delete(source)
}

// writeHeader writes the header unless the file already holds the same content
func writeHeader(header *models.GeneratedHeader) (bool, error) {
	existing, err := os.ReadFile(header.FilePath)
	if err == nil && bytes.Equal(existing, []byte(header.Content)) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(header.FilePath), 0755); err != nil {
		return false, errors.WrapFileSystemError("create directory for", header.FilePath, err)
	}
	if err := os.WriteFile(header.FilePath, []byte(header.Content), 0644); err != nil {
		return false, errors.WrapFileSystemError("write", header.FilePath, err).
			WithSuggestion("Check write permissions for the target directory")
	}
	return true, nil
}

// CodeGenerator returns the generator shared by every file
func (g *Generator) CodeGenerator() *generator.Generator {
	return g.codeGenerator
}

// HeaderPath returns where the header for source is written
func (g *Generator) HeaderPath(source string) string {
	return g.codeGenerator.HeaderPath(source)
}
