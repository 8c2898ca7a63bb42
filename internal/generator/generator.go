package generator

import (
	"path/filepath"
	"strings"

	"github.com/toyz/defn/internal/decorators"
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
	"github.com/toyz/defn/internal/synth"
	"github.com/toyz/defn/internal/templates"
)

// DefaultHeaderSuffix replaces the .defn extension of a source file
const DefaultHeaderSuffix = ".defn.hpp"

// Options configures a Generator
type Options struct {
	Synth        synth.Options
	Render       templates.Options
	HeaderSuffix string
	OutputDir    string // when set, headers are written here instead of next to their source
	Policies     PolicyChecker
}

// Generator implements the CodeGenerator interface
type Generator struct {
	engine     *synth.Engine
	decorators decorators.Registry
	renderer   *templates.Renderer
	options    Options
}

// NewGenerator creates a generator resolving decorators from base. Each unit
// extends its own copy of base with the decorators it declares.
func NewGenerator(options Options, base decorators.Registry) *Generator {
	if options.HeaderSuffix == "" {
		options.HeaderSuffix = DefaultHeaderSuffix
	}
	if base == nil {
		base = decorators.NewBuiltinRegistry()
	}
	return &Generator{
		engine:     synth.NewEngine(options.Synth),
		decorators: base,
		renderer:   templates.NewRenderer(options.Render),
		options:    options,
	}
}

// Decorators returns the registry units are resolved against
func (g *Generator) Decorators() decorators.Registry {
	return g.decorators
}

// Generate synthesizes every declaration of unit and renders the header. All
// declarations are checked so every diagnostic is reported; when any of them
// fails, no header is returned.
func (g *Generator) Generate(unit *models.Unit) (*models.GeneratedHeader, error) {
	if unit == nil {
		return nil, errors.New(errors.GenerationErrorCode, "unit cannot be nil")
	}

	errs := errors.NewMultipleErrors()

	registry := g.decorators.Clone()
	errs.AddError(decorators.Declare(registry, unit))
	errs.AddError(checkClosures(unit))

	var syntheses []models.Synthesis
	unit.Walk(func(scope *models.Scope) {
		seen := make(map[string]models.SourceLocation)
		for _, decl := range scope.Declarations {
			var name string
			var loc models.SourceLocation
			switch {
			case decl.Define != nil:
				name, loc = decl.Define.Name, decl.Define.Loc
			case decl.Decorated != nil:
				name, loc = decl.Decorated.Function.Name, decl.Decorated.Function.Loc
			default:
				continue
			}

			if previous, ok := seen[name]; ok {
				errs.Add(errors.NewDuplicateDeclarationError("function", name, loc, previous).
					WithSuggestion("Declare every overload in one closure; each name is synthesized once per scope"))
				continue
			}
			seen[name] = loc

			var syn models.Synthesis
			var err error
			if decl.Define != nil {
				syn, err = g.engine.Define(unit, scope, decl.Define)
			} else {
				syn, err = g.engine.Decorate(scope, decl.Decorated, registry)
			}
			if err != nil {
				errs.AddError(err)
				continue
			}
			if g.options.Policies != nil {
				if err := g.options.Policies.Check(syn); err != nil {
					errs.AddError(err)
					continue
				}
			}
			syntheses = append(syntheses, syn)
		}
	})

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	content, err := g.renderer.Render(filepath.Base(unit.File), syntheses)
	if err != nil {
		return nil, errors.WrapGenerateError(unit.File, err)
	}

	header := &models.GeneratedHeader{
		SourceFile: unit.File,
		FilePath:   g.HeaderPath(unit.File),
		Content:    content,
		Syntheses:  syntheses,
	}
	for _, syn := range syntheses {
		header.Warnings = append(header.Warnings, syn.Warnings...)
	}
	return header, nil
}

// HeaderPath returns where the header generated from source is written
func (g *Generator) HeaderPath(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + g.options.HeaderSuffix
	if g.options.OutputDir != "" {
		return filepath.Join(g.options.OutputDir, base)
	}
	return filepath.Join(filepath.Dir(source), base)
}

// checkClosures reports closure declarations sharing a name
func checkClosures(unit *models.Unit) error {
	errs := errors.NewMultipleErrors()
	seen := make(map[string]models.SourceLocation)
	for _, c := range unit.Closures {
		if previous, ok := seen[c.Name]; ok {
			errs.Add(errors.NewDuplicateDeclarationError("closure", c.Name, c.Loc, previous))
			continue
		}
		seen[c.Name] = c.Loc
	}
	return errs.ErrOrNil()
}
