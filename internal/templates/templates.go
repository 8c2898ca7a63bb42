// Package templates renders synthesized declarations as C++ headers.
package templates

import (
	"bytes"
	"strings"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// Options configures header rendering
type Options struct {
	// Includes are extra include targets, spelled with quotes or angle brackets
	Includes []string
	// SupportInclude is included when a header calls a built-in decorator
	SupportInclude string
}

// Renderer renders the syntheses of one .defn file into a header
type Renderer struct {
	registry *TemplateRegistry
	options  Options
}

// NewRenderer creates a renderer using the default template registry
func NewRenderer(options Options) *Renderer {
	return &Renderer{registry: DefaultTemplateRegistry, options: options}
}

type headerData struct {
	Source   string
	Guard    string
	Includes []string
	Classes  []*classData
	Sections []*sectionData
}

type classData struct {
	Path  []string
	Macro string
	Lines []string
}

type sectionData struct {
	Namespace string
	Blocks    []string
}

// Render renders the header for the syntheses generated from source. Syntheses
// are emitted in order, grouped into namespace blocks.
func (r *Renderer) Render(source string, syntheses []models.Synthesis) (string, error) {
	data := &headerData{Source: source, Guard: guardName(source)}
	classes := make(map[string]*classData)
	builtins := false

	for _, s := range syntheses {
		scope := s.Scope
		if scope == nil {
			scope = &models.Scope{Kind: models.ScopeGlobal}
		}

		var class *classData
		owner := ""
		if scope.Kind == models.ScopeClass {
			key := scope.Qualified()
			if class = classes[key]; class == nil {
				class = &classData{Path: scope.Path}
				classes[key] = class
				data.Classes = append(data.Classes, class)
			}
			owner = strings.Join(scope.ClassPath(), "::")
		}

		blocks, err := r.blocks(s, class, owner)
		if err != nil {
			return "", err
		}
		if usesBuiltins(s.Binding.Closure.Expression) {
			builtins = true
		}

		ns := strings.Join(scope.NamespacePath(), "::")
		if n := len(data.Sections); n > 0 && data.Sections[n-1].Namespace == ns {
			data.Sections[n-1].Blocks = append(data.Sections[n-1].Blocks, blocks...)
		} else {
			data.Sections = append(data.Sections, &sectionData{Namespace: ns, Blocks: blocks})
		}
	}

	assignMacros(data.Classes)
	data.Includes = r.includes(builtins)

	return executeRegistered(r.registry, "header", data)
}

// blocks renders one synthesis: the renamed definition, the binding, then the entities
func (r *Renderer) blocks(s models.Synthesis, class *classData, owner string) ([]string, error) {
	var blocks []string

	if s.Renamed != nil {
		fn := fromDefinition(s.Renamed.InternalName, s.Renamed.Function)
		if class != nil {
			class.Lines = append(class.Lines, fn.Declaration())
			fn.Owner = owner
		}
		blocks = append(blocks, fn.Definition(s.Renamed.Function.Body))
	}

	binding, err := executeRegistered(r.registry, "binding", s.Binding)
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, binding)

	for _, e := range s.Entities {
		fn := fromEntity(e)
		if class != nil {
			class.Lines = append(class.Lines, fn.Declaration())
			fn.Owner = owner
		}
		blocks = append(blocks, fn.Definition("return "+e.Call()+";"))
	}
	return blocks, nil
}

func (r *Renderer) includes(builtins bool) []string {
	im := NewIncludeManager()
	im.Add("<utility>")
	if builtins && r.options.SupportInclude != "" {
		im.Add(r.options.SupportInclude)
	}
	im.Add(r.options.Includes...)
	return im.Includes()
}

// assignMacros names the member macro of every class after its class chain,
// falling back to the full path when two classes would share a name
func assignMacros(classes []*classData) {
	short := func(c *classData) string {
		return MembersMacro(c.Path[len(c.Path)-1:])
	}
	counts := make(map[string]int)
	for _, c := range classes {
		counts[short(c)]++
	}
	for _, c := range classes {
		if counts[short(c)] > 1 {
			c.Macro = MembersMacro(c.Path)
		} else {
			c.Macro = short(c)
		}
	}
}

// executeRegistered executes a registered template with the given data
func executeRegistered(registry *TemplateRegistry, name string, data interface{}) (string, error) {
	tmpl, err := registry.compile()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}
	return buf.String(), nil
}
