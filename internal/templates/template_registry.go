package templates

import (
	"sync"
	"text/template"

	"github.com/toyz/defn/internal/errors"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string

	once     sync.Once
	compiled *template.Template
	err      error
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerHeaderTemplates()
	registry.registerMemberTemplates()
	registry.registerSupportTemplates()

	return registry
}

func (tr *TemplateRegistry) registerHeaderTemplates() {
	// Two passes over the same file: member macros first, definitions after
	tr.templates["header"] = `// Code generated by defn from {{.Source}}. DO NOT EDIT.
{{- if .Classes}}
//
// Include this header with DEFN_MEMBERS_ONLY defined before the classes it
// extends, expand each DEFN_MEMBERS_* macro inside its class, and include it
// again once the classes are complete.
{{- end}}

#ifndef {{.Guard}}_MEMBERS
#define {{.Guard}}_MEMBERS
{{range .Classes}}
{{template "members-macro" .}}
{{end}}
#endif // {{.Guard}}_MEMBERS

#if !defined(DEFN_MEMBERS_ONLY) && !defined({{.Guard}})
#define {{.Guard}}

{{range .Includes}}#include {{.}}
{{end}}{{range .Sections}}
{{if .Namespace}}namespace {{.Namespace}} {

{{end}}{{range .Blocks}}{{.}}

{{end}}{{if .Namespace}}} // namespace {{.Namespace}}
{{end}}{{end}}
#endif // {{.Guard}}
`

	tr.templates["binding"] = `inline constexpr auto {{.Name}} = {{.Closure.Expression}};`
}

func (tr *TemplateRegistry) registerMemberTemplates() {
	// A trailing static_assert lets the macro be used with a semicolon
	tr.templates["members-macro"] = `#define {{.Macro}}() \
{{range .Lines}}    {{.}} \
{{end}}    static_assert(true, "")`
}

// compile parses every registered template into one set, once
func (tr *TemplateRegistry) compile() (*template.Template, error) {
	tr.once.Do(func() {
		root := template.New("defn")
		for name, text := range tr.templates {
			if _, err := root.New(name).Parse(text); err != nil {
				tr.err = errors.WrapTemplateError(name, "parse", err)
				return
			}
		}
		tr.compiled = root
	})
	return tr.compiled, tr.err
}

// DefaultTemplateRegistry is the registry used by renderers
var DefaultTemplateRegistry = NewTemplateRegistry()
