package templates

import (
	"strings"

	"github.com/toyz/defn/internal/decorators"
)

func (tr *TemplateRegistry) registerSupportTemplates() {
	tr.templates["support"] = `// Code generated by defn. DO NOT EDIT.
#pragma once

#include <functional>
#include <utility>

namespace {{.Namespace}} {
{{range .Decorators}}
// {{.Name}} {{.Summary}}
template <class F>
constexpr auto {{.Name}}(F f) {
    return [f](auto&&... args) {{if .Noexcept}}noexcept {{end}}-> decltype(auto) {
        return std::invoke(f, std::forward<decltype(args)>(args)...);
    };
}
{{end}}
} // namespace {{.Namespace}}
`
}

type supportDecorator struct {
	Name     string
	Summary  string
	Noexcept bool
}

// RenderSupport renders the header defining the built-in decorators. Every
// built-in forwards through std::invoke; the kinds differ only in the
// signatures the generator declares for them.
func RenderSupport() (string, error) {
	data := struct {
		Namespace  string
		Decorators []supportDecorator
	}{
		Namespace: strings.TrimPrefix(decorators.BuiltinNamespace, "::"),
	}
	for _, kind := range decorators.Kinds() {
		data.Decorators = append(data.Decorators, supportDecorator{
			Name:     string(kind),
			Summary:  kind.Summary(),
			Noexcept: kind == decorators.KindNothrow,
		})
	}
	return executeRegistered(DefaultTemplateRegistry, "support", data)
}

// usesBuiltins reports whether an expression calls a built-in decorator
func usesBuiltins(expression string) bool {
	return strings.Contains(expression, decorators.BuiltinNamespace+"::")
}
