package generator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/defn/internal/decorators"
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
	"github.com/toyz/defn/internal/parser"
	"github.com/toyz/defn/internal/policy"
	"github.com/toyz/defn/internal/synth"
	"github.com/toyz/defn/internal/templates"
)

const shapesSource = "decorator traced = `::trace::traced` as preserve;\n" +
	"closure twice = `[](auto f) { return f(f); }` {\n" +
	"  template <class F> auto operator()(F&& f) const -> decltype(auto);\n" +
	"}\n" +
	"namespace geo {\n" +
	"  define_function(scale, `[](double f) { return f * 2; }`) {\n" +
	"    auto operator()(double f) const noexcept -> double;\n" +
	"  }\n" +
	"  define_function(again, twice);\n" +
	"  @traced\n" +
	"  auto area(const Shape& s) -> double { `return s.w * s.h;` }\n" +
	"  struct Widget {\n" +
	"    define_function(resize, `resize_impl`) { auto operator()(Widget& w, int n) const -> void; }\n" +
	"    @variadic @traced\n" +
	"    auto draw(int depth) const -> void { `paint(depth);` }\n" +
	"  }\n" +
	"}\n"

func parseUnit(t *testing.T, src string) *models.Unit {
	t.Helper()
	unit, err := parser.New().Parse(filepath.Join("src", "shapes.defn"), []byte(src))
	require.NoError(t, err)
	return unit
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(Options{Render: templates.Options{SupportInclude: "defn/support.hpp"}}, nil)

	header, err := g.Generate(parseUnit(t, shapesSource))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("src", "shapes.defn.hpp"), header.FilePath)
	assert.Equal(t, filepath.Join("src", "shapes.defn"), header.SourceFile)
	require.Len(t, header.Syntheses, 5)
	assert.Equal(t, 5, header.EntityCount())

	var targets []string
	for _, s := range header.Syntheses {
		targets = append(targets, s.Target)
	}
	assert.Equal(t, []string{"scale", "again", "area", "resize", "draw"}, targets)

	area := header.Syntheses[2]
	internal := synth.InternalName(area.Scope, "area")
	assert.Contains(t, header.Content, "inline constexpr auto "+internal+"_binding = ::trace::traced(&"+internal+");")
	assert.Contains(t, header.Content, "inline auto area(const Shape& s) -> double {\n    return "+internal+"_binding(s);\n}")
	assert.Contains(t, header.Content, "inline auto scale(double f) noexcept -> double {")
	assert.Contains(t, header.Content, "template <class F>\ninline decltype(auto) again(F&& f) {")
	assert.Contains(t, header.Content, "#define DEFN_MEMBERS_Widget() \\")
	assert.Contains(t, header.Content, "    auto resize(int n) -> void; \\")
	assert.Contains(t, header.Content, "#include \"defn/support.hpp\"")
}

func TestGenerator_HeaderPath(t *testing.T) {
	tests := []struct {
		name    string
		options Options
		source  string
		want    string
	}{
		{name: "next to the source", source: filepath.Join("a", "b.defn"), want: filepath.Join("a", "b.defn.hpp")},
		{name: "custom suffix", options: Options{HeaderSuffix: ".gen.h"}, source: "b.defn", want: "b.gen.h"},
		{name: "output directory", options: Options{OutputDir: "include"}, source: filepath.Join("a", "b.defn"), want: filepath.Join("include", "b.defn.hpp")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewGenerator(tt.options, nil).HeaderPath(tt.source))
		})
	}
}

func TestGenerator_CollectsEveryError(t *testing.T) {
	src := "closure c = `x` { auto operator()(int a) const -> void; }\n" +
		"closure c = `y` { auto operator()(int a) const -> void; }\n" +
		"define_function(amb, `impl`) {\n" +
		"  auto operator()(int& a) const -> void;\n" +
		"  auto operator()(const int& a) const -> void;\n" +
		"}\n" +
		"@tarced\n" +
		"auto f() -> int { `return 1;` }\n" +
		"define_function(ok, `impl`) { auto operator()() const -> void; }\n" +
		"define_function(ok, `impl`) { auto operator()() const -> void; }\n"

	header, err := NewGenerator(Options{}, nil).Generate(parseUnit(t, src))
	require.Error(t, err)
	assert.Nil(t, header)

	var multi *errors.MultipleErrors
	require.ErrorAs(t, err, &multi)
	assert.Len(t, withCode(multi, errors.DuplicateDeclarationErrorCode), 2)
	assert.Len(t, withCode(multi, errors.AmbiguousOverloadErrorCode), 1)
	assert.Len(t, withCode(multi, errors.UnknownDecoratorErrorCode), 1)
	assert.Len(t, multi.Errors, 4)
}

func TestGenerator_MixedTemplatePolicy(t *testing.T) {
	src := "define_function(mixed, `impl`) {\n" +
		"  auto operator()(int a) const -> void;\n" +
		"  template <class T> auto operator()(T a) const -> void;\n" +
		"}\n"

	t.Run("warn", func(t *testing.T) {
		header, err := NewGenerator(Options{}, nil).Generate(parseUnit(t, src))
		require.NoError(t, err)
		require.Len(t, header.Warnings, 1)
		assert.Contains(t, header.Warnings[0], "mixes a templated and a non-templated overload")
	})

	t.Run("error", func(t *testing.T) {
		options := Options{Synth: synth.Options{MixedTemplates: synth.MixedTemplatesError}}
		_, err := NewGenerator(options, nil).Generate(parseUnit(t, src))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.TemplateShapeErrorCode))
	})
}

func TestGenerator_Policies(t *testing.T) {
	rules, err := policy.Compile([]policy.Rule{{
		Name:    "members-noexcept",
		Expr:    `mode != "member" or noexcept`,
		Message: "member functions must be noexcept",
	}})
	require.NoError(t, err)

	_, err = NewGenerator(Options{Policies: rules}, nil).Generate(parseUnit(t, shapesSource))
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.ErrorAs(t, err, &multi)
	violations := withCode(multi, errors.PolicyViolationErrorCode)
	assert.Len(t, violations, 2)
	assert.Contains(t, violations[0].Error(), "member functions must be noexcept")
}

func TestGenerator_UnitDecoratorsDoNotLeak(t *testing.T) {
	base := decorators.NewBuiltinRegistry()
	g := NewGenerator(Options{}, base)

	_, err := g.Generate(parseUnit(t, shapesSource))
	require.NoError(t, err)

	_, err = g.Decorators().Resolve("traced")
	assert.Error(t, err)
}

func withCode(multi *errors.MultipleErrors, code errors.ErrorCode) []errors.DefnError {
	var out []errors.DefnError
	for _, err := range multi.Errors {
		if err.ErrorCode() == code {
			out = append(out, err)
		}
	}
	return out
}
