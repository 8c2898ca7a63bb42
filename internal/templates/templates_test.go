package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/defn/internal/models"
)

func cref(base string) models.TypeRef {
	return models.TypeRef{Const: true, Base: base, Ref: models.RefLValue}
}

func geoScope() *models.Scope {
	return &models.Scope{Kind: models.ScopeNamespace, Name: "geo", Path: []string{"geo"}, Namespaces: 1}
}

func widgetScope() *models.Scope {
	return &models.Scope{Kind: models.ScopeClass, Name: "Widget", Path: []string{"geo", "Widget"}, Namespaces: 1}
}

func areaSynthesis() models.Synthesis {
	params := []models.Parameter{{Type: cref("Shape"), Name: "s"}}
	return models.Synthesis{
		Target: "area",
		Scope:  geoScope(),
		Binding: models.ClosureBinding{
			Name:    "__defn_area_0badc0de_binding",
			Closure: models.Closure{Expression: "::trace::traced(&__defn_area_0badc0de)"},
		},
		Renamed: &models.RenamedDefinition{
			InternalName: "__defn_area_0badc0de",
			Function: models.FunctionDefinition{
				Name:   "__defn_area_0badc0de",
				Params: params,
				Return: models.TypeRef{Base: "double"},
				Body:   "return s.w * s.h;",
			},
		},
		Entities: []models.GeneratedEntity{{
			Name:      "area",
			Mode:      models.FreeMode,
			Params:    params,
			Return:    models.TypeRef{Base: "double"},
			Inline:    true,
			Binding:   "__defn_area_0badc0de_binding",
			Arguments: []string{"s"},
		}},
	}
}

func drawSynthesis() models.Synthesis {
	variadic := &models.TemplateParameterList{Params: []models.TemplateParameter{
		{Kind: models.TemplateTypeParam, Pack: true, Name: "Args", Spelling: "class... Args"},
	}}
	return models.Synthesis{
		Target: "draw",
		Scope:  widgetScope(),
		Binding: models.ClosureBinding{
			Name:    "__defn_draw_1234abcd_binding",
			Closure: models.Closure{Expression: "::defn::variadic(&geo::Widget::__defn_draw_1234abcd)"},
		},
		Renamed: &models.RenamedDefinition{
			InternalName: "__defn_draw_1234abcd",
			Function: models.FunctionDefinition{
				Name:       "__defn_draw_1234abcd",
				Params:     []models.Parameter{{Type: models.TypeRef{Base: "int"}, Name: "depth"}},
				Return:     models.TypeRef{Base: "void"},
				Qualifiers: models.OperatorQualifiers{Const: true},
				Body:       "paint(depth);",
			},
		},
		Entities: []models.GeneratedEntity{{
			Name:       "draw",
			Mode:       models.MemberMode,
			Owner:      "geo::Widget",
			Template:   variadic,
			Params:     []models.Parameter{{Type: models.TypeRef{Base: "Args", Ref: models.RefRValue, Pack: true}, Name: "args"}},
			Return:     models.TypeRef{Base: "decltype(auto)"},
			Qualifiers: models.OperatorQualifiers{Const: true},
			Inline:     true,
			Binding:    "__defn_draw_1234abcd_binding",
			Arguments:  []string{"*this", "std::forward<Args>(args)..."},
		}},
	}
}

func TestRender_FreeFunction(t *testing.T) {
	got, err := NewRenderer(Options{}).Render("shapes.defn", []models.Synthesis{areaSynthesis()})
	require.NoError(t, err)

	want := `// Code generated by defn from shapes.defn. DO NOT EDIT.

#ifndef DEFN_GENERATED_SHAPES_DEFN_HPP_MEMBERS
#define DEFN_GENERATED_SHAPES_DEFN_HPP_MEMBERS

#endif // DEFN_GENERATED_SHAPES_DEFN_HPP_MEMBERS

#if !defined(DEFN_MEMBERS_ONLY) && !defined(DEFN_GENERATED_SHAPES_DEFN_HPP)
#define DEFN_GENERATED_SHAPES_DEFN_HPP

#include <utility>

namespace geo {

inline auto __defn_area_0badc0de(const Shape& s) -> double {
    return s.w * s.h;
}

inline constexpr auto __defn_area_0badc0de_binding = ::trace::traced(&__defn_area_0badc0de);

inline auto area(const Shape& s) -> double {
    return __defn_area_0badc0de_binding(s);
}

} // namespace geo

#endif // DEFN_GENERATED_SHAPES_DEFN_HPP
`
	assert.Equal(t, want, got)
}

func TestRender_MemberFunction(t *testing.T) {
	r := NewRenderer(Options{SupportInclude: "defn/support.hpp"})
	got, err := r.Render("ui/widget.defn", []models.Synthesis{areaSynthesis(), drawSynthesis()})
	require.NoError(t, err)

	assert.Contains(t, got, "// Include this header with DEFN_MEMBERS_ONLY defined")
	assert.Contains(t, got, "#define DEFN_MEMBERS_Widget() \\\n"+
		"    auto __defn_draw_1234abcd(int depth) const -> void; \\\n"+
		"    template <class... Args> decltype(auto) draw(Args&&... args) const; \\\n"+
		"    static_assert(true, \"\")\n")

	assert.Contains(t, got, "inline auto Widget::__defn_draw_1234abcd(int depth) const -> void {\n    paint(depth);\n}")
	assert.Contains(t, got, "template <class... Args>\ninline decltype(auto) Widget::draw(Args&&... args) const {\n"+
		"    return __defn_draw_1234abcd_binding(*this, std::forward<Args>(args)...);\n}")
	assert.Contains(t, got, "#include <utility>\n#include \"defn/support.hpp\"\n")

	// both syntheses live in geo, so they share one namespace block
	assert.Equal(t, 1, strings.Count(got, "namespace geo {"))
	assert.Less(t, strings.Index(got, "area(const Shape& s)"), strings.Index(got, "Widget::draw"))
}

func TestRender_SectionsFollowSourceOrder(t *testing.T) {
	global := areaSynthesis()
	global.Scope = nil
	other := areaSynthesis()
	other.Scope = &models.Scope{Kind: models.ScopeNamespace, Name: "b", Path: []string{"a", "b"}, Namespaces: 2}

	got, err := NewRenderer(Options{Includes: []string{"shapes.hpp", "<utility>"}}).
		Render("shapes.defn", []models.Synthesis{areaSynthesis(), global, other, areaSynthesis()})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(got, "namespace geo {"))
	assert.Contains(t, got, "namespace a::b {")
	assert.Equal(t, 1, strings.Count(got, "#include <utility>"))
	assert.Contains(t, got, "#include \"shapes.hpp\"")
	assert.NotContains(t, got, "support")
}

func TestAssignMacros(t *testing.T) {
	classes := []*classData{
		{Path: []string{"geo", "Widget"}},
		{Path: []string{"ui", "Widget"}},
		{Path: []string{"ui", "Panel"}},
	}
	assignMacros(classes)

	assert.Equal(t, "DEFN_MEMBERS_geo_Widget", classes[0].Macro)
	assert.Equal(t, "DEFN_MEMBERS_ui_Widget", classes[1].Macro)
	assert.Equal(t, "DEFN_MEMBERS_Panel", classes[2].Macro)
}

func TestFunction_Declarator(t *testing.T) {
	tests := []struct {
		name string
		fn   function
		want string
	}{
		{
			name: "trailing return",
			fn:   function{Name: "f", Params: []models.Parameter{{Type: models.TypeRef{Base: "int"}, Name: "x"}}, Return: models.TypeRef{Base: "int"}},
			want: "auto f(int x) -> int",
		},
		{
			name: "placeholder leads",
			fn:   function{Name: "f", Return: models.TypeRef{Base: "auto"}},
			want: "auto f()",
		},
		{
			name: "qualified member",
			fn: function{
				Owner:      "Widget",
				Name:       "g",
				Return:     models.TypeRef{Base: "void"},
				Qualifiers: models.OperatorQualifiers{Const: true, Ref: models.RefLValue},
				Noexcept:   true,
			},
			want: "auto Widget::g() const& noexcept -> void",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn.declarator())
		})
	}
}

func TestFunction_ConstexprDefinition(t *testing.T) {
	fn := function{Name: "sq", Constexpr: true, Params: []models.Parameter{{Type: models.TypeRef{Base: "int"}, Name: "x"}}, Return: models.TypeRef{Base: "int"}}
	assert.Equal(t, "inline constexpr auto sq(int x) -> int {\n    return x * x;\n}", fn.Definition("return x * x;"))
	assert.Equal(t, "constexpr auto sq(int x) -> int;", fn.Declaration())
}

func TestIndentBody(t *testing.T) {
	assert.Equal(t, "", indentBody("  \n "))
	assert.Equal(t, "    return 1;", indentBody("return 1;"))
	assert.Equal(t, "    if (x) {\n        y();\n    }", indentBody("if (x) {\n      y();\n  }"))
}

func TestGuardName(t *testing.T) {
	assert.Equal(t, "DEFN_GENERATED_SHAPES_DEFN_HPP", guardName("shapes.defn"))
	assert.Equal(t, "DEFN_GENERATED_MY_SHAPES_DEFN_HPP", guardName("src/geo/my-shapes.defn"))
}

func TestRenderSupport(t *testing.T) {
	got, err := RenderSupport()
	require.NoError(t, err)

	assert.Contains(t, got, "namespace defn {")
	for _, name := range []string{"preserve", "nothrow", "variadic", "receivers"} {
		assert.Contains(t, got, "constexpr auto "+name+"(F f) {")
	}
	assert.Equal(t, 1, strings.Count(got, "noexcept ->"))
}
