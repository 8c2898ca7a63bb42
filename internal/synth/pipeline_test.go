package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/defn/internal/decorators"
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

func namespaceScope(path ...string) *models.Scope {
	return &models.Scope{Kind: models.ScopeNamespace, Name: path[len(path)-1], Path: path}
}

func classScope(path ...string) *models.Scope {
	return &models.Scope{Kind: models.ScopeClass, Name: path[len(path)-1], Path: path}
}

func decorated(fn models.FunctionDefinition, names ...string) *models.DecoratedDefinition {
	def := &models.DecoratedDefinition{Function: fn, Loc: fn.Loc}
	for i, n := range names {
		def.Decorators = append(def.Decorators, models.DecoratorRef{
			Name: n,
			Loc:  models.SourceLocation{File: fn.Loc.File, Line: fn.Loc.Line - len(names) + i, Column: 1},
		})
	}
	return def
}

func testRegistry(t *testing.T) decorators.Registry {
	t.Helper()
	r := decorators.NewBuiltinRegistry().Clone()
	traced, err := decorators.New("traced", "::trace::traced", decorators.KindPreserve)
	require.NoError(t, err)
	require.NoError(t, r.Register(traced))
	return r
}

func TestInternalName(t *testing.T) {
	geo := namespaceScope("geo")

	name := InternalName(geo, "area")
	assert.Regexp(t, `^__defn_area_[0-9a-f]{8}$`, name)
	assert.Equal(t, name, InternalName(namespaceScope("geo"), "area"))
	assert.NotEqual(t, name, InternalName(namespaceScope("ui"), "area"))
	assert.NotEqual(t, name, InternalName(nil, "area"))
	assert.Equal(t, name+"_binding", BindingName(geo, "area"))
}

func TestEngine_DecorateFreeFunction(t *testing.T) {
	scope := namespaceScope("geo")
	fn := models.FunctionDefinition{
		Name:   "area",
		Params: []models.Parameter{{Type: cref("Shape"), Name: "s"}},
		Return: val("double"),
		Body:   "return s.w * s.h;",
		Loc:    testLoc,
	}

	syn, err := NewEngine(DefaultOptions()).Decorate(scope, decorated(fn, "traced"), testRegistry(t))
	require.NoError(t, err)

	internal := InternalName(scope, "area")
	require.NotNil(t, syn.Renamed)
	assert.Equal(t, internal, syn.Renamed.InternalName)
	assert.Equal(t, internal, syn.Renamed.Function.Name)
	assert.Equal(t, "area", fn.Name)

	assert.Equal(t, "::trace::traced(&"+internal+")", syn.Binding.Closure.Expression)
	assert.Equal(t, internal+"_binding", syn.Binding.Name)
	assert.Equal(t, testLoc, syn.Binding.Loc)

	require.Len(t, syn.Entities, 1)
	entity := syn.Entities[0]
	assert.Equal(t, "area", entity.Name)
	assert.Equal(t, models.FreeMode, entity.Mode)
	assert.Equal(t, []string{"s"}, entity.Arguments)
	assert.Equal(t, "auto area(const Shape& s) -> double", entity.Signature())
}

func TestEngine_DecorateAppliesBottomUp(t *testing.T) {
	scope := classScope("geo", "Widget")
	fn := models.FunctionDefinition{
		Name:       "draw",
		Params:     []models.Parameter{{Type: val("int"), Name: "depth"}},
		Return:     val("void"),
		Qualifiers: models.OperatorQualifiers{Const: true},
		Loc:        testLoc,
	}

	syn, err := NewEngine(DefaultOptions()).Decorate(scope, decorated(fn, "variadic", "traced"), testRegistry(t))
	require.NoError(t, err)

	internal := InternalName(scope, "draw")
	assert.Equal(t, "::defn::variadic(::trace::traced(&geo::Widget::"+internal+"))", syn.Binding.Closure.Expression)

	require.Len(t, syn.Entities, 1)
	entity := syn.Entities[0]
	assert.Equal(t, models.MemberMode, entity.Mode)
	assert.Equal(t, "geo::Widget", entity.Owner)
	assert.Equal(t, models.OperatorQualifiers{Const: true}, entity.Qualifiers)
	assert.Equal(t, "template <class... Args>", entity.Template.String())
	assert.Equal(t, []string{"*this", "std::forward<Args>(args)..."}, entity.Arguments)
}

func TestEngine_DecorateReceivers(t *testing.T) {
	scope := classScope("Counter")
	fn := models.FunctionDefinition{
		Name:       "value",
		Return:     val("int"),
		Qualifiers: models.OperatorQualifiers{Const: true},
		Loc:        testLoc,
	}

	syn, err := NewEngine(DefaultOptions()).Decorate(scope, decorated(fn, "receivers"), testRegistry(t))
	require.NoError(t, err)
	require.Len(t, syn.Entities, 2)
	assert.Equal(t, "auto Counter::value() -> int", syn.Entities[0].Signature())
	assert.Equal(t, "auto Counter::value() const -> int", syn.Entities[1].Signature())

	t.Run("non-const member", func(t *testing.T) {
		fn.Qualifiers = models.OperatorQualifiers{}
		_, err := NewEngine(DefaultOptions()).Decorate(scope, decorated(fn, "receivers"), testRegistry(t))
		require.Error(t, err)
		assert.Equal(t, errors.DecoratorTargetErrorCode, errors.CodeOf(err))
	})
}

func TestEngine_DecorateErrors(t *testing.T) {
	freeFn := models.FunctionDefinition{Name: "area", Return: val("double"), Loc: testLoc}

	t.Run("unknown decorator", func(t *testing.T) {
		def := decorated(freeFn, "presrve")
		_, err := NewEngine(DefaultOptions()).Decorate(namespaceScope("geo"), def, testRegistry(t))
		require.Error(t, err)

		var unknown *errors.UnknownDecoratorError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, def.Decorators[0].Loc, unknown.Location())
		assert.Contains(t, unknown.Suggestions(), "Did you mean '@preserve'?")
	})

	t.Run("member-only decorator on a free function", func(t *testing.T) {
		def := decorated(freeFn, "receivers")
		_, err := NewEngine(DefaultOptions()).Decorate(namespaceScope("geo"), def, testRegistry(t))
		require.Error(t, err)
		assert.Equal(t, errors.DecoratorTargetErrorCode, errors.CodeOf(err))

		defnErr, ok := errors.Find(err)
		require.True(t, ok)
		assert.Equal(t, def.Decorators[0].Loc, defnErr.Location())
	})
}

func TestEngine_Define(t *testing.T) {
	twice := models.ClosureDecl{
		Name: "twice",
		Closure: models.Closure{
			Expression: "[](auto f) { return f(f); }",
			Operators: []models.OverloadSignature{
				withTemplate(overload(val("decltype(auto)"), rref("F")), "", typeParam("F")),
			},
		},
	}
	unit := &models.Unit{File: "shapes.defn", Closures: []models.ClosureDecl{twice}}
	scope := namespaceScope("geo")

	t.Run("named closure", func(t *testing.T) {
		def := &models.DefineFunction{Name: "again", Callable: models.CallableRef{ClosureName: "twice"}, Loc: testLoc}
		syn, err := NewEngine(DefaultOptions()).Define(unit, scope, def)
		require.NoError(t, err)
		assert.Nil(t, syn.Renamed)
		assert.Equal(t, twice.Closure.Expression, syn.Binding.Closure.Expression)
		require.Len(t, syn.Entities, 1)
		assert.Equal(t, []string{"std::forward<F>(arg0)"}, syn.Entities[0].Arguments)
	})

	t.Run("inline closure", func(t *testing.T) {
		closure := models.Closure{Expression: "scale_impl", Operators: []models.OverloadSignature{overload(val("double"), val("double"))}}
		def := &models.DefineFunction{Name: "scale", Callable: models.CallableRef{Inline: &closure}, Loc: testLoc}
		syn, err := NewEngine(DefaultOptions()).Define(unit, scope, def)
		require.NoError(t, err)
		require.Len(t, syn.Entities, 1)
		assert.Equal(t, BindingName(scope, "scale")+"(arg0)", syn.Entities[0].Call())
	})

	t.Run("unknown closure", func(t *testing.T) {
		def := &models.DefineFunction{Name: "again", Callable: models.CallableRef{ClosureName: "twic"}, Loc: testLoc}
		_, err := NewEngine(DefaultOptions()).Define(unit, scope, def)

		var unknown *errors.UnknownClosureError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, testLoc, unknown.Location())
		assert.Contains(t, unknown.Suggestions(), "Did you mean 'twice'?")
	})
}

func TestCallableForm(t *testing.T) {
	tests := []struct {
		name         string
		qualifiers   models.OperatorQualifiers
		wantReceiver string
	}{
		{name: "unqualified", wantReceiver: "Widget&"},
		{name: "lvalue qualified", qualifiers: models.OperatorQualifiers{Ref: models.RefLValue}, wantReceiver: "Widget&"},
		{name: "const", qualifiers: models.OperatorQualifiers{Const: true}, wantReceiver: "const Widget&"},
		{name: "rvalue qualified", qualifiers: models.OperatorQualifiers{Ref: models.RefRValue}, wantReceiver: "Widget&&"},
		{name: "const rvalue qualified", qualifiers: models.OperatorQualifiers{Const: true, Ref: models.RefRValue}, wantReceiver: "const Widget&&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := models.FunctionDefinition{
				Name:       "impl",
				Params:     []models.Parameter{{Type: val("int"), Name: "n"}},
				Return:     val("void"),
				Qualifiers: tt.qualifiers,
			}
			closure := CallableForm(fn, classScope("Widget"))
			require.Len(t, closure.Operators, 1)
			params := closure.Operators[0].Params
			require.Len(t, params, 2)
			assert.Equal(t, tt.wantReceiver, params[0].Type.String())
			assert.Equal(t, 1, params[1].Index)
			assert.Equal(t, "&Widget::impl", closure.Expression)
		})
	}

	t.Run("templates are wrapped", func(t *testing.T) {
		fn := models.FunctionDefinition{
			Name:   "impl",
			Params: []models.Parameter{{Type: models.TypeRef{Base: "auto", Ref: models.RefRValue}, Name: "x"}},
			Return: val("void"),
		}
		closure := CallableForm(fn, namespaceScope("geo"))
		assert.Contains(t, closure.Expression, "return impl(std::forward<decltype(args)>(args)...);")
		assert.True(t, closure.Operators[0].Templated)
	})
}
