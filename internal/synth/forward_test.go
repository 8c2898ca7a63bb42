package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/defn/internal/models"
)

func TestForwardArgument(t *testing.T) {
	tests := []struct {
		name     string
		param    models.Parameter
		expected string
	}{
		{
			name:     "lvalue reference passes through",
			param:    models.Parameter{Type: lref("Widget"), Category: models.CategoryLValueRef, Name: "w"},
			expected: "w",
		},
		{
			name:     "rvalue reference is moved",
			param:    models.Parameter{Type: rref("std::string"), Category: models.CategoryRValueRef, Name: "s"},
			expected: "std::move(s)",
		},
		{
			name:     "forwarding reference is forwarded",
			param:    models.Parameter{Type: rref("T"), Category: models.CategoryForwardingRef, Name: "t"},
			expected: "std::forward<T>(t)",
		},
		{
			name:     "auto forwarding reference uses decltype",
			param:    models.Parameter{Type: rref("auto"), Category: models.CategoryForwardingRef, Name: "x"},
			expected: "std::forward<decltype(x)>(x)",
		},
		{
			name:     "forwarding pack is expanded",
			param:    models.Parameter{Type: pack("Args"), Category: models.CategoryForwardingRef, Name: "args"},
			expected: "std::forward<Args>(args)...",
		},
		{
			name:     "class value is moved",
			param:    models.Parameter{Type: val("std::vector<int>"), Category: models.CategoryValue, Name: "v"},
			expected: "std::move(v)",
		},
		{
			name:     "scalar value is copied",
			param:    models.Parameter{Type: val("unsigned  long"), Category: models.CategoryValue, Name: "n"},
			expected: "n",
		},
		{
			name:     "pointer value is copied",
			param:    models.Parameter{Type: models.TypeRef{Base: "Node", Pointers: 1}, Category: models.CategoryValue, Name: "p"},
			expected: "p",
		},
		{
			name:     "const value is copied",
			param:    models.Parameter{Type: models.TypeRef{Const: true, Base: "std::string"}, Category: models.CategoryValue, Name: "s"},
			expected: "s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, forwardArgument(tt.param))
		})
	}
}

func TestSynthesize_ParameterNames(t *testing.T) {
	op := withTemplate(overload(val("void"), val("int"), models.TypeRef{Base: "int"}, pack("Ts")), "", packParam("Ts"))
	op.Params[1].Name = "arg0"

	desc, err := Extract("f", bindingOf(op))
	require.NoError(t, err)

	entities := Synthesize(desc, nil, bindingOf(op), freeTarget("f"))
	require.Len(t, entities, 1)

	var names []string
	for _, p := range entities[0].Params {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"arg01", "arg0", "args"}, names)
	assert.Equal(t, []string{"arg01", "arg0", "std::forward<Ts>(args)..."}, entities[0].Arguments)
}

func TestSynthesize_MemberReceiverPlacement(t *testing.T) {
	tests := []struct {
		name      string
		params    []models.TypeRef
		wantArgs  []string
		wantQuals models.OperatorQualifiers
	}{
		{
			name:     "receiver first",
			params:   []models.TypeRef{lref("Widget"), cref("std::string")},
			wantArgs: []string{"*this", "arg0"},
		},
		{
			name:      "receiver last",
			params:    []models.TypeRef{val("int"), cref("Widget")},
			wantArgs:  []string{"arg0", "*this"},
			wantQuals: models.OperatorQualifiers{Const: true},
		},
		{
			name:      "rvalue receiver moves the object",
			params:    []models.TypeRef{rref("Widget"), rref("std::string")},
			wantArgs:  []string{"std::move(*this)", "std::move(arg0)"},
			wantQuals: models.OperatorQualifiers{Ref: models.RefRValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binding := bindingOf(overload(val("void"), tt.params...))
			desc, err := Extract("f", binding)
			require.NoError(t, err)
			receivers, err := DeduceReceivers("f", "Widget", desc, testLoc)
			require.NoError(t, err)

			entities := Synthesize(desc, receivers, binding, memberTarget("f", "Widget"))
			require.Len(t, entities, 1)
			assert.Equal(t, tt.wantArgs, entities[0].Arguments)
			assert.Equal(t, tt.wantQuals, entities[0].Qualifiers)
			assert.Len(t, entities[0].Params, len(tt.params)-1)
			assert.Equal(t, "Widget", entities[0].Owner)
		})
	}
}

func TestSynthesize_PropagatesNoexceptAndConstexpr(t *testing.T) {
	op := overload(val("int"), val("int"))
	op.Noexcept = true
	op.Constexpr = true

	entities := Synthesize(models.CallableDescriptor{Overloads: []models.OverloadSignature{op}}, nil, bindingOf(op), freeTarget("twice"))
	require.Len(t, entities, 1)
	assert.True(t, entities[0].Noexcept)
	assert.True(t, entities[0].Constexpr)
}

func TestSynthesize_CopiesTemplateHead(t *testing.T) {
	op := withTemplate(overload(val("void"), rref("T")), "", typeParam("T"))
	desc := models.CallableDescriptor{Overloads: []models.OverloadSignature{op}}

	entities := Synthesize(desc, nil, bindingOf(op), freeTarget("f"))
	require.Len(t, entities, 1)
	require.NotNil(t, entities[0].Template)

	entities[0].Template.Params[0].Name = "changed"
	assert.Equal(t, "T", op.Template.Params[0].Name)
}
