package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

var loc = models.SourceLocation{File: "shapes.defn", Line: 7, Column: 3}

func synthesis() models.Synthesis {
	scope := &models.Scope{Kind: models.ScopeClass, Name: "Widget", Path: []string{"geo", "Widget"}, Namespaces: 1}
	return models.Synthesis{
		Target:     "draw",
		Scope:      scope,
		Renamed:    &models.RenamedDefinition{InternalName: "__defn_draw_1234abcd"},
		Decorators: []string{"variadic", "traced"},
		Entities: []models.GeneratedEntity{
			{
				Name:       "draw",
				Mode:       models.MemberMode,
				Owner:      "geo::Widget",
				Params:     []models.Parameter{{Type: models.TypeRef{Base: "int"}, Name: "depth"}},
				Return:     models.TypeRef{Base: "void"},
				Qualifiers: models.OperatorQualifiers{Const: true},
				Binding:    "__defn_draw_1234abcd_binding",
				Loc:        loc,
			},
			{
				Name:     "draw",
				Mode:     models.MemberMode,
				Owner:    "geo::Widget",
				Return:   models.TypeRef{Base: "void"},
				Noexcept: true,
				Binding:  "__defn_draw_1234abcd_binding",
				Loc:      loc,
			},
		},
	}
}

func TestNewEntity(t *testing.T) {
	syn := synthesis()
	e := NewEntity(syn, syn.Entities[0])

	assert.Equal(t, "draw", e.Name)
	assert.Equal(t, "geo::Widget", e.Scope)
	assert.Equal(t, "member", e.Mode)
	assert.Equal(t, 1, e.Arity)
	assert.Equal(t, []string{"int"}, e.Params)
	assert.Equal(t, "void", e.Result)
	assert.Equal(t, "const", e.Qualifiers)
	assert.True(t, e.Decorated)
	assert.Equal(t, []string{"variadic", "traced"}, e.Decorators)
	assert.Equal(t, "shapes.defn", e.File)
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr bool
	}{
		{name: "no rules"},
		{name: "valid rule", rules: []Rule{{Name: "small", Expr: "arity <= 4"}}},
		{name: "missing name", rules: []Rule{{Expr: "true"}}, wantErr: true},
		{name: "syntax error", rules: []Rule{{Name: "broken", Expr: "arity <="}}, wantErr: true},
		{name: "unknown field", rules: []Rule{{Name: "typo", Expr: "arty > 1"}}, wantErr: true},
		{name: "not boolean", rules: []Rule{{Name: "count", Expr: "arity + 1"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Compile(tt.rules)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ConfigurationErrorCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.rules), set.Len())
		})
	}
}

func TestSet_Check(t *testing.T) {
	tests := []struct {
		name       string
		rule       Rule
		violations int
		message    string
	}{
		{name: "holds everywhere", rule: Rule{Name: "named", Expr: `name != ""`}},
		{name: "violated once", rule: Rule{Name: "nothrow", Expr: "noexcept", Message: "members must be noexcept"}, violations: 1, message: "members must be noexcept"},
		{name: "decorator membership", rule: Rule{Name: "untraced", Expr: `"traced" not in decorators`}, violations: 2},
		{name: "default message", rule: Rule{Name: "const", Expr: `qualifiers == "const"`}, violations: 1, message: "does not hold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Compile([]Rule{tt.rule})
			require.NoError(t, err)

			err = set.Check(synthesis())
			if tt.violations == 0 {
				assert.NoError(t, err)
				return
			}

			var multi *errors.MultipleErrors
			require.ErrorAs(t, err, &multi)
			require.Len(t, withCode(multi, errors.PolicyViolationErrorCode), tt.violations)
			assert.Equal(t, loc, multi.Errors[0].Location())
			if tt.message != "" {
				assert.Contains(t, multi.Errors[0].Error(), tt.message)
			}
		})
	}
}

func TestSet_CheckNilSet(t *testing.T) {
	var set *Set
	assert.NoError(t, set.Check(synthesis()))
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
