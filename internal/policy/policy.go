// Package policy evaluates user rules against generated entities. Rules are
// expr-lang boolean expressions that must hold for every entity in a header.
package policy

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// Rule is a named expression that every generated entity must satisfy
type Rule struct {
	Name    string `yaml:"name" json:"name" jsonschema:"required,description=Rule name used in diagnostics"`
	Expr    string `yaml:"expr" json:"expr" jsonschema:"required,description=expr-lang boolean expression that must hold"`
	Message string `yaml:"message,omitempty" json:"message,omitempty" jsonschema:"description=Explanation shown when the rule is violated"`
}

// Entity is the view of a generated entity that rule expressions see. It is
// also the JSON form served over HTTP.
type Entity struct {
	Name       string   `expr:"name" json:"name"`
	Owner      string   `expr:"owner" json:"owner"`
	Scope      string   `expr:"scope" json:"scope"`
	Mode       string   `expr:"mode" json:"mode"`
	Arity      int      `expr:"arity" json:"arity"`
	Params     []string `expr:"params" json:"params"`
	Result     string   `expr:"result" json:"result"`
	Qualifiers string   `expr:"qualifiers" json:"qualifiers"`
	Templated  bool     `expr:"templated" json:"templated"`
	Noexcept   bool     `expr:"noexcept" json:"noexcept"`
	Constexpr  bool     `expr:"constexpr" json:"constexpr"`
	Decorated  bool     `expr:"decorated" json:"decorated"`
	Decorators []string `expr:"decorators" json:"decorators"`
	Binding    string   `expr:"binding" json:"binding"`
	File       string   `expr:"file" json:"file"`
}

// NewEntity builds the rule view of entity e produced by syn
func NewEntity(syn models.Synthesis, e models.GeneratedEntity) Entity {
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.Type.String()
	}

	scope := ""
	if syn.Scope != nil {
		scope = syn.Scope.Qualified()
	}

	return Entity{
		Name:       e.Name,
		Owner:      e.Owner,
		Scope:      scope,
		Mode:       e.Mode.String(),
		Arity:      len(e.Params),
		Params:     params,
		Result:     e.Return.String(),
		Qualifiers: strings.TrimSpace(e.Qualifiers.String()),
		Templated:  e.Templated(),
		Noexcept:   e.Noexcept,
		Constexpr:  e.Constexpr,
		Decorated:  syn.Renamed != nil,
		Decorators: syn.Decorators,
		Binding:    e.Binding,
		File:       e.Loc.File,
	}
}

type compiledRule struct {
	rule    Rule
	program *vm.Program
}

// Set is a compiled list of rules. It is immutable and safe for concurrent use.
type Set struct {
	rules []compiledRule
}

// Compile type-checks every rule against the Entity environment
func Compile(rules []Rule) (*Set, error) {
	set := &Set{}
	errs := errors.NewMultipleErrors()

	for _, rule := range rules {
		if strings.TrimSpace(rule.Name) == "" {
			errs.Add(errors.New(errors.ConfigurationErrorCode, "policy rule has no name").
				WithContext("expr", rule.Expr))
			continue
		}

		program, err := expr.Compile(rule.Expr, expr.Env(Entity{}), expr.AsBool())
		if err != nil {
			errs.Add(errors.WrapConfigurationError("policy "+rule.Name, "compile", err).
				WithContext("expr", rule.Expr).
				WithSuggestion("Available fields: " + strings.Join(Fields(), ", ")))
			continue
		}
		set.rules = append(set.rules, compiledRule{rule: rule, program: program})
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return set, nil
}

// Len returns the number of rules in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Check evaluates every rule against every entity of syn. Violations are
// located at the entity and collected into one error.
func (s *Set) Check(syn models.Synthesis) error {
	if s.Len() == 0 {
		return nil
	}

	errs := errors.NewMultipleErrors()
	for _, e := range syn.Entities {
		env := NewEntity(syn, e)
		for _, r := range s.rules {
			out, err := expr.Run(r.program, env)
			if err != nil {
				errs.Add(errors.Wrapf(errors.PolicyViolationErrorCode, err, "policy '%s' failed to evaluate", r.rule.Name).
					WithLocation(e.Loc))
				continue
			}
			if ok, _ := out.(bool); ok {
				continue
			}

			message := r.rule.Message
			if message == "" {
				message = fmt.Sprintf("expression `%s` does not hold", r.rule.Expr)
			}
			violation := errors.NewPolicyViolationError(r.rule.Name, e.Signature(), message)
			violation.WithLocation(e.Loc)
			errs.Add(violation)
		}
	}
	return errs.ErrOrNil()
}

// Fields lists the names rule expressions can reference
func Fields() []string {
	return []string{
		"name", "owner", "scope", "mode", "arity", "params", "result", "qualifiers",
		"templated", "noexcept", "constexpr", "decorated", "decorators", "binding", "file",
	}
}
