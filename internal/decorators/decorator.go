// Package decorators holds the compile-time transformations that can be applied
// to a definition with @name. A decorator maps the callable form of its target
// to a closure: the C++ expression of the decorator call plus the operator()
// overloads the resulting closure exposes.
package decorators

import (
	"fmt"
	"strings"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
	"github.com/toyz/defn/internal/utils"
)

// Decorator is a named compile-time higher-order transformation
type Decorator interface {
	Name() string
	Kind() Kind
	Expression() string
	Apply(target models.DecoratorTarget, args string) (models.Closure, error)
}

// Kind selects how a decorator reshapes the overload set of its target
type Kind string

const (
	KindPreserve  Kind = "preserve"
	KindNothrow   Kind = "nothrow"
	KindVariadic  Kind = "variadic"
	KindReceivers Kind = "receivers"
)

// Kinds lists every known kind in a stable order
func Kinds() []Kind {
	return []Kind{KindPreserve, KindNothrow, KindVariadic, KindReceivers}
}

// Summary returns a one-line description of the kind
func (k Kind) Summary() string {
	switch k {
	case KindPreserve:
		return "exposes the target's signatures unchanged"
	case KindNothrow:
		return "exposes the target's signatures, all noexcept"
	case KindVariadic:
		return "exposes one perfect-forwarding variadic overload"
	case KindReceivers:
		return "exposes the member target for both mutable and const receivers"
	default:
		return "unknown"
	}
}

// ParseKind converts a spelled kind into a Kind
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}

	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	err := errors.Newf(errors.SyntaxErrorCode, "unknown decorator kind '%s'", s).
		WithContext("kind", s)
	for _, c := range utils.ClosestMatches(s, names, 2) {
		err.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", c))
	}
	return "", err.WithSuggestion("Valid kinds: " + strings.Join(names, ", "))
}

// transform computes the operator() overloads of the closure produced for target
type transform func(name string, target models.DecoratorTarget) ([]models.OverloadSignature, error)

var transforms = map[Kind]transform{
	KindPreserve:  preserve,
	KindNothrow:   nothrow,
	KindVariadic:  variadic,
	KindReceivers: receivers,
}

// Definition is a decorator backed by a C++ expression and one of the known kinds
type Definition struct {
	name       string
	expression string
	kind       Kind
	loc        models.SourceLocation
}

// New creates a decorator definition
func New(name, expression string, kind Kind) (*Definition, error) {
	if name == "" {
		return nil, errors.New(errors.SyntaxErrorCode, "decorator name cannot be empty")
	}
	if strings.TrimSpace(expression) == "" {
		return nil, errors.Newf(errors.SyntaxErrorCode, "decorator '%s' has an empty expression", name)
	}
	if _, ok := transforms[kind]; !ok {
		if _, err := ParseKind(string(kind)); err != nil {
			return nil, err
		}
	}
	return &Definition{name: name, expression: strings.TrimSpace(expression), kind: kind}, nil
}

// FromDecl creates a decorator from a .defn declaration
func FromDecl(decl models.DecoratorDecl) (*Definition, error) {
	kind, err := ParseKind(decl.Kind)
	if err != nil {
		return nil, errors.Locate(err, decl.Loc)
	}
	d, err := New(decl.Name, decl.Expression, kind)
	if err != nil {
		return nil, errors.Locate(err, decl.Loc)
	}
	d.loc = decl.Loc
	return d, nil
}

// Name returns the name the decorator is applied with
func (d *Definition) Name() string { return d.name }

// Kind returns the transformation kind
func (d *Definition) Kind() Kind { return d.kind }

// Expression returns the C++ expression invoked on the target
func (d *Definition) Expression() string { return d.expression }

// Location returns where the decorator was declared; empty for built-ins and config
func (d *Definition) Location() models.SourceLocation { return d.loc }

// Apply invokes the decorator on target. args is the verbatim argument list of
// the application, without parentheses.
func (d *Definition) Apply(target models.DecoratorTarget, args string) (models.Closure, error) {
	if len(target.Callable.Operators) == 0 {
		return models.Closure{}, errors.NewDecoratorTargetError(d.name, target.Name, "the target exposes no operator()")
	}

	operators, err := transforms[d.kind](d.name, target)
	if err != nil {
		return models.Closure{}, err
	}

	callee := d.expression
	if args = strings.TrimSpace(args); args != "" {
		callee += "(" + args + ")"
	}

	return models.Closure{
		Expression: callee + "(" + target.Callable.Expression + ")",
		Operators:  operators,
	}, nil
}
