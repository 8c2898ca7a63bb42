package synth

import (
	"strings"

	"github.com/google/uuid"

	"github.com/toyz/defn/internal/decorators"
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
	"github.com/toyz/defn/internal/utils"
)

// DecoratorResolver looks up decorators by the name they are applied with
type DecoratorResolver interface {
	Resolve(name string) (decorators.Decorator, error)
}

// nameSpace seeds the name-based UUIDs behind internal identifiers
var nameSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/toyz/defn"))

// InternalName returns the identifier a decorated definition is renamed to.
// The suffix is derived from the qualified public name, so output is reproducible.
func InternalName(scope *models.Scope, name string) string {
	qualified := name
	if scope != nil && scope.Qualified() != "" {
		qualified = scope.Qualified() + "::" + name
	}
	id := uuid.NewSHA1(nameSpace, []byte(qualified))
	return "__defn_" + name + "_" + strings.ReplaceAll(id.String(), "-", "")[:8]
}

// BindingName returns the identifier of the closure binding for name in scope
func BindingName(scope *models.Scope, name string) string {
	return InternalName(scope, name) + "_binding"
}

// Define synthesizes the declarations of one define_function invocation
func (e *Engine) Define(unit *models.Unit, scope *models.Scope, def *models.DefineFunction) (models.Synthesis, error) {
	closure, err := resolveCallable(unit, def)
	if err != nil {
		return models.Synthesis{}, err
	}

	binding := models.ClosureBinding{
		Name:    BindingName(scope, def.Name),
		Closure: closure,
		Loc:     def.Loc,
	}

	res, err := e.Run(Request{Target: targetFor(scope, def.Name), Binding: binding})
	if err != nil {
		return models.Synthesis{}, err
	}

	return models.Synthesis{
		Target:   def.Name,
		Scope:    scope,
		Binding:  binding,
		Entities: res.Entities,
		Warnings: res.Warnings,
	}, nil
}

// Decorate renames a decorated definition, applies its decorators bottom-up to
// the renamed entity, binds the final closure and synthesizes the public name.
func (e *Engine) Decorate(scope *models.Scope, def *models.DecoratedDefinition, resolver DecoratorResolver) (models.Synthesis, error) {
	fn := def.Function
	renamed := fn
	renamed.Name = InternalName(scope, fn.Name)

	target := models.DecoratorTarget{
		Name:     fn.Name,
		Callable: CallableForm(renamed, scope),
	}
	if t := targetFor(scope, fn.Name); t.Mode == models.MemberMode {
		target.Owner = t.Owner
	}

	for i := len(def.Decorators) - 1; i >= 0; i-- {
		ref := def.Decorators[i]

		d, err := resolver.Resolve(ref.Name)
		if err != nil {
			return models.Synthesis{}, errors.Locate(err, ref.Loc)
		}

		closure, err := d.Apply(target, ref.Args)
		if err != nil {
			return models.Synthesis{}, errors.Locate(err, ref.Loc)
		}
		target.Callable = closure
	}

	binding := models.ClosureBinding{
		Name:    BindingName(scope, fn.Name),
		Closure: target.Callable,
		Loc:     fn.Loc,
	}

	res, err := e.Run(Request{Target: targetFor(scope, fn.Name), Binding: binding})
	if err != nil {
		return models.Synthesis{}, err
	}

	names := make([]string, len(def.Decorators))
	for i, ref := range def.Decorators {
		names[i] = ref.Name
	}

	return models.Synthesis{
		Target:     fn.Name,
		Scope:      scope,
		Binding:    binding,
		Renamed:    &models.RenamedDefinition{InternalName: renamed.Name, Function: renamed},
		Decorators: names,
		Entities:   res.Entities,
		Warnings:   res.Warnings,
	}, nil
}

// CallableForm returns the closure a decorator receives for a renamed
// definition. Member functions take the receiver as their first parameter,
// qualified after the member: & or none as T&, const as const T&, && as T&&.
func CallableForm(fn models.FunctionDefinition, scope *models.Scope) models.Closure {
	member := scope != nil && scope.Mode() == models.MemberMode
	owner := ""
	if scope != nil {
		owner = scope.Qualified()
	}

	op := models.OverloadSignature{
		Return:    fn.Return,
		Template:  fn.Template,
		Templated: fn.Templated(),
		Noexcept:  fn.Noexcept,
		Constexpr: fn.Constexpr,
		Loc:       fn.Loc,
	}

	var params []models.Parameter
	if member {
		receiver := models.TypeRef{Const: fn.Qualifiers.Const, Base: owner, Ref: models.RefLValue}
		if fn.Qualifiers.Ref == models.RefRValue {
			receiver.Ref = models.RefRValue
		}
		params = append(params, models.Parameter{Type: receiver, Name: "self"})
	}
	params = append(params, fn.Params...)
	for i := range params {
		params[i].Index = i
	}
	op.Params = params

	return models.Closure{
		Expression: callableExpression(fn, owner, member),
		Operators:  []models.OverloadSignature{op},
	}
}

// callableExpression spells a reference to the renamed definition. Templates
// have no address, so they are wrapped in a generic forwarding lambda.
func callableExpression(fn models.FunctionDefinition, owner string, member bool) string {
	if !fn.Templated() {
		if member {
			return "&" + owner + "::" + fn.Name
		}
		return "&" + fn.Name
	}
	if member {
		return "[](auto&& self, auto&&... args) -> decltype(auto) { return std::forward<decltype(self)>(self)." +
			fn.Name + "(std::forward<decltype(args)>(args)...); }"
	}
	return "[](auto&&... args) -> decltype(auto) { return " + fn.Name + "(std::forward<decltype(args)>(args)...); }"
}

func resolveCallable(unit *models.Unit, def *models.DefineFunction) (models.Closure, error) {
	if def.Callable.Inline != nil {
		return *def.Callable.Inline, nil
	}

	name := def.Callable.ClosureName
	if unit != nil {
		if decl, ok := unit.LookupClosure(name); ok {
			return decl.Closure, nil
		}
	}

	var names []string
	if unit != nil {
		names = unit.ClosureNames()
	}
	err := errors.NewUnknownClosureError(name, utils.ClosestMatches(name, names, 3))
	err.WithLocation(def.Loc).WithContext("function_name", def.Name)
	return models.Closure{}, err
}

func targetFor(scope *models.Scope, name string) Target {
	if scope == nil {
		return Target{Name: name, Mode: models.FreeMode}
	}
	t := Target{Name: name, Mode: scope.Mode()}
	if t.Mode == models.MemberMode {
		t.Owner = scope.Qualified()
	}
	return t
}
