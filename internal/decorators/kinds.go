package decorators

import (
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// closureQualifiers is the qualification of a lambda's operator()
var closureQualifiers = models.OperatorQualifiers{Const: true}

func preserve(_ string, target models.DecoratorTarget) ([]models.OverloadSignature, error) {
	out := make([]models.OverloadSignature, 0, len(target.Callable.Operators))
	for _, op := range target.Callable.Operators {
		op.Params = append([]models.Parameter(nil), op.Params...)
		op.Qualifiers = closureQualifiers
		out = append(out, op)
	}
	return out, nil
}

func nothrow(name string, target models.DecoratorTarget) ([]models.OverloadSignature, error) {
	out, err := preserve(name, target)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Noexcept = true
	}
	return out, nil
}

// variadic collapses the target into template <class... Args> (Args&&... args).
// A member target keeps its receiver first, one overload per distinct receiver.
func variadic(name string, target models.DecoratorTarget) ([]models.OverloadSignature, error) {
	ops := target.Callable.Operators
	ret := commonReturn(ops)

	var out []models.OverloadSignature
	seen := make(map[string]bool)
	for _, op := range ops {
		var params []models.Parameter
		key := ""
		if target.IsMember() {
			if len(op.Params) == 0 {
				return nil, errors.NewDecoratorTargetError(name, target.Name, "the member target has no receiver parameter")
			}
			params = append(params, op.Params[0])
			key = op.Params[0].Type.Canonical()
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		params = append(params, models.Parameter{
			Type: models.TypeRef{Base: "Args", Ref: models.RefRValue, Pack: true},
			Name: "args",
		})
		for i := range params {
			params[i].Index = i
		}

		out = append(out, models.OverloadSignature{
			Return: ret,
			Params: params,
			Template: &models.TemplateParameterList{
				Params: []models.TemplateParameter{{
					Kind:     models.TemplateTypeParam,
					Pack:     true,
					Name:     "Args",
					Spelling: "class... Args",
				}},
			},
			Templated:  true,
			Qualifiers: closureQualifiers,
			Constexpr:  op.Constexpr,
			Loc:        op.Loc,
		})
	}
	return out, nil
}

// commonReturn is the shared return type of ops, or decltype(auto) when they
// differ or depend on template parameters
func commonReturn(ops []models.OverloadSignature) models.TypeRef {
	deduced := models.TypeRef{Base: "decltype(auto)"}
	for i, op := range ops {
		if op.Templated || op.Template != nil {
			return deduced
		}
		if i > 0 && !op.Return.Equal(ops[0].Return) {
			return deduced
		}
	}
	return ops[0].Return
}

// receivers exposes a const member target for T& and const T& receivers
func receivers(name string, target models.DecoratorTarget) ([]models.OverloadSignature, error) {
	if !target.IsMember() {
		return nil, errors.NewDecoratorTargetError(name, target.Name, "it requires a member function target")
	}

	var out []models.OverloadSignature
	seen := make(map[string]bool)
	for _, op := range target.Callable.Operators {
		if len(op.Params) == 0 {
			return nil, errors.NewDecoratorTargetError(name, target.Name, "the member target has no receiver parameter")
		}
		if recv := op.Params[0].Type; !recv.Const || recv.Ref != models.RefLValue {
			err := errors.NewDecoratorTargetError(name, target.Name, "receivers requires a const-callable member")
			err.WithContext("receiver", recv.String()).
				WithSuggestion("Declare the member const so it can be called through both T& and const T&")
			return nil, err
		}
		self := op.Params[0].Name
		if self == "" {
			self = "self"
		}

		for _, constant := range []bool{false, true} {
			variant := op
			variant.Qualifiers = closureQualifiers
			variant.Params = make([]models.Parameter, 0, len(op.Params))
			variant.Params = append(variant.Params, models.Parameter{
				Type: models.TypeRef{Const: constant, Base: target.Owner, Ref: models.RefLValue},
				Name: self,
			})
			variant.Params = append(variant.Params, op.Params[1:]...)
			for i := range variant.Params {
				variant.Params[i].Index = i
			}

			if sig := variant.Signature(); !seen[sig] {
				seen[sig] = true
				out = append(out, variant)
			}
		}
	}
	return out, nil
}
