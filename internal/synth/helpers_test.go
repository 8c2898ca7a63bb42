package synth

import (
	"github.com/toyz/defn/internal/models"
)

var testLoc = models.SourceLocation{File: "shapes.defn", Line: 7, Column: 3}

func val(base string) models.TypeRef { return models.TypeRef{Base: base} }

func lref(base string) models.TypeRef { return models.TypeRef{Base: base, Ref: models.RefLValue} }

func cref(base string) models.TypeRef {
	return models.TypeRef{Const: true, Base: base, Ref: models.RefLValue}
}

func rref(base string) models.TypeRef { return models.TypeRef{Base: base, Ref: models.RefRValue} }

func pack(base string) models.TypeRef {
	return models.TypeRef{Base: base, Ref: models.RefRValue, Pack: true}
}

func overload(ret models.TypeRef, types ...models.TypeRef) models.OverloadSignature {
	params := make([]models.Parameter, len(types))
	for i, t := range types {
		params[i] = models.Parameter{Type: t, Index: i}
	}
	return models.OverloadSignature{Return: ret, Params: params, Qualifiers: models.OperatorQualifiers{Const: true}}
}

func withTemplate(o models.OverloadSignature, requires string, params ...models.TemplateParameter) models.OverloadSignature {
	o.Template = &models.TemplateParameterList{Params: params, Requires: requires}
	return o
}

func typeParam(name string) models.TemplateParameter {
	return models.TemplateParameter{Kind: models.TemplateTypeParam, Name: name, Spelling: "class " + name}
}

func packParam(name string) models.TemplateParameter {
	return models.TemplateParameter{Kind: models.TemplateTypeParam, Pack: true, Name: name, Spelling: "class... " + name}
}

func bindingOf(ops ...models.OverloadSignature) models.ClosureBinding {
	return models.ClosureBinding{
		Name:    "fn_binding",
		Closure: models.Closure{Expression: "make_fn()", Operators: ops},
		Loc:     testLoc,
	}
}

func freeTarget(name string) Target {
	return Target{Name: name, Mode: models.FreeMode}
}

func memberTarget(name, owner string) Target {
	return Target{Name: name, Mode: models.MemberMode, Owner: owner}
}
