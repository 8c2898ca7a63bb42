package synth

import (
	"fmt"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// Extract reads the invocation-operator overload set exposed by a bound closure.
// Overloads keep their declaration order. Declarations that are identical in
// every respect, including qualification and constraints, are counted once.
func Extract(target string, binding models.ClosureBinding) (models.CallableDescriptor, error) {
	if len(binding.Closure.Operators) == 0 {
		err := errors.NewNotCallableError(target, binding.Closure.Expression)
		err.WithLocation(binding.Loc)
		return models.CallableDescriptor{}, err
	}

	desc := models.CallableDescriptor{
		Overloads: make([]models.OverloadSignature, 0, len(binding.Closure.Operators)),
	}
	seen := make(map[string]bool, len(binding.Closure.Operators))

	for _, op := range binding.Closure.Operators {
		overload := normalizeOverload(op)

		identity := exactKey(overload)
		if seen[identity] {
			continue
		}
		seen[identity] = true

		desc.Overloads = append(desc.Overloads, overload)
	}

	return desc, nil
}

// exactKey identifies an overload declaration completely: erased signature,
// return type, qualification, constraints and specifiers
func exactKey(o models.OverloadSignature) string {
	ret := substitute(o.Return.Canonical(), templateRenames(o.Template))
	return fmt.Sprintf("%s|%s|%s|%s|noexcept=%t|constexpr=%t",
		erasedKey(o), ret, o.Qualifiers.String(), constraintKey(o), o.Noexcept, o.Constexpr)
}

// normalizeOverload copies op with positions and reference categories recomputed
func normalizeOverload(op models.OverloadSignature) models.OverloadSignature {
	out := op
	out.Params = make([]models.Parameter, len(op.Params))
	for i, p := range op.Params {
		p.Index = i
		p.Category = models.Classify(p.Type, op.Template)
		out.Params[i] = p
		if p.Type.IsAuto() {
			out.Templated = true
		}
	}
	if op.Template != nil {
		out.Templated = true
	}
	return out
}
