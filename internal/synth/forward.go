package synth

import (
	"fmt"

	"github.com/toyz/defn/internal/models"
)

// Target names what a synthesis call emits
type Target struct {
	Name  string
	Mode  models.SynthesisMode
	Owner string // qualified owning class in member mode
}

// Synthesize emits one forwarding entity per overload. receivers must hold one
// spec per overload in member mode and is ignored in free mode.
// Call arguments follow the closure's own parameter order, with the object at the receiver's position.
func Synthesize(desc models.CallableDescriptor, receivers []models.ReceiverSpec, binding models.ClosureBinding, target Target) []models.GeneratedEntity {
	entities := make([]models.GeneratedEntity, 0, len(desc.Overloads))

	for i, o := range desc.Overloads {
		receiver := -1

		entity := models.GeneratedEntity{
			Name:      target.Name,
			Mode:      target.Mode,
			Template:  copyTemplate(o.Template),
			Return:    o.Return,
			Noexcept:  o.Noexcept,
			Constexpr: o.Constexpr,
			Inline:    true,
			Binding:   binding.Name,
			Source:    i,
			Loc:       binding.Loc,
		}

		if target.Mode == models.MemberMode {
			spec := receivers[i]
			receiver = spec.Index
			entity.Owner = target.Owner
			entity.Qualifiers = spec.Qualifiers()
		}

		entity.Params = forwardedParams(o.Params, receiver)

		args := make([]string, 0, len(o.Params))
		next := 0
		for _, p := range o.Params {
			if p.Index == receiver {
				args = append(args, receiverArgument(receivers[i].Qualification))
				continue
			}
			args = append(args, forwardArgument(entity.Params[next]))
			next++
		}
		entity.Arguments = args

		entities = append(entities, entity)
	}

	return entities
}

// forwardedParams copies params without the receiver, re-indexed and named
func forwardedParams(params []models.Parameter, receiver int) []models.Parameter {
	out := make([]models.Parameter, 0, len(params))
	taken := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Index != receiver && p.Name != "" {
			taken[p.Name] = true
		}
	}

	for _, p := range params {
		if p.Index == receiver {
			continue
		}
		p.Index = len(out)
		if p.Name == "" {
			p.Name = freshName(p, taken)
			taken[p.Name] = true
		}
		out = append(out, p)
	}
	return out
}

func freshName(p models.Parameter, taken map[string]bool) string {
	base := fmt.Sprintf("arg%d", p.Index)
	if p.Type.Pack {
		base = "args"
	}
	name := base
	for n := 1; taken[name]; n++ {
		name = fmt.Sprintf("%s%d", base, n)
	}
	return name
}

// forwardArgument returns the expression passing p on with its value category
func forwardArgument(p models.Parameter) string {
	expansion := ""
	if p.Type.Pack {
		expansion = "..."
	}

	switch p.Category {
	case models.CategoryLValueRef:
		return p.Name + expansion
	case models.CategoryRValueRef:
		return "std::move(" + p.Name + ")" + expansion
	case models.CategoryForwardingRef:
		if p.Type.IsAuto() {
			return "std::forward<decltype(" + p.Name + ")>(" + p.Name + ")" + expansion
		}
		return "std::forward<" + p.Type.Base + ">(" + p.Name + ")" + expansion
	default:
		if p.Type.Const || p.Type.IsScalar() {
			return p.Name + expansion
		}
		return "std::move(" + p.Name + ")" + expansion
	}
}

// receiverArgument returns the object expression bound to the receiver parameter
func receiverArgument(q models.ReceiverQualification) string {
	if q == models.ReceiverRValue {
		return "std::move(*this)"
	}
	return "*this"
}

func copyTemplate(tpl *models.TemplateParameterList) *models.TemplateParameterList {
	if tpl == nil {
		return nil
	}
	out := &models.TemplateParameterList{
		Params:   make([]models.TemplateParameter, len(tpl.Params)),
		Requires: tpl.Requires,
	}
	copy(out.Params, tpl.Params)
	return out
}
