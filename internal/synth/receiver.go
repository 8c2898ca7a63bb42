package synth

import (
	"strings"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

// DeduceReceivers finds, for every overload, the single parameter standing for
// the object of type owner. Only T&, const T& and T&& match, by exact identity.
func DeduceReceivers(target, owner string, desc models.CallableDescriptor, loc models.SourceLocation) ([]models.ReceiverSpec, error) {
	specs := make([]models.ReceiverSpec, 0, len(desc.Overloads))

	for i, o := range desc.Overloads {
		var candidates []int
		var qualification models.ReceiverQualification

		for _, p := range o.Params {
			if q, ok := matchReceiver(p.Type, owner); ok {
				candidates = append(candidates, p.Index)
				qualification = q
			}
		}

		switch len(candidates) {
		case 0:
			err := errors.NewMissingReceiverParameterError(target, owner, i, o.Signature())
			err.WithLocation(loc)
			return nil, err
		case 1:
			specs = append(specs, models.ReceiverSpec{
				Index:         candidates[0],
				Owner:         owner,
				Qualification: qualification,
			})
		default:
			err := errors.NewMultipleReceiverCandidatesError(target, owner, i, o.Signature(), candidates)
			err.WithLocation(loc)
			return nil, err
		}
	}

	for _, spec := range specs {
		if spec.Qualification == models.ReceiverRValue {
			for i := range specs {
				specs[i].RefQualified = true
			}
			break
		}
	}

	if err := checkMemberCollisions(target, owner, desc, specs); err != nil {
		err.WithLocation(loc)
		return nil, err
	}
	return specs, nil
}

// checkMemberCollisions rejects overloads that declare the same member function
// once the receiver is dropped and its qualification moves onto the member
func checkMemberCollisions(target, owner string, desc models.CallableDescriptor, specs []models.ReceiverSpec) *errors.AmbiguousOverloadError {
	keys := make([]string, len(desc.Overloads))
	for i, o := range desc.Overloads {
		keys[i] = erasedKey(withoutReceiver(o, specs[i].Index)) + "|" + specs[i].Qualifiers().String()
	}

	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[i] != keys[j] {
				continue
			}
			first, second := desc.Overloads[i], desc.Overloads[j]
			return errors.NewAmbiguousMemberOverloadError(target, owner, i, j, first.Signature(), second.Signature(),
				memberSpelling(target, withoutReceiver(second, specs[j].Index), specs[j].Qualifiers()))
		}
	}
	return nil
}

// withoutReceiver copies o with the parameter at index removed
func withoutReceiver(o models.OverloadSignature, index int) models.OverloadSignature {
	out := o
	out.Params = make([]models.Parameter, 0, len(o.Params))
	for _, p := range o.Params {
		if p.Index != index {
			out.Params = append(out.Params, p)
		}
	}
	return out
}

func memberSpelling(name string, o models.OverloadSignature, q models.OperatorQualifiers) string {
	params := make([]string, len(o.Params))
	for i, p := range o.Params {
		params[i] = p.Type.String()
	}
	return name + "(" + strings.Join(params, ", ") + ")" + q.String()
}

// matchReceiver reports whether t is exactly owner&, const owner& or owner&&
func matchReceiver(t models.TypeRef, owner string) (models.ReceiverQualification, bool) {
	if t.Pack || t.Pointers > 0 || t.Ref == models.RefNone {
		return 0, false
	}
	if !namesOwner(t, owner) {
		return 0, false
	}

	switch {
	case t.Ref == models.RefLValue && t.Const:
		return models.ReceiverConst, true
	case t.Ref == models.RefLValue:
		return models.ReceiverNone, true
	case t.Ref == models.RefRValue && !t.Const:
		return models.ReceiverRValue, true
	default:
		return 0, false
	}
}

// namesOwner reports whether the spelled base denotes the owning class. Inside a
// class scope the class may be spelled by any trailing part of its qualified name.
func namesOwner(t models.TypeRef, owner string) bool {
	base := models.TypeRef{Base: t.Base}.Canonical()
	qualified := models.TypeRef{Base: owner}.Canonical()
	if base == qualified {
		return true
	}
	return strings.HasSuffix(qualified, "::"+base)
}
