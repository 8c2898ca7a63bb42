package synth

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/models"
)

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Validate rejects descriptors whose overloads would collide as free-standing
// declarations once operator() qualification is erased. It runs before receiver
// deduction in both modes, since qualification is the axis that deduction drops.
func Validate(target string, desc models.CallableDescriptor, loc models.SourceLocation) error {
	for i, o := range desc.Overloads {
		if err := checkTemplateShape(target, i, o); err != nil {
			err.WithLocation(loc)
			return err
		}
	}

	keys := make([]string, len(desc.Overloads))
	for i, o := range desc.Overloads {
		keys[i] = erasedKey(o)
	}

	for i := 0; i < len(desc.Overloads); i++ {
		for j := i + 1; j < len(desc.Overloads); j++ {
			if keys[i] != keys[j] {
				continue
			}
			first, second := desc.Overloads[i], desc.Overloads[j]
			if constraintKey(first) != constraintKey(second) {
				err := errors.NewTemplateShapeError(target, j, second.Signature(),
					fmt.Sprintf("it differs from overload #%d only in its constraints", i))
				err.WithContext("first_overload", fmt.Sprintf("#%d %s", i, first.Signature())).
					WithLocation(loc)
				return err
			}
			err := errors.NewAmbiguousOverloadError(target, i, j, first.Signature(), second.Signature())
			err.WithLocation(loc)
			return err
		}
	}

	return nil
}

// MixedTemplatePairs returns pairs of a templated and a non-templated overload
// whose arities are compatible, lower index first
func MixedTemplatePairs(desc models.CallableDescriptor) [][2]int {
	var pairs [][2]int
	for i := 0; i < len(desc.Overloads); i++ {
		for j := i + 1; j < len(desc.Overloads); j++ {
			a, b := desc.Overloads[i], desc.Overloads[j]
			if a.Templated == b.Templated {
				continue
			}
			tpl, plain := a, b
			if b.Templated {
				tpl, plain = b, a
			}
			if arityCompatible(tpl, plain) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

func arityCompatible(tpl, plain models.OverloadSignature) bool {
	if tpl.HasPack() {
		return plain.Arity() >= tpl.Arity()-1
	}
	return plain.Arity() == tpl.Arity()
}

// checkTemplateShape verifies that an overload's template head can be reused verbatim
func checkTemplateShape(target string, index int, o models.OverloadSignature) *errors.TemplateShapeError {
	if o.Template != nil {
		if len(o.Template.Params) == 0 {
			return errors.NewTemplateShapeError(target, index, o.Signature(),
				"an explicit specialization (template <>) has no parameters to carry over")
		}
		names := make(map[string]bool, len(o.Template.Params))
		for _, tp := range o.Template.Params {
			if tp.Name == "" {
				continue
			}
			if names[tp.Name] {
				return errors.NewTemplateShapeError(target, index, o.Signature(),
					fmt.Sprintf("template parameter '%s' is declared twice", tp.Name))
			}
			names[tp.Name] = true
		}
	}

	for _, p := range o.Params {
		if !p.Type.Pack || p.Type.IsAuto() {
			continue
		}
		if !expandsTemplatePack(p.Type, o.Template) {
			return errors.NewTemplateShapeError(target, index, o.Signature(),
				fmt.Sprintf("parameter #%d expands '%s', which names no template parameter pack", p.Index, p.Type.Base))
		}
	}

	return nil
}

func expandsTemplatePack(t models.TypeRef, tpl *models.TemplateParameterList) bool {
	for _, ident := range identifierPattern.FindAllString(t.Base, -1) {
		if tp, ok := tpl.Lookup(ident); ok && tp.Pack {
			return true
		}
	}
	return false
}

// erasedKey is the identity of an overload with operator() qualification erased.
// Template parameters are compared by position and kind, never by name. Return
// types only take part for templates, as for ordinary function templates.
func erasedKey(o models.OverloadSignature) string {
	rename := templateRenames(o.Template)

	var b strings.Builder
	if o.Template != nil {
		shapes := make([]string, len(o.Template.Params))
		for i, tp := range o.Template.Params {
			shape := "type"
			if tp.Kind == models.TemplateNonTypeParam {
				shape = "value:" + substitute(tp.Type, rename)
			}
			if tp.Pack {
				shape += "..."
			}
			shapes[i] = shape
		}
		b.WriteString("<" + strings.Join(shapes, ",") + ">")
	}

	params := make([]string, len(o.Params))
	for i, p := range o.Params {
		params[i] = substitute(p.Type.Canonical(), rename)
	}
	b.WriteString("(" + strings.Join(params, ",") + ")")

	if o.Templated {
		b.WriteString("->" + substitute(o.Return.Canonical(), rename))
	}
	return b.String()
}

// constraintKey is the normalized set of constraints on an overload's template head
func constraintKey(o models.OverloadSignature) string {
	if o.Template == nil {
		return ""
	}
	rename := templateRenames(o.Template)
	var parts []string
	for i, tp := range o.Template.Params {
		if tp.Kind == models.TemplateTypeParam && tp.Type != "" {
			parts = append(parts, fmt.Sprintf("%d:%s", i, substitute(tp.Type, rename)))
		}
	}
	if o.Template.Requires != "" {
		parts = append(parts, "requires:"+substitute(strings.Join(strings.Fields(o.Template.Requires), " "), rename))
	}
	return strings.Join(parts, ";")
}

func templateRenames(tpl *models.TemplateParameterList) map[string]string {
	rename := make(map[string]string)
	if tpl == nil {
		return rename
	}
	for i, tp := range tpl.Params {
		if tp.Name != "" {
			rename[tp.Name] = fmt.Sprintf("$%d", i)
		}
	}
	return rename
}

func substitute(s string, rename map[string]string) string {
	if len(rename) == 0 {
		return s
	}
	return identifierPattern.ReplaceAllStringFunc(s, func(ident string) string {
		if r, ok := rename[ident]; ok {
			return r
		}
		return ident
	})
}
