package templates

import (
	"strings"
	"unicode"

	"github.com/toyz/defn/internal/models"
)

// function is the declarator of a C++ function, rendered either as an
// in-class declaration or as an out-of-line definition
type function struct {
	Template   *models.TemplateParameterList
	Constexpr  bool
	Owner      string // class qualifier of an out-of-line member definition
	Name       string
	Params     []models.Parameter
	Return     models.TypeRef
	Qualifiers models.OperatorQualifiers
	Noexcept   bool
}

func fromEntity(e models.GeneratedEntity) function {
	return function{
		Template:   e.Template,
		Constexpr:  e.Constexpr,
		Name:       e.Name,
		Params:     e.Params,
		Return:     e.Return,
		Qualifiers: e.Qualifiers,
		Noexcept:   e.Noexcept,
	}
}

func fromDefinition(name string, fn models.FunctionDefinition) function {
	return function{
		Template:   fn.Template,
		Constexpr:  fn.Constexpr,
		Name:       name,
		Params:     fn.Params,
		Return:     fn.Return,
		Qualifiers: fn.Qualifiers,
		Noexcept:   fn.Noexcept,
	}
}

// declarator spells "auto name(params) quals -> R". Placeholder return types
// cannot trail, so they lead instead.
func (f function) declarator() string {
	var b strings.Builder

	ret := f.Return.String()
	placeholder := f.Return.IsAuto() || ret == "decltype(auto)" || ret == ""
	if placeholder {
		if ret == "" {
			ret = "auto"
		}
		b.WriteString(ret)
	} else {
		b.WriteString("auto")
	}
	b.WriteByte(' ')

	if f.Owner != "" {
		b.WriteString(f.Owner)
		b.WriteString("::")
	}
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	b.WriteString(f.Qualifiers.String())
	if f.Noexcept {
		b.WriteString(" noexcept")
	}
	if !placeholder {
		b.WriteString(" -> ")
		b.WriteString(ret)
	}
	return b.String()
}

// Declaration renders the function as a one-line member declaration
func (f function) Declaration() string {
	var b strings.Builder
	if f.Template != nil {
		b.WriteString(f.Template.String())
		b.WriteByte(' ')
	}
	if f.Constexpr {
		b.WriteString("constexpr ")
	}
	b.WriteString(f.declarator())
	b.WriteByte(';')
	return b.String()
}

// Definition renders the function with the given body
func (f function) Definition(body string) string {
	var b strings.Builder
	if f.Template != nil {
		b.WriteString(f.Template.String())
		b.WriteByte('\n')
	}
	b.WriteString("inline ")
	if f.Constexpr {
		b.WriteString("constexpr ")
	}
	b.WriteString(f.declarator())
	b.WriteString(" {\n")
	if body = indentBody(body); body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	b.WriteByte('}')
	return b.String()
}

// indentBody re-indents a verbatim body by four spaces, keeping the relative
// indentation of its lines
func indentBody(body string) string {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}

	common := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}

	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if i > 0 && common > 0 && len(line) >= common {
			line = line[common:]
		}
		if line != "" {
			line = "    " + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// guardName derives the include guard of the header generated from source
func guardName(source string) string {
	base := source
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	var b strings.Builder
	b.WriteString("DEFN_GENERATED_")
	for _, r := range base {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteString("_HPP")
	return b.String()
}

// MembersMacro returns the name of the macro collecting the member
// declarations of the class at classPath
func MembersMacro(classPath []string) string {
	return "DEFN_MEMBERS_" + strings.Join(classPath, "_")
}
