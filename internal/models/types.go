package models

import (
	"strings"

	"github.com/toyz/defn/internal/errors"
)

// SourceLocation is where a declaration was written in a .defn file
type SourceLocation = errors.SourceLocation

// RefKind represents the reference part of a spelled type
type RefKind int

const (
	RefNone   RefKind = iota
	RefLValue         // T&
	RefRValue         // T&&
)

// String returns the declarator spelling of the reference kind
func (r RefKind) String() string {
	switch r {
	case RefLValue:
		return "&"
	case RefRValue:
		return "&&"
	default:
		return ""
	}
}

// TypeRef is a structured C++ type as written in a signature.
// Base holds everything that is not a top-level const, pointer, reference or pack
// declarator, e.g. "std::vector<int>", "T", "auto" or "decltype(auto)".
type TypeRef struct {
	Const    bool    // top-level const on the pointee/base
	Base     string  // spelled base type
	Pointers int     // number of '*' declarators
	Ref      RefKind // trailing reference
	Pack     bool    // trailing pack expansion
}

// String returns the canonical spelling of the type
func (t TypeRef) String() string {
	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	b.WriteString(normalizeSpelling(t.Base))
	b.WriteString(strings.Repeat("*", t.Pointers))
	b.WriteString(t.Ref.String())
	if t.Pack {
		b.WriteString("...")
	}
	return b.String()
}

// Canonical returns the spelling used for exact type identity:
// whitespace is normalized and a leading global-scope qualifier is dropped
func (t TypeRef) Canonical() string {
	c := t
	c.Base = strings.TrimPrefix(normalizeSpelling(t.Base), "::")
	return c.String()
}

// Equal reports exact type identity
func (t TypeRef) Equal(other TypeRef) bool {
	return t.Canonical() == other.Canonical()
}

// IsAuto reports whether the base is a placeholder type
func (t TypeRef) IsAuto() bool {
	return normalizeSpelling(t.Base) == "auto"
}

// scalarTypes are builtin types that are never worth moving
var scalarTypes = map[string]bool{
	"bool": true, "char": true, "signed char": true, "unsigned char": true,
	"char8_t": true, "char16_t": true, "char32_t": true, "wchar_t": true,
	"short": true, "unsigned short": true, "int": true, "unsigned": true, "unsigned int": true,
	"long": true, "unsigned long": true, "long long": true, "unsigned long long": true,
	"float": true, "double": true, "long double": true,
	"std::size_t": true, "size_t": true, "std::ptrdiff_t": true, "std::nullptr_t": true,
	"std::int8_t": true, "std::int16_t": true, "std::int32_t": true, "std::int64_t": true,
	"std::uint8_t": true, "std::uint16_t": true, "std::uint32_t": true, "std::uint64_t": true,
}

// IsScalar reports whether the type is a builtin scalar or a pointer
func (t TypeRef) IsScalar() bool {
	if t.Pointers > 0 {
		return true
	}
	return scalarTypes[strings.TrimPrefix(normalizeSpelling(t.Base), "::")]
}

// normalizeSpelling collapses whitespace, keeping one space between words and after commas
func normalizeSpelling(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			prev := fields[i-1]
			if (isWordEnd(prev[len(prev)-1]) && isWordEnd(f[0])) || prev[len(prev)-1] == ',' {
				b.WriteByte(' ')
			}
		}
		b.WriteString(f)
	}
	return b.String()
}

func isWordEnd(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ReferenceCategory is the value category a parameter binds with
type ReferenceCategory int

const (
	CategoryValue ReferenceCategory = iota
	CategoryLValueRef
	CategoryRValueRef
	CategoryForwardingRef
)

// String returns the string representation of the category
func (c ReferenceCategory) String() string {
	switch c {
	case CategoryValue:
		return "value"
	case CategoryLValueRef:
		return "lvalue-ref"
	case CategoryRValueRef:
		return "rvalue-ref"
	case CategoryForwardingRef:
		return "forwarding-ref"
	default:
		return "unknown"
	}
}

// Parameter is one formal parameter of an overload
type Parameter struct {
	Type     TypeRef
	Category ReferenceCategory
	Index    int    // position in the overload's parameter list
	Name     string // declared name, empty when unnamed
}

// String returns the declaration spelling of the parameter
func (p Parameter) String() string {
	if p.Name == "" {
		return p.Type.String()
	}
	return p.Type.String() + " " + p.Name
}

// TemplateParamKind classifies a template parameter
type TemplateParamKind int

const (
	TemplateTypeParam TemplateParamKind = iota
	TemplateNonTypeParam
)

// TemplateParameter is one entry of a template parameter list, kept verbatim
type TemplateParameter struct {
	Kind     TemplateParamKind
	Pack     bool
	Name     string
	Type     string // declared type of a non-type parameter, or the type-constraint of a constrained type parameter
	Spelling string // verbatim text, e.g. "class... Args" or "std::size_t N = 0"
}

// TemplateParameterList is the template head of an overload
type TemplateParameterList struct {
	Params   []TemplateParameter
	Requires string // verbatim requires-clause, without the keyword
}

// Lookup returns the template parameter with the given name
func (l *TemplateParameterList) Lookup(name string) (TemplateParameter, bool) {
	if l == nil {
		return TemplateParameter{}, false
	}
	for _, p := range l.Params {
		if p.Name == name {
			return p, true
		}
	}
	return TemplateParameter{}, false
}

// String returns the verbatim template head
func (l *TemplateParameterList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		parts[i] = p.Spelling
	}
	head := "template <" + strings.Join(parts, ", ") + ">"
	if l.Requires != "" {
		head += " requires " + l.Requires
	}
	return head
}

// Classify returns the reference category of t within an overload's template head
func Classify(t TypeRef, tpl *TemplateParameterList) ReferenceCategory {
	switch t.Ref {
	case RefLValue:
		return CategoryLValueRef
	case RefRValue:
		if !t.Const && t.Pointers == 0 {
			if t.IsAuto() {
				return CategoryForwardingRef
			}
			if p, ok := tpl.Lookup(normalizeSpelling(t.Base)); ok && p.Kind == TemplateTypeParam {
				return CategoryForwardingRef
			}
		}
		return CategoryRValueRef
	default:
		return CategoryValue
	}
}
