package models

import "strings"

// ScopeKind distinguishes the scopes a declaration can appear in
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeNamespace
	ScopeClass
)

// String returns the string representation of the scope kind
func (k ScopeKind) String() string {
	switch k {
	case ScopeNamespace:
		return "namespace"
	case ScopeClass:
		return "class"
	default:
		return "global"
	}
}

// Scope is a namespace or class body holding declarations in source order
type Scope struct {
	Kind         ScopeKind
	Name         string
	Path         []string // enclosing scope names, outermost first, including Name
	Namespaces   int      // number of leading Path entries that are namespaces
	Declarations []Declaration
	Loc          SourceLocation
}

// NamespacePath returns the namespaces enclosing the scope, including itself
func (s *Scope) NamespacePath() []string {
	return s.Path[:s.Namespaces]
}

// ClassPath returns the chain of classes enclosing the scope, outermost first
func (s *Scope) ClassPath() []string {
	return s.Path[s.Namespaces:]
}

// Qualified returns the qualified C++ name of the scope
func (s *Scope) Qualified() string {
	return strings.Join(s.Path, "::")
}

// Mode returns the synthesis mode used for define_function in this scope
func (s *Scope) Mode() SynthesisMode {
	if s.Kind == ScopeClass {
		return MemberMode
	}
	return FreeMode
}

// Declaration is a tagged variant; exactly one field is set
type Declaration struct {
	Define    *DefineFunction
	Decorated *DecoratedDefinition
	Scope     *Scope
}

// CallableRef is the callable expression of a define_function: either a
// reference to a named closure declaration or an inline closure
type CallableRef struct {
	ClosureName string   // set when referencing a closure declaration
	Inline      *Closure // set for an inline expression
}

// DefineFunction is one define_function(name, callable) invocation
type DefineFunction struct {
	Name     string
	Callable CallableRef
	Loc      SourceLocation
}

// DecoratorRef is one @decorator application
type DecoratorRef struct {
	Name string
	Args string // verbatim argument list without parentheses, empty when absent
	Loc  SourceLocation
}

// FunctionDefinition is a hand-written function or member function
type FunctionDefinition struct {
	Name       string
	Template   *TemplateParameterList
	Params     []Parameter
	Return     TypeRef
	Qualifiers OperatorQualifiers // member functions only
	Noexcept   bool
	Constexpr  bool
	Body       string
	Loc        SourceLocation
}

// Templated reports whether the definition is a template
func (f FunctionDefinition) Templated() bool {
	if f.Template != nil {
		return true
	}
	for _, p := range f.Params {
		if p.Type.IsAuto() {
			return true
		}
	}
	return false
}

// DecoratedDefinition is a definition annotated with decorators, innermost last
type DecoratedDefinition struct {
	Decorators []DecoratorRef
	Function   FunctionDefinition
	Loc        SourceLocation
}

// DecoratorDecl declares a decorator available to the unit
type DecoratorDecl struct {
	Name       string
	Expression string
	Kind       string
	Loc        SourceLocation
}

// ClosureDecl declares a named closure that define_function can reference
type ClosureDecl struct {
	Name    string
	Closure Closure
	Loc     SourceLocation
}

// Unit is one parsed .defn file
type Unit struct {
	File       string
	Decorators []DecoratorDecl
	Closures   []ClosureDecl
	Root       *Scope
}

// LookupClosure returns the closure declaration with the given name
func (u *Unit) LookupClosure(name string) (ClosureDecl, bool) {
	for _, c := range u.Closures {
		if c.Name == name {
			return c, true
		}
	}
	return ClosureDecl{}, false
}

// ClosureNames returns the names of all closure declarations in source order
func (u *Unit) ClosureNames() []string {
	names := make([]string, len(u.Closures))
	for i, c := range u.Closures {
		names[i] = c.Name
	}
	return names
}

// Walk visits every scope depth-first in source order
func (u *Unit) Walk(visit func(scope *Scope)) {
	if u.Root == nil {
		return
	}
	var walk func(s *Scope)
	walk = func(s *Scope) {
		visit(s)
		for _, d := range s.Declarations {
			if d.Scope != nil {
				walk(d.Scope)
			}
		}
	}
	walk(u.Root)
}
