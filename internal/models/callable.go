package models

import "strings"

// OperatorQualifiers is the cv/ref qualification of an operator() or member function
type OperatorQualifiers struct {
	Const bool
	Ref   RefKind
}

// String returns the trailing qualifier spelling, with a leading space when non-empty
func (q OperatorQualifiers) String() string {
	var b strings.Builder
	if q.Const {
		b.WriteString(" const")
	}
	if q.Ref != RefNone {
		if !q.Const {
			b.WriteByte(' ')
		}
		b.WriteString(q.Ref.String())
	}
	return b.String()
}

// IsZero reports whether there is no qualification at all
func (q OperatorQualifiers) IsZero() bool {
	return !q.Const && q.Ref == RefNone
}

// OverloadSignature is one invocation-operator overload of a closure type
type OverloadSignature struct {
	Return     TypeRef
	Params     []Parameter
	Template   *TemplateParameterList
	Templated  bool // explicit template head or abbreviated (auto) parameters
	Qualifiers OperatorQualifiers
	Noexcept   bool
	Constexpr  bool
	Loc        SourceLocation
}

// Arity returns the number of declared parameters
func (o OverloadSignature) Arity() int {
	return len(o.Params)
}

// HasPack reports whether any parameter is a pack expansion
func (o OverloadSignature) HasPack() bool {
	for _, p := range o.Params {
		if p.Type.Pack {
			return true
		}
	}
	return false
}

// Signature returns the operator() spelling used in diagnostics
func (o OverloadSignature) Signature() string {
	var b strings.Builder
	if o.Template != nil {
		b.WriteString(o.Template.String())
		b.WriteByte(' ')
	}
	if o.Constexpr {
		b.WriteString("constexpr ")
	}
	b.WriteString("auto operator()(")
	for i, p := range o.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	b.WriteString(o.Qualifiers.String())
	if o.Noexcept {
		b.WriteString(" noexcept")
	}
	b.WriteString(" -> ")
	b.WriteString(o.Return.String())
	return b.String()
}

// CallableDescriptor is the full invocation interface of one closure
type CallableDescriptor struct {
	Overloads []OverloadSignature
}

// Len returns the number of overloads
func (d CallableDescriptor) Len() int {
	return len(d.Overloads)
}

// Closure is a callable value as written: the C++ expression producing it and
// the operator() overloads its type exposes
type Closure struct {
	Expression string
	Operators  []OverloadSignature
}

// ClosureBinding is the single immutable static-storage value that every
// generated entity of one define_function or decorator application forwards into
type ClosureBinding struct {
	Name    string // C++ identifier of the binding
	Closure Closure
	Loc     SourceLocation // the original, pre-rename definition
}

// ReceiverQualification is the qualification of a deduced receiver parameter
type ReceiverQualification int

const (
	ReceiverNone   ReceiverQualification = iota // T&
	ReceiverConst                               // const T&
	ReceiverRValue                              // T&&
)

// String returns the string representation of the qualification
func (q ReceiverQualification) String() string {
	switch q {
	case ReceiverConst:
		return "const"
	case ReceiverRValue:
		return "rvalue"
	default:
		return "none"
	}
}

// Qualifiers returns the member function qualification the receiver becomes
func (q ReceiverQualification) Qualifiers() OperatorQualifiers {
	switch q {
	case ReceiverConst:
		return OperatorQualifiers{Const: true}
	case ReceiverRValue:
		return OperatorQualifiers{Ref: RefRValue}
	default:
		return OperatorQualifiers{}
	}
}

// ReceiverSpec identifies the receiver parameter of one member-mode overload
type ReceiverSpec struct {
	Index         int
	Owner         string
	Qualification ReceiverQualification
	RefQualified  bool // lvalue receivers spell & since a sibling overload takes T&&
}

// Qualifiers returns the member function qualification of the overload. A member
// set that mixes ref-qualified and unqualified declarations is ill-formed, so
// lvalue receivers become & and const& once any receiver is T&&.
func (s ReceiverSpec) Qualifiers() OperatorQualifiers {
	q := s.Qualification.Qualifiers()
	if s.RefQualified && q.Ref == RefNone {
		q.Ref = RefLValue
	}
	return q
}

// SynthesisMode selects free-function or member-function synthesis
type SynthesisMode int

const (
	FreeMode SynthesisMode = iota
	MemberMode
)

// String returns the string representation of the mode
func (m SynthesisMode) String() string {
	if m == MemberMode {
		return "member"
	}
	return "free"
}

// GeneratedEntity is one emitted forwarding declaration
type GeneratedEntity struct {
	Name       string
	Mode       SynthesisMode
	Owner      string // owning class in member mode
	Template   *TemplateParameterList
	Params     []Parameter // forwarded parameters, receiver removed
	Return     TypeRef
	Qualifiers OperatorQualifiers // member mode only
	Noexcept   bool
	Constexpr  bool
	Inline     bool
	Binding    string   // name of the ClosureBinding called by the body
	Arguments  []string // argument expressions of the forwarding call, receiver first in member mode
	Source     int      // index of the overload this entity was synthesized from
	Loc        SourceLocation
}

// Templated reports whether the entity is a template
func (e GeneratedEntity) Templated() bool {
	if e.Template != nil {
		return true
	}
	for _, p := range e.Params {
		if p.Type.IsAuto() {
			return true
		}
	}
	return false
}

// Call returns the single forwarding call that forms the body
func (e GeneratedEntity) Call() string {
	return e.Binding + "(" + strings.Join(e.Arguments, ", ") + ")"
}

// Signature returns the declaration spelling used in diagnostics
func (e GeneratedEntity) Signature() string {
	var b strings.Builder
	if e.Template != nil {
		b.WriteString(e.Template.String())
		b.WriteByte(' ')
	}
	b.WriteString("auto ")
	if e.Mode == MemberMode && e.Owner != "" {
		b.WriteString(e.Owner)
		b.WriteString("::")
	}
	b.WriteString(e.Name)
	b.WriteByte('(')
	for i, p := range e.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if e.Mode == MemberMode {
		b.WriteString(e.Qualifiers.String())
	}
	if e.Noexcept {
		b.WriteString(" noexcept")
	}
	b.WriteString(" -> ")
	b.WriteString(e.Return.String())
	return b.String()
}

// DecoratorTarget is what a decorator is invoked with: the renamed definition
// in callable form, or the closure produced by the previous decorator
type DecoratorTarget struct {
	Name     string // public name, for diagnostics
	Owner    string // owning class when the target is a member pointer
	Callable Closure
}

// IsMember reports whether the target is a member pointer
func (t DecoratorTarget) IsMember() bool {
	return t.Owner != ""
}
