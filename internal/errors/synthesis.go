package errors

import (
	"fmt"
	"strings"
)

// NotCallableError is reported when a bound closure exposes no invocation operator
type NotCallableError struct {
	*BaseError
	Binding string // name of the binding that is not callable
}

// NewNotCallableError creates a new not-callable error for the named declaration
func NewNotCallableError(name, expression string) *NotCallableError {
	message := fmt.Sprintf("'%s' is bound to an expression that exposes no operator()", name)
	err := &NotCallableError{
		BaseError: New(NotCallableErrorCode, message),
		Binding:   name,
	}
	err.WithContext("function_name", name).
		WithContext("expression", expression).
		WithSuggestions(
			"Declare at least one operator() overload for the callable",
			"Check that the closure reference names the intended closure declaration",
		)
	return err
}

// AmbiguousOverloadError is reported when two overloads collide once operator qualification is erased
type AmbiguousOverloadError struct {
	*BaseError
	First           int    // index of the earlier overload
	Second          int    // index of the later overload
	FirstSignature  string // spelling of the earlier overload
	SecondSignature string // spelling of the later overload
}

// NewAmbiguousOverloadError creates a new ambiguity error naming both colliding overloads
func NewAmbiguousOverloadError(name string, first, second int, firstSig, secondSig string) *AmbiguousOverloadError {
	message := fmt.Sprintf("overloads #%d and #%d of '%s' are indistinguishable once operator() qualification is erased", first, second, name)
	err := &AmbiguousOverloadError{
		BaseError:       New(AmbiguousOverloadErrorCode, message),
		First:           first,
		Second:          second,
		FirstSignature:  firstSig,
		SecondSignature: secondSig,
	}
	err.WithContext("function_name", name).
		WithContext("first_overload", fmt.Sprintf("#%d %s", first, firstSig)).
		WithContext("second_overload", fmt.Sprintf("#%d %s", second, secondSig)).
		WithSuggestions(
			"Generated functions have no qualifier axis; make the parameter lists differ",
			"Remove one of the two operator() overloads from the callable",
		)
	return err
}

// NewAmbiguousMemberOverloadError reports two member-mode overloads that become the
// same member function declaration once their receivers are removed
func NewAmbiguousMemberOverloadError(name, owner string, first, second int, firstSig, secondSig, member string) *AmbiguousOverloadError {
	err := NewAmbiguousOverloadError(name, first, second, firstSig, secondSig)
	err.Message = fmt.Sprintf("overloads #%d and #%d of '%s' both become '%s' once the receiver is removed", first, second, name, member)
	err.WithContext("owner", owner)
	err.Hints = []string{
		"Make the parameter lists differ apart from the receiver",
		"Give the receivers different qualification (T&, const T&, T&&)",
	}
	return err
}

// MissingReceiverParameterError is reported when no parameter of a member-mode overload is the receiver
type MissingReceiverParameterError struct {
	*BaseError
	Overload  int    // index of the offending overload
	Signature string // spelling of the offending overload
	Owner     string // owning class
}

// NewMissingReceiverParameterError creates a new missing-receiver error
func NewMissingReceiverParameterError(name, owner string, overload int, signature string) *MissingReceiverParameterError {
	message := fmt.Sprintf("overload #%d of '%s' has no parameter of type %s&, const %s&, or %s&&", overload, name, owner, owner, owner)
	err := &MissingReceiverParameterError{
		BaseError: New(MissingReceiverParameterErrorCode, message),
		Overload:  overload,
		Signature: signature,
		Owner:     owner,
	}
	err.WithContext("function_name", name).
		WithContext("type_name", owner).
		WithContext("overload", fmt.Sprintf("#%d %s", overload, signature)).
		WithSuggestions(
			fmt.Sprintf("Add a parameter of exactly %s&, const %s&, or %s&& to stand for the object", owner, owner, owner),
			"Conversions are not considered; base classes, pointers and values never match",
		)
	return err
}

// MultipleReceiverCandidatesError is reported when more than one parameter could be the receiver
type MultipleReceiverCandidatesError struct {
	*BaseError
	Overload   int   // index of the offending overload
	Candidates []int // indices of the matching parameters
	Owner      string
}

// NewMultipleReceiverCandidatesError creates a new ambiguous-receiver error
func NewMultipleReceiverCandidatesError(name, owner string, overload int, signature string, candidates []int) *MultipleReceiverCandidatesError {
	positions := make([]string, len(candidates))
	for i, c := range candidates {
		positions[i] = fmt.Sprintf("%d", c)
	}
	message := fmt.Sprintf("overload #%d of '%s' has %d parameters that could be the %s receiver (positions %s)",
		overload, name, len(candidates), owner, strings.Join(positions, ", "))
	err := &MultipleReceiverCandidatesError{
		BaseError:  New(MultipleReceiverCandidatesErrorCode, message),
		Overload:   overload,
		Candidates: candidates,
		Owner:      owner,
	}
	err.WithContext("function_name", name).
		WithContext("type_name", owner).
		WithContext("overload", fmt.Sprintf("#%d %s", overload, signature)).
		WithSuggestion("Pass the other objects by value or by pointer so exactly one parameter names the receiver")
	return err
}

// TemplateShapeError is reported when a template parameter list cannot be carried over verbatim
type TemplateShapeError struct {
	*BaseError
	Overload int    // index of the offending overload
	Reason   string // why the template list cannot be reused
}

// NewTemplateShapeError creates a new template shape error
func NewTemplateShapeError(name string, overload int, signature, reason string) *TemplateShapeError {
	message := fmt.Sprintf("template parameters of overload #%d of '%s' cannot be carried over: %s", overload, name, reason)
	err := &TemplateShapeError{
		BaseError: New(TemplateShapeErrorCode, message),
		Overload:  overload,
		Reason:    reason,
	}
	err.WithContext("function_name", name).
		WithContext("overload", fmt.Sprintf("#%d %s", overload, signature))
	return err
}
