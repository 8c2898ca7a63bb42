package errors

import "fmt"

// SyntaxError represents a malformed .defn declaration
type SyntaxError struct {
	*BaseError
	Token string // offending token, when known
}

// NewSyntaxError creates a new syntax error at loc
func NewSyntaxError(loc SourceLocation, message, token string) *SyntaxError {
	err := &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
	}
	err.WithLocation(loc)
	if token != "" {
		err.WithContext("token", token)
	}
	return err
}

// UnknownDecoratorError is reported when a decorator name is not registered
type UnknownDecoratorError struct {
	*BaseError
	Name string
}

// NewUnknownDecoratorError creates an unknown decorator error with optional close matches
func NewUnknownDecoratorError(name string, closest []string) *UnknownDecoratorError {
	err := &UnknownDecoratorError{
		BaseError: Newf(UnknownDecoratorErrorCode, "decorator '%s' is not registered", name),
		Name:      name,
	}
	err.WithContext("decorator", name)
	for _, c := range closest {
		err.WithSuggestion(fmt.Sprintf("Did you mean '@%s'?", c))
	}
	err.WithSuggestion("Declare it with `decorator NAME = `expr` as KIND;` or list it under decorators: in defn.yaml")
	return err
}

// UnknownClosureError is reported when define_function names a closure that was never declared
type UnknownClosureError struct {
	*BaseError
	Name string
}

// NewUnknownClosureError creates an unknown closure error with optional close matches
func NewUnknownClosureError(name string, closest []string) *UnknownClosureError {
	err := &UnknownClosureError{
		BaseError: Newf(UnknownClosureErrorCode, "closure '%s' is not declared", name),
		Name:      name,
	}
	err.WithContext("closure", name)
	for _, c := range closest {
		err.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", c))
	}
	return err
}

// DecoratorTargetError is reported when a decorator cannot be applied to its target
type DecoratorTargetError struct {
	*BaseError
	Decorator string
	Target    string
}

// NewDecoratorTargetError creates a decorator target error
func NewDecoratorTargetError(decorator, target, reason string) *DecoratorTargetError {
	err := &DecoratorTargetError{
		BaseError: Newf(DecoratorTargetErrorCode, "decorator '%s' cannot be applied to '%s': %s", decorator, target, reason),
		Decorator: decorator,
		Target:    target,
	}
	err.WithContext("decorator", decorator).WithContext("function_name", target)
	return err
}

// NewDuplicateDeclarationError reports a name declared twice in the same scope
func NewDuplicateDeclarationError(kind, name string, loc, previous SourceLocation) *BaseError {
	return Newf(DuplicateDeclarationErrorCode, "%s '%s' is already declared at %s", kind, name, previous).
		WithLocation(loc).
		WithContext("name", name)
}

// PolicyViolationError is reported when a user policy rejects a generated entity
type PolicyViolationError struct {
	*BaseError
	Policy string
}

// NewPolicyViolationError creates a policy violation error
func NewPolicyViolationError(policy, entity, message string) *PolicyViolationError {
	err := &PolicyViolationError{
		BaseError: Newf(PolicyViolationErrorCode, "policy '%s' rejected %s: %s", policy, entity, message),
		Policy:    policy,
	}
	err.WithContext("policy", policy).WithContext("entity", entity)
	return err
}
