package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Validate runs the validators in order and stops at the first failure
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty validates that a string is not empty
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		return nil
	}
}

// HasPrefix validates that a string has a specific prefix
func HasPrefix(field, prefix string) Validator[string] {
	return func(value string) error {
		if !strings.HasPrefix(value, prefix) {
			return ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must start with '%s'", prefix)}
		}
		return nil
	}
}

var cppIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsCppIdentifier validates that a string is a plain C++ identifier
func IsCppIdentifier(field string) Validator[string] {
	return func(value string) error {
		if !cppIdentifier.MatchString(value) {
			return ValidationError{Field: field, Value: value, Message: "must be a C++ identifier"}
		}
		if strings.HasPrefix(value, "__") {
			return ValidationError{Field: field, Value: value, Message: "identifiers starting with '__' are reserved"}
		}
		return nil
	}
}

// IsOneOf validates that a value is one of the allowed values
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be one of %v", allowed)}
	}
}

// ValidateEach applies itemValidator to every element, naming the failing index
func ValidateEach[T any](field string, itemValidator Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, v := range values {
			if err := itemValidator(v); err != nil {
				return ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Value: v, Message: err.Error()}
			}
		}
		return nil
	}
}
