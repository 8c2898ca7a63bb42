package utils

import "fmt"

// PatternError reports a source pattern that could not be expanded
type PatternError struct {
	Op      string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }
