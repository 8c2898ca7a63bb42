package errors

import (
	stderrors "errors"
	"sort"
)

// Diagnostic is the serializable form of a DefnError
type Diagnostic struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	File        string                 `json:"file,omitempty"`
	Line        int                    `json:"line,omitempty"`
	Column      int                    `json:"column,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
}

// Text returns the message without location or code
func (e *BaseError) Text() string {
	return e.Message
}

// Flatten returns the individual errors carried by err. Collections are
// expanded and plain errors are wrapped as GenerationError.
func Flatten(err error) []DefnError {
	if err == nil {
		return nil
	}

	var multi *MultipleErrors
	if stderrors.As(err, &multi) {
		var out []DefnError
		for _, e := range multi.Errors {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	if defnErr, ok := Find(err); ok {
		return []DefnError{defnErr}
	}
	return []DefnError{Wrap(GenerationErrorCode, err.Error(), err)}
}

// SortByLocation orders errors by file, line and column; errors without a
// location keep their relative order at the end
func SortByLocation(errs []DefnError) {
	sort.SliceStable(errs, func(i, j int) bool {
		a, b := errs[i].Location(), errs[j].Location()
		if a.IsEmpty() != b.IsEmpty() {
			return !a.IsEmpty()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// NewDiagnostic converts err into its serializable form
func NewDiagnostic(err DefnError) Diagnostic {
	message := err.Error()
	if texter, ok := err.(interface{ Text() string }); ok {
		message = texter.Text()
	}

	loc := err.Location()
	d := Diagnostic{
		Code:        err.ErrorCode().String(),
		Message:     message,
		File:        loc.File,
		Line:        loc.Line,
		Column:      loc.Column,
		Suggestions: err.Suggestions(),
	}
	if ctx := err.Context(); len(ctx) > 0 {
		d.Context = ctx
	}
	return d
}

// Diagnostics flattens err and converts every error, sorted by location
func Diagnostics(err error) []Diagnostic {
	errs := Flatten(err)
	SortByLocation(errs)

	out := make([]Diagnostic, len(errs))
	for i, e := range errs {
		out[i] = NewDiagnostic(e)
	}
	return out
}
