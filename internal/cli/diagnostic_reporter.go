package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/defn/internal/errors"
)

// DiagnosticReporter prints coded errors with location, context and suggestions
type DiagnosticReporter struct {
	out     io.Writer
	verbose bool
	colors  bool
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(out io.Writer, verbose, colors bool) *DiagnosticReporter {
	return &DiagnosticReporter{out: out, verbose: verbose, colors: colors}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	r.paint(color.New(color.FgYellow, color.Bold), "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints every error carried by err, ordered by location
func (r *DiagnosticReporter) ReportError(err error) {
	errs := errors.Flatten(err)
	errors.SortByLocation(errs)

	for i, e := range errs {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.reportDefnError(e)
	}
}

// reportDefnError reports one error in the clang-like "file:line:col: error:" layout
func (r *DiagnosticReporter) reportDefnError(err errors.DefnError) {
	d := errors.NewDiagnostic(err)

	if loc := err.Location(); !loc.IsEmpty() {
		r.paint(color.New(color.Bold), loc.String()+": ")
	}
	r.paint(color.New(color.FgRed, color.Bold), "error: ")
	fmt.Fprintf(r.out, "%s ", d.Message)
	r.paint(color.New(color.FgHiBlack), "["+d.Code+"]")
	fmt.Fprintln(r.out)

	if len(d.Context) > 0 {
		r.printContext(d.Context)
	}
	if len(d.Suggestions) > 0 {
		r.printSuggestions(d.Suggestions)
	}

	if r.verbose {
		r.printCauseChain(err)
	}
}

// printContext prints context information, the well-known keys first
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	importantKeys := []string{"function_name", "owner", "overload", "signature", "decorator", "closure"}
	printed := make(map[string]bool)

	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), value)
			printed[key] = true
		}
	}

	var rest []string
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), context[key])
	}
}

// formatContextKey formats context keys to be more readable
func (r *DiagnosticReporter) formatContextKey(key string) string {
	switch key {
	case "function_name":
		return "Function"
	case "owner":
		return "Class"
	default:
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	for _, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		r.paint(color.New(color.FgCyan), "   hint: ")
		fmt.Fprintf(r.out, "%s\n", lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "         %s\n", line)
			}
		}
	}
}

// printCauseChain prints the wrapped causes in verbose mode
func (r *DiagnosticReporter) printCauseChain(err error) {
	level := 1
	for cause := unwrap(err); cause != nil; cause = unwrap(cause) {
		fmt.Fprintf(r.out, "   cause %d: %s\n", level, cause.Error())
		level++
	}
}

func unwrap(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return nil
}

// ReportSuccess prints the summary of a generation run
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	r.paint(color.New(color.FgGreen), "✓ ")
	fmt.Fprintf(r.out, "%d files, %d declarations, %d entities", summary.FilesProcessed, summary.Declarations, summary.EntitiesGenerated)
	if summary.Unchanged > 0 {
		fmt.Fprintf(r.out, " (%d unchanged)", summary.Unchanged)
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) paint(c *color.Color, s string) {
	if r.colors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprint(r.out, s)
}
