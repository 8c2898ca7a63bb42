package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem provides structured, user-friendly output. Leveled
// messages may be written from several goroutines.
type DiagnosticSystem struct {
	mu        sync.Mutex
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
}

// NewDiagnosticSystem creates a new diagnostic system writing to stdout and stderr
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(os.Stdout),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
}

// SetOutput redirects regular and error output. Colors are re-detected for out.
func (d *DiagnosticSystem) SetOutput(out, errOut io.Writer) {
	d.output = out
	d.errorOut = errOut
	d.useColors = shouldUseColors(out)
}

// SetShowTime toggles timestamps on leveled messages
func (d *DiagnosticSystem) SetShowTime(show bool) {
	d.showTime = show
}

// Colors reports whether regular output is colored
func (d *DiagnosticSystem) Colors() bool {
	return d.useColors
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", color.FgRed, format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.errorOut, "WARN", color.FgYellow, format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", color.FgBlue, format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "SUCCESS", color.FgGreen, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", color.FgHiBlack, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", color.FgMagenta, format, args...)
	}
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		d.paint(d.output, color.FgCyan, "defn: %s\n", title)
	}
}

// Phase outputs a phase header such as "Parsing" or "Writing"
func (d *DiagnosticSystem) Phase(phase string) {
	if d.level >= DiagnosticInfo {
		d.paint(d.output, color.FgBlue, "%s:\n", phase)
	}
}

// Done outputs a completed item with a checkmark
func (d *DiagnosticSystem) Done(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		fmt.Fprint(d.output, d.getIndent())
		d.paint(d.output, color.FgGreen, "✓ ")
		fmt.Fprintf(d.output, format+"\n", args...)
	}
}

// Written outputs a file that was written
func (d *DiagnosticSystem) Written(path string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprint(d.output, d.getIndent())
		d.paint(d.output, color.FgMagenta, "✏ ")
		fmt.Fprintf(d.output, "%s\n", path)
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.indent++
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary outputs a final summary with statistics, keys sorted
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level < DiagnosticInfo {
		return
	}
	fmt.Fprintf(d.output, "\n%s\n", title)

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
	}
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level string, attr color.Attribute, format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var prefix strings.Builder
	prefix.WriteString(d.getIndent())
	if d.showTime {
		prefix.WriteString(time.Now().Format("15:04:05 "))
	}
	fmt.Fprint(writer, prefix.String())
	d.paint(writer, attr, "[%s] ", level)
	fmt.Fprintf(writer, format+"\n", args...)
}

// paint writes a colored fragment, or a plain one when colors are off
func (d *DiagnosticSystem) paint(writer io.Writer, attr color.Attribute, format string, args ...interface{}) {
	c := color.New(attr)
	if d.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintf(writer, format, args...)
}

// getIndent returns the current indentation string
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used for w
func shouldUseColors(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if term := os.Getenv("TERM"); term == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
