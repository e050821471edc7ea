// Package diagnostic holds the compiler message model shared by every compiler port.
//
// A List is a transcript of what the toolchain reported. Nothing in this package reorders,
// merges, or deduplicates entries, and line/column numbers are stored exactly as received
// (1-based for every toolchain livescript ships with).
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity maps the severity words compilers commonly print. Unknown words are errors.
func ParseSeverity(word string) Severity {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "warning", "warn":
		return SeverityWarning
	case "info", "note", "hint", "information":
		return SeverityInfo
	default:
		return SeverityError
	}
}

// Diagnostic is one compiler-reported message with its source position.
type Diagnostic struct {
	FilePath string
	Line     int
	Column   int
	Severity Severity
	// Category is the compiler's code or subcategory, e.g. "SC0010" or "parse".
	Category string
	Message  string
}

// Synthetic builds the single error diagnostic reported when the toolchain itself could
// not produce any output, e.g. a missing binary or a crashed invocation.
func Synthetic(filePath, category, message string) Diagnostic {
	return Diagnostic{
		FilePath: filePath,
		Severity: SeverityError,
		Category: category,
		Message:  message,
	}
}

// IsError reports whether the diagnostic has error severity.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// String renders the diagnostic as file(line,col): severity category: message.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.FilePath != "" {
		b.WriteString(d.FilePath)
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, "(%d,%d)", d.Line, d.Column)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(d.Severity.String())
	if d.Category != "" {
		b.WriteString(" ")
		b.WriteString(d.Category)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// List is an ordered transcript of diagnostics for one compile invocation.
type List []Diagnostic

// HasErrors reports whether any entry has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error-severity entries in their original order.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// String renders one diagnostic per line.
func (l List) String() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Error lets a List travel as an error value, e.g. inside a wrapped compile failure.
func (l List) Error() string {
	if len(l) == 0 {
		return "no diagnostics"
	}
	if len(l) == 1 {
		return l[0].String()
	}
	return fmt.Sprintf("%s (and %d more)", l[0].String(), len(l)-1)
}
