package diagnostic

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"yaani/internal/common"
)

// Diagnostics holds all diagnostic information from loading a configuration.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity DiagnosticSeverity
	// Code is a stable identifier, e.g. "unknown_filter".
	Code    string
	Message string
	// Import names the import statement, empty for top-level keys.
	Import string
	// Field locates the key inside the statement, e.g. "sub_import.site.bind".
	Field string
	// Suggestions are names the author probably meant.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Scope reports diagnostics against one place of the configuration: an
// import statement, narrowed to a field with Field.
type Scope struct {
	d           *Diagnostics
	imp         string
	field       string
	suggestions []string
}

// At returns a scope for an import statement and a field inside it. An empty
// import name addresses the top-level netbox keys.
func (d *Diagnostics) At(importName, field string) Scope {
	return Scope{d: d, imp: importName, field: field}
}

// Field narrows the scope to a nested key. Names starting with "[" index the
// current field, others are joined with a dot.
func (s Scope) Field(name string) Scope {
	switch {
	case s.field == "" || name == "":
		s.field += name
	case strings.HasPrefix(name, "["):
		s.field += name
	default:
		s.field += "." + name
	}

	return s
}

// Suggest attaches candidate names to what is reported through the returned
// scope.
func (s Scope) Suggest(names ...string) Scope {
	s.suggestions = slices.Clone(names)
	return s
}

// Errorf reports an error.
func (s Scope) Errorf(code, format string, args ...any) {
	s.d.Errors = append(s.d.Errors, s.diagnostic(DiagnosticError, code, format, args))
}

// Warnf reports a warning.
func (s Scope) Warnf(code, format string, args ...any) {
	s.d.Warnings = append(s.d.Warnings, s.diagnostic(DiagnosticWarning, code, format, args))
}

// Infof reports an informational note.
func (s Scope) Infof(code, format string, args ...any) {
	s.d.Infos = append(s.d.Infos, s.diagnostic(DiagnosticInfo, code, format, args))
}

func (s Scope) diagnostic(sev DiagnosticSeverity, code, format string, args []any) Diagnostic {
	return Diagnostic{
		Severity:    sev,
		Code:        code,
		Message:     fmt.Sprintf(format, args...),
		Import:      s.imp,
		Field:       s.field,
		Suggestions: s.suggestions,
	}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Infos...)
}

// ForImport returns the diagnostics of one import statement, in All order.
func (d *Diagnostics) ForImport(name string) []Diagnostic {
	var out []Diagnostic

	for _, diag := range d.All() {
		if diag.Import == name {
			out = append(out, diag)
		}
	}

	return out
}

// Error returns a combined error from all error diagnostics, or nil.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		parts[i] = e.String()
	}

	return errors.New(strings.Join(parts, "; "))
}

// Location renders where the diagnostic applies: "[import] field".
func (d Diagnostic) Location() string {
	var loc []string
	if d.Import != "" {
		loc = append(loc, "["+d.Import+"]")
	}

	if d.Field != "" {
		loc = append(loc, d.Field)
	}

	return strings.Join(loc, " ")
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if loc := d.Location(); loc != "" {
		return loc + ": " + msg
	}

	return msg
}
