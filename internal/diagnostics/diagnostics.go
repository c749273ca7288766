// Package diagnostics turns canonicalization problems into coded, located
// compiler diagnostics.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/canscope/internal/region"
)

type ErrorCode string

const (
	ErrC001 ErrorCode = "C001" // Identifier not in scope
	ErrC002 ErrorCode = "C002" // Illegal shadowing
	ErrC003 ErrorCode = "C003" // Duplicate import
	ErrC004 ErrorCode = "C004" // Opaque type used outside its declaring module
	ErrC005 ErrorCode = "C005" // Opaque type not defined
	ErrC006 ErrorCode = "C006" // Header-only declaration inside a nested scope

	ErrS001 ErrorCode = "S001" // Malformed canonicalization script
)

var errorTemplates = map[ErrorCode]string{
	ErrC001: "I cannot find `%s` in this scope",
	ErrC002: "`%s` is already defined; shadowing is not allowed",
	ErrC003: "`%s` is imported more than once",
	ErrC004: "the opaque type `%s` can only be wrapped or unwrapped in the module that declares it",
	ErrC005: "the opaque type `%s` is not defined in this module",
	ErrC006: "%s is only allowed at the top level of a module",
	ErrS001: "%s",
}

// Related is a secondary location attached to a diagnostic.
type Related struct {
	Region  region.Region
	Message string
}

type DiagnosticError struct {
	Code        ErrorCode
	File        string
	Region      region.Region
	Message     string
	Related     []Related
	Suggestions []string
}

// NewError builds a diagnostic from the template registered for code.
func NewError(code ErrorCode, r region.Region, args ...any) *DiagnosticError {
	tmpl, ok := errorTemplates[code]
	if !ok {
		tmpl = strings.TrimSpace(strings.Repeat("%v ", len(args)))
	}
	return &DiagnosticError{
		Code:    code,
		Region:  r,
		Message: fmt.Sprintf(tmpl, args...),
	}
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	fmt.Fprintf(&sb, "%s: error [%s]: %s", e.Region, e.Code, e.Message)
	return sb.String()
}

// WithRelated appends a secondary location and returns e.
func (e *DiagnosticError) WithRelated(r region.Region, format string, args ...any) *DiagnosticError {
	e.Related = append(e.Related, Related{Region: r, Message: fmt.Sprintf(format, args...)})
	return e
}

// WithSuggestions sets the "did you mean" candidates and returns e.
func (e *DiagnosticError) WithSuggestions(names []string) *DiagnosticError {
	e.Suggestions = names
	return e
}
