package diagnostics

import (
	"errors"
	"fmt"
)

// internalPrefix marks messages that describe a bug in the engine itself.
const internalPrefix = "internal compiler error: "

// Position is a location in source text. The zero Position means "unknown".
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	switch {
	case !p.IsValid() && p.File == "":
		return "<unknown>"
	case !p.IsValid():
		return p.File
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// DiagnosticError is a positioned fatal fault.
type DiagnosticError struct {
	Code    ErrorCode
	Pos     Position
	Message string
}

// NewError builds a diagnostic for code at pos.
func NewError(code ErrorCode, pos Position, message string) *DiagnosticError {
	if code.IsInternal() {
		message = internalPrefix + message
	}
	return &DiagnosticError{Code: code, Pos: pos, Message: message}
}

// Errorf is NewError with a format string.
func Errorf(code ErrorCode, pos Position, format string, args ...any) *DiagnosticError {
	return NewError(code, pos, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Error() string {
	if e.Pos.IsValid() || e.Pos.File != "" {
		return fmt.Sprintf("%s: error[%s]: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("error[%s]: %s", e.Code, e.Message)
}

// IsInternal reports whether the diagnostic describes an engine bug.
func (e *DiagnosticError) IsInternal() bool {
	return e.Code.IsInternal()
}

// CodeOf extracts the code of a *DiagnosticError anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
