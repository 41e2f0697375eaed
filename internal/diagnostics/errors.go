package diagnostics

import (
	"fmt"

	"github.com/funvibe/emojc/internal/token"
)

// CompilerError is a diagnostic produced during compilation. Errors abort the
// offending top-level construct only; the file-level loop records them and
// continues.
type CompilerError struct {
	Code     Code
	Position token.SourcePosition
	Message  string
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("%s: error %s: %s", e.Position, e.Code, e.Message)
}

// NewError creates a diagnostic at the given position.
func NewError(code Code, pos token.SourcePosition, format string, args ...interface{}) *CompilerError {
	return &CompilerError{Code: code, Position: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap converts an arbitrary error into a CompilerError at the given
// position. Stream errors from the token layer surface verbatim.
func Wrap(pos token.SourcePosition, err error) *CompilerError {
	if ce, ok := err.(*CompilerError); ok {
		return ce
	}
	code := ErrL001
	if _, ok := err.(*InternalError); ok {
		code = ErrX001
	}
	if ue, ok := err.(*token.ErrUnexpectedEnd); ok {
		code = ErrL004
		if ue.Position.Line != 0 {
			pos = ue.Position
		}
	}
	if ut, ok := err.(*token.ErrUnexpectedToken); ok {
		pos = ut.Token.Position
	}
	return &CompilerError{Code: code, Position: pos, Message: err.Error()}
}

// Warning is a non-fatal diagnostic. Warnings are always printed and never
// stop compilation.
type Warning struct {
	Code     Code
	Position token.SourcePosition
	Message  string
}

func NewWarning(code Code, pos token.SourcePosition, format string, args ...interface{}) *Warning {
	return &Warning{Code: code, Position: pos, Message: fmt.Sprintf(format, args...)}
}

// InternalError signals an invariant violation inside the compiler, e.g. a
// value too large to box where boxing was already decided. It is fatal and
// aborts the whole compile.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Message
}

func Internal(format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
