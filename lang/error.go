package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Position locates a token or node in the original source text.
// Lines and columns are 1-based.
type Position struct {
	Line   int
	Column int
}

// IsZero reports whether the position is unset.
func (p Position) IsZero() bool { return p.Line == 0 && p.Column == 0 }

// String renders the position as "line L, column C".
func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}

// Lexical errors.
var (
	ErrUnterminatedString = NewError("unterminated string literal")
	ErrUnexpectedChar     = NewError("unexpected character")
)

// Parse errors. Parsing is all-or-nothing: on any of these the parser
// returns no partial tree.
var (
	ErrUnexpectedToken = NewError("unexpected token")
	ErrMissingDelim    = NewError("missing closing delimiter")
	ErrDuplicateKey    = NewError("duplicate key in block")
	ErrUnknownVerb     = NewError("unknown system verb")
)

// Runtime errors. All are terminal for the current run.
var (
	ErrUndefinedVariable = NewError("undefined variable")
	ErrUndefinedFunction = NewError("undefined function")
	ErrDuplicateVariable = NewError("variable already declared")
	ErrArityMismatch     = NewError("missing function parameter")
	ErrUnknownParameter  = NewError("unknown function parameter")
	ErrTypeMismatch      = NewError("operand type mismatch")
	ErrStaticShape       = NewError("member access requires a variable")
	ErrResolution        = NewError("module resolution failed")
)

// Ancillary errors.
var (
	ErrReadInput = NewError("failed to read input")
	ErrMarshal   = NewError("failed to encode program")
	ErrUnmarshal = NewError("failed to decode program")
)

// Error represents a structured error with optional slog attributes and a
// source position. It implements error, slog.LogValuer, and supports
// errors.Is against its originating sentinel through derived copies.
type Error struct {
	msg      string
	err      error       // Wrapped cause (for errors.Unwrap)
	attrs    []slog.Attr // Attributes for structured logging
	pos      Position
	sentinel *Error // Identity anchor for errors.Is
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.sentinel = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.sentinel = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")

	if !e.pos.IsZero() {
		s += " at " + e.pos.String()
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is this error's sentinel, so derived copies
// created by With, Wrap, and WithPosition still match the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.sentinel == t.sentinel
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if !e.pos.IsZero() {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:      e.msg,
		err:      err,
		attrs:    e.attrs, // Share attrs
		pos:      e.pos,
		sentinel: e.sentinel,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:      e.msg,
		err:      e.err,
		attrs:    newAttrs,
		pos:      e.pos,
		sentinel: e.sentinel,
	}
}

// WithPosition attaches a source position to the error.
func (e *Error) WithPosition(pos Position) *Error {
	return &Error{
		msg:      e.msg,
		err:      e.err,
		attrs:    e.attrs,
		pos:      pos,
		sentinel: e.sentinel,
	}
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	return e.pos, !e.pos.IsZero()
}

// FormatSnippet renders the offending source line with a caret marker
// pointing at the error column:
//
//	  3 | system.set{"name": v "value": "y"};
//	              ^
//
// It returns an empty string when the position is out of bounds.
func FormatSnippet(source string, pos Position) string {
	if pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	var buf strings.Builder

	line := lines[pos.Line-1]

	buf.WriteString("  ")
	buf.WriteString(strconv.Itoa(pos.Line))
	buf.WriteString(" | ")
	buf.WriteString(line)
	buf.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	lineNumWidth := len(strconv.Itoa(pos.Line))
	padding := strings.Repeat(" ", lineNumWidth+5)

	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	buf.WriteString(padding + "^\n")

	return buf.String()
}
