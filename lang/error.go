package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/larf/lang/lexer"
)

// Sentinel errors. Match them with [errors.Is]; the concrete error returned
// by this package is a [*CompileError], [*ParseError], or [*BindError].
var (
	ErrRegistrySealed    = NewError("registry sealed")
	ErrInvalidPrototype  = NewError("invalid prototype")
	ErrDuplicate         = NewError("duplicate prototype")
	ErrInvalidOperator   = NewError("invalid operator")
	ErrLeftRecursive     = NewError("rule begins with a sub-expression")
	ErrInvalidPattern    = NewError("invalid pattern")
	ErrUnexpected        = NewError("unexpected input")
	ErrInvalidUnit       = NewError("invalid lexical unit")
	ErrAmbiguousGrammar  = NewError("ambiguous grammar")
	ErrGroupArity        = NewError("token group count mismatch")
	ErrTrailingSeparator = NewError("trailing separator")
	ErrNestingDepth      = NewError("maximum nesting depth exceeded")
	ErrUndeclared        = NewError("undeclared name")
	ErrArity             = NewError("parameter count mismatch")
	ErrUndeclaredError   = NewError("undeclared error kind")
	ErrDepthExceeded     = NewError("maximum evaluation depth exceeded")
	ErrNoRule            = NewError("token has no evaluation rule")
	ErrValueType         = NewError("value type mismatch")
	ErrReadInput         = NewError("failed to read input")
)

// Error is an error message with optional cause and structured attributes.
// Errors derived from the same sentinel with [Error.With] or [Error.Wrap]
// match it with [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel Error.
func NewError(msg string) *Error { return &Error{msg: msg} }

func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.err != nil:
		return e.err.Error()
	default:
		return e.msg
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// Wrapf is Wrap with a formatted cause.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{msg: e.msg, err: e.err, attrs: append(slices.Clip(e.attrs), attrs...)}
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return slices.Clone(e.attrs) }

// CompileError reports a prototype that cannot be registered. It is raised
// during setup and is always fatal.
type CompileError struct {
	Err       error
	Prototype string
}

func (e *CompileError) Error() string {
	if e.Prototype == "" {
		return "compile error: " + e.Err.Error()
	}

	return "compile error in token " + strconv.Quote(e.Prototype) + ": " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }

// LogValue implements [slog.LogValuer].
func (e *CompileError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("prototype", e.Prototype),
		slog.Any("error", e.Err),
	)
}

// ParseError reports source text that no registered token matches, or that
// matches ambiguously.
type ParseError struct {
	Err      error
	Found    string
	Token    string
	Hint     string
	Source   string
	Expected []string
	Pos      lexer.Position
	// fatal errors end the parse instead of letting another rule be tried.
	fatal bool
}

func (e *ParseError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "parse error at line %d, column %d: %v", e.Pos.Line, e.Pos.Column, e.Err)

	if e.Found != "" {
		sb.WriteString(": found " + e.Found)
	}

	if len(e.Expected) > 0 {
		sb.WriteString(", expected " + strings.Join(e.Expected, " or "))
	}

	if e.Token != "" {
		sb.WriteString(" in " + e.Token)
	}

	if e.Hint != "" {
		sb.WriteString(" (" + e.Hint + ")")
	}

	if snippet := e.Snippet(); snippet != "" {
		sb.WriteString("\n" + snippet)
	}

	return sb.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func isFatal(err error) bool {
	var pe *ParseError

	return errors.As(err, &pe) && pe.fatal
}

// Snippet renders the offending source line with a caret under the error
// column, or the empty string when the source is unknown.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Source == "" || e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Pos.Line)
	pad := strings.Repeat(" ", len(num)+5+max(e.Pos.Column-1, 0))

	return "  " + num + " | " + lines[e.Pos.Line-1] + "\n" + pad + "^"
}

// LogValue implements [slog.LogValuer].
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Any("error", e.Err),
		slog.String("position", e.Pos.String()),
	}

	if e.Found != "" {
		attrs = append(attrs, slog.String("found", e.Found))
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.Any("expected", e.Expected))
	}

	if e.Token != "" {
		attrs = append(attrs, slog.String("token", e.Token))
	}

	if e.Hint != "" {
		attrs = append(attrs, slog.String("hint", e.Hint))
	}

	return slog.GroupValue(attrs...)
}

// BindError reports a structural defect found while evaluating: an
// undeclared name, a parameter count mismatch, an undeclared error kind, or
// runaway recursion. It aborts the run.
type BindError struct {
	Err  error
	Name string
	Pos  lexer.Position
}

func (e *BindError) Error() string {
	msg := "bind error"

	if e.Pos.Line > 0 {
		msg += fmt.Sprintf(" at line %d, column %d", e.Pos.Line, e.Pos.Column)
	}

	if e.Name != "" {
		msg += " in " + strconv.Quote(e.Name)
	}

	return msg + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error { return e.Err }

// LogValue implements [slog.LogValuer].
func (e *BindError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", e.Name),
		slog.String("position", e.Pos.String()),
		slog.Any("error", e.Err),
	)
}

// bindError wraps err unless it already is a BindError. An existing
// BindError without a position takes pos.
func bindError(err error, name string, pos lexer.Position) *BindError {
	var be *BindError
	if errors.As(err, &be) {
		if be.Pos.Line == 0 {
			be.Pos = pos
		}

		if be.Name == "" {
			be.Name = name
		}

		return be
	}

	return &BindError{Err: err, Name: name, Pos: pos}
}
