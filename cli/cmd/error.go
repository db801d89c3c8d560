package cmd

import (
	"errors"
	"log/slog"
	"strings"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return e.msg == t.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: append(append([]slog.Attr{}, e.attrs...), attrs...),
	}
}

var (
	ErrOpenSource  = NewError("open source")
	ErrUncaught    = NewError("uncaught error")
	ErrJSONMarshal = NewError("marshal JSON")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteOutput = NewError("write output")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
)
