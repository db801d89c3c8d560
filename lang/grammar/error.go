package grammar

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrEmptyPattern       = errors.New("empty pattern")
	ErrEmptyLiteral       = errors.New("empty literal")
	ErrUnterminatedString = errors.New("unterminated literal")
	ErrUnmatched          = errors.New("unmatched delimiter")
	ErrEmptyGroup         = errors.New("empty group")
	ErrEmptyAlternation   = errors.New("alternation without options")
	ErrLiteralRepetition  = errors.New("repetition of literal-only group")
	ErrUnexpected         = errors.New("unexpected character")
	ErrNestingDepth       = errors.New("nesting too deep")
)

// CompileError reports a malformed pattern.
type CompileError struct {
	Err     error
	Pattern string
	Near    string
	Offset  int
}

func (e *CompileError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("%v %q at offset %d of %q", e.Err, e.Near, e.Offset, e.Pattern)
	}

	return fmt.Sprintf("%v at offset %d of %q", e.Err, e.Offset, e.Pattern)
}

func (e *CompileError) Unwrap() error { return e.Err }

// LogValue implements [slog.LogValuer].
func (e *CompileError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Err.Error()),
		slog.String("pattern", e.Pattern),
		slog.Int("offset", e.Offset),
	)
}
