package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/ardnew/larf/lang/lexer"
)

// TestError_Is verifies that derived errors match their sentinel.
func TestError_Is(t *testing.T) {
	derived := ErrUndeclared.With(slog.String("name", "x")).Wrapf("%q is not declared", "x")

	if !errors.Is(derived, ErrUndeclared) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(derived, ErrArity) {
		t.Error("derived error matches another sentinel")
	}

	wrapped := fmt.Errorf("context: %w", &BindError{Err: derived, Name: "x"})
	if !errors.Is(wrapped, ErrUndeclared) {
		t.Error("bind error does not unwrap to its sentinel")
	}

	if got, want := derived.Error(), `undeclared name: "x" is not declared`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if attrs := derived.Attrs(); len(attrs) != 1 || attrs[0].Key != "name" {
		t.Errorf("Attrs() = %v", attrs)
	}
}

// TestParseError_Format verifies the rendered message and snippet.
func TestParseError_Format(t *testing.T) {
	err := &ParseError{
		Err:      ErrUnexpected,
		Found:    `"}"`,
		Token:    "paren",
		Hint:     "expected closing parenthesis",
		Source:   "x = 1\ny = (2 }",
		Expected: []string{`")"`},
		Pos:      lexer.Position{Offset: 13, Line: 2, Column: 8},
	}

	want := "parse error at line 2, column 8: unexpected input: found \"}\", expected \")\" in paren " +
		"(expected closing parenthesis)\n" +
		"  2 | y = (2 }\n" +
		"             ^"

	if got := err.Error(); got != want {
		t.Errorf("Error() =\n%s\nwant\n%s", got, want)
	}
}

// TestBindError_Format verifies the rendered message.
func TestBindError_Format(t *testing.T) {
	err := &BindError{
		Err:  ErrArity.Wrapf("expected 2 parameters, got 3"),
		Name: "add",
		Pos:  lexer.Position{Line: 4, Column: 2},
	}

	want := `bind error at line 4, column 2 in "add": parameter count mismatch: expected 2 parameters, got 3`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
