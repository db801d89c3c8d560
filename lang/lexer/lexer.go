// Package lexer splits source text into the lexical units consumed by the
// parser.
package lexer

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is a hint about the class of a [Unit].
type Kind int

const (
	End Kind = iota
	Word
	Number
	String
	Symbol
	Invalid
)

func (k Kind) String() string {
	switch k {
	case End:
		return "end"
	case Word:
		return "word"
	case Number:
		return "number"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Position is a location in source text. Line and Column are 1-based;
// Column counts runes.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Unit is one lexical unit.
type Unit struct {
	Text string
	Pos  Position
	Kind Kind
}

func (u Unit) String() string {
	if u.Kind == End {
		return "end of input"
	}

	return fmt.Sprintf("%q", u.Text)
}

// Stream is a finite, forward-only sequence of units. After the last unit
// Next returns a unit of kind [End] on every call.
type Stream interface {
	Next() Unit
}

// Option configures a [Lexer].
type Option func(*Lexer)

// WithSymbols adds multi-character symbols the lexer keeps together, such as
// "==" or "&&". Single characters need not be listed.
func WithSymbols(symbols ...string) Option {
	return func(l *Lexer) {
		for _, s := range symbols {
			if s != "" && !isWordText(s) {
				l.symbols = append(l.symbols, s)
			}
		}
	}
}

// Lexer is the default [Stream] over a source string.
type Lexer struct {
	src     string
	symbols []string
	pos     Position
}

// New returns a Lexer over src.
func New(src string, opts ...Option) *Lexer {
	l := &Lexer{src: src, pos: Position{Line: 1, Column: 1}}

	for _, opt := range opts {
		opt(l)
	}

	// Longest first, so "==" wins over "=".
	slices.SortFunc(l.symbols, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}

		return strings.Compare(a, b)
	})
	l.symbols = slices.Compact(l.symbols)

	return l
}

// Next returns the next unit.
func (l *Lexer) Next() Unit {
	l.skip()

	start := l.pos

	if l.pos.Offset >= len(l.src) {
		return Unit{Pos: start, Kind: End}
	}

	r, _ := utf8.DecodeRuneInString(l.rest())

	switch {
	case r == '_' || unicode.IsLetter(r):
		l.advanceWhile(func(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) })

		return l.unit(start, Word)

	case unicode.IsDigit(r):
		return l.number(start)

	case r == '"' || r == '\'':
		return l.quoted(start, r)
	}

	for _, s := range l.symbols {
		if strings.HasPrefix(l.rest(), s) {
			l.advanceN(len(s))

			return l.unit(start, Symbol)
		}
	}

	l.advance()

	return l.unit(start, Symbol)
}

// All drains a stream, including the terminating end unit.
func All(s Stream) []Unit {
	var units []Unit

	for {
		u := s.Next()
		units = append(units, u)

		if u.Kind == End {
			return units
		}
	}
}

func (l *Lexer) rest() string { return l.src[l.pos.Offset:] }

func (l *Lexer) unit(start Position, kind Kind) Unit {
	return Unit{Text: l.src[start.Offset:l.pos.Offset], Pos: start, Kind: kind}
}

func (l *Lexer) advance() rune {
	r, n := utf8.DecodeRuneInString(l.rest())

	l.pos.Offset += n

	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}

	return r
}

func (l *Lexer) advanceN(bytes int) {
	end := l.pos.Offset + bytes
	for l.pos.Offset < end {
		l.advance()
	}
}

func (l *Lexer) advanceWhile(fn func(rune) bool) {
	for l.pos.Offset < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.rest())
		if !fn(r) {
			return
		}

		l.advance()
	}
}

// skip consumes whitespace and comments.
func (l *Lexer) skip() {
	for l.pos.Offset < len(l.src) {
		rest := l.rest()
		r, _ := utf8.DecodeRuneInString(rest)

		switch {
		case unicode.IsSpace(r):
			l.advance()

		case strings.HasPrefix(rest, "//") || r == '#':
			l.advanceWhile(func(r rune) bool { return r != '\n' })

		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				l.advanceN(len(rest))
			} else {
				l.advanceN(end + 4)
			}

		default:
			return
		}
	}
}

func (l *Lexer) number(start Position) Unit {
	l.advanceWhile(unicode.IsDigit)

	// A fraction needs a digit after the point, so "1." stays two units.
	if rest := l.rest(); len(rest) > 1 && rest[0] == '.' && rest[1] >= '0' && rest[1] <= '9' {
		l.advance()
		l.advanceWhile(unicode.IsDigit)
	}

	return l.unit(start, Number)
}

func (l *Lexer) quoted(start Position, quote rune) Unit {
	l.advance()

	for l.pos.Offset < len(l.src) {
		switch l.advance() {
		case '\\':
			if l.pos.Offset < len(l.src) {
				l.advance()
			}

		case quote:
			return l.unit(start, String)

		case '\n':
			return l.unit(start, Invalid)
		}
	}

	return l.unit(start, Invalid)
}

func isWordText(s string) bool {
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
