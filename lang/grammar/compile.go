package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reserved capture names.
const (
	valueName = "val"
	errorName = "error"
	blockName = "block"
)

// MaxNesting is the deepest a pattern may nest groups and alternations.
const MaxNesting = 64

// Compile parses a pattern into a [Rule].
//
// Quoted text is a literal keyword or symbol. A bare name is a capture:
// "val" and any "name:Type" capture one raw unit, "error" captures an error
// kind name, "block" is a code block placeholder, and every other name
// captures a sub-expression. Parentheses group atoms and take a trailing
// "+", "*", or "?" (and "+?" for zero or more). Brackets list alternatives
// separated by commas, exactly one of which must appear. A "?" after a
// literal makes it optional.
//
// Compile is pure: the same pattern always yields an identical Rule.
func Compile(pattern string) (*Rule, error) {
	c := &compiler{src: pattern}

	atoms, err := c.sequence(0)
	if err != nil {
		return nil, err
	}

	if c.skipSpace(); c.pos < len(c.src) {
		return nil, c.fail(ErrUnmatched, c.pos, c.src[c.pos:c.pos+1])
	}

	if len(atoms) == 0 {
		return nil, c.fail(ErrEmptyPattern, 0, "")
	}

	return &Rule{Pattern: pattern, Atoms: atoms, Slots: number(atoms)}, nil
}

// MustCompile is like [Compile] but panics on error. It is intended for
// patterns fixed at build time.
func MustCompile(pattern string) *Rule {
	r, err := Compile(pattern)
	if err != nil {
		panic(err)
	}

	return r
}

type compiler struct {
	src string
	pos int
}

func (c *compiler) fail(err error, at int, near string) *CompileError {
	return &CompileError{Err: err, Pattern: c.src, Offset: at, Near: near}
}

func (c *compiler) skipSpace() {
	for c.pos < len(c.src) {
		r, n := utf8.DecodeRuneInString(c.src[c.pos:])
		if !unicode.IsSpace(r) {
			return
		}

		c.pos += n
	}
}

func (c *compiler) peek() byte {
	if c.pos < len(c.src) {
		return c.src[c.pos]
	}

	return 0
}

// sequence reads atoms until end of input or a closing delimiter or comma,
// which is left unread. Nesting depth decides which closers are legal.
func (c *compiler) sequence(depth int) ([]Atom, error) {
	if depth > MaxNesting {
		return nil, c.fail(ErrNestingDepth, c.pos, "")
	}

	var atoms []Atom

	for {
		c.skipSpace()

		switch c.peek() {
		case 0:
			return atoms, nil

		case ')', ']', ',':
			if depth == 0 {
				if c.peek() == ',' {
					return nil, c.fail(ErrUnexpected, c.pos, ",")
				}

				return nil, c.fail(ErrUnmatched, c.pos, string(c.peek()))
			}

			return atoms, nil
		}

		a, err := c.atom(depth)
		if err != nil {
			return nil, err
		}

		atoms = append(atoms, a)
	}
}

func (c *compiler) atom(depth int) (Atom, error) {
	start := c.pos

	switch ch := c.peek(); {
	case ch == '\'' || ch == '"':
		lit, err := c.literal()
		if err != nil {
			return nil, err
		}

		if c.peek() == '?' {
			c.pos++

			return Optional{Atoms: []Atom{lit}}, nil
		}

		return lit, nil

	case ch == '(':
		c.pos++

		inner, err := c.sequence(depth + 1)
		if err != nil {
			return nil, err
		}

		switch c.peek() {
		case ')':
		case ',':
			return nil, c.fail(ErrUnexpected, c.pos, ",")
		default:
			return nil, c.fail(ErrUnmatched, start, "(")
		}

		c.pos++

		if len(inner) == 0 {
			return nil, c.fail(ErrEmptyGroup, start, "")
		}

		rep := c.repetition()

		if literalOnly(inner) {
			switch rep {
			case OneOrMore, ZeroOrMore:
				return nil, c.fail(ErrLiteralRepetition, start, "")
			case ZeroOrOne:
				return Optional{Atoms: inner}, nil
			}
		}

		return Group{Atoms: inner, Repeat: rep}, nil

	case ch == '[':
		c.pos++

		alt, err := c.alternation(depth, start)
		if err != nil {
			return nil, err
		}

		if rep := c.repetition(); rep != One {
			return Group{Atoms: []Atom{alt}, Repeat: rep}, nil
		}

		return alt, nil

	case isNameStart(ch):
		capture, err := c.name()
		if err != nil {
			return nil, err
		}

		if rep := c.repetition(); rep != One {
			return Group{Atoms: []Atom{capture}, Repeat: rep}, nil
		}

		return capture, nil

	default:
		r, _ := utf8.DecodeRuneInString(c.src[c.pos:])

		return nil, c.fail(ErrUnexpected, start, string(r))
	}
}

// literal reads a quoted literal. A backslash escapes the next character.
func (c *compiler) literal() (Literal, error) {
	start := c.pos
	quote := c.src[c.pos]
	c.pos++

	var sb strings.Builder

	for c.pos < len(c.src) {
		ch := c.src[c.pos]

		switch {
		case ch == '\\' && c.pos+1 < len(c.src):
			sb.WriteByte(c.src[c.pos+1])
			c.pos += 2

		case ch == quote:
			c.pos++

			if sb.Len() == 0 {
				return Literal{}, c.fail(ErrEmptyLiteral, start, "")
			}

			return Literal{Text: sb.String()}, nil

		default:
			sb.WriteByte(ch)
			c.pos++
		}
	}

	return Literal{}, c.fail(ErrUnterminatedString, start, string(quote))
}

func (c *compiler) alternation(depth, start int) (Alternation, error) {
	var alt Alternation

	if depth >= MaxNesting {
		return alt, c.fail(ErrNestingDepth, start, "[")
	}

	for {
		opt, err := c.sequence(depth + 1)
		if err != nil {
			return alt, err
		}

		switch c.peek() {
		case ',':
			if len(opt) == 0 {
				return alt, c.fail(ErrEmptyAlternation, c.pos, ",")
			}

			c.pos++
			alt.Options = append(alt.Options, opt)

		case ']':
			c.pos++

			if len(opt) == 0 {
				return alt, c.fail(ErrEmptyAlternation, start, "")
			}

			alt.Options = append(alt.Options, opt)

			return alt, nil

		default:
			return alt, c.fail(ErrUnmatched, start, "[")
		}
	}
}

// repetition reads an optional repetition suffix.
func (c *compiler) repetition() Repetition {
	switch c.peek() {
	case '?':
		c.pos++

		return ZeroOrOne

	case '*':
		c.pos++

		if c.peek() == '?' {
			c.pos++
		}

		return ZeroOrMore

	case '+':
		c.pos++

		if c.peek() == '?' {
			c.pos++

			return ZeroOrMore
		}

		return OneOrMore
	}

	return One
}

func (c *compiler) ident() string {
	start := c.pos

	for c.pos < len(c.src) {
		r, n := utf8.DecodeRuneInString(c.src[c.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		c.pos += n
	}

	return c.src[start:c.pos]
}

func (c *compiler) name() (Atom, error) {
	start := c.pos

	name := c.ident()
	if name == "" {
		r, _ := utf8.DecodeRuneInString(c.src[c.pos:])

		return nil, c.fail(ErrUnexpected, start, string(r))
	}

	var typ string

	if c.peek() == ':' && c.pos+1 < len(c.src) && isNameStart(c.src[c.pos+1]) {
		c.pos++
		typ = c.ident()
	}

	switch {
	case typ != "":
		return Capture{Name: name, Type: typ, Kind: Value}, nil
	case name == blockName:
		return CodeBlock{}, nil
	case name == valueName:
		return Capture{Name: name, Kind: Value}, nil
	case name == errorName:
		return Capture{Name: name, Kind: ErrorList}, nil
	default:
		return Capture{Name: name, Kind: Expression}, nil
	}
}

func isNameStart(ch byte) bool {
	return ch == '_' || ch >= utf8.RuneSelf ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// number assigns slot indices to the capturing atoms of a sequence, in
// place, and returns the count. Nested sequences are numbered independently.
func number(atoms []Atom) int {
	slot := 0

	for i, a := range atoms {
		switch v := a.(type) {
		case Capture:
			v.Slot = slot
			atoms[i] = v

		case CodeBlock:
			v.Slot = slot
			atoms[i] = v

		case Group:
			v.Slot = slot
			v.Slots = number(v.Atoms)
			atoms[i] = v

		case Alternation:
			v.Slot = slot
			v.Slots = make([]int, len(v.Options))

			for j, o := range v.Options {
				v.Slots[j] = number(o)
			}

			atoms[i] = v

		default:
			continue
		}

		slot++
	}

	return slot
}
