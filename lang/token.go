package lang

//go:generate go tool stringer -linecomment -type Notation,Class,ScopeMode -output enum_string.go

import (
	"regexp"
	"strings"

	"github.com/ardnew/larf/lang/grammar"
	"github.com/ardnew/larf/lang/lexer"
)

// Notation is the position of an operator relative to its operands. Tokens
// that are not operators use [Operand].
type Notation int

const (
	Operand Notation = iota // operand
	Prefix                  // prefix
	Infix                   // infix
	Postfix                 // postfix
)

// Class is the semantic category of a bound name.
type Class int

const (
	Plain     Class = iota // plain
	Callable               // function
	Parameter              // parameter
)

// EvalFunc evaluates a matched token.
type EvalFunc func(rt Runtime, tok *Token) (Result, error)

// DeclareFunc runs for a priority token before the other statements of its
// block and records the token's meaning in the scope.
type DeclareFunc func(rt Runtime, tok *Token) error

// GuidanceFunc returns a hint shown when literal was expected while matching
// the token and groups token groups had been captured. It returns the empty
// string when it has nothing to add.
type GuidanceFunc func(literal string, groups int) string

// Prototype declares one kind of token: how it is written and what it means.
//
// A prototype is either a grammar token, whose Pattern is compiled with
// [grammar.Compile], or a value token, whose Match regular expression must
// match one whole lexical unit. Operators are grammar tokens whose pattern
// is a single literal and whose Notation is not [Operand]; their Precedence
// and RightAssoc drive precedence climbing.
//
// Registration copies the prototype. Changing the original afterwards has no
// effect on the registry.
type Prototype struct {
	Guidance GuidanceFunc
	Declare  DeclareFunc
	Eval     EvalFunc

	rule  *grammar.Rule
	match *regexp.Regexp

	Name       string
	Pattern    string
	Match      string
	Throws     []string
	Notation   Notation
	Precedence int
	Class      Class
	ValueType  Kind
	index      int
	RightAssoc bool
	Priority   bool
}

// Rule returns the compiled grammar rule, or nil for value tokens.
func (p *Prototype) Rule() *grammar.Rule { return p.rule }

// Raw is the prototype of tokens holding a single unit captured by a raw
// value or error list capture. Raw tokens evaluate to their text.
var Raw = &Prototype{
	Name: "raw",
	Eval: func(_ Runtime, tok *Token) (Result, error) { return Ok(String(tok.Text)), nil },
}

// Token is a committed match of a prototype.
type Token struct {
	Proto  *Prototype
	Value  Value
	Text   string
	Groups []*Group
	Pos    lexer.Position
}

// Group returns the i'th token group, or an empty group when out of range.
func (t *Token) Group(i int) *Group {
	if i < 0 || i >= len(t.Groups) {
		return &Group{}
	}

	return t.Groups[i]
}

// Name returns the prototype name of t.
func (t *Token) Name() string {
	if t.Proto == nil {
		return ""
	}

	return t.Proto.Name
}

// String renders t as an s-expression. Value and raw tokens render as their
// text, other tokens as their name followed by their groups.
func (t *Token) String() string {
	if t.Proto == Raw || t.Proto.match != nil {
		return t.Text
	}

	var sb strings.Builder

	sb.WriteByte('(')

	if t.Proto.Notation != Operand {
		sb.WriteString(t.Text)
	} else {
		sb.WriteString(t.Proto.Name)
	}

	for _, g := range t.Groups {
		sb.WriteByte(' ')
		sb.WriteString(g.String())
	}

	sb.WriteByte(')')

	return sb.String()
}

// Group is an ordered capture slot. A slot filled by a single capture holds
// its tokens in Tokens; a code block slot holds Block; a repeated group
// holds one child per repetition in Groups, and each child holds one group
// per capture of the repeated pattern. An alternation slot holds the groups
// of the chosen option, with Option set to its index.
type Group struct {
	Block  *Block
	Tokens []*Token
	Groups []*Group
	Option int
}

// Group returns the i'th child group, or an empty group when out of range.
func (g *Group) Group(i int) *Group {
	if i < 0 || i >= len(g.Groups) {
		return &Group{}
	}

	return g.Groups[i]
}

// Flatten returns every token in g, depth first.
func (g *Group) Flatten() []*Token {
	out := append([]*Token(nil), g.Tokens...)

	for _, c := range g.Groups {
		out = append(out, c.Flatten()...)
	}

	return out
}

// Text joins the text of the flattened tokens with single spaces.
func (g *Group) Text() string {
	toks := g.Flatten()
	s := make([]string, len(toks))

	for i, t := range toks {
		s[i] = t.Text
	}

	return strings.Join(s, " ")
}

// Empty reports whether g captured nothing.
func (g *Group) Empty() bool {
	return g.Block == nil && len(g.Tokens) == 0 && len(g.Groups) == 0
}

func (g *Group) String() string {
	switch {
	case g.Block != nil:
		return g.Block.String()
	case len(g.Tokens) == 1 && len(g.Groups) == 0:
		return g.Tokens[0].String()
	}

	parts := make([]string, 0, len(g.Tokens)+len(g.Groups))

	for _, t := range g.Tokens {
		parts = append(parts, t.String())
	}

	for _, c := range g.Groups {
		parts = append(parts, c.String())
	}

	return "[" + strings.Join(parts, " ") + "]"
}

// Block is a sequence of statements sharing one scope frame. Priority holds
// the statements of priority tokens and Sequence the rest, each in textual
// order.
type Block struct {
	Statements []*Token
	Priority   []*Token
	Sequence   []*Token
	Pos        lexer.Position
}

func (b *Block) String() string {
	s := make([]string, len(b.Statements))

	for i, t := range b.Statements {
		s[i] = t.String()
	}

	return "{" + strings.Join(s, " ") + "}"
}

// Tree is the result of parsing one source text.
type Tree struct {
	Root   *Block
	Source string
}

func (t *Tree) String() string {
	s := make([]string, len(t.Root.Statements))

	for i, tok := range t.Root.Statements {
		s[i] = tok.String()
	}

	return strings.Join(s, "\n")
}
