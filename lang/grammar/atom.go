package grammar

import (
	"strconv"
	"strings"
)

// Kind classifies what a [Capture] consumes.
type Kind int

const (
	// Value captures exactly one raw lexical unit, such as a name.
	Value Kind = iota
	// Expression captures a bounded sub-expression.
	Expression
	// ErrorList captures one error kind name per repetition.
	ErrorList
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "value"
	case Expression:
		return "expression"
	case ErrorList:
		return "error"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Repetition is the cardinality of a [Group].
type Repetition int

const (
	One Repetition = iota
	ZeroOrOne
	OneOrMore
	ZeroOrMore
)

func (r Repetition) String() string {
	switch r {
	case One:
		return "one"
	case ZeroOrOne:
		return "zeroOrOne"
	case OneOrMore:
		return "oneOrMore"
	case ZeroOrMore:
		return "zeroOrMore"
	default:
		return "Repetition(" + strconv.Itoa(int(r)) + ")"
	}
}

// suffix is the pattern operator that produces r.
func (r Repetition) suffix() string {
	return [...]string{"", "?", "+", "*"}[r]
}

// Min is the fewest occurrences r permits.
func (r Repetition) Min() int {
	if r == ZeroOrOne || r == ZeroOrMore {
		return 0
	}

	return 1
}

// Many reports whether r permits more than one occurrence.
func (r Repetition) Many() bool { return r == OneOrMore || r == ZeroOrMore }

// Atom is one element of a compiled [Rule]. The set of atoms is closed:
// [Literal], [Capture], [Group], [Alternation], [Optional], and [CodeBlock].
type Atom interface {
	String() string
	isAtom()
}

// Literal matches one lexical unit with exactly this text.
type Literal struct {
	Text string
}

// Capture binds input to a slot of the enclosing sequence.
type Capture struct {
	Name string
	Type string
	Kind Kind
	Slot int
}

// Group is a parenthesized sequence with a repetition. Its inner captures
// are numbered from zero within Atoms; Slots counts them.
type Group struct {
	Atoms  []Atom
	Repeat Repetition
	Slot   int
	Slots  int
}

// Alternation requires exactly one of its options. Each option numbers its
// own captures from zero; Slots holds the count per option.
type Alternation struct {
	Options [][]Atom
	Slots   []int
	Slot    int
}

// Optional is a run of literals that may be absent. It occupies no slot.
type Optional struct {
	Atoms []Atom
}

// CodeBlock is the placeholder for a delimited block of statements.
type CodeBlock struct {
	Slot int
}

func (Literal) isAtom()     {}
func (Capture) isAtom()     {}
func (Group) isAtom()       {}
func (Alternation) isAtom() {}
func (Optional) isAtom()    {}
func (CodeBlock) isAtom()   {}

func (a Literal) String() string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(a.Text) + "'"
}

func (a Capture) String() string {
	if a.Type != "" {
		return a.Name + ":" + a.Type
	}

	return a.Name
}

func (a Group) String() string {
	return "( " + join(a.Atoms) + " )" + a.Repeat.suffix()
}

func (a Alternation) String() string {
	opts := make([]string, len(a.Options))
	for i, o := range a.Options {
		opts[i] = join(o)
	}

	return "[ " + strings.Join(opts, ", ") + " ]"
}

func (a Optional) String() string {
	if len(a.Atoms) == 1 {
		return a.Atoms[0].String() + "?"
	}

	return "( " + join(a.Atoms) + " )?"
}

func (CodeBlock) String() string { return blockName }

func join(atoms []Atom) string {
	s := make([]string, len(atoms))
	for i, a := range atoms {
		s[i] = a.String()
	}

	return strings.Join(s, " ")
}

// captures reports whether a occupies a slot.
func captures(a Atom) bool {
	switch a.(type) {
	case Literal, Optional:
		return false
	default:
		return true
	}
}

// literalOnly reports whether atoms contain no capturing atom.
func literalOnly(atoms []Atom) bool {
	for _, a := range atoms {
		if captures(a) {
			return false
		}
	}

	return true
}
