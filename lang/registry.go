package lang

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/tevino/abool/v2"

	"github.com/ardnew/larf/lang/grammar"
)

// Registry holds the prototypes of one language. It is filled during setup
// and sealed before the first run; a sealed registry is never modified and
// may be shared by concurrent runs.
type Registry struct {
	sealed    *abool.AtomicBool
	byName    map[string]*Prototype
	operators [Postfix + 1]map[string]*Prototype
	kinds     map[string]struct{}
	protos    []*Prototype
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{
		sealed: abool.NewBool(false),
		byName: make(map[string]*Prototype),
		kinds:  make(map[string]struct{}),
	}

	for n := Prefix; n <= Postfix; n++ {
		r.operators[n] = make(map[string]*Prototype)
	}

	return r
}

// RegisterErrorKind adds names to the error kinds source code may raise.
// Prototypes can only declare kinds registered before them.
func (r *Registry) RegisterErrorKind(kinds ...string) error {
	if r.sealed.IsSet() {
		return &CompileError{Err: ErrRegistrySealed}
	}

	for _, k := range kinds {
		if k == "" {
			return &CompileError{Err: ErrInvalidPrototype.Wrapf("empty error kind")}
		}

		r.kinds[k] = struct{}{}
	}

	return nil
}

// Register compiles and adds prototypes in order. It stops at the first
// prototype that fails validation and returns a [*CompileError].
func (r *Registry) Register(protos ...*Prototype) error {
	for _, p := range protos {
		if err := r.register(p); err != nil {
			return err
		}
	}

	return nil
}

// MustRegister is like [Registry.Register] but panics on error. It is meant
// for token sets fixed at build time.
func (r *Registry) MustRegister(protos ...*Prototype) *Registry {
	if err := r.Register(protos...); err != nil {
		panic(err)
	}

	return r
}

func (r *Registry) register(proto *Prototype) error {
	fail := func(err *Error) error {
		return &CompileError{Err: err, Prototype: proto.Name}
	}

	if r.sealed.IsSet() {
		return fail(ErrRegistrySealed)
	}

	p := *proto

	switch {
	case p.Name == "":
		return fail(ErrInvalidPrototype.Wrapf("missing name"))
	case p.Name == Raw.Name:
		return fail(ErrDuplicate.Wrapf("name %q is reserved", p.Name))
	case r.byName[p.Name] != nil:
		return fail(ErrDuplicate.With(slog.String("name", p.Name)))
	case (p.Pattern == "") == (p.Match == ""):
		return fail(ErrInvalidPrototype.Wrapf("exactly one of pattern and match is required"))
	case p.Eval == nil && p.Declare == nil:
		return fail(ErrInvalidPrototype.Wrapf("no evaluation rule"))
	}

	if p.Match != "" {
		if p.Notation != Operand {
			return fail(ErrInvalidOperator.Wrapf("operator %q needs a pattern", p.Name))
		}

		re, err := regexp.Compile(`^(?:` + p.Match + `)$`)
		if err != nil {
			return fail(ErrInvalidPattern.Wrap(err))
		}

		p.match = re
	} else {
		rule, err := grammar.Cached(p.Pattern)
		if err != nil {
			return fail(ErrInvalidPattern.Wrap(err))
		}

		p.rule = rule
	}

	for _, k := range p.Throws {
		if _, ok := r.kinds[k]; !ok {
			return fail(ErrUndeclaredError.With(slog.String("kind", k)).Wrapf("error kind %q is not registered", k))
		}
	}

	if p.Notation == Operand {
		if p.rule != nil && p.rule.LeftRecursive() {
			return fail(ErrLeftRecursive.Wrapf("declare an infix or postfix operator instead"))
		}
	} else {
		if p.Notation < Prefix || p.Notation > Postfix {
			return fail(ErrInvalidOperator.Wrapf("unknown notation %d", p.Notation))
		}

		symbol, ok := p.rule.Operator()
		if !ok {
			return fail(ErrInvalidOperator.Wrapf("operator pattern must be one literal"))
		}

		if p.Eval == nil {
			return fail(ErrInvalidOperator.Wrapf("operator without evaluation rule"))
		}

		if prev, dup := r.operators[p.Notation][symbol]; dup {
			return fail(ErrDuplicate.Wrapf("%s operator %q already declared by %q",
				p.Notation, symbol, prev.Name))
		}

		r.operators[p.Notation][symbol] = &p
	}

	p.index = len(r.protos)
	r.protos = append(r.protos, &p)
	r.byName[p.Name] = &p

	return nil
}

// Seal ends setup. Later registrations fail with [ErrRegistrySealed].
func (r *Registry) Seal() { r.sealed.Set() }

// Sealed reports whether [Registry.Seal] has been called.
func (r *Registry) Sealed() bool { return r.sealed.IsSet() }

// Lookup returns the prototype registered under name.
func (r *Registry) Lookup(name string) (*Prototype, bool) {
	p, ok := r.byName[name]

	return p, ok
}

// Prototypes returns the registered prototypes in registration order.
func (r *Registry) Prototypes() []*Prototype { return slices.Clone(r.protos) }

// Operator returns the operator with the given notation and symbol.
func (r *Registry) Operator(n Notation, symbol string) (*Prototype, bool) {
	if n < Prefix || n > Postfix {
		return nil, false
	}

	p, ok := r.operators[n][symbol]

	return p, ok
}

// HasErrorKind reports whether kind was registered.
func (r *Registry) HasErrorKind(kind string) bool {
	_, ok := r.kinds[kind]

	return ok
}

// ErrorKinds returns the registered error kinds, sorted.
func (r *Registry) ErrorKinds() []string {
	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}

	slices.Sort(kinds)

	return kinds
}

// Symbols returns the distinct non-word literals of every registered rule.
// The default lexer keeps these together as single units.
func (r *Registry) Symbols() []string {
	return r.literals(func(s string) bool { return !isWord(s) })
}

// Keywords returns the distinct word literals of every registered rule.
func (r *Registry) Keywords() []string {
	return r.literals(isWord)
}

func (r *Registry) literals(keep func(string) bool) []string {
	var out []string

	for _, p := range r.protos {
		if p.rule == nil {
			continue
		}

		for _, lit := range p.rule.Literals() {
			if keep(lit) && !slices.Contains(out, lit) {
				out = append(out, lit)
			}
		}
	}

	slices.Sort(out)

	return out
}

func isWord(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) < 0
}
