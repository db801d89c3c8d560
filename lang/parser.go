package lang

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/larf/lang/grammar"
	"github.com/ardnew/larf/lang/lexer"
)

// Parser matches lexical units against the prototypes of a sealed registry
// and builds a [Tree]. A Parser holds no per-run state and may be shared.
//
// Among operand rules that match at a position, the one with the longest
// literal prefix wins. Rules tied on prefix are told apart by the number of
// units they consume, and a tie on both is reported as [ErrAmbiguousGrammar].
type Parser struct {
	reg       *Registry
	operators [Postfix + 1]map[string]*Prototype
	operands  []*Prototype
	symbols   []string
	cfg       config
}

// NewParser returns a parser for the prototypes of reg. It seals reg.
func NewParser(reg *Registry, opts ...Option) *Parser {
	reg.Seal()

	p := &Parser{reg: reg, cfg: makeConfig(opts...)}

	for n := Prefix; n <= Postfix; n++ {
		p.operators[n] = make(map[string]*Prototype)
	}

	for _, proto := range reg.Prototypes() {
		if proto.Notation == Operand {
			p.operands = append(p.operands, proto)

			continue
		}

		symbol, _ := proto.rule.Operator()
		p.operators[proto.Notation][p.fold(symbol)] = proto
	}

	p.symbols = append(reg.Symbols(), p.cfg.separator, p.cfg.blockOpen, p.cfg.blockClose)

	return p
}

// Symbols returns the multi-character symbols a lexer must keep together for
// this parser: every non-word literal, the separator, and block delimiters.
func (p *Parser) Symbols() []string { return slices.Clone(p.symbols) }

// Parse drains stream and matches it. The stream should be configured with
// [Parser.Symbols]. Errors are [*ParseError] values.
func (p *Parser) Parse(ctx context.Context, stream lexer.Stream) (*Tree, error) {
	return p.parse(ctx, lexer.All(stream), "")
}

// ParseString lexes and matches src with the default lexer. Parse errors
// include a snippet of src.
func (p *Parser) ParseString(ctx context.Context, src string) (*Tree, error) {
	return p.parse(ctx, lexer.All(lexer.New(src, lexer.WithSymbols(p.symbols...))), src)
}

func (p *Parser) parse(ctx context.Context, units []lexer.Unit, src string) (*Tree, error) {
	p.cfg.logger.TraceContext(ctx, "parse start", slog.Int("units", len(units)))

	s := &state{Parser: p, ctx: ctx, units: units, src: src}

	stmts, _, err := s.statements(0, "")
	if err != nil {
		if !isFatal(err) && s.furthest != nil {
			err = s.furthest
		}

		p.cfg.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	root := &Block{Statements: stmts, Pos: units[0].Pos}
	schedule(root)

	p.cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("statements", len(stmts)),
		slog.Int("priority", len(root.Priority)),
	)

	return &Tree{Root: root, Source: src}, nil
}

func (p *Parser) fold(text string) string {
	if p.cfg.caseInsensitive && isWord(text) {
		return strings.ToLower(text)
	}

	return text
}

// state is the matching state of one parse. Units are buffered so that
// candidate rules can be retried from any index.
type state struct {
	*Parser
	ctx      context.Context
	furthest *ParseError
	src      string
	units    []lexer.Unit
	at       int
	depth    int
}

// is reports whether the unit at pos is the literal text.
func (s *state) is(pos int, text string) bool {
	u := s.units[pos]
	if u.Kind == lexer.End || u.Kind == lexer.String || text == "" {
		return false
	}

	if s.cfg.caseInsensitive && isWord(text) {
		return strings.EqualFold(u.Text, text)
	}

	return u.Text == text
}

func (s *state) operator(n Notation, pos int) (*Prototype, bool) {
	u := s.units[pos]
	if u.Kind == lexer.End || u.Kind == lexer.String {
		return nil, false
	}

	op, ok := s.operators[n][s.fold(u.Text)]

	return op, ok
}

func (s *state) stops(pos int, follow []string) bool {
	for _, lit := range follow {
		if s.is(pos, lit) {
			return true
		}
	}

	return false
}

func (s *state) enter(pos int) error {
	s.depth++
	if s.depth > s.cfg.maxDepth {
		s.depth--

		return s.fail(pos, nil, ErrNestingDepth.Wrapf("limit %d", s.cfg.maxDepth))
	}

	return nil
}

func (s *state) leave() { s.depth-- }

// statements matches statements until the end of input or closer. Separators
// between statements are optional.
func (s *state) statements(pos int, closer string) ([]*Token, int, error) {
	var stmts []*Token

	follow := []string{s.cfg.separator, closer}

	for {
		for s.is(pos, s.cfg.separator) {
			pos++
		}

		if s.units[pos].Kind == lexer.End || s.is(pos, closer) {
			return stmts, pos, nil
		}

		tok, next, err := s.expression(pos, 0, follow)
		if err != nil {
			return nil, pos, err
		}

		stmts = append(stmts, tok)
		pos = next
	}
}

// expression matches an operand followed by infix and postfix operators
// binding at least as tightly as minPrec. It stops before any literal in
// follow.
func (s *state) expression(pos, minPrec int, follow []string) (*Token, int, error) {
	if err := s.enter(pos); err != nil {
		return nil, pos, err
	}
	defer s.leave()

	lhs, pos, err := s.unary(pos, follow)
	if err != nil {
		return nil, pos, err
	}

	for !s.stops(pos, follow) {
		if op, ok := s.operator(Postfix, pos); ok && op.Precedence >= minPrec {
			if _, infix := s.operator(Infix, pos); !infix || !s.startsOperand(pos+1) {
				lhs = operatorToken(op, s.units[pos], lhs)
				pos++

				continue
			}
		}

		op, ok := s.operator(Infix, pos)
		if !ok || op.Precedence < minPrec {
			break
		}

		next := op.Precedence + 1
		if op.RightAssoc {
			next = op.Precedence
		}

		rhs, after, err := s.expression(pos+1, next, follow)
		if err != nil {
			return nil, pos, err
		}

		lhs = operatorToken(op, s.units[pos], lhs, rhs)
		pos = after
	}

	return lhs, pos, nil
}

func (s *state) unary(pos int, follow []string) (*Token, int, error) {
	op, ok := s.operator(Prefix, pos)
	if !ok {
		return s.primary(pos, follow)
	}

	operand, next, err := s.expression(pos+1, op.Precedence, follow)
	if err == nil {
		return operatorToken(op, s.units[pos], operand), next, nil
	}

	// The symbol may also begin an operand rule.
	if isFatal(err) || !s.leads(pos) {
		return nil, pos, err
	}

	return s.primary(pos, follow)
}

func operatorToken(op *Prototype, u lexer.Unit, operands ...*Token) *Token {
	tok := &Token{Proto: op, Text: u.Text, Pos: u.Pos, Groups: make([]*Group, len(operands))}

	for i, o := range operands {
		tok.Groups[i] = &Group{Tokens: []*Token{o}}
	}

	return tok
}

func (s *state) startsOperand(pos int) bool {
	if _, ok := s.operator(Prefix, pos); ok {
		return true
	}

	return s.leads(pos)
}

// leads reports whether any operand prototype can begin at pos.
func (s *state) leads(pos int) bool {
	for _, p := range s.operands {
		if _, ok := s.lead(p, pos); ok {
			return true
		}
	}

	return false
}

type attempt struct {
	tok  *Token
	next int
}

// primary selects and matches one operand prototype at pos. Among the
// prototypes that can begin at pos, only those matching the longest run of
// fixed leading literals are tried; the one consuming the most units wins.
func (s *state) primary(pos int, follow []string) (*Token, int, error) {
	switch u := s.units[pos]; u.Kind {
	case lexer.End:
		return nil, pos, s.miss(pos, nil, "", "expression")
	case lexer.Invalid:
		return nil, pos, s.fail(pos, nil, ErrInvalidUnit.Wrapf("%s", u))
	}

	var (
		candidates []*Prototype
		longest    = -1
	)

	for _, p := range s.operands {
		n, ok := s.lead(p, pos)

		switch {
		case !ok || n < longest:
			continue
		case n > longest:
			candidates, longest = candidates[:0], n
		}

		candidates = append(candidates, p)
	}

	if len(candidates) == 0 {
		return nil, pos, s.miss(pos, nil, "", "expression")
	}

	var (
		best    []attempt
		failed  []frontier
		lastErr error
		base    = s.save()
	)

	for _, p := range candidates {
		tok, next, err := s.match(p, pos, follow)
		if err != nil {
			if isFatal(err) {
				return nil, pos, err
			}

			failed = append(failed, s.save())
			s.restore(base)
			lastErr = err

			continue
		}

		base = s.save()

		switch {
		case len(best) == 0 || next > best[0].next:
			best = []attempt{{tok: tok, next: next}}
		case next == best[0].next:
			best = append(best, attempt{tok: tok, next: next})
		}
	}

	// Failures of rejected candidates are reported only when they got
	// further than the match that was kept.
	limit := -1
	if len(best) > 0 {
		limit = best[0].next
	}

	for _, f := range failed {
		if f.at > limit {
			s.merge(f)
		}
	}

	switch len(best) {
	case 0:
		return nil, pos, lastErr
	case 1:
		s.cfg.logger.TraceContext(s.ctx, "token matched",
			slog.String("token", best[0].tok.Name()),
			slog.String("position", best[0].tok.Pos.String()),
		)

		return best[0].tok, best[0].next, nil
	}

	return nil, pos, s.fail(pos, nil, ErrAmbiguousGrammar.With(
		slog.String("first", best[0].tok.Name()),
		slog.String("second", best[1].tok.Name()),
	).Wrapf("tokens %q and %q both match %d units",
		best[0].tok.Name(), best[1].tok.Name(), best[0].next-pos))
}

// lead reports whether p can begin at pos and how many leading units its
// fixed literals match.
func (s *state) lead(p *Prototype, pos int) (int, bool) {
	if p.match != nil {
		u := s.units[pos]

		return 0, u.Kind != lexer.End && u.Kind != lexer.Invalid && p.match.MatchString(u.Text)
	}

	return s.leadAtoms(p.rule.Atoms, pos)
}

func (s *state) leadAtoms(atoms []grammar.Atom, pos int) (int, bool) {
	n := 0

	for _, a := range atoms {
		switch v := a.(type) {
		case grammar.Literal:
			if !s.is(pos+n, v.Text) {
				return n, n > 0
			}

			n++

			continue

		case grammar.Optional:
			if m, ok := s.literals(v.Atoms, pos+n); ok {
				n += m
			}

			continue

		case grammar.CodeBlock:
			if s.is(pos+n, s.cfg.blockOpen) {
				return n + 1, true
			}

			return n, n > 0

		case grammar.Capture:
			if n > 0 || s.raw(pos, nil) {
				return n, true
			}

			return 0, false

		case grammar.Group:
			m, ok := s.leadAtoms(v.Atoms, pos+n)
			if !ok && v.Repeat.Min() == 0 {
				continue
			}

			return n + m, ok || n > 0

		case grammar.Alternation:
			best, found := 0, false

			for _, o := range v.Options {
				if m, ok := s.leadAtoms(o, pos+n); ok {
					best, found = max(best, m), true
				}
			}

			return n + best, found || n > 0
		}
	}

	return n, n > 0
}

// literals matches a run of literal atoms at pos.
func (s *state) literals(atoms []grammar.Atom, pos int) (int, bool) {
	for i, a := range atoms {
		lit, ok := a.(grammar.Literal)
		if !ok || !s.is(pos+i, lit.Text) {
			return 0, false
		}
	}

	return len(atoms), true
}

// raw reports whether the unit at pos can fill a value or error capture.
// Word units that are expected literals are left for the enclosing rule.
func (s *state) raw(pos int, follow []string) bool {
	switch s.units[pos].Kind {
	case lexer.Word:
		return !s.stops(pos, follow)
	case lexer.Number, lexer.String:
		return true
	default:
		return false
	}
}

func (s *state) match(p *Prototype, pos int, follow []string) (*Token, int, error) {
	u := s.units[pos]

	if p.match != nil {
		return &Token{Proto: p, Text: u.Text, Pos: u.Pos}, pos + 1, nil
	}

	slots, next, err := s.sequence(p, p.rule.Atoms, pos, follow)
	if err != nil {
		return nil, pos, err
	}

	if err := checkShape(p.rule.Atoms, slots); err != nil {
		return nil, pos, s.fail(pos, p, ErrGroupArity.Wrap(err))
	}

	return &Token{Proto: p, Text: s.text(pos, next), Groups: slots, Pos: u.Pos}, next, nil
}

// text returns the source covered by units [from, to).
func (s *state) text(from, to int) string {
	if to <= from {
		return ""
	}

	first, last := s.units[from], s.units[to-1]

	if s.src != "" && last.Pos.Offset+len(last.Text) <= len(s.src) {
		return s.src[first.Pos.Offset : last.Pos.Offset+len(last.Text)]
	}

	parts := make([]string, 0, to-from)
	for _, u := range s.units[from:to] {
		parts = append(parts, u.Text)
	}

	return strings.Join(parts, " ")
}

// sequence matches atoms in order and returns one group per capturing atom.
func (s *state) sequence(
	p *Prototype, atoms []grammar.Atom, pos int, follow []string,
) ([]*Group, int, error) {
	var slots []*Group

	for i, a := range atoms {
		var (
			g    *Group
			next int
			err  error
		)

		after := s.follow(atoms[i+1:], follow)

		switch v := a.(type) {
		case grammar.Literal:
			if !s.is(pos, v.Text) {
				return nil, pos, s.expect(p, pos, len(slots), v.Text)
			}

			pos++

			continue

		case grammar.Optional:
			if n, ok := s.literals(v.Atoms, pos); ok {
				pos += n
			}

			continue

		case grammar.Capture:
			g, next, err = s.capture(p, v, pos, len(slots), after)

		case grammar.CodeBlock:
			var b *Block

			b, next, err = s.block(p, pos, len(slots))
			g = &Group{Block: b}

		case grammar.Group:
			g, next, err = s.repeat(p, v, pos, after)

		case grammar.Alternation:
			g, next, err = s.alternation(p, v, pos, after)
		}

		if err != nil {
			return nil, pos, err
		}

		slots = append(slots, g)
		pos = next
	}

	return slots, pos, nil
}

// follow returns the literals that may appear after the atoms preceding
// rest, given the literals that may follow the whole sequence.
func (s *state) follow(rest []grammar.Atom, outer []string) []string {
	first, nullable := s.first(rest)
	if nullable {
		return append(first, outer...)
	}

	return first
}

// first returns the literals atoms can begin with, and whether atoms can
// match nothing at all.
func (s *state) first(atoms []grammar.Atom) ([]string, bool) {
	var out []string

	for _, a := range atoms {
		switch v := a.(type) {
		case grammar.Literal:
			return append(out, v.Text), false

		case grammar.CodeBlock:
			return append(out, s.cfg.blockOpen), false

		case grammar.Capture:
			return out, false

		case grammar.Optional:
			f, _ := s.first(v.Atoms)
			out = append(out, f...)

		case grammar.Group:
			f, nullable := s.first(v.Atoms)
			out = append(out, f...)

			if !nullable && v.Repeat.Min() > 0 {
				return out, false
			}

		case grammar.Alternation:
			nullable := false

			for _, o := range v.Options {
				f, n := s.first(o)
				out = append(out, f...)
				nullable = nullable || n
			}

			if !nullable {
				return out, false
			}
		}
	}

	return out, true
}

func (s *state) capture(
	p *Prototype, c grammar.Capture, pos, groups int, follow []string,
) (*Group, int, error) {
	if c.Kind == grammar.Expression {
		tok, next, err := s.expression(pos, 0, follow)
		if err != nil {
			return nil, pos, err
		}

		return &Group{Tokens: []*Token{tok}}, next, nil
	}

	if !s.raw(pos, follow) {
		return nil, pos, s.expect(p, pos, groups, c.Kind.String())
	}

	u := s.units[pos]

	return &Group{Tokens: []*Token{{Proto: Raw, Text: u.Text, Pos: u.Pos}}}, pos + 1, nil
}

func (s *state) block(p *Prototype, pos, groups int) (*Block, int, error) {
	if !s.is(pos, s.cfg.blockOpen) {
		return nil, pos, s.expect(p, pos, groups, s.cfg.blockOpen)
	}

	if err := s.enter(pos); err != nil {
		return nil, pos, err
	}
	defer s.leave()

	open := s.units[pos]

	stmts, next, err := s.statements(pos+1, s.cfg.blockClose)
	if err != nil {
		return nil, pos, err
	}

	if !s.is(next, s.cfg.blockClose) {
		return nil, next, s.expect(p, next, groups, s.cfg.blockClose)
	}

	return &Block{Statements: stmts, Pos: open.Pos}, next + 1, nil
}

// repeat matches a group. A repeated group whose pattern ends with a literal
// treats that literal as the separator between repetitions: a required
// separator must appear between every two repetitions, an optional one may
// be left out, and neither may directly precede the literal that ends the
// group.
func (s *state) repeat(p *Prototype, g grammar.Group, pos int, follow []string) (*Group, int, error) {
	body, sep, optional := separator(g)
	first, _ := s.first(body)
	inner := append(append(first, follow...), sep)

	var (
		out     = &Group{}
		lastErr error
		sepAt   = -1
	)

	for g.Repeat.Many() || len(out.Groups) == 0 {
		slots, next, err := s.sequence(p, body, pos, inner)
		if err == nil && next == pos {
			break
		}

		if err != nil {
			if isFatal(err) {
				return nil, pos, err
			}

			// A separator directly before the end of the group is an error of
			// its own. Any other failure belongs to the item after it.
			if sepAt >= 0 {
				if !s.stops(pos, follow) {
					return nil, pos, err
				}

				return nil, pos, s.fail(sepAt, p, ErrTrailingSeparator.Wrapf(
					"separator %q is not followed by another item", sep),
					s.guide(p, sep, len(out.Groups)))
			}

			lastErr = err

			break
		}

		out.Groups = append(out.Groups, &Group{Groups: slots})
		pos, sepAt = next, -1

		if sep == "" {
			continue
		}

		if s.is(pos, sep) {
			sepAt = pos
			pos++

			continue
		}

		if !optional {
			break
		}
	}

	if len(out.Groups) < g.Repeat.Min() {
		if lastErr == nil {
			lastErr = s.miss(pos, p, "", "at least one item")
		}

		return nil, pos, lastErr
	}

	return out, pos, nil
}

// separator splits the trailing separator literal off a repeated group.
func separator(g grammar.Group) (body []grammar.Atom, sep string, optional bool) {
	if !g.Repeat.Many() || len(g.Atoms) < 2 {
		return g.Atoms, "", false
	}

	body = g.Atoms[:len(g.Atoms)-1]

	switch v := g.Atoms[len(g.Atoms)-1].(type) {
	case grammar.Literal:
		return body, v.Text, false
	case grammar.Optional:
		if lit, ok := v.Atoms[0].(grammar.Literal); ok && len(v.Atoms) == 1 {
			return body, lit.Text, true
		}
	}

	return g.Atoms, "", false
}

func (s *state) alternation(
	p *Prototype, a grammar.Alternation, pos int, follow []string,
) (*Group, int, error) {
	var (
		out     *Group
		end     int
		lastErr error
	)

	for i, o := range a.Options {
		slots, next, err := s.sequence(p, o, pos, follow)
		if err != nil {
			if isFatal(err) {
				return nil, pos, err
			}

			lastErr = err

			continue
		}

		if out == nil || next > end {
			out, end = &Group{Groups: slots, Option: i}, next
		}
	}

	if out == nil {
		return nil, pos, lastErr
	}

	return out, end, nil
}

// checkShape verifies that groups have the shape the atoms capture.
func checkShape(atoms []grammar.Atom, groups []*Group) error {
	want := 0

	for _, a := range atoms {
		switch a.(type) {
		case grammar.Literal, grammar.Optional:
		default:
			want++
		}
	}

	if len(groups) != want {
		return fmt.Errorf("expected %d token groups, got %d", want, len(groups))
	}

	i := 0

	for _, a := range atoms {
		switch v := a.(type) {
		case grammar.Capture:
			if n := len(groups[i].Tokens); n != 1 {
				return fmt.Errorf("capture %s: expected 1 token, got %d", v.Name, n)
			}

		case grammar.CodeBlock:
			if groups[i].Block == nil {
				return fmt.Errorf("group %d: expected a block", i)
			}

		case grammar.Group:
			reps := groups[i].Groups
			if len(reps) < v.Repeat.Min() || (!v.Repeat.Many() && len(reps) > 1) {
				return fmt.Errorf("group %s: %d repetitions", v, len(reps))
			}

			for _, r := range reps {
				if err := checkShape(v.Atoms, r.Groups); err != nil {
					return err
				}
			}

		case grammar.Alternation:
			opt := groups[i].Option
			if opt < 0 || opt >= len(v.Options) {
				return fmt.Errorf("alternation %s: no option %d", v, opt)
			}

			if err := checkShape(v.Options[opt], groups[i].Groups); err != nil {
				return err
			}

		default:
			continue
		}

		i++
	}

	return nil
}

// guide returns the author's hint for the expected literal, if any.
func (s *state) guide(p *Prototype, literal string, groups int) string {
	if p == nil || p.Guidance == nil {
		return ""
	}

	return p.Guidance(literal, groups)
}

// expect records that literal was expected at pos while matching p.
func (s *state) expect(p *Prototype, pos, groups int, literal string) *ParseError {
	return s.miss(pos, p, s.guide(p, literal, groups), strconv.Quote(literal))
}

// miss records a recoverable match failure. The failure furthest into the
// input is the one reported when no rule matches.
func (s *state) miss(pos int, p *Prototype, hint string, expected ...string) *ParseError {
	pe := s.newError(pos, p, ErrUnexpected, hint, expected)
	s.record(pos, pe)

	return pe
}

func (s *state) record(pos int, pe *ParseError) {
	switch {
	case s.furthest == nil || pos > s.at:
		s.furthest, s.at = clone(pe), pos

	case pos == s.at:
		for _, e := range pe.Expected {
			if !slices.Contains(s.furthest.Expected, e) {
				s.furthest.Expected = append(s.furthest.Expected, e)
			}
		}

		if s.furthest.Hint == "" {
			s.furthest.Hint, s.furthest.Token = pe.Hint, pe.Token
		}
	}

	slices.Sort(s.furthest.Expected)
}

// frontier is a saved copy of the furthest failure.
type frontier struct {
	err *ParseError
	at  int
}

func (s *state) save() frontier { return frontier{err: clone(s.furthest), at: s.at} }

func (s *state) restore(f frontier) { s.furthest, s.at = clone(f.err), f.at }

func clone(pe *ParseError) *ParseError {
	if pe == nil {
		return nil
	}

	cp := *pe
	cp.Expected = slices.Clone(pe.Expected)

	return &cp
}

func (s *state) merge(f frontier) {
	if f.err != nil {
		s.record(f.at, f.err)
	}
}

// fail returns an error that ends the parse.
func (s *state) fail(pos int, p *Prototype, err *Error, hint ...string) *ParseError {
	pe := s.newError(pos, p, err, strings.Join(hint, "; "), nil)
	pe.fatal = true

	return pe
}

func (s *state) newError(pos int, p *Prototype, err *Error, hint string, expected []string) *ParseError {
	u := s.units[pos]

	pe := &ParseError{
		Err:      err,
		Found:    u.String(),
		Hint:     hint,
		Source:   s.src,
		Expected: expected,
		Pos:      u.Pos,
	}

	if p != nil {
		pe.Token = p.Name
	}

	return pe
}
