package grammar

// Rule is a compiled pattern. Rules are immutable and safe to share.
type Rule struct {
	Pattern string
	Atoms   []Atom
	// Slots is the number of top-level capturing atoms.
	Slots int
}

// String renders the rule in canonical pattern syntax. Compiling the result
// yields a rule with identical atoms.
func (r *Rule) String() string { return join(r.Atoms) }

// Prefix returns the run of literals the rule begins with.
func (r *Rule) Prefix() []string {
	var prefix []string

	for _, a := range r.Atoms {
		lit, ok := a.(Literal)
		if !ok {
			break
		}

		prefix = append(prefix, lit.Text)
	}

	return prefix
}

// Literals returns the text of every literal in the rule, in pattern order,
// including those nested in groups and alternatives.
func (r *Rule) Literals() []string {
	var lits []string

	walk(r.Atoms, func(a Atom) {
		if lit, ok := a.(Literal); ok {
			lits = append(lits, lit.Text)
		}
	})

	return lits
}

// Operator reports the literal text of a rule consisting of exactly one
// literal.
func (r *Rule) Operator() (string, bool) {
	if len(r.Atoms) != 1 {
		return "", false
	}

	lit, ok := r.Atoms[0].(Literal)

	return lit.Text, ok
}

// LeftRecursive reports whether the rule can begin with a sub-expression
// capture, which the parser cannot select without consuming input first.
func (r *Rule) LeftRecursive() bool {
	return leadsWithExpression(r.Atoms)
}

func leadsWithExpression(atoms []Atom) bool {
	for _, a := range atoms {
		switch v := a.(type) {
		case Capture:
			return v.Kind == Expression
		case Group:
			if leadsWithExpression(v.Atoms) {
				return true
			}

			if v.Repeat.Min() > 0 {
				return false
			}
		case Alternation:
			for _, o := range v.Options {
				if leadsWithExpression(o) {
					return true
				}
			}

			return false
		case Optional:
			continue
		default:
			return false
		}
	}

	return false
}

func walk(atoms []Atom, fn func(Atom)) {
	for _, a := range atoms {
		fn(a)

		switch v := a.(type) {
		case Group:
			walk(v.Atoms, fn)
		case Optional:
			walk(v.Atoms, fn)
		case Alternation:
			for _, o := range v.Options {
				walk(o, fn)
			}
		}
	}
}

// Map renders the rule as nested maps and slices for YAML or JSON output.
func (r *Rule) Map() map[string]any {
	return map[string]any{
		"pattern": r.Pattern,
		"slots":   r.Slots,
		"atoms":   mapAtoms(r.Atoms),
	}
}

func mapAtoms(atoms []Atom) []any {
	out := make([]any, len(atoms))

	for i, a := range atoms {
		switch v := a.(type) {
		case Literal:
			out[i] = map[string]any{"literal": v.Text}

		case Capture:
			m := map[string]any{"capture": v.Name, "kind": v.Kind.String(), "slot": v.Slot}
			if v.Type != "" {
				m["type"] = v.Type
			}

			out[i] = m

		case Group:
			out[i] = map[string]any{
				"group":  mapAtoms(v.Atoms),
				"repeat": v.Repeat.String(),
				"slot":   v.Slot,
			}

		case Alternation:
			opts := make([]any, len(v.Options))
			for j, o := range v.Options {
				opts[j] = mapAtoms(o)
			}

			out[i] = map[string]any{"alternation": opts, "slot": v.Slot}

		case Optional:
			out[i] = map[string]any{"optional": mapAtoms(v.Atoms)}

		case CodeBlock:
			out[i] = map[string]any{"block": v.Slot}
		}
	}

	return out
}
