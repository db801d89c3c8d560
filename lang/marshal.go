package lang

// Map renders tok as nested maps and slices for YAML or JSON output.
func (t *Token) Map() map[string]any {
	m := map[string]any{
		"token":    t.Name(),
		"text":     t.Text,
		"position": t.Pos.String(),
	}

	if !t.Value.IsNull() {
		m["value"] = t.Value.String()
	}

	if len(t.Groups) > 0 {
		groups := make([]any, len(t.Groups))
		for i, g := range t.Groups {
			groups[i] = g.Map()
		}

		m["groups"] = groups
	}

	return m
}

// Map renders g as nested maps and slices.
func (g *Group) Map() map[string]any {
	m := map[string]any{}

	if g.Block != nil {
		m["block"] = g.Block.Map()
	}

	if len(g.Tokens) > 0 {
		toks := make([]any, len(g.Tokens))
		for i, t := range g.Tokens {
			toks[i] = t.Map()
		}

		m["tokens"] = toks
	}

	if len(g.Groups) > 0 {
		groups := make([]any, len(g.Groups))
		for i, c := range g.Groups {
			groups[i] = c.Map()
		}

		m["groups"] = groups
		m["option"] = g.Option
	}

	return m
}

// Map renders b as nested maps and slices. Priority statements are listed
// by index into the statements.
func (b *Block) Map() map[string]any {
	stmts := make([]any, len(b.Statements))
	priority := []any{}

	for i, t := range b.Statements {
		stmts[i] = t.Map()

		if t.Proto.Priority {
			priority = append(priority, i)
		}
	}

	return map[string]any{
		"position":   b.Pos.String(),
		"statements": stmts,
		"priority":   priority,
	}
}

// Map renders the tree as nested maps and slices.
func (t *Tree) Map() map[string]any {
	return map[string]any{"root": t.Root.Map()}
}
