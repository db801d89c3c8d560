package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ardnew/larf/lang"
)

// Grammar prints the token prototypes of the language in registration order.
type Grammar struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})."  short:"o"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`
}

// Run executes the grammar command.
func (g *Grammar) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	reg := processor(ctx).Registry()
	protos := reg.Prototypes()

	data := map[string]any{"errors": reg.ErrorKinds()}
	list := make([]any, len(protos))

	for i, p := range protos {
		list[i] = prototypeMap(p)
	}

	data["tokens"] = list

	return write(ctx, outputFrom(ctx), g.Format, g.Indent, data, grammarText(reg))
}

func prototypeMap(p *lang.Prototype) map[string]any {
	m := map[string]any{
		"name":     p.Name,
		"notation": p.Notation.String(),
		"class":    p.Class.String(),
	}

	if r := p.Rule(); r != nil {
		m["rule"] = r.Map()
	} else {
		m["match"] = p.Match
	}

	if p.Notation != lang.Operand {
		m["precedence"] = p.Precedence
		m["right-assoc"] = p.RightAssoc
	}

	if p.Priority {
		m["priority"] = true
	}

	if p.Throws != nil {
		m["throws"] = p.Throws
	}

	return m
}

func grammarText(reg *lang.Registry) string {
	var sb strings.Builder

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tNOTATION\tPREC\tPATTERN")

	for _, p := range reg.Prototypes() {
		prec := ""
		if p.Notation != lang.Operand {
			prec = fmt.Sprint(p.Precedence)
		}

		pattern := p.Pattern
		if pattern == "" {
			pattern = "/" + p.Match + "/"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Notation, prec, pattern)
	}

	w.Flush()

	fmt.Fprintf(&sb, "\nerror kinds: %s", strings.Join(reg.ErrorKinds(), ", "))

	return sb.String()
}
