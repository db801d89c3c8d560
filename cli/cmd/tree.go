package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/larf/lang"
)

// Tree prints the token tree of source files without evaluating them.
type Tree struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})."  short:"o"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`

	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:""`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, done, err := openSources(t.Files)
	if err != nil {
		return err
	}
	defer done()

	source, err := lang.ReadSource(src)
	if err != nil {
		return err
	}

	tree, err := processor(ctx).Parse(ctx, source)
	if err != nil {
		return err
	}

	return write(ctx, outputFrom(ctx), t.Format, t.Indent, tree.Map(), tree.String())
}

// write renders data in the named format. The text format writes text.
func write(ctx context.Context, w io.Writer, format string, indent int, data any, text string) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "json":
		if indent > 0 {
			out, err = json.MarshalIndent(data, "", strings.Repeat(" ", indent))
		} else {
			out, err = json.Marshal(data)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		out = append(out, '\n')

	case "yaml":
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		out, err = yaml.MarshalContext(ctx, data, opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		out = []byte(text + "\n")
	}

	if _, err := fmt.Fprint(w, string(out)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
