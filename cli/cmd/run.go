package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/larf/lang/sample"
	"github.com/ardnew/larf/log"
)

// Run evaluates source files as one program.
type Run struct {
	Print bool `default:"true" help:"Print the value of the last statement." negatable:""`

	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, done, err := openSources(r.Files)
	if err != nil {
		return err
	}
	defer done()

	out := outputFrom(ctx)
	proc := processor(ctx)

	scope := proc.NewScope()
	if err := scope.Preload(sample.Builtins(out)); err != nil {
		return err
	}

	res, err := proc.RunReader(ctx, src, scope)
	if err != nil {
		return err
	}

	if e := res.Err(); e != nil {
		return ErrUncaught.Wrap(e).With(
			slog.String("kind", e.Kind),
			slog.String("position", e.Pos.String()),
		)
	}

	log.DebugContext(
		ctx,
		"run complete",
		slog.Any("result", res),
		slog.Int("files", len(r.Files)),
	)

	if !r.Print || res.Value.IsNull() {
		return nil
	}

	if _, err := fmt.Fprintln(out, res.Value); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
