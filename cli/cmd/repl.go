package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/larf/cli/cmd/repl"
	"github.com/ardnew/larf/lang/sample"
	"github.com/ardnew/larf/log"
)

// Repl starts an interactive session.
type Repl struct {
	Files []string `arg:"" help:"Source files run before the first prompt." name:"file" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg := repl.Config{
		Processor: processor(ctx),
		Builtins:  sample.Builtins,
		Logger:    log.Default(),
	}

	if ktx := kongContextFrom(ctx); ktx != nil {
		cfg.CacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	if len(r.Files) > 0 {
		src, done, err := openSources(r.Files)
		if err != nil {
			return err
		}
		defer done()

		cfg.Prelude = src
	}

	log.DebugContext(
		ctx,
		"repl",
		slog.Int("files", len(r.Files)),
		slog.String("cache", cfg.CacheDir),
	)

	return repl.Run(ctx, cfg)
}
