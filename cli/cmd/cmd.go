package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/larf/lang"
	"github.com/ardnew/larf/lang/sample"
)

type (
	contextKey struct{}
	optionsKey struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithOptions returns a new context.Context carrying the language options
// every command builds its processor with.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func optionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return opts
}

// WithOutput returns a new context.Context whose commands write to w instead
// of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// processor returns a processor for the sample language configured from ctx.
func processor(ctx context.Context) *lang.Processor {
	return sample.New(optionsFrom(ctx)...)
}

// stdinSource names standard input in a list of source files.
const stdinSource = "-"

// openSources returns a reader over the named files in order. Files naming
// one already opened are skipped, and standard input is read last. Each
// file is followed by a newline so units never join across files. No names
// means standard input alone.
func openSources(paths []string) (io.Reader, func(), error) {
	if len(paths) == 0 {
		return os.Stdin, func() {}, nil
	}

	var (
		readers []io.Reader
		opened  []*os.File
		seen    []os.FileInfo
		stdin   bool
	)

	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, path := range paths {
		if path == stdinSource {
			stdin = true

			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			closeAll()

			return nil, nil, ErrOpenSource.Wrap(err)
		}

		if duplicate(seen, info) {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			closeAll()

			return nil, nil, ErrOpenSource.Wrap(err)
		}

		seen = append(seen, info)
		opened = append(opened, f)
		readers = append(readers, f, strings.NewReader("\n"))
	}

	if stdin {
		readers = append(readers, os.Stdin)
	}

	return io.MultiReader(readers...), closeAll, nil
}

func duplicate(seen []os.FileInfo, info os.FileInfo) bool {
	for _, s := range seen {
		if os.SameFile(s, info) {
			return true
		}
	}

	return false
}
