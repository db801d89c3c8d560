package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"
)

// Processor is the run entry point: it parses source text and evaluates the
// tree. A Processor may be shared by concurrent runs that use distinct
// scopes.
type Processor struct {
	parser *Parser
	eval   *Evaluator
	cfg    config
}

// NewProcessor returns a processor for the language declared by reg. It
// seals reg.
func NewProcessor(reg *Registry, opts ...Option) *Processor {
	return &Processor{
		parser: NewParser(reg, opts...),
		eval:   NewEvaluator(reg, opts...),
		cfg:    makeConfig(opts...),
	}
}

// Registry returns the sealed registry of the processor.
func (p *Processor) Registry() *Registry { return p.parser.reg }

// Parser returns the processor's parser.
func (p *Processor) Parser() *Parser { return p.parser }

// NewScope returns an empty scope in the configured mode.
func (p *Processor) NewScope() *Scope { return NewScope(p.cfg.scope) }

// Parse parses source without evaluating it.
func (p *Processor) Parse(ctx context.Context, source string) (*Tree, error) {
	return p.parser.ParseString(ctx, source)
}

// Run parses and evaluates source in scope. A nil scope is replaced by a new
// one. The error is a [*ParseError] or [*BindError]; in-language errors are
// reported through the result.
func (p *Processor) Run(ctx context.Context, source string, scope *Scope) (Result, error) {
	tree, err := p.parser.ParseString(ctx, source)
	if err != nil {
		return Result{}, err
	}

	if scope == nil {
		scope = p.NewScope()
	}

	return p.eval.Evaluate(ctx, tree, scope)
}

// RunReader reads all of r and runs it like [Processor.Run].
func (p *Processor) RunReader(ctx context.Context, r io.Reader, scope *Scope) (Result, error) {
	source, err := ReadSource(r)
	if err != nil {
		return Result{}, err
	}

	p.cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(source)),
		slog.Bool("read_ahead", true),
	)

	return p.Run(ctx, source, scope)
}

// ReadSource reads all of r with asynchronous read-ahead.
func ReadSource(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	return string(data), nil
}
