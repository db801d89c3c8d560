package lang

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/larf/log"
)

// Evaluator walks token trees. It holds no per-run state; all run state
// lives in the [Scope] passed to [Evaluator.Evaluate].
type Evaluator struct {
	reg *Registry
	cfg config
}

// NewEvaluator returns an evaluator for trees parsed from reg.
func NewEvaluator(reg *Registry, opts ...Option) *Evaluator {
	return &Evaluator{reg: reg, cfg: makeConfig(opts...)}
}

// Evaluate runs tree in scope and returns the result of its last statement.
// The root block runs in the current frame of scope, so its declarations
// remain visible to later runs sharing the scope. A nil scope is replaced by
// a new one.
//
// In-language errors are reported through the result. The returned error is
// a [*BindError] and means the run was aborted.
func (e *Evaluator) Evaluate(ctx context.Context, tree *Tree, scope *Scope) (Result, error) {
	if scope == nil {
		scope = NewScope(e.cfg.scope)
	}

	rt := Runtime{ev: e, ctx: ctx, scope: scope}

	e.cfg.logger.TraceContext(
		ctx,
		"evaluate start",
		slog.Int("statements", len(tree.Root.Statements)),
		slog.String("scope", scope.Mode().String()),
	)

	res, err := rt.block(tree.Root, false)
	if err != nil {
		e.cfg.logger.TraceContext(ctx, "evaluate aborted", slog.Any("error", err))

		return Result{}, err
	}

	res.Flags &^= FlagReturn

	e.cfg.logger.TraceContext(ctx, "evaluate complete", slog.Any("result", res))

	return res, nil
}

// Runtime is the handle passed to evaluation rules. It is a value; the
// recursion depth it carries grows with each nested evaluation.
type Runtime struct {
	ev    *Evaluator
	ctx   context.Context
	scope *Scope
	depth int
}

// Context returns the context of the run.
func (rt Runtime) Context() context.Context { return rt.ctx }

// Scope returns the scope of the run.
func (rt Runtime) Scope() *Scope { return rt.scope }

// Registry returns the registry the evaluated tree was parsed with.
func (rt Runtime) Registry() *Registry { return rt.ev.reg }

// Logger returns the evaluator's logger.
func (rt Runtime) Logger() log.Logger { return rt.ev.cfg.logger }

// Depth returns the current evaluation depth.
func (rt Runtime) Depth() int { return rt.depth }

func (rt Runtime) deeper(name string, tok *Token) (Runtime, error) {
	rt.depth++
	if rt.depth <= rt.ev.cfg.maxDepth {
		return rt, nil
	}

	err := &BindError{
		Err:  ErrDepthExceeded.With(slog.Int("limit", rt.ev.cfg.maxDepth)),
		Name: name,
	}

	if tok != nil {
		err.Pos = tok.Pos
	}

	return rt, err
}

// Eval evaluates tok and records the value in tok.Value. An error-flagged
// result is returned unchanged. A result holding a token is replaced by the
// result of evaluating that token, once.
func (rt Runtime) Eval(tok *Token) (Result, error) {
	if tok == nil {
		return Ok(Null()), nil
	}

	res, err := rt.apply(tok)
	if err != nil {
		return Result{}, err
	}

	if inner, ok := res.Value.data.(*Token); ok && !res.Failed() && res.Value.kind == KindToken {
		if res, err = rt.apply(inner); err != nil {
			return Result{}, err
		}
	}

	tok.Value = res.Value

	return res, nil
}

// apply runs the evaluation rule of tok. The first token to return an
// in-language error becomes its origin and must declare its kind.
func (rt Runtime) apply(tok *Token) (Result, error) {
	in, err := rt.deeper(tok.Name(), tok)
	if err != nil {
		return Result{}, err
	}

	if tok.Proto == nil || tok.Proto.Eval == nil {
		return Result{}, &BindError{Err: ErrNoRule, Name: tok.Name(), Pos: tok.Pos}
	}

	rt.ev.cfg.logger.TraceContext(
		rt.ctx,
		"eval",
		slog.String("token", tok.Name()),
		slog.String("position", tok.Pos.String()),
		slog.Int("depth", in.depth),
	)

	res, err := tok.Proto.Eval(in, tok)
	if err != nil {
		return Result{}, bindError(err, tok.Name(), tok.Pos)
	}

	if e := res.Err(); e != nil && e.origin == nil {
		e.origin = tok
		if e.Pos.Line == 0 {
			e.Pos = tok.Pos
		}

		if throws := tok.Proto.Throws; throws != nil && !slices.Contains(throws, e.Kind) {
			return Result{}, &BindError{
				Err:  ErrUndeclaredError.With(slog.String("kind", e.Kind)).Wrapf("%q does not declare %q", tok.Name(), e.Kind),
				Name: tok.Name(),
				Pos:  tok.Pos,
			}
		}
	}

	return res, nil
}

// EvalGroup evaluates the block or tokens of g in order and returns the last
// result. It stops at the first error-flagged or returning result.
func (rt Runtime) EvalGroup(g *Group) (Result, error) {
	if g.Block != nil {
		return rt.EvalBlock(g.Block)
	}

	res := Ok(Null())

	for _, tok := range g.Flatten() {
		r, err := rt.Eval(tok)
		if err != nil {
			return Result{}, err
		}

		if res = r; res.Failed() || res.Returned() {
			break
		}
	}

	return res, nil
}

// EvalBlock evaluates b in a new frame.
func (rt Runtime) EvalBlock(b *Block) (Result, error) { return rt.block(b, true) }

// block runs the priority statements of b, then its sequential statements.
// The frame pushed for b is popped on every exit path.
func (rt Runtime) block(b *Block, push bool) (Result, error) {
	if push {
		rt.scope.PushFrame()
		defer rt.scope.PopFrame()
	}

	for _, tok := range b.Priority {
		res, err := rt.declare(tok)
		if err != nil || res.Failed() {
			return res, err
		}
	}

	res := Ok(Null())

	for _, tok := range b.Sequence {
		r, err := rt.Eval(tok)
		if err != nil {
			return Result{}, err
		}

		if res = r; res.Failed() || res.Returned() {
			break
		}
	}

	return res, nil
}

// declare runs the declaration rule of a priority token, or its evaluation
// rule when it has none, discarding any value.
func (rt Runtime) declare(tok *Token) (Result, error) {
	if tok.Proto.Declare == nil {
		res, err := rt.Eval(tok)
		if err != nil || res.Failed() {
			return res, err
		}

		return Ok(Null()), nil
	}

	in, err := rt.deeper(tok.Name(), tok)
	if err != nil {
		return Result{}, err
	}

	rt.ev.cfg.logger.TraceContext(
		rt.ctx,
		"declare",
		slog.String("token", tok.Name()),
		slog.String("position", tok.Pos.String()),
		slog.Int("frame", rt.scope.Depth()),
	)

	if err := tok.Proto.Declare(in, tok); err != nil {
		return Result{}, bindError(err, tok.Name(), tok.Pos)
	}

	return Ok(Null()), nil
}

// Invoke calls the function declared as name with len(args) parameters.
func (rt Runtime) Invoke(name string, args ...Value) (Result, error) {
	fn, err := rt.scope.LookupFunction(name, len(args))
	if err != nil {
		return Result{}, &BindError{Err: err, Name: name}
	}

	return rt.Call(fn, args...)
}

// Call calls fn in a new frame binding each argument to its parameter name.
// A returning result stops unwinding here. Errors escaping a function with a
// declared throws list must be of a declared kind.
func (rt Runtime) Call(fn *Function, args ...Value) (Result, error) {
	if len(args) != fn.Arity() {
		return Result{}, &BindError{
			Err:  ErrArity.Wrapf("expected %d parameters, got %d", fn.Arity(), len(args)),
			Name: fn.Name,
		}
	}

	in, err := rt.deeper(fn.Name, fn.Decl)
	if err != nil {
		return Result{}, err
	}

	rt.ev.cfg.logger.TraceContext(
		rt.ctx,
		"invoke",
		slog.String("function", fn.String()),
		slog.Int("depth", in.depth),
	)

	rt.scope.PushFrame()
	defer rt.scope.PopFrame()

	for i, name := range fn.Params {
		rt.scope.Declare(name, args[i], Parameter)
	}

	var res Result

	switch {
	case fn.Native != nil:
		res, err = fn.Native(in, args)
	case fn.Body != nil:
		res, err = in.block(fn.Body, false)
	default:
		err = &BindError{Err: ErrNoRule, Name: fn.Name}
	}

	if err != nil {
		return Result{}, err
	}

	res.Flags &^= FlagReturn

	if e := res.Err(); e != nil && fn.Throws != nil && !slices.Contains(fn.Throws, e.Kind) {
		return Result{}, &BindError{
			Err:  ErrUndeclaredError.With(slog.String("kind", e.Kind)).Wrapf("function %s does not declare %q", fn, e.Kind),
			Name: fn.Name,
			Pos:  e.Pos,
		}
	}

	return res, nil
}

// Raise returns an error-flagged result of the given kind. The kind must be
// registered.
func (rt Runtime) Raise(kind, message string) (Result, error) {
	if !rt.ev.reg.HasErrorKind(kind) {
		return Result{}, &BindError{
			Err:  ErrUndeclaredError.With(slog.String("kind", kind)).Wrapf("error kind %q is not registered", kind),
			Name: kind,
		}
	}

	return Fail(&InLanguageError{Kind: kind, Message: message}), nil
}
