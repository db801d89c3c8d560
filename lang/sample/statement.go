package sample

import (
	"log/slog"

	"github.com/ardnew/larf/lang"
)

func statements() []*lang.Prototype {
	return []*lang.Prototype{
		{
			Name:    "assignment",
			Pattern: `val '=' expr`,
			Eval:    evalAssignment,
		},
		{
			Name:     "function",
			Pattern:  `'func' val '(' ( val ','? )* ')' ( 'throws' ( error ','? )+ )? block`,
			Class:    lang.Callable,
			Priority: true,
			Guidance: closing(")", "parameter list"),
			Declare:  declareFunction,
		},
		{
			Name:     "invocation",
			Pattern:  `val '(' ( expr ','? )* ')'`,
			Guidance: closing(")", "argument list"),
			Eval:     evalInvocation,
		},
		{
			Name:    "return",
			Pattern: `'return' expr`,
			Eval:    evalReturn,
		},
		{
			Name:    "conditional",
			Pattern: `'if' expr block ( 'else' block )?`,
			Eval:    evalConditional,
		},
		{
			Name:    "loop",
			Pattern: `'while' expr block`,
			Eval:    evalLoop,
		},
		{
			Name:     "raise",
			Pattern:  `'raise' error '(' expr ')'`,
			Guidance: closing(")", "error message"),
			Eval:     evalRaise,
		},
		{
			Name:    "try",
			Pattern: `'try' block 'catch' '(' error val ')' block`,
			Eval:    evalTry,
		},
	}
}

func evalAssignment(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	res, err := rt.EvalGroup(tok.Group(1))
	if err != nil || res.Failed() {
		return res, err
	}

	rt.Scope().Assign(tok.Group(0).Text(), res.Value)

	return res, nil
}

func declareFunction(rt lang.Runtime, tok *lang.Token) error {
	fn := &lang.Function{
		Name:   tok.Group(0).Text(),
		Params: names(tok.Group(1)),
		Body:   tok.Group(3).Block,
		Decl:   tok,
	}

	if throws := tok.Group(2); len(throws.Groups) == 1 {
		fn.Throws = names(throws.Group(0).Group(0))
		for _, kind := range fn.Throws {
			if !rt.Registry().HasErrorKind(kind) {
				return lang.ErrUndeclaredError.
					With(slog.String("kind", kind)).
					Wrapf("function %s throws unregistered kind %q", fn, kind)
			}
		}
	}

	rt.Logger().TraceContext(
		rt.Context(),
		"declare function",
		slog.String("function", fn.String()),
	)

	rt.Scope().DeclareFunction(fn)

	return nil
}

func evalInvocation(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	args, res, err := values(rt, tok.Group(1))
	if err != nil || res.Failed() {
		return res, err
	}

	return rt.Invoke(tok.Group(0).Text(), args...)
}

func evalReturn(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	res, err := rt.EvalGroup(tok.Group(0))
	if err != nil || res.Failed() {
		return res, err
	}

	return lang.Return(res.Value), nil
}

func evalConditional(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	cond, err := rt.EvalGroup(tok.Group(0))
	if err != nil || cond.Failed() {
		return cond, err
	}

	if cond.Value.Truthy() {
		return rt.EvalGroup(tok.Group(1))
	}

	if alt := tok.Group(2); len(alt.Groups) == 1 {
		return rt.EvalGroup(alt.Group(0).Group(0))
	}

	return lang.Ok(lang.Null()), nil
}

func evalLoop(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	res := lang.Ok(lang.Null())

	for {
		if err := rt.Context().Err(); err != nil {
			return lang.Result{}, err
		}

		cond, err := rt.EvalGroup(tok.Group(0))
		if err != nil || cond.Failed() {
			return cond, err
		}

		if !cond.Value.Truthy() {
			return res, nil
		}

		if res, err = rt.EvalGroup(tok.Group(1)); err != nil || res.Failed() || res.Returned() {
			return res, err
		}
	}
}

func evalRaise(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	msg, err := rt.EvalGroup(tok.Group(1))
	if err != nil || msg.Failed() {
		return msg, err
	}

	return rt.Raise(tok.Group(0).Text(), msg.Value.String())
}

// evalTry runs the guarded block. An error of the caught kind is bound to
// the handler's variable in a new frame; any other error passes through.
func evalTry(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	kind := tok.Group(1).Text()
	if !rt.Registry().HasErrorKind(kind) {
		return lang.Result{}, lang.ErrUndeclaredError.
			With(slog.String("kind", kind)).
			Wrapf("catch of unregistered kind %q", kind)
	}

	res, err := rt.EvalGroup(tok.Group(0))
	if err != nil || !res.Failed() {
		return res, err
	}

	e := res.Err()
	if e.Kind != kind {
		return res, nil
	}

	rt.Logger().TraceContext(
		rt.Context(),
		"catch",
		slog.String("kind", e.Kind),
		slog.String("position", e.Pos.String()),
	)

	rt.Scope().PushFrame()
	defer rt.Scope().PopFrame()

	rt.Scope().Declare(tok.Group(2).Text(), lang.ErrorValue(e), lang.Plain)

	return rt.EvalGroup(tok.Group(3))
}
