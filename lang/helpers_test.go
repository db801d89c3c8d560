package lang

import (
	"testing"
)

// A minimal language used throughout the package tests.

func evalInteger(_ Runtime, tok *Token) (Result, error) {
	var n int64

	for _, r := range tok.Text {
		n = n*10 + int64(r-'0')
	}

	return Ok(Int(n)), nil
}

func evalReference(rt Runtime, tok *Token) (Result, error) {
	b, err := rt.Scope().Lookup(tok.Text)
	if err != nil {
		return Result{}, err
	}

	return Ok(b.Value), nil
}

func evalAssign(rt Runtime, tok *Token) (Result, error) {
	res, err := rt.EvalGroup(tok.Group(1))
	if err != nil || res.Failed() {
		return res, err
	}

	rt.Scope().Assign(tok.Group(0).Text(), res.Value)

	return res, nil
}

// repeated returns the first capture of each repetition of g.
func repeated(g *Group) []string {
	var out []string

	for _, rep := range g.Groups {
		out = append(out, rep.Group(0).Text())
	}

	return out
}

func declareFunc(rt Runtime, tok *Token) error {
	fn := &Function{
		Name:   tok.Group(0).Text(),
		Params: repeated(tok.Group(1)),
		Body:   tok.Group(3).Block,
		Decl:   tok,
	}

	if throws := tok.Group(2); len(throws.Groups) == 1 {
		fn.Throws = append([]string{}, repeated(throws.Group(0).Group(0))...)
	}

	rt.Scope().DeclareFunction(fn)

	return nil
}

func evalCall(rt Runtime, tok *Token) (Result, error) {
	var args []Value

	for _, rep := range tok.Group(1).Groups {
		res, err := rt.EvalGroup(rep.Group(0))
		if err != nil || res.Failed() {
			return res, err
		}

		args = append(args, res.Value)
	}

	return rt.Invoke(tok.Group(0).Text(), args...)
}

func evalReturn(rt Runtime, tok *Token) (Result, error) {
	res, err := rt.EvalGroup(tok.Group(0))
	if err != nil || res.Failed() {
		return res, err
	}

	return Return(res.Value), nil
}

func evalFail(rt Runtime, tok *Token) (Result, error) {
	return rt.Raise(tok.Group(0).Text(), "failed")
}

func evalOperand(rt Runtime, tok *Token) (Result, error) {
	return rt.EvalGroup(tok.Group(0))
}

func arith(fn func(a, b int64) int64) EvalFunc {
	return func(rt Runtime, tok *Token) (Result, error) {
		var v [2]int64

		for i := range v {
			res, err := rt.EvalGroup(tok.Group(i))
			if err != nil || res.Failed() {
				return res, err
			}

			if v[i], err = res.Value.AsInt(); err != nil {
				return rt.Raise("Failure", err.Error())
			}
		}

		return Ok(Int(fn(v[0], v[1]))), nil
	}
}

func testPrototypes() []*Prototype {
	return []*Prototype{
		{Name: "integer", Match: `\d+`, ValueType: KindInt, Eval: evalInteger},
		{Name: "reference", Match: `[A-Za-z_]\w*`, Eval: evalReference},
		{Name: "assign", Pattern: `val '=' expr`, Eval: evalAssign},
		{
			Name:     "func",
			Pattern:  `'func' val '(' ( val ','? )* ')' ( 'throws' ( error ','? )+ )? block`,
			Priority: true,
			Class:    Callable,
			Declare:  declareFunc,
		},
		{Name: "call", Pattern: `val '(' ( expr ','? )* ')'`, Eval: evalCall},
		{Name: "return", Pattern: `'return' expr`, Eval: evalReturn},
		{Name: "fail", Pattern: `'fail' error`, Eval: evalFail},
		{
			Name:    "paren",
			Pattern: `'(' expr ')'`,
			Eval:    evalOperand,
			Guidance: func(literal string, _ int) string {
				if literal == ")" {
					return "expected closing parenthesis"
				}

				return ""
			},
		},
		{
			Name: "add", Pattern: `'+'`, Notation: Infix, Precedence: 10,
			Eval: arith(func(a, b int64) int64 { return a + b }),
		},
		{
			Name: "sub", Pattern: `'-'`, Notation: Infix, Precedence: 10,
			Eval: arith(func(a, b int64) int64 { return a - b }),
		},
		{
			Name: "mul", Pattern: `'*'`, Notation: Infix, Precedence: 20,
			Eval: arith(func(a, b int64) int64 { return a * b }),
		},
		{
			Name: "pow", Pattern: `'^'`, Notation: Infix, Precedence: 30, RightAssoc: true,
			Eval: arith(func(a, b int64) int64 {
				n := int64(1)
				for range b {
					n *= a
				}

				return n
			}),
		},
		{
			Name: "neg", Pattern: `'-'`, Notation: Prefix, Precedence: 25,
			Eval: func(rt Runtime, tok *Token) (Result, error) {
				res, err := rt.EvalGroup(tok.Group(0))
				if err != nil || res.Failed() {
					return res, err
				}

				n, err := res.Value.AsInt()
				if err != nil {
					return rt.Raise("Failure", err.Error())
				}

				return Ok(Int(-n)), nil
			},
		},
	}
}

// testRegistry returns an unsealed registry of the test language plus extra.
func testRegistry(t testing.TB, extra ...*Prototype) *Registry {
	t.Helper()

	reg := NewRegistry()

	if err := reg.RegisterErrorKind("Failure", "Other"); err != nil {
		t.Fatalf("RegisterErrorKind() error = %v", err)
	}

	if err := reg.Register(append(testPrototypes(), extra...)...); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	return reg
}

func run(t testing.TB, src string, opts ...Option) (Result, error) {
	t.Helper()

	return NewProcessor(testRegistry(t), opts...).Run(t.Context(), src, nil)
}

func mustRun(t testing.TB, src string, opts ...Option) Result {
	t.Helper()

	res, err := run(t, src, opts...)
	if err != nil {
		t.Fatalf("Run(%q) error = %v", src, err)
	}

	return res
}

func mustInt(t testing.TB, v Value) int64 {
	t.Helper()

	n, err := v.AsInt()
	if err != nil {
		t.Fatalf("AsInt(%v) error = %v", v, err)
	}

	return n
}
