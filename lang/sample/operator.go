package sample

import (
	"log/slog"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/larf/lang"
)

// program compiles an operator expression over lhs and rhs. Operand types
// are only known at run time, so no environment is given to the compiler.
func program(source string) *vm.Program {
	p, err := expr.Compile(source)
	if err != nil {
		panic(err)
	}

	return p
}

type operator struct {
	name   string
	symbol string
	source string
	prec   int
	zero   bool // right operand must not be zero

	// overflows reports whether the operation on two integers leaves the
	// int64 range.
	overflows func(a, b int64) bool
}

var binary = []operator{
	{name: "equal", symbol: "==", source: "lhs == rhs", prec: 3},
	{name: "not-equal", symbol: "!=", source: "lhs != rhs", prec: 3},
	{name: "less", symbol: "<", source: "lhs < rhs", prec: 4},
	{name: "less-equal", symbol: "<=", source: "lhs <= rhs", prec: 4},
	{name: "greater", symbol: ">", source: "lhs > rhs", prec: 4},
	{name: "greater-equal", symbol: ">=", source: "lhs >= rhs", prec: 4},
	{name: "add", symbol: "+", source: "lhs + rhs", prec: 5, overflows: addOverflows},
	{name: "subtract", symbol: "-", source: "lhs - rhs", prec: 5, overflows: subOverflows},
	{name: "multiply", symbol: "*", source: "lhs * rhs", prec: 6, overflows: mulOverflows},
	{name: "divide", symbol: "/", source: "lhs / rhs", prec: 6, zero: true},
	{name: "modulo", symbol: "%", source: "lhs % rhs", prec: 6, zero: true},
}

func operators() []*lang.Prototype {
	protos := []*lang.Prototype{
		{
			Name:       "or",
			Pattern:    `'||'`,
			Notation:   lang.Infix,
			Precedence: 1,
			ValueType:  lang.KindBool,
			Eval:       logical(true),
		},
		{
			Name:       "and",
			Pattern:    `'&&'`,
			Notation:   lang.Infix,
			Precedence: 2,
			ValueType:  lang.KindBool,
			Eval:       logical(false),
		},
		{
			Name:       "negate",
			Pattern:    `'-'`,
			Notation:   lang.Prefix,
			Precedence: 7,
			Throws:     []string{TypeError, ArithmeticError},
			Eval:       unary(program("-rhs")),
		},
		{
			Name:       "not",
			Pattern:    `'!'`,
			Notation:   lang.Prefix,
			Precedence: 7,
			ValueType:  lang.KindBool,
			Eval: func(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
				res, err := rt.EvalGroup(tok.Group(0))
				if err != nil || res.Failed() {
					return res, err
				}

				return lang.Ok(lang.Bool(!res.Value.Truthy())), nil
			},
		},
		{
			Name:       "factorial",
			Pattern:    `'!'`,
			Notation:   lang.Postfix,
			Precedence: 8,
			ValueType:  lang.KindInt,
			Throws:     []string{TypeError, ValueError, ArithmeticError},
			Eval:       evalFactorial,
		},
	}

	for _, op := range binary {
		throws := []string{TypeError}
		if op.zero || op.overflows != nil {
			throws = append(throws, ArithmeticError)
		}

		protos = append(protos, &lang.Prototype{
			Name:       op.name,
			Pattern:    "'" + op.symbol + "'",
			Notation:   lang.Infix,
			Precedence: op.prec,
			Throws:     throws,
			Eval:       infix(program(op.source), op),
		})
	}

	return protos
}

// operands evaluates the groups of an operator token in order.
func operands(rt lang.Runtime, tok *lang.Token) ([]lang.Value, lang.Result, error) {
	out := make([]lang.Value, len(tok.Groups))

	for i, g := range tok.Groups {
		res, err := rt.EvalGroup(g)
		if err != nil || res.Failed() {
			return nil, res, err
		}

		out[i] = res.Value
	}

	return out, lang.Ok(lang.Null()), nil
}

// run executes p with the given operands. Runtime failures of the program
// are raised as TypeError.
func run(rt lang.Runtime, tok *lang.Token, p *vm.Program, env map[string]any) (lang.Result, error) {
	out, err := vm.Run(p, env)
	if err != nil {
		rt.Logger().TraceContext(
			rt.Context(),
			"operator failed",
			slog.String("operator", tok.Text),
			slog.String("error", err.Error()),
		)

		return rt.Raise(TypeError, err.Error())
	}

	v, err := lang.FromNative(out)
	if err != nil {
		return rt.Raise(TypeError, err.Error())
	}

	return lang.Ok(v), nil
}

func infix(p *vm.Program, op operator) lang.EvalFunc {
	return func(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
		vs, res, err := operands(rt, tok)
		if err != nil || res.Failed() {
			return res, err
		}

		if op.zero && isZero(vs[1]) {
			return rt.Raise(ArithmeticError, "division by zero")
		}

		if op.overflows != nil &&
			vs[0].Kind() == lang.KindInt && vs[1].Kind() == lang.KindInt {
			a, _ := vs[0].AsInt()
			b, _ := vs[1].AsInt()

			if op.overflows(a, b) {
				return rt.Raise(ArithmeticError, "integer overflow")
			}
		}

		return run(rt, tok, p, map[string]any{
			"lhs": vs[0].Native(),
			"rhs": vs[1].Native(),
		})
	}
}

func unary(p *vm.Program) lang.EvalFunc {
	return func(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
		vs, res, err := operands(rt, tok)
		if err != nil || res.Failed() {
			return res, err
		}

		if n, err := vs[0].AsInt(); err == nil && n == math.MinInt64 {
			return rt.Raise(ArithmeticError, "integer overflow")
		}

		return run(rt, tok, p, map[string]any{"lhs": nil, "rhs": vs[0].Native()})
	}
}

// logical evaluates the right operand only when the left one does not
// decide the result.
func logical(or bool) lang.EvalFunc {
	return func(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
		lhs, err := rt.EvalGroup(tok.Group(0))
		if err != nil || lhs.Failed() {
			return lhs, err
		}

		if lhs.Value.Truthy() == or {
			return lang.Ok(lang.Bool(or)), nil
		}

		rhs, err := rt.EvalGroup(tok.Group(1))
		if err != nil || rhs.Failed() {
			return rhs, err
		}

		return lang.Ok(lang.Bool(rhs.Value.Truthy())), nil
	}
}

func evalFactorial(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	vs, res, err := operands(rt, tok)
	if err != nil || res.Failed() {
		return res, err
	}

	n, err := vs[0].AsInt()
	if err != nil {
		return rt.Raise(TypeError, err.Error())
	}

	if n < 0 {
		return rt.Raise(ValueError, "factorial of negative number")
	}

	f := int64(1)

	for i := int64(2); i <= n; i++ {
		if f > math.MaxInt64/i {
			return rt.Raise(ArithmeticError, "factorial overflows")
		}

		f *= i
	}

	return lang.Ok(lang.Int(f)), nil
}

func addOverflows(a, b int64) bool {
	return (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b)
}

func subOverflows(a, b int64) bool {
	return (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b)
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}

	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return true
	}

	c := a * b

	return c/b != a
}

func isZero(v lang.Value) bool {
	switch v.Kind() {
	case lang.KindInt:
		n, _ := v.AsInt()

		return n == 0
	case lang.KindFloat:
		f, _ := v.AsFloat()

		return f == 0
	default:
		return false
	}
}
