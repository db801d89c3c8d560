// Package sample declares a small reference language on top of package lang.
//
// The language has integer, decimal, string, boolean, null, and list
// literals; variables; functions that can be called before they are
// declared; conditionals and loops; and in-language errors raised with raise
// and handled with try/catch:
//
//	func fib(n) {
//		if n < 2 { return n }
//		return fib(n - 1) + fib(n - 2)
//	}
//
//	try {
//		raise ValueError("bad input")
//	} catch (ValueError e) {
//		print(e)
//	}
//
// Binary and unary arithmetic and comparison operators are evaluated by
// compiled expr programs.
package sample

import (
	"github.com/ardnew/larf/lang"
)

// Error kinds raised by the language.
const (
	ArithmeticError = "ArithmeticError"
	TypeError       = "TypeError"
	ValueError      = "ValueError"
)

// Registry returns a new, unsealed registry holding the language. Callers
// may register more prototypes before using it.
func Registry() *lang.Registry {
	reg := lang.NewRegistry()

	if err := reg.RegisterErrorKind(ArithmeticError, TypeError, ValueError); err != nil {
		panic(err)
	}

	reg.MustRegister(literals()...)
	reg.MustRegister(statements()...)
	reg.MustRegister(operators()...)

	return reg
}

// New returns a processor for the language.
func New(opts ...lang.Option) *lang.Processor {
	return lang.NewProcessor(Registry(), opts...)
}

// names returns the text of the first capture of each repetition of g.
func names(g *lang.Group) []string {
	out := []string{}

	for _, rep := range g.Groups {
		out = append(out, rep.Group(0).Text())
	}

	return out
}

// values evaluates the first capture of each repetition of g. It returns
// the first error-flagged result it meets.
func values(rt lang.Runtime, g *lang.Group) ([]lang.Value, lang.Result, error) {
	out := make([]lang.Value, 0, len(g.Groups))

	for _, rep := range g.Groups {
		res, err := rt.EvalGroup(rep.Group(0))
		if err != nil || res.Failed() {
			return nil, res, err
		}

		out = append(out, res.Value)
	}

	return out, lang.Ok(lang.Null()), nil
}
