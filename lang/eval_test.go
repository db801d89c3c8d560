package lang

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

// TestEval_Arithmetic verifies evaluation of operator trees.
func TestEval_Arithmetic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "precedence", input: "1 + 2 * 3", want: 7},
		{name: "left associative", input: "10 - 2 - 3", want: 5},
		{name: "right associative", input: "2 ^ 3 ^ 2", want: 512},
		{name: "prefix", input: "-2 * 3", want: -6},
		{name: "grouping", input: "(1 + 2) * 3", want: 9},
		{name: "last statement", input: "1; 2; 3", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustInt(t, mustRun(t, tt.input).Value); got != tt.want {
				t.Errorf("result = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestEval_ForwardReference verifies that a priority declaration is visible
// before its textual position.
func TestEval_ForwardReference(t *testing.T) {
	res := mustRun(t, `
x = add(1, 2)
func add(a, b) { return a + b }
x
`)

	if got := mustInt(t, res.Value); got != 3 {
		t.Errorf("result = %d, want 3", got)
	}
}

// TestEval_ForwardReferenceNested verifies forward references inside a
// function body.
func TestEval_ForwardReferenceNested(t *testing.T) {
	res := mustRun(t, `
func outer(n) {
	return inner(n) * 2
	func inner(m) { return m + 1 }
}
outer(4)
`)

	if got := mustInt(t, res.Value); got != 10 {
		t.Errorf("result = %d, want 10", got)
	}
}

// TestEval_ArityMismatch verifies that calling a function with the wrong
// number of arguments is a bind error.
func TestEval_ArityMismatch(t *testing.T) {
	_, err := run(t, "func add(a, b) { return a + b }\nadd(1, 2, 3)")

	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v (%T), want *BindError", err, err)
	}

	if !errors.Is(err, ErrArity) {
		t.Errorf("error = %v, want %v", err, ErrArity)
	}

	if !strings.Contains(err.Error(), "expected 2 parameters, got 3") {
		t.Errorf("error = %q, want it to contain %q", err, "expected 2 parameters, got 3")
	}

	if be.Pos.Line != 2 {
		t.Errorf("line = %d, want 2", be.Pos.Line)
	}
}

// TestEval_Overloads verifies that functions differing in arity are distinct.
func TestEval_Overloads(t *testing.T) {
	res := mustRun(t, `
func f(a) { return a }
func f(a, b) { return a * b }
f(3) + f(4, 5)
`)

	if got := mustInt(t, res.Value); got != 23 {
		t.Errorf("result = %d, want 23", got)
	}
}

// TestEval_Redeclaration verifies last-writer-wins in one frame.
func TestEval_Redeclaration(t *testing.T) {
	res := mustRun(t, "x = 1\nx = 2\nx")

	if got := mustInt(t, res.Value); got != 2 {
		t.Errorf("x = %d, want 2", got)
	}
}

// TestEval_Undeclared verifies that referencing an unknown name is a bind
// error.
func TestEval_Undeclared(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "variable", input: "1 + y"},
		{name: "function", input: "g(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.input)

			var be *BindError
			if !errors.As(err, &be) || !errors.Is(err, ErrUndeclared) {
				t.Errorf("error = %v, want %v bind error", err, ErrUndeclared)
			}
		})
	}
}

// TestEval_ErrorPropagation verifies that an in-language error raised two
// invocations deep reaches the top level unchanged.
func TestEval_ErrorPropagation(t *testing.T) {
	res := mustRun(t, `
func inner() { fail Failure }
func outer() { return inner() }
x = outer()
x = 5
`)

	if !res.Failed() {
		t.Fatalf("result = %v, want error flag", res.Value)
	}

	e := res.Err()
	if e == nil {
		t.Fatal("Err() = nil")
	}

	if e.Kind != "Failure" || e.Message != "failed" {
		t.Errorf("error = %v, want Failure: failed", e)
	}

	if e.Origin() == nil || e.Origin().Name() != "fail" {
		t.Errorf("origin = %v, want fail token", e.Origin())
	}

	if e.Pos.Line != 2 {
		t.Errorf("line = %d, want 2", e.Pos.Line)
	}
}

// TestEval_ReturnStopsFunction verifies that return unwinds only to the
// enclosing call.
func TestEval_ReturnStopsFunction(t *testing.T) {
	res := mustRun(t, `
func f() {
	return 1
	fail Failure
}
f() + 1
`)

	if res.Failed() {
		t.Fatalf("result failed: %v", res.Err())
	}

	if got := mustInt(t, res.Value); got != 2 {
		t.Errorf("result = %d, want 2", got)
	}
}

// TestEval_DepthExceeded verifies that runaway recursion is bounded.
func TestEval_DepthExceeded(t *testing.T) {
	p := NewProcessor(testRegistry(t), WithMaxDepth(64))
	scope := p.NewScope()

	_, err := p.Run(t.Context(), "func f() { return f() }\nf()", scope)
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("error = %v, want %v", err, ErrDepthExceeded)
	}

	if d := scope.Depth(); d != 0 {
		t.Errorf("scope depth after abort = %d, want 0", d)
	}
}

// TestEval_Throws verifies checked error declarations.
func TestEval_Throws(t *testing.T) {
	strict := &Prototype{
		Name:    "strict",
		Pattern: `'strict' error`,
		Throws:  []string{"Other"},
		Eval:    evalFail,
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
		kind    string
	}{
		{name: "declared by token", input: "strict Other", kind: "Other"},
		{name: "undeclared by token", input: "strict Failure", wantErr: ErrUndeclaredError},
		{name: "unregistered kind", input: "fail Missing", wantErr: ErrUndeclaredError},
		{
			name:  "declared by function",
			input: "func g() throws Failure { fail Failure }\ng()",
			kind:  "Failure",
		},
		{
			name:    "undeclared by function",
			input:   "func g() throws Other { fail Failure }\ng()",
			wantErr: ErrUndeclaredError,
		},
		{
			name:  "unchecked function",
			input: "func g() { fail Failure }\ng()",
			kind:  "Failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewProcessor(testRegistry(t, strict)).Run(t.Context(), tt.input, nil)

			if tt.wantErr != nil {
				var be *BindError
				if !errors.As(err, &be) || !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v bind error", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if e := res.Err(); e == nil || e.Kind != tt.kind {
				t.Errorf("Err() = %v, want kind %s", e, tt.kind)
			}
		})
	}
}

// TestEval_UnwrapOnce verifies that a token-valued result is evaluated
// exactly once.
func TestEval_UnwrapOnce(t *testing.T) {
	quote := &Prototype{
		Name:    "quote",
		Pattern: `'quote' expr`,
		Eval: func(_ Runtime, tok *Token) (Result, error) {
			return Ok(TokenValue(tok.Group(0).Tokens[0])), nil
		},
	}

	p := NewProcessor(testRegistry(t, quote))

	res, err := p.Run(t.Context(), "quote 1 + 2", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := mustInt(t, res.Value); got != 3 {
		t.Errorf("result = %d, want 3", got)
	}

	res, err = p.Run(t.Context(), "quote quote 7", nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	tok, err := res.Value.AsToken()
	if err != nil {
		t.Fatalf("AsToken() error = %v", err)
	}

	if tok.Text != "7" {
		t.Errorf("token = %q, want %q", tok.Text, "7")
	}
}

// TestEval_ScopeModes verifies that function frames isolate locals only in
// nested mode.
func TestEval_ScopeModes(t *testing.T) {
	const src = `
x = 1
func set() { x = 2; y = 3 }
set()
`

	t.Run("nested", func(t *testing.T) {
		p := NewProcessor(testRegistry(t))
		scope := p.NewScope()

		if _, err := p.Run(t.Context(), src, scope); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if got := mustInt(t, mustLookup(t, scope, "x")); got != 2 {
			t.Errorf("x = %d, want 2", got)
		}

		if _, err := scope.Lookup("y"); !errors.Is(err, ErrUndeclared) {
			t.Errorf("Lookup(y) error = %v, want %v", err, ErrUndeclared)
		}
	})

	t.Run("flat", func(t *testing.T) {
		p := NewProcessor(testRegistry(t), WithGlobalScope(true))
		scope := p.NewScope()

		if scope.Mode() != Flat {
			t.Fatalf("mode = %s, want %s", scope.Mode(), Flat)
		}

		if _, err := p.Run(t.Context(), src, scope); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if got := mustInt(t, mustLookup(t, scope, "y")); got != 3 {
			t.Errorf("y = %d, want 3", got)
		}
	})
}

// TestEval_PersistentScope verifies that declarations survive across runs
// sharing a scope.
func TestEval_PersistentScope(t *testing.T) {
	p := NewProcessor(testRegistry(t))
	scope := p.NewScope()

	for _, src := range []string{"func sq(n) { return n * n }", "x = sq(4)"} {
		if _, err := p.Run(t.Context(), src, scope); err != nil {
			t.Fatalf("Run(%q) error = %v", src, err)
		}
	}

	res, err := p.Run(t.Context(), "x + 1", scope)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := mustInt(t, res.Value); got != 17 {
		t.Errorf("result = %d, want 17", got)
	}
}

// TestEval_Native verifies host functions preloaded into a scope.
func TestEval_Native(t *testing.T) {
	p := NewProcessor(testRegistry(t))
	scope := p.NewScope()

	err := scope.Preload(map[string]any{
		"limit": 10,
		"twice": &Function{
			Params: []string{"n"},
			Native: func(rt Runtime, args []Value) (Result, error) {
				n, err := args[0].AsInt()
				if err != nil {
					return rt.Raise("Failure", err.Error())
				}

				return Ok(Int(2 * n)), nil
			},
		},
	})
	if err != nil {
		t.Fatalf("Preload() error = %v", err)
	}

	res, err := p.Run(t.Context(), "twice(limit) + 1", scope)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := mustInt(t, res.Value); got != 21 {
		t.Errorf("result = %d, want 21", got)
	}
}

// TestEval_Concurrent verifies that one processor serves concurrent runs
// with distinct scopes.
func TestEval_Concurrent(t *testing.T) {
	p := NewProcessor(testRegistry(t))

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Go(func() {
			res, err := p.Run(t.Context(), "func f(n) { return n * 2 }\nf(21)", nil)
			if err != nil {
				t.Errorf("run %d: error = %v", i, err)

				return
			}

			if n, _ := res.Value.AsInt(); n != 42 {
				t.Errorf("run %d: result = %d, want 42", i, n)
			}
		})
	}

	wg.Wait()
}

// TestProcessor_RunReader verifies running source read from a reader.
func TestProcessor_RunReader(t *testing.T) {
	res, err := NewProcessor(testRegistry(t)).RunReader(t.Context(), strings.NewReader("x = 6\nx * 7"), nil)
	if err != nil {
		t.Fatalf("RunReader() error = %v", err)
	}

	if got := mustInt(t, res.Value); got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
}

// TestProcessor_Sealed verifies that the processor seals its registry.
func TestProcessor_Sealed(t *testing.T) {
	reg := testRegistry(t)
	NewProcessor(reg)

	err := reg.Register(&Prototype{Name: "late", Pattern: `'late'`, Eval: evalOperand})
	if !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("Register() error = %v, want %v", err, ErrRegistrySealed)
	}
}

func mustLookup(t *testing.T, scope *Scope, name string) Value {
	t.Helper()

	b, err := scope.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", name, err)
	}

	return b.Value
}
