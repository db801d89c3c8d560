package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestScope_Lookup verifies that lookups walk outward through frames.
func TestScope_Lookup(t *testing.T) {
	s := NewScope(Nested)
	s.Declare("a", Int(1), Plain)
	s.PushFrame()
	s.Declare("b", Int(2), Parameter)
	s.Declare("a", Int(3), Plain)

	if got := mustInt(t, mustLookup(t, s, "a")); got != 3 {
		t.Errorf("inner a = %d, want 3", got)
	}

	b, err := s.Lookup("b")
	if err != nil || b.Class != Parameter {
		t.Errorf("Lookup(b) = %v, %v, want parameter", b, err)
	}

	if !s.PopFrame() {
		t.Fatal("PopFrame() = false")
	}

	if got := mustInt(t, mustLookup(t, s, "a")); got != 1 {
		t.Errorf("outer a = %d, want 1", got)
	}

	if _, err := s.Lookup("b"); !errors.Is(err, ErrUndeclared) {
		t.Errorf("Lookup(b) error = %v, want %v", err, ErrUndeclared)
	}

	if s.PopFrame() {
		t.Error("PopFrame() at root = true")
	}
}

// TestScope_Redeclare verifies last-writer-wins for a name in one frame.
func TestScope_Redeclare(t *testing.T) {
	for _, mode := range []ScopeMode{Nested, Flat} {
		t.Run(mode.String(), func(t *testing.T) {
			s := NewScope(mode)
			s.Declare("x", Int(1), Plain)
			s.Declare("x", Int(2), Plain)

			if got := mustInt(t, mustLookup(t, s, "x")); got != 2 {
				t.Errorf("x = %d, want 2", got)
			}
		})
	}
}

// TestScope_Assign verifies that assignment updates the nearest binding.
func TestScope_Assign(t *testing.T) {
	s := NewScope(Nested)
	s.Declare("x", Int(1), Plain)
	s.PushFrame()
	s.Assign("x", Int(2))
	s.Assign("y", Int(3))
	s.PopFrame()

	if got := mustInt(t, mustLookup(t, s, "x")); got != 2 {
		t.Errorf("x = %d, want 2", got)
	}

	if _, err := s.Lookup("y"); err == nil {
		t.Error("y visible after its frame was popped")
	}
}

// TestScope_Flat verifies that a flat scope shares one table across frames.
func TestScope_Flat(t *testing.T) {
	s := NewScope(Flat)
	s.PushFrame()
	s.Declare("x", Int(1), Plain)

	if d := s.Depth(); d != 1 {
		t.Errorf("depth = %d, want 1", d)
	}

	s.PopFrame()

	if got := mustInt(t, mustLookup(t, s, "x")); got != 1 {
		t.Errorf("x = %d, want 1", got)
	}

	if s.PopFrame() {
		t.Error("PopFrame() at root = true")
	}
}

// TestScope_Functions verifies callable bindings keyed by name and arity.
func TestScope_Functions(t *testing.T) {
	s := NewScope(Nested)
	s.DeclareFunction(&Function{Name: "add", Params: []string{"a", "b"}})
	s.DeclareFunction(&Function{Name: "add", Params: []string{"a", "b", "c"}})
	s.Declare("add", Int(0), Plain)

	fn, err := s.LookupFunction("add", 2)
	if err != nil || fn.Arity() != 2 {
		t.Fatalf("LookupFunction(add, 2) = %v, %v", fn, err)
	}

	if diff := cmp.Diff([]int{2, 3}, s.Arities("add")); diff != "" {
		t.Errorf("Arities (-want +got):\n%s", diff)
	}

	_, err = s.LookupFunction("add", 1)
	if !errors.Is(err, ErrArity) || !strings.Contains(err.Error(), "expected 2 or 3 parameters, got 1") {
		t.Errorf("LookupFunction(add, 1) error = %v", err)
	}

	if _, err := s.LookupFunction("sub", 1); !errors.Is(err, ErrUndeclared) {
		t.Errorf("LookupFunction(sub, 1) error = %v, want %v", err, ErrUndeclared)
	}

	if got := mustInt(t, mustLookup(t, s, "add")); got != 0 {
		t.Errorf("plain add = %d, want 0", got)
	}
}

// TestScope_Names verifies the visible names used for completion.
func TestScope_Names(t *testing.T) {
	s := NewScope(Nested)
	s.Declare("b", Null(), Plain)
	s.DeclareFunction(&Function{Name: "f", Params: []string{"x"}})
	s.PushFrame()
	s.Declare("a", Null(), Plain)

	if diff := cmp.Diff([]string{"a", "b", "f"}, s.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
}

// TestScope_Preload verifies host values.
func TestScope_Preload(t *testing.T) {
	s := NewScope(Nested)

	err := s.Preload(map[string]any{
		"n":    uint8(7),
		"name": "larf",
		"list": []any{1, "two", nil},
	})
	if err != nil {
		t.Fatalf("Preload() error = %v", err)
	}

	if got := mustInt(t, mustLookup(t, s, "n")); got != 7 {
		t.Errorf("n = %d, want 7", got)
	}

	if got := mustLookup(t, s, "list").String(); got != `[1, "two", null]` {
		t.Errorf("list = %s", got)
	}

	if err := s.Preload(map[string]any{"bad": struct{}{}}); !errors.Is(err, ErrValueType) {
		t.Errorf("Preload(struct) error = %v, want %v", err, ErrValueType)
	}
}
