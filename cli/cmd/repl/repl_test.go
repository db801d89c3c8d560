package repl

import (
	"strings"
	"testing"

	"github.com/ardnew/larf/lang/sample"
)

func testModel(t *testing.T) model {
	t.Helper()

	m, err := newModel(t.Context(), Config{
		Processor: sample.New(),
		Builtins:  sample.Builtins,
	}, NewHistory(""))
	if err != nil {
		t.Fatalf("newModel() error = %v", err)
	}

	return m
}

func mustEval(t *testing.T, m model, input string) model {
	t.Helper()

	before := len(m.session)

	m, _ = m.evaluate(input)
	if len(m.session) != before+1 {
		t.Fatalf("evaluate(%q) was not added to the session", input)
	}

	return m
}

func TestEvaluatePersists(t *testing.T) {
	m := testModel(t)

	m = mustEval(t, m, "func sq(n) { return n * n }")
	m = mustEval(t, m, "x = sq(7)")

	b, err := m.scope.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup(x) error = %v", err)
	}

	if n, _ := b.Value.AsInt(); n != 49 {
		t.Errorf("x = %v, want 49", b.Value)
	}

	if !strings.Contains(m.lastTree, "invocation") {
		t.Errorf("lastTree = %q, want the assignment tree", m.lastTree)
	}

	list := m.listNames()
	for _, want := range []string{"sq(n)", "x", "= 49"} {
		if !strings.Contains(list, want) {
			t.Errorf("listNames() = %q, missing %q", list, want)
		}
	}
}

func TestEvaluateFailures(t *testing.T) {
	m := testModel(t)

	for _, input := range []string{
		"1 +",
		"missing",
		`raise ValueError("no")`,
	} {
		m, _ = m.evaluate(input)
	}

	if len(m.session) != 0 {
		t.Errorf("session = %q, want failed inputs left out", m.session)
	}
}

func TestEvaluateOutput(t *testing.T) {
	m := testModel(t)

	m = mustEval(t, m, `print("hi")`)

	if m.out.Len() != 0 {
		t.Errorf("output buffer holds %q after evaluate", m.out.String())
	}
}

func TestReset(t *testing.T) {
	m := testModel(t)

	m = mustEval(t, m, "x = 1")

	if err := m.reset(); err != nil {
		t.Fatalf("reset() error = %v", err)
	}

	if _, err := m.scope.Lookup("x"); err == nil {
		t.Error("Lookup(x) after reset succeeded")
	}

	if _, err := m.scope.LookupFunction("print", 1); err != nil {
		t.Errorf("LookupFunction(print) after reset error = %v", err)
	}
}

func TestCycle(t *testing.T) {
	m := testModel(t)

	m = mustEval(t, m, "alpha = 1")
	m = mustEval(t, m, "alps = 2")

	m.input.SetValue("al")
	m.input.SetCursor(2)
	m.refreshMatches()

	if len(m.matches) < 2 {
		t.Fatalf("matches = %v, want at least two", m.matches)
	}

	first := m.cycle(1)
	if got := first.input.Value(); got != first.matches[0].Str {
		t.Errorf("cycle(1) input = %q, want %q", got, first.matches[0].Str)
	}

	back := first.cycle(-1)
	if got, want := back.input.Value(), back.matches[len(back.matches)-1].Str; got != want {
		t.Errorf("cycle(-1) input = %q, want %q", got, want)
	}
}

func TestHistoryMove(t *testing.T) {
	m := testModel(t)

	for _, e := range []HistoryEntry{
		{Line: "a = 1", Mode: modeEval},
		{Line: "list", Mode: modeCtrl},
		{Line: "b = 2", Mode: modeEval},
	} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.historyMove(-1, true)
	if got := m.input.Value(); got != "b = 2" {
		t.Errorf("first step = %q, want %q", got, "b = 2")
	}

	m = m.historyMove(-1, true)
	if got := m.input.Value(); got != "a = 1" {
		t.Errorf("in-mode step = %q, want %q", got, "a = 1")
	}

	m = m.historyMove(1, false)
	if got := m.input.Value(); got != "list" || m.mode != modeCtrl {
		t.Errorf("any-mode step = %q in mode %d, want %q in command mode", got, m.mode, "list")
	}

	m = m.historyMove(1, false)
	m = m.historyMove(1, false)
	if got := m.input.Value(); got != "" || m.historyIdx != m.history.Len() {
		t.Errorf("past end = %q at %d, want empty input", got, m.historyIdx)
	}
}
