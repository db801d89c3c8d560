package repl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		input  string
		cursor int
		word   string
		start  int
		end    int
	}{
		{input: "", cursor: 0, word: "", start: 0, end: 0},
		{input: "fib", cursor: 3, word: "fib", start: 0, end: 3},
		{input: "x = fi + 1", cursor: 6, word: "fi", start: 4, end: 6},
		{input: "x = fi + 1", cursor: 5, word: "fi", start: 4, end: 6},
		{input: "print(len", cursor: 9, word: "len", start: 6, end: 9},
		{input: "a + ", cursor: 4, word: "", start: 4, end: 4},
		{input: "héllo", cursor: 99, word: "héllo", start: 0, end: 6},
	}

	for _, tt := range tests {
		word, start, end := wordBounds(tt.input, tt.cursor)
		if word != tt.word || start != tt.start || end != tt.end {
			t.Errorf("wordBounds(%q, %d) = %q, %d, %d, want %q, %d, %d",
				tt.input, tt.cursor, word, start, end, tt.word, tt.start, tt.end)
		}
	}
}

func TestDetectCall(t *testing.T) {
	tests := []struct {
		input string
		want  call
		ok    bool
	}{
		{input: "fib(", want: call{name: "fib"}, ok: true},
		{input: "max(1, ", want: call{name: "max", arg: 1}, ok: true},
		{input: "f(g(1, 2), ", want: call{name: "f", arg: 1}, ok: true},
		{input: "f(g(1, ", want: call{name: "g", arg: 1}, ok: true},
		{input: `f("a, b", `, want: call{name: "f", arg: 1}, ok: true},
		{input: "f (", want: call{name: "f"}, ok: true},
		{input: "f(1)", ok: false},
		{input: "(1 + ", ok: false},
		{input: "x = 1", ok: false},
	}

	for _, tt := range tests {
		got, ok := detectCall(tt.input, len(tt.input))
		if ok != tt.ok {
			t.Errorf("detectCall(%q) ok = %v, want %v", tt.input, ok, tt.ok)

			continue
		}

		if ok && got != tt.want {
			t.Errorf("detectCall(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestCandidates(t *testing.T) {
	m := testModel(t)

	m = mustEval(t, m, "total = 1")

	got := candidates(m.scope, m.proc.Registry())

	for _, want := range []string{"total", "print", "len", "while", "func", "true"} {
		if !contains(got, want) {
			t.Errorf("candidates() = %v, missing %q", got, want)
		}
	}

	m.input.SetValue("x = tot")
	m.input.SetCursor(7)

	matches, start, end := m.computeMatches()
	if start != 4 || end != 7 {
		t.Errorf("computeMatches() bounds = %d, %d, want 4, 7", start, end)
	}

	var strs []string
	for _, match := range matches {
		strs = append(strs, match.Str)
	}

	if diff := cmp.Diff([]string{"total"}, strs); diff != "" {
		t.Errorf("computeMatches() mismatch (-want +got):\n%s", diff)
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}

	return false
}
