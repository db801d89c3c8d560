package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func texts(units []Unit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		if u.Kind != End {
			out = append(out, u.Text)
		}
	}

	return out
}

func TestLexer_Units(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		symbols []string
		want    []string
	}{
		{
			name: "call",
			src:  "myMethod(1, 2, 3)",
			want: []string{"myMethod", "(", "1", ",", "2", ",", "3", ")"},
		},
		{
			name:    "longest symbol",
			src:     "a==b = c<=d",
			symbols: []string{"=", "==", "<="},
			want:    []string{"a", "==", "b", "=", "c", "<=", "d"},
		},
		{
			name: "unknown symbols split",
			src:  "a==b",
			want: []string{"a", "=", "=", "b"},
		},
		{
			name: "decimals",
			src:  "3.25 + 1.x",
			want: []string{"3.25", "+", "1", ".", "x"},
		},
		{
			name: "strings",
			src:  `"a \"b\"" 'c'`,
			want: []string{`"a \"b\""`, `'c'`},
		},
		{
			name: "comments",
			src:  "x // line\n# hash\n/* block\n */ y",
			want: []string{"x", "y"},
		},
		{
			name: "unicode identifiers",
			src:  "größe = 1",
			want: []string{"größe", "=", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(All(New(tt.src, WithSymbols(tt.symbols...))))

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("units mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexer_Kinds(t *testing.T) {
	units := All(New(`if 12 "s" { 'open`))

	want := []Kind{Word, Number, String, Symbol, Invalid, End}
	got := make([]Kind, len(units))

	for i, u := range units {
		got[i] = u.Kind
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_Positions(t *testing.T) {
	units := All(New("a\n  bc\n\td"))

	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 4, Line: 2, Column: 3},
		{Offset: 8, Line: 3, Column: 2},
		{Offset: 9, Line: 3, Column: 3},
	}

	got := make([]Position, len(units))
	for i, u := range units {
		got[i] = u.Pos
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_EndIsSticky(t *testing.T) {
	l := New("x")

	if u := l.Next(); u.Text != "x" {
		t.Fatalf("first unit = %v", u)
	}

	for range 3 {
		if u := l.Next(); u.Kind != End {
			t.Fatalf("unit after input = %v, want end", u)
		}
	}
}
