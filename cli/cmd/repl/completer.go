package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/larf/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "tree", "edit", "reset", "clear", "quit"}

// isWordRune reports whether r may appear in a completed word.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor is not touching one.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the names worth completing in eval mode: everything
// visible in scope plus the keywords of the language.
func candidates(scope *lang.Scope, reg *lang.Registry) []string {
	out := scope.Names()

	for _, k := range reg.Keywords() {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}

	slices.Sort(out)

	return out
}

// computeMatches ranks the candidates against the word under the cursor.
// An empty word has no matches so the hint line stays visible.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	word, start, end := wordBounds(m.input.Value(), m.input.Position())
	if word == "" {
		return nil, start, end
	}

	list := ctrlCommands
	if m.mode == modeEval {
		list = candidates(m.scope, m.proc.Registry())
	}

	return fuzzy.Find(word, list), start, end
}

// renderCandidateBar builds the single-line completion bar, cut with an
// ellipsis to fit width.
func (m model) renderCandidateBar() string {
	if len(m.matches) == 0 || m.width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")

	var (
		b    strings.Builder
		used int
	)

	for i, match := range m.matches {
		rendered := m.renderCandidate(match, m.tabActive && i == m.suggIdx)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w+lipgloss.Width(ellipsis) > m.width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the matched runes of a candidate. Functions
// get a "()" suffix that is not part of the completion.
func (m model) renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, highlight = selectedStyle, selectedStyle.Bold(true)
	}

	var b strings.Builder

	for pos, r := range match.Str {
		style := base
		if slices.Contains(match.MatchedIndexes, pos) {
			style = highlight
		}

		b.WriteString(style.Render(string(r)))
	}

	if m.mode == modeEval && len(m.scope.Arities(match.Str)) > 0 {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// call describes the innermost unclosed call at the cursor.
type call struct {
	name string
	arg  int
}

// detectCall scans input up to cursor for an unclosed "name(" and counts
// the commas before the cursor inside it. Quoted text is skipped.
func detectCall(input string, cursor int) (call, bool) {
	cursor = min(max(cursor, 0), len(input))

	var (
		stack []call
		quote rune
	)

	for i, r := range input[:cursor] {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}

		case r == '"' || r == '\'':
			quote = r

		case r == '(':
			name, _, _ := wordBounds(strings.TrimRightFunc(input[:i], unicode.IsSpace), i)
			stack = append(stack, call{name: name})

		case r == ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case r == ',':
			if len(stack) > 0 {
				stack[len(stack)-1].arg++
			}
		}
	}

	if len(stack) == 0 || stack[len(stack)-1].name == "" {
		return call{}, false
	}

	return stack[len(stack)-1], true
}

// signatures renders every visible overload of c.name with the parameter
// at c.arg emphasized.
func signatures(scope *lang.Scope, c call) string {
	var sigs []string

	for _, arity := range scope.Arities(c.name) {
		fn, err := scope.LookupFunction(c.name, arity)
		if err != nil {
			continue
		}

		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = hintStyle.Render(p)
			if i == c.arg {
				params[i] = activeParamStyle.Render(p)
			}
		}

		sigs = append(sigs, hintStyle.Render(c.name+"(")+
			strings.Join(params, hintStyle.Render(", "))+
			hintStyle.Render(")"))
	}

	return strings.Join(sigs, hintStyle.Render("  "))
}
