package sample

import (
	"strconv"
	"strings"

	"github.com/ardnew/larf/lang"
)

func literals() []*lang.Prototype {
	return []*lang.Prototype{
		{
			Name:      "integer",
			Match:     `[0-9]+`,
			ValueType: lang.KindInt,
			Throws:    []string{ValueError},
			Eval:      evalInteger,
		},
		{
			Name:      "decimal",
			Match:     `[0-9]+\.[0-9]+`,
			ValueType: lang.KindFloat,
			Throws:    []string{ValueError},
			Eval:      evalDecimal,
		},
		{
			Name:      "string",
			Match:     `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`,
			ValueType: lang.KindString,
			Throws:    []string{ValueError},
			Eval:      evalString,
		},
		{
			Name:      "boolean",
			Pattern:   `[ 'true', 'false' ]`,
			ValueType: lang.KindBool,
			Eval: func(_ lang.Runtime, tok *lang.Token) (lang.Result, error) {
				return lang.Ok(lang.Bool(tok.Group(0).Option == 0)), nil
			},
		},
		{
			Name:    "null",
			Pattern: `'null'`,
			Eval: func(lang.Runtime, *lang.Token) (lang.Result, error) {
				return lang.Ok(lang.Null()), nil
			},
		},
		{
			Name:      "list",
			Pattern:   `'[' ( expr ','? )* ']'`,
			ValueType: lang.KindList,
			Guidance:  closing("]", "list"),
			Eval: func(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
				vs, res, err := values(rt, tok.Group(0))
				if err != nil || res.Failed() {
					return res, err
				}

				return lang.Ok(lang.List(vs...)), nil
			},
		},
		{
			Name:  "reference",
			Match: `[\p{L}_][\p{L}\p{N}_]*`,
			Eval: func(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
				b, err := rt.Scope().Lookup(tok.Text)
				if err != nil {
					return lang.Result{}, err
				}

				return lang.Ok(b.Value), nil
			},
		},
		{
			Name:     "grouping",
			Pattern:  `'(' expr ')'`,
			Guidance: closing(")", "expression"),
			Eval: func(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
				return rt.EvalGroup(tok.Group(0))
			},
		},
	}
}

// closing returns guidance for a missing closing delimiter.
func closing(delim, what string) lang.GuidanceFunc {
	return func(literal string, _ int) string {
		if literal != delim {
			return ""
		}

		return "add " + strconv.Quote(delim) + " to close the " + what
	}
}

func evalInteger(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	n, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return rt.Raise(ValueError, "integer out of range: "+tok.Text)
	}

	return lang.Ok(lang.Int(n)), nil
}

func evalDecimal(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	f, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return rt.Raise(ValueError, "invalid decimal: "+tok.Text)
	}

	return lang.Ok(lang.Float(f)), nil
}

func evalString(rt lang.Runtime, tok *lang.Token) (lang.Result, error) {
	s, err := unquote(tok.Text)
	if err != nil {
		return rt.Raise(ValueError, "invalid string: "+err.Error())
	}

	return lang.Ok(lang.String(s)), nil
}

// unquote interprets a single- or double-quoted string with Go escapes.
func unquote(text string) (string, error) {
	if strings.HasPrefix(text, "'") {
		inner := text[1 : len(text)-1]
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		text = `"` + inner + `"`
	}

	return strconv.Unquote(text)
}
