package sample

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ardnew/larf/lang"
)

// Builtins returns the native functions of the language, ready for
// [lang.Scope.Preload]. Output of print is written to w.
func Builtins(w io.Writer) map[string]any {
	return map[string]any{
		"print": &lang.Function{
			Params: []string{"value"},
			Native: func(_ lang.Runtime, args []lang.Value) (lang.Result, error) {
				if _, err := fmt.Fprintln(w, args[0]); err != nil {
					return lang.Result{}, err
				}

				return lang.Ok(lang.Null()), nil
			},
		},
		"len": &lang.Function{
			Params: []string{"value"},
			Throws: []string{TypeError},
			Native: func(rt lang.Runtime, args []lang.Value) (lang.Result, error) {
				switch v := args[0]; v.Kind() {
				case lang.KindString:
					s, _ := v.AsString()

					return lang.Ok(lang.Int(int64(utf8.RuneCountInString(s)))), nil
				case lang.KindList:
					l, _ := v.AsList()

					return lang.Ok(lang.Int(int64(len(l)))), nil
				default:
					return rt.Raise(TypeError, "len of "+v.Kind().String())
				}
			},
		},
		"str": &lang.Function{
			Params: []string{"value"},
			Native: func(_ lang.Runtime, args []lang.Value) (lang.Result, error) {
				return lang.Ok(lang.String(args[0].String())), nil
			},
		},
	}
}
