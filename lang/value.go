package lang

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/larf/lang/lexer"
)

// Kind identifies the dynamic type held by a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindToken
	KindFunction
	KindError
)

var kindName = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindList:     "list",
	KindToken:    "token",
	KindFunction: "function",
	KindError:    "error",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union over the kinds a token can produce. Typed
// accessors return [ErrValueType] instead of converting between kinds.
// The zero Value is null.
type Value struct {
	data any
	kind Kind
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, data: b} }
func Int(i int64) Value { return Value{kind: KindInt, data: i} }
func Float(f float64) Value { return Value{kind: KindFloat, data: f} }
func String(s string) Value { return Value{kind: KindString, data: s} }
func List(vs ...Value) Value { return Value{kind: KindList, data: vs} }
func TokenValue(t *Token) Value { return Value{kind: KindToken, data: t} }
func FuncValue(f *Function) Value { return Value{kind: KindFunction, data: f} }

// ErrorValue wraps an in-language error. Results carrying one should be built
// with [Fail] so the error flag is set.
func ErrorValue(e *InLanguageError) Value { return Value{kind: KindError, data: e} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) mismatch(want Kind) error {
	return ErrValueType.With(
		slog.String("want", want.String()),
		slog.String("got", v.kind.String()),
	).Wrapf("want %s, got %s", want, v.kind)
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, error) {
	if b, ok := v.data.(bool); ok && v.kind == KindBool {
		return b, nil
	}

	return false, v.mismatch(KindBool)
}

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, error) {
	if i, ok := v.data.(int64); ok && v.kind == KindInt {
		return i, nil
	}

	return 0, v.mismatch(KindInt)
}

// AsFloat returns the number held by v. Integers are widened.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.data.(float64), nil
	case KindInt:
		return float64(v.data.(int64)), nil
	default:
		return 0, v.mismatch(KindFloat)
	}
}

// AsString returns the string held by v.
func (v Value) AsString() (string, error) {
	if s, ok := v.data.(string); ok && v.kind == KindString {
		return s, nil
	}

	return "", v.mismatch(KindString)
}

// AsList returns the elements held by v.
func (v Value) AsList() ([]Value, error) {
	if l, ok := v.data.([]Value); ok && v.kind == KindList {
		return l, nil
	}

	return nil, v.mismatch(KindList)
}

// AsToken returns the token held by v.
func (v Value) AsToken() (*Token, error) {
	if t, ok := v.data.(*Token); ok && v.kind == KindToken {
		return t, nil
	}

	return nil, v.mismatch(KindToken)
}

// AsFunction returns the function held by v.
func (v Value) AsFunction() (*Function, error) {
	if f, ok := v.data.(*Function); ok && v.kind == KindFunction {
		return f, nil
	}

	return nil, v.mismatch(KindFunction)
}

// AsError returns the in-language error held by v.
func (v Value) AsError() (*InLanguageError, error) {
	if e, ok := v.data.(*InLanguageError); ok && v.kind == KindError {
		return e, nil
	}

	return nil, v.mismatch(KindError)
}

// Truthy reports whether v counts as true in a condition: non-zero numbers,
// non-empty strings and lists, true, and any function or token.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.data.(bool)
	case KindInt:
		return v.data.(int64) != 0
	case KindFloat:
		return v.data.(float64) != 0
	case KindString:
		return v.data.(string) != ""
	case KindList:
		return len(v.data.([]Value)) > 0
	case KindToken, KindFunction:
		return true
	default:
		return false
	}
}

// Native returns v as a plain Go value: nil, bool, int64, float64, string,
// []any, or the underlying pointer for tokens, functions, and errors.
func (v Value) Native() any {
	if v.kind != KindList {
		return v.data
	}

	l := v.data.([]Value)
	out := make([]any, len(l))

	for i, e := range l {
		out[i] = e.Native()
	}

	return out
}

// FromNative converts a Go value into a Value. Integer and float types of any
// width are normalized to int64 and float64.
func FromNative(x any) (Value, error) {
	switch n := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return n, nil
	case bool:
		return Bool(n), nil
	case int:
		return Int(int64(n)), nil
	case int8:
		return Int(int64(n)), nil
	case int16:
		return Int(int64(n)), nil
	case int32:
		return Int(int64(n)), nil
	case int64:
		return Int(n), nil
	case uint:
		return fromUnsigned(uint64(n))
	case uint8:
		return Int(int64(n)), nil
	case uint16:
		return Int(int64(n)), nil
	case uint32:
		return Int(int64(n)), nil
	case uint64:
		return fromUnsigned(n)
	case float32:
		return Float(float64(n)), nil
	case float64:
		return Float(n), nil
	case string:
		return String(n), nil
	case []any:
		l := make([]Value, len(n))

		for i, e := range n {
			v, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}

			l[i] = v
		}

		return List(l...), nil
	case *Token:
		return TokenValue(n), nil
	case *Function:
		return FuncValue(n), nil
	case *InLanguageError:
		return ErrorValue(n), nil
	default:
		return Value{}, ErrValueType.Wrapf("unsupported native type %T", x)
	}
}

func fromUnsigned(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, ErrValueType.Wrapf("integer %d overflows int64", u)
	}

	return Int(int64(u)), nil
}

// Equal reports whether v and o hold the same kind and value. Lists compare
// element-wise; tokens, functions, and errors compare by identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	if v.kind != KindList {
		return v.data == o.data
	}

	a, b := v.data.([]Value), o.data.([]Value)
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.data.(bool))
	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.data.(float64), 'g', -1, 64)
	case KindString:
		return v.data.(string)
	case KindList:
		l := v.data.([]Value)
		s := make([]string, len(l))

		for i, e := range l {
			if e.kind == KindString {
				s[i] = strconv.Quote(e.data.(string))
			} else {
				s[i] = e.String()
			}
		}

		return "[" + strings.Join(s, ", ") + "]"
	default:
		return fmt.Sprint(v.data)
	}
}

// LogValue implements [slog.LogValuer].
func (v Value) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", v.kind.String()),
		slog.String("value", v.String()),
	)
}

// Function is a callable bound in a [Scope] under its name and parameter
// count. Exactly one of Body and Native is set.
type Function struct {
	Native NativeFunc
	Body   *Block
	Decl   *Token
	Name   string
	Params []string
	// Throws lists the error kinds allowed to escape the function. A nil
	// list leaves escaping errors unchecked.
	Throws []string
}

// NativeFunc implements a host function callable from source.
type NativeFunc func(rt Runtime, args []Value) (Result, error)

// Arity returns the number of parameters of f.
func (f *Function) Arity() int { return len(f.Params) }

func (f *Function) String() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// InLanguageError is an error raised by source code. It travels as the value
// of an error-flagged [Result] until a handler token intercepts it.
type InLanguageError struct {
	origin  *Token
	Kind    string
	Message string
	Pos     lexer.Position
}

func (e *InLanguageError) Error() string {
	if e.Message == "" {
		return e.Kind
	}

	return e.Kind + ": " + e.Message
}

// Origin returns the token whose rule raised e, or nil before the evaluator
// has seen it.
func (e *InLanguageError) Origin() *Token { return e.origin }
