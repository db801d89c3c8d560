package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Binding is a value bound to a name.
type Binding struct {
	Value Value
	Class Class
}

// ScopeMode selects how a [Scope] stores its frames.
type ScopeMode int

const (
	// Nested scopes push a new frame for every block and function call.
	Nested ScopeMode = iota // nested
	// Flat scopes keep every binding in one shared table.
	Flat // flat
)

// storage is the frame representation behind a Scope.
type storage interface {
	declare(key string, b Binding)
	lookup(key string) (Binding, bool)
	// assign updates the nearest visible binding of key.
	assign(key string, v Value) bool
	push()
	pop() bool
	depth() int
	// keys visits every visible key, innermost first.
	keys(yield func(string) bool)
}

type frame struct {
	parent *frame
	table  map[string]Binding
}

// nestedStorage links frames to their parent; lookups walk outward.
type nestedStorage struct {
	top   *frame
	count int
}

func (s *nestedStorage) declare(key string, b Binding) { s.top.table[key] = b }

func (s *nestedStorage) lookup(key string) (Binding, bool) {
	for f := s.top; f != nil; f = f.parent {
		if b, ok := f.table[key]; ok {
			return b, true
		}
	}

	return Binding{}, false
}

func (s *nestedStorage) assign(key string, v Value) bool {
	for f := s.top; f != nil; f = f.parent {
		if b, ok := f.table[key]; ok {
			b.Value = v
			f.table[key] = b

			return true
		}
	}

	return false
}

func (s *nestedStorage) push() {
	s.top = &frame{parent: s.top, table: make(map[string]Binding)}
	s.count++
}

func (s *nestedStorage) pop() bool {
	if s.top.parent == nil {
		return false
	}

	s.top = s.top.parent
	s.count--

	return true
}

func (s *nestedStorage) depth() int { return s.count }

func (s *nestedStorage) keys(yield func(string) bool) {
	for f := s.top; f != nil; f = f.parent {
		for _, k := range slices.Sorted(maps.Keys(f.table)) {
			if !yield(k) {
				return
			}
		}
	}
}

// flatStorage aliases every frame to one table. Frames only count depth.
type flatStorage struct {
	table map[string]Binding
	count int
}

func (s *flatStorage) declare(key string, b Binding) { s.table[key] = b }

func (s *flatStorage) lookup(key string) (Binding, bool) {
	b, ok := s.table[key]

	return b, ok
}

func (s *flatStorage) assign(key string, v Value) bool {
	b, ok := s.table[key]
	if ok {
		b.Value = v
		s.table[key] = b
	}

	return ok
}

func (s *flatStorage) push() { s.count++ }

func (s *flatStorage) pop() bool {
	if s.count == 0 {
		return false
	}

	s.count--

	return true
}

func (s *flatStorage) depth() int { return s.count }

func (s *flatStorage) keys(yield func(string) bool) {
	for _, k := range slices.Sorted(maps.Keys(s.table)) {
		if !yield(k) {
			return
		}
	}
}

// Scope maps names to values for one run. Callables are keyed by name and
// parameter count, so functions of equal name and different arity coexist.
// A Scope must not be used by more than one run at a time.
type Scope struct {
	store storage
	mode  ScopeMode
}

// NewScope returns a scope with one root frame.
func NewScope(mode ScopeMode) *Scope {
	s := &Scope{mode: mode}

	if mode == Flat {
		s.store = &flatStorage{table: make(map[string]Binding)}
	} else {
		s.store = &nestedStorage{top: &frame{table: make(map[string]Binding)}}
	}

	return s
}

// Mode returns the storage mode chosen when s was created.
func (s *Scope) Mode() ScopeMode { return s.mode }

// callableKey is the binding key of a function with the given arity.
func callableKey(name string, arity int) string {
	return name + "/" + strconv.Itoa(arity)
}

// Declare binds name in the current frame, replacing any binding of the same
// name there.
func (s *Scope) Declare(name string, v Value, class Class) {
	s.store.declare(name, Binding{Value: v, Class: class})
}

// DeclareFunction binds fn in the current frame under its name and arity.
func (s *Scope) DeclareFunction(fn *Function) {
	s.store.declare(callableKey(fn.Name, fn.Arity()), Binding{Value: FuncValue(fn), Class: Callable})
}

// Assign updates the nearest visible binding of name, or declares it in the
// current frame when none is visible.
func (s *Scope) Assign(name string, v Value) {
	if !s.store.assign(name, v) {
		s.Declare(name, v, Plain)
	}
}

// Lookup returns the nearest visible binding of name.
func (s *Scope) Lookup(name string) (Binding, error) {
	if b, ok := s.store.lookup(name); ok {
		return b, nil
	}

	return Binding{}, ErrUndeclared.With(slog.String("name", name)).Wrapf("%q is not declared", name)
}

// LookupFunction returns the function declared as name with arity
// parameters. When only other arities of name are visible the error reports
// the parameter count mismatch.
func (s *Scope) LookupFunction(name string, arity int) (*Function, error) {
	if b, ok := s.store.lookup(callableKey(name, arity)); ok {
		return b.Value.AsFunction()
	}

	if arities := s.Arities(name); len(arities) > 0 {
		want := make([]string, len(arities))
		for i, a := range arities {
			want[i] = strconv.Itoa(a)
		}

		return nil, ErrArity.With(
			slog.String("name", name),
			slog.Int("got", arity),
		).Wrap(fmt.Errorf("expected %s parameters, got %d", strings.Join(want, " or "), arity))
	}

	return nil, ErrUndeclared.With(slog.String("name", name)).Wrapf("function %q is not declared", name)
}

// Arities returns the sorted parameter counts of the visible functions named
// name.
func (s *Scope) Arities(name string) []int {
	var out []int

	s.store.keys(func(k string) bool {
		base, n, ok := strings.Cut(k, "/")
		if ok && base == name {
			if a, err := strconv.Atoi(n); err == nil && !slices.Contains(out, a) {
				out = append(out, a)
			}
		}

		return true
	})

	slices.Sort(out)

	return out
}

// PushFrame enters a new frame.
func (s *Scope) PushFrame() { s.store.push() }

// PopFrame leaves the current frame. The root frame is never popped.
func (s *Scope) PopFrame() bool { return s.store.pop() }

// Depth returns the number of frames above the root.
func (s *Scope) Depth() int { return s.store.depth() }

// Names returns the distinct visible names, functions without their arity,
// sorted.
func (s *Scope) Names() []string {
	var out []string

	s.store.keys(func(k string) bool {
		name, _, _ := strings.Cut(k, "/")
		if !slices.Contains(out, name) {
			out = append(out, name)
		}

		return true
	})

	slices.Sort(out)

	return out
}

// Preload declares host values in the current frame. Values are converted
// with [FromNative]; a *Function is declared as a callable.
func (s *Scope) Preload(values map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if fn, ok := values[name].(*Function); ok {
			f := *fn
			if f.Name == "" {
				f.Name = name
			}

			s.DeclareFunction(&f)

			continue
		}

		v, err := FromNative(values[name])
		if err != nil {
			return ErrValueType.With(slog.String("name", name)).Wrap(err)
		}

		s.Declare(name, v, Plain)
	}

	return nil
}
