package profile

import (
	"testing"
)

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithPath("/tmp/out"), WithQuiet(true))

	want := Profiler{Mode: "cpu", Path: "/tmp/out", Quiet: true}
	if p != want {
		t.Errorf("New() = %+v, want %+v", p, want)
	}
}

func TestStartDisabled(t *testing.T) {
	for _, mode := range []string{"", "bogus"} {
		s := Profiler{Mode: mode}.Start()
		if _, ok := s.(ignore); !ok {
			t.Errorf("Start() with mode %q = %T, want no-op", mode, s)
		}

		s.Stop()
	}
}

func TestValid(t *testing.T) {
	if Valid("bogus") {
		t.Error("Valid(\"bogus\") = true")
	}

	for _, m := range Modes() {
		if !Valid(m) {
			t.Errorf("Valid(%q) = false", m)
		}
	}
}
