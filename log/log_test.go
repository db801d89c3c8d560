package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestMake_Defaults(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if got := logger.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}

	if got := logger.Format(); got != DefaultFormat {
		t.Errorf("Format() = %v, want %v", got, DefaultFormat)
	}

	if logger.caller != DefaultCaller {
		t.Errorf("caller = %v, want %v", logger.caller, DefaultCaller)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		emit  func(Logger)
		want  bool
	}{
		{"trace below debug", LevelDebug, func(l Logger) { l.Trace("msg") }, false},
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("msg") }, true},
		{"debug at info", LevelInfo, func(l Logger) { l.Debug("msg") }, false},
		{"info at info", LevelInfo, func(l Logger) { l.Info("msg") }, true},
		{"warn at error", LevelError, func(l Logger) { l.Warn("msg") }, false},
		{"error at error", LevelError, func(l Logger) { l.Error("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.emit(Make(&buf, WithLevel(tt.level), WithPretty(false)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("emitted = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithLevel(LevelTrace))
	logger.Trace("parse", slog.Int("units", 12))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if rec["msg"] != "parse" {
		t.Errorf("msg = %v, want parse", rec["msg"])
	}

	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}

	if rec["units"] != float64(12) {
		t.Errorf("units = %v, want 12", rec["units"])
	}
}

func TestLogger_TimeLayoutNone(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithPretty(false), WithTimeLayout("none")).
		Info("hello")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("timestamp present with layout none: %q", buf.String())
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithPretty(false), WithCaller(true)).
		Info("hello")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("source does not point at the caller: %q", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatText), WithPretty(false))
	child := base.With(slog.String("component", "parser"))

	child.Info("one")

	if !strings.Contains(buf.String(), "component=parser") {
		t.Errorf("child record missing attribute: %q", buf.String())
	}

	buf.Reset()
	base.Info("two")

	if strings.Contains(buf.String(), "component=parser") {
		t.Errorf("With modified the receiver: %q", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError), WithPretty(false))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError {
		t.Errorf("Wrap modified the receiver level: %v", base.Level())
	}

	wrapped.Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("wrapped logger did not emit: %q", buf.String())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Info("dropped")
	logger = logger.With(slog.String("k", "v"))
	logger.ErrorContext(t.Context(), "dropped")

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}
}

func TestPretty_Text(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = saved })

	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithPretty(true), WithTimeLayout(""))
	logger.With(slog.String("scope", "root")).
		Warn("redeclared", slog.String("name", "x"), slog.Bool("flat", false))

	want := "level=WARN msg=redeclared scope=root name=x flat=false\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPretty_JSON(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = saved })

	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(true), WithTimeLayout(""))
	logger.Info("run", slog.Group("result", slog.Int("value", 3)))

	want := "{\n  level: INFO,\n  msg: run,\n  result.value: 3\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"error+2", Level(slog.LevelError + 2)},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" Text ", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPackageLogger(t *testing.T) {
	saved := defaultLog

	t.Cleanup(func() { defaultLog = saved })

	var buf bytes.Buffer

	defaultLog = Make(&buf, WithLevel(LevelDebug), WithFormat(FormatText), WithPretty(false))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.fn("message", slog.String("key", "value"))

		out := buf.String()
		if !strings.Contains(out, "level="+tt.level) || !strings.Contains(out, "key=value") {
			t.Errorf("%s: unexpected output %q", tt.level, out)
		}
	}

	Config(WithLevel(LevelError))

	buf.Reset()
	Info("filtered")

	if buf.Len() != 0 {
		t.Errorf("Config did not raise the level: %q", buf.String())
	}
}
