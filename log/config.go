package log

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levelName = map[Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

func (l Level) String() string {
	if s, ok := levelName[l]; ok {
		return s
	}

	return strings.ToLower(slog.Level(l).String())
}

// Levels returns an iterator over the names of all defined log levels in
// increasing severity.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError} {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a level name, optionally followed by a signed offset as
// accepted by [slog.Level.UnmarshalText]. "trace" is recognized in addition to
// the slog names. Unrecognized input yields [DefaultLevel].
func ParseLevel(s string) Level {
	if strings.EqualFold(strings.TrimSpace(s), "trace") {
		return LevelTrace
	}

	var l slog.Level

	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatJSON

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatJSON, FormatText} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat parses "json" or "text". Anything else yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return DefaultFormat
	}
}

// FormatTime formats a timestamp. An empty result removes the time attribute.
type FormatTime func(time.Time) string

const (
	// DefaultTimeLayout is used when no valid time layout is provided.
	DefaultTimeLayout = time.RFC3339
	// DefaultCaller controls whether records include their source location.
	DefaultCaller = false
	// DefaultPretty controls whether records are colorized.
	DefaultPretty = true
)

// config holds the configuration of a Logger.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	return apply(config{mutex: &sync.RWMutex{}}, append([]Option{WithDefaults(w)}, opts...)...)
}

// clone copies c with a fresh mutex and applies opts to the copy.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return apply(c, opts...)
}

func (c config) options() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					s := c.formatTime(t)
					if s == "" {
						return slog.Attr{}
					}

					a.Value = slog.StringValue(s)
				}

			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
				}
			}

			return a
		},
	}
}

func (c config) handler() slog.Handler {
	opts := c.options()

	switch {
	case c.pretty && c.format == FormatJSON:
		return newPrettyJSONHandler(c.output, opts)
	case c.pretty && c.format == FormatText:
		return newPrettyTextHandler(c.output, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)
	default:
		return slog.DiscardHandler
	}
}

// timeLayout maps case-insensitive layout names to time package layouts.
var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"stampnano":   time.StampNano,
	"ns":          time.StampNano,
	"none":        "",
}

// makeFormatTimeFunc resolves layout against [timeLayout], ignoring case and
// punctuation for the lookup only. Unknown layouts are used verbatim.
func makeFormatTimeFunc(layout string) FormatTime {
	key := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if key == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
