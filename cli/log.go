package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/larf/log"
)

// logFormat configures the logger format as a side effect of parsing so that
// errors reported while parsing use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level (${enum})."`
	Format     logFormat `default:"json"    enum:"${logFormatEnum}" help:"Set log format (${enum})."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) func() {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() { log.TraceContext(ctx, "logger stopped") }
}

// scan applies the logger flags of args before kong parses them, so the
// logger is configured regardless of flag position. Boolean flags never
// pass through UnmarshalText and are only handled here before parsing.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, value, assigned := strings.Cut(arg, "=")

		key, negated := strings.CutPrefix(name, "--no-log-")
		if !negated {
			var ok bool
			if key, ok = strings.CutPrefix(name, "--log-"); !ok {
				continue
			}
		}

		// Non-boolean flags take the next argument when not assigned.
		next := func() string {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++

				return args[i]
			}

			return value
		}

		// Boolean flags accept an assigned value; bare means true.
		flag := func() (bool, bool) {
			v := true
			if assigned {
				var err error
				if v, err = strconv.ParseBool(value); err != nil {
					return false, false
				}
			}

			return v != negated, true
		}

		switch {
		case key == "level" && !negated:
			_ = f.Level.UnmarshalText([]byte(next()))

		case key == "format" && !negated:
			_ = f.Format.UnmarshalText([]byte(next()))

		case key == "pretty":
			if v, ok := flag(); ok {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			}

		case key == "caller":
			if v, ok := flag(); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}
