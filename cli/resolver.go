package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/larf/lang"
	"github.com/ardnew/larf/lang/sample"
	"github.com/ardnew/larf/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration scripts
// written in the sample language. The script is run in a fresh scope and
// every top-level variable becomes the value of the flag of the same name,
// with underscores standing in for hyphens:
//
//	# larf configuration
//	log_level = "debug"
//	log_pretty = false
//	lang_max_depth = 512
//
// Functions are ignored, so a script may compute its settings. A script
// that fails to parse or run is logged and ignored. Command-line flags
// override script values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		res, scope, err := runScript(ctx, r)
		if e := res.Err(); err == nil && e != nil {
			err = e
		}

		if err != nil {
			log.WarnContext(ctx, "ignoring configuration script", slog.Any("error", err))

			return settings{}, nil
		}

		s := settings{}

		for _, name := range scope.Names() {
			if b, err := scope.Lookup(name); err == nil {
				s[name] = flagValue(b.Value.Native())
			}
		}

		log.TraceContext(ctx, "configuration script", slog.Int("settings", len(s)))

		return s, nil
	}
}

func runScript(ctx context.Context, r io.Reader) (lang.Result, *lang.Scope, error) {
	source, err := lang.ReadSource(r)
	if err != nil {
		return lang.Result{}, nil, err
	}

	proc := sample.New()
	scope := proc.NewScope()

	res, err := proc.Run(ctx, source, scope)

	return res, scope, err
}

// resolveYAML is a [kong.ConfigurationLoader] for a YAML mapping of flag
// names to values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, err
	}

	s := settings{}
	for k, v := range doc {
		s[k] = flagValue(v)
	}

	return s, nil
}

// settings implements [kong.Resolver] over a flat map of flag values.
type settings map[string]any

// Validate implements [kong.Resolver].
func (settings) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Names match with hyphens or
// underscores.
func (s settings) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := s[flag.Name]; ok {
		return v, nil
	}

	if v, ok := s[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}

// flagValue converts a decoded value to the form kong parses: numbers become
// strings and lists become comma-separated strings.
func flagValue(v any) any {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case int:
		return strconv.Itoa(v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		items := make([]string, len(v))
		for i, e := range v {
			items[i] = fmt.Sprint(flagValue(e))
		}

		return strings.Join(items, ",")

	default:
		return v
	}
}
