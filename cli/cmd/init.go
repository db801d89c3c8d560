package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/larf/log"
	"github.com/ardnew/larf/pkg"
	"github.com/ardnew/larf/profile"
)

// Init writes a configuration script holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	if err := writeConfig(file, ktx); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// writeConfig writes one assignment per set flag. Flag names use
// underscores so that they read as identifiers.
func writeConfig(w io.Writer, ktx *kong.Context) error {
	if _, err := fmt.Fprintf(w, "# %s configuration\n", pkg.Name); err != nil {
		return err
	}

	ignore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		lit, ok := literal(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, lit); err != nil {
			return err
		}
	}

	return nil
}

// literal renders v as a source literal. Empty strings and lists are
// skipped.
func literal(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false

	case bool:
		return strconv.FormatBool(v), true

	case string:
		if v == "" {
			return "", false
		}

		return strconv.Quote(v), true

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true

	case float32:
		return decimal(float64(v)), true

	case float64:
		return decimal(v), true

	case []string:
		if len(v) == 0 {
			return "", false
		}

		items := make([]string, len(v))
		for i, s := range v {
			items[i] = strconv.Quote(s)
		}

		return "[" + strings.Join(items, ", ") + "]", true

	default:
		return strconv.Quote(fmt.Sprint(v)), true
	}
}

// decimal formats f with at least one fractional digit.
func decimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
