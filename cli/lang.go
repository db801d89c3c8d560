package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/larf/lang"
	"github.com/ardnew/larf/log"
)

type langConfig struct {
	MaxDepth        int    `default:"${langMaxDepth}" help:"Bound nesting while parsing and evaluating."`
	GlobalScope     bool   `default:"false"           help:"Share one flat scope across blocks and calls." negatable:""`
	CaseInsensitive bool   `default:"false"           help:"Match keywords regardless of case."             negatable:""`
	Settings        string `                          help:"YAML file of language settings."                placeholder:"FILE" type:"path"`
}

func (*langConfig) vars() kong.Vars {
	return kong.Vars{
		"langMaxDepth": strconv.Itoa(lang.DefaultMaxDepth),
	}
}

func (*langConfig) group() kong.Group {
	var group kong.Group

	group.Key = "lang"
	group.Title = "Language options"

	return group
}

// options returns the processor options selected by the flags. Settings
// from the file apply first so that flags override them.
func (f *langConfig) options(ctx context.Context) ([]lang.Option, error) {
	opts := []lang.Option{lang.WithLogger(log.Default())}

	if f.Settings != "" {
		file, err := os.Open(f.Settings)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		cfg, err := lang.LoadConfig(file)
		if err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "language settings",
			slog.String("file", f.Settings),
			slog.String("separator", cfg.Separator),
			slog.Int("max_depth", cfg.MaxDepth),
		)

		opts = append(opts, lang.WithConfig(cfg))
	}

	if f.MaxDepth != lang.DefaultMaxDepth {
		opts = append(opts, lang.WithMaxDepth(f.MaxDepth))
	}

	if f.GlobalScope {
		opts = append(opts, lang.WithGlobalScope(true))
	}

	if f.CaseInsensitive {
		opts = append(opts, lang.WithCaseInsensitive(true))
	}

	return opts, nil
}
