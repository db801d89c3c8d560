package lang

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/larf/log"
)

const (
	// DefaultMaxDepth bounds nested evaluation and parsing.
	DefaultMaxDepth = 2048
	// DefaultSeparator optionally ends a statement.
	DefaultSeparator = ";"
	// DefaultBlockOpen and DefaultBlockClose delimit code blocks.
	DefaultBlockOpen  = "{"
	DefaultBlockClose = "}"
)

// Config holds the language settings that can be loaded from a file.
// Zero fields keep their defaults.
type Config struct {
	Separator       string `json:"separator,omitempty"        yaml:"separator,omitempty"`
	BlockOpen       string `json:"block-open,omitempty"       yaml:"block-open,omitempty"`
	BlockClose      string `json:"block-close,omitempty"      yaml:"block-close,omitempty"`
	MaxDepth        int    `json:"max-depth,omitempty"        yaml:"max-depth,omitempty"`
	GlobalScope     bool   `json:"global-scope,omitempty"     yaml:"global-scope,omitempty"`
	CaseInsensitive bool   `json:"case-insensitive,omitempty" yaml:"case-insensitive,omitempty"`
}

// LoadConfig decodes a YAML language configuration.
func LoadConfig(r io.Reader) (Config, error) {
	var c Config

	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&c); err != nil {
		if err == io.EOF {
			return c, nil
		}

		return c, ErrReadInput.Wrap(err)
	}

	return c, nil
}

type config struct {
	logger          log.Logger
	separator       string
	blockOpen       string
	blockClose      string
	maxDepth        int
	scope           ScopeMode
	caseInsensitive bool
}

func makeConfig(opts ...Option) config {
	c := config{
		separator:  DefaultSeparator,
		blockOpen:  DefaultBlockOpen,
		blockClose: DefaultBlockClose,
		maxDepth:   DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Option configures a [Parser], [Evaluator], or [Processor].
type Option func(*config)

// WithLogger sets the logger used for trace output. The zero Logger, the
// default, discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMaxDepth bounds nesting during parsing and evaluation. Values below
// one restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth
	}
}

// WithGlobalScope makes scopes created by a [Processor] flat.
func WithGlobalScope(enable bool) Option {
	return func(c *config) {
		if enable {
			c.scope = Flat
		} else {
			c.scope = Nested
		}
	}
}

// WithCaseInsensitive matches word literals regardless of case.
func WithCaseInsensitive(enable bool) Option {
	return func(c *config) { c.caseInsensitive = enable }
}

// WithSeparator sets the optional statement separator. An empty separator
// disables it.
func WithSeparator(sep string) Option {
	return func(c *config) { c.separator = sep }
}

// WithBlockDelimiters sets the literals that open and close code blocks.
func WithBlockDelimiters(open, close string) Option {
	return func(c *config) {
		if open != "" && close != "" {
			c.blockOpen, c.blockClose = open, close
		}
	}
}

// WithConfig applies the non-zero fields of cfg.
func WithConfig(cfg Config) Option {
	return func(c *config) {
		if cfg.Separator != "" {
			c.separator = cfg.Separator
		}

		WithBlockDelimiters(cfg.BlockOpen, cfg.BlockClose)(c)

		if cfg.MaxDepth > 0 {
			c.maxDepth = cfg.MaxDepth
		}

		if cfg.GlobalScope {
			c.scope = Flat
		}

		if cfg.CaseInsensitive {
			c.caseInsensitive = true
		}
	}
}
