package log

import (
	"io"
	"sync"
)

// Option modifies a Logger configuration.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// update returns an Option that runs fn with the configuration's write lock
// held.
func update(fn func(*config)) Option {
	return func(c config) config {
		if c.mutex == nil {
			c.mutex = &sync.RWMutex{}
		}

		c.mutex.Lock()
		defer c.mutex.Unlock()

		fn(&c)

		return c
	}
}

// WithDefaults resets every setting to its default and directs output to w.
// A nil w discards output.
func WithDefaults(w io.Writer) Option {
	return update(func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput directs output to w. A nil w discards output.
func WithOutput(w io.Writer) Option {
	return update(func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	})
}

// WithLevel sets the minimum level emitted.
func WithLevel(level Level) Option {
	return update(func(c *config) { c.level = level })
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return update(func(c *config) { c.format = format })
}

// WithTimeLayout sets the timestamp layout. The layout is either a named
// layout from the time package (such as "RFC3339Nano" or "Kitchen") or a
// literal layout string. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return update(func(c *config) { c.formatTime = format })
}

// WithCaller controls whether records include their source location.
func WithCaller(enable bool) Option {
	return update(func(c *config) { c.caller = enable })
}

// WithPretty controls whether output is colorized and, for JSON, indented.
func WithPretty(enable bool) Option {
	return update(func(c *config) { c.pretty = enable })
}
