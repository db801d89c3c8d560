package profile

// Option adjusts a [Profiler] before it starts.
type Option func(Profiler) Profiler

// New returns a profiler configured by opts.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}
