package profile

// Profiler configures one profiling run.
type Profiler struct {
	// Mode selects what is profiled. The empty mode disables profiling.
	Mode string
	// Path is the output directory. Empty means the working directory.
	Path  string
	Quiet bool
}

// Stopper ends a profiling run and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. It returns a no-op [Stopper] when the mode is empty
// or unknown, or when built without the pprof tag. Stop is always safe to
// call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Valid reports whether mode is supported by this build.
func Valid(mode string) bool {
	for _, m := range Modes() {
		if m == mode {
			return true
		}
	}

	return false
}

type ignore struct{}

func (ignore) Stop() {}
