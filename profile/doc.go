// Package profile provides optional runtime profiling for larf.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      live heap profiling
//   - mem:       memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution tracing
//
// A profiling run writes one file named after its mode into the output
// directory:
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/larf"}
//	defer p.Start().Stop()
//
// Analyze the output with go tool pprof:
//
//	go tool pprof -http=: /tmp/larf/cpu.pprof
//
// The tagged build also registers the net/http/pprof handlers.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
