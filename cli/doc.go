// Package cli contains the command line interface for larf.
//
// # Commands
//
//	larf [run] [FILE...]   run source files, or stdin when none are given
//	larf tree FILE...      print the token tree without evaluating
//	larf grammar           print the token prototypes of the language
//	larf repl [FILE...]    start an interactive session
//	larf init              write a configuration script
//	larf version           print the version
//
// # Configuration
//
// Flags may be set from three files in the configuration directory, in
// addition to the command line:
//
//   - config.json: a JSON object of flag names to values
//   - config.yaml: a YAML mapping of flag names to values
//   - config: a script in the larf language itself
//
// The script is run and each of its top-level variables sets the flag of
// the same name, with underscores in place of hyphens:
//
//	# larf configuration
//	log_level = "debug"
//	lang_max_depth = 4 * 256
//
// Command-line flags override file values. [cmd.Init] writes a script
// holding the current values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output
//
// Logger flags are applied before parsing begins, so they affect errors
// reported by the parser regardless of position.
//
// # Language Options
//
//   - --lang-max-depth: Bound nested parsing and evaluation
//   - --lang-global-scope: Use one flat scope
//   - --lang-case-insensitive: Match keywords regardless of case
//   - --lang-settings: Load separator and block delimiters from YAML
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o larf .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
