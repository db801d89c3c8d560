// Package cmd implements the larf subcommands: run, tree, grammar, repl,
// init, and version.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration script.
	ConfigIdentifier = "config"
)
