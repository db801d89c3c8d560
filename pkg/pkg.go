//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the larf module embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command and module identifier. It appears in help text,
	// default config paths, and the REPL prompt.
	Name = "larf"
	// Description is a short summary of the project used in help output.
	Description = "Token-declared language toolkit"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
