package repl

import "errors"

var (
	// ErrOutOfBounds is returned by [History.Entry] for an index outside the
	// history.
	ErrOutOfBounds = errors.New("history index out of range")

	// ErrEditDeclined ends the session when the user will not fix an edited
	// source that fails to parse.
	ErrEditDeclined = errors.New("edited source left unparsed")
)
