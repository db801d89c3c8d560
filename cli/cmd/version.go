package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/larf/pkg"
)

// Version prints the program version.
type Version struct{}

// Run executes the version command.
func (Version) Run(ctx context.Context) error {
	if _, err := fmt.Fprintf(outputFrom(ctx), "%s %s\n", pkg.Name, pkg.Version()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
